package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// infraWrappers maps each infra tree to the package allowed to wrap it.
var infraWrappers = map[string]string{
	"assetdesk/internal/infra/blob": "assetdesk/internal/blob",
	"assetdesk/internal/infra/seed": "assetdesk/internal/seed",
}

// TestInfraImportedOnlyThroughWrappers keeps concrete backends behind their
// facade packages; everything else depends on the interfaces.
func TestInfraImportedOnlyThroughWrappers(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "assetdesk/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		path := strings.TrimSuffix(pkg.PkgPath, "_test")
		for importPath := range pkg.Imports {
			for infra, wrapper := range infraWrappers {
				if !hasPathPrefix(importPath, infra) {
					continue
				}
				if hasPathPrefix(path, wrapper) || hasPathPrefix(path, infra) {
					continue
				}
				seen[path+": "+importPath] = struct{}{}
			}
		}
	}

	if len(seen) == 0 {
		return
	}
	violations := make([]string, 0, len(seen))
	for v := range seen {
		violations = append(violations, v)
	}
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("forbidden infra import: %s", v)
	}
}

func hasPathPrefix(importPath, prefix string) bool {
	return importPath == prefix || strings.HasPrefix(importPath, prefix+"/")
}
