// Package embedded serves the YAML seed fixtures compiled into the binary.
package embedded

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"assetdesk/internal/seed/core"
	"assetdesk/pkg/domain"
)

//go:embed fixtures/*.yaml
var fixtures embed.FS

// Source reads fixtures/<resource>.yaml from an fs.FS.
type Source struct {
	files fs.FS
	dir   string
}

// New returns a source over the built-in fixtures.
func New() *Source {
	return &Source{files: fixtures, dir: "fixtures"}
}

// NewFS returns a source over an arbitrary tree laid out like the built-in
// fixtures, rooted at dir.
func NewFS(files fs.FS, dir string) *Source {
	if dir == "" {
		dir = "."
	}
	return &Source{files: files, dir: dir}
}

// Driver implements core.Source.
func (s *Source) Driver() core.Driver { return core.DriverEmbedded }

// Load decodes the kind's YAML list and re-encodes it as a JSON array.
func (s *Source) Load(ctx context.Context, kind domain.EntityKind) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := kind.Plural() + ".yaml"
	if s.dir != "." {
		name = s.dir + "/" + name
	}
	raw, err := fs.ReadFile(s.files, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", kind, core.ErrNoSeed)
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", name, err)
	}
	var records []map[string]any
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", name, err)
	}
	if records == nil {
		records = []map[string]any{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode fixture %s: %w", name, err)
	}
	return payload, nil
}

// Close implements core.Source.
func (s *Source) Close() error { return nil }
