package domain_test

import (
	"testing"

	"assetdesk/testutil"
)

func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"domain types are shared by every layer and must not depend on internal packages")
}

func TestDomainStaysStorageAgnostic(t *testing.T) {
	if testing.Short() {
		t.Skip("go list is slow in short mode")
	}
	testutil.AssertNoTransitiveDependency(t, ".", testutil.StorageDriverForbidden,
		"records are plain values; storage lives behind internal/seed and internal/blob")
}
