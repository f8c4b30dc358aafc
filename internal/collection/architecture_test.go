package collection

import (
	"testing"

	"assetdesk/testutil"
)

func TestControllerReachesStorageOnlyThroughFacades(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.StorageDriverForbidden,
		"collections deliver exports through internal/blob")
}
