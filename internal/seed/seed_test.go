package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/pkg/domain"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	src, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.Equal(t, DriverEmbedded, src.Driver())

	src, err = Open(ctx, Config{Driver: "none"})
	require.NoError(t, err)
	assert.Equal(t, DriverNone, src.Driver())

	src, err = Open(ctx, Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "seed.db")})
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, src.Driver())
	require.NoError(t, src.Close())

	_, err = Open(ctx, Config{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported seed driver")
}

func TestRecordsDecodesTypedRecords(t *testing.T) {
	assets, err := Records[domain.Asset](context.Background(), Embedded(), domain.EntityAsset)
	require.NoError(t, err)
	require.NotEmpty(t, assets)
	assert.Equal(t, "AST-101", assets[0].ID)
	assert.Equal(t, "2499", assets[0].Cost.String())

	users, err := Records[domain.User](context.Background(), None(), domain.EntityUser)
	require.NoError(t, err)
	assert.Empty(t, users)

	none, err := Records[domain.User](context.Background(), nil, domain.EntityUser)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRecordsReportsDecodeFailures(t *testing.T) {
	src, err := Open(context.Background(), Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "seed.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	require.NoError(t, src.(Writer).Put(context.Background(), domain.EntityBlock, []byte(`[{"floors":"three"}]`)))

	_, err = Records[domain.Block](context.Background(), src, domain.EntityBlock)
	assert.ErrorContains(t, err, "decode block seed from sqlite")
}

func TestCopyFixturesIntoSQLite(t *testing.T) {
	ctx := context.Background()
	dst, err := Open(ctx, Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "seed.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dst.Close() })

	n, err := Copy(ctx, Embedded(), dst)
	require.NoError(t, err)
	assert.Equal(t, len(domain.Kinds()), n)

	reports, err := Records[domain.Report](ctx, dst, domain.EntityReport)
	require.NoError(t, err)
	assert.NotEmpty(t, reports)

	_, err = Copy(ctx, dst, Embedded())
	assert.ErrorContains(t, err, "read-only")
}
