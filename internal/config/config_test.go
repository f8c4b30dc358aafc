package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Collection.PageSize)
	assert.Equal(t, 4*time.Second, cfg.Collection.NotificationTTL)
	assert.Equal(t, 800*time.Millisecond, cfg.Collection.DeleteDelay)
	assert.False(t, cfg.Collection.FuzzySearch)
	assert.Equal(t, "fs", cfg.Blob.Driver)
	assert.Equal(t, "./exports", cfg.Blob.FSRoot)
	assert.Equal(t, "us-east-1", cfg.Blob.S3.Region)
	assert.Equal(t, "embedded", cfg.Seed.Driver)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "none", cfg.MetricsBackend)
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"ASSETDESK_COLLECTION_PAGE_SIZE":        "6",
		"ASSETDESK_COLLECTION_NOTIFICATION_TTL": "3s",
		"ASSETDESK_COLLECTION_DELETE_DELAY":     "0s",
		"ASSETDESK_COLLECTION_FUZZY_SEARCH":     "true",
		"ASSETDESK_BLOB_DRIVER":                 "s3",
		"ASSETDESK_BLOB_S3_BUCKET":              "asset-exports",
		"ASSETDESK_BLOB_S3_ENDPOINT":            "http://localhost:9000",
		"ASSETDESK_BLOB_S3_PATH_STYLE":          "true",
		"ASSETDESK_SEED_DRIVER":                 "postgres",
		"ASSETDESK_SEED_POSTGRES_DSN":           "postgres://localhost/assetdesk",
		"ASSETDESK_METRICS":                     "prometheus",
		"ASSETDESK_LOG_LEVEL":                   "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Collection.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Collection.NotificationTTL)
	assert.Zero(t, cfg.Collection.DeleteDelay)
	assert.True(t, cfg.Collection.FuzzySearch)
	assert.Equal(t, "asset-exports", cfg.Blob.S3.Bucket)
	assert.True(t, cfg.Blob.S3.PathStyle)
	assert.Equal(t, "postgres://localhost/assetdesk", cfg.Seed.PostgresDSN)
	assert.Equal(t, "prometheus", cfg.MetricsBackend)
}

func TestValidate_RejectsImpossibleSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"page size":         {"ASSETDESK_COLLECTION_PAGE_SIZE": "0"},
		"ttl":               {"ASSETDESK_COLLECTION_NOTIFICATION_TTL": "0s"},
		"delay":             {"ASSETDESK_COLLECTION_DELETE_DELAY": "-1s"},
		"log level":         {"ASSETDESK_LOG_LEVEL": "loud"},
		"metrics":           {"ASSETDESK_METRICS": "statsd"},
		"blob driver":       {"ASSETDESK_BLOB_DRIVER": "ftp"},
		"s3 without bucket": {"ASSETDESK_BLOB_DRIVER": "s3"},
		"seed driver":       {"ASSETDESK_SEED_DRIVER": "mysql"},
		"postgres dsn":      {"ASSETDESK_SEED_DRIVER": "postgres"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromMap(vars)
			assert.Error(t, err)
		})
	}
}

func TestFromMap_BadDuration(t *testing.T) {
	_, err := FromMap(map[string]string{"ASSETDESK_COLLECTION_NOTIFICATION_TTL": "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse environment")
}

func TestLoadEnv_ReadsExistingFilesOnly(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ASSETDESK_TEST_ENV_LOAD=ok\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("ASSETDESK_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{envFile, filepath.Join(dir, ".env.local")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "ok", os.Getenv("ASSETDESK_TEST_ENV_LOAD"))

	n, err = LoadEnv([]string{filepath.Join(dir, "missing")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoad_UsesProcessEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ASSETDESK_COLLECTION_PAGE_SIZE", "7")
	t.Setenv("ASSETDESK_BLOB_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Collection.PageSize)
	assert.Equal(t, "memory", cfg.Blob.Driver)
}
