package embedded

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/internal/seed/core"
	"assetdesk/pkg/domain"
)

func TestBuiltInFixturesCoverEveryKind(t *testing.T) {
	src := New()
	assert.Equal(t, core.DriverEmbedded, src.Driver())
	for _, kind := range domain.Kinds() {
		payload, err := src.Load(context.Background(), kind)
		require.NoError(t, err, kind)
		var records []map[string]any
		require.NoError(t, json.Unmarshal(payload, &records), kind)
		assert.NotEmpty(t, records, kind)
	}
	require.NoError(t, src.Close())
}

func TestLoadConvertsYAMLScalars(t *testing.T) {
	files := fstest.MapFS{
		"seeds/blocks.yaml": {Data: []byte("- id: ABC123\n  name: Annex\n  floors: 2\n")},
		"seeds/users.yaml":  {Data: []byte("")},
	}
	src := NewFS(files, "seeds")

	payload, err := src.Load(context.Background(), domain.EntityBlock)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"ABC123","name":"Annex","floors":2}]`, string(payload))

	payload, err = src.Load(context.Background(), domain.EntityUser)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(payload))

	_, err = src.Load(context.Background(), domain.EntityReport)
	assert.ErrorIs(t, err, core.ErrNoSeed)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	src := NewFS(fstest.MapFS{"assets.yaml": {Data: []byte("id: [unterminated")}}, "")
	_, err := src.Load(context.Background(), domain.EntityAsset)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode fixture")
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Load(ctx, domain.EntityAsset)
	assert.ErrorIs(t, err, context.Canceled)
}
