package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	id := uuid.New()
	payload := []byte(`{"records":[{"id":"IRPA-36"}]}`)

	path, err := store.Put(ctx, id, "laws", "corpus_export.json", strings.NewReader(string(payload)))
	require.NoError(t, err)
	assert.Equal(t, "laws/"+id.String()+"_corpus_export.json", path)

	rc, err := store.Get(ctx, path)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, store.Delete(ctx, path))

	_, err = store.Get(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "laws/does-not-exist.json"))
}

func TestNewLocalStoreCreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "corpus")

	_, err := NewLocalStore(base)
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGenerateStoragePath(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	tests := []struct {
		name     string
		dataset  string
		filename string
		want     string
	}{
		{
			name:     "plain filename",
			dataset:  "laws",
			filename: "export.json",
			want:     "laws/11111111-2222-3333-4444-555555555555_export.json",
		},
		{
			name:     "spaces become underscores",
			dataset:  "debates",
			filename: "hansard dump 2022.json",
			want:     "debates/11111111-2222-3333-4444-555555555555_hansard_dump_2022.json",
		},
		{
			name:     "path separators stripped",
			dataset:  "laws",
			filename: `../up/one\two.json`,
			want:     "laws/11111111-2222-3333-4444-555555555555_.._up_one_two.json",
		},
		{
			name:     "no extension",
			dataset:  "laws",
			filename: "export",
			want:     "laws/11111111-2222-3333-4444-555555555555_export",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateStoragePath(id, tt.dataset, tt.filename))
		})
	}
}
