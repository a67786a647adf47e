package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/pkg/file"
)

func TestLocalStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := file.NewLocalStorage(dir, "/archive")
	require.NoError(t, err)

	obj, err := store.Put(ctx, "owner/intern/offer-letter-anu.pdf", []byte("%PDF-1.3"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "owner/intern/offer-letter-anu.pdf", obj.Key)
	assert.Equal(t, int64(8), obj.Size)
	assert.Equal(t, "/archive/owner/intern/offer-letter-anu.pdf", obj.URL)

	data, err := os.ReadFile(filepath.Join(dir, "owner", "intern", "offer-letter-anu.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
	assert.True(t, store.Exists(ctx, "owner/intern/offer-letter-anu.pdf"))

	// Overwrite keeps a single file.
	_, err = store.Put(ctx, "owner/intern/offer-letter-anu.pdf", []byte("v2"), "application/pdf")
	require.NoError(t, err)
	data, _ = os.ReadFile(filepath.Join(dir, "owner", "intern", "offer-letter-anu.pdf"))
	assert.Equal(t, "v2", string(data))

	require.NoError(t, store.Delete(ctx, "owner/intern/offer-letter-anu.pdf"))
	assert.False(t, store.Exists(ctx, "owner/intern/offer-letter-anu.pdf"))
	assert.NoError(t, store.Delete(ctx, "owner/intern/offer-letter-anu.pdf"))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := file.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	for _, key := range []string{"../escape.pdf", "a/../../escape.pdf", ""} {
		_, err := store.Put(ctx, key, []byte("x"), "")
		assert.ErrorIs(t, err, file.ErrInvalidKey, key)
		assert.False(t, store.Exists(ctx, key))
	}
}

func TestNewLocalStorage_EmptyDir(t *testing.T) {
	t.Parallel()
	_, err := file.NewLocalStorage("", "")
	assert.ErrorIs(t, err, file.ErrInvalidConfig)
}
