package artifact

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docforge/internal/model"
)

var generatedName = regexp.MustCompile(`^generated-\d+\.(pdf|xlsx|docx)$`)

func TestStore_Put(t *testing.T) {
	store := NewStore(t.TempDir())

	a, err := store.Put([]byte("content"), model.ArtifactXLSX)

	require.NoError(t, err)
	assert.Equal(t, model.ArtifactXLSX, a.Type)
	assert.Regexp(t, generatedName, a.Filename)
	assert.Equal(t, int64(7), a.Size)
	assert.FileExists(t, a.StoragePath)
}

func TestStore_NewPath_SameMillisecond(t *testing.T) {
	store := NewStore(t.TempDir())

	// Reserving repeatedly inside one millisecond must yield distinct names.
	seen := map[string]struct{}{}
	for i := 0; i < 10; i++ {
		path, err := store.NewPath(model.ArtifactPDF)
		require.NoError(t, err)
		_, dup := seen[path]
		assert.False(t, dup, "duplicate path %s", path)
		seen[path] = struct{}{}
	}
}

func TestStore_Resolve(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.EnsureDirs())

	stored, err := store.Put([]byte("pdf-bytes"), model.ArtifactPDF)
	require.NoError(t, err)

	t.Run("happy path", func(t *testing.T) {
		a, err := store.Resolve("pdf", stored.Filename)
		require.NoError(t, err)
		assert.Equal(t, stored.StoragePath, a.StoragePath)
		assert.Equal(t, int64(9), a.Size)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := store.Resolve("exe", stored.Filename)
		assert.ErrorIs(t, err, ErrInvalidType)
	})

	t.Run("traversal input resolves to base name inside the type dir", func(t *testing.T) {
		_, err := store.Resolve("pdf", "../../etc/passwd")
		// Lookup becomes the literal base name "passwd" inside the pdf
		// directory, which does not exist.
		assert.ErrorIs(t, err, ErrNotFound)

		// A traversal prefix on an existing name still resolves inside the dir.
		a, err := store.Resolve("pdf", "../../"+stored.Filename)
		require.NoError(t, err)
		assert.Equal(t, stored.StoragePath, a.StoragePath)
	})

	t.Run("missing artifact", func(t *testing.T) {
		_, err := store.Resolve("pdf", "generated-0.pdf")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing directory", func(t *testing.T) {
		empty := NewStore(filepath.Join(t.TempDir(), "never-created"))
		_, err := empty.Resolve("pdf", stored.Filename)
		assert.ErrorIs(t, err, ErrDirectoryMissing)
	})
}

func TestSweep(t *testing.T) {
	t.Run("max age zero removes everything", func(t *testing.T) {
		store := NewStore(t.TempDir())
		_, err := store.Put([]byte("a"), model.ArtifactPDF)
		require.NoError(t, err)
		_, err = store.Put([]byte("b"), model.ArtifactXLSX)
		require.NoError(t, err)

		// Ensure mod times are strictly older than the sweep cutoff.
		time.Sleep(10 * time.Millisecond)
		removed := store.Sweep(CleanupPolicy{MaxAge: 0})

		assert.Equal(t, 2, removed)
	})

	t.Run("effectively infinite max age removes nothing", func(t *testing.T) {
		store := NewStore(t.TempDir())
		a, err := store.Put([]byte("a"), model.ArtifactPDF)
		require.NoError(t, err)

		removed := store.Sweep(CleanupPolicy{MaxAge: 24 * 365 * time.Hour})

		assert.Zero(t, removed)
		assert.FileExists(t, a.StoragePath)
	})

	t.Run("only files older than max age are removed", func(t *testing.T) {
		store := NewStore(t.TempDir())
		old, err := store.Put([]byte("old"), model.ArtifactDOCX)
		require.NoError(t, err)
		stale := time.Now().Add(-2 * time.Hour)
		require.NoError(t, os.Chtimes(old.StoragePath, stale, stale))

		fresh, err := store.Put([]byte("fresh"), model.ArtifactDOCX)
		require.NoError(t, err)

		removed := store.Sweep(CleanupPolicy{MaxAge: time.Hour})

		assert.Equal(t, 1, removed)
		assert.NoFileExists(t, old.StoragePath)
		assert.FileExists(t, fresh.StoragePath)
	})

	t.Run("missing directories are skipped", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "never-created"))
		assert.Zero(t, store.Sweep(CleanupPolicy{MaxAge: 0}))
	})
}

func TestSweeper(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Put([]byte("a"), model.ArtifactPDF)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	w := NewSweeper(store, CleanupPolicy{MaxAge: 0}, time.Hour)
	w.Start()
	defer w.Stop()

	// The initial sweep runs synchronously on Start.
	entries, err := os.ReadDir(store.Dir(model.ArtifactPDF))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
