// Package artifact owns the generated-file lifecycle: typed storage
// directories, timestamp-derived filenames, safe download resolution, and
// age-based cleanup.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docforge/internal/model"
)

var (
	ErrInvalidType      = errors.New("invalid artifact type")
	ErrDirectoryMissing = errors.New("artifact directory missing")
	ErrNotFound         = errors.New("artifact not found")
)

// Store assigns storage locations under one typed directory per artifact
// type and resolves download requests against them.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Dir returns the typed directory for t.
func (s *Store) Dir(t model.ArtifactType) string {
	return filepath.Join(s.baseDir, string(t))
}

// EnsureDirs creates every typed directory.
func (s *Store) EnsureDirs() error {
	for _, t := range []model.ArtifactType{model.ArtifactPDF, model.ArtifactXLSX, model.ArtifactDOCX} {
		if err := os.MkdirAll(s.Dir(t), 0o755); err != nil {
			return err
		}
	}
	return nil
}

// NewPath reserves a destination path for a new artifact of type t. Filenames
// are derived from a millisecond generation timestamp, never from caller
// input. Reservation uses exclusive creation, so two generations hitting the
// same millisecond get distinct names instead of overwriting each other.
func (s *Store) NewPath(t model.ArtifactType) (string, error) {
	dir := s.Dir(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	ms := time.Now().UnixMilli()
	for attempt := 0; attempt < 1000; attempt++ {
		path := filepath.Join(dir, fmt.Sprintf("generated-%d.%s", ms+int64(attempt), t.Extension()))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", err
		}
		f.Close()
		return path, nil
	}
	return "", fmt.Errorf("could not reserve artifact name in %s", dir)
}

// Put writes b as a new artifact of type t and returns its descriptor.
func (s *Store) Put(b []byte, t model.ArtifactType) (model.GeneratedArtifact, error) {
	path, err := s.NewPath(t)
	if err != nil {
		return model.GeneratedArtifact{}, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return model.GeneratedArtifact{}, err
	}
	return s.Describe(t, path)
}

// Describe stats a stored file and returns its artifact descriptor. It is
// used after a renderer or the converter has written to a reserved path.
func (s *Store) Describe(t model.ArtifactType, path string) (model.GeneratedArtifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.GeneratedArtifact{}, err
	}
	return model.GeneratedArtifact{
		Type:        t,
		Filename:    filepath.Base(path),
		Size:        info.Size(),
		StoragePath: path,
		CreatedAt:   info.ModTime(),
	}, nil
}

// Resolve validates a (type, filename) download request and returns the
// artifact descriptor. Any path components in filename are stripped down to
// the base name before the lookup path is composed; this is the sole defense
// against path traversal, and it confines every lookup to the typed
// directory.
func (s *Store) Resolve(typeTag, filename string) (model.GeneratedArtifact, error) {
	t, ok := model.ParseArtifactType(typeTag)
	if !ok {
		return model.GeneratedArtifact{}, ErrInvalidType
	}

	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return model.GeneratedArtifact{}, ErrNotFound
	}

	dir := s.Dir(t)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return model.GeneratedArtifact{}, ErrDirectoryMissing
	}

	path := filepath.Join(dir, base)
	info, err := os.Stat(path)
	if err != nil {
		return model.GeneratedArtifact{}, ErrNotFound
	}
	return model.GeneratedArtifact{
		Type:        t,
		Filename:    base,
		Size:        info.Size(),
		StoragePath: path,
		CreatedAt:   info.ModTime(),
	}, nil
}

// Open returns a reader for a previously resolved artifact.
func (s *Store) Open(a model.GeneratedArtifact) (*os.File, error) {
	return os.Open(a.StoragePath)
}
