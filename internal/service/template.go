package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docforge/internal/model"
	"docforge/internal/repository"
	"docforge/internal/storage"
	"docforge/internal/template"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("template not found")
	ErrReaderNil    = errors.New("reader is nil")
	ErrUpload       = errors.New("template archive upload failed")
	ErrNameRequired = errors.New("template name is required")
)

// Test seams for the scanner; the default is the real implementation.
var scanTemplate = template.Scan

// UploadResult carries the stored template plus the placeholders discovered
// in it, in first-appearance order.
type UploadResult struct {
	Template     *model.Template `json:"template"`
	Placeholders []string        `json:"placeholders"`
}

// TemplateListResult is the service-level DTO for paginated templates.
type TemplateListResult struct {
	Items []model.Template `json:"data"`
	Total int              `json:"total"`
}

// TemplateService defines the use cases for handling uploaded templates.
type TemplateService interface {
	// Upload stores the template locally for rendering, discovers its
	// placeholders, archives a copy in object storage, and records metadata.
	// The stored name is a UUID plus the original extension; the original
	// filename is kept as metadata only.
	Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*UploadResult, error)

	// List returns templates using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*TemplateListResult, error)

	// Get returns a single template by its ID.
	Get(ctx context.Context, id string) (*model.Template, error)

	// Delete removes a template from the archive, the repository, and local disk.
	Delete(ctx context.Context, id string) error
}

type templateService struct {
	dir   string
	store storage.Storage
	repo  repository.TemplateRepository
}

// NewTemplateService constructs a new TemplateService storing template files
// under dir.
func NewTemplateService(dir string, store storage.Storage, repo repository.TemplateRepository) TemplateService {
	return &templateService{dir: dir, store: store, repo: repo}
}

func (s *templateService) Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*UploadResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	format, ok := model.FormatFromExtension(ext)
	if !ok {
		return nil, template.ErrUnsupportedFormat
	}

	// Generate stored name using UUID + extension; caller input never
	// becomes a path component.
	id := uuid.New().String()
	genName := id + ext
	localPath := filepath.Join(s.dir, genName)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	written, err := writeLocal(localPath, r)
	if err != nil {
		return nil, fmt.Errorf("store template: %w", err)
	}

	placeholders, err := scanTemplate(localPath)
	if err != nil {
		_ = os.Remove(localPath)
		return nil, err
	}

	// Archive a copy in object storage.
	key := filepath.ToSlash(filepath.Join("templates", genName))
	f, err := os.Open(localPath)
	if err != nil {
		_ = os.Remove(localPath)
		return nil, err
	}
	objInfo, err := s.store.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        written,
		ContentType: format.ContentType(),
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	f.Close()
	if err != nil {
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	tmpl := &model.Template{
		ID:               id,
		Name:             genName,
		OriginalFilename: originalFilename,
		Format:           format,
		Size:             objInfo.Size,
		StoragePath:      objInfo.Key,
		CreatedAt:        time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, tmpl)
	if err != nil {
		// Rollback: delete the archived object and the local file.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			_ = os.Remove(localPath)
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	return &UploadResult{Template: stored, Placeholders: placeholders}, nil
}

// List returns paginated templates without exposing repository types.
func (s *templateService) List(ctx context.Context, limit, offset int) (*TemplateListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &TemplateListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a template by ID.
func (s *templateService) Get(ctx context.Context, id string) (*model.Template, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	tmpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tmpl, nil
}

// Delete removes a template from the archive, then its record, then the
// local copy used for rendering.
func (s *templateService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	tmpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete from the archive first; if this fails, keep the DB row so the
	// reference is not lost.
	if err := s.store.Delete(ctx, tmpl.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = os.Remove(filepath.Join(s.dir, tmpl.Name))
	return nil
}

func writeLocal(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}
