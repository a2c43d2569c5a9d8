package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"docforge/internal/artifact"
	"docforge/internal/model"
	"docforge/internal/render"
	"docforge/internal/repository"
)

var ErrTemplateMissing = errors.New("template not found")

// Test seams for the renderers; the defaults are the real implementations.
var (
	renderSpreadsheet = render.RenderSpreadsheet
	renderDocument    = render.RenderDocument
)

// PDFConverter converts a rendered document to PDF and returns the path of
// the produced file.
type PDFConverter interface {
	Convert(ctx context.Context, inputPath string) (string, error)
}

// GenerateService fills a stored template with form data and produces the
// filled document plus its PDF conversion.
type GenerateService interface {
	Generate(ctx context.Context, templateName string, data model.FormData) ([]model.GeneratedArtifact, error)
}

type generateService struct {
	dir       string
	repo      repository.TemplateRepository
	store     *artifact.Store
	converter PDFConverter
}

// NewGenerateService constructs a GenerateService resolving templates
// through repo, reading their files from dir, and writing artifacts through
// store.
func NewGenerateService(dir string, repo repository.TemplateRepository, store *artifact.Store, converter PDFConverter) GenerateService {
	return &generateService{dir: dir, repo: repo, store: store, converter: converter}
}

func (s *generateService) Generate(ctx context.Context, templateName string, data model.FormData) ([]model.GeneratedArtifact, error) {
	if templateName == "" {
		return nil, ErrNameRequired
	}

	// Stored template names are UUID-based, so Base is a no-op for
	// legitimate requests and strips any traversal attempt.
	tmpl, err := s.repo.FindByName(ctx, filepath.Base(templateName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateMissing
		}
		return nil, err
	}

	path := filepath.Join(s.dir, tmpl.Name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTemplateMissing
		}
		return nil, err
	}

	docType := model.ArtifactXLSX
	if tmpl.Format == model.FormatWordProcessing {
		docType = model.ArtifactDOCX
	}
	destPath, err := s.store.NewPath(docType)
	if err != nil {
		return nil, err
	}

	switch tmpl.Format {
	case model.FormatSpreadsheet:
		err = renderSpreadsheet(path, destPath, data)
	case model.FormatWordProcessing:
		err = renderDocument(path, destPath, data)
	}
	if err != nil {
		_ = os.Remove(destPath)
		return nil, err
	}

	docArtifact, err := s.store.Describe(docType, destPath)
	if err != nil {
		return nil, err
	}

	// A conversion failure leaves the filled document behind; the cleanup
	// sweep reclaims it later.
	pdfPath, err := s.converter.Convert(ctx, destPath)
	if err != nil {
		return nil, err
	}
	pdfArtifact, err := s.store.Describe(model.ArtifactPDF, pdfPath)
	if err != nil {
		return nil, err
	}

	return []model.GeneratedArtifact{docArtifact, pdfArtifact}, nil
}
