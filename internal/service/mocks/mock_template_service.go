package mocks

import (
	"context"
	"io"

	"docforge/internal/model"
	"docforge/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*service.UploadResult, error) {
	args := m.Called(ctx, r, originalFilename, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockTemplateService) List(ctx context.Context, limit, offset int) (*service.TemplateListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TemplateListResult), args.Error(1)
}

func (m *MockTemplateService) Get(ctx context.Context, id string) (*model.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *MockTemplateService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
