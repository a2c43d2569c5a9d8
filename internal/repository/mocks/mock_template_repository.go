package mocks

import (
	"context"

	"docforge/internal/model"
	"docforge/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, tmpl *model.Template) (*model.Template, error) {
	args := m.Called(ctx, tmpl)
	if res, ok := args.Get(0).(*model.Template); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, id string) (*model.Template, error) {
	args := m.Called(ctx, id)
	if res, ok := args.Get(0).(*model.Template); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTemplateRepository) FindByName(ctx context.Context, name string) (*model.Template, error) {
	args := m.Called(ctx, name)
	if res, ok := args.Get(0).(*model.Template); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTemplateRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Template], error) {
	args := m.Called(ctx, pq)
	if res, ok := args.Get(0).(*repository.PageResult[model.Template]); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
