package mocks

import (
	"context"

	"docforge/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockGenerateService struct {
	mock.Mock
}

func (m *MockGenerateService) Generate(ctx context.Context, templateName string, data model.FormData) ([]model.GeneratedArtifact, error) {
	args := m.Called(ctx, templateName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GeneratedArtifact), args.Error(1)
}
