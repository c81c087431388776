package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storycare-server/internal/models"
	"storycare-server/internal/repository"
)

// MockTemplateRepository is a mock type for the repository.TemplateRepository type
type MockTemplateRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, tpl
func (_m *MockTemplateRepository) Create(ctx context.Context, tpl *models.StoryTemplate) error {
	ret := _m.Called(ctx, tpl)
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockTemplateRepository) GetByID(ctx context.Context, id string) (*models.StoryTemplate, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.StoryTemplate
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryTemplate)
	}

	return r0, ret.Error(1)
}

// List provides a mock function with given fields: ctx, limit
func (_m *MockTemplateRepository) List(ctx context.Context, limit int) ([]*models.StoryTemplate, error) {
	ret := _m.Called(ctx, limit)

	var r0 []*models.StoryTemplate
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.StoryTemplate)
	}

	return r0, ret.Error(1)
}

// NewMockTemplateRepository creates a new instance of MockTemplateRepository.
func NewMockTemplateRepository(t interface {
	mock.TestingT
	Helper()
}) *MockTemplateRepository {
	m := &MockTemplateRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.TemplateRepository = (*MockTemplateRepository)(nil)
