package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storycare-server/internal/models"
	"storycare-server/internal/repository"
)

// MockResultRepository is a mock type for the repository.ResultRepository type
type MockResultRepository struct {
	mock.Mock
}

// Save provides a mock function with given fields: ctx, result
func (_m *MockResultRepository) Save(ctx context.Context, result *models.GenerationResult) error {
	ret := _m.Called(ctx, result)
	return ret.Error(0)
}

// ListByBrief provides a mock function with given fields: ctx, briefID
func (_m *MockResultRepository) ListByBrief(ctx context.Context, briefID string) ([]*models.GenerationResult, error) {
	ret := _m.Called(ctx, briefID)

	var r0 []*models.GenerationResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.GenerationResult)
	}

	return r0, ret.Error(1)
}

// NewMockResultRepository creates a new instance of MockResultRepository.
func NewMockResultRepository(t interface {
	mock.TestingT
	Helper()
}) *MockResultRepository {
	m := &MockResultRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.ResultRepository = (*MockResultRepository)(nil)
