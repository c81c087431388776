package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storycare-server/internal/models"
	"storycare-server/internal/repository"
)

// MockBriefRepository is a mock type for the repository.BriefRepository type
type MockBriefRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, brief
func (_m *MockBriefRepository) Create(ctx context.Context, brief *models.StoryBrief) error {
	ret := _m.Called(ctx, brief)
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockBriefRepository) GetByID(ctx context.Context, id string) (*models.StoryBrief, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.StoryBrief
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.StoryBrief); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.StoryBrief)
		}
	}

	return r0, ret.Error(1)
}

// List provides a mock function with given fields: ctx, createdBy, limit
func (_m *MockBriefRepository) List(ctx context.Context, createdBy string, limit int) ([]*models.StoryBrief, error) {
	ret := _m.Called(ctx, createdBy, limit)

	var r0 []*models.StoryBrief
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.StoryBrief)
	}

	return r0, ret.Error(1)
}

// Update provides a mock function with given fields: ctx, brief
func (_m *MockBriefRepository) Update(ctx context.Context, brief *models.StoryBrief) error {
	ret := _m.Called(ctx, brief)
	return ret.Error(0)
}

// Delete provides a mock function with given fields: ctx, id
func (_m *MockBriefRepository) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// NewMockBriefRepository creates a new instance of MockBriefRepository.
func NewMockBriefRepository(t interface {
	mock.TestingT
	Helper()
}) *MockBriefRepository {
	m := &MockBriefRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.BriefRepository = (*MockBriefRepository)(nil)
