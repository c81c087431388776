package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storycare-server/internal/models"
	"storycare-server/internal/repository"
)

// MockDraftRepository is a mock type for the repository.DraftRepository type
type MockDraftRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, draft
func (_m *MockDraftRepository) Create(ctx context.Context, draft *models.StoryDraft) error {
	ret := _m.Called(ctx, draft)
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockDraftRepository) GetByID(ctx context.Context, id string) (*models.StoryDraft, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.StoryDraft
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryDraft)
	}

	return r0, ret.Error(1)
}

// ListByBrief provides a mock function with given fields: ctx, briefID
func (_m *MockDraftRepository) ListByBrief(ctx context.Context, briefID string) ([]*models.StoryDraft, error) {
	ret := _m.Called(ctx, briefID)

	var r0 []*models.StoryDraft
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.StoryDraft)
	}

	return r0, ret.Error(1)
}

// AddSuggestion provides a mock function with given fields: ctx, draftID, suggestion
func (_m *MockDraftRepository) AddSuggestion(ctx context.Context, draftID string, suggestion models.EditSuggestion) error {
	ret := _m.Called(ctx, draftID, suggestion)
	return ret.Error(0)
}

// ResolveSuggestion provides a mock function with given fields: ctx, draftID, suggestionID, resolvedBy, accept
func (_m *MockDraftRepository) ResolveSuggestion(ctx context.Context, draftID string, suggestionID string, resolvedBy string, accept bool) (*models.StoryDraft, error) {
	ret := _m.Called(ctx, draftID, suggestionID, resolvedBy, accept)

	var r0 *models.StoryDraft
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryDraft)
	}

	return r0, ret.Error(1)
}

// SetStatus provides a mock function with given fields: ctx, draftID, status
func (_m *MockDraftRepository) SetStatus(ctx context.Context, draftID string, status models.DraftStatus) (*models.StoryDraft, error) {
	ret := _m.Called(ctx, draftID, status)

	var r0 *models.StoryDraft
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.StoryDraft)
	}

	return r0, ret.Error(1)
}

// NewMockDraftRepository creates a new instance of MockDraftRepository.
func NewMockDraftRepository(t interface {
	mock.TestingT
	Helper()
}) *MockDraftRepository {
	m := &MockDraftRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.DraftRepository = (*MockDraftRepository)(nil)
