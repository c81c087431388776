package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storycare-server/internal/mocks"
	"storycare-server/internal/models"
	"storycare-server/internal/service"
)

func newReviewService(t *testing.T) (service.ReviewService, *mocks.MockDraftRepository, *mocks.MockTemplateRepository) {
	t.Helper()
	drafts := mocks.NewMockDraftRepository(t)
	templates := mocks.NewMockTemplateRepository(t)
	return service.NewReviewService(drafts, templates, zap.NewNop()), drafts, templates
}

func TestReviewService_SuggestEdit(t *testing.T) {
	t.Run("adds pending suggestion", func(t *testing.T) {
		svc, drafts, _ := newReviewService(t)

		draft := &models.StoryDraft{ID: uuid.New(), Status: models.DraftStatusPendingReview}
		drafts.On("AddSuggestion", mock.Anything, "draft-1", mock.AnythingOfType("models.EditSuggestion")).
			Return(nil).Once().
			Run(func(args mock.Arguments) {
				s := args.Get(2).(models.EditSuggestion)
				assert.NotEmpty(t, s.ID)
				assert.Equal(t, "reviewer-1", s.SuggestedBy)
				assert.Equal(t, "the dark cave", s.TargetText)
				assert.Equal(t, "the cozy den", s.SuggestedText)
				assert.Equal(t, models.SuggestionStatusPending, s.Status)
			})
		drafts.On("GetByID", mock.Anything, "draft-1").Return(draft, nil).Once()

		got, err := svc.SuggestEdit(context.Background(), "draft-1", "reviewer-1", "the dark cave", "the cozy den", "softer image")
		require.NoError(t, err)
		assert.Equal(t, draft, got)
	})

	t.Run("rejects blank texts", func(t *testing.T) {
		svc, drafts, _ := newReviewService(t)

		_, err := svc.SuggestEdit(context.Background(), "draft-1", "reviewer-1", "  ", "new text", "")
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		_, err = svc.SuggestEdit(context.Background(), "draft-1", "reviewer-1", "old text", "", "")
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		drafts.AssertNotCalled(t, "AddSuggestion")
	})
}

func TestReviewService_ApproveDraft(t *testing.T) {
	svc, drafts, templates := newReviewService(t)

	draft := &models.StoryDraft{
		ID:      uuid.New(),
		BriefID: "brief-1",
		Title:   "The Brave Morning",
		Content: "{{child_name}} walked to school...",
		Status:  models.DraftStatusApproved,
	}
	drafts.On("SetStatus", mock.Anything, "draft-1", models.DraftStatusApproved).Return(draft, nil).Once()
	templates.On("Create", mock.Anything, mock.AnythingOfType("*models.StoryTemplate")).Return(nil).Once().
		Run(func(args mock.Arguments) {
			tpl := args.Get(1).(*models.StoryTemplate)
			assert.Equal(t, "brief-1", tpl.BriefID)
			assert.Equal(t, draft.ID.String(), tpl.DraftID)
			assert.Equal(t, draft.Title, tpl.Title)
			assert.Equal(t, draft.Content, tpl.Body)
			assert.Equal(t, "lead-reviewer", tpl.ApprovedBy)
		})

	tpl, err := svc.ApproveDraft(context.Background(), "draft-1", "lead-reviewer")
	require.NoError(t, err)
	assert.Equal(t, draft.Content, tpl.Body)

	drafts.AssertExpectations(t)
	templates.AssertExpectations(t)
}

func TestReviewService_ApproveDraft_NotReviewable(t *testing.T) {
	svc, drafts, templates := newReviewService(t)

	drafts.On("SetStatus", mock.Anything, "draft-1", models.DraftStatusApproved).
		Return(nil, models.ErrDraftNotReviewable).Once()

	_, err := svc.ApproveDraft(context.Background(), "draft-1", "lead-reviewer")
	assert.ErrorIs(t, err, models.ErrDraftNotReviewable)
	templates.AssertNotCalled(t, "Create")
}

func TestReviewService_RejectDraft(t *testing.T) {
	svc, drafts, _ := newReviewService(t)

	rejected := &models.StoryDraft{ID: uuid.New(), Status: models.DraftStatusRejected}
	drafts.On("SetStatus", mock.Anything, "draft-1", models.DraftStatusRejected).Return(rejected, nil).Once()

	got, err := svc.RejectDraft(context.Background(), "draft-1")
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusRejected, got.Status)
}

func TestReviewService_PersonalizeTemplate(t *testing.T) {
	body := "{{child_name}} took a deep breath. {{they}} knew {{their}} teacher would help {{them}}."

	t.Run("substitutes all placeholders", func(t *testing.T) {
		svc, _, templates := newReviewService(t)
		templates.On("GetByID", mock.Anything, "tpl-1").
			Return(&models.StoryTemplate{ID: uuid.New(), Body: body}, nil).Once()

		got, err := svc.PersonalizeTemplate(context.Background(), "tpl-1", service.PersonalizationInput{
			ChildName: "Mila",
			TheyWord:  "she",
			ThemWord:  "her",
			TheirWord: "her",
		})
		require.NoError(t, err)
		assert.Equal(t, "Mila took a deep breath. she knew her teacher would help her.", got)
	})

	t.Run("defaults pronouns to neutral", func(t *testing.T) {
		svc, _, templates := newReviewService(t)
		templates.On("GetByID", mock.Anything, "tpl-1").
			Return(&models.StoryTemplate{ID: uuid.New(), Body: body}, nil).Once()

		got, err := svc.PersonalizeTemplate(context.Background(), "tpl-1", service.PersonalizationInput{ChildName: "Alex"})
		require.NoError(t, err)
		assert.Equal(t, "Alex took a deep breath. they knew their teacher would help them.", got)
	})

	t.Run("requires child name", func(t *testing.T) {
		svc, _, templates := newReviewService(t)

		_, err := svc.PersonalizeTemplate(context.Background(), "tpl-1", service.PersonalizationInput{})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		templates.AssertNotCalled(t, "GetByID")
	})

	t.Run("template not found", func(t *testing.T) {
		svc, _, templates := newReviewService(t)
		templates.On("GetByID", mock.Anything, "tpl-missing").
			Return(nil, models.ErrTemplateNotFound).Once()

		_, err := svc.PersonalizeTemplate(context.Background(), "tpl-missing", service.PersonalizationInput{ChildName: "Mila"})
		assert.ErrorIs(t, err, models.ErrTemplateNotFound)
	})
}
