package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"storycare-server/internal/models"
	"storycare-server/internal/repository"
)

// PersonalizationInput - данные ребенка для подстановки в шаблон.
type PersonalizationInput struct {
	ChildName string `json:"childName"`
	TheyWord  string `json:"they"`
	ThemWord  string `json:"them"`
	TheirWord string `json:"their"`
}

// ReviewService определяет операции ревью черновиков и работы с шаблонами.
type ReviewService interface {
	GetDraft(ctx context.Context, draftID string) (*models.StoryDraft, error)
	ListDrafts(ctx context.Context, briefID string) ([]*models.StoryDraft, error)
	// SuggestEdit добавляет предложение правки к черновику на ревью.
	SuggestEdit(ctx context.Context, draftID, suggestedBy, targetText, suggestedText, note string) (*models.StoryDraft, error)
	// ResolveSuggestion принимает или отклоняет предложение правки.
	ResolveSuggestion(ctx context.Context, draftID, suggestionID, resolvedBy string, accept bool) (*models.StoryDraft, error)
	// ApproveDraft утверждает черновик и продвигает его в шаблон.
	ApproveDraft(ctx context.Context, draftID, approvedBy string) (*models.StoryTemplate, error)
	RejectDraft(ctx context.Context, draftID string) (*models.StoryDraft, error)
	GetTemplate(ctx context.Context, templateID string) (*models.StoryTemplate, error)
	ListTemplates(ctx context.Context, limit int) ([]*models.StoryTemplate, error)
	// PersonalizeTemplate подставляет имя и местоимения ребенка в тело шаблона.
	PersonalizeTemplate(ctx context.Context, templateID string, input PersonalizationInput) (string, error)
}

type reviewServiceImpl struct {
	drafts    repository.DraftRepository
	templates repository.TemplateRepository
	logger    *zap.Logger
}

var _ ReviewService = (*reviewServiceImpl)(nil)

// NewReviewService создает ReviewService.
func NewReviewService(
	drafts repository.DraftRepository,
	templates repository.TemplateRepository,
	logger *zap.Logger,
) ReviewService {
	if drafts == nil {
		log.Fatal().Msg("DraftRepository is nil for ReviewService")
	}
	if templates == nil {
		log.Fatal().Msg("TemplateRepository is nil for ReviewService")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for ReviewService")
	}
	return &reviewServiceImpl{
		drafts:    drafts,
		templates: templates,
		logger:    logger.Named("ReviewService"),
	}
}

func (s *reviewServiceImpl) GetDraft(ctx context.Context, draftID string) (*models.StoryDraft, error) {
	return s.drafts.GetByID(ctx, draftID)
}

func (s *reviewServiceImpl) ListDrafts(ctx context.Context, briefID string) ([]*models.StoryDraft, error) {
	return s.drafts.ListByBrief(ctx, briefID)
}

func (s *reviewServiceImpl) SuggestEdit(ctx context.Context, draftID, suggestedBy, targetText, suggestedText, note string) (*models.StoryDraft, error) {
	if strings.TrimSpace(targetText) == "" || strings.TrimSpace(suggestedText) == "" {
		return nil, fmt.Errorf("%w: target and suggested text are required", models.ErrInvalidInput)
	}

	suggestion := models.EditSuggestion{
		ID:            uuid.NewString(),
		SuggestedBy:   suggestedBy,
		TargetText:    targetText,
		SuggestedText: suggestedText,
		Note:          note,
		Status:        models.SuggestionStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.drafts.AddSuggestion(ctx, draftID, suggestion); err != nil {
		return nil, err
	}

	s.logger.Info("Edit suggestion added",
		zap.String("draftID", draftID), zap.String("suggestionID", suggestion.ID))
	return s.drafts.GetByID(ctx, draftID)
}

func (s *reviewServiceImpl) ResolveSuggestion(ctx context.Context, draftID, suggestionID, resolvedBy string, accept bool) (*models.StoryDraft, error) {
	draft, err := s.drafts.ResolveSuggestion(ctx, draftID, suggestionID, resolvedBy, accept)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Edit suggestion resolved",
		zap.String("draftID", draftID),
		zap.String("suggestionID", suggestionID),
		zap.Bool("accepted", accept))
	return draft, nil
}

// ApproveDraft утверждает черновик и создает из него шаблон. Утвержденный
// текст фиксируется: дальнейшие правки требуют нового черновика.
func (s *reviewServiceImpl) ApproveDraft(ctx context.Context, draftID, approvedBy string) (*models.StoryTemplate, error) {
	draft, err := s.drafts.SetStatus(ctx, draftID, models.DraftStatusApproved)
	if err != nil {
		return nil, err
	}

	tpl := &models.StoryTemplate{
		ID:         uuid.New(),
		BriefID:    draft.BriefID,
		DraftID:    draft.ID.String(),
		Title:      draft.Title,
		Body:       draft.Content,
		ApprovedBy: approvedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}

	s.logger.Info("Draft approved and promoted to template",
		zap.String("draftID", draftID),
		zap.String("templateID", tpl.ID.String()),
		zap.String("approvedBy", approvedBy))
	return tpl, nil
}

func (s *reviewServiceImpl) RejectDraft(ctx context.Context, draftID string) (*models.StoryDraft, error) {
	draft, err := s.drafts.SetStatus(ctx, draftID, models.DraftStatusRejected)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Draft rejected", zap.String("draftID", draftID))
	return draft, nil
}

func (s *reviewServiceImpl) GetTemplate(ctx context.Context, templateID string) (*models.StoryTemplate, error) {
	return s.templates.GetByID(ctx, templateID)
}

func (s *reviewServiceImpl) ListTemplates(ctx context.Context, limit int) ([]*models.StoryTemplate, error) {
	return s.templates.List(ctx, limit)
}

func (s *reviewServiceImpl) PersonalizeTemplate(ctx context.Context, templateID string, input PersonalizationInput) (string, error) {
	if strings.TrimSpace(input.ChildName) == "" {
		return "", fmt.Errorf("%w: child name is required", models.ErrInvalidInput)
	}
	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return "", err
	}

	they := input.TheyWord
	if they == "" {
		they = "they"
	}
	them := input.ThemWord
	if them == "" {
		them = "them"
	}
	their := input.TheirWord
	if their == "" {
		their = "their"
	}

	replacer := strings.NewReplacer(
		models.PlaceholderChildName, input.ChildName,
		models.PlaceholderTheyWord, they,
		models.PlaceholderThemWord, them,
		models.PlaceholderTheirWord, their,
	)
	return replacer.Replace(tpl.Body), nil
}
