// Package repository содержит хранилища доменных документов. Брифы, контракты,
// черновики и шаблоны живут в Firestore; строки аудита генерации - в Postgres.
package repository

import (
	"context"

	"storycare-server/internal/models"
)

// Имена коллекций Firestore.
const (
	CollectionBriefs    = "story_briefs"
	CollectionContracts = "generation_contracts"
	CollectionDrafts    = "story_drafts"
	CollectionTemplates = "story_templates"
)

// BriefRepository персистит брифы. Delete каскадно удаляет контракт брифа
// в той же транзакции: контракт без брифа существовать не должен.
type BriefRepository interface {
	Create(ctx context.Context, brief *models.StoryBrief) error
	GetByID(ctx context.Context, id string) (*models.StoryBrief, error)
	List(ctx context.Context, createdBy string, limit int) ([]*models.StoryBrief, error)
	Update(ctx context.Context, brief *models.StoryBrief) error
	Delete(ctx context.Context, id string) error
}

// DraftRepository персистит черновики историй и их предложения правок.
type DraftRepository interface {
	Create(ctx context.Context, draft *models.StoryDraft) error
	GetByID(ctx context.Context, id string) (*models.StoryDraft, error)
	ListByBrief(ctx context.Context, briefID string) ([]*models.StoryDraft, error)
	// AddSuggestion атомарно дописывает предложение в черновик.
	AddSuggestion(ctx context.Context, draftID string, suggestion models.EditSuggestion) error
	// ResolveSuggestion атомарно принимает или отклоняет предложение.
	// При принятии TargetText заменяется на SuggestedText в теле черновика.
	ResolveSuggestion(ctx context.Context, draftID, suggestionID, resolvedBy string, accept bool) (*models.StoryDraft, error)
	// SetStatus переводит черновик в approved/rejected. Переход разрешен
	// только из pending_review.
	SetStatus(ctx context.Context, draftID string, status models.DraftStatus) (*models.StoryDraft, error)
}

// TemplateRepository персистит утвержденные шаблоны историй.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *models.StoryTemplate) error
	GetByID(ctx context.Context, id string) (*models.StoryTemplate, error)
	List(ctx context.Context, limit int) ([]*models.StoryTemplate, error)
}

// ResultRepository персистит строки аудита генерации.
type ResultRepository interface {
	Save(ctx context.Context, result *models.GenerationResult) error
	ListByBrief(ctx context.Context, briefID string) ([]*models.GenerationResult, error)
}
