package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus is the review lifecycle status of a generated draft.
type DraftStatus string

const (
	DraftStatusPendingReview DraftStatus = "pending_review"
	DraftStatusApproved      DraftStatus = "approved"
	DraftStatusRejected      DraftStatus = "rejected"
)

// SuggestionStatus is the state of a single edit suggestion.
type SuggestionStatus string

const (
	SuggestionStatusPending  SuggestionStatus = "pending"
	SuggestionStatusAccepted SuggestionStatus = "accepted"
	SuggestionStatusRejected SuggestionStatus = "rejected"
)

// EditSuggestion - предложение правки текста черновика от специалиста.
// TargetText заменяется на SuggestedText при принятии.
type EditSuggestion struct {
	ID            string           `firestore:"id" json:"id"`
	SuggestedBy   string           `firestore:"suggestedBy" json:"suggestedBy"`
	TargetText    string           `firestore:"targetText" json:"targetText"`
	SuggestedText string           `firestore:"suggestedText" json:"suggestedText"`
	Note          string           `firestore:"note,omitempty" json:"note,omitempty"`
	Status        SuggestionStatus `firestore:"status" json:"status"`
	ResolvedBy    string           `firestore:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	CreatedAt     time.Time        `firestore:"createdAt" json:"createdAt"`
}

// StoryDraft is one generated story awaiting specialist review.
type StoryDraft struct {
	ID          uuid.UUID        `firestore:"id" json:"id"`
	BriefID     string           `firestore:"briefId" json:"briefId"`
	TaskID      string           `firestore:"taskId" json:"taskId"`
	Title       string           `firestore:"title" json:"title"`
	Content     string           `firestore:"content" json:"content"`
	ModelUsed   string           `firestore:"modelUsed" json:"modelUsed"`
	Status      DraftStatus      `firestore:"status" json:"status"`
	Suggestions []EditSuggestion `firestore:"suggestions" json:"suggestions"`
	CreatedAt   time.Time        `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `firestore:"updatedAt" json:"updatedAt"`
}

// Плейсхолдеры персонализации внутри тела шаблона.
const (
	PlaceholderChildName = "{{child_name}}"
	PlaceholderTheyWord  = "{{they}}"
	PlaceholderThemWord  = "{{them}}"
	PlaceholderTheirWord = "{{their}}"
)

// StoryTemplate is an approved draft promoted to a reusable template.
// The body keeps personalization placeholders which are substituted per child.
type StoryTemplate struct {
	ID         uuid.UUID `firestore:"id" json:"id"`
	BriefID    string    `firestore:"briefId" json:"briefId"`
	DraftID    string    `firestore:"draftId" json:"draftId"`
	Title      string    `firestore:"title" json:"title"`
	Body       string    `firestore:"body" json:"body"`
	ApprovedBy string    `firestore:"approvedBy" json:"approvedBy"`
	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
}

// GenerationResult - строка аудита одного вызова генерации (хранится в Postgres).
type GenerationResult struct {
	TaskID           string    `db:"task_id"`
	BriefID          string    `db:"brief_id"`
	DraftID          string    `db:"draft_id"`
	Status           string    `db:"status"`
	Error            string    `db:"error"`
	ModelUsed        string    `db:"model_used"`
	PromptTokens     int       `db:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens"`
	TotalTokens      int       `db:"total_tokens"`
	EstimatedCostUSD float64   `db:"estimated_cost_usd"`
	DurationMS       int64     `db:"duration_ms"`
	CreatedAt        time.Time `db:"created_at"`
}

// Статусы строки аудита генерации.
const (
	GenerationStatusSuccess = "success"
	GenerationStatusError   = "error"
)
