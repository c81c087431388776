package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storycare-server/internal/models"
)

// Compile-time check
var _ DraftRepository = (*firestoreDraftRepository)(nil)

type firestoreDraftRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreDraftRepository создает DraftRepository поверх Firestore.
func NewFirestoreDraftRepository(client *firestore.Client, logger *zap.Logger) DraftRepository {
	return &firestoreDraftRepository{
		client: client,
		logger: logger.Named("FirestoreDraftRepo"),
	}
}

func (r *firestoreDraftRepository) Create(ctx context.Context, draft *models.StoryDraft) error {
	if _, err := r.client.Collection(CollectionDrafts).Doc(draft.ID.String()).Create(ctx, draft); err != nil {
		r.logger.Error("Failed to create draft", zap.String("draftID", draft.ID.String()), zap.Error(err))
		return fmt.Errorf("ошибка создания черновика %s: %w", draft.ID, err)
	}
	r.logger.Info("Draft created",
		zap.String("draftID", draft.ID.String()), zap.String("briefID", draft.BriefID))
	return nil
}

func (r *firestoreDraftRepository) GetByID(ctx context.Context, id string) (*models.StoryDraft, error) {
	snap, err := r.client.Collection(CollectionDrafts).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrDraftNotFound
		}
		r.logger.Error("Failed to get draft", zap.String("draftID", id), zap.Error(err))
		return nil, fmt.Errorf("ошибка чтения черновика %s: %w", id, err)
	}
	return decodeDraft(snap)
}

func (r *firestoreDraftRepository) ListByBrief(ctx context.Context, briefID string) ([]*models.StoryDraft, error) {
	iter := r.client.Collection(CollectionDrafts).
		Where("briefId", "==", briefID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	drafts := []*models.StoryDraft{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			r.logger.Error("Failed to list drafts", zap.String("briefID", briefID), zap.Error(err))
			return nil, fmt.Errorf("ошибка чтения черновиков брифа %s: %w", briefID, err)
		}
		draft, decErr := decodeDraft(snap)
		if decErr != nil {
			return nil, decErr
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// AddSuggestion дописывает предложение правки транзакцией read-modify-write.
func (r *firestoreDraftRepository) AddSuggestion(ctx context.Context, draftID string, suggestion models.EditSuggestion) error {
	ref := r.client.Collection(CollectionDrafts).Doc(draftID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		draft, err := getDraftTx(tx, ref)
		if err != nil {
			return err
		}
		if draft.Status != models.DraftStatusPendingReview {
			return models.ErrDraftNotReviewable
		}
		draft.Suggestions = append(draft.Suggestions, suggestion)
		draft.UpdatedAt = time.Now().UTC()
		return tx.Set(ref, draft)
	})
	if err != nil {
		if err == models.ErrDraftNotFound || err == models.ErrDraftNotReviewable {
			return err
		}
		r.logger.Error("Failed to add suggestion", zap.String("draftID", draftID), zap.Error(err))
		return fmt.Errorf("ошибка добавления предложения к черновику %s: %w", draftID, err)
	}
	return nil
}

// ResolveSuggestion принимает или отклоняет предложение. Принятие применяет
// замену TargetText -> SuggestedText к телу черновика; если целевой текст
// в теле уже не встречается, предложение все равно помечается принятым -
// текст мог быть изменен другой принятой правкой.
func (r *firestoreDraftRepository) ResolveSuggestion(ctx context.Context, draftID, suggestionID, resolvedBy string, accept bool) (*models.StoryDraft, error) {
	ref := r.client.Collection(CollectionDrafts).Doc(draftID)
	var result *models.StoryDraft
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		draft, err := getDraftTx(tx, ref)
		if err != nil {
			return err
		}
		if draft.Status != models.DraftStatusPendingReview {
			return models.ErrDraftNotReviewable
		}

		idx := -1
		for i := range draft.Suggestions {
			if draft.Suggestions[i].ID == suggestionID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return models.ErrSuggestionNotFound
		}
		if draft.Suggestions[idx].Status != models.SuggestionStatusPending {
			return models.ErrSuggestionAlreadyResolved
		}

		if accept {
			draft.Suggestions[idx].Status = models.SuggestionStatusAccepted
			draft.Content = strings.Replace(draft.Content, draft.Suggestions[idx].TargetText, draft.Suggestions[idx].SuggestedText, 1)
		} else {
			draft.Suggestions[idx].Status = models.SuggestionStatusRejected
		}
		draft.Suggestions[idx].ResolvedBy = resolvedBy
		draft.UpdatedAt = time.Now().UTC()

		result = draft
		return tx.Set(ref, draft)
	})
	if err != nil {
		switch err {
		case models.ErrDraftNotFound, models.ErrDraftNotReviewable,
			models.ErrSuggestionNotFound, models.ErrSuggestionAlreadyResolved:
			return nil, err
		}
		r.logger.Error("Failed to resolve suggestion",
			zap.String("draftID", draftID), zap.String("suggestionID", suggestionID), zap.Error(err))
		return nil, fmt.Errorf("ошибка обработки предложения %s черновика %s: %w", suggestionID, draftID, err)
	}
	return result, nil
}

// SetStatus переводит черновик из pending_review в конечный статус.
func (r *firestoreDraftRepository) SetStatus(ctx context.Context, draftID string, newStatus models.DraftStatus) (*models.StoryDraft, error) {
	ref := r.client.Collection(CollectionDrafts).Doc(draftID)
	var result *models.StoryDraft
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		draft, err := getDraftTx(tx, ref)
		if err != nil {
			return err
		}
		if draft.Status != models.DraftStatusPendingReview {
			return models.ErrDraftNotReviewable
		}
		draft.Status = newStatus
		draft.UpdatedAt = time.Now().UTC()
		result = draft
		return tx.Set(ref, draft)
	})
	if err != nil {
		if err == models.ErrDraftNotFound || err == models.ErrDraftNotReviewable {
			return nil, err
		}
		r.logger.Error("Failed to set draft status",
			zap.String("draftID", draftID), zap.String("status", string(newStatus)), zap.Error(err))
		return nil, fmt.Errorf("ошибка смены статуса черновика %s: %w", draftID, err)
	}
	return result, nil
}

func getDraftTx(tx *firestore.Transaction, ref *firestore.DocumentRef) (*models.StoryDraft, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrDraftNotFound
		}
		return nil, err
	}
	return decodeDraft(snap)
}

func decodeDraft(snap *firestore.DocumentSnapshot) (*models.StoryDraft, error) {
	var draft models.StoryDraft
	if err := snap.DataTo(&draft); err != nil {
		return nil, fmt.Errorf("ошибка декодирования черновика %s: %w", snap.Ref.ID, err)
	}
	if draft.Suggestions == nil {
		draft.Suggestions = []models.EditSuggestion{}
	}
	return &draft, nil
}
