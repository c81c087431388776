package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storycare-server/internal/models"
)

// Compile-time check
var _ BriefRepository = (*firestoreBriefRepository)(nil)

type firestoreBriefRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreBriefRepository создает BriefRepository поверх Firestore.
func NewFirestoreBriefRepository(client *firestore.Client, logger *zap.Logger) BriefRepository {
	return &firestoreBriefRepository{
		client: client,
		logger: logger.Named("FirestoreBriefRepo"),
	}
}

func (r *firestoreBriefRepository) Create(ctx context.Context, brief *models.StoryBrief) error {
	if _, err := r.client.Collection(CollectionBriefs).Doc(brief.ID.String()).Create(ctx, brief); err != nil {
		r.logger.Error("Failed to create brief", zap.String("briefID", brief.ID.String()), zap.Error(err))
		return fmt.Errorf("ошибка создания брифа %s: %w", brief.ID, err)
	}
	r.logger.Info("Brief created", zap.String("briefID", brief.ID.String()))
	return nil
}

func (r *firestoreBriefRepository) GetByID(ctx context.Context, id string) (*models.StoryBrief, error) {
	snap, err := r.client.Collection(CollectionBriefs).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrBriefNotFound
		}
		r.logger.Error("Failed to get brief", zap.String("briefID", id), zap.Error(err))
		return nil, fmt.Errorf("ошибка чтения брифа %s: %w", id, err)
	}
	var brief models.StoryBrief
	if err := snap.DataTo(&brief); err != nil {
		return nil, fmt.Errorf("ошибка декодирования брифа %s: %w", id, err)
	}
	return &brief, nil
}

func (r *firestoreBriefRepository) List(ctx context.Context, createdBy string, limit int) ([]*models.StoryBrief, error) {
	query := r.client.Collection(CollectionBriefs).OrderBy("createdAt", firestore.Desc)
	if createdBy != "" {
		query = query.Where("input.createdBy", "==", createdBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	briefs := []*models.StoryBrief{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			r.logger.Error("Failed to list briefs", zap.Error(err))
			return nil, fmt.Errorf("ошибка чтения списка брифов: %w", err)
		}
		var brief models.StoryBrief
		if err := snap.DataTo(&brief); err != nil {
			return nil, fmt.Errorf("ошибка декодирования брифа %s: %w", snap.Ref.ID, err)
		}
		briefs = append(briefs, &brief)
	}
	return briefs, nil
}

func (r *firestoreBriefRepository) Update(ctx context.Context, brief *models.StoryBrief) error {
	if _, err := r.client.Collection(CollectionBriefs).Doc(brief.ID.String()).Set(ctx, brief); err != nil {
		r.logger.Error("Failed to update brief", zap.String("briefID", brief.ID.String()), zap.Error(err))
		return fmt.Errorf("ошибка обновления брифа %s: %w", brief.ID, err)
	}
	return nil
}

// Delete удаляет бриф и его контракт одной транзакцией. Отсутствие контракта
// не ошибка: бриф мог ни разу не компилироваться успешно до записи контракта.
func (r *firestoreBriefRepository) Delete(ctx context.Context, id string) error {
	briefRef := r.client.Collection(CollectionBriefs).Doc(id)
	contractRef := r.client.Collection(CollectionContracts).Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(briefRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return models.ErrBriefNotFound
			}
			return err
		}
		if err := tx.Delete(briefRef); err != nil {
			return err
		}
		return tx.Delete(contractRef)
	})
	if err != nil {
		if err == models.ErrBriefNotFound {
			return err
		}
		r.logger.Error("Failed to delete brief with contract", zap.String("briefID", id), zap.Error(err))
		return fmt.Errorf("ошибка удаления брифа %s: %w", id, err)
	}
	r.logger.Info("Brief deleted with its contract", zap.String("briefID", id))
	return nil
}
