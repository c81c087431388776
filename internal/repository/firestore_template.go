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
var _ TemplateRepository = (*firestoreTemplateRepository)(nil)

type firestoreTemplateRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreTemplateRepository создает TemplateRepository поверх Firestore.
func NewFirestoreTemplateRepository(client *firestore.Client, logger *zap.Logger) TemplateRepository {
	return &firestoreTemplateRepository{
		client: client,
		logger: logger.Named("FirestoreTemplateRepo"),
	}
}

func (r *firestoreTemplateRepository) Create(ctx context.Context, tpl *models.StoryTemplate) error {
	if _, err := r.client.Collection(CollectionTemplates).Doc(tpl.ID.String()).Create(ctx, tpl); err != nil {
		r.logger.Error("Failed to create template", zap.String("templateID", tpl.ID.String()), zap.Error(err))
		return fmt.Errorf("ошибка создания шаблона %s: %w", tpl.ID, err)
	}
	r.logger.Info("Template created",
		zap.String("templateID", tpl.ID.String()), zap.String("draftID", tpl.DraftID))
	return nil
}

func (r *firestoreTemplateRepository) GetByID(ctx context.Context, id string) (*models.StoryTemplate, error) {
	snap, err := r.client.Collection(CollectionTemplates).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrTemplateNotFound
		}
		r.logger.Error("Failed to get template", zap.String("templateID", id), zap.Error(err))
		return nil, fmt.Errorf("ошибка чтения шаблона %s: %w", id, err)
	}
	var tpl models.StoryTemplate
	if err := snap.DataTo(&tpl); err != nil {
		return nil, fmt.Errorf("ошибка декодирования шаблона %s: %w", id, err)
	}
	return &tpl, nil
}

func (r *firestoreTemplateRepository) List(ctx context.Context, limit int) ([]*models.StoryTemplate, error) {
	query := r.client.Collection(CollectionTemplates).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	templates := []*models.StoryTemplate{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			r.logger.Error("Failed to list templates", zap.Error(err))
			return nil, fmt.Errorf("ошибка чтения списка шаблонов: %w", err)
		}
		var tpl models.StoryTemplate
		if err := snap.DataTo(&tpl); err != nil {
			return nil, fmt.Errorf("ошибка декодирования шаблона %s: %w", snap.Ref.ID, err)
		}
		templates = append(templates, &tpl)
	}
	return templates, nil
}
