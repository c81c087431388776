package refdata

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

// Префикс имен коллекций справочных данных: reference_topics, reference_situations и т.д.
const collectionPrefix = "reference_"

// Compile-time check
var _ Accessor = (*firestoreAccessor)(nil)

type firestoreAccessor struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreAccessor создает Accessor поверх Firestore.
// Каждая категория хранится в отдельной коллекции, ключ элемента = ID документа.
func NewFirestoreAccessor(client *firestore.Client, logger *zap.Logger) Accessor {
	return &firestoreAccessor{
		client: client,
		logger: logger.Named("FirestoreRefData"),
	}
}

func (a *firestoreAccessor) collection(category string) *firestore.CollectionRef {
	return a.client.Collection(collectionPrefix + category)
}

func (a *firestoreAccessor) GetItem(ctx context.Context, category, key string) (*models.ReferenceItem, error) {
	snap, err := a.collection(category).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrRefItemNotFound
		}
		a.logger.Error("Failed to get reference item",
			zap.String("category", category), zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("ошибка чтения справочника %s/%s: %w", category, key, err)
	}

	var item models.ReferenceItem
	if err := snap.DataTo(&item); err != nil {
		a.logger.Error("Failed to decode reference item",
			zap.String("category", category), zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("ошибка декодирования справочника %s/%s: %w", category, key, err)
	}
	return &item, nil
}

func (a *firestoreAccessor) ListItems(ctx context.Context, category string) ([]models.ReferenceItem, error) {
	iter := a.collection(category).OrderBy("key", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var items []models.ReferenceItem
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			a.logger.Error("Failed to list reference items", zap.String("category", category), zap.Error(err))
			return nil, fmt.Errorf("ошибка чтения категории %s: %w", category, err)
		}
		var item models.ReferenceItem
		if err := snap.DataTo(&item); err != nil {
			return nil, fmt.Errorf("ошибка декодирования элемента категории %s: %w", category, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (a *firestoreAccessor) UpsertItem(ctx context.Context, category string, item models.ReferenceItem) error {
	if item.Key == "" {
		return fmt.Errorf("%w: reference item key is empty", models.ErrInvalidInput)
	}
	if _, err := a.collection(category).Doc(item.Key).Set(ctx, item); err != nil {
		a.logger.Error("Failed to upsert reference item",
			zap.String("category", category), zap.String("key", item.Key), zap.Error(err))
		return fmt.Errorf("ошибка записи справочника %s/%s: %w", category, item.Key, err)
	}
	a.logger.Debug("Reference item upserted", zap.String("category", category), zap.String("key", item.Key))
	return nil
}
