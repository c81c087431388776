package refdata

import (
	"context"

	"storycare-server/internal/models"
)

// Accessor отвечает на два вопроса валидатора: существует ли ключ K в
// категории C (и активен ли он), и какая тема является родителем ситуации S.
// Возвращает models.ErrRefItemNotFound, если ключа нет в категории.
type Accessor interface {
	GetItem(ctx context.Context, category, key string) (*models.ReferenceItem, error)
	ListItems(ctx context.Context, category string) ([]models.ReferenceItem, error)
	UpsertItem(ctx context.Context, category string, item models.ReferenceItem) error
}
