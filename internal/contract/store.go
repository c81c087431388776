package contract

import (
	"context"

	"storycare-server/internal/models"
)

// Store персистит скомпилированные контракты, ключ - briefID.
// Save перезаписывает существующий контракт целиком (last-write-wins),
// сохраняя CreatedAt оригинала; частичная запись недопустима.
type Store interface {
	Get(ctx context.Context, briefID string) (*models.GenerationContract, error)
	Save(ctx context.Context, contract *models.GenerationContract) error
	// Delete удаляет контракт брифа. Отсутствующий контракт - не ошибка.
	Delete(ctx context.Context, briefID string) error
}
