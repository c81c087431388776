package rules

import (
	"context"

	"storycare-server/internal/models"
)

// Store - хранилище версионированных бандлов клинических правил.
// Бандл читается и сохраняется только целиком (атомарно по версии).
type Store interface {
	// GetBundle возвращает бандл точной версии.
	// Возвращает models.ErrRulesVersionNotFound, если версии нет.
	GetBundle(ctx context.Context, version string) (*models.ClinicalRulesBundle, error)
	// DefaultVersion возвращает опубликованную версию по умолчанию.
	DefaultVersion(ctx context.Context) (string, error)
	// SaveBundle сохраняет бандл под его версией (перезапись допустима до публикации).
	SaveBundle(ctx context.Context, bundle *models.ClinicalRulesBundle) error
	// SetDefaultVersion публикует версию как версию по умолчанию.
	SetDefaultVersion(ctx context.Context, version string) error
	// ListVersions возвращает все известные версии.
	ListVersions(ctx context.Context) ([]string, error)
}

// Loader выдает бандлы правил компилятору. Пустая версия означает
// актуальную версию по умолчанию. Повторные вызовы в рамках одной
// компиляции обязаны видеть один и тот же снапшот версии.
type Loader interface {
	Load(ctx context.Context, version string) (*models.ClinicalRulesBundle, error)
	// Invalidate сбрасывает закешированный бандл указанной версии
	// (и резолв версии по умолчанию, если version пустая).
	Invalidate(ctx context.Context, version string)
}
