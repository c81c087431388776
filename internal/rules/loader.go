package rules

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"storycare-server/internal/models"
)

// CachedLoader - Loader с read-through кешем. Зависимости передаются явно,
// никакого глобального состояния: компилятор получает готовый Loader.
type CachedLoader struct {
	store  Store
	cache  BundleCache
	logger *zap.Logger
}

var _ Loader = (*CachedLoader)(nil)

// NewCachedLoader создает CachedLoader. cache может быть nil - тогда каждый
// вызов идет в Store напрямую (кеширование - оптимизация, не корректность).
func NewCachedLoader(store Store, cache BundleCache, logger *zap.Logger) *CachedLoader {
	if store == nil {
		log.Fatal().Msg("Rules store is nil for CachedLoader")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for CachedLoader")
	}
	return &CachedLoader{
		store:  store,
		cache:  cache,
		logger: logger.Named("RulesLoader"),
	}
}

// Load возвращает бандл запрошенной версии; пустая версия резолвится в
// версию по умолчанию. Бандл проверяется на целостность: все шесть карт
// правил должны присутствовать (атомарность версии).
func (l *CachedLoader) Load(ctx context.Context, version string) (*models.ClinicalRulesBundle, error) {
	if version == "" {
		resolved, err := l.store.DefaultVersion(ctx)
		if err != nil {
			return nil, fmt.Errorf("ошибка резолва версии правил по умолчанию: %w", err)
		}
		version = resolved
	}

	if l.cache != nil {
		if bundle, ok := l.cache.Get(ctx, version); ok {
			l.logger.Debug("Rules bundle served from cache", zap.String("version", version))
			return bundle, nil
		}
	}

	bundle, err := l.store.GetBundle(ctx, version)
	if err != nil {
		return nil, err
	}
	if err := validateBundle(bundle); err != nil {
		return nil, err
	}

	if l.cache != nil {
		l.cache.Set(ctx, version, bundle)
	}
	l.logger.Info("Rules bundle loaded", zap.String("version", version))
	return bundle, nil
}

// Invalidate сбрасывает кеш для версии. Вызывается при перепубликации.
func (l *CachedLoader) Invalidate(ctx context.Context, version string) {
	if l.cache == nil || version == "" {
		return
	}
	l.cache.Delete(ctx, version)
	l.logger.Info("Rules bundle cache invalidated", zap.String("version", version))
}

// validateBundle отклоняет частично загруженные бандлы: отсутствие любой
// карты правил означает смешивание/порчу версии.
func validateBundle(b *models.ClinicalRulesBundle) error {
	switch {
	case b.AgeRules == nil:
		return fmt.Errorf("%w: ageRules (version %s)", models.ErrBundleIncomplete, b.Version)
	case b.GoalMappings == nil:
		return fmt.Errorf("%w: goalMappings (version %s)", models.ErrBundleIncomplete, b.Version)
	case b.CopingTools == nil:
		return fmt.Errorf("%w: copingTools (version %s)", models.ErrBundleIncomplete, b.Version)
	case b.EndingRules == nil:
		return fmt.Errorf("%w: endingRules (version %s)", models.ErrBundleIncomplete, b.Version)
	case b.SensitivityRules == nil:
		return fmt.Errorf("%w: sensitivityRules (version %s)", models.ErrBundleIncomplete, b.Version)
	case b.Exclusions == nil:
		return fmt.Errorf("%w: exclusions (version %s)", models.ErrBundleIncomplete, b.Version)
	}
	return nil
}
