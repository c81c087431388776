// Package seed загружает стартовые справочные данные и бандл клинических
// правил в пустое хранилище.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"storycare-server/internal/models"
	"storycare-server/internal/refdata"
	"storycare-server/internal/rules"
)

//go:embed data/*.yml
var dataFS embed.FS

// referenceFixture - структура файла data/reference.yml.
type referenceFixture struct {
	Categories map[string][]models.ReferenceItem `yaml:"categories"`
}

// LoadReferenceFixture читает встроенные справочные данные.
func LoadReferenceFixture() (map[string][]models.ReferenceItem, error) {
	raw, err := dataFS.ReadFile("data/reference.yml")
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения фикстуры справочников: %w", err)
	}
	var fixture referenceFixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("ошибка разбора фикстуры справочников: %w", err)
	}
	return fixture.Categories, nil
}

// LoadRulesFixture читает встроенный бандл клинических правил.
func LoadRulesFixture() (*models.ClinicalRulesBundle, error) {
	raw, err := dataFS.ReadFile("data/clinical_rules_v1.yml")
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения фикстуры правил: %w", err)
	}
	var bundle models.ClinicalRulesBundle
	if err := yaml.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("ошибка разбора фикстуры правил: %w", err)
	}
	return &bundle, nil
}

// Apply засеивает справочники и правила. Справочные элементы всегда
// апсертятся (ключи фикстуры канонические), бандл правил публикуется
// только если версии по умолчанию еще нет.
func Apply(ctx context.Context, ref refdata.Accessor, store rules.Store, logger *zap.Logger) error {
	log := logger.Named("Seed")

	categories, err := LoadReferenceFixture()
	if err != nil {
		return err
	}
	count := 0
	for category, items := range categories {
		for _, item := range items {
			if err := ref.UpsertItem(ctx, category, item); err != nil {
				return fmt.Errorf("ошибка засеивания %s/%s: %w", category, item.Key, err)
			}
			count++
		}
	}
	log.Info("Reference data seeded", zap.Int("items", count))

	if _, err := store.DefaultVersion(ctx); err == nil {
		log.Info("Default clinical rules version already published, skipping rules seed")
		return nil
	} else if !errors.Is(err, models.ErrRulesVersionNotFound) {
		return fmt.Errorf("ошибка проверки версии правил по умолчанию: %w", err)
	}

	bundle, err := LoadRulesFixture()
	if err != nil {
		return err
	}
	if err := store.SaveBundle(ctx, bundle); err != nil {
		return fmt.Errorf("ошибка сохранения бандла правил %s: %w", bundle.Version, err)
	}
	if err := store.SetDefaultVersion(ctx, bundle.Version); err != nil {
		return fmt.Errorf("ошибка публикации версии правил %s: %w", bundle.Version, err)
	}
	log.Info("Clinical rules bundle seeded and published", zap.String("version", bundle.Version))
	return nil
}
