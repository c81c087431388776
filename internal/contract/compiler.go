// Package contract компилирует валидированный бриф и версионированный бандл
// клинических правил в один нормализованный GenerationContract - единственный
// источник требований для построения промптов.
package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"storycare-server/internal/models"
	"storycare-server/internal/refdata"
	"storycare-server/internal/rules"
	"storycare-server/internal/validation"
)

// Compiler строит и персистит контракты генерации. Все зависимости
// инжектируются явно, поэтому компилятор тестируется на фикстурах.
type Compiler struct {
	ref    refdata.Accessor
	rules  rules.Loader
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewCompiler создает Compiler.
func NewCompiler(ref refdata.Accessor, loader rules.Loader, store Store, logger *zap.Logger) *Compiler {
	if ref == nil {
		log.Fatal().Msg("Reference data accessor is nil for Compiler")
	}
	if loader == nil {
		log.Fatal().Msg("Rules loader is nil for Compiler")
	}
	if store == nil {
		log.Fatal().Msg("Contract store is nil for Compiler")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for Compiler")
	}
	return &Compiler{
		ref:    ref,
		rules:  loader,
		store:  store,
		logger: logger.Named("ContractCompiler"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// BuildGenerationContract валидирует бриф и компилирует контракт.
//
// Невалидный бриф - ожидаемый исход: возвращается контракт со статусом
// failed_validation и заполненными ошибками, он тоже персистится (аудит
// неудачных попыток). Ошибка Go возвращается только при сбоях коллабораторов
// и при рассинхроне справочных данных с правилами (NO_AGE_RULE и родственные) -
// такие случаи не маскируются дефолтами.
//
// Компиляция идемпотентна: один бриф против одной версии правил дает
// байт-в-байт одинаковые requiredElements, allowedCopingTools и mustAvoid.
func (c *Compiler) BuildGenerationContract(ctx context.Context, briefID string, brief *models.StoryBriefInput) (*models.GenerationContract, error) {
	start := time.Now()
	logFields := []zap.Field{zap.String("briefID", briefID)}

	// 1. Валидация.
	valRes, err := validation.Validate(ctx, brief, c.ref)
	if err != nil {
		compilesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ошибка валидации брифа %s: %w", briefID, err)
	}

	if !valRes.IsValid {
		contract := &models.GenerationContract{
			BriefID:            briefID,
			Status:             models.ContractStatusFailedValidation,
			Errors:             valRes.Errors,
			Warnings:           valRes.Warnings,
			RequiredElements:   []string{},
			AllowedCopingTools: []string{},
			MustAvoid:          []string{},
			UpdatedAt:          c.now(),
		}
		if err := c.persist(ctx, contract); err != nil {
			compilesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		compilesTotal.WithLabelValues("failed_validation").Inc()
		compileDuration.Observe(time.Since(start).Seconds())
		c.logger.Info("Brief failed validation, failed contract persisted",
			append(logFields, zap.Int("errors", len(valRes.Errors)))...)
		return contract, nil
	}

	// 2. Загрузка бандла правил (пин версии из брифа либо версия по умолчанию).
	bundle, err := c.rules.Load(ctx, brief.RulesVersion)
	if err != nil {
		compilesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	logFields = append(logFields, zap.String("rulesVersion", bundle.Version))

	// 3. Правило возрастной группы. Его отсутствие для провалидированного
	// значения - рассинхрон данных, не ошибка пользователя.
	ageGroup := brief.ChildProfile.AgeGroup
	ageRule, ok := bundle.AgeRules[string(ageGroup)]
	if !ok {
		compilesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s (rules version %s)", models.ErrNoAgeRule, ageGroup, bundle.Version)
	}

	goals := dedupStrings(brief.TherapeuticIntent.EmotionalGoals)

	// 5. Обязательные элементы: элементы возрастного правила, затем
	// требования каждой выбранной цели в порядке подачи.
	requiredLists := [][]string{ageRule.MandatoryElements}
	// 6. Инструменты совладания, рекомендованные целями.
	var toolLists [][]string
	for _, goal := range goals {
		mapping, ok := bundle.GoalMappings[goal]
		if !ok {
			compilesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: %s (rules version %s)", models.ErrNoGoalMapping, goal, bundle.Version)
		}
		requiredLists = append(requiredLists, mapping.RequiredElements)
		toolLists = append(toolLists, mapping.RecommendedCopingTools)
	}
	requiredElements := dedupStrings(requiredLists...)

	allowedTools, err := c.filterToolsByAge(bundle, dedupStrings(toolLists...), ageGroup)
	if err != nil {
		compilesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// 7. Must-avoid: правило концовки, затем правило чувствительности,
	// затем каждое исключение в порядке подачи. Порядок фиксирован.
	endingStyle := brief.StoryPreferences.EndingStyle
	endingRule, ok := bundle.EndingRules[string(endingStyle)]
	if !ok {
		compilesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s (rules version %s)", models.ErrNoEndingRule, endingStyle, bundle.Version)
	}
	sensRule, ok := bundle.SensitivityRules[string(brief.ChildProfile.EmotionalSensitivity)]
	if !ok {
		compilesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s (rules version %s)",
			models.ErrNoSensitivityRule, brief.ChildProfile.EmotionalSensitivity, bundle.Version)
	}
	avoidLists := [][]string{endingRule.ForbiddenPatterns, sensRule.ExtraMustAvoid}
	for _, excl := range brief.SafetyConstraints.Exclusions {
		exclRule, ok := bundle.Exclusions[excl]
		if !ok {
			compilesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: %s (rules version %s)", models.ErrNoExclusionRule, excl, bundle.Version)
		}
		avoidLists = append(avoidLists, exclRule.MustAvoidPhrasesOrThemes)
	}
	mustAvoid := dedupStrings(avoidLists...)

	// 9. Сборка и персист.
	contract := &models.GenerationContract{
		BriefID:          briefID,
		RulesVersionUsed: bundle.Version,
		Status:           models.ContractStatusOK,
		Errors:           []models.ValidationIssue{},
		Warnings:         valRes.Warnings,
		LengthBudget: models.LengthBudget{
			MinScenes: ageRule.MinScenes,
			MaxScenes: ageRule.MaxScenes,
			MaxWords:  ageRule.MaxWords,
		},
		RequiredElements:   requiredElements,
		AllowedCopingTools: allowedTools,
		MustAvoid:          mustAvoid,
		EndingContract: models.EndingContract{
			Style:               endingStyle,
			RequiresSafeClosure: endingRule.RequiresSafeClosure,
		},
		UpdatedAt: c.now(),
	}
	if err := c.persist(ctx, contract); err != nil {
		compilesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	compilesTotal.WithLabelValues("ok").Inc()
	compileDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("Generation contract compiled",
		append(logFields,
			zap.Int("requiredElements", len(requiredElements)),
			zap.Int("allowedCopingTools", len(allowedTools)),
			zap.Int("mustAvoid", len(mustAvoid)))...)
	return contract, nil
}

// filterToolsByAge оставляет только инструменты, применимые к возрастной
// группе. Инструмент, рекомендованный целью, но отсутствующий в карте
// copingTools - рассинхрон бандла.
func (c *Compiler) filterToolsByAge(bundle *models.ClinicalRulesBundle, tools []string, age models.AgeGroup) ([]string, error) {
	out := []string{}
	for _, key := range tools {
		tool, ok := bundle.CopingTools[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s (rules version %s)", models.ErrNoCopingToolRule, key, bundle.Version)
		}
		if tool.AppliesTo(age) {
			out = append(out, key)
		}
	}
	return out, nil
}

// persist сохраняет контракт с семантикой перезаписи: CreatedAt берется из
// существующего контракта, если он был.
func (c *Compiler) persist(ctx context.Context, contract *models.GenerationContract) error {
	existing, err := c.store.Get(ctx, contract.BriefID)
	if err != nil && !errors.Is(err, models.ErrContractNotFound) {
		return fmt.Errorf("ошибка чтения контракта %s перед записью: %w", contract.BriefID, err)
	}
	if existing != nil {
		contract.CreatedAt = existing.CreatedAt
	} else {
		contract.CreatedAt = contract.UpdatedAt
	}
	if err := c.store.Save(ctx, contract); err != nil {
		return fmt.Errorf("ошибка сохранения контракта %s: %w", contract.BriefID, err)
	}
	return nil
}
