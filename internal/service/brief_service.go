// Package service содержит бизнес-логику поверх репозиториев и компилятора
// контрактов.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"storycare-server/internal/contract"
	"storycare-server/internal/messaging"
	"storycare-server/internal/models"
	"storycare-server/internal/repository"
)

// BriefService определяет операции жизненного цикла брифа.
type BriefService interface {
	// SubmitBrief валидирует и компилирует новый бриф. Бриф и контракт
	// персистятся в любом случае: невалидный бриф получает статус
	// failed_validation и контракт с ошибками.
	SubmitBrief(ctx context.Context, input *models.StoryBriefInput) (*models.StoryBrief, *models.GenerationContract, error)
	GetBrief(ctx context.Context, id string) (*models.StoryBrief, error)
	GetContract(ctx context.Context, briefID string) (*models.GenerationContract, error)
	ListBriefs(ctx context.Context, createdBy string, limit int) ([]*models.StoryBrief, error)
	// Recompile перекомпилирует существующий бриф против актуальных правил.
	Recompile(ctx context.Context, briefID string) (*models.GenerationContract, error)
	// DeleteBrief удаляет бриф вместе с контрактом.
	DeleteBrief(ctx context.Context, briefID string) error
	// RequestGeneration ставит задачу генерации в очередь. Контракт брифа
	// обязан иметь статус ok.
	RequestGeneration(ctx context.Context, briefID, specialistID string) (string, error)
}

type briefServiceImpl struct {
	briefs    repository.BriefRepository
	contracts contract.Store
	compiler  *contract.Compiler
	publisher messaging.TaskPublisher
	logger    *zap.Logger
}

var _ BriefService = (*briefServiceImpl)(nil)

// NewBriefService создает BriefService.
func NewBriefService(
	briefs repository.BriefRepository,
	contracts contract.Store,
	compiler *contract.Compiler,
	publisher messaging.TaskPublisher,
	logger *zap.Logger,
) BriefService {
	if briefs == nil {
		log.Fatal().Msg("BriefRepository is nil for BriefService")
	}
	if contracts == nil {
		log.Fatal().Msg("Contract store is nil for BriefService")
	}
	if compiler == nil {
		log.Fatal().Msg("Compiler is nil for BriefService")
	}
	if publisher == nil {
		log.Fatal().Msg("TaskPublisher is nil for BriefService")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for BriefService")
	}
	return &briefServiceImpl{
		briefs:    briefs,
		contracts: contracts,
		compiler:  compiler,
		publisher: publisher,
		logger:    logger.Named("BriefService"),
	}
}

func (s *briefServiceImpl) SubmitBrief(ctx context.Context, input *models.StoryBriefInput) (*models.StoryBrief, *models.GenerationContract, error) {
	if input == nil {
		return nil, nil, fmt.Errorf("%w: brief input is nil", models.ErrInvalidInput)
	}

	now := time.Now().UTC()
	brief := &models.StoryBrief{
		ID:        uuid.New(),
		Input:     *input,
		Status:    models.BriefStatusCompiled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Сначала бриф: контракт ссылается на briefID и без брифа не имеет смысла.
	if err := s.briefs.Create(ctx, brief); err != nil {
		return nil, nil, err
	}

	compiled, err := s.compiler.BuildGenerationContract(ctx, brief.ID.String(), input)
	if err != nil {
		// Компиляция упала по инфраструктурной причине. Бриф остается,
		// его можно перекомпилировать позже.
		s.logger.Error("Contract compilation failed after brief creation",
			zap.String("briefID", brief.ID.String()), zap.Error(err))
		return nil, nil, err
	}

	if compiled.Status == models.ContractStatusFailedValidation {
		brief.Status = models.BriefStatusFailedValidation
		brief.UpdatedAt = time.Now().UTC()
		if err := s.briefs.Update(ctx, brief); err != nil {
			return nil, nil, err
		}
	}

	return brief, compiled, nil
}

func (s *briefServiceImpl) GetBrief(ctx context.Context, id string) (*models.StoryBrief, error) {
	return s.briefs.GetByID(ctx, id)
}

func (s *briefServiceImpl) GetContract(ctx context.Context, briefID string) (*models.GenerationContract, error) {
	return s.contracts.Get(ctx, briefID)
}

func (s *briefServiceImpl) ListBriefs(ctx context.Context, createdBy string, limit int) ([]*models.StoryBrief, error) {
	return s.briefs.List(ctx, createdBy, limit)
}

// Recompile повторяет компиляцию для существующего брифа. Прежний контракт
// перезаписывается, CreatedAt контракта сохраняется.
func (s *briefServiceImpl) Recompile(ctx context.Context, briefID string) (*models.GenerationContract, error) {
	brief, err := s.briefs.GetByID(ctx, briefID)
	if err != nil {
		return nil, err
	}

	compiled, err := s.compiler.BuildGenerationContract(ctx, briefID, &brief.Input)
	if err != nil {
		return nil, err
	}

	newStatus := models.BriefStatusCompiled
	if compiled.Status == models.ContractStatusFailedValidation {
		newStatus = models.BriefStatusFailedValidation
	}
	if brief.Status != newStatus {
		brief.Status = newStatus
		brief.UpdatedAt = time.Now().UTC()
		if err := s.briefs.Update(ctx, brief); err != nil {
			return nil, err
		}
	}

	return compiled, nil
}

// DeleteBrief удаляет бриф вместе с его контрактом: контракт не существует
// отдельно от брифа, сироты не оставляем.
func (s *briefServiceImpl) DeleteBrief(ctx context.Context, briefID string) error {
	if err := s.briefs.Delete(ctx, briefID); err != nil {
		return err
	}
	if err := s.contracts.Delete(ctx, briefID); err != nil && !errors.Is(err, models.ErrContractNotFound) {
		return err
	}
	return nil
}

func (s *briefServiceImpl) RequestGeneration(ctx context.Context, briefID, specialistID string) (string, error) {
	c, err := s.contracts.Get(ctx, briefID)
	if err != nil {
		return "", err
	}
	if c.Status != models.ContractStatusOK {
		return "", fmt.Errorf("%w: brief %s", models.ErrContractNotCompiled, briefID)
	}

	task := messaging.GenerationTaskPayload{
		TaskID:       uuid.NewString(),
		BriefID:      briefID,
		SpecialistID: specialistID,
		RulesVersion: c.RulesVersionUsed,
		QueuedAt:     time.Now().UTC(),
	}
	if err := s.publisher.PublishGenerationTask(ctx, task); err != nil {
		return "", err
	}

	s.logger.Info("Generation task queued",
		zap.String("taskID", task.TaskID),
		zap.String("briefID", briefID),
		zap.String("specialistID", specialistID))
	return task.TaskID, nil
}
