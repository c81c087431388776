// Package worker обрабатывает задачи генерации историй: читает бриф и
// контракт, вызывает AI с ретраями, сохраняет черновик и строку аудита.
package worker

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"storycare-server/internal/ai"
	"storycare-server/internal/contract"
	"storycare-server/internal/messaging"
	"storycare-server/internal/models"
	"storycare-server/internal/prompt"
	"storycare-server/internal/repository"
)

// Options содержит настройки обработчика задач.
type Options struct {
	AIModel          string
	AIMaxAttempts    int
	AIBaseRetryDelay time.Duration
	AITimeout        time.Duration
}

// TaskHandler обрабатывает задачи генерации.
type TaskHandler struct {
	opts      Options
	aiClient  ai.Client
	briefs    repository.BriefRepository
	contracts contract.Store
	drafts    repository.DraftRepository
	results   repository.ResultRepository
	logger    *zap.Logger
}

var _ messaging.TaskHandler = (*TaskHandler)(nil)

// NewTaskHandler создает обработчик задач генерации.
func NewTaskHandler(
	opts Options,
	aiClient ai.Client,
	briefs repository.BriefRepository,
	contracts contract.Store,
	drafts repository.DraftRepository,
	results repository.ResultRepository,
	logger *zap.Logger,
) *TaskHandler {
	if aiClient == nil {
		log.Fatal().Msg("AI client is nil for TaskHandler")
	}
	if briefs == nil {
		log.Fatal().Msg("BriefRepository is nil for TaskHandler")
	}
	if contracts == nil {
		log.Fatal().Msg("Contract store is nil for TaskHandler")
	}
	if drafts == nil {
		log.Fatal().Msg("DraftRepository is nil for TaskHandler")
	}
	if results == nil {
		log.Fatal().Msg("ResultRepository is nil for TaskHandler")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for TaskHandler")
	}
	if opts.AIMaxAttempts <= 0 {
		opts.AIMaxAttempts = 3
	}
	if opts.AIBaseRetryDelay <= 0 {
		opts.AIBaseRetryDelay = 2 * time.Second
	}
	return &TaskHandler{
		opts:      opts,
		aiClient:  aiClient,
		briefs:    briefs,
		contracts: contracts,
		drafts:    drafts,
		results:   results,
		logger:    logger.Named("GenerationTaskHandler"),
	}
}

// HandleGenerationTask обрабатывает одну задачу генерации. Строка аудита
// пишется всегда, включая неудачные задачи.
func (h *TaskHandler) HandleGenerationTask(ctx context.Context, task messaging.GenerationTaskPayload) (err error) {
	metricsIncrementTasksReceived()
	taskStart := time.Now()
	l := h.logger.With(zap.String("taskID", task.TaskID), zap.String("briefID", task.BriefID))
	l.Info("Processing generation task")

	defer func() {
		metricsRecordTaskDuration(time.Since(taskStart))
		if pushErr := PushMetricsNow(); pushErr != nil {
			l.Warn("Failed to push worker metrics", zap.Error(pushErr))
		}
	}()

	brief, c, err := h.loadBriefAndContract(ctx, task.BriefID)
	if err != nil {
		metricsIncrementTaskFailed("load_error")
		h.saveResult(ctx, task, "", ai.UsageInfo{}, taskStart, err)
		return err
	}

	systemPrompt := prompt.BuildSystemPrompt()
	userPrompt, err := prompt.BuildUserPrompt(c, &brief.Input)
	if err != nil {
		metricsIncrementTaskFailed("prompt_error")
		h.saveResult(ctx, task, "", ai.UsageInfo{}, taskStart, err)
		return err
	}

	aiResponse, usage, err := h.generateWithRetries(ctx, task.TaskID, systemPrompt, userPrompt)
	if err != nil {
		metricsIncrementTaskFailed("ai_error")
		h.saveResult(ctx, task, "", usage, taskStart, err)
		return err
	}

	title, content := splitTitle(aiResponse)
	draft := &models.StoryDraft{
		ID:          uuid.New(),
		BriefID:     task.BriefID,
		TaskID:      task.TaskID,
		Title:       title,
		Content:     content,
		ModelUsed:   h.opts.AIModel,
		Status:      models.DraftStatusPendingReview,
		Suggestions: []models.EditSuggestion{},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := h.drafts.Create(ctx, draft); err != nil {
		metricsIncrementTaskFailed("save_draft_error")
		h.saveResult(ctx, task, "", usage, taskStart, err)
		return err
	}

	h.saveResult(ctx, task, draft.ID.String(), usage, taskStart, nil)
	metricsIncrementTaskSucceeded()
	l.Info("Generation task completed",
		zap.String("draftID", draft.ID.String()),
		zap.Int("totalTokens", usage.TotalTokens),
		zap.Duration("duration", time.Since(taskStart)))
	return nil
}

// loadBriefAndContract читает бриф и контракт и проверяет, что контракт
// пригоден для генерации.
func (h *TaskHandler) loadBriefAndContract(ctx context.Context, briefID string) (*models.StoryBrief, *models.GenerationContract, error) {
	brief, err := h.briefs.GetByID(ctx, briefID)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения брифа %s: %w", briefID, err)
	}
	c, err := h.contracts.Get(ctx, briefID)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения контракта %s: %w", briefID, err)
	}
	if c.Status != models.ContractStatusOK {
		return nil, nil, fmt.Errorf("%w: brief %s", models.ErrContractNotCompiled, briefID)
	}
	return brief, c, nil
}

// generateWithRetries вызывает AI с экспоненциальным backoff и джиттером.
func (h *TaskHandler) generateWithRetries(ctx context.Context, taskID, systemPrompt, userPrompt string) (string, ai.UsageInfo, error) {
	var lastErr error
	var usage ai.UsageInfo
	baseDelay := h.opts.AIBaseRetryDelay

	for attempt := 1; attempt <= h.opts.AIMaxAttempts; attempt++ {
		h.logger.Info("Calling AI API",
			zap.String("taskID", taskID),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", h.opts.AIMaxAttempts))

		callCtx := ctx
		var cancel context.CancelFunc
		if h.opts.AITimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, h.opts.AITimeout)
		}
		text, attemptUsage, err := h.aiClient.GenerateText(callCtx, taskID, systemPrompt, userPrompt,
			ai.GenerationParams{Temperature: float64Ptr(0.7)})
		if cancel != nil {
			cancel()
		}

		if err == nil {
			return text, attemptUsage, nil
		}
		lastErr = err
		usage = attemptUsage
		h.logger.Warn("AI call attempt failed",
			zap.String("taskID", taskID), zap.Int("attempt", attempt), zap.Error(err))

		if attempt == h.opts.AIMaxAttempts {
			break
		}

		delay := float64(baseDelay) * math.Pow(2, float64(attempt-1))
		jitter := delay * 0.1
		delay += jitter * (rand.Float64()*2 - 1)
		waitDuration := time.Duration(delay)
		if waitDuration < baseDelay {
			waitDuration = baseDelay
		}
		select {
		case <-time.After(waitDuration):
		case <-ctx.Done():
			return "", usage, ctx.Err()
		}
	}
	return "", usage, fmt.Errorf("все попытки вызова AI исчерпаны: %w", lastErr)
}

// saveResult пишет строку аудита. Ошибка записи аудита логируется, но не
// перекрывает исходную ошибку обработки.
func (h *TaskHandler) saveResult(ctx context.Context, task messaging.GenerationTaskPayload, draftID string, usage ai.UsageInfo, startedAt time.Time, processingErr error) {
	status := models.GenerationStatusSuccess
	errDetails := ""
	if processingErr != nil {
		status = models.GenerationStatusError
		errDetails = processingErr.Error()
	}

	result := &models.GenerationResult{
		TaskID:           task.TaskID,
		BriefID:          task.BriefID,
		DraftID:          draftID,
		Status:           status,
		Error:            errDetails,
		ModelUsed:        h.opts.AIModel,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		EstimatedCostUSD: usage.EstimatedCostUSD,
		DurationMS:       time.Since(startedAt).Milliseconds(),
		CreatedAt:        startedAt.UTC(),
	}
	if err := h.results.Save(ctx, result); err != nil {
		metricsIncrementTaskFailed("save_result_error")
		h.logger.Error("Failed to save generation audit row",
			zap.String("taskID", task.TaskID), zap.Error(err))
	}
}

// splitTitle отделяет первую строку ответа (заголовок) от тела истории.
func splitTitle(aiResponse string) (title, content string) {
	trimmed := strings.TrimSpace(aiResponse)
	idx := strings.Index(trimmed, "\n")
	if idx == -1 {
		return "", trimmed
	}
	title = strings.TrimSpace(trimmed[:idx])
	content = strings.TrimSpace(trimmed[idx+1:])
	// Некоторые модели оборачивают заголовок в markdown или кавычки.
	title = strings.Trim(title, "#*\" ")
	return title, content
}

// float64Ptr возвращает указатель на float64.
func float64Ptr(f float64) *float64 {
	return &f
}
