package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	pgxV5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storycare-server/internal/models"
)

const (
	saveGenerationResultQuery = `
        INSERT INTO generation_results
        (task_id, brief_id, draft_id, status, error, model_used,
         prompt_tokens, completion_tokens, total_tokens, estimated_cost_usd, duration_ms, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (task_id) DO UPDATE SET
            draft_id = EXCLUDED.draft_id,
            status = EXCLUDED.status,
            error = EXCLUDED.error,
            model_used = EXCLUDED.model_used,
            prompt_tokens = EXCLUDED.prompt_tokens,
            completion_tokens = EXCLUDED.completion_tokens,
            total_tokens = EXCLUDED.total_tokens,
            estimated_cost_usd = EXCLUDED.estimated_cost_usd,
            duration_ms = EXCLUDED.duration_ms
    `
	listGenerationResultsByBriefQuery = `
        SELECT task_id, brief_id, draft_id, status, error, model_used,
               prompt_tokens, completion_tokens, total_tokens, estimated_cost_usd, duration_ms, created_at
        FROM generation_results
        WHERE brief_id = $1
        ORDER BY created_at DESC
    `
)

// Compile-time check
var _ ResultRepository = (*pgResultRepository)(nil)

// pgResultRepository хранит строки аудита генерации в PostgreSQL.
type pgResultRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPgResultRepository создает ResultRepository поверх пула pgx.
func NewPgResultRepository(db *pgxpool.Pool, logger *zap.Logger) ResultRepository {
	return &pgResultRepository{
		db:     db,
		logger: logger.Named("PgResultRepo"),
	}
}

// Save сохраняет строку аудита. Повторная запись того же taskID перезаписывает
// строку: обработчик задачи может сохранять результат после каждой попытки.
func (r *pgResultRepository) Save(ctx context.Context, result *models.GenerationResult) error {
	_, err := r.db.Exec(ctx, saveGenerationResultQuery,
		result.TaskID,
		result.BriefID,
		result.DraftID,
		result.Status,
		result.Error,
		result.ModelUsed,
		result.PromptTokens,
		result.CompletionTokens,
		result.TotalTokens,
		result.EstimatedCostUSD,
		result.DurationMS,
		result.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save generation result",
			zap.String("taskID", result.TaskID), zap.Error(err))
		return fmt.Errorf("ошибка сохранения результата генерации %s: %w", result.TaskID, err)
	}
	r.logger.Debug("Generation result saved",
		zap.String("taskID", result.TaskID), zap.String("status", result.Status))
	return nil
}

func (r *pgResultRepository) ListByBrief(ctx context.Context, briefID string) ([]*models.GenerationResult, error) {
	var results []*models.GenerationResult
	err := pgxscan.Select(ctx, r.db, &results, listGenerationResultsByBriefQuery, briefID)
	if err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			return []*models.GenerationResult{}, nil
		}
		r.logger.Error("Failed to list generation results",
			zap.String("briefID", briefID), zap.Error(err))
		return nil, fmt.Errorf("ошибка чтения результатов генерации брифа %s: %w", briefID, err)
	}
	if results == nil {
		results = []*models.GenerationResult{}
	}
	return results, nil
}
