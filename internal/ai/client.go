// Package ai содержит клиент для обращения к LLM API при генерации историй.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Цены за 1М токенов в USD для оценки стоимости запроса.
const (
	pricePerMillionInputTokensUSD  = 0.1
	pricePerMillionOutputTokensUSD = 0.4
)

// ErrGenerationFailed - ошибка при генерации текста AI.
var ErrGenerationFailed = errors.New("ошибка генерации текста AI")

// GenerationParams - параметры генерации. Указатели, чтобы отличить
// 0/0.0 от отсутствия значения.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// UsageInfo содержит информацию об использовании токенов и стоимости.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// Client интерфейс для взаимодействия с AI API.
type Client interface {
	// GenerateText генерирует текст на основе системного промпта и ввода
	// пользователя. Возвращает текст, информацию об использовании и ошибку.
	GenerateText(ctx context.Context, taskID string, systemPrompt string, userPrompt string, params GenerationParams) (string, UsageInfo, error)
}

// openAIClient реализует Client поверх go-openai.
type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

// Options собирает параметры подключения к AI API.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewOpenAIClient создает клиент OpenAI-совместимого API.
func NewOpenAIClient(opts Options, logger *zap.Logger) Client {
	if logger == nil {
		log.Fatal().Msg("Logger is nil for AI client")
	}
	cfg := openaigo.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	l := logger.Named("AIClient")
	l.Info("OpenAI client created",
		zap.String("baseURL", cfg.BaseURL),
		zap.String("model", opts.Model),
		zap.Duration("timeout", opts.Timeout))
	return &openAIClient{
		client: openaigo.NewClientWithConfig(cfg),
		model:  opts.Model,
		logger: l,
	}
}

// calculateCost рассчитывает оценочную стоимость запроса на основе токенов.
func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

func (c *openAIClient) GenerateText(ctx context.Context, taskID string, systemPrompt string, userPrompt string, params GenerationParams) (string, UsageInfo, error) {
	usageInfo := UsageInfo{}

	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: системный промпт пуст", ErrGenerationFailed)
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userPrompt,
		})
	}

	startTime := time.Now()
	c.logger.Debug("Sending request to AI",
		zap.String("taskID", taskID),
		zap.String("model", c.model),
		zap.Int("systemPromptBytes", len(systemPrompt)),
		zap.Int("userPromptBytes", len(userPrompt)))

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32Val(params.Temperature),
		MaxTokens:   intVal(params.MaxTokens),
		TopP:        float32Val(params.TopP),
	})
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("AI API request failed",
			zap.String("taskID", taskID), zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("AI API returned empty response",
			zap.String("taskID", taskID), zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: получен пустой ответ", ErrGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	generatedText := resp.Choices[0].Message.Content

	if resp.Usage.TotalTokens > 0 {
		usageInfo.PromptTokens = resp.Usage.PromptTokens
		usageInfo.CompletionTokens = resp.Usage.CompletionTokens
		usageInfo.TotalTokens = resp.Usage.TotalTokens
	} else {
		// Некоторые совместимые API не возвращают usage - оцениваем через tiktoken.
		if tke, tkErr := tiktoken.EncodingForModel(c.model); tkErr == nil {
			usageInfo.PromptTokens = len(tke.Encode(systemPrompt, nil, nil)) + len(tke.Encode(userPrompt, nil, nil))
			usageInfo.CompletionTokens = len(tke.Encode(generatedText, nil, nil))
			usageInfo.TotalTokens = usageInfo.PromptTokens + usageInfo.CompletionTokens
		} else {
			c.logger.Warn("Could not get tokenizer to estimate usage",
				zap.String("model", c.model), zap.Error(tkErr))
		}
	}
	if usageInfo.TotalTokens > 0 {
		usageInfo.EstimatedCostUSD = calculateCost(usageInfo.PromptTokens, usageInfo.CompletionTokens)
		aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usageInfo.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usageInfo.CompletionTokens))
		aiTotalTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usageInfo.TotalTokens))
		if usageInfo.EstimatedCostUSD > 0 {
			aiEstimatedCostUSD.With(prometheus.Labels{"model": c.model}).Add(usageInfo.EstimatedCostUSD)
		}
	}

	c.logger.Info("AI response received",
		zap.String("taskID", taskID),
		zap.Duration("duration", duration),
		zap.Int("responseChars", len(generatedText)),
		zap.Int("totalTokens", usageInfo.TotalTokens))

	return generatedText, usageInfo, nil
}

// float32Val конвертирует *float64 в float32 для OpenAI API.
func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 1.0
	}
	return float32(*f64)
}

// intVal конвертирует *int в int. 0 означает "не установлено" для API.
func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
