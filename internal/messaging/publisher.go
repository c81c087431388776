package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// TaskPublisher публикует задачи генерации.
type TaskPublisher interface {
	PublishGenerationTask(ctx context.Context, task GenerationTaskPayload) error
	Close() error
}

// rabbitTaskPublisher реализует TaskPublisher для RabbitMQ.
type rabbitTaskPublisher struct {
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

var _ TaskPublisher = (*rabbitTaskPublisher)(nil)

// NewRabbitTaskPublisher создает издателя задач генерации.
// Предполагается, что соединение conn уже установлено и переподключения
// управляются внешним кодом.
func NewRabbitTaskPublisher(conn *amqp091.Connection) (TaskPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Объявляем durable очередь. Если она уже существует, ничего не произойдет.
	_, err = ch.QueueDeclare(
		QueueGenerationTasks, // name
		true,                 // durable
		false,                // delete when unused
		false,                // exclusive
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		_ = ch.Close()
		log.Error().Err(err).Str("queue", QueueGenerationTasks).Msg("Failed to declare queue")
		return nil, fmt.Errorf("failed to declare queue '%s': %w", QueueGenerationTasks, err)
	}

	log.Info().Str("queue", QueueGenerationTasks).Msg("Generation task queue declared successfully")
	return &rabbitTaskPublisher{conn: conn, ch: ch}, nil
}

// PublishGenerationTask публикует задачу генерации в очередь.
func (p *rabbitTaskPublisher) PublishGenerationTask(ctx context.Context, task GenerationTaskPayload) error {
	body, err := json.Marshal(task)
	if err != nil {
		log.Error().Err(err).Interface("task", task).Msg("Failed to marshal generation task")
		return fmt.Errorf("failed to marshal generation task: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",                   // exchange (default, routes by queue name)
		QueueGenerationTasks, // routing key
		false,                // mandatory
		false,                // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			MessageId:    task.TaskID,
		},
	)
	if err != nil {
		log.Error().Err(err).Str("taskID", task.TaskID).Msg("Failed to publish generation task")
		return fmt.Errorf("failed to publish generation task: %w", err)
	}

	log.Debug().Str("taskID", task.TaskID).Str("briefID", task.BriefID).Msg("Generation task published")
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *rabbitTaskPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
