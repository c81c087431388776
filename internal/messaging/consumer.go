package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// TaskHandler обрабатывает одну задачу генерации. Ошибка означает, что
// задача не выполнена и будет отброшена (Nack без requeue): повторные
// попытки выполняются внутри обработчика, а не на уровне брокера.
type TaskHandler interface {
	HandleGenerationTask(ctx context.Context, task GenerationTaskPayload) error
}

// TaskConsumer читает задачи генерации из RabbitMQ и передает их обработчику.
type TaskConsumer struct {
	conn    *amqp091.Connection
	handler TaskHandler
	logger  *zap.Logger
	done    chan struct{}
	channel *amqp091.Channel
}

// NewTaskConsumer creates a new TaskConsumer.
func NewTaskConsumer(conn *amqp091.Connection, handler TaskHandler, logger *zap.Logger) *TaskConsumer {
	if logger == nil {
		panic("Logger is nil for TaskConsumer")
	}
	return &TaskConsumer{
		conn:    conn,
		handler: handler,
		logger:  logger.Named("TaskConsumer"),
		done:    make(chan struct{}),
	}
}

// Start begins consuming generation tasks.
func (c *TaskConsumer) Start(ctx context.Context) error {
	var err error
	c.channel, err = c.conn.Channel()
	if err != nil {
		c.logger.Error("Failed to open channel for task consumer", zap.Error(err))
		return fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		QueueGenerationTasks, // name
		true,                 // durable
		false,                // delete when unused
		false,                // exclusive
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to declare generation task queue", zap.Error(err), zap.String("queue", QueueGenerationTasks))
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	// Один in-flight на воркера: генерация долгая, пусть брокер балансирует.
	if err := c.channel.Qos(1, 0, false); err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to set QoS", zap.Error(err))
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		QueueGenerationTasks, // queue
		"",                   // consumer
		false,                // auto-ack (ручной ack после обработки)
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // args
	)
	if err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to register task consumer", zap.Error(err), zap.String("queue", QueueGenerationTasks))
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Task consumer started, waiting for generation tasks...")

	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("Panic recovered in task consumer goroutine", zap.Any("panic", r))
			}
			c.logger.Info("Task consumer goroutine stopping...")
			close(c.done)
			if c.channel != nil {
				_ = c.channel.Close()
			}
		}()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("Task consumer channel closed, exiting goroutine.")
					return
				}
				c.handleMessage(ctx, msg)
			case <-ctx.Done():
				c.logger.Info("Context cancelled, stopping task consumer goroutine.")
				return
			}
		}
	}()

	return nil
}

// handleMessage processes a single delivery.
func (c *TaskConsumer) handleMessage(ctx context.Context, msg amqp091.Delivery) {
	var task GenerationTaskPayload
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		c.logger.Error("Failed to unmarshal generation task message",
			zap.Error(err), zap.String("messageBody", string(msg.Body)))
		// Нечитаемое сообщение нет смысла возвращать в очередь.
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to Nack malformed message", zap.Error(nackErr))
		}
		return
	}

	c.logger.Info("Received generation task",
		zap.String("taskID", task.TaskID), zap.String("briefID", task.BriefID))

	if err := c.handler.HandleGenerationTask(ctx, task); err != nil {
		c.logger.Error("Generation task handler failed",
			zap.String("taskID", task.TaskID), zap.Error(err))
		// Обработчик уже исчерпал свои повторы и записал результат с ошибкой.
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to Nack message", zap.String("taskID", task.TaskID), zap.Error(nackErr))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("Failed to Ack message", zap.String("taskID", task.TaskID), zap.Error(err))
	}
}

// Stop gracefully stops the consumer.
func (c *TaskConsumer) Stop() error {
	c.logger.Info("Stopping task consumer...")
	if c.channel != nil {
		if err := c.channel.Cancel("", false); err != nil {
			c.logger.Error("Error cancelling task consumer channel", zap.Error(err))
		}
	}

	select {
	case <-c.done:
		c.logger.Info("Task consumer goroutine finished.")
	case <-time.After(5 * time.Second):
		c.logger.Warn("Timeout waiting for task consumer goroutine to stop.")
	}
	c.logger.Info("Task consumer stopped.")
	return nil
}
