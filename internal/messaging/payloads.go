// Package messaging связывает API-сервер и воркер генерации через RabbitMQ.
package messaging

import "time"

// QueueGenerationTasks - очередь задач генерации историй. Durable work queue:
// задачи переживают перезапуск брокера и распределяются между воркерами.
const QueueGenerationTasks = "story_generation_tasks"

// GenerationTaskPayload - задача генерации истории по скомпилированному
// контракту. Воркер перечитывает бриф и контракт из хранилища по briefId,
// поэтому payload несет только идентификаторы.
type GenerationTaskPayload struct {
	TaskID       string    `json:"taskId"`
	BriefID      string    `json:"briefId"`
	SpecialistID string    `json:"specialistId"`
	RulesVersion string    `json:"rulesVersion,omitempty"`
	QueuedAt     time.Time `json:"queuedAt"`
}
