package worker

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

const jobName = "storycare_generation_worker"

var (
	// Локальный реестр воркера: метрики уходят в Pushgateway, а не
	// скрейпятся, поэтому глобальный реестр не используем.
	registry = prometheus.NewRegistry()

	tasksReceived = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "storycare_generation_tasks_received_total",
			Help: "Total number of generation tasks received by the worker.",
		},
	)
	tasksFailed = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storycare_generation_tasks_failed_total",
			Help: "Total number of generation tasks failed, partitioned by failure reason.",
		},
		[]string{"reason"},
	)
	tasksSucceeded = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "storycare_generation_tasks_succeeded_total",
			Help: "Total number of generation tasks successfully processed.",
		},
	)
	taskDuration = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storycare_generation_task_duration_seconds",
			Help:    "Histogram of end-to-end generation task durations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	pusher *push.Pusher
)

// InitMetricsPusher инициализирует клиент Pushgateway. Пустой URL отключает
// отправку метрик.
func InitMetricsPusher(pushgatewayURL string) error {
	if pushgatewayURL == "" {
		log.Info().Msg("Pushgateway URL is empty, worker metrics push disabled")
		return nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
		log.Warn().Err(err).Msg("Could not get hostname for metrics instance label")
	}
	instanceID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	pusher = push.New(pushgatewayURL, jobName).Gatherer(registry).Grouping("instance", instanceID)

	if err := pusher.Push(); err != nil {
		return fmt.Errorf("initial metrics push failed: %w", err)
	}
	log.Info().Str("url", pushgatewayURL).Str("instance", instanceID).Msg("Pushgateway pusher initialized")
	return nil
}

// PushMetricsNow принудительно отправляет накопленные метрики.
func PushMetricsNow() error {
	if pusher == nil {
		return nil
	}
	return pusher.Push()
}

func metricsIncrementTasksReceived() { tasksReceived.Inc() }

func metricsIncrementTaskFailed(reason string) { tasksFailed.WithLabelValues(reason).Inc() }

func metricsIncrementTaskSucceeded() { tasksSucceeded.Inc() }

func metricsRecordTaskDuration(d time.Duration) { taskDuration.Observe(d.Seconds()) }
