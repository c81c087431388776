package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"storycare-server/internal/ai"
	"storycare-server/internal/config"
	"storycare-server/internal/messaging"
	"storycare-server/internal/repository"
	"storycare-server/internal/repository/migrations"
	"storycare-server/internal/worker"
	"storycare-server/pkg/logger"
	"storycare-server/pkg/migration"
)

func main() {
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка загрузки конфигурации воркера")
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.Log.Level, Encoding: cfg.Log.Encoding})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка инициализации логгера")
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL (журнал результатов генерации)
	dbPool, err := newDBPool(ctx, cfg.Postgres)
	if err != nil {
		zapLogger.Fatal("Ошибка подключения к PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	zapLogger.Info("Подключение к PostgreSQL установлено", zap.String("dsn", cfg.Postgres.MaskedDSN()))

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: migrations.Path,
		MigrationsFS:   migrations.FS,
	}, dbPool)
	if err := migrator.Up(ctx); err != nil {
		zapLogger.Fatal("Ошибка применения миграций", zap.Error(err))
	}
	zapLogger.Info("Миграции применены")

	// Firestore (брифы, контракты, черновики)
	fsClient, err := newFirestoreClient(ctx, cfg.Firestore)
	if err != nil {
		zapLogger.Fatal("Ошибка подключения к Firestore", zap.Error(err))
	}
	defer fsClient.Close()
	zapLogger.Info("Подключение к Firestore установлено", zap.String("project_id", cfg.Firestore.ProjectID))

	// RabbitMQ (очередь задач генерации)
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URI)
	if err != nil {
		zapLogger.Fatal("Ошибка подключения к RabbitMQ", zap.Error(err))
	}
	defer amqpConn.Close()
	zapLogger.Info("Подключение к RabbitMQ установлено")

	if err := worker.InitMetricsPusher(cfg.Metrics.PushgatewayURL); err != nil {
		// Метрики не критичны для работы воркера
		zapLogger.Warn("Pushgateway недоступен, метрики отключены", zap.Error(err))
	}

	aiClient := ai.NewOpenAIClient(ai.Options{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, zapLogger)

	briefRepo := repository.NewFirestoreBriefRepository(fsClient, zapLogger)
	contractStore := repository.NewFirestoreContractStore(fsClient, zapLogger)
	draftRepo := repository.NewFirestoreDraftRepository(fsClient, zapLogger)
	resultRepo := repository.NewPgResultRepository(dbPool, zapLogger)

	taskHandler := worker.NewTaskHandler(worker.Options{
		AIModel:          cfg.AI.Model,
		AIMaxAttempts:    cfg.AI.MaxAttempts,
		AIBaseRetryDelay: cfg.AI.BaseRetryDelay,
		AITimeout:        cfg.AI.Timeout,
	}, aiClient, briefRepo, contractStore, draftRepo, resultRepo, zapLogger)

	consumer := messaging.NewTaskConsumer(amqpConn, taskHandler, zapLogger)
	if err := consumer.Start(ctx); err != nil {
		zapLogger.Fatal("Ошибка запуска consumer", zap.Error(err))
	}
	zapLogger.Info("Воркер генерации запущен, ожидаем задачи...")

	<-ctx.Done()
	zapLogger.Info("Получен сигнал завершения, останавливаем воркер...")
	if err := consumer.Stop(); err != nil {
		zapLogger.Error("Ошибка при остановке consumer", zap.Error(err))
	}
	zapLogger.Info("Воркер остановлен")
}

// newDBPool создает пул соединений PostgreSQL и проверяет его пингом.
func newDBPool(ctx context.Context, cfg config.WorkerPostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора строки подключения: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула соединений: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка пинга базы данных: %w", err)
	}
	return pool, nil
}

// newFirestoreClient создает клиент Firestore через Firebase App.
func newFirestoreClient(ctx context.Context, cfg config.WorkerFirestoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Firestore: %w", err)
	}
	return client, nil
}
