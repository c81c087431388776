package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"storycare-server/internal/auth"
	"storycare-server/internal/config"
	"storycare-server/internal/contract"
	"storycare-server/internal/handler"
	"storycare-server/internal/messaging"
	"storycare-server/internal/refdata"
	"storycare-server/internal/repository"
	"storycare-server/internal/rules"
	"storycare-server/internal/seed"
	"storycare-server/internal/service"
	"storycare-server/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации. До инициализации zap пишем через zerolog.
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка загрузки конфигурации сервера")
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка инициализации логгера")
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Firestore
	fsClient, err := newFirestoreClient(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("Ошибка подключения к Firestore", zap.Error(err))
	}
	defer fsClient.Close()
	zapLogger.Info("Подключение к Firestore установлено", zap.String("project_id", cfg.FirestoreProjectID))

	// Redis (кеш бандлов клинических правил)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("Ошибка подключения к Redis", zap.Error(err), zap.String("addr", cfg.RedisAddr))
	}
	defer redisClient.Close()
	zapLogger.Info("Подключение к Redis установлено", zap.String("addr", cfg.RedisAddr))

	// RabbitMQ (публикация задач генерации)
	amqpConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Ошибка подключения к RabbitMQ", zap.Error(err))
	}
	defer amqpConn.Close()
	zapLogger.Info("Подключение к RabbitMQ установлено")

	publisher, err := messaging.NewRabbitTaskPublisher(amqpConn)
	if err != nil {
		zapLogger.Fatal("Ошибка инициализации publisher задач", zap.Error(err))
	}
	defer publisher.Close()

	// Справочники и клинические правила
	refAccessor := refdata.NewFirestoreAccessor(fsClient, zapLogger)
	rulesStore := rules.NewFirestoreStore(fsClient, zapLogger)
	rulesCache := rules.NewRedisCache(redisClient, cfg.RulesCacheTTL, zapLogger)
	rulesLoader := rules.NewCachedLoader(rulesStore, rulesCache, zapLogger)

	// Стартовые данные: справочники всегда, правила только при первом запуске.
	if err := seed.Apply(ctx, refAccessor, rulesStore, zapLogger); err != nil {
		zapLogger.Fatal("Ошибка загрузки стартовых данных", zap.Error(err))
	}

	// Репозитории
	briefRepo := repository.NewFirestoreBriefRepository(fsClient, zapLogger)
	contractStore := repository.NewFirestoreContractStore(fsClient, zapLogger)
	draftRepo := repository.NewFirestoreDraftRepository(fsClient, zapLogger)
	templateRepo := repository.NewFirestoreTemplateRepository(fsClient, zapLogger)

	// Сервисы
	compiler := contract.NewCompiler(refAccessor, rulesLoader, contractStore, zapLogger)
	briefService := service.NewBriefService(briefRepo, contractStore, compiler, publisher, zapLogger)
	reviewService := service.NewReviewService(draftRepo, templateRepo, zapLogger)

	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, zapLogger)
	if err != nil {
		zapLogger.Fatal("Ошибка инициализации JWT verifier", zap.Error(err))
	}

	h := handler.NewHandler(briefService, reviewService, refAccessor, rulesStore, rulesLoader, verifier, zapLogger)
	router := h.NewRouter(cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Запуск HTTP сервера", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Ошибка HTTP сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Получен сигнал завершения, останавливаем сервер...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Ошибка при остановке HTTP сервера", zap.Error(err))
	}
	zapLogger.Info("Сервер остановлен")
}

// newFirestoreClient создает клиент Firestore через Firebase App. Если путь к
// credentials не задан, используются Application Default Credentials.
func newFirestoreClient(ctx context.Context, cfg *config.ServerConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirestoreProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Firestore: %w", err)
	}
	return client, nil
}
