package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"biographer-server/internal/config"
	ws "biographer-server/internal/delivery/websocket"
	"biographer-server/internal/handler"
	"biographer-server/internal/messaging"
	"biographer-server/internal/repository"
	"biographer-server/internal/service"
	"biographer-server/internal/storage"
	"biographer-server/migrations"
	"biographer-server/pkg/database"
	"biographer-server/pkg/logger"
	"biographer-server/pkg/migration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- PostgreSQL ---
	dbPool, err := database.NewPool(ctx, database.Config{
		DSN:      cfg.GetDSN(),
		MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	zapLogger.Info("PostgreSQL connection established")

	if cfg.RunMigrations {
		migrator := migration.NewMigrator(migration.Config{
			MigrationsPath: ".",
			MigrationsFS:   migrations.FS,
		}, dbPool)
		if err := migrator.Up(ctx); err != nil {
			zapLogger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	zapLogger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))

	// --- RabbitMQ ---
	mqConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mqConn.Close()
	zapLogger.Info("RabbitMQ connection established")

	publisher, err := messaging.NewRabbitMQPublisher(mqConn, cfg.StoryEventQueue, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create event publisher", zap.Error(err))
	}

	// --- Repositories ---
	storyRepo := repository.NewPgStoryRepository(dbPool, zapLogger)
	panelRepo := repository.NewPgPanelRepository(dbPool, zapLogger)
	captureRepo := repository.NewPgMemoryCaptureRepository(dbPool, zapLogger)
	leaseRepo := repository.NewRedisLeaseRepository(redisClient, cfg.GenerationTTL, zapLogger)

	// --- Services ---
	aiClient, err := service.NewAIClient(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create AI client", zap.Error(err))
	}

	aggregator := service.NewContextAggregator(captureRepo, zapLogger)
	normalizer := service.NewStoryNormalizer(aiClient, zapLogger)
	segmenter := service.NewSceneSegmenter(aiClient, zapLogger)
	polisher := service.NewScenePolisher(aiClient, zapLogger)
	renderer := service.NewPanelRenderer(aiClient, zapLogger)

	cartoonService := service.NewCartoonService(
		storyRepo, panelRepo, leaseRepo,
		aggregator, normalizer, segmenter, polisher, renderer,
		publisher, zapLogger,
	)
	storyService := service.NewStoryService(storyRepo, panelRepo, zapLogger)
	questionService := service.NewQuestionService(captureRepo, aiClient, zapLogger)
	answerMatcher := service.NewAnswerMatcher(aiClient, zapLogger)
	conversationFilter := service.NewConversationFilter(aiClient, zapLogger)
	transcriptionService := service.NewTranscriptionService(aiClient, zapLogger)

	photoStore, err := storage.NewPhotoStore(cfg.PhotoSavePath, cfg.PhotoPublicBaseURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize photo store", zap.Error(err))
	}

	// --- WebSocket ---
	wsManager := ws.NewManager(zapLogger)
	wsManager.Start()
	eventConsumer := ws.NewEventConsumer(mqConn, cfg.StoryEventQueue, wsManager, zapLogger)
	if err := eventConsumer.Start(ctx); err != nil {
		zapLogger.Fatal("Failed to start event consumer", zap.Error(err))
	}

	// --- HTTP Server (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(handler.GinZapLogger(zapLogger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/ws", gin.WrapH(wsManager.Handler()))
	router.Static("/photos", cfg.PhotoSavePath)

	apiHandler := handler.NewBiographerHandler(
		storyService, cartoonService,
		questionService, answerMatcher, conversationFilter, transcriptionService,
		photoStore, zapLogger,
	)
	apiHandler.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation runs are synchronous
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	cancel() // stops the event consumer

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
