package bootstrap

import (
	"context"
	"log"

	"notebook-studio-be/internal/config"
	"notebook-studio-be/internal/controller"
	"notebook-studio-be/internal/pkg/logger"
	"notebook-studio-be/internal/progress"
	"notebook-studio-be/internal/repository/memory"
	"notebook-studio-be/internal/repository/unitofwork"
	"notebook-studio-be/internal/service"
	"notebook-studio-be/internal/websocket"
	"notebook-studio-be/pkg/llm/factory"
	"notebook-studio-be/pkg/pipeline"
	"notebook-studio-be/pkg/storage"

	pktNats "notebook-studio-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NotebookController controller.INotebookController
	ContentController  controller.IContentController

	// Background Services (Exposed for main.go to run)
	RunnerService  service.IRunnerService
	OverlayService service.IOverlayService

	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Storage
	artifacts, err := storage.NewArtifactStore(cfg.Storage.ArtifactDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize artifact store: %v", err)
	}
	deckCache := memory.NewDeckCache()

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// 6. Progress Channel
	progressLogger := logger.NewIsolatedLogger("logs/progress.log")
	broker := progress.NewBroker(progressLogger)

	// WebSocket Hub
	wsHub := websocket.NewHub(broker, rdb, progressLogger)
	go wsHub.Run()

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Jobs.DispatchTopic, pubSub)

	overlayService := service.NewOverlayService(uowFactory, deckCache, sysLogger, cfg.Jobs.OverlayDebounce)
	contentService := service.NewContentService(uowFactory, publisherService, broker, artifacts, overlayService, natsPub, sysLogger)
	notebookService := service.NewNotebookService(uowFactory, contentService, sysLogger)

	registry := pipeline.DefaultRegistry(llmProvider, artifacts)
	runnerService := service.NewRunnerService(
		pubSub,
		cfg.Jobs.DispatchTopic,
		uowFactory,
		registry,
		broker,
		natsPub,
		sysLogger,
		cfg.Jobs.MaxConcurrent,
	)

	// 8. Controllers
	return &Container{
		NotebookController: controller.NewNotebookController(notebookService),
		ContentController:  controller.NewContentController(contentService, overlayService, wsHub, sysLogger),

		RunnerService:  runnerService,
		OverlayService: overlayService,

		WebSocketHub: wsHub,
	}
}
