package bootstrap

import (
	"log"
	"time"

	"ai-reader-be/internal/config"
	"ai-reader-be/internal/constant"
	"ai-reader-be/internal/controller"
	"ai-reader-be/internal/pkg/logger"
	"ai-reader-be/internal/repository/unitofwork"
	"ai-reader-be/internal/service"
	"ai-reader-be/pkg/llm/factory"
	"ai-reader-be/pkg/outline"

	pktNats "ai-reader-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController  controller.IDocumentController
	StructureController controller.IStructureController
	TagController       controller.ITagController
	ArticleController   controller.IArticleController
	ReviewController    controller.IReviewController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
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

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Structuring Pipeline
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HfAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	outlineCfg := outlineConfig(cfg)
	workerLogger := logger.NewIsolatedLogger(cfg.App.WorkerLogFilePath)
	generator := outline.NewStructureGenerator(llmProvider, outlineCfg, workerLogger)
	orchestrator := outline.NewChunkedOrchestrator(generator, outlineCfg, workerLogger)

	// 4. Services
	publisherService := service.NewPublisherService(constant.StructureBuildTopic, pubSub)
	structureService := service.NewStructureService(
		uowFactory,
		publisherService,
		generator,
		orchestrator,
		natsPub,
		time.Duration(cfg.Structure.TreeCacheTTLSeconds)*time.Second,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.StructureBuildTopic,
		structureService,
		workerLogger,
	)

	documentService := service.NewDocumentService(uowFactory)
	tagService := service.NewTagService(uowFactory)
	articleService := service.NewArticleService(uowFactory)
	reviewService := service.NewReviewService(uowFactory)

	// 5. Controllers
	return &Container{
		DocumentController:  controller.NewDocumentController(documentService),
		StructureController: controller.NewStructureController(structureService),
		TagController:       controller.NewTagController(tagService),
		ArticleController:   controller.NewArticleController(articleService),
		ReviewController:    controller.NewReviewController(reviewService),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}

func outlineConfig(cfg *config.Config) outline.Config {
	out := outline.DefaultConfig()
	if cfg.Structure.CharsPerToken > 0 {
		out.CharsPerToken = cfg.Structure.CharsPerToken
	}
	if cfg.Structure.MaxTokensPerCall > 0 {
		out.MaxTokensPerCall = cfg.Structure.MaxTokensPerCall
	}
	if cfg.Structure.MaxChunkChars > 0 {
		out.MaxChunkChars = cfg.Structure.MaxChunkChars
	}
	if cfg.Structure.OverlapChars > 0 {
		out.OverlapChars = cfg.Structure.OverlapChars
	}
	if cfg.Structure.PromptOverheadTokens > 0 {
		out.PromptOverheadTokens = cfg.Structure.PromptOverheadTokens
	}
	if cfg.Structure.ForceChunkAboveChars > 0 {
		out.ForceChunkAboveChars = cfg.Structure.ForceChunkAboveChars
	}
	if cfg.Structure.MaxRetries > 0 {
		out.MaxRetries = cfg.Structure.MaxRetries
	}
	out.AggressiveChunking = cfg.Structure.AggressiveChunking
	out.EmergencyChunking = cfg.Structure.EmergencyChunking
	return out
}
