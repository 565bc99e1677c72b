package bootstrap

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"agentic-rag-be/internal/config"
	"agentic-rag-be/internal/controller"
	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/internal/repository/memory"
	"agentic-rag-be/internal/service"
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/embedding/jina"
	"agentic-rag-be/pkg/ingest"
	"agentic-rag-be/pkg/llm/factory"

	pkgNats "agentic-rag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	RagController controller.IRagController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infra exposed for shutdown
	SysLogger     logger.ILogger
	NatsPublisher *pkgNats.Publisher
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLog, err := newPipelineLogger(cfg.Rag.PipelineLogPath)
	if err != nil {
		return nil, fmt.Errorf("init pipeline logger: %w", err)
	}

	// 2. AI Providers
	embedProvider, err := newEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		return nil, err
	}

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional; a dead broker must not block startup.
	var natsPublisher *pkgNats.Publisher
	if cfg.App.NatsEnabled {
		natsPublisher, err = pkgNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "NATS unavailable, events will not be mirrored", map[string]interface{}{
				"url": cfg.App.NatsURL, "error": err.Error(),
			})
			natsPublisher = nil
		}
	}

	// 4. Repositories & Services
	runRepo := memory.NewRunRepository()
	loader := ingest.NewLoader()

	ragService := service.NewRagService(
		cfg,
		embedProvider,
		llmProvider,
		loader,
		runRepo,
		pubSub,
		natsPublisher,
		sysLogger,
		pipelineLog,
	)
	consumerService := service.NewConsumerService(pubSub, service.RunEventsTopic, runRepo)

	// 5. Controllers
	ragController := controller.NewRagController(ragService, cfg)

	return &Container{
		RagController:   ragController,
		ConsumerService: consumerService,
		SysLogger:       sysLogger,
		NatsPublisher:   natsPublisher,
	}, nil
}

func newEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaEmbeddingProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel), nil
	case "gemini":
		return embedding.NewGeminiEmbeddingProvider(cfg.Keys.GoogleGemini, ""), nil
	case "jina":
		return jina.NewJinaProvider(cfg.Keys.Jina, ""), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

// newPipelineLogger opens the dedicated RAG pipeline log. The workflow
// engine is chatty and keeping its trace out of the main log makes both
// readable.
func newPipelineLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return log.New(f, "", log.LstdFlags), nil
}
