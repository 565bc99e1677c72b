package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"agentic-rag-be/internal/config"
	"agentic-rag-be/internal/dto"
	"agentic-rag-be/internal/pkg/logger"
	"agentic-rag-be/internal/repository/memory"
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/events"
	"agentic-rag-be/pkg/ingest"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/nats"
	"agentic-rag-be/pkg/rag/engine"
	"agentic-rag-be/pkg/rag/index"
	"agentic-rag-be/pkg/rag/retrieval"
	"agentic-rag-be/pkg/store"
	"agentic-rag-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// ErrEmptyDocumentSet means the request produced no chunks to index: every
// source failed to load and the caller supplied none inline.
var ErrEmptyDocumentSet = errors.New("no documents available: all sources failed and no chunks were provided")

const RunEventsTopic = "RAG_RUN_EVENTS"

type IRagService interface {
	Ask(ctx context.Context, req *dto.AskRagRequest) (*dto.AskRagResponse, error)
	GetRun(runID string) (*memory.RunRecord, bool)
}

type ragService struct {
	cfg           *config.Config
	embedProvider embedding.EmbeddingProvider
	llmProvider   llm.LLMProvider
	loader        *ingest.Loader
	runRepo       *memory.RunRepository
	pubSub        *gochannel.GoChannel
	natsPublisher *nats.Publisher // nil when NATS is disabled
	sysLogger     logger.ILogger
	pipelineLog   *log.Logger
}

func NewRagService(
	cfg *config.Config,
	embedProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	loader *ingest.Loader,
	runRepo *memory.RunRepository,
	pubSub *gochannel.GoChannel,
	natsPublisher *nats.Publisher,
	sysLogger logger.ILogger,
	pipelineLog *log.Logger,
) IRagService {
	return &ragService{
		cfg:           cfg,
		embedProvider: embedProvider,
		llmProvider:   llmProvider,
		loader:        loader,
		runRepo:       runRepo,
		pubSub:        pubSub,
		natsPublisher: natsPublisher,
		sysLogger:     sysLogger,
		pipelineLog:   pipelineLog,
	}
}

// Ask runs the full pipeline for one request: load sources, split, build a
// fresh index, run the workflow, record the run. Nothing built here outlives
// the request except the run record.
func (s *ragService) Ask(ctx context.Context, req *dto.AskRagRequest) (*dto.AskRagResponse, error) {
	runID := uuid.New().String()

	chunks, sourcesLoaded, warnings := s.collectChunks(ctx, req)
	if len(chunks) == 0 {
		return nil, ErrEmptyDocumentSet
	}

	s.sysLogger.Info("RagService", "Starting workflow run", map[string]interface{}{
		"run_id":         runID,
		"chunks":         len(chunks),
		"sources_loaded": sourcesLoaded,
		"warnings":       len(warnings),
	})

	vectorIndex := index.NewVectorIndex(s.embedProvider, s.pipelineLog)
	if err := vectorIndex.Build(ctx, chunks); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	topK := s.cfg.Rag.TopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	tool := retrieval.NewTool(vectorIndex, topK, s.pipelineLog)

	engineCfg := engine.Config{
		MaxRewrites:           s.cfg.Rag.MaxRewrites,
		FailOnExhaustedBudget: s.cfg.Rag.FailOnExhaustedBudget,
	}
	if req.MaxRewrites != nil {
		engineCfg.MaxRewrites = *req.MaxRewrites
	}

	eng := engine.NewEngine(s.llmProvider, tool, engineCfg, s.pipelineLog)
	result, err := eng.Run(ctx, req.Query)

	s.publishCompletion(ctx, runID, req.Query, result, err)
	if err != nil {
		return nil, err
	}

	s.publishRunRecord(runID, req.Query, result, warnings)

	return &dto.AskRagResponse{
		RunID:         runID,
		Answer:        result.Answer,
		Passages:      dto.NewPassageDTOs(result.Passages),
		Messages:      result.Messages,
		Rewrites:      result.Rewrites,
		Retrievals:    result.Retrievals,
		SourcesLoaded: sourcesLoaded,
		Warnings:      warnings,
	}, nil
}

func (s *ragService) GetRun(runID string) (*memory.RunRecord, bool) {
	return s.runRepo.Get(runID)
}

// collectChunks merges caller-supplied chunks with text extracted from the
// requested sources. Source failures downgrade to warnings.
func (s *ragService) collectChunks(ctx context.Context, req *dto.AskRagRequest) ([]store.Chunk, int, []string) {
	chunks := make([]store.Chunk, 0, len(req.Chunks))
	for i, text := range req.Chunks {
		chunks = append(chunks, store.Chunk{
			Text: text,
			Metadata: map[string]string{
				"source":      "inline",
				"chunk_index": strconv.Itoa(i),
			},
		})
	}

	var warnings []string
	sourcesLoaded := 0
	if len(req.Sources) > 0 {
		docs, loadWarnings := s.loader.Load(ctx, req.Sources)
		warnings = loadWarnings
		sourcesLoaded = len(docs)

		for _, doc := range docs {
			parts := utils.SplitText(doc.Text, s.cfg.Rag.ChunkSize, s.cfg.Rag.ChunkOverlap)
			for i, part := range parts {
				chunks = append(chunks, store.Chunk{
					Text: part,
					Metadata: map[string]string{
						"source":      doc.Source,
						"chunk_index": strconv.Itoa(i),
					},
				})
			}
		}
	}
	return chunks, sourcesLoaded, warnings
}

// publishRunRecord hands the completed run to the consumer over the in-proc
// event bus; the consumer persists it for GET /runs/:id.
func (s *ragService) publishRunRecord(runID, query string, result *engine.Result, warnings []string) {
	record := memory.RunRecord{
		ID:          runID,
		Query:       query,
		Answer:      result.Answer,
		Passages:    result.Passages,
		Messages:    result.Messages,
		Rewrites:    result.Rewrites,
		Retrievals:  result.Retrievals,
		Warnings:    warnings,
		CompletedAt: time.Now(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		s.sysLogger.Error("RagService", "Failed to marshal run record", map[string]interface{}{
			"run_id": runID, "error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := s.pubSub.Publish(RunEventsTopic, msg); err != nil {
		s.sysLogger.Error("RagService", "Failed to publish run record", map[string]interface{}{
			"run_id": runID, "error": err.Error(),
		})
	}
}

// publishCompletion mirrors the run outcome to NATS when configured. A NATS
// failure never affects the API response.
func (s *ragService) publishCompletion(ctx context.Context, runID, query string, result *engine.Result, runErr error) {
	if s.natsPublisher == nil {
		return
	}

	answer, rewrites, retrievals := "", 0, 0
	if result != nil {
		answer, rewrites, retrievals = result.Answer, result.Rewrites, result.Retrievals
	}

	event := events.NewRagRunCompletedEvent(runID, query, answer, rewrites, retrievals, runErr)
	if err := s.natsPublisher.Publish(ctx, event); err != nil {
		s.sysLogger.Warn("RagService", "Failed to publish NATS event", map[string]interface{}{
			"run_id": runID, "error": err.Error(),
		})
	}
}
