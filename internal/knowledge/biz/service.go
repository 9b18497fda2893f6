package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/consult-x/internal/knowledge/metrics"
	"github.com/kart-io/consult-x/internal/knowledge/store"
	"github.com/kart-io/consult-x/internal/model"
	"github.com/kart-io/consult-x/pkg/errors"
	"github.com/kart-io/consult-x/pkg/llm"
	"github.com/kart-io/consult-x/pkg/pool"
)

// Config carries the knowledge pipeline tuning knobs.
type Config struct {
	ChunkSizeTokens int
	ChunkOverlap    float64
	TopK            int
	Collection      string
	EmbeddingDim    int
	EmbedBatchSize  int
}

// Service runs the document knowledge pipelines: PDF ingestion into the
// vector store and streamed, citation-backed answering over it.
type Service struct {
	parser    *Parser
	chunker   *Chunker
	indexer   *Indexer
	retriever *Retriever
	chat      llm.ChatProvider
	store     store.VectorStore
	metrics   *metrics.KnowledgeMetrics
	cfg       *Config
}

// NewService wires the full pipeline over the given providers and store.
func NewService(embedder llm.EmbeddingProvider, chat llm.ChatProvider, vs store.VectorStore, workers *pool.Pool, cfg *Config) *Service {
	return &Service{
		parser:    NewParser(),
		chunker:   NewChunker(cfg.ChunkSizeTokens, cfg.ChunkOverlap),
		indexer:   NewIndexer(embedder, vs, workers, cfg.Collection, cfg.EmbedBatchSize),
		retriever: NewRetriever(embedder, vs, cfg.Collection, cfg.TopK),
		chat:      chat,
		store:     vs,
		metrics:   metrics.New(),
		cfg:       cfg,
	}
}

// Setup ensures the backing collection exists before serving traffic.
func (s *Service) Setup(ctx context.Context) error {
	cfg := &store.CollectionConfig{
		Name:        s.cfg.Collection,
		Description: "Project document knowledge base",
		Dimension:   s.cfg.EmbeddingDim,
	}
	if err := s.store.EnsureCollection(ctx, cfg); err != nil {
		return errors.ErrVectorStore.WithCause(err)
	}
	return nil
}

// Ingest parses a PDF, chunks it page by page, embeds the chunks and
// stores them under the project. A document with no extractable text is
// reported as NoContent, not as a failure.
func (s *Service) Ingest(ctx context.Context, projectID string, docType model.DocType, filename string, data []byte) (*model.IngestResult, error) {
	logger.Infow("ingesting document",
		"project_id", projectID,
		"doc_type", docType.String(),
		"filename", filename,
		"bytes", len(data),
	)

	pages, err := s.parser.ParsePages(data)
	if err != nil {
		s.metrics.RecordIngestError()
		return nil, err
	}
	if len(pages) == 0 {
		logger.Infow("document has no extractable text",
			"project_id", projectID, "filename", filename)
		return &model.IngestResult{
			NoContent: true,
			Message:   fmt.Sprintf("No text could be extracted from %s. Nothing was indexed.", filename),
		}, nil
	}

	chunks := s.chunker.Split(pages)
	count, err := s.indexer.Index(ctx, projectID, docType, chunks)
	if err != nil {
		s.metrics.RecordIngestError()
		return nil, err
	}

	s.metrics.RecordIngest(count)
	return &model.IngestResult{
		ChunkCount: count,
		Message:    fmt.Sprintf("Indexed %d chunks from %s.", count, filename),
	}, nil
}

// Ask answers a question over the project's documents. Every generated
// delta is forwarded to onDelta as it arrives; the returned Answer holds
// the accumulated text with citation markers stripped plus the
// deduplicated citations. When retrieval finds nothing the fixed
// no-answer sentinel is streamed and returned without calling the
// generator.
func (s *Service) Ask(ctx context.Context, projectID, question string, onDelta func(delta string) error) (*model.Answer, error) {
	results, err := s.retriever.Retrieve(ctx, projectID, question)
	if err != nil {
		s.metrics.RecordQuestionError()
		return nil, err
	}

	if len(results) == 0 {
		logger.Infow("no context retrieved", "project_id", projectID)
		if onDelta != nil {
			if err := onDelta(NoContextAnswer); err != nil {
				s.metrics.RecordQuestionError()
				return nil, err
			}
		}
		s.metrics.RecordQuestion(true)
		return &model.Answer{Answer: NoContextAnswer, NoContext: true}, nil
	}

	prompt := BuildPrompt(BuildContext(results), question)
	stream, err := s.chat.GenerateStream(ctx, prompt, SystemInstruction())
	if err != nil {
		s.metrics.RecordQuestionError()
		return nil, errors.ErrGenerationBackend.WithCause(err)
	}

	var full strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			s.metrics.RecordQuestionError()
			return nil, errors.ErrGenerationBackend.WithCause(chunk.Err)
		}
		if chunk.Done {
			break
		}
		if chunk.Delta == "" {
			continue
		}
		full.WriteString(chunk.Delta)
		if onDelta != nil {
			if err := onDelta(chunk.Delta); err != nil {
				s.metrics.RecordQuestionError()
				return nil, err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		s.metrics.RecordQuestionError()
		return nil, errors.ErrContextCanceled.WithCause(err)
	}

	text := full.String()
	if strings.TrimSpace(text) == NoContextAnswer {
		s.metrics.RecordQuestion(true)
		return &model.Answer{Answer: NoContextAnswer, NoContext: true}, nil
	}

	s.metrics.RecordQuestion(false)
	cleaned, citations := ExtractCitations(text)
	return &model.Answer{Answer: cleaned, Citations: citations}, nil
}

// Stats reports the collection row count together with the service
// business counters.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	count, err := s.store.GetStats(ctx, s.cfg.Collection)
	if err != nil {
		return nil, errors.ErrVectorStore.WithCause(err)
	}

	stats := s.metrics.Snapshot()
	stats["chunk_count"] = count
	return stats, nil
}
