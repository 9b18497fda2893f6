package knowledge

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kart-io/consult-x/internal/knowledge/biz"
	"github.com/kart-io/consult-x/internal/knowledge/handler"
	"github.com/kart-io/consult-x/internal/knowledge/router"
	"github.com/kart-io/consult-x/internal/knowledge/store"
	"github.com/kart-io/consult-x/pkg/app"
	milvuscomp "github.com/kart-io/consult-x/pkg/component/milvus"
	"github.com/kart-io/consult-x/pkg/llm"
	"github.com/kart-io/consult-x/pkg/pool"
	"github.com/kart-io/consult-x/pkg/server"

	// Register LLM providers.
	_ "github.com/kart-io/consult-x/pkg/llm/gemini"
	_ "github.com/kart-io/consult-x/pkg/llm/ollama"
)

const (
	appName        = "consult-knowledge"
	appDescription = `Consult-X Knowledge Service

The document knowledge base service for the Consult-X consultancy platform.

This server provides:
  - PDF document ingestion with page-scoped chunking and vector embeddings
  - Project-scoped semantic retrieval
  - Streaming, citation-backed question answering`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run runs the knowledge service with the given options.
func Run(opts *Options) error {
	opts.Log.AddInitialField("service.name", appName)
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting knowledge service...")

	milvusClient, err := milvuscomp.New(opts.Milvus)
	if err != nil {
		return fmt.Errorf("failed to initialize milvus: %w", err)
	}
	vectorStore := store.NewMilvusStore(milvusClient)
	defer vectorStore.Close(context.Background())
	logger.Info("Milvus client initialized")

	embedder, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	chat, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("LLM providers initialized",
		"embedding", embedder.Name(), "chat", chat.Name())

	workers, err := pool.New("embed-batch", &pool.Config{
		Capacity: opts.Knowledge.EmbedWorkers,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize worker pool: %w", err)
	}
	defer workers.Release()

	service := biz.NewService(embedder, chat, vectorStore, workers, &biz.Config{
		ChunkSizeTokens: opts.Knowledge.ChunkSizeTokens,
		ChunkOverlap:    opts.Knowledge.ChunkOverlap,
		TopK:            opts.Knowledge.TopK,
		Collection:      opts.Knowledge.Collection,
		EmbeddingDim:    opts.Knowledge.EmbeddingDim,
		EmbedBatchSize:  opts.Knowledge.EmbedBatchSize,
	})
	if err := service.Setup(context.Background()); err != nil {
		return fmt.Errorf("failed to prepare collection: %w", err)
	}
	logger.Info("Knowledge service initialized")

	srv := server.New(opts.HTTP)
	router.Register(srv, handler.NewKnowledgeHandler(service, opts.HTTP.MaxUploadBytes))

	logger.Info("Knowledge service is ready")
	return srv.Run()
}
