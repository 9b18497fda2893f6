package biz

import (
	"context"
	"sync"

	"github.com/kart-io/logger"

	"github.com/kart-io/consult-x/internal/knowledge/store"
	"github.com/kart-io/consult-x/internal/model"
	"github.com/kart-io/consult-x/pkg/errors"
	"github.com/kart-io/consult-x/pkg/llm"
	"github.com/kart-io/consult-x/pkg/pool"
)

// Indexer embeds document chunks in batches and writes them to the
// vector store in a single insert.
type Indexer struct {
	embedder   llm.EmbeddingProvider
	store      store.VectorStore
	workers    *pool.Pool
	collection string
	batchSize  int
}

// NewIndexer wires an indexer over the given embedding provider and
// vector store. Embedding batches run on the worker pool.
func NewIndexer(embedder llm.EmbeddingProvider, vs store.VectorStore, workers *pool.Pool, collection string, batchSize int) *Indexer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Indexer{
		embedder:   embedder,
		store:      vs,
		workers:    workers,
		collection: collection,
		batchSize:  batchSize,
	}
}

// Index embeds all chunks and inserts them under the given project and
// document type. Either every chunk lands in the store or none does.
func (idx *Indexer) Index(ctx context.Context, projectID string, docType model.DocType, chunks []Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := idx.embedAll(ctx, texts)
	if err != nil {
		return 0, err
	}

	rows := make([]*store.Chunk, len(chunks))
	for i, chunk := range chunks {
		rows[i] = &store.Chunk{
			ProjectID: projectID,
			DocType:   docType.String(),
			PageNo:    chunk.PageNo,
			Content:   chunk.Text,
			Embedding: embeddings[i],
		}
	}

	count, err := idx.store.Insert(ctx, idx.collection, rows)
	if err != nil {
		return 0, errors.ErrVectorStore.WithCause(err)
	}

	logger.Infow("indexed document chunks",
		"project_id", projectID,
		"doc_type", docType.String(),
		"chunks", count,
	)
	return count, nil
}

// embedAll splits texts into batches, embeds them concurrently on the
// worker pool and reassembles the vectors in input order.
func (idx *Indexer) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	type batch struct {
		start int
		texts []string
	}

	var batches []batch
	for start := 0; start < len(texts); start += idx.batchSize {
		end := start + idx.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, batch{start: start, texts: texts[start:end]})
	}

	embeddings := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, b := range batches {
		b := b
		wg.Add(1)
		task := func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			vectors, err := idx.embedder.Embed(ctx, b.texts)
			if err == nil && len(vectors) != len(b.texts) {
				err = errors.ErrEmbeddingBackend.WithMessagef("expected %d embeddings, got %d", len(b.texts), len(vectors))
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			copy(embeddings[b.start:], vectors)
		}

		if err := idx.workers.SubmitWithContext(ctx, task); err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		if errors.GetCode(firstErr) >= 0 {
			return nil, firstErr
		}
		return nil, errors.ErrEmbeddingBackend.WithCause(firstErr)
	}
	return embeddings, nil
}
