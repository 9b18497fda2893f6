package biz

import (
	"context"

	"github.com/kart-io/consult-x/internal/knowledge/store"
	"github.com/kart-io/consult-x/pkg/errors"
	"github.com/kart-io/consult-x/pkg/llm"
)

// Retriever embeds a question and pulls the closest chunks for one
// project from the vector store.
type Retriever struct {
	embedder   llm.EmbeddingProvider
	store      store.VectorStore
	collection string
	topK       int
}

// NewRetriever wires a retriever over the embedding provider and store.
func NewRetriever(embedder llm.EmbeddingProvider, vs store.VectorStore, collection string, topK int) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      vs,
		collection: collection,
		topK:       topK,
	}
}

// Retrieve returns up to topK chunks relevant to the question, scoped
// to a single project.
func (r *Retriever) Retrieve(ctx context.Context, projectID, question string) ([]*store.SearchResult, error) {
	vector, err := r.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return nil, errors.ErrEmbeddingBackend.WithCause(err)
	}

	results, err := r.store.Search(ctx, r.collection, projectID, vector, r.topK)
	if err != nil {
		return nil, errors.ErrVectorStore.WithCause(err)
	}
	return results, nil
}
