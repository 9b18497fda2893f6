// Package store provides vector storage for document chunks.
package store

import (
	"context"
)

// Chunk is one embedded slice of a document page.
type Chunk struct {
	// ProjectID scopes the chunk to a project.
	ProjectID string
	// DocType is the document type label.
	DocType string
	// PageNo is the 1-based page number the chunk came from.
	PageNo int
	// Content is the chunk text.
	Content string
	// Embedding is the embedding vector.
	Embedding []float32
}

// SearchResult is one retrieved chunk with its similarity score.
type SearchResult struct {
	// DocType is the document type label.
	DocType string
	// PageNo is the 1-based page number.
	PageNo int
	// Content is the chunk text.
	Content string
	// Score is the cosine similarity score, higher is closer.
	Score float32
}

// CollectionConfig describes the vector collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string
	// Description is the collection description.
	Description string
	// Dimension is the embedding vector dimension.
	Dimension int
}

// VectorStore is the vector storage interface.
type VectorStore interface {
	// EnsureCollection creates the collection when absent.
	EnsureCollection(ctx context.Context, config *CollectionConfig) error

	// Insert stores chunks atomically. Either every chunk is stored or
	// none is, and the returned count equals len(chunks) on success.
	Insert(ctx context.Context, collection string, chunks []*Chunk) (int, error)

	// Search returns up to topK chunks of the given project ordered by
	// descending similarity to the embedding. Chunks of other projects
	// are never returned.
	Search(ctx context.Context, collection, projectID string, embedding []float32, topK int) ([]*SearchResult, error)

	// GetStats returns the number of stored chunks.
	GetStats(ctx context.Context, collection string) (int64, error)

	// Close releases the store.
	Close(ctx context.Context) error
}
