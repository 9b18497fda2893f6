package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore implements VectorStore in process memory. It backs tests
// and local development where no Milvus instance is available.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	rows      []memoryRow
}

type memoryRow struct {
	chunk Chunk
	seq   int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// EnsureCollection records the expected embedding dimension. The
// collection name is ignored; a MemoryStore holds a single collection.
func (s *MemoryStore) EnsureCollection(_ context.Context, config *CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != config.Dimension {
		return fmt.Errorf("collection already exists with dimension %d", s.dimension)
	}
	s.dimension = config.Dimension
	return nil
}

// Insert stores all chunks or none. Every chunk is validated before the
// first one is appended.
func (s *MemoryStore) Insert(_ context.Context, _ string, chunks []*Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, chunk := range chunks {
		if chunk == nil {
			return 0, fmt.Errorf("chunk %d is nil", i)
		}
		if s.dimension != 0 && len(chunk.Embedding) != s.dimension {
			return 0, fmt.Errorf("chunk %d has dimension %d, want %d", i, len(chunk.Embedding), s.dimension)
		}
	}

	for _, chunk := range chunks {
		s.rows = append(s.rows, memoryRow{chunk: *chunk, seq: len(s.rows)})
	}
	return len(chunks), nil
}

// Search returns up to topK chunks of the project ordered by descending
// cosine similarity. Ties keep insertion order.
func (s *MemoryStore) Search(_ context.Context, _ string, projectID string, embedding []float32, topK int) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		row   memoryRow
		score float32
	}

	var candidates []scored
	for _, row := range s.rows {
		if row.chunk.ProjectID != projectID {
			continue
		}
		candidates = append(candidates, scored{row: row, score: cosineSimilarity(embedding, row.chunk.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].row.seq < candidates[j].row.seq
	})

	if topK < len(candidates) {
		candidates = candidates[:topK]
	}

	results := make([]*SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = &SearchResult{
			DocType: c.row.chunk.DocType,
			PageNo:  c.row.chunk.PageNo,
			Content: c.row.chunk.Content,
			Score:   c.score,
		}
	}
	return results, nil
}

// GetStats returns the number of stored chunks.
func (s *MemoryStore) GetStats(_ context.Context, _ string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows)), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ VectorStore = (*MemoryStore)(nil)
