package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/consult-x/pkg/component/milvus"
)

// MilvusStore implements VectorStore backed by Milvus.
type MilvusStore struct {
	client *milvus.Client
}

// NewMilvusStore creates a Milvus-backed store.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// EnsureCollection creates the chunk collection when absent.
func (s *MilvusStore) EnsureCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "project_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "doc_type", DataType: entity.FieldTypeVarChar, MaxLen: 32},
			{Name: "page_no", DataType: entity.FieldTypeInt64},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	return s.client.EnsureCollection(ctx, schema)
}

// Insert stores chunks as a single Milvus insert, which either commits
// every row or fails as a whole.
func (s *MilvusStore) Insert(ctx context.Context, collection string, chunks []*Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"project_id": make([]any, len(chunks)),
		"doc_type":   make([]any, len(chunks)),
		"page_no":    make([]any, len(chunks)),
		"content":    make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		embeddings[i] = chunk.Embedding
		metadata["project_id"][i] = chunk.ProjectID
		metadata["doc_type"][i] = chunk.DocType
		metadata["page_no"][i] = int64(chunk.PageNo)
		metadata["content"][i] = chunk.Content
	}

	ids, err := s.client.Insert(ctx, collection, &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   metadata,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert into milvus: %w", err)
	}

	return len(ids), nil
}

// Search retrieves the topK closest chunks of one project.
func (s *MilvusStore) Search(ctx context.Context, collection, projectID string, embedding []float32, topK int) ([]*SearchResult, error) {
	expr := fmt.Sprintf(`project_id == "%s"`, escapeFilterValue(projectID))
	outputFields := []string{"doc_type", "page_no", "content"}

	results, err := s.client.SearchWithFilter(ctx, collection, embedding, expr, topK, outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		sr := &SearchResult{Score: r.Score}
		if v, ok := r.Metadata["doc_type"].(string); ok {
			sr.DocType = v
		}
		if v, ok := r.Metadata["page_no"].(int64); ok {
			sr.PageNo = int(v)
		}
		if v, ok := r.Metadata["content"].(string); ok {
			sr.Content = v
		}
		searchResults = append(searchResults, sr)
	}

	return searchResults, nil
}

// GetStats returns the number of stored chunks.
func (s *MilvusStore) GetStats(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// escapeFilterValue escapes quotes and backslashes so a project ID
// cannot break out of the filter expression.
func escapeFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

var _ VectorStore = (*MilvusStore)(nil)
