package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/consult-x/internal/knowledge/biz"
	"github.com/kart-io/consult-x/internal/knowledge/store"
	"github.com/kart-io/consult-x/pkg/llm"
	"github.com/kart-io/consult-x/pkg/pool"
)

type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dim)
		v[0] = 1
		vectors[i] = v
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.Embed(ctx, []string{text})
	return vectors[0], err
}

func (f *fakeEmbedder) Name() string { return "fake" }

type fakeChat struct{ response string }

func (f *fakeChat) Generate(context.Context, string, string) (string, error) {
	return f.response, nil
}

func (f *fakeChat) GenerateStream(context.Context, string, string) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk, 2)
	ch <- llm.StreamChunk{Delta: f.response}
	ch <- llm.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (f *fakeChat) Name() string { return "fake" }

func newTestRouter(t *testing.T, chat llm.ChatProvider, seed []*store.Chunk) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	embedder := &fakeEmbedder{dim: 4}
	memStore := store.NewMemoryStore()
	workers, err := pool.New("test", pool.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { workers.Release() })

	service := biz.NewService(embedder, chat, memStore, workers, &biz.Config{
		ChunkSizeTokens: 300,
		ChunkOverlap:    0.2,
		TopK:            8,
		Collection:      "vector_index",
		EmbeddingDim:    4,
		EmbedBatchSize:  100,
	})
	require.NoError(t, service.Setup(context.Background()))
	if len(seed) > 0 {
		_, err := memStore.Insert(context.Background(), "vector_index", seed)
		require.NoError(t, err)
	}

	h := NewKnowledgeHandler(service, 1<<20)
	engine := gin.New()
	engine.POST("/v1/knowledge/documents", h.UploadDocument)
	engine.POST("/v1/knowledge/ask", h.Ask)
	engine.GET("/v1/knowledge/stats", h.Stats)
	return engine
}

func multipartBody(t *testing.T, fields map[string]string, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadDocumentMissingProjectID(t *testing.T) {
	engine := newTestRouter(t, &fakeChat{}, nil)

	body, contentType := multipartBody(t, map[string]string{"doc_type": "SOP"}, "doc.pdf", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadDocumentUnknownDocType(t *testing.T) {
	engine := newTestRouter(t, &fakeChat{}, nil)

	body, contentType := multipartBody(t, map[string]string{
		"project_id": "proj-1",
		"doc_type":   "Invoice",
	}, "doc.pdf", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadDocumentUnparsableFile(t *testing.T) {
	engine := newTestRouter(t, &fakeChat{}, nil)

	body, contentType := multipartBody(t, map[string]string{
		"project_id": "proj-1",
		"doc_type":   "SOP",
	}, "doc.pdf", []byte("this is not a pdf"))
	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAskNoContextStreamsSentinel(t *testing.T) {
	engine := newTestRouter(t, &fakeChat{response: "unused"}, nil)

	payload, _ := json.Marshal(map[string]string{
		"project_id": "proj-1",
		"query":      "anything?",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, biz.NoContextAnswer, rec.Body.String())
}

func TestAskStreamsGeneratedText(t *testing.T) {
	seed := []*store.Chunk{{
		ProjectID: "proj-1",
		DocType:   "SOP",
		PageNo:    5,
		Content:   "Calibrate the gauge every month.",
		Embedding: []float32{1, 0, 0, 0},
	}}
	engine := newTestRouter(t, &fakeChat{response: "Monthly [Source: SOP, Page 5]."}, seed)

	payload, _ := json.Marshal(map[string]string{
		"project_id": "proj-1",
		"query":      "How often to calibrate?",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/ask", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// The stream carries the raw markers for the client to render.
	assert.Equal(t, "Monthly [Source: SOP, Page 5].", rec.Body.String())
}

func TestAskMissingFields(t *testing.T) {
	engine := newTestRouter(t, &fakeChat{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/ask", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	seed := []*store.Chunk{{
		ProjectID: "proj-1",
		DocType:   "SOP",
		PageNo:    1,
		Content:   "text",
		Embedding: []float32{1, 0, 0, 0},
	}}
	engine := newTestRouter(t, &fakeChat{}, seed)

	req := httptest.NewRequest(http.MethodGet, "/v1/knowledge/stats", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Code int            `json:"code"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, float64(1), resp.Data["chunk_count"])
	assert.Contains(t, resp.Data, "questions_total")
	assert.Contains(t, resp.Data, "documents_ingested")
}
