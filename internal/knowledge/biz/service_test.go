package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/consult-x/internal/knowledge/store"
	"github.com/kart-io/consult-x/internal/model"
	kerrors "github.com/kart-io/consult-x/pkg/errors"
	"github.com/kart-io/consult-x/pkg/llm"
	"github.com/kart-io/consult-x/pkg/pool"
)

// stubEmbedder returns a fixed-dimension vector derived from the text
// length so that similarity ordering is deterministic in tests.
type stubEmbedder struct {
	dim     int
	failErr error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.failErr != nil {
		return nil, s.failErr
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = s.vector(text)
	}
	return vectors, nil
}

func (s *stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *stubEmbedder) Name() string { return "stub" }

func (s *stubEmbedder) vector(text string) []float32 {
	v := make([]float32, s.dim)
	v[0] = 1
	v[1] = float32(len(text) % 7)
	return v
}

// stubChat streams a canned response split into chunks.
type stubChat struct {
	response string
	failErr  error
	calls    int
}

func (s *stubChat) Generate(context.Context, string, string) (string, error) {
	s.calls++
	return s.response, s.failErr
}

func (s *stubChat) GenerateStream(context.Context, string, string) (<-chan llm.StreamChunk, error) {
	s.calls++
	if s.failErr != nil {
		return nil, s.failErr
	}
	ch := make(chan llm.StreamChunk, len(s.response)+1)
	for _, part := range strings.SplitAfter(s.response, " ") {
		ch <- llm.StreamChunk{Delta: part}
	}
	ch <- llm.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (s *stubChat) Name() string { return "stub" }

func newTestService(t *testing.T, embedder llm.EmbeddingProvider, chat llm.ChatProvider) (*Service, *store.MemoryStore) {
	t.Helper()

	memStore := store.NewMemoryStore()
	workers, err := pool.New("test-embed", pool.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { workers.Release() })

	svc := NewService(embedder, chat, memStore, workers, &Config{
		ChunkSizeTokens: 300,
		ChunkOverlap:    0.2,
		TopK:            8,
		Collection:      "vector_index",
		EmbeddingDim:    4,
		EmbedBatchSize:  2,
	})
	require.NoError(t, svc.Setup(context.Background()))
	return svc, memStore
}

func seedChunks(t *testing.T, memStore *store.MemoryStore, embedder *stubEmbedder, projectID string, texts []string) {
	t.Helper()

	chunks := make([]*store.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &store.Chunk{
			ProjectID: projectID,
			DocType:   "SOP",
			PageNo:    i + 1,
			Content:   text,
			Embedding: embedder.vector(text),
		}
	}
	_, err := memStore.Insert(context.Background(), "vector_index", chunks)
	require.NoError(t, err)
}

func TestAskNoContextSkipsGeneration(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	chat := &stubChat{response: "should not be called"}
	svc, _ := newTestService(t, embedder, chat)

	var streamed strings.Builder
	answer, err := svc.Ask(context.Background(), "proj-1", "anything?", func(delta string) error {
		streamed.WriteString(delta)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, answer.NoContext)
	assert.Equal(t, NoContextAnswer, answer.Answer)
	assert.Equal(t, NoContextAnswer, streamed.String())
	assert.Empty(t, answer.Citations)
	assert.Zero(t, chat.calls, "generator must not run without context")
}

func TestAskStreamsAndExtractsCitations(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	chat := &stubChat{response: "Calibrate monthly [Source: SOP, Page 1]. Log it [Source: SOP, Page 1]."}
	svc, memStore := newTestService(t, embedder, chat)
	seedChunks(t, memStore, embedder, "proj-1", []string{
		"Calibrate the gauge every month.",
		"Keep a calibration log.",
	})

	var streamed strings.Builder
	answer, err := svc.Ask(context.Background(), "proj-1", "How often to calibrate?", func(delta string) error {
		streamed.WriteString(delta)
		return nil
	})

	require.NoError(t, err)
	assert.False(t, answer.NoContext)
	assert.Equal(t, "Calibrate monthly . Log it .", answer.Answer)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, model.Citation{DocType: "SOP", PageNo: 1}, answer.Citations[0])
	// The raw stream keeps the citation markers.
	assert.Equal(t, chat.response, streamed.String())
}

func TestAskScopedToProject(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	chat := &stubChat{response: "answer"}
	svc, memStore := newTestService(t, embedder, chat)
	seedChunks(t, memStore, embedder, "other-project", []string{"secret SOP content"})

	answer, err := svc.Ask(context.Background(), "proj-1", "what is in the SOP?", nil)

	require.NoError(t, err)
	assert.True(t, answer.NoContext)
	assert.Zero(t, chat.calls)
}

func TestAskModelSentinelPassthrough(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	chat := &stubChat{response: NoContextAnswer}
	svc, memStore := newTestService(t, embedder, chat)
	seedChunks(t, memStore, embedder, "proj-1", []string{"unrelated text"})

	answer, err := svc.Ask(context.Background(), "proj-1", "off-topic question?", nil)

	require.NoError(t, err)
	assert.True(t, answer.NoContext)
	assert.Equal(t, NoContextAnswer, answer.Answer)
	assert.Empty(t, answer.Citations)
}

func TestAskEmbeddingFailure(t *testing.T) {
	embedder := &stubEmbedder{dim: 4, failErr: errors.New("backend down")}
	svc, _ := newTestService(t, embedder, &stubChat{})

	_, err := svc.Ask(context.Background(), "proj-1", "q?", nil)

	require.Error(t, err)
	assert.Equal(t, kerrors.ErrEmbeddingBackend.Code, kerrors.GetCode(err))
}

func TestAskDeltaSinkErrorAborts(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	chat := &stubChat{response: "part one part two"}
	svc, memStore := newTestService(t, embedder, chat)
	seedChunks(t, memStore, embedder, "proj-1", []string{"some context"})

	sinkErr := errors.New("client gone")
	_, err := svc.Ask(context.Background(), "proj-1", "q?", func(string) error {
		return sinkErr
	})

	require.ErrorIs(t, err, sinkErr)
}

func TestIngestEndToEnd(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	svc, memStore := newTestService(t, embedder, &stubChat{})

	pages := []model.PageText{
		{PageNo: 1, Text: strings.Repeat("a", 2000)},
		{PageNo: 2, Text: "short page"},
	}
	chunks := svc.chunker.Split(pages)
	count, err := svc.indexer.Index(context.Background(), "proj-1", model.DocTypeSOP, chunks)

	require.NoError(t, err)
	// Page 1: window 1200, step 960 -> [0,1200) and [960,2000); page 2: one chunk.
	assert.Equal(t, 3, count)

	total, err := memStore.GetStats(context.Background(), "vector_index")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestIndexPreservesEmbeddingOrderAcrossBatches(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	svc, memStore := newTestService(t, embedder, &stubChat{})

	// Batch size 2 splits these across several concurrent requests.
	texts := []string{"aa", "bbbb", "cc", "ddddd", "e", "ffffff", "g"}
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{PageNo: i + 1, Text: text}
	}

	count, err := svc.indexer.Index(context.Background(), "proj-1", model.DocTypeSOP, chunks)
	require.NoError(t, err)
	require.Equal(t, len(texts), count)

	// Each stored chunk must carry the vector of its own text: querying
	// with a text's vector has to rank that text first.
	for _, text := range texts {
		results, err := memStore.Search(context.Background(), "vector_index", "proj-1", embedder.vector(text), 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, len(text)%7, len(results[0].Content)%7)
	}
}

func TestIndexEmbeddingFailureInsertsNothing(t *testing.T) {
	embedder := &stubEmbedder{dim: 4, failErr: errors.New("quota exceeded")}
	svc, memStore := newTestService(t, embedder, &stubChat{})

	chunks := svc.chunker.Split([]model.PageText{{PageNo: 1, Text: "some text"}})
	_, err := svc.indexer.Index(context.Background(), "proj-1", model.DocTypeSOP, chunks)

	require.Error(t, err)
	assert.Equal(t, kerrors.ErrEmbeddingBackend.Code, kerrors.GetCode(err))

	total, err := memStore.GetStats(context.Background(), "vector_index")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIngestUnparsablePDF(t *testing.T) {
	svc, _ := newTestService(t, &stubEmbedder{dim: 4}, &stubChat{})

	_, err := svc.Ingest(context.Background(), "proj-1", model.DocTypeSOP, "bad.pdf", []byte("not a pdf"))

	require.Error(t, err)
	assert.Equal(t, kerrors.ErrDocumentParse.Code, kerrors.GetCode(err))
}

func TestStatsReportsCountersAndRowCount(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	svc, memStore := newTestService(t, embedder, &stubChat{response: "answer"})
	seedChunks(t, memStore, embedder, "proj-1", []string{"some context"})

	_, err := svc.Ask(context.Background(), "proj-1", "q?", nil)
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), "other-project", "q?", nil)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), "proj-1", model.DocTypeSOP, "bad.pdf", []byte("junk"))
	require.Error(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["chunk_count"])
	assert.Equal(t, uint64(2), stats["questions_total"])
	assert.Equal(t, uint64(1), stats["questions_no_context"])
	assert.Equal(t, uint64(1), stats["ingest_errors"])
	assert.Equal(t, uint64(0), stats["documents_ingested"])
}
