package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateStreamReaderExitsWhenConsumerAbandons(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for {
			select {
			case <-r.Context().Done():
				return
			default:
			}
			_, err := w.Write([]byte(`data: {"candidates":[{"content":{"parts":[{"text":"x"}]}}]}` + "\n\n"))
			if err != nil {
				return
			}
			flusher.Flush()
		}
	}))
	defer srv.Close()

	provider := NewProviderWithConfig(&Config{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		ChatModel: "gemini-2.5-flash",
		Timeout:   5 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := provider.GenerateStream(ctx, "prompt", "")
	require.NoError(t, err)

	chunk := <-ch
	require.NoError(t, chunk.Err)
	require.Equal(t, "x", chunk.Delta)

	// The consumer walks away mid-stream. The reader must close the
	// channel instead of blocking on a send nobody receives.
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream channel not closed after cancellation")
		}
	}
}
