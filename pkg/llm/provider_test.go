package llm

import (
	"context"
	"testing"
)

// mockProvider is a stub provider implementation for registry tests.
type mockProvider struct {
	name string
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{0.1, 0.2, 0.3}
	}
	return result, nil
}

func (m *mockProvider) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockProvider) Generate(_ context.Context, _ string, _ string) (string, error) {
	return "mock generated text", nil
}

func (m *mockProvider) GenerateStream(_ context.Context, _ string, _ string) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk, 2)
	ch <- StreamChunk{Delta: "mock"}
	ch <- StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("test-provider", func(config map[string]any) (Provider, error) {
		name := "test-provider"
		if n, ok := config["name"].(string); ok {
			name = n
		}
		return &mockProvider{name: name}, nil
	})

	provider, err := NewProvider("test-provider", map[string]any{"name": "custom-name"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	if provider.Name() != "custom-name" {
		t.Errorf("expected name 'custom-name', got '%s'", provider.Name())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider("unknown-provider", nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := NewEmbeddingProvider("unknown-provider", nil); err == nil {
		t.Fatal("expected error for unknown embedding provider")
	}
	if _, err := NewChatProvider("unknown-provider", nil); err == nil {
		t.Fatal("expected error for unknown chat provider")
	}
}

func TestFullProviderFallback(t *testing.T) {
	RegisterProvider("fallback-provider", func(_ map[string]any) (Provider, error) {
		return &mockProvider{name: "fallback-provider"}, nil
	})

	embed, err := NewEmbeddingProvider("fallback-provider", nil)
	if err != nil {
		t.Fatalf("NewEmbeddingProvider failed: %v", err)
	}
	if embed.Name() != "fallback-provider" {
		t.Errorf("unexpected provider: %s", embed.Name())
	}

	chat, err := NewChatProvider("fallback-provider", nil)
	if err != nil {
		t.Fatalf("NewChatProvider failed: %v", err)
	}
	if chat.Name() != "fallback-provider" {
		t.Errorf("unexpected provider: %s", chat.Name())
	}
}

func TestDedicatedFactoryWins(t *testing.T) {
	RegisterProvider("dual-provider", func(_ map[string]any) (Provider, error) {
		return &mockProvider{name: "full"}, nil
	})
	RegisterChatProvider("dual-provider", func(_ map[string]any) (ChatProvider, error) {
		return &mockProvider{name: "chat-only"}, nil
	})

	chat, err := NewChatProvider("dual-provider", nil)
	if err != nil {
		t.Fatalf("NewChatProvider failed: %v", err)
	}
	if chat.Name() != "chat-only" {
		t.Errorf("expected dedicated chat factory, got '%s'", chat.Name())
	}
}
