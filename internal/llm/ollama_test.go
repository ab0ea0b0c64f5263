package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOllamaProvider verifies that the provider constructs correct requests
// against the Ollama API and parses its responses.
//
// TECHNIQUE: `net/http/httptest` stands in for the real Ollama server, so the
// client logic is tested in isolation without any network calls.
func TestOllamaProvider(t *testing.T) {
	var capturedMethod, capturedPath string
	var capturedReq ChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedMethod = r.Method
		capturedPath = r.URL.Path

		switch r.URL.Path {
		case "/api/chat":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedReq))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, err := w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Hello! How can I help?"},"done":true}`))
			assert.NoError(t, err)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL)
	ctx := context.Background()

	t.Run("Chat", func(t *testing.T) {
		resp, err := provider.Chat(ctx, &ChatRequest{
			Model: "llama3.2",
			Messages: []Message{
				{Role: "system", Content: "You are helpful."},
				{Role: "user", Content: "Hi"},
			},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "Hello! How can I help?", resp.Message.Content)
		assert.Equal(t, "assistant", resp.Message.Role)

		assert.Equal(t, http.MethodPost, capturedMethod)
		assert.Equal(t, "/api/chat", capturedPath)
		// The provider must force non-streaming responses regardless of input.
		assert.False(t, capturedReq.Stream)
		assert.Len(t, capturedReq.Messages, 2)
	})

	t.Run("Chat - upstream error is surfaced", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`model not loaded`))
		}))
		defer failing.Close()

		_, err := NewOllamaProvider(failing.URL).Chat(ctx, &ChatRequest{Model: "llama3.2"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "model not loaded")
	})
}
