package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFakeCompletionServer(t *testing.T, status int, content string, requests *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		if requests != nil {
			*requests = append(*requests, request)
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		response := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func newTestClient(t *testing.T, baseURL string) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(&Opts{
		APIKey:      "test-key",
		BaseURL:     baseURL + "/v1",
		Model:       "gpt-4o-mini",
		MaxTokens:   1000,
		Temperature: 0.7,
	}, zap.NewNop().Sugar())
	require.NoError(t, err)
	return client
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var requests []map[string]any
	server := newFakeCompletionServer(t, http.StatusOK, "hello there", &requests)
	defer server.Close()

	client := newTestClient(t, server.URL)
	reply, err := client.Complete(context.Background(), []*Message{
		NewTextMessage(RoleSystem, "persona"),
		NewTextMessage(RoleUser, "hi"),
	})
	require.NoError(t, err)
	require.Equal(t, "hello there", reply)

	require.Len(t, requests, 1)
	require.Equal(t, "gpt-4o-mini", requests[0]["model"])
	messages := requests[0]["messages"].([]any)
	require.Len(t, messages, 2)
	last := messages[1].(map[string]any)
	require.Equal(t, "user", last["role"])
	// Plain text turns are serialized as a string, not a part list.
	require.Equal(t, "hi", last["content"])
}

func TestCompleteSendsMultimodalCurrentTurn(t *testing.T) {
	var requests []map[string]any
	server := newFakeCompletionServer(t, http.StatusOK, "nice picture", &requests)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), []*Message{
		NewTextMessage(RoleSystem, "persona"),
		NewMultimodalMessage(RoleUser, "что на фото?", "https://example.com/cat.jpg"),
	})
	require.NoError(t, err)

	require.Len(t, requests, 1)
	messages := requests[0]["messages"].([]any)
	last := messages[1].(map[string]any)
	parts := last["content"].([]any)
	require.Len(t, parts, 2)

	text := parts[0].(map[string]any)
	require.Equal(t, "text", text["type"])
	require.Equal(t, "что на фото?", text["text"])

	image := parts[1].(map[string]any)
	require.Equal(t, "image_url", image["type"])
	require.Equal(t, "https://example.com/cat.jpg", image["image_url"].(map[string]any)["url"])
}

func TestReplyFallsBackOnAPIError(t *testing.T) {
	server := newFakeCompletionServer(t, http.StatusInternalServerError, "", nil)
	defer server.Close()

	client := newTestClient(t, server.URL)
	reply := client.Reply(context.Background(), []*Message{NewTextMessage(RoleUser, "hi")})
	require.Equal(t, FallbackReply, reply)
}

func TestRequestCost(t *testing.T) {
	p, err := parsePricing("0.0015", "0.002")
	require.NoError(t, err)

	cost := p.requestCost(1000, 500)
	require.NotNil(t, cost)
	require.Equal(t, "0.0025", cost.String())

	var disabled *pricing
	require.Nil(t, disabled.requestCost(1000, 500))
}

func TestParsePricingRejectsGarbage(t *testing.T) {
	_, err := parsePricing("free", "0.002")
	require.Error(t, err)
}
