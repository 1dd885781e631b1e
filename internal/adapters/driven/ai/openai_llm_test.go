package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAILLM_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAILLM("", "gpt-4o", "", 0)
	assert.Error(t, err)
}

func TestNewOpenAILLM_DefaultModel(t *testing.T) {
	llm, err := NewOpenAILLM("sk-test", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", llm.Model())
	assert.NoError(t, llm.Close())
}

func TestOpenAILLM_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "It jumps."}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	llm, err := NewOpenAILLM("sk-test", "gpt-4o", server.URL+"/v1", 0)
	require.NoError(t, err)

	answer, err := llm.Complete(context.Background(), "What does the fox do?")
	require.NoError(t, err)
	assert.Equal(t, "It jumps.", answer)

	assert.Equal(t, "gpt-4o", body["model"])
	temperature, ok := body["temperature"].(float64)
	require.True(t, ok, "temperature must be sent explicitly")
	assert.InDelta(t, 0, temperature, 1e-9)

	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "What does the fox do?", msg["content"])
}

func TestOpenAILLM_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-1", "choices": []}`))
	}))
	defer server.Close()

	llm, _ := NewOpenAILLM("sk-test", "gpt-4o", server.URL+"/v1", 0)

	_, err := llm.Complete(context.Background(), "prompt")
	assert.ErrorContains(t, err, "no choices")
}

func TestOpenAILLM_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	llm, _ := NewOpenAILLM("sk-test", "gpt-4o", server.URL+"/v1", 0)

	_, err := llm.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, statusCode(err))
	assert.True(t, isRetryable(err))
}
