package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/peerwave/backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatReturnsReply(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  gm to you too  "}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gpt-3.5-turbo")

	reply, err := client.Chat(context.Background(), "gm")
	require.NoError(t, err)
	assert.Equal(t, "gm to you too", reply)

	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "gm", captured.Messages[1].Content)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
	assert.Equal(t, 150, captured.MaxTokens)
}

func TestChatEmptyChoicesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gpt-3.5-turbo")

	reply, err := client.Chat(context.Background(), "gm")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
}

func TestChatBlankContentFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "   "}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gpt-3.5-turbo")

	reply, err := client.Chat(context.Background(), "gm")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
}

func TestChatUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "gpt-3.5-turbo")

	_, err := client.Chat(context.Background(), "gm")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUpstream, apperr.From(err).Code)
}

func TestChatUnconfigured(t *testing.T) {
	client := NewClient("https://api.example.com/v1", "", "gpt-3.5-turbo")

	assert.False(t, client.Configured())

	_, err := client.Chat(context.Background(), "gm")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUpstream, apperr.From(err).Code)
}
