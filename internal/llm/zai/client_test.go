package zai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dwizi/board-agent/internal/llm"
)

func TestCompleteSuccess(t *testing.T) {
	var receivedAuth string
	var receivedModel string
	var receivedUserPrompt string
	var receivedSystemPrompt string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		receivedAuth = req.Header.Get("Authorization")
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		receivedModel = body.Model
		if len(body.Messages) > 1 {
			receivedUserPrompt = body.Messages[1].Content
		}
		if len(body.Messages) > 0 {
			receivedSystemPrompt = body.Messages[0].Content
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message": map[string]any{"content": `{"action":"help","confidence":0.9}`},
				},
			},
		})
	}))
	defer server.Close()

	client := New(Config{
		APIKey:  "secret",
		BaseURL: server.URL,
		Model:   "glm-4.7-flash",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	reply, err := client.Complete(context.Background(), "Classify task messages", "what can you do")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if reply != `{"action":"help","confidence":0.9}` {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if receivedAuth != "Bearer secret" {
		t.Fatalf("expected auth bearer, got %s", receivedAuth)
	}
	if receivedModel != "glm-4.7-flash" {
		t.Fatalf("unexpected model: %s", receivedModel)
	}
	if receivedUserPrompt != "what can you do" {
		t.Fatalf("expected raw user text in payload, got %s", receivedUserPrompt)
	}
	if receivedSystemPrompt != "Classify task messages" {
		t.Fatalf("expected system prompt, got %s", receivedSystemPrompt)
	}
}

func TestCompleteUnavailableWithoutAPIKey(t *testing.T) {
	client := New(Config{}, nil)
	_, err := client.Complete(context.Background(), "classify", "hello")
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing BOARD_AGENT_LLM_API_KEY") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompleteStripsThinkBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message": map[string]any{
						"content": "<think>\ninternal reasoning\n</think>\n\n{\"action\":\"list\"}",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := New(Config{
		BaseURL: server.URL,
		Model:   "qwen2.5:7b-instruct",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	reply, err := client.Complete(context.Background(), "classify", "hello")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if reply != `{"action":"list"}` {
		t.Fatalf("unexpected sanitized reply: %q", reply)
	}
}
