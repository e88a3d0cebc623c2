package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikey/textguard/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap/zaptest"
)

func newTestScorer(t *testing.T, reply string, status int) (*Scorer, *openai.ChatCompletionRequest) {
	t.Helper()
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	s := NewScorer(openai.NewClientWithConfig(cfg), "gpt-4o-mini", 100, 0, 1, 64,
		zaptest.NewLogger(t), utils.NewTextProcessor(zaptest.NewLogger(t)))
	return s, &got
}

func TestScoreParsesReply(t *testing.T) {
	t.Parallel()

	s, req := newTestScorer(t, `{"compound":0.81,"positive":0.7,"negative":0,"neutral":0.3}`, http.StatusOK)
	scores, err := s.Score(context.Background(), "I love the new release")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if scores.Compound != 0.81 || scores.Positive != 0.7 {
		t.Errorf("scores = %+v", scores)
	}
	if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "I love the new release") {
		t.Errorf("request messages = %+v", req.Messages)
	}
	if req.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", req.Model)
	}
}

func TestScoreErrors(t *testing.T) {
	t.Parallel()

	s, _ := newTestScorer(t, "I cannot help with that", http.StatusOK)
	if _, err := s.Score(context.Background(), "x"); err == nil {
		t.Error("expected parse error")
	}

	s, _ = newTestScorer(t, "", http.StatusTooManyRequests)
	if _, err := s.Score(context.Background(), "x"); err == nil {
		t.Error("expected API error")
	}
}
