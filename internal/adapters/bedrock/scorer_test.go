package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/textguard/internal/utils"
	"go.uber.org/zap/zaptest"
)

type fakeRuntime struct {
	body    []byte
	err     error
	request map[string]any
}

func (f *fakeRuntime) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	_ = json.Unmarshal(in.Body, &f.request)
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func newScorer(t *testing.T, rt *fakeRuntime, modelID string) *Scorer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return NewScorer(rt, modelID, 200, 0, 1, 1024, logger, utils.NewTextProcessor(logger))
}

func TestClaudeScorer(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{body: []byte(`{"content":[{"type":"text","text":"{\"compound\":-0.5,\"positive\":0.1,\"negative\":0.5,\"neutral\":0.4}"}]}`)}
	s := newScorer(t, rt, "anthropic.claude-3-haiku-20240307-v1:0")

	scores, err := s.Score(context.Background(), "service was awful")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if scores.Compound != -0.5 || scores.Negative != 0.5 {
		t.Errorf("scores = %+v", scores)
	}
	if rt.request["anthropic_version"] != "bedrock-2023-05-31" {
		t.Errorf("request = %v", rt.request)
	}
}

func TestTitanScorer(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{body: []byte(`{"results":[{"outputText":"{\"compound\":0.2,\"positive\":0.3,\"negative\":0,\"neutral\":0.7}"}]}`)}
	s := newScorer(t, rt, "amazon.titan-text-express-v1")

	scores, err := s.Score(context.Background(), "fine I guess")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if scores.Compound != 0.2 {
		t.Errorf("scores = %+v", scores)
	}
	if _, ok := rt.request["inputText"]; !ok {
		t.Errorf("request = %v", rt.request)
	}
}

func TestScorerErrors(t *testing.T) {
	t.Parallel()

	s := newScorer(t, &fakeRuntime{err: errors.New("throttled")}, "meta.llama3")
	if _, err := s.Score(context.Background(), "x"); err == nil {
		t.Error("expected invoke error")
	}

	s = newScorer(t, &fakeRuntime{body: []byte(`{"results":[]}`)}, "amazon.titan-text-express-v1")
	if _, err := s.Score(context.Background(), "x"); err == nil {
		t.Error("expected empty response error")
	}

	s = newScorer(t, &fakeRuntime{body: []byte(`{"output":"{\"compound\":0,\"positive\":0,\"negative\":0,\"neutral\":1}"}`)}, "meta.llama3")
	if _, err := s.Score(context.Background(), "x"); err != nil {
		t.Errorf("generic output: %v", err)
	}
}
