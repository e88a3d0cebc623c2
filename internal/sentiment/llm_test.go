package sentiment

import (
	"strings"
	"testing"
)

func TestParseLLMScores(t *testing.T) {
	t.Parallel()

	got, err := ParseLLMScores("Sure! ```json\n{\"compound\": -0.7, \"positive\": 0, \"negative\": 0.6, \"neutral\": 0.4}\n```")
	if err != nil {
		t.Fatalf("ParseLLMScores: %v", err)
	}
	if got.Compound != -0.7 || got.Negative != 0.6 {
		t.Errorf("scores = %+v", got)
	}

	for _, bad := range []string{
		"no json here",
		`{"compound": 3, "positive": 0, "negative": 0, "neutral": 1}`,
		`{"compound": 0, "positive": -0.1, "negative": 0, "neutral": 1}`,
	} {
		if _, err := ParseLLMScores(bad); err == nil {
			t.Errorf("ParseLLMScores(%q) should fail", bad)
		}
	}
}

func TestBuildLLMPromptEmbedsText(t *testing.T) {
	t.Parallel()

	if p := BuildLLMPrompt("battery died again"); !strings.Contains(p, "Post:\nbattery died again\n") {
		t.Errorf("prompt = %q", p)
	}
}
