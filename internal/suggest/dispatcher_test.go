package suggest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikey/textguard/internal/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// fixedExtractor returns the same keywords for every text
type fixedExtractor []string

func (f fixedExtractor) Extract(string, int) []string {
	return append([]string{}, f...)
}

func newDispatcher(t *testing.T, keywords ...string) *Dispatcher {
	t.Helper()
	return NewDispatcher(fixedExtractor(keywords), DefaultCatalog(), 1, zaptest.NewLogger(t))
}

func analysis(label, text string) map[string]any {
	return map[string]any{
		"text":              text,
		"sentiment":         map[string]any{"compound": 0.0},
		"overall_sentiment": label,
	}
}

func TestPositiveTemplates(t *testing.T) {
	t.Parallel()

	res := newDispatcher(t, "model").Suggest(analysis("positive", "The new AI model is excellent"))
	if res.Status != StatusOK || len(res.Suggestions) != 4 {
		t.Fatalf("result = %+v", res)
	}
	want := "Amplify this! Try: 'This is great! Fully agree with the point about model.'"
	if res.Suggestions[0] != want {
		t.Errorf("first suggestion = %q", res.Suggestions[0])
	}
	if !strings.Contains(res.Suggestions[2], "Could you tell us more about model?") {
		t.Errorf("third suggestion = %q", res.Suggestions[2])
	}
	if !strings.Contains(res.Suggestions[3], "emoji") {
		t.Errorf("fourth suggestion = %q", res.Suggestions[3])
	}
}

func TestNegativeTemplates(t *testing.T) {
	t.Parallel()

	res := newDispatcher(t, "breach").Suggest(analysis("negative", "The data breach is a disaster"))
	if res.Status != StatusOK || len(res.Suggestions) != 3 {
		t.Fatalf("result = %+v", res)
	}
	prefixes := []string{"Acknowledge and offer help:", "Show understanding:", "Offer to take it private:"}
	for i, p := range prefixes {
		if !strings.HasPrefix(res.Suggestions[i], p) {
			t.Errorf("suggestion %d = %q, want prefix %q", i, res.Suggestions[i], p)
		}
	}
	if !strings.Contains(res.Suggestions[0], "your experience with breach.") {
		t.Errorf("keyword not filled: %q", res.Suggestions[0])
	}
}

func TestFallbackKeywords(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)

	neutral := d.Suggest(analysis("neutral", "It is what it is."))
	if !strings.Contains(neutral.Suggestions[0], "how this impacts this topic or") {
		t.Errorf("neutral fallback missing: %q", neutral.Suggestions[0])
	}
	positive := d.Suggest(analysis("positive", ""))
	if !strings.Contains(positive.Suggestions[0], "the point about this point.") {
		t.Errorf("positive fallback missing: %q", positive.Suggestions[0])
	}
	negative := d.Suggest(analysis("negative", ""))
	if !strings.Contains(negative.Suggestions[1], "regarding this topic and") {
		t.Errorf("negative fallback missing: %q", negative.Suggestions[1])
	}
}

func TestValidation(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "x")
	tests := []struct {
		name   string
		input  any
		status Status
		first  string
	}{
		{"string", "This is just a string.", StatusInvalidInput, "Error: Input must be a dictionary."},
		{"list", []any{"this", "is"}, StatusInvalidInput, "Error: Input must be a dictionary."},
		{"nil", nil, StatusInvalidInput, "Error: Input must be a dictionary."},
		{"missing label", map[string]any{"text": "hi"}, StatusMissingKey, "Error: Input dictionary missing 'overall_sentiment' key."},
		{"missing text", map[string]any{"overall_sentiment": "neutral"}, StatusMissingKey, "Error: Input dictionary missing 'text' key."},
		{"missing both", map[string]any{}, StatusMissingKey, "Error: Input dictionary missing 'overall_sentiment' key."},
		{"int keys", map[int]string{1: "positive"}, StatusInvalidInput, "Error: Input must be a dictionary."},
		{"typed map missing text", map[string]string{"overall_sentiment": "neutral"}, StatusMissingKey, "Error: Input dictionary missing 'text' key."},
		{"null label", map[string]any{"overall_sentiment": nil, "text": "hi"}, StatusUnknownSentiment,
			"Warning: Unknown sentiment 'None'. No specific suggestions available."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Suggest(tt.input)
			if res.Status != tt.status {
				t.Errorf("status = %s, want %s", res.Status, tt.status)
			}
			if len(res.Suggestions) != 1 || res.Suggestions[0] != tt.first {
				t.Errorf("suggestions = %q", res.Suggestions)
			}
		})
	}
}

func TestAnyStringKeyedMapIsAccepted(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t, "model")
	res := d.Suggest(map[string]string{"overall_sentiment": "positive", "text": "The new AI model is excellent"})
	if res.Status != StatusOK || len(res.Suggestions) != 4 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Suggestions[0], "Amplify this! Try:") {
		t.Errorf("first suggestion = %q", res.Suggestions[0])
	}

	type fields map[string]any
	if res := d.Suggest(fields{"overall_sentiment": "neutral", "text": "ok"}); res.Status != StatusOK {
		t.Errorf("named map type: status = %s", res.Status)
	}
}

func TestUnknownSentimentWarns(t *testing.T) {
	t.Parallel()

	obsCore, logs := observer.New(zapcore.WarnLevel)
	d := NewDispatcher(fixedExtractor{"something"}, DefaultCatalog(), 1, zap.New(obsCore))

	res := d.Suggest(analysis("excited", "This is something new and exciting!"))
	if res.Status != StatusUnknownSentiment {
		t.Fatalf("status = %s", res.Status)
	}
	want := "Warning: Unknown sentiment 'excited'. No specific suggestions available."
	if len(res.Suggestions) != 1 || res.Suggestions[0] != want {
		t.Fatalf("suggestions = %q", res.Suggestions)
	}
	if logs.FilterMessage("Unknown sentiment label").Len() != 1 {
		t.Error("expected a warning log")
	}
}

func TestSuggestForTypedResult(t *testing.T) {
	t.Parallel()

	r := core.SentimentResult{Text: "great update", OverallSentiment: core.SentimentPositive}
	d := newDispatcher(t, "update")

	typed := d.SuggestFor(r)
	viaAny := d.Suggest(r)
	viaMap := d.Suggest(map[string]any{"text": r.Text, "overall_sentiment": string(r.OverallSentiment)})
	if typed.Status != StatusOK || viaAny.Suggestions[0] != typed.Suggestions[0] || viaMap.Suggestions[0] != typed.Suggestions[0] {
		t.Fatalf("typed %+v, any %+v, map %+v", typed, viaAny, viaMap)
	}
	if typed.OriginalAnalysis.(core.SentimentResult).Text != "great update" {
		t.Error("original analysis not preserved")
	}
}

func TestLoadCatalogOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "templates.yaml")
	doc := `
positive: {placeholder: aspect, fallback: it, templates: ["Yay {aspect}"]}
negative: {placeholder: topic, fallback: it, templates: ["Sorry about {topic}"]}
neutral: {placeholder: topic, fallback: it, templates: ["Hmm {topic}"]}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got := c[core.SentimentNegative].Render(""); got[0] != "Sorry about it" {
		t.Errorf("rendered %q", got)
	}

	if _, err := ParseCatalog([]byte("positive: {placeholder: a, templates: [x]}")); err == nil {
		t.Error("expected error for incomplete catalog")
	}
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
