// Package suggest turns a sentiment analysis into canned response
// suggestions, filling templates with a keyword from the analysed text.
package suggest

import (
	"fmt"
	"reflect"

	"github.com/mikey/textguard/internal/core"
	"go.uber.org/zap"
)

// Status tags the outcome of a dispatch
type Status string

const (
	StatusOK               Status = "ok"
	StatusInvalidInput     Status = "invalid_input"
	StatusMissingKey       Status = "missing_key"
	StatusUnknownSentiment Status = "unknown_sentiment"
)

// Result is the dispatcher output. Suggestions is never empty: error
// paths carry a single message line.
type Result struct {
	Status           Status   `json:"status"`
	OriginalAnalysis any      `json:"original_analysis"`
	Suggestions      []string `json:"suggestions"`
	Keywords         []string `json:"keywords"`
}

// Dispatcher selects and renders templates for an analysis
type Dispatcher struct {
	extractor    core.KeywordExtractor
	catalog      Catalog
	keywordCount int
	logger       *zap.Logger
}

// NewDispatcher creates a dispatcher. keywordCount below one is raised to one.
func NewDispatcher(extractor core.KeywordExtractor, catalog Catalog, keywordCount int, logger *zap.Logger) *Dispatcher {
	if keywordCount < 1 {
		keywordCount = 1
	}
	return &Dispatcher{extractor: extractor, catalog: catalog, keywordCount: keywordCount, logger: logger}
}

// Suggest accepts a loosely typed analysis: any map with string keys, such
// as a decoded JSON object, or a core.SentimentResult. Keys are checked in
// order: overall_sentiment, text.
func (d *Dispatcher) Suggest(input any) Result {
	switch v := input.(type) {
	case core.SentimentResult:
		return d.SuggestFor(v)
	case *core.SentimentResult:
		if v == nil {
			return invalid(input)
		}
		return d.SuggestFor(*v)
	}

	fields, ok := stringKeyed(input)
	if !ok {
		return invalid(input)
	}
	label, ok := fields["overall_sentiment"]
	if !ok {
		return missing(input, "overall_sentiment")
	}
	text, ok := fields["text"]
	if !ok {
		return missing(input, "text")
	}
	return d.dispatch(input, labelString(label), stringify(text))
}

// stringKeyed copies any map whose key kind is string into a map[string]any
func stringKeyed(input any) (map[string]any, bool) {
	if m, ok := input.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(input)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	fields := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		fields[iter.Key().String()] = iter.Value().Interface()
	}
	return fields, true
}

// SuggestFor is the typed path for a result produced by the analyzer
func (d *Dispatcher) SuggestFor(r core.SentimentResult) Result {
	return d.dispatch(r, string(r.OverallSentiment), r.Text)
}

func (d *Dispatcher) dispatch(original any, label, text string) Result {
	keywords := d.extractor.Extract(text, d.keywordCount)
	keyword := ""
	if len(keywords) > 0 {
		keyword = keywords[0]
	}

	group, ok := d.catalog[core.Sentiment(label)]
	if !ok {
		d.logger.Warn("Unknown sentiment label", zap.String("label", label))
		return Result{
			Status:           StatusUnknownSentiment,
			OriginalAnalysis: original,
			Suggestions:      []string{fmt.Sprintf("Warning: Unknown sentiment '%s'. No specific suggestions available.", label)},
			Keywords:         keywords,
		}
	}

	return Result{
		Status:           StatusOK,
		OriginalAnalysis: original,
		Suggestions:      group.Render(keyword),
		Keywords:         keywords,
	}
}

func invalid(input any) Result {
	return Result{
		Status:           StatusInvalidInput,
		OriginalAnalysis: input,
		Suggestions:      []string{"Error: Input must be a dictionary."},
		Keywords:         []string{},
	}
}

func missing(input any, key string) Result {
	return Result{
		Status:           StatusMissingKey,
		OriginalAnalysis: input,
		Suggestions:      []string{fmt.Sprintf("Error: Input dictionary missing '%s' key.", key)},
		Keywords:         []string{},
	}
}

// labelString renders a null label the way the console always has, as None
func labelString(v any) string {
	if v == nil {
		return "None"
	}
	return stringify(v)
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
