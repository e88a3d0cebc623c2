package keywords

import (
	"reflect"
	"strings"
	"testing"
)

type splitTokenizer struct{}

func (splitTokenizer) Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return r == ' ' })
}

// mapTagger tags known words and leaves the rest as JJ
type mapTagger map[string]string

func (m mapTagger) Tag(tokens []string) []string {
	tags := make([]string, len(tokens))
	for i, tok := range tokens {
		if tag, ok := m[tok]; ok {
			tags[i] = tag
		} else {
			tags[i] = "JJ"
		}
	}
	return tags
}

type stopSet map[string]bool

func (s stopSet) Contains(w string) bool { return s[w] }

var testStops = stopSet{"is": true, "a": true, "the": true, "it": true, "what": true}

func TestExtractPrefersNouns(t *testing.T) {
	t.Parallel()

	tagger := mapTagger{"data": "NN", "breach": "NN", "disaster": "NN", "user": "NN", "trust": "NN"}
	e := NewExtractor(splitTokenizer{}, tagger, testStops)

	got := e.Extract("The recent data breach is a terrible disaster for user trust .", 1)
	if !reflect.DeepEqual(got, []string{"data"}) {
		t.Fatalf("Extract = %q, want [data]", got)
	}
}

func TestExtractCountsFrequency(t *testing.T) {
	t.Parallel()

	tagger := mapTagger{"company": "NN", "earnings": "NNS", "week": "NN"}
	e := NewExtractor(splitTokenizer{}, tagger, testStops)

	got := e.Extract("company earnings week earnings company earnings", 2)
	if !reflect.DeepEqual(got, []string{"earnings", "company"}) {
		t.Fatalf("Extract = %q", got)
	}
}

func TestExtractFallsBackToTokens(t *testing.T) {
	t.Parallel()

	e := NewExtractor(splitTokenizer{}, mapTagger{}, testStops)
	got := e.Extract("shiny shiny bright", 1)
	if !reflect.DeepEqual(got, []string{"shiny"}) {
		t.Fatalf("Extract = %q, want [shiny]", got)
	}
}

func TestExtractEmpty(t *testing.T) {
	t.Parallel()

	e := NewExtractor(splitTokenizer{}, mapTagger{}, testStops)
	for _, text := range []string{"", "It is what it is .", "!!! ... ok"} {
		got := e.Extract(text, 1)
		if got == nil || len(got) != 0 {
			t.Errorf("Extract(%q) = %#v, want empty slice", text, got)
		}
	}
	if got := e.Extract("battery", 0); len(got) != 0 {
		t.Errorf("n=0 gave %q", got)
	}
}

func TestExtractLowercases(t *testing.T) {
	t.Parallel()

	e := NewExtractor(splitTokenizer{}, mapTagger{"battery": "NN"}, testStops)
	if got := e.Extract("BATTERY Battery", 1); !reflect.DeepEqual(got, []string{"battery"}) {
		t.Fatalf("Extract = %q", got)
	}
}

func TestMostCommonTieOrder(t *testing.T) {
	t.Parallel()

	got := mostCommon([]string{"b", "a", "c", "a", "b"}, 3)
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("mostCommon = %q", got)
	}
}
