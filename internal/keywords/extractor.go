// Package keywords picks the most frequent nouns of a short text.
package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mikey/textguard/internal/core"
)

// Tokenizer splits text into tokens
type Tokenizer interface {
	Tokenize(text string) []string
}

// Tagger returns one part-of-speech tag per token
type Tagger interface {
	Tag(tokens []string) []string
}

// StopList reports whether a token carries no topical meaning
type StopList interface {
	Contains(word string) bool
}

// Extractor implements core.KeywordExtractor
type Extractor struct {
	tokenizer Tokenizer
	tagger    Tagger
	stopwords StopList
}

// NewExtractor creates an extractor from its language resources
func NewExtractor(tokenizer Tokenizer, tagger Tagger, stopwords StopList) *Extractor {
	return &Extractor{tokenizer: tokenizer, tagger: tagger, stopwords: stopwords}
}

// Extract returns up to n keywords. Nouns win; without nouns the most
// frequent remaining tokens are used. Ties keep first-occurrence order.
func (e *Extractor) Extract(text string, n int) []string {
	if text == "" || n <= 0 {
		return []string{}
	}

	tokens := e.filter(e.tokenizer.Tokenize(strings.ToLower(text)))
	if len(tokens) == 0 {
		return []string{}
	}

	tags := e.tagger.Tag(tokens)
	var nouns []string
	for i, tok := range tokens {
		if i < len(tags) && strings.HasPrefix(tags[i], "NN") {
			nouns = append(nouns, tok)
		}
	}
	if len(nouns) > 0 {
		return mostCommon(nouns, n)
	}
	return mostCommon(tokens, n)
}

func (e *Extractor) filter(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 2 || isPunctuation(tok) || e.stopwords.Contains(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}

func isPunctuation(tok string) bool {
	for _, r := range tok {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// mostCommon returns the n most frequent words, ordering ties by first appearance
func mostCommon(words []string, n int) []string {
	counts := make(map[string]int, len(words))
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	out := make([]string, 0, n)
	used := make(map[string]bool, n)
	for len(out) < n && len(out) < len(order) {
		best := ""
		for _, w := range order {
			if used[w] {
				continue
			}
			if best == "" || counts[w] > counts[best] {
				best = w
			}
		}
		used[best] = true
		out = append(out, best)
	}
	return out
}

var _ core.KeywordExtractor = (*Extractor)(nil)
