package nlp

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseTokenizer splits text into word and punctuation tokens
type ProseTokenizer struct{}

// Tokenize returns the tokens of text, or nil when it cannot be parsed
func (ProseTokenizer) Tokenize(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil
	}
	tokens := doc.Tokens()
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Text)
	}
	return out
}

// ProseTagger assigns Penn Treebank part-of-speech tags
type ProseTagger struct{}

// Tag returns one tag per input token. Tokens the tagger splits or merges
// fall back to the tag of the matching text, or the empty string.
func (ProseTagger) Tag(tokens []string) []string {
	tags := make([]string, len(tokens))
	if len(tokens) == 0 {
		return tags
	}

	doc, err := prose.NewDocument(strings.Join(tokens, " "),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return tags
	}
	tagged := doc.Tokens()

	if len(tagged) == len(tokens) {
		for i, tok := range tagged {
			tags[i] = tok.Tag
		}
		return tags
	}

	byText := make(map[string]string, len(tagged))
	for _, tok := range tagged {
		if _, seen := byText[tok.Text]; !seen {
			byText[tok.Text] = tok.Tag
		}
	}
	for i, tok := range tokens {
		tags[i] = byText[tok]
	}
	return tags
}
