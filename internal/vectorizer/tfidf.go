// Package vectorizer turns raw messages into L2-normalised TF-IDF vectors.
//
// Fit learns a vocabulary and inverse document frequencies from training
// text only. Transform reuses that state unchanged, so vectors for test or
// unseen messages live in exactly the same feature space.
package vectorizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// ErrNotFitted is returned when Transform runs before Fit
var ErrNotFitted = errors.New("vectorizer is not fitted")

// Options configures tokenisation and vocabulary selection
type Options struct {
	Lowercase bool `json:"lowercase"`
	// StopWords is "english" or empty for none.
	StopWords string `json:"stop_words"`
	// MaxFeatures keeps the K most frequent terms; 0 keeps all.
	MaxFeatures int `json:"max_features"`
	NgramMin    int `json:"ngram_min"`
	NgramMax    int `json:"ngram_max"`
	MinDF       int `json:"min_df"`
}

// DefaultOptions returns unigram+bigram settings capped at 5000 features
func DefaultOptions() Options {
	return Options{
		Lowercase:   true,
		StopWords:   "english",
		MaxFeatures: 5000,
		NgramMin:    1,
		NgramMax:    2,
		MinDF:       1,
	}
}

func (o Options) normalized() (Options, error) {
	if o.NgramMin <= 0 {
		o.NgramMin = 1
	}
	if o.NgramMax < o.NgramMin {
		o.NgramMax = o.NgramMin
	}
	if o.MinDF <= 0 {
		o.MinDF = 1
	}
	if o.MaxFeatures < 0 {
		return o, fmt.Errorf("max features must not be negative: %d", o.MaxFeatures)
	}
	switch o.StopWords {
	case "", "english":
	default:
		return o, fmt.Errorf("unsupported stop word list: %s", o.StopWords)
	}
	return o, nil
}

// TfidfVectorizer is a fit-once, transform-many text vectorizer
type TfidfVectorizer struct {
	opts       Options
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// New creates an unfitted vectorizer
func New(opts Options) (*TfidfVectorizer, error) {
	normalized, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	return &TfidfVectorizer{opts: normalized}, nil
}

// Options returns the effective options
func (v *TfidfVectorizer) Options() Options {
	return v.opts
}

// Fitted reports whether Fit has completed
func (v *TfidfVectorizer) Fitted() bool {
	return v.vocabulary != nil
}

// NumFeatures returns the vocabulary size
func (v *TfidfVectorizer) NumFeatures() int {
	return len(v.terms)
}

// Vocabulary returns a copy of the terms in feature-index order
func (v *TfidfVectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// Fit learns the vocabulary and idf weights from docs
func (v *TfidfVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.New("cannot fit vectorizer on an empty corpus")
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range v.Analyze(doc) {
			termFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	candidates := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df >= v.opts.MinDF {
			candidates = append(candidates, term)
		}
	}
	if len(candidates) == 0 {
		return errors.New("empty vocabulary: documents contain only stop words")
	}

	if v.opts.MaxFeatures > 0 && len(candidates) > v.opts.MaxFeatures {
		sort.Slice(candidates, func(i, j int) bool {
			fi, fj := termFreq[candidates[i]], termFreq[candidates[j]]
			if fi != fj {
				return fi > fj
			}
			return candidates[i] < candidates[j]
		})
		candidates = candidates[:v.opts.MaxFeatures]
	}
	sort.Strings(candidates)

	n := float64(len(docs))
	vocabulary := make(map[string]int, len(candidates))
	idf := make([]float64, len(candidates))
	for i, term := range candidates {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	v.vocabulary = vocabulary
	v.terms = candidates
	v.idf = idf
	return nil
}

// Transform maps docs into the fitted feature space
func (v *TfidfVectorizer) Transform(docs []string) ([]SparseVector, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]SparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.transformOne(doc)
	}
	return out, nil
}

// TransformOne maps a single doc into the fitted feature space
func (v *TfidfVectorizer) TransformOne(doc string) (SparseVector, error) {
	if !v.Fitted() {
		return SparseVector{}, ErrNotFitted
	}
	return v.transformOne(doc), nil
}

// FitTransform fits on docs and returns their vectors
func (v *TfidfVectorizer) FitTransform(docs []string) ([]SparseVector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

func (v *TfidfVectorizer) transformOne(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range v.Analyze(doc) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := counts[idx] * v.idf[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// Analyze returns the terms of doc: tokens of two or more word characters,
// stop words removed, expanded to the configured n-gram range.
func (v *TfidfVectorizer) Analyze(doc string) []string {
	if v.opts.Lowercase {
		doc = strings.ToLower(doc)
	}

	tokens := Tokenize(doc)
	if v.opts.StopWords == "english" {
		kept := tokens[:0]
		for _, tok := range tokens {
			if !IsStopWord(tok) {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	if v.opts.NgramMin == 1 && v.opts.NgramMax == 1 {
		return tokens
	}

	var terms []string
	for n := v.opts.NgramMin; n <= v.opts.NgramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Tokenize splits text into runs of letters, digits and underscores that
// are at least two runes long
func Tokenize(text string) []string {
	var tokens []string
	start, runes := -1, 0
	flush := func(end int) {
		if start >= 0 && runes >= 2 {
			tokens = append(tokens, text[start:end])
		}
		start, runes = -1, 0
	}
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(text))
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
