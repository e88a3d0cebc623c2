package vectorizer

import "fmt"

// SparseVector holds the non-zero entries of a feature vector, indices ascending
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product with a dense weight vector
func (s SparseVector) Dot(w []float64) float64 {
	var sum float64
	for i, idx := range s.Indices {
		sum += s.Values[i] * w[idx]
	}
	return sum
}

// State is the serialisable form of a fitted vectorizer
type State struct {
	Version int       `json:"version"`
	Options Options   `json:"options"`
	Terms   []string  `json:"terms"`
	IDF     []float64 `json:"idf"`
}

// StateVersion is bumped whenever State changes incompatibly
const StateVersion = 1

// State exports the fitted vocabulary and weights
func (v *TfidfVectorizer) State() (State, error) {
	if !v.Fitted() {
		return State{}, ErrNotFitted
	}
	return State{
		Version: StateVersion,
		Options: v.opts,
		Terms:   v.Vocabulary(),
		IDF:     append([]float64(nil), v.idf...),
	}, nil
}

// FromState rebuilds a fitted vectorizer
func FromState(s State) (*TfidfVectorizer, error) {
	if s.Version != StateVersion {
		return nil, fmt.Errorf("unsupported vectorizer state version %d", s.Version)
	}
	if len(s.Terms) == 0 || len(s.Terms) != len(s.IDF) {
		return nil, fmt.Errorf("corrupt vectorizer state: %d terms, %d weights", len(s.Terms), len(s.IDF))
	}

	v, err := New(s.Options)
	if err != nil {
		return nil, err
	}
	v.terms = append([]string(nil), s.Terms...)
	v.idf = append([]float64(nil), s.IDF...)
	v.vocabulary = make(map[string]int, len(v.terms))
	for i, term := range v.terms {
		if _, dup := v.vocabulary[term]; dup {
			return nil, fmt.Errorf("corrupt vectorizer state: duplicate term %q", term)
		}
		v.vocabulary[term] = i
	}
	return v, nil
}
