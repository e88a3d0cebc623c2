package classifier

import "fmt"

// StateVersion is bumped whenever State changes incompatibly
const StateVersion = 1

// State is the serialisable form of a fitted model
type State struct {
	Version   int       `json:"version"`
	Options   Options   `json:"options"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// NumFeatures returns the model dimension, zero when unfitted
func (m *LogisticRegression) NumFeatures() int {
	return len(m.weights)
}

// State exports the learned coefficients
func (m *LogisticRegression) State() (State, error) {
	if !m.Fitted() {
		return State{}, ErrNotFitted
	}
	return State{
		Version:   StateVersion,
		Options:   m.opts,
		Weights:   append([]float64(nil), m.weights...),
		Intercept: m.intercept,
	}, nil
}

// FromState rebuilds a fitted model
func FromState(s State) (*LogisticRegression, error) {
	if s.Version != StateVersion {
		return nil, fmt.Errorf("unsupported classifier state version %d", s.Version)
	}
	if len(s.Weights) == 0 {
		return nil, fmt.Errorf("corrupt classifier state: no weights")
	}
	m, err := New(s.Options)
	if err != nil {
		return nil, err
	}
	m.weights = append([]float64(nil), s.Weights...)
	m.intercept = s.Intercept
	return m, nil
}
