// Package model ties the vectorizer and classifier into a trainable,
// persistable spam predictor.
package model

import (
	"errors"
	"fmt"

	"github.com/mikey/textguard/internal/classifier"
	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/vectorizer"
)

// Pipeline is a fitted vectorizer paired with the classifier trained on its output
type Pipeline struct {
	Vectorizer *vectorizer.TfidfVectorizer
	Classifier *classifier.LogisticRegression
}

// NewPipeline checks that both halves are fitted and share a feature space
func NewPipeline(v *vectorizer.TfidfVectorizer, c *classifier.LogisticRegression) (*Pipeline, error) {
	if v == nil || c == nil {
		return nil, errors.New("pipeline needs a vectorizer and a classifier")
	}
	if !v.Fitted() || !c.Fitted() {
		return nil, errors.New("pipeline components must be fitted")
	}
	if v.NumFeatures() != c.NumFeatures() {
		return nil, fmt.Errorf("vectorizer has %d features but classifier expects %d", v.NumFeatures(), c.NumFeatures())
	}
	return &Pipeline{Vectorizer: v, Classifier: c}, nil
}

// Predict classifies one message using the fitted vocabulary unchanged
func (p *Pipeline) Predict(text string) (core.Prediction, error) {
	x, err := p.Vectorizer.TransformOne(text)
	if err != nil {
		return core.Prediction{}, fmt.Errorf("failed to vectorize message: %w", err)
	}
	prob, err := p.Classifier.PredictProbability(x)
	if err != nil {
		return core.Prediction{}, fmt.Errorf("failed to score message: %w", err)
	}
	label, err := p.Classifier.Predict(x)
	if err != nil {
		return core.Prediction{}, fmt.Errorf("failed to score message: %w", err)
	}
	return core.Prediction{
		Label:       core.Label(label),
		IsSpam:      label == int(core.LabelSpam),
		Probability: prob,
	}, nil
}

// PredictLabels classifies a batch, returning 0/1 labels
func (p *Pipeline) PredictLabels(texts []string) ([]int, error) {
	X, err := p.Vectorizer.Transform(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to vectorize messages: %w", err)
	}
	return p.Classifier.PredictBatch(X)
}

var _ core.Predictor = (*Pipeline)(nil)
