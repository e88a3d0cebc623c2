package model

import (
	"errors"
	"fmt"
)

// Confusion counts outcomes with spam as the positive class
type Confusion struct {
	TruePositive  int `json:"true_positive"`
	FalsePositive int `json:"false_positive"`
	TrueNegative  int `json:"true_negative"`
	FalseNegative int `json:"false_negative"`
}

// Metrics summarises predictions against ground truth
type Metrics struct {
	Samples   int       `json:"samples"`
	Accuracy  float64   `json:"accuracy"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	Confusion Confusion `json:"confusion"`
}

// Evaluation holds metrics for both sides of a split
type Evaluation struct {
	Train Metrics `json:"train"`
	Test  Metrics `json:"test"`
}

// Accuracy returns the fraction of positions where pred equals truth
func Accuracy(pred, truth []int) (float64, error) {
	if len(pred) != len(truth) {
		return 0, fmt.Errorf("prediction count %d does not match label count %d", len(pred), len(truth))
	}
	if len(pred) == 0 {
		return 0, errors.New("cannot compute accuracy of an empty set")
	}
	correct := 0
	for i := range pred {
		if pred[i] == truth[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(pred)), nil
}

// Score computes accuracy, precision, recall and the confusion counts.
// Precision and recall are zero when their denominators are.
func Score(pred, truth []int) (Metrics, error) {
	acc, err := Accuracy(pred, truth)
	if err != nil {
		return Metrics{}, err
	}

	var c Confusion
	for i := range pred {
		switch {
		case pred[i] == 1 && truth[i] == 1:
			c.TruePositive++
		case pred[i] == 1:
			c.FalsePositive++
		case truth[i] == 1:
			c.FalseNegative++
		default:
			c.TrueNegative++
		}
	}

	m := Metrics{Samples: len(pred), Accuracy: acc, Confusion: c}
	if d := c.TruePositive + c.FalsePositive; d > 0 {
		m.Precision = float64(c.TruePositive) / float64(d)
	}
	if d := c.TruePositive + c.FalseNegative; d > 0 {
		m.Recall = float64(c.TruePositive) / float64(d)
	}
	return m, nil
}

// Evaluate scores the pipeline on the training and held-out texts
func Evaluate(p *Pipeline, trainTexts []string, trainLabels []int, testTexts []string, testLabels []int) (Evaluation, error) {
	var ev Evaluation

	pred, err := p.PredictLabels(trainTexts)
	if err != nil {
		return ev, err
	}
	if ev.Train, err = Score(pred, trainLabels); err != nil {
		return ev, fmt.Errorf("failed to score training set: %w", err)
	}

	pred, err = p.PredictLabels(testTexts)
	if err != nil {
		return ev, err
	}
	if ev.Test, err = Score(pred, testLabels); err != nil {
		return ev, fmt.Errorf("failed to score test set: %w", err)
	}
	return ev, nil
}
