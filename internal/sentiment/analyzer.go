// Package sentiment labels text as positive, negative or neutral from the
// compound score of a pluggable scorer.
package sentiment

import (
	"context"
	"fmt"

	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/core"
	"go.uber.org/zap"
)

// Thresholds bound the neutral band of the compound score
type Thresholds struct {
	Positive float64
	Negative float64
}

// DefaultThresholds returns the conventional ±0.05 band
func DefaultThresholds() Thresholds {
	return Thresholds{Positive: 0.05, Negative: -0.05}
}

// ThresholdsFromConfig reads the band from sentiment config
func ThresholdsFromConfig(cfg config.SentimentConfig) Thresholds {
	return Thresholds{Positive: cfg.PositiveThreshold, Negative: cfg.NegativeThreshold}
}

// Classify maps a compound score to a label; both bounds are inclusive
func (t Thresholds) Classify(compound float64) core.Sentiment {
	switch {
	case compound >= t.Positive:
		return core.SentimentPositive
	case compound <= t.Negative:
		return core.SentimentNegative
	default:
		return core.SentimentNeutral
	}
}

// Analyzer scores text and derives its overall sentiment
type Analyzer struct {
	scorer     core.SentimentScorer
	thresholds Thresholds
	logger     *zap.Logger
}

// NewAnalyzer creates an analyzer over scorer
func NewAnalyzer(scorer core.SentimentScorer, thresholds Thresholds, logger *zap.Logger) (*Analyzer, error) {
	if thresholds.Negative >= thresholds.Positive {
		return nil, fmt.Errorf("negative threshold %v must be below positive threshold %v",
			thresholds.Negative, thresholds.Positive)
	}
	return &Analyzer{scorer: scorer, thresholds: thresholds, logger: logger}, nil
}

// Analyze returns the scores and label of text
func (a *Analyzer) Analyze(ctx context.Context, text string) (core.SentimentResult, error) {
	scores, err := a.scorer.Score(ctx, text)
	if err != nil {
		return core.SentimentResult{}, fmt.Errorf("failed to score sentiment: %w", err)
	}

	result := core.SentimentResult{
		Text:             text,
		Scores:           scores,
		OverallSentiment: a.thresholds.Classify(scores.Compound),
	}
	a.logger.Debug("Sentiment analysed",
		zap.Float64("compound", scores.Compound),
		zap.String("overall", string(result.OverallSentiment)))
	return result, nil
}
