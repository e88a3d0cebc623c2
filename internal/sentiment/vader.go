package sentiment

import (
	"context"

	"github.com/jonreiter/govader"
	"github.com/mikey/textguard/internal/core"
)

// VaderScorer scores text with the VADER lexicon
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer wraps an initialised analyzer
func NewVaderScorer(analyzer *govader.SentimentIntensityAnalyzer) *VaderScorer {
	return &VaderScorer{analyzer: analyzer}
}

// Score implements core.SentimentScorer
func (s *VaderScorer) Score(_ context.Context, text string) (core.PolarityScores, error) {
	scores := s.analyzer.PolarityScores(text)
	return core.PolarityScores{
		Compound: scores.Compound,
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
	}, nil
}
