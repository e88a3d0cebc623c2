package factory

import (
	"context"
	"fmt"
	"io"

	"github.com/mikey/textguard/internal/adapters/bedrock"
	"github.com/mikey/textguard/internal/adapters/gemini"
	"github.com/mikey/textguard/internal/adapters/openai"
	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/nlp"
	"github.com/mikey/textguard/internal/sentiment"
	"github.com/mikey/textguard/internal/utils"
	"go.uber.org/zap"
)

// ScorerFactory creates sentiment scorers
type ScorerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	toolkit       *nlp.Toolkit
}

// NewScorerFactory creates a new scorer factory
func NewScorerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor, toolkit *nlp.Toolkit) *ScorerFactory {
	return &ScorerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		toolkit:       toolkit,
	}
}

// CreateScorer creates the scorer named by sentiment.provider. The returned
// closer is nil unless the scorer holds a connection.
func (f *ScorerFactory) CreateScorer(ctx context.Context) (core.SentimentScorer, io.Closer, error) {
	provider := f.cfg.GetSentiment().Provider

	switch provider {
	case "", "vader":
		return sentiment.NewVaderScorer(f.toolkit.Vader), nil, nil
	case "openai":
		scorer, err := openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer()
		if err != nil {
			return nil, nil, err
		}
		return scorer, nil, nil
	case "gemini":
		scorer, err := gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer(ctx)
		if err != nil {
			return nil, nil, err
		}
		return scorer, scorer, nil
	case "bedrock":
		scorer, err := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer(ctx)
		if err != nil {
			return nil, nil, err
		}
		return scorer, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported sentiment provider: %s", provider)
	}
}
