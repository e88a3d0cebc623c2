package di

import (
	"context"
	"io"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/factory"
	"github.com/mikey/textguard/internal/logging"
	"github.com/mikey/textguard/internal/sentiment"
	"github.com/mikey/textguard/internal/social"
	"github.com/mikey/textguard/internal/suggest"
	"github.com/mikey/textguard/internal/utils"
)

// SocialFlags contains the command line flags of the social assistant.
// Zero values keep the configured setting.
type SocialFlags struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool
	TestInputs []string
	Provider   string
	Source     string
	Keywords   int
	Out        io.Writer
}

// BuildSocialContainer creates the container of the social media assistant
func BuildSocialContainer(flags *SocialFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *SocialFlags { return flags }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *Closers { return &Closers{} }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *SocialFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration with the flag overrides applied
	if err := container.Provide(func(flags *SocialFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		v := cfg.GetViper()
		if flags.Provider != "" {
			v.Set("sentiment.provider", flags.Provider)
		}
		if flags.Source != "" {
			v.Set("social.source", flags.Source)
		}
		if flags.Keywords > 0 {
			v.Set("keywords.count", flags.Keywords)
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}
	if err := provideSuggestions(container); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewScorerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFetcherFactory); err != nil {
		return nil, err
	}

	// Register sentiment scorer and analyzer
	if err := container.Provide(func(f *factory.ScorerFactory, closers *Closers) (core.SentimentScorer, error) {
		scorer, closer, err := f.CreateScorer(context.Background())
		if err != nil {
			return nil, err
		}
		closers.Add(closer)
		return scorer, nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(scorer core.SentimentScorer, cfg *config.Config, logger *zap.Logger) (*sentiment.Analyzer, error) {
		return sentiment.NewAnalyzer(scorer, sentiment.ThresholdsFromConfig(cfg.GetSentiment()), logger)
	}); err != nil {
		return nil, err
	}

	// Register post fetcher. A source that cannot be built disables
	// fetching instead of failing the assistant.
	if err := container.Provide(func(f *factory.FetcherFactory, logger *zap.Logger) core.PostFetcher {
		fetcher, err := f.CreateFetcher(context.Background())
		if err != nil {
			logger.Warn("Fetching posts is disabled", zap.Error(err))
			return nil
		}
		return fetcher
	}); err != nil {
		return nil, err
	}

	// Register the assistant
	if err := container.Provide(func(
		analyzer *sentiment.Analyzer,
		dispatcher *suggest.Dispatcher,
		fetcher core.PostFetcher,
		ff *factory.FetcherFactory,
		cfg *config.Config,
		flags *SocialFlags,
		logger *zap.Logger,
	) *social.App {
		socialCfg := cfg.GetSocial()
		out := flags.Out
		if out == nil {
			out = os.Stdout
		}
		return social.NewApp(analyzer, dispatcher, fetcher, social.Options{
			DefaultCount: socialCfg.DefaultCount,
			MaxCount:     socialCfg.MaxCount,
			Lang:         socialCfg.Lang,
			Mode:         socialCfg.Mode,
			SourceName:   ff.SourceName(),
		}, out, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
