package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/textguard/internal/adapters/web"
	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/factory"
	"github.com/mikey/textguard/internal/keywords"
	"github.com/mikey/textguard/internal/model"
	"github.com/mikey/textguard/internal/nlp"
	"github.com/mikey/textguard/internal/ports"
	"github.com/mikey/textguard/internal/suggest"
	"github.com/mikey/textguard/internal/utils"
	"github.com/mikey/textguard/internal/whitelist"
)

// BuildContainer creates the container of the spam classifier surfaces:
// the classifier service, the email filters and the web UI
func BuildContainer(cfg *config.Config, logger *zap.Logger) (*dig.Container, error) {
	container := dig.New()

	// Register configuration and logger
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *Closers { return &Closers{} }); err != nil {
		return nil, err
	}
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	// Register the fitted pipeline
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.Predictor, error) {
		dir := cfg.GetModel().Dir
		pipeline, err := model.Load(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load model from %s (run `textguard train` first): %w", dir, err)
		}
		logger.Info("Loaded model", zap.String("dir", dir), zap.Int("features", pipeline.Vectorizer.NumFeatures()))
		return pipeline, nil
	}); err != nil {
		return nil, err
	}

	// Register prediction cache, nil when disabled
	if err := container.Provide(func(f *factory.CacheFactory, closers *Closers) (core.PredictionCache, error) {
		if !f.IsCacheEnabled() {
			return nil, nil
		}
		c, err := f.CreateCache()
		if err != nil {
			return nil, err
		}
		closers.Add(closerFunc(func() error { c.Stop(); return nil }))
		return c, nil
	}); err != nil {
		return nil, err
	}

	// Register sender policy
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.SenderPolicy {
		return whitelist.NewChecker(cfg.GetSpam().WhitelistedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register classifier service
	if err := container.Provide(func(
		predictor core.Predictor,
		cache core.PredictionCache,
		logger *zap.Logger,
		tp *utils.TextProcessor,
		policy core.SenderPolicy,
		f *factory.CacheFactory,
	) *core.SpamClassifierService {
		return core.NewSpamClassifierService(predictor, cache, logger, tp, policy, f.IsCacheEnabled(), f.GetCacheTTL())
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.SpamClassifierService) ports.EmailAnalyzer { return s }); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	if err := provideSuggestions(container); err != nil {
		return nil, err
	}

	// Register web UI
	if err := container.Provide(func(
		cfg *config.Config,
		s *core.SpamClassifierService,
		d *suggest.Dispatcher,
		logger *zap.Logger,
	) (*web.Server, error) {
		return web.NewServer(s, d, cfg.GetWeb().ListenAddress, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideSuggestions registers the language toolkit, the keyword extractor
// and the suggestion dispatcher
func provideSuggestions(container *dig.Container) error {
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*nlp.Toolkit, error) {
		return nlp.Init(cfg.GetNLP(), logger)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(tk *nlp.Toolkit) core.KeywordExtractor {
		return keywords.NewExtractor(tk.Tokenizer, tk.Tagger, tk.Stopwords)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(cfg *config.Config) (suggest.Catalog, error) {
		if path := cfg.GetSuggestions().TemplatesFile; path != "" {
			return suggest.LoadCatalog(path)
		}
		return suggest.DefaultCatalog(), nil
	}); err != nil {
		return err
	}
	return container.Provide(func(
		extractor core.KeywordExtractor,
		catalog suggest.Catalog,
		cfg *config.Config,
		logger *zap.Logger,
	) *suggest.Dispatcher {
		return suggest.NewDispatcher(extractor, catalog, cfg.GetKeywords().Count, logger)
	})
}
