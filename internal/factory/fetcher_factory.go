package factory

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mikey/textguard/internal/adapters/feed"
	"github.com/mikey/textguard/internal/adapters/twitter"
	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/core"
	"go.uber.org/zap"
)

// ErrNoSource is returned when social.source is "none"
var ErrNoSource = errors.New("no post source configured")

// FetcherFactory creates post fetchers
type FetcherFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFetcherFactory creates a new fetcher factory
func NewFetcherFactory(cfg *config.Config, logger *zap.Logger) *FetcherFactory {
	return &FetcherFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateFetcher creates the fetcher named by social.source
func (f *FetcherFactory) CreateFetcher(ctx context.Context) (core.PostFetcher, error) {
	socialCfg := f.cfg.GetSocial()

	switch socialCfg.Source {
	case "twitter":
		client, err := twitter.NewClient(ctx, f.cfg.GetTwitter(), f.logger,
			twitter.WithHTTPClient(&http.Client{Timeout: socialCfg.Timeout}))
		if err != nil {
			return nil, err
		}
		return client, nil
	case "feed":
		urls := f.cfg.GetFeed().URLs
		if len(urls) == 0 {
			return nil, errors.New("feed source selected but feed.urls is empty")
		}
		return feed.NewFetcher(urls, socialCfg.Timeout, f.logger), nil
	case "none", "":
		return nil, ErrNoSource
	default:
		return nil, fmt.Errorf("unsupported post source: %s", socialCfg.Source)
	}
}

// SourceName is the plural noun shown in fetch prompts
func (f *FetcherFactory) SourceName() string {
	if f.cfg.GetSocial().Source == "twitter" {
		return "tweets"
	}
	return "posts"
}
