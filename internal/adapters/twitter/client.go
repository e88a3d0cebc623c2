// Package twitter fetches posts from the Twitter search API.
package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gotwitter "github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"
	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrMissingCredentials is returned when any of the four secrets is unset
	ErrMissingCredentials = errors.New("twitter API credentials not fully configured")
	// ErrAuthenticationFailed is returned when the credentials are rejected
	ErrAuthenticationFailed = errors.New("twitter authentication failed")
)

// maxSearchCount is the page size limit of the standard search endpoint
const maxSearchCount = 100

// Client fetches recent tweets through the v1.1 search API
type Client struct {
	api    *gotwitter.Client
	logger *zap.Logger
}

// Option customises client construction
type Option func(*options)

type options struct {
	base *http.Client
}

// WithHTTPClient sets the transport that signed requests are sent over
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.base = c }
}

// NewClient signs requests with OAuth1 user credentials and verifies them
// before returning
func NewClient(ctx context.Context, cfg config.TwitterConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	if missing := missingCredentials(cfg); len(missing) > 0 {
		return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, o.base)
	}

	oauthConfig := oauth1.NewConfig(cfg.APIKey, cfg.APISecretKey)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)
	api := gotwitter.NewClient(oauthConfig.Client(ctx, token))

	user, _, err := api.Accounts.VerifyCredentials(&gotwitter.AccountVerifyParams{
		IncludeEntities: gotwitter.Bool(false),
		SkipStatus:      gotwitter.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	logger.Info("Twitter client authenticated", zap.String("screen_name", user.ScreenName))
	return &Client{api: api, logger: logger}, nil
}

func missingCredentials(cfg config.TwitterConfig) []string {
	var missing []string
	for _, c := range []struct{ name, value string }{
		{"TWITTER_API_KEY", cfg.APIKey},
		{"TWITTER_API_SECRET_KEY", cfg.APISecretKey},
		{"TWITTER_ACCESS_TOKEN", cfg.AccessToken},
		{"TWITTER_ACCESS_TOKEN_SECRET", cfg.AccessTokenSecret},
	} {
		if c.value == "" {
			missing = append(missing, c.name)
		}
	}
	return missing
}

// FetchPosts returns tweet texts for q. Failures are logged and yield an
// empty slice.
func (c *Client) FetchPosts(ctx context.Context, q core.PostQuery) []string {
	texts := []string{}
	if err := ctx.Err(); err != nil {
		return texts
	}

	count := q.Count
	switch {
	case count <= 0:
		count = core.DefaultPostCount
	case count > maxSearchCount:
		count = maxSearchCount
	}
	lang := q.Lang
	if lang == "" {
		lang = "en"
	}
	extended := q.Mode == "" || q.Mode == "extended"

	params := &gotwitter.SearchTweetParams{
		Query: q.Query,
		Lang:  lang,
		Count: count,
	}
	if extended {
		params.TweetMode = "extended"
	}

	search, _, err := c.api.Search.Tweets(params)
	if err != nil {
		c.logger.Error("Failed to fetch tweets",
			zap.String("query", q.Query),
			zap.Error(err))
		return texts
	}

	for _, tweet := range search.Statuses {
		text := tweet.Text
		if extended && tweet.FullText != "" {
			text = tweet.FullText
		}
		if text != "" {
			texts = append(texts, text)
		}
	}

	c.logger.Info("Fetched tweets", zap.String("query", q.Query), zap.Int("count", len(texts)))
	return texts
}

var _ core.PostFetcher = (*Client)(nil)
