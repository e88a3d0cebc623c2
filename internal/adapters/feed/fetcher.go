// Package feed serves posts from RSS and Atom feeds as an alternative to
// the Twitter search API.
package feed

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abadojack/whatlanggo"
	"github.com/mikey/textguard/internal/core"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// compatLength is the classic short post length
const compatLength = 140

// Fetcher matches feed items against a query
type Fetcher struct {
	parser  *gofeed.Parser
	urls    []string
	timeout time.Duration
	logger  *zap.Logger
}

// NewFetcher creates a fetcher over urls. A zero timeout means none.
func NewFetcher(urls []string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		parser:  gofeed.NewParser(),
		urls:    urls,
		timeout: timeout,
		logger:  logger,
	}
}

// FetchPosts returns up to q.Count (default core.DefaultPostCount) item texts
// containing q.Query in the requested language. Feeds that fail are logged
// and skipped.
func (f *Fetcher) FetchPosts(ctx context.Context, q core.PostQuery) []string {
	posts := []string{}
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	count := q.Count
	if count <= 0 {
		count = core.DefaultPostCount
	}

	for _, url := range f.urls {
		if len(posts) >= count {
			break
		}
		items, err := f.fetch(ctx, url)
		if err != nil {
			f.logger.Error("Failed to fetch feed", zap.String("url", url), zap.Error(err))
			continue
		}
		for _, item := range items {
			if len(posts) >= count {
				break
			}
			text := itemText(item)
			if text == "" || !strings.Contains(strings.ToLower(text), needle) {
				continue
			}
			if !languageMatches(text, q.Lang) {
				continue
			}
			if q.Mode == "compat" {
				text = truncate(text, compatLength)
			}
			posts = append(posts, text)
		}
	}

	f.logger.Info("Fetched feed posts", zap.String("query", q.Query), zap.Int("count", len(posts)))
	return posts
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]*gofeed.Item, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, err
	}
	return parsed.Items, nil
}

// itemText joins the title and the plain-text body of an item
func itemText(item *gofeed.Item) string {
	body := item.Description
	if body == "" {
		body = item.Content
	}
	parts := make([]string, 0, 2)
	if t := strings.TrimSpace(item.Title); t != "" {
		parts = append(parts, t)
	}
	if b := StripHTML(body); b != "" {
		parts = append(parts, b)
	}
	return strings.Join(parts, ". ")
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// languageMatches accepts text whose detected language is lang. Unreliable
// detections are accepted.
func languageMatches(text, lang string) bool {
	if lang == "" {
		return true
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return true
	}
	return info.Lang.Iso6391() == lang
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

var _ core.PostFetcher = (*Fetcher)(nil)
