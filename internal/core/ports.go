package core

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by a PredictionCache when no live entry exists
var ErrCacheMiss = errors.New("cache entry not found")

// Predictor defines the fitted spam classifier
type Predictor interface {
	// Predict classifies a single message without refitting anything
	Predict(text string) (Prediction, error)
}

// PredictionCache defines the interface for caching predictions
type PredictionCache interface {
	// Get retrieves a live entry, or ErrCacheMiss
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// SentimentScorer defines a source of polarity scores
type SentimentScorer interface {
	Score(ctx context.Context, text string) (PolarityScores, error)
}

// PostFetcher defines a source of social posts. Implementations log failures
// and return an empty slice instead of an error.
type PostFetcher interface {
	FetchPosts(ctx context.Context, query PostQuery) []string
}

// KeywordExtractor picks the most representative words of a text
type KeywordExtractor interface {
	Extract(text string, n int) []string
}

// SenderPolicy decides whether a sender skips classification
type SenderPolicy interface {
	IsWhitelisted(from string) bool
}
