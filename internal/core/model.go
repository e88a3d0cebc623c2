package core

import (
	"time"
)

// Label is the integer class of a message. Spam is the positive class.
type Label int

const (
	// LabelHam marks a legitimate message
	LabelHam Label = 0
	// LabelSpam marks an unwanted message
	LabelSpam Label = 1
)

// String returns the category name used in the corpus
func (l Label) String() string {
	if l == LabelSpam {
		return "spam"
	}
	return "ham"
}

// LabeledMessage is one row of the training corpus
type LabeledMessage struct {
	Text  string
	Label Label
}

// Prediction is the raw output of the fitted classifier for one message
type Prediction struct {
	Label       Label
	IsSpam      bool
	Probability float64
}

// ClassificationResult is a prediction decorated for the serving surfaces
type ClassificationResult struct {
	Prediction
	Explanation  string
	ModelUsed    string
	Cached       bool
	AnalyzedAt   time.Time
	ProcessingID string
}

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// CacheEntry is a stored prediction keyed by the digest of the message text
type CacheEntry struct {
	Key         string
	IsSpam      bool
	Probability float64
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Sentiment is the three-way polarity label
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// PolarityScores are the four scalar outputs of a sentiment scorer
type PolarityScores struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// SentimentResult is the analysed text with its scores and derived label
type SentimentResult struct {
	Text             string         `json:"text"`
	Scores           PolarityScores `json:"sentiment"`
	OverallSentiment Sentiment      `json:"overall_sentiment"`
}

// DefaultPostCount is the number of posts fetched when a query names none
const DefaultPostCount = 10

// PostQuery describes a request for social posts
type PostQuery struct {
	Query string
	Count int
	Lang  string
	// Mode is "extended" for full text or "compat" for the short form.
	Mode string
}
