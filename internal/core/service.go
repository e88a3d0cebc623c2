package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/textguard/internal/utils"
	"go.uber.org/zap"
)

// ModelName identifies results produced by the local classifier
const ModelName = "tfidf-logreg"

// SpamClassifierService is the core service for spam detection
type SpamClassifierService struct {
	predictor     Predictor
	cache         PredictionCache
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	senderPolicy  SenderPolicy
	cacheEnabled  bool
	cacheTTL      time.Duration
	now           func() time.Time
}

// NewSpamClassifierService creates a new spam classifier service. cache and
// senderPolicy may be nil.
func NewSpamClassifierService(
	predictor Predictor,
	cache PredictionCache,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	senderPolicy SenderPolicy,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *SpamClassifierService {
	return &SpamClassifierService{
		predictor:     predictor,
		cache:         cache,
		logger:        logger,
		textProcessor: textProcessor,
		senderPolicy:  senderPolicy,
		cacheEnabled:  cacheEnabled && cache != nil,
		cacheTTL:      cacheTTL,
		now:           time.Now,
	}
}

// CacheKey returns the digest under which a prepared message is cached
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Classify predicts whether a single message is spam
func (s *SpamClassifierService) Classify(ctx context.Context, text string) (*ClassificationResult, error) {
	prepared := s.textProcessor.PrepareMessage(text)
	key := CacheKey(prepared)

	if s.cacheEnabled {
		entry, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.logger.Debug("Cache hit for message", zap.String("key", key))
			return s.newResult(Prediction{
				Label:       labelFor(entry.IsSpam),
				IsSpam:      entry.IsSpam,
				Probability: entry.Probability,
			}, "Result from cache", true), nil
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warn("Failed to read prediction cache", zap.Error(err))
		}
	}

	prediction, err := s.predictor.Predict(prepared)
	if err != nil {
		return nil, fmt.Errorf("failed to classify message: %w", err)
	}

	if s.cacheEnabled {
		now := s.now()
		entry := &CacheEntry{
			Key:         key,
			IsSpam:      prediction.IsSpam,
			Probability: prediction.Probability,
			CreatedAt:   now,
			ExpiresAt:   now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return s.newResult(prediction, explain(prediction), false), nil
}

// AnalyzeEmail classifies the subject and body of an email, skipping
// whitelisted senders
func (s *SpamClassifierService) AnalyzeEmail(ctx context.Context, email *Email) (*ClassificationResult, error) {
	if s.senderPolicy != nil && s.senderPolicy.IsWhitelisted(email.From) {
		s.logger.Info("Skipping spam check for whitelisted domain",
			zap.String("sender", email.From),
			zap.String("action", "whitelist_bypass"))

		result := s.newResult(Prediction{Label: LabelHam}, "Sender domain is whitelisted", false)
		result.ModelUsed = "whitelist"
		return result, nil
	}

	text := strings.TrimSpace(email.Subject + "\n" + email.Body)
	return s.Classify(ctx, text)
}

func (s *SpamClassifierService) newResult(p Prediction, explanation string, cached bool) *ClassificationResult {
	return &ClassificationResult{
		Prediction:   p,
		Explanation:  explanation,
		ModelUsed:    ModelName,
		Cached:       cached,
		AnalyzedAt:   s.now(),
		ProcessingID: uuid.NewString(),
	}
}

func labelFor(isSpam bool) Label {
	if isSpam {
		return LabelSpam
	}
	return LabelHam
}

func explain(p Prediction) string {
	return fmt.Sprintf("Classified as %s with spam probability %.2f%%", p.Label, p.Probability*100)
}
