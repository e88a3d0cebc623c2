package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/sentiment"
	"github.com/mikey/textguard/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Scorer is an implementation of the SentimentScorer interface using Google Gemini
type Scorer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewScorer creates a new Gemini scorer
func NewScorer(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	opts ...option.ClientOption,
) (*Scorer, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(sentiment.LLMSystemPrompt))

	return &Scorer{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (s *Scorer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Score asks Gemini for polarity scores
func (s *Scorer) Score(ctx context.Context, text string) (core.PolarityScores, error) {
	prompt := sentiment.BuildLLMPrompt(s.textProcessor.ProcessText(text, s.maxBodySize))

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return core.PolarityScores{}, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return core.PolarityScores{}, errors.New("empty response from Gemini")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			reply.WriteString(string(t))
		}
	}

	scores, err := sentiment.ParseLLMScores(reply.String())
	if err != nil {
		return core.PolarityScores{}, err
	}
	s.logger.Debug("Gemini sentiment scored",
		zap.String("model", s.modelName),
		zap.Float64("compound", scores.Compound))
	return scores, nil
}
