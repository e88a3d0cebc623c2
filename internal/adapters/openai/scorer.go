package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/sentiment"
	"github.com/mikey/textguard/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Scorer is an implementation of the SentimentScorer interface using OpenAI
type Scorer struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewScorer creates a new OpenAI scorer
func NewScorer(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Scorer {
	return &Scorer{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Score asks the chat model for polarity scores
func (s *Scorer) Score(ctx context.Context, text string) (core.PolarityScores, error) {
	prompt := sentiment.BuildLLMPrompt(s.textProcessor.ProcessText(text, s.maxBodySize))

	req := openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: sentiment.LLMSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		TopP:        s.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return core.PolarityScores{}, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.PolarityScores{}, errors.New("empty response from OpenAI")
	}

	scores, err := sentiment.ParseLLMScores(resp.Choices[0].Message.Content)
	if err != nil {
		return core.PolarityScores{}, err
	}
	s.logger.Debug("OpenAI sentiment scored",
		zap.String("model", s.modelName),
		zap.String("response_id", resp.ID),
		zap.Float64("compound", scores.Compound))
	return scores, nil
}
