package sentiment

import (
	"fmt"

	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/utils"
)

// LLMSystemPrompt is the system message sent to chat-style providers
const LLMSystemPrompt = "You are a sentiment analysis system. Respond only with JSON."

const llmPromptFormat = `You are a sentiment analysis system. Score the sentiment of the following social media post.
Respond with a JSON object containing:
- compound: number between -1 and 1 (overall polarity, negative to positive)
- positive: number between 0 and 1 (share of positive tone)
- negative: number between 0 and 1 (share of negative tone)
- neutral: number between 0 and 1 (share of neutral tone)

Post:
%s

Respond only with the JSON object and nothing else.`

// BuildLLMPrompt returns the scoring prompt for text
func BuildLLMPrompt(text string) string {
	return fmt.Sprintf(llmPromptFormat, text)
}

// ParseLLMScores decodes and range-checks a model reply
func ParseLLMScores(reply string) (core.PolarityScores, error) {
	var scores core.PolarityScores
	if err := utils.DecodeJSONResponse(reply, &scores); err != nil {
		return core.PolarityScores{}, err
	}
	if scores.Compound < -1 || scores.Compound > 1 {
		return core.PolarityScores{}, fmt.Errorf("compound score %v outside [-1, 1]", scores.Compound)
	}
	for name, v := range map[string]float64{
		"positive": scores.Positive,
		"negative": scores.Negative,
		"neutral":  scores.Neutral,
	} {
		if v < 0 || v > 1 {
			return core.PolarityScores{}, fmt.Errorf("%s score %v outside [0, 1]", name, v)
		}
	}
	return scores, nil
}
