package sentiment

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o-mini"

const polarityPrompt = `Rate the emotional polarity of the user's message on a scale from -1 (very negative) to 1 (very positive), 0 being neutral. The message may be in Spanish. Answer with the number only.`

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// OpenAIAnalyzer asks any OpenAI-compatible chat completion API for a
// polarity value.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

// NewOpenAIAnalyzer creates an analyzer. An empty baseURL uses the OpenAI
// API; an empty model uses DefaultOpenAIModel.
func NewOpenAIAnalyzer(apiKey, baseURL, model string) *OpenAIAnalyzer {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (a *OpenAIAnalyzer) Polarity(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: polarityPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("no completion returned")
	}
	return parsePolarity(resp.Choices[0].Message.Content)
}

// parsePolarity reads the first number in s and clamps it.
func parsePolarity(s string) (float64, error) {
	num := numberRe.FindString(s)
	if num == "" {
		return 0, fmt.Errorf("no polarity in reply %q", s)
	}
	p, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse polarity %q: %w", num, err)
	}
	return Clamp(p), nil
}
