package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/english-buddy/internal/analysis"
	"github.com/mikey/english-buddy/internal/core"
	"github.com/mikey/english-buddy/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the Analyzer interface using OpenAI
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// AnalyzeText checks a prompt for grammar errors
func (c *OpenAIClient) AnalyzeText(ctx context.Context, text string) (*core.GrammarAnalysis, error) {
	// Process the text (sanitize and truncate)
	processed := c.textProcessor.PrepareForAnalysis(text, c.maxTextSize)

	prompt := analysis.BuildPrompt(processed)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an English grammar checker. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	// Call OpenAI API
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	result, err := analysis.ParseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	result.AnalyzedAt = time.Now()
	result.ModelUsed = c.modelName

	return result, nil
}
