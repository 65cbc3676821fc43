package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/english-buddy/internal/analysis"
	"github.com/mikey/english-buddy/internal/core"
	"github.com/mikey/english-buddy/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the Analyzer interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// AnalyzeText checks a prompt for grammar errors
func (c *GeminiClient) AnalyzeText(ctx context.Context, text string) (*core.GrammarAnalysis, error) {
	// Process the text (sanitize and truncate)
	processed := c.textProcessor.PrepareForAnalysis(text, c.maxTextSize)

	prompt := analysis.BuildPrompt(processed)

	// Call Gemini API
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	// Extract the response text
	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	result, err := analysis.ParseAnalysis(responseText)
	if err != nil {
		return nil, err
	}

	result.AnalyzedAt = time.Now()
	result.ModelUsed = c.modelName

	return result, nil
}
