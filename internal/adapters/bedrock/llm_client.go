package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/english-buddy/internal/analysis"
	"github.com/mikey/english-buddy/internal/core"
	"github.com/mikey/english-buddy/internal/utils"
	"go.uber.org/zap"
)

// BedrockClient is an implementation of the Analyzer interface using Amazon Bedrock
type BedrockClient struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// AnalyzeText checks a prompt for grammar errors
func (c *BedrockClient) AnalyzeText(ctx context.Context, text string) (*core.GrammarAnalysis, error) {
	// Process the text (sanitize and truncate)
	processed := c.textProcessor.PrepareForAnalysis(text, c.maxTextSize)

	prompt := analysis.BuildPrompt(processed)

	// Create the request based on the model
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		// Anthropic Claude models use the Bedrock messages API
		payload, err = json.Marshal(map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        c.maxTokens,
			"temperature":       c.temperature,
			"top_p":             c.topP,
			"messages": []map[string]interface{}{
				{"role": "user", "content": prompt},
			},
		})
	} else if c.isAmazonTitanModel() {
		// Amazon Titan models
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		// Default to a generic format
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	// Call Bedrock API
	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	// Parse the response based on the model
	var responseText string

	if c.isAnthropicModel() {
		var claudeResp struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		if len(claudeResp.Content) == 0 {
			return nil, fmt.Errorf("empty response from Claude model")
		}
		responseText = claudeResp.Content[0].Text
	} else if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return nil, fmt.Errorf("empty response from Titan model")
		}
		responseText = titanResp.Results[0].OutputText
	} else {
		// Try a generic approach
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generic response: %w", err)
		}

		switch {
		case genericResp.Output != "":
			responseText = genericResp.Output
		case genericResp.Text != "":
			responseText = genericResp.Text
		case genericResp.Response != "":
			responseText = genericResp.Response
		default:
			responseText = string(resp.Body)
		}
	}

	result, err := analysis.ParseAnalysis(responseText)
	if err != nil {
		return nil, err
	}

	result.AnalyzedAt = time.Now()
	result.ModelUsed = c.modelID

	return result, nil
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
