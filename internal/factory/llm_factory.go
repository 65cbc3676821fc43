package factory

import (
	"fmt"

	"github.com/mikey/english-buddy/internal/adapters/bedrock"
	"github.com/mikey/english-buddy/internal/adapters/gemini"
	"github.com/mikey/english-buddy/internal/adapters/openai"
	"github.com/mikey/english-buddy/internal/config"
	"github.com/mikey/english-buddy/internal/core"
	"github.com/mikey/english-buddy/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates grammar analyzers
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzer creates a new analyzer based on the configuration
func (f *LLMFactory) CreateAnalyzer() (core.Analyzer, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
