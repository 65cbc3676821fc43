package config

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// StoreConfig represents the configuration for the correction store
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// JournalConfig represents the configuration for the markdown learning log
type JournalConfig struct {
	Enabled bool
	Dir     string
}

// QueueConfig represents the configuration for the retry queue
type QueueConfig struct {
	Path        string
	MaxAttempts int
}

// NotifyConfig represents the configuration for desktop notifications
type NotifyConfig struct {
	Enabled bool
	Title   string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxTextSize: c.GetInt("bedrock.max_text_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxTextSize: c.GetInt("gemini.max_text_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxTextSize: c.GetInt("openai.max_text_size"),
	}
}

// GetStore returns the correction store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetJournal returns the journal configuration
func (c *Config) GetJournal() JournalConfig {
	return JournalConfig{
		Enabled: c.GetBool("journal.enabled"),
		Dir:     c.GetString("journal.dir"),
	}
}

// GetQueue returns the retry queue configuration
func (c *Config) GetQueue() QueueConfig {
	return QueueConfig{
		Path:        c.GetString("queue.path"),
		MaxAttempts: c.GetInt("queue.max_attempts"),
	}
}

// GetNotify returns the notification configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		Enabled: c.GetBool("notify.enabled"),
		Title:   c.GetString("notify.title"),
	}
}
