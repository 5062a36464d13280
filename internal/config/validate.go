package config

import "fmt"

// Validate checks the parts of the configuration the pipeline cannot run
// without. Called once at app startup so misconfiguration fails fast rather
// than mid-stream.
func (c *Config) Validate() error {
	switch c.Classification.Provider {
	case "gemini":
		if c.Classification.GeminiAPIKey == "" {
			return fmt.Errorf("classification provider is gemini but GEMINI_API_KEY is not set")
		}
	case "openai":
		if c.Classification.OpenAIAPIKey == "" {
			return fmt.Errorf("classification provider is openai but OPENAI_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown classification provider %q (want gemini or openai)", c.Classification.Provider)
	}

	if c.Classification.Model == "" {
		return fmt.Errorf("classification model must not be empty")
	}
	if c.Classification.MaxPostChars <= 0 {
		return fmt.Errorf("classification max_post_chars must be positive, got %d", c.Classification.MaxPostChars)
	}

	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return fmt.Errorf("reddit credentials missing: set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET")
	}

	if c.Search.DefaultLimit < 1 {
		return fmt.Errorf("search default_limit must be >= 1, got %d", c.Search.DefaultLimit)
	}
	if c.Pipeline.ChunkSize < 1 {
		return fmt.Errorf("pipeline chunk_size must be >= 1, got %d", c.Pipeline.ChunkSize)
	}
	if c.Pipeline.PauseSeconds < 0 {
		return fmt.Errorf("pipeline pause_seconds must not be negative, got %d", c.Pipeline.PauseSeconds)
	}
	return nil
}
