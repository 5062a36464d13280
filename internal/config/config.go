package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	Reddit struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		UserAgent    string `mapstructure:"user_agent"`
	} `mapstructure:"reddit"`

	Search struct {
		DefaultLimit int `mapstructure:"default_limit"`
	} `mapstructure:"search"`

	Classification struct {
		Provider     string `mapstructure:"provider"` // "gemini" or "openai"
		Model        string `mapstructure:"model"`
		GeminiAPIKey string `mapstructure:"gemini_api_key"`
		OpenAIAPIKey string `mapstructure:"openai_api_key"`
		MaxPostChars int    `mapstructure:"max_post_chars"`
	} `mapstructure:"classification"`

	Pipeline struct {
		ChunkSize    int `mapstructure:"chunk_size"`
		PauseSeconds int `mapstructure:"pause_seconds"`
	} `mapstructure:"pipeline"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("server.addr", "localhost")
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("reddit.user_agent", "SocialListeningApp/1.0")
	viper.SetDefault("search.default_limit", 10)
	viper.SetDefault("classification.provider", "gemini")
	viper.SetDefault("classification.model", "gemini-2.0-flash")
	viper.SetDefault("classification.max_post_chars", 1000)
	viper.SetDefault("pipeline.chunk_size", 30)
	viper.SetDefault("pipeline.pause_seconds", 2)

	viper.AutomaticEnv()
	// Secrets come from the environment; config.yaml holds the rest.
	viper.BindEnv("reddit.client_id", "REDDIT_CLIENT_ID")
	viper.BindEnv("reddit.client_secret", "REDDIT_CLIENT_SECRET")
	viper.BindEnv("reddit.user_agent", "REDDIT_USER_AGENT")
	viper.BindEnv("classification.gemini_api_key", "GEMINI_API_KEY")
	viper.BindEnv("classification.openai_api_key", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; env vars and defaults cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
