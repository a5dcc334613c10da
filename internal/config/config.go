package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port            string
	MongoDBURI      string
	MongoDBPassword string
	DatabaseName    string
	JWKSURL         string
	EmbeddingURL    string
	EmbeddingModel  string
	EmbeddingDim    int
	ChatModel       string
	ModelAPIKey     string
	Environment     string
	LogLevel        string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		DatabaseName:    getEnvWithDefault("MONGODB_DATABASE", "gatherly"),
		JWKSURL:         os.Getenv("AUTH_JWKS_URL"),
		EmbeddingURL:    os.Getenv("EMBEDDING_BASE_URL"),
		EmbeddingModel:  getEnvWithDefault("EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
		EmbeddingDim:    384,
		ChatModel:       getEnvWithDefault("CHAT_MODEL", "gpt-4o-mini"),
		ModelAPIKey:     os.Getenv("MODEL_API_KEY"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWKSURL == "" {
		return nil, fmt.Errorf("AUTH_JWKS_URL is required")
	}
	if cfg.EmbeddingURL == "" {
		return nil, fmt.Errorf("EMBEDDING_BASE_URL is required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
