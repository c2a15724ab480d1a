package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Model
	ModelBaseURL     string
	ModelAPIKey      string
	ModelID          string
	ModelTemperature float32

	// Persona
	PersonaName string
	SummaryPath string
	ProfilePath string

	// Pushover
	PushoverToken    string
	PushoverUser     string
	PushoverEndpoint string

	// Neo4j lead store (optional; disabled when URI is empty)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Agent
	MaxToolRounds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		ModelBaseURL:     getEnv("MODEL_BASE_URL", "https://api.groq.com/openai/v1"),
		ModelAPIKey:      getEnv("MODEL_API_KEY", ""),
		ModelID:          getEnv("MODEL_ID", "llama-3.3-70b-versatile"),
		ModelTemperature: float32(getEnvFloat("MODEL_TEMPERATURE", 0.7)),
		PersonaName:      getEnv("PERSONA_NAME", ""),
		SummaryPath:      getEnv("SUMMARY_PATH", "me/summary.txt"),
		ProfilePath:      getEnv("PROFILE_PATH", "me/profile.html"),
		PushoverToken:    getEnv("PUSHOVER_TOKEN", ""),
		PushoverUser:     getEnv("PUSHOVER_USER", ""),
		PushoverEndpoint: getEnv("PUSHOVER_ENDPOINT", "https://api.pushover.net/1/messages.json"),
		Neo4jURI:         getEnv("NEO4J_URI", ""),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    getEnv("NEO4J_PASSWORD", ""),
		MaxToolRounds:    getEnvInt("MAX_TOOL_ROUNDS", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.ModelBaseURL == "" {
		return fmt.Errorf("MODEL_BASE_URL is required")
	}
	if c.ModelID == "" {
		return fmt.Errorf("MODEL_ID is required")
	}
	if c.PersonaName == "" {
		return fmt.Errorf("PERSONA_NAME is required")
	}
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("MAX_TOOL_ROUNDS must be positive")
	}
	if c.Neo4jURI != "" && c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required when NEO4J_URI is set")
	}
	// Model API key and Pushover credentials are optional for development
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
