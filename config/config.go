package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
	DBDriverMemory   = "memory"

	EnhancerOpenAI = "openai"
	EnhancerGemini = "gemini"
	EnhancerNone   = "none"
)

// Config holds the environment driven configuration for the server.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":5000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"image_generations.sqlite"`
	DatabaseURL string `env:"DATABASE_URL"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	EnhancerProvider string `env:"ENHANCER_PROVIDER" envDefault:"openai"`
	EnhancerModel    string `env:"ENHANCER_MODEL" envDefault:"gpt-4o"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	ImageModel       string `env:"IMAGE_MODEL" envDefault:"dall-e-3"`
	ImageSize        string `env:"IMAGE_SIZE" envDefault:"1024x1024"`
	ImageQuality     string `env:"IMAGE_QUALITY" envDefault:"standard"`

	MaxRecentLimit int `env:"MAX_RECENT_LIMIT" envDefault:"100"`

	DiscordBotToken       string `env:"DISCORD_BOT_TOKEN"`
	DiscordGuildID        string `env:"DISCORD_GUILD_ID"`
	DiscordImagineCommand string `env:"DISCORD_IMAGINE_COMMAND" envDefault:"imagine"`
	DiscordRemoveCommands bool   `env:"DISCORD_REMOVE_COMMANDS" envDefault:"false"`
	DiscordDevMode        bool   `env:"DISCORD_DEV_MODE" envDefault:"false"`
}

// Load reads a .env file when one exists, then parses environment variables into Config.
// Variables already present in the environment win over the .env file.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DBDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER is %s", DBDriverSQLite)
		}
	case DBDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER is %s", DBDriverPostgres)
		}
	case DBDriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	switch c.EnhancerProvider {
	case EnhancerOpenAI, EnhancerNone:
	case EnhancerGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when ENHANCER_PROVIDER is %s", EnhancerGemini)
		}
	default:
		return fmt.Errorf("unsupported ENHANCER_PROVIDER %q", c.EnhancerProvider)
	}

	if c.MaxRecentLimit < 1 {
		return fmt.Errorf("MAX_RECENT_LIMIT must be positive")
	}

	return nil
}

// DiscordEnabled reports whether the Discord bot should be started.
func (c *Config) DiscordEnabled() bool {
	return strings.TrimSpace(c.DiscordBotToken) != ""
}
