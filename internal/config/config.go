package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the biographer server.
type Config struct {
	// Server settings
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// PostgreSQL settings
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	// Secret field WITHOUT an envconfig tag, loaded separately.
	DBPassword string

	RunMigrations bool `envconfig:"RUN_MIGRATIONS" default:"true"`

	// Redis settings (generation lease)
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	GenerationTTL time.Duration `envconfig:"GENERATION_LEASE_TTL" default:"10m"`

	// RabbitMQ settings (realtime panel/story events)
	RabbitMQURL     string `envconfig:"RABBITMQ_URL" required:"true"`
	StoryEventQueue string `envconfig:"STORY_EVENT_QUEUE" default:"story_events"`

	// AI provider settings. BaseURL lets the same client talk to the OpenAI
	// API or an OpenAI-compatible gateway.
	AIBaseURL          string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	TextModel          string        `envconfig:"AI_TEXT_MODEL" default:"gpt-4o-mini"`
	ImageModel         string        `envconfig:"AI_IMAGE_MODEL" default:"gpt-image-1"`
	TranscriptionModel string        `envconfig:"AI_TRANSCRIPTION_MODEL" default:"whisper-1"`
	AITimeout          time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	// Secret field WITHOUT an envconfig tag, loaded separately.
	AIAPIKey string

	// Photo storage (user-submitted source photos)
	PhotoSavePath      string `envconfig:"PHOTO_SAVE_PATH" default:"/data/photos"`
	PhotoPublicBaseURL string `envconfig:"PHOTO_PUBLIC_BASE_URL" default:"http://localhost:8080/photos"`
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var loadErr error
	cfg.DBPassword, loadErr = readSecret("DB_PASSWORD", "db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.AIAPIKey, loadErr = readSecret("OPENAI_API_KEY", "openai_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	return &cfg, nil
}

// readSecret reads a secret from the environment first, falling back to the
// standard Docker secrets path.
func readSecret(envName, secretName string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v, nil
	}
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("secret %s not set and failed to read secret file %s: %w", envName, filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
