package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix scopes environment variables, e.g. TEUM_NOTION_TABLE_ID.
// Unprefixed names (NOTION_TABLE_ID) are accepted as a fallback.
const Prefix = "TEUM"

// Backends
const (
	BackendRecordMap = "recordmap"
	BackendAPI       = "api"
)

// Notion configures the document-tree provider
type Notion struct {
	TableID           string        `envconfig:"NOTION_TABLE_ID"`
	APIKey            string        `envconfig:"NOTION_API_KEY"`
	AuthToken         string        `envconfig:"NOTION_TOKEN_V2"`
	Backend           string        `envconfig:"BACKEND" default:"recordmap"`
	BaseURL           string        `envconfig:"NOTION_BASE_URL" default:"https://www.notion.so/api/v3"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND" default:"3"`
	MaxAttempts       int           `envconfig:"MAX_ATTEMPTS" default:"3"`
}

// Config holds the application configuration
type Config struct {
	Notion

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	StorePath   string `envconfig:"STORE_PATH" default:"teum.db"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	Port string `envconfig:"PORT" default:"8080"`

	MetaCacheTTL   time.Duration `envconfig:"META_CACHE_TTL" default:"10m"`
	FetchChunkSize int           `envconfig:"FETCH_CHUNK_SIZE" default:"5"`
}

// Load reads an optional .env file and then the environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first missing or inconsistent setting
func (c *Config) Validate() error {
	switch c.Notion.Backend {
	case BackendRecordMap:
	case BackendAPI:
		if c.Notion.APIKey == "" {
			return fmt.Errorf("NOTION_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unsupported BACKEND: %s", c.Notion.Backend)
	}

	if c.Notion.TableID == "" {
		return fmt.Errorf("NOTION_TABLE_ID is not set")
	}

	switch c.StoreDriver {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}

	if c.FetchChunkSize <= 0 {
		return fmt.Errorf("FETCH_CHUNK_SIZE must be positive, got %d", c.FetchChunkSize)
	}
	return nil
}
