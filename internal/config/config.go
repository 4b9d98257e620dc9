package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every configuration section of the service.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Cache  CacheConfig
	Bot    BotConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	cache, err := loadCacheConfig()
	if err != nil {
		return nil, err
	}

	bot, err := loadBotConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Cache: cache, Bot: bot}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the text-generation provider.
type AIConfig struct {
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	SystemPrompt string
}

// Enabled reports whether a usable credential and model are configured.
// Placeholder keys left over from sample env files count as absent.
func (c AIConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	if c.AccessKey != "" && c.SecretKey != "" {
		return true
	}
	return c.APIKey != "" && !isPlaceholder(c.APIKey)
}

func isPlaceholder(key string) bool {
	lower := strings.ToLower(key)
	return lower == "your-api-key" || strings.HasPrefix(lower, "your-")
}

// NewChatModel builds a provider model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("missing provider credentials: set ARK_API_KEY (or AK/SK pair) and MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("MODEL")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		SystemPrompt: strings.TrimSpace(os.Getenv("BOT_SYSTEM_PROMPT")),
	}, nil
}

// CacheConfig describes the response cache backend. An empty RedisAddr
// selects the in-memory backend.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

func loadCacheConfig() (CacheConfig, error) {
	db := 0
	if override, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return CacheConfig{}, err
	} else if override != nil {
		db = *override
	}

	ttl := 24 * time.Hour
	if hours, err := parseOptionalIntEnv("CACHE_TTL_HOURS"); err != nil {
		return CacheConfig{}, err
	} else if hours != nil {
		if *hours < 1 {
			return CacheConfig{}, fmt.Errorf("CACHE_TTL_HOURS must be at least 1, got %d", *hours)
		}
		ttl = time.Duration(*hours) * time.Hour
	}

	return CacheConfig{
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       db,
		TTL:           ttl,
	}, nil
}

// BotConfig describes the dispatch worker pool. A non-empty ServiceURL
// routes processing to a bot service in a separate process.
type BotConfig struct {
	Workers    int
	QueueSize  int
	ServiceURL string
}

func loadBotConfig() (BotConfig, error) {
	workers := 4
	if override, err := parseOptionalIntEnv("BOT_WORKERS"); err != nil {
		return BotConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return BotConfig{}, fmt.Errorf("BOT_WORKERS must be at least 1, got %d", *override)
		}
		workers = *override
	}

	queueSize := 64
	if override, err := parseOptionalIntEnv("BOT_QUEUE_SIZE"); err != nil {
		return BotConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return BotConfig{}, fmt.Errorf("BOT_QUEUE_SIZE must be at least 1, got %d", *override)
		}
		queueSize = *override
	}

	return BotConfig{
		Workers:    workers,
		QueueSize:  queueSize,
		ServiceURL: strings.TrimSpace(os.Getenv("BOT_SERVICE_URL")),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
