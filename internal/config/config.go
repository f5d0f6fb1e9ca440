package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all platform configuration.
type Config struct {
	LogLevel string

	// Tracked symbols in normalized form, e.g. "BTC/USDT".
	Symbols []string

	// Bus
	KafkaBrokers  []string
	ConsumerGroup string

	// Streamer
	StreamEnabled     bool
	BinanceWSURL      string
	BinanceRESTURL    string
	BarInterval       string
	PollInterval      time.Duration
	ReconnectDelay    time.Duration
	BackoffEnabled    bool
	MaxReconnectDelay time.Duration
	RequestTimeout    time.Duration

	// Agent
	AgentID           string
	AnalysisInterval  time.Duration
	MinSignalStrength float64
	MoveThreshold     float64

	// Narrative generation
	NarrativeEnabled bool
	OpenAIAPIKey     string
	OpenAIModel      string
	LLMTemperature   float64
	LLMMaxTokens     int

	// Row store
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Columnar store
	ClickHouseAddr     string
	ClickHouseDB       string
	ClickHouseUser     string
	ClickHousePassword string

	// Optional latest-price cache
	RedisAddr string

	// Optional signal delivery
	TelegramToken  string
	TelegramChatID int64
}

// Load initializes configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		Symbols: splitList(getEnvWithDefault("SYMBOLS", "BTC/USDT,ETH/USDT")),

		KafkaBrokers:  splitList(getEnvWithDefault("KAFKA_BROKERS", "localhost:9092")),
		ConsumerGroup: getEnvWithDefault("CONSUMER_GROUP", "marketpulse"),

		StreamEnabled:     getEnvBoolWithDefault("STREAM_ENABLED", true),
		BinanceWSURL:      getEnvWithDefault("BINANCE_WS_URL", "wss://stream.binance.com:9443"),
		BinanceRESTURL:    getEnvWithDefault("BINANCE_REST_URL", "https://api.binance.com"),
		BarInterval:       getEnvWithDefault("BAR_INTERVAL", "1m"),
		PollInterval:      getEnvDurationWithDefault("POLL_INTERVAL_SEC", 60),
		ReconnectDelay:    getEnvDurationWithDefault("STREAM_RECONNECT_DELAY_SEC", 5),
		BackoffEnabled:    getEnvBoolWithDefault("STREAM_BACKOFF_ENABLED", true),
		MaxReconnectDelay: getEnvDurationWithDefault("STREAM_MAX_RECONNECT_DELAY_SEC", 60),
		RequestTimeout:    getEnvDurationWithDefault("REQUEST_TIMEOUT_SEC", 30),

		AgentID:           getEnvWithDefault("AGENT_ID", "market-monitor"),
		AnalysisInterval:  getEnvDurationWithDefault("ANALYSIS_INTERVAL_SEC", 60),
		MinSignalStrength: getEnvFloatWithDefault("MIN_SIGNAL_STRENGTH", 0.6),
		MoveThreshold:     getEnvFloatWithDefault("MOVE_THRESHOLD", 0.01),

		NarrativeEnabled: getEnvBoolWithDefault("NARRATIVE_ENABLED", true),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnvWithDefault("OPENAI_MODEL", "gpt-4"),
		LLMTemperature:   getEnvFloatWithDefault("LLM_TEMPERATURE", 0.4),
		LLMMaxTokens:     getEnvIntWithDefault("LLM_MAX_TOKENS", 256),

		PostgresHost:     getEnvWithDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvWithDefault("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnvWithDefault("POSTGRES_USER", "marketpulse"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getEnvWithDefault("POSTGRES_DB", "marketpulse"),
		PostgresSSLMode:  getEnvWithDefault("POSTGRES_SSLMODE", "disable"),

		ClickHouseAddr:     getEnvWithDefault("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:       getEnvWithDefault("CLICKHOUSE_DB", "marketpulse"),
		ClickHouseUser:     getEnvWithDefault("CLICKHOUSE_USER", "default"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASSWORD"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the platform cannot start with.
// Validation failures are fatal at startup.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("config: SYMBOLS must name at least one symbol")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("config: KAFKA_BROKERS must name at least one broker")
	}
	if c.NarrativeEnabled && c.OpenAIAPIKey == "" {
		return fmt.Errorf("config: OPENAI_API_KEY is required while narrative generation is enabled")
	}
	if c.MinSignalStrength < 0 || c.MinSignalStrength > 1 {
		return fmt.Errorf("config: MIN_SIGNAL_STRENGTH must be in [0,1], got %v", c.MinSignalStrength)
	}
	if c.MoveThreshold <= 0 {
		return fmt.Errorf("config: MOVE_THRESHOLD must be positive, got %v", c.MoveThreshold)
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("config: TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvIntWithDefault(key, defaultSeconds)) * time.Second
}
