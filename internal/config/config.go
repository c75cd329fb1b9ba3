package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// RPC settings
	RPCUrl              string
	AccountsPollEnabled bool

	// Price API settings
	PriceAPIBaseURL string

	// Jupiter quote API settings
	JupiterBaseURL string
	JupiterAPIKey  string

	// Redis settings
	RedisAddr string

	// ClickHouse settings (optional activity log)
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// API server settings
	APIAddr string
	APIKey  string
	DevMode bool

	// Platform fee passthrough for quotes
	PlatformFeeBps uint16
	FeeAccount     string

	// Priority fee shown in the fee breakdown, SOL
	PriorityFeeSOL float64
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:              getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		AccountsPollEnabled: getBoolEnv("ACCOUNTS_POLL_ENABLED", true),

		// Price API
		PriceAPIBaseURL: getEnv("PRICE_API_BASE_URL", "https://price.jup.ag/v4"),

		// Jupiter
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", "https://api.jup.ag/swap/v1"),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "terminal"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 1*time.Second),

		// API server
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// Fees
		PlatformFeeBps: uint16(getIntEnv("PLATFORM_FEE_BPS", 0)),
		FeeAccount:     getEnv("FEE_ACCOUNT", ""),
		PriorityFeeSOL: getFloatEnv("PRIORITY_FEE_SOL", 0),
	}
}

func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.PriceAPIBaseURL == "" {
		return fmt.Errorf("PRICE_API_BASE_URL is required")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.PlatformFeeBps > 0 && c.FeeAccount == "" {
		return fmt.Errorf("FEE_ACCOUNT is required when PLATFORM_FEE_BPS is set")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
