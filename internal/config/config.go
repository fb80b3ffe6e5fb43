package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Browser  BrowserConfig
	Crawl    CrawlConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Output   OutputConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	ProxyServer    string
}

type CrawlConfig struct {
	PoolSize        int
	NavTimeout      time.Duration
	MaxNavAttempts  int
	AbortAfter      int
	RateInterval    time.Duration
	RateBurst       int
	DetailParallel  int
	SettleDelay     time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Stream   string
}

type OutputConfig struct {
	File string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8085),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       getEnvBool("BROWSER_HEADLESS", true),
			Timeout:        getEnvDuration("BROWSER_TIMEOUT", 30*time.Second),
			UserAgent:      getEnv("BROWSER_USER_AGENT", defaultUserAgent),
			ViewportWidth:  getEnvInt("BROWSER_VIEWPORT_WIDTH", 1366),
			ViewportHeight: getEnvInt("BROWSER_VIEWPORT_HEIGHT", 768),
			ProxyServer:    getEnv("BROWSER_PROXY", ""),
		},
		Crawl: CrawlConfig{
			PoolSize:       getEnvInt("CRAWL_POOL_SIZE", 2),
			NavTimeout:     getEnvDuration("CRAWL_NAV_TIMEOUT", 8*time.Second),
			MaxNavAttempts: getEnvInt("CRAWL_NAV_ATTEMPTS", 3),
			AbortAfter:     getEnvInt("CRAWL_ABORT_AFTER", 2),
			RateInterval:   getEnvDuration("CRAWL_RATE_INTERVAL", 2*time.Second),
			RateBurst:      getEnvInt("CRAWL_RATE_BURST", 2),
			DetailParallel: getEnvInt("CRAWL_DETAIL_PARALLEL", 1),
			SettleDelay:    getEnvDuration("CRAWL_SETTLE_DELAY", 2*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "amazon_search"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Stream:   getEnv("REDIS_STREAM", "records:detected"),
		},
		Output: OutputConfig{
			File: getEnv("OUTPUT_FILE", "output/records.jsonl"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Crawl.PoolSize < 1 || c.Crawl.PoolSize > 3 {
		return fmt.Errorf("crawl pool size must be in range 1-3, got %d", c.Crawl.PoolSize)
	}
	if c.Crawl.NavTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be positive")
	}
	if c.Crawl.MaxNavAttempts < 1 {
		return fmt.Errorf("at least 1 navigation attempt is required")
	}
	if c.Crawl.AbortAfter < 1 {
		return fmt.Errorf("abort threshold must be at least 1")
	}
	if c.Crawl.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1")
	}
	if c.Database.Enabled && c.Database.Name == "" {
		return fmt.Errorf("database name is required when DB_ENABLED is set")
	}
	if c.Output.File == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
