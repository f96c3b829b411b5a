package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider    string        `yaml:"provider"` // eastmoney | yahoo | mock
		QuoteURL    string        `yaml:"quote_url"`
		KlineURL    string        `yaml:"kline_url"`
		HistoryDays int           `yaml:"history_days"`
		Attempts    int           `yaml:"attempts"`
		RetryDelay  time.Duration `yaml:"retry_delay"`
	} `yaml:"data_source"`
	Cache struct {
		Backend   string        `yaml:"backend"` // memory | redis
		TTL       time.Duration `yaml:"ttl"`
		Retention time.Duration `yaml:"retention"` // how long stale entries survive in redis
		Redis     struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Schedule struct {
		ScoreCron string `yaml:"score_cron"`
	} `yaml:"schedule"`
	Watchlist []string `yaml:"watchlist"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Printf("[INFO] loaded environment from %s", path)
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("DATA_PROVIDER", &c.DataSource.Provider)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("CACHE_BACKEND", &c.Cache.Backend)
	setString("REDIS_ADDR", &c.Cache.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Cache.Redis.Password)
	setString("CRON_SCORE", &c.Schedule.ScoreCron)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("METRICS_ADDR", &c.Metrics.ListenAddr)

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Cache.Redis.DB = db
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "eastmoney"
	}
	if c.DataSource.HistoryDays == 0 {
		c.DataSource.HistoryDays = 180
	}
	if c.DataSource.Attempts == 0 {
		c.DataSource.Attempts = 3
	}
	if c.DataSource.RetryDelay == 0 {
		c.DataSource.RetryDelay = 5 * time.Second
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 10 * time.Minute
	}
	if c.Cache.Retention == 0 {
		c.Cache.Retention = 24 * time.Hour
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Schedule.ScoreCron == "" {
		// 15:30 Beijing time on trading days, after the A-share close
		c.Schedule.ScoreCron = "0 30 15 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_advisor.db"
	}
	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9100"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	switch c.DataSource.Provider {
	case "eastmoney", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not one of eastmoney, yahoo, mock", c.DataSource.Provider)
	}
	if c.DataSource.HistoryDays < 30 {
		return fmt.Errorf("data_source.history_days must be at least 30")
	}
	if c.DataSource.Attempts < 1 {
		return fmt.Errorf("data_source.attempts must be positive")
	}
	if c.DataSource.RetryDelay < 0 {
		return fmt.Errorf("data_source.retry_delay must not be negative")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend %q is not one of memory, redis", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Cache.Retention < c.Cache.TTL {
		return fmt.Errorf("cache.retention (%v) must not be shorter than cache.ttl (%v)", c.Cache.Retention, c.Cache.TTL)
	}
	return nil
}
