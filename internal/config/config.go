package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr          string        `yaml:"addr"`
		WatchInterval time.Duration `yaml:"watch_interval"`
		AllowedOrigin string        `yaml:"allowed_origin"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Client struct {
		APIURL    string        `yaml:"api_url"`
		CachePath string        `yaml:"cache_path"`
		TickCron  string        `yaml:"tick_cron"`
		Timeout   time.Duration `yaml:"timeout"`
		DuckName  string        `yaml:"duck_name"`
	} `yaml:"client"`
}

// Load reads .env (if present) and the YAML config file, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

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

	// Environment variable overrides
	if v := os.Getenv("QUACKITO_ADDR"); v != "" {
		cfg.Server.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("QUACKITO_WATCH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse QUACKITO_WATCH_INTERVAL: %w", err)
		}
		cfg.Server.WatchInterval = d
	}
	if v := os.Getenv("QUACKITO_ALLOWED_ORIGIN"); v != "" {
		cfg.Server.AllowedOrigin = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("QUACKITO_API_URL"); v != "" {
		cfg.Client.APIURL = v
	}
	if v := os.Getenv("QUACKITO_CACHE_PATH"); v != "" {
		cfg.Client.CachePath = v
	}
	if v := os.Getenv("QUACKITO_TICK_CRON"); v != "" {
		cfg.Client.TickCron = v
	}
	if v := os.Getenv("QUACKITO_DUCK_NAME"); v != "" {
		cfg.Client.DuckName = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":3001"
	}
	if cfg.Server.WatchInterval == 0 {
		cfg.Server.WatchInterval = 30 * time.Second
	}
	if cfg.Server.AllowedOrigin == "" {
		cfg.Server.AllowedOrigin = "*"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/quackito.db"
	}
	if cfg.Client.APIURL == "" {
		cfg.Client.APIURL = "http://localhost:3001"
	}
	if cfg.Client.CachePath == "" {
		cfg.Client.CachePath = defaultCachePath()
	}
	if cfg.Client.TickCron == "" {
		cfg.Client.TickCron = "@every 30s"
	}
	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = 10 * time.Second
	}

	return cfg, nil
}

// Validate checks that all required fields are usable.
func (c *Config) Validate() error {
	if c.Server.WatchInterval < time.Second {
		return fmt.Errorf("server.watch_interval must be at least 1s")
	}
	u, err := url.Parse(c.Client.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("client.api_url must be an absolute URL, got %q", c.Client.APIURL)
	}
	if c.Client.CachePath == "" {
		return fmt.Errorf("client.cache_path is required")
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}
	return nil
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".quackito", "duck.toml")
	}
	return filepath.Join(home, ".quackito", "duck.toml")
}
