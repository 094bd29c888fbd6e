package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Search    SearchConfig    `yaml:"search"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Source    SourceConfig    `yaml:"source"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Output    OutputConfig    `yaml:"output"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Debug        bool          `yaml:"debug"`
}

// SearchConfig lists the role keywords and locations whose cross product
// forms the run's query plan.
type SearchConfig struct {
	Roles     []string `yaml:"roles"`
	Locations []string `yaml:"locations"`
}

type ScraperConfig struct {
	MinDelay         time.Duration `yaml:"min_delay"`
	MaxDelay         time.Duration `yaml:"max_delay"`
	MaxPages         int           `yaml:"max_pages"`
	MaxRetries       int           `yaml:"max_retries"`
	BackoffFactor    float64       `yaml:"backoff_factor"`
	Headless         bool          `yaml:"headless"`
	NavTimeout       time.Duration `yaml:"nav_timeout"`
	TimeRangeSeconds int           `yaml:"time_range_seconds"`
}

// SourceConfig picks the fetch adapter for a run: "browser" or "serpapi".
type SourceConfig struct {
	Mode    string        `yaml:"mode"`
	SerpAPI SerpAPIConfig `yaml:"serpapi"`
}

type SerpAPIConfig struct {
	APIKey        string `yaml:"api_key"`
	PagesPerQuery int    `yaml:"pages_per_query"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	PoolSize int    `yaml:"pool_size"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (p PostgresConfig) DSN() string {
	return "postgres://" + p.User + ":" + p.Password + "@" + p.Host + ":" +
		strconv.Itoa(p.Port) + "/" + p.Database + "?sslmode=" + p.SSLMode
}

type RedisConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	SeenTTL time.Duration `yaml:"seen_ttl"`
}

// OutputConfig is where run artifacts (corpus exports, summaries) land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := defaultConfig()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	cfg.loadFromEnv()

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Debug:        false,
		},
		Search: SearchConfig{
			Roles: []string{
				"Machine Learning Engineer",
				"Data Engineer",
				"Backend Engineer",
				"Forward Deployed Engineer",
			},
			Locations: []string{"United States", "India"},
		},
		Scraper: ScraperConfig{
			MinDelay:         2 * time.Second,
			MaxDelay:         5 * time.Second,
			MaxPages:         5,
			MaxRetries:       3,
			BackoffFactor:    2.0,
			Headless:         true,
			NavTimeout:       30 * time.Second,
			TimeRangeSeconds: 2 * 365 * 24 * 3600,
		},
		Source: SourceConfig{
			Mode: "browser",
			SerpAPI: SerpAPIConfig{
				PagesPerQuery: 3,
			},
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Enabled:  false,
				Host:     "localhost",
				Port:     5432,
				User:     "jobpulse",
				Password: "password",
				Database: "jobpulse",
				PoolSize: 25,
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Enabled: false,
			URL:     "redis://localhost:6379/0",
			SeenTTL: 7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Dir: "output",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             10,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         600,
		},
	}
}

func (c *Config) loadFromEnv() {
	// Server
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DEBUG"); v == "true" {
		c.Server.Debug = true
	}

	// Search plan
	if v := os.Getenv("SEARCH_ROLES"); v != "" {
		c.Search.Roles = splitList(v)
	}
	if v := os.Getenv("SEARCH_LOCATIONS"); v != "" {
		c.Search.Locations = splitList(v)
	}

	// Source
	if v := os.Getenv("SOURCE_MODE"); v != "" {
		c.Source.Mode = v
	}
	if v := os.Getenv("SERPAPI_KEY"); v != "" {
		c.Source.SerpAPI.APIKey = v
	}

	// Scraper
	if v := os.Getenv("SCRAPER_HEADLESS"); v == "false" {
		c.Scraper.Headless = false
	}
	if v := os.Getenv("SCRAPER_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scraper.MaxPages = n
		}
	}

	// Database
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		c.Database.Postgres.Host = v
		c.Database.Postgres.Enabled = true
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Postgres.Port = port
		}
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		c.Database.Postgres.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Database.Postgres.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		c.Database.Postgres.Database = v
	}

	// Redis
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
		c.Redis.Enabled = true
	}

	// Output
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
