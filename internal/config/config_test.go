package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "browser", cfg.Source.Mode)
	assert.Equal(t, 5, cfg.Scraper.MaxPages)
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, 2.0, cfg.Scraper.BackoffFactor)
	assert.True(t, cfg.Scraper.Headless)
	assert.NotEmpty(t, cfg.Search.Roles)
	assert.NotEmpty(t, cfg.Search.Locations)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.False(t, cfg.Database.Postgres.Enabled)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
source:
  mode: serpapi
  serpapi:
    api_key: test-key
    pages_per_query: 4
search:
  roles: ["Platform Engineer"]
  locations: ["United States"]
scraper:
  max_pages: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "serpapi", cfg.Source.Mode)
	assert.Equal(t, "test-key", cfg.Source.SerpAPI.APIKey)
	assert.Equal(t, 4, cfg.Source.SerpAPI.PagesPerQuery)
	assert.Equal(t, []string{"Platform Engineer"}, cfg.Search.Roles)
	assert.Equal(t, 2, cfg.Scraper.MaxPages)
	// Unset fields keep their defaults.
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Scraper.MinDelay)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SOURCE_MODE", "serpapi")
	t.Setenv("SERPAPI_KEY", "env-key")
	t.Setenv("SEARCH_ROLES", "ML Engineer, Data Engineer")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "serpapi", cfg.Source.Mode)
	assert.Equal(t, "env-key", cfg.Source.SerpAPI.APIKey)
	assert.Equal(t, []string{"ML Engineer", "Data Engineer"}, cfg.Search.Roles)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5432, User: "u", Password: "p",
		Database: "jobs", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5432/jobs?sslmode=disable", p.DSN())
}
