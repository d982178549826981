// Package config assembles runtime settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"volmap/render"
)

// Config holds all application-level configuration
type Config struct {
	DataPath       string   `yaml:"data_path"`
	HTTPAddr       string   `yaml:"http_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogLevel       string   `yaml:"log_level"`

	// Optional Redis geo index backing the nearby search
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`

	// Mirror targets
	MongoURI      string `yaml:"mongodb_uri"`
	MongoDatabase string `yaml:"mongodb_database"`
	PostgresURL   string `yaml:"postgres_url"`

	Map render.Viewport `yaml:"map"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		DataPath:       "data/VolOpp2.csv",
		HTTPAddr:       ":8080",
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		LogLevel:       "info",
		MongoDatabase:  "volmap",
		Map:            render.DefaultViewport,
	}
}

// Load builds the configuration. path may be empty, in which case the
// VOLMAP_CONFIG environment variable is consulted for a YAML file. A
// missing .env file is not an error.
func Load(path string) (*Config, error) {
	// .env never overrides variables already set in the environment
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("VOLMAP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.DataPath = getEnv("DATA_PATH", c.DataPath)
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.MongoURI = getEnv("MONGODB_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGODB_DATABASE", c.MongoDatabase)
	c.PostgresURL = getEnv("POSTGRES_URL", c.PostgresURL)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return fmt.Errorf("config: data path is required")
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 20 {
		return fmt.Errorf("config: map zoom %d out of range [0, 20]", c.Map.Zoom)
	}
	sw, ne := c.Map.SouthWest, c.Map.NorthEast
	if sw.Lat >= ne.Lat || sw.Lng >= ne.Lng {
		return fmt.Errorf("config: map bounds south-west (%g, %g) must be below and left of north-east (%g, %g)",
			sw.Lat, sw.Lng, ne.Lat, ne.Lng)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
