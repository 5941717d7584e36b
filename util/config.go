package util

import (
	"os"
	"strconv"

	"github.com/vulnwatch/cvetrend-backend/database"
	"gopkg.in/yaml.v2"
)

// NVDConfig holds the fetch client settings
type NVDConfig struct {
	APIKey             string `yaml:"api_key"`
	CacheDir           string `yaml:"cache_dir"`
	CacheDisabled      bool   `yaml:"cache_disabled"`
	CacheRetentionDays int    `yaml:"cache_retention_days"`
	RateLimit          int    `yaml:"rate_limit"` // requests per 30s, 0 = derive from key
	PageSize           int    `yaml:"page_size"`
}

// KafkaConfig holds the optional event producer settings
type KafkaConfig struct {
	Brokers string `yaml:"brokers"` // comma separated, empty disables events
	Topic   string `yaml:"topic"`
}

// Config is the backend configuration, loaded from an optional YAML file and
// then overridden by environment variables. Env wins so container deployments
// never need the file.
type Config struct {
	Addr  string      `yaml:"addr"`
	NVD   NVDConfig   `yaml:"nvd"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// LoadConfig reads CONFIG_PATH (default config.yaml) when present and applies
// environment overrides. A missing file is not an error.
func LoadConfig() *Config {
	cfg := &Config{
		Addr: ":8080",
		NVD: NVDConfig{
			CacheDir: "data/cache",
		},
		Kafka: KafkaConfig{
			Topic: "cve-fetch-events",
		},
	}

	path := database.GetEnvDefault("CONFIG_PATH", "config.yaml")
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			database.Logger().Sugar().Warnf("Ignoring malformed config file %s: %v", path, err)
		}
	}

	cfg.Addr = database.GetEnvDefault("ADDR", cfg.Addr)
	cfg.NVD.APIKey = database.GetEnvDefault("NVD_API_KEY", cfg.NVD.APIKey)
	cfg.NVD.CacheDir = database.GetEnvDefault("NVD_CACHE_DIR", cfg.NVD.CacheDir)
	cfg.Kafka.Brokers = database.GetEnvDefault("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = database.GetEnvDefault("KAFKA_TOPIC", cfg.Kafka.Topic)

	if v := os.Getenv("NVD_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NVD.RateLimit = n
		}
	}
	if os.Getenv("NVD_CACHE_DISABLED") == "true" {
		cfg.NVD.CacheDisabled = true
	}

	return cfg
}
