package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PostgresURL    string `mapstructure:"POSTGRES_URL"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	ServerPort     string `mapstructure:"SERVER_PORT"`
	CatalogBaseURL string `mapstructure:"CATALOG_BASE_URL"`
	ElementWait    int    `mapstructure:"ELEMENT_WAIT"` // seconds
	NavTimeout     int    `mapstructure:"NAV_TIMEOUT"`  // seconds
	DedupDays      int    `mapstructure:"DEDUP_DAYS"`
	ExportFile     string `mapstructure:"EXPORT_FILE"` // empty disables the CSV sink
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables in production.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CATALOG_BASE_URL", "https://www.amazon.com")
	viper.SetDefault("ELEMENT_WAIT", 10)
	viper.SetDefault("NAV_TIMEOUT", 30)
	viper.SetDefault("DEDUP_DAYS", 2)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ElementWaitDuration is the bounded wait applied to each individual element lookup.
func (c *Config) ElementWaitDuration() time.Duration {
	return time.Duration(c.ElementWait) * time.Second
}

// NavTimeoutDuration bounds a single page navigation.
func (c *Config) NavTimeoutDuration() time.Duration {
	return time.Duration(c.NavTimeout) * time.Second
}
