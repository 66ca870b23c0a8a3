package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ListingURL     string  `mapstructure:"LISTING_URL"`
	SiteRoot       string  `mapstructure:"SITE_ROOT"`
	CrawlWorkers   int     `mapstructure:"CRAWL_WORKERS"`
	CrawlTimeout   int     `mapstructure:"CRAWL_TIMEOUT"`
	MaxRetries     int     `mapstructure:"MAX_RETRIES"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
	RedisAddr      string  `mapstructure:"REDIS_ADDR"`
	CacheTTLHours  int     `mapstructure:"CACHE_TTL_HOURS"`
	PostgresURL    string  `mapstructure:"POSTGRES_URL"`
	StatusPort     string  `mapstructure:"STATUS_PORT"`
	StrictViews    bool    `mapstructure:"STRICT_VIEWS"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("LISTING_URL", "https://starcitizen.tools/List_of_pledge_vehicles")
	viper.SetDefault("SITE_ROOT", "https://starcitizen.tools")
	viper.SetDefault("CRAWL_WORKERS", 6)
	viper.SetDefault("CRAWL_TIMEOUT", 30) // in seconds, per HTTP request
	viper.SetDefault("MAX_RETRIES", 2)
	viper.SetDefault("RATE_LIMIT_RPS", 4.0)
	viper.SetDefault("RATE_LIMIT_BURST", 4)
	viper.SetDefault("CACHE_TTL_HOURS", 48)
	viper.SetDefault("STRICT_VIEWS", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
