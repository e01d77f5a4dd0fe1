/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables, with an
 * optional .env file for local development.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the finance API.
// These values are loaded from environment variables.
type Config struct {
	ServerPort     string `mapstructure:"PORT"`
	Environment    string `mapstructure:"ENVIRONMENT"`
	FrontendOrigin string `mapstructure:"FRONTEND_ORIGIN"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	UserEventQueue string `mapstructure:"USER_EVENT_QUEUE"`

	IdentityAPIBaseURL string `mapstructure:"IDENTITY_API_BASE_URL"`
	IdentityAPIKey     string `mapstructure:"IDENTITY_API_KEY"`
	IdentityJWKSURL    string `mapstructure:"IDENTITY_JWKS_URL"`

	SessionCookieName   string `mapstructure:"SESSION_COOKIE_NAME"`
	SessionCookieSecret string `mapstructure:"SESSION_COOKIE_SECRET"`

	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RateLimitWindowMin   int    `mapstructure:"RATE_LIMIT_WINDOW_MINUTES"`
	RateLimitGeneralMax  int    `mapstructure:"RATE_LIMIT_GENERAL_MAX"`
	RateLimitAuthMax     int    `mapstructure:"RATE_LIMIT_AUTH_MAX"`
	RateLimitWriteMax    int    `mapstructure:"RATE_LIMIT_WRITE_MAX"`

	CacheTTLSeconds int `mapstructure:"CACHE_TTL_SECONDS"`
}

// IsProduction reports whether the service runs with production hardening
// (secure cookies, redacted error responses).
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// RateLimitWindow returns the fixed-window duration shared by every tier.
func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMin) * time.Minute
}

// CacheTTL returns the default response cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("USER_EVENT_QUEUE", "finance_api.user_events")
	viper.SetDefault("SESSION_COOKIE_NAME", "ft_session")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "fintrackr:rate_limit")
	viper.SetDefault("RATE_LIMIT_WINDOW_MINUTES", 15)
	viper.SetDefault("RATE_LIMIT_GENERAL_MAX", 100)
	viper.SetDefault("RATE_LIMIT_AUTH_MAX", 5)
	viper.SetDefault("RATE_LIMIT_WRITE_MAX", 20)
	viper.SetDefault("CACHE_TTL_SECONDS", 300)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("ENVIRONMENT")
	_ = viper.BindEnv("FRONTEND_ORIGIN")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("USER_EVENT_QUEUE")
	_ = viper.BindEnv("IDENTITY_API_BASE_URL")
	_ = viper.BindEnv("IDENTITY_API_KEY")
	_ = viper.BindEnv("IDENTITY_JWKS_URL")
	_ = viper.BindEnv("SESSION_COOKIE_NAME")
	_ = viper.BindEnv("SESSION_COOKIE_SECRET")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RATE_LIMIT_WINDOW_MINUTES")
	_ = viper.BindEnv("RATE_LIMIT_GENERAL_MAX")
	_ = viper.BindEnv("RATE_LIMIT_AUTH_MAX")
	_ = viper.BindEnv("RATE_LIMIT_WRITE_MAX")
	_ = viper.BindEnv("CACHE_TTL_SECONDS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.FrontendOrigin = strings.TrimSpace(config.FrontendOrigin)
	config.DatabaseURL = strings.TrimSpace(config.DatabaseURL)
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RabbitMQURL = strings.TrimSpace(config.RabbitMQURL)
	config.IdentityAPIBaseURL = strings.TrimSuffix(strings.TrimSpace(config.IdentityAPIBaseURL), "/")
	config.IdentityJWKSURL = strings.TrimSpace(config.IdentityJWKSURL)
	config.SessionCookieName = strings.TrimSpace(config.SessionCookieName)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)

	if config.SessionCookieName == "" {
		config.SessionCookieName = "ft_session"
	}
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "fintrackr:rate_limit"
	}
	if config.RateLimitWindowMin <= 0 {
		config.RateLimitWindowMin = 15
	}
	if config.RateLimitGeneralMax <= 0 {
		config.RateLimitGeneralMax = 100
	}
	if config.RateLimitAuthMax <= 0 {
		config.RateLimitAuthMax = 5
	}
	if config.RateLimitWriteMax <= 0 {
		config.RateLimitWriteMax = 20
	}
	if config.CacheTTLSeconds <= 0 {
		config.CacheTTLSeconds = 300
	}
	if config.IdentityJWKSURL == "" && config.IdentityAPIBaseURL != "" {
		config.IdentityJWKSURL = config.IdentityAPIBaseURL + "/.well-known/jwks.json"
	}

	return config, config.validate()
}

func (c Config) validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.FrontendOrigin == "" {
		missing = append(missing, "FRONTEND_ORIGIN")
	}
	if c.IdentityAPIBaseURL == "" {
		missing = append(missing, "IDENTITY_API_BASE_URL")
	}
	if c.IdentityAPIKey == "" {
		missing = append(missing, "IDENTITY_API_KEY")
	}
	if c.SessionCookieSecret == "" {
		missing = append(missing, "SESSION_COOKIE_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
