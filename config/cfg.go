package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/analytics"
	httpapi "github.com/jekabolt/grbpwr-analytics/internal/api/http"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/auth"
	"github.com/jekabolt/grbpwr-analytics/internal/cache"
	"github.com/jekabolt/grbpwr-analytics/internal/ordercleanup"
	"github.com/jekabolt/grbpwr-analytics/internal/ratelimit"
	"github.com/jekabolt/grbpwr-analytics/internal/store"
	"github.com/jekabolt/grbpwr-analytics/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the global configuration for the service.
type Config struct {
	DB                store.Config        `mapstructure:"db"`
	Redis             cache.RedisConfig   `mapstructure:"redis"`
	Logger            log.Config          `mapstructure:"logger"`
	HTTP              httpapi.Config      `mapstructure:"http"`
	Auth              auth.Config         `mapstructure:"auth"`
	Analytics         analytics.Config    `mapstructure:"analytics"`
	OrderCleanup      ordercleanup.Config `mapstructure:"order_cleanup"`
	CheckoutRateLimit ratelimit.Config    `mapstructure:"checkout_rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.dialect", string(store.DialectMySQL))
	v.SetDefault("db.money_columns", string(store.MoneyAuto))
	v.SetDefault("db.automigrate", true)
	v.SetDefault("http.address", "0.0.0.0")
	v.SetDefault("http.port", "8081")
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("auth.jwt_ttl", "24h")
	v.SetDefault("analytics.cache_ttl", cache.DefaultTTL)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("order_cleanup.worker_interval", 15*time.Minute)
	v.SetDefault("order_cleanup.pending_threshold", 24*time.Hour)
	v.SetDefault("checkout_rate_limit.max", 100)
	v.SetDefault("checkout_rate_limit.window", time.Hour)
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values. A .env file
// in the working directory is loaded first when present.
// Nested keys use double underscore, e.g. DB__DSN for db.dsn; the flat names
// bound in bindEnvVars work as well.
func LoadConfig(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %v", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	setDefaults(v)
	bindEnvVars(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/grbpwr-analytics")
		v.AddConfigPath("/etc/grbpwr-analytics")
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	// Build a MySQL DSN from discrete env vars when none is configured.
	if config.DB.DSN == "" && config.DB.Dialect == string(store.DialectMySQL) {
		host := os.Getenv("MYSQL_HOST")
		port := os.Getenv("MYSQL_PORT")
		user := os.Getenv("MYSQL_USER")
		password := os.Getenv("MYSQL_PASSWORD")
		database := os.Getenv("MYSQL_DATABASE")
		if host != "" && user != "" && database != "" {
			if port == "" {
				port = "3306"
			}
			config.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
				user, password, host, port, database)
			if config.DB.TLSCAPath != "" {
				config.DB.DSN += "&tls=custom"
			}
		}
	}

	return &config, nil
}

// bindEnvVars binds flat environment variable names to config keys.
func bindEnvVars(v *viper.Viper) {
	// DB
	v.BindEnv("db.dsn", "DB_DSN", "MYSQL_DSN")
	v.BindEnv("db.dialect", "DB_DIALECT")
	v.BindEnv("db.automigrate", "DB_AUTOMIGRATE")
	v.BindEnv("db.max_open_connections", "DB_MAX_OPEN_CONNECTIONS")
	v.BindEnv("db.max_idle_connections", "DB_MAX_IDLE_CONNECTIONS")
	v.BindEnv("db.tls_ca_path", "DB_TLS_CA_PATH")
	v.BindEnv("db.money_columns", "DB_MONEY_COLUMNS")

	// Redis
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.prefix", "REDIS_PREFIX")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("http.address", "HTTP_ADDRESS")
	v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
	v.BindEnv("http.request_timeout", "HTTP_REQUEST_TIMEOUT")

	// Auth
	v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET")
	v.BindEnv("auth.jwt_ttl", "AUTH_JWT_TTL")

	// Analytics
	v.BindEnv("analytics.cache_ttl", "ANALYTICS_CACHE_TTL")
	v.BindEnv("analytics.timezone", "ANALYTICS_TIMEZONE")

	// Order cleanup (stale pending checkouts)
	v.BindEnv("order_cleanup.enabled", "ORDER_CLEANUP_ENABLED")
	v.BindEnv("order_cleanup.worker_interval", "ORDER_CLEANUP_WORKER_INTERVAL")
	v.BindEnv("order_cleanup.pending_threshold", "ORDER_CLEANUP_PENDING_THRESHOLD")

	// Checkout rate limit per client IP
	v.BindEnv("checkout_rate_limit.max", "CHECKOUT_RATE_LIMIT_MAX")
	v.BindEnv("checkout_rate_limit.window", "CHECKOUT_RATE_LIMIT_WINDOW")
}
