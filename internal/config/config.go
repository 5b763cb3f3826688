package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Cart      CartConfig
	Redis     RedisConfig
	Form      FormConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port            string        `validate:"required,numeric"`
	Host            string        `validate:"required"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
	Output string `validate:"required"`
}

type DatabaseConfig struct {
	Driver string `validate:"oneof=sqlite postgres"`
	DSN    string `validate:"required"`
}

type CartConfig struct {
	Store string `validate:"oneof=memory redis"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
	TTL      time.Duration
}

// FormConfig names the fields of the bulk order form
type FormConfig struct {
	Prefix       string `validate:"required"`
	ArticleRole  string `validate:"required,nefield=QuantityRole"`
	QuantityRole string `validate:"required"`
	DefaultRows  int    `validate:"gt=0"`
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64 `validate:"gt=0"`
	Burst             int     `validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from an optional config.toml and from environment
// variables prefixed with FASTORDER_ (e.g. FASTORDER_SERVER_PORT)
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/fast-order")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds the configuration from an already prepared viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("FASTORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			Host:            v.GetString("server.host"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
			Output: v.GetString("log.output"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Cart: CartConfig{
			Store: v.GetString("cart.store"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Form: FormConfig{
			Prefix:       v.GetString("form.prefix"),
			ArticleRole:  v.GetString("form.article_role"),
			QuantityRole: v.GetString("form.quantity_role"),
			DefaultRows:  v.GetInt("form.default_rows"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("ratelimit.enabled"),
			RequestsPerSecond: v.GetFloat64("ratelimit.requests_per_second"),
			Burst:             v.GetInt("ratelimit.burst"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:fast_order.db?cache=shared")

	v.SetDefault("cart.store", "memory")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 72*time.Hour)

	v.SetDefault("form.prefix", "fast-order-")
	v.SetDefault("form.article_role", "article-")
	v.SetDefault("form.quantity_role", "qtty-")
	v.SetDefault("form.default_rows", 5)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_second", 2.0)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s failed on %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	if c.Cart.Store == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required for the redis cart store")
	}

	return nil
}
