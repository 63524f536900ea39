package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all gateway configuration
type Config struct {
	App     AppConfig
	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Log     LogConfig
	HTTP    HTTPConfig
	Receipt ReceiptConfig
	Image   ImageConfig
	Store   StoreConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// BackendConfig points the gateway at the remote bookstore REST API
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	// DemoMode authenticates against the built-in demo credential set instead of the backend
	DemoMode bool
	// DemoFallback uses the demo credential set when the backend cannot be reached
	DemoFallback bool
}

// SessionConfig controls the per-tab ephemeral storage
type SessionConfig struct {
	Store      string // memory or redis
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// RedisConfig holds Redis connection settings for the redis session store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds the secret used to sign demo tokens
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	CORSAllowOrigins []string
	MaxUploadBytes   int64
	SwaggerEnabled   bool
}

// ReceiptConfig configures PDF receipt rendering
type ReceiptConfig struct {
	Currency      string
	ChromeURL     string // remote Chrome DevTools endpoint; empty launches a local browser
	NoSandbox     bool
	RenderTimeout time.Duration
}

// ImageConfig bounds uploaded item images and store logos
type ImageConfig struct {
	MaxBytes     int64
	MaxDimension int
	Quality      int
}

// StoreConfig holds store-level display settings
type StoreConfig struct {
	LowStockThreshold int
}

// Load reads configuration from an optional config file and BOOKSTORE_* environment variables.
// Priority (highest to lowest): environment, config file, built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("BOOKSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Backend: BackendConfig{
			BaseURL:      strings.TrimRight(v.GetString("backend.base_url"), "/"),
			Timeout:      v.GetDuration("backend.timeout"),
			DemoMode:     v.GetBool("backend.demo_mode"),
			DemoFallback: v.GetBool("backend.demo_fallback"),
		},
		Session: SessionConfig{
			Store:      strings.ToLower(v.GetString("session.store")),
			TTL:        v.GetDuration("session.ttl"),
			CookieName: v.GetString("session.cookie_name"),
			Secure:     v.GetBool("session.secure"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			MaxUploadBytes:   v.GetInt64("http.max_upload_bytes"),
			SwaggerEnabled:   v.GetBool("http.swagger_enabled"),
		},
		Receipt: ReceiptConfig{
			Currency:      v.GetString("receipt.currency"),
			ChromeURL:     v.GetString("receipt.chrome_url"),
			NoSandbox:     v.GetBool("receipt.no_sandbox"),
			RenderTimeout: v.GetDuration("receipt.render_timeout"),
		},
		Image: ImageConfig{
			MaxBytes:     v.GetInt64("image.max_bytes"),
			MaxDimension: v.GetInt("image.max_dimension"),
			Quality:      v.GetInt("image.quality"),
		},
		Store: StoreConfig{
			LowStockThreshold: v.GetInt("store.low_stock_threshold"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bookstore-web")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("backend.base_url", "https://bookstorebackend-0n75.onrender.com/api")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.demo_mode", false)
	v.SetDefault("backend.demo_fallback", false)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.cookie_name", "bookstore_tab")
	v.SetDefault("session.secure", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.cors_allow_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("http.max_upload_bytes", 10<<20)
	v.SetDefault("http.swagger_enabled", true)

	v.SetDefault("receipt.currency", "GHS")
	v.SetDefault("receipt.chrome_url", "")
	v.SetDefault("receipt.no_sandbox", false)
	v.SetDefault("receipt.render_timeout", 30*time.Second)

	v.SetDefault("image.max_bytes", 5<<20)
	v.SetDefault("image.max_dimension", 800)
	v.SetDefault("image.quality", 80)

	v.SetDefault("store.low_stock_threshold", 10)
}

// Validate rejects configurations the gateway cannot run with
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Session.Store != "memory" && c.Session.Store != "redis" {
		return fmt.Errorf("session.store must be memory or redis, got %q", c.Session.Store)
	}
	if c.IsProduction() && c.JWT.Secret == "" && (c.Backend.DemoMode || c.Backend.DemoFallback) {
		return errors.New("jwt.secret is required for demo authentication in production")
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("image.quality must be between 1 and 100, got %d", c.Image.Quality)
	}
	if c.Store.LowStockThreshold < 0 {
		return errors.New("store.low_stock_threshold must not be negative")
	}
	return nil
}

// IsProduction reports whether the gateway runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// JWTSecret returns the demo signing secret, falling back to a development key outside production
func (c *Config) JWTSecret() []byte {
	if c.JWT.Secret == "" {
		return []byte("default_super_secret_key")
	}
	return []byte(c.JWT.Secret)
}
