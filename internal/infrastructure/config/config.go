package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "CONTACTDESK"

// DotEnvFiles are loaded, in order, before configuration is read.
// Variables already present in the environment are never overwritten.
var DotEnvFiles = []string{".env.local", ".env"}

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Telemetry   TelemetryConfig
	CustomerAPI CustomerAPIConfig
	Manager     ManagerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	URL             string // full connection URL, wins over the discrete fields
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	MigrationsPath  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	CustomerStore    string // memory or database
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// CustomerAPIConfig points the customer manager at a REST collection
type CustomerAPIConfig struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
}

// ManagerConfig holds the customer manager's timings and mirror storage
type ManagerConfig struct {
	CacheCopyDelay     time.Duration
	DraftInterval      time.Duration
	MessageTTL         time.Duration
	SearchDebounce     time.Duration
	StaleCheckInterval time.Duration
	SupersedeTimers    bool

	DurableBackend string // redis, sql or memory
	StoragePath    string // sqlite file for the sql backend
	Namespace      string
	SessionTTL     time.Duration
	AllowFallback  bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CONTACTDESK_ prefix (e.g., CONTACTDESK_DATABASE_PASSWORD)
// 2. DATABASE_URL for the connection URL
// 3. .env.local / .env files
// 4. config.toml
// 5. Built-in defaults
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFiles...); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	v.SetDefault("manager.allow_fallback", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			URL:             v.GetString("database.url"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			MigrationsPath:  v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			CustomerStore:    v.GetString("http.customer_store"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		CustomerAPI: CustomerAPIConfig{
			Endpoint:  v.GetString("customer_api.endpoint"),
			Timeout:   v.GetDuration("customer_api.timeout"),
			UserAgent: v.GetString("customer_api.user_agent"),
		},
		Manager: ManagerConfig{
			CacheCopyDelay:     v.GetDuration("manager.cache_copy_delay"),
			DraftInterval:      v.GetDuration("manager.draft_interval"),
			MessageTTL:         v.GetDuration("manager.message_ttl"),
			SearchDebounce:     v.GetDuration("manager.search_debounce"),
			StaleCheckInterval: v.GetDuration("manager.stale_check_interval"),
			SupersedeTimers:    v.GetBool("manager.supersede_timers"),
			DurableBackend:     v.GetString("manager.durable_backend"),
			StoragePath:        v.GetString("manager.storage_path"),
			Namespace:          v.GetString("manager.namespace"),
			SessionTTL:         v.GetDuration("manager.session_ttl"),
			AllowFallback:      v.GetBool("manager.allow_fallback"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv loads the given files, skipping the ones that do not exist
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "contactdesk"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "contactdesk"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "contactdesk.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.HTTP.CustomerStore == "" {
		cfg.HTTP.CustomerStore = "database"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "contactdesk"
	}
	if cfg.CustomerAPI.Endpoint == "" {
		cfg.CustomerAPI.Endpoint = "https://jsonplaceholder.typicode.com/users"
	}
	if cfg.CustomerAPI.Timeout == 0 {
		cfg.CustomerAPI.Timeout = 10 * time.Second
	}
	if cfg.CustomerAPI.UserAgent == "" {
		cfg.CustomerAPI.UserAgent = "contactdesk-custmgr"
	}
	applyManagerDefaults(&cfg.Manager)
}

func applyManagerDefaults(m *ManagerConfig) {
	if m.CacheCopyDelay == 0 {
		m.CacheCopyDelay = 500 * time.Millisecond
	}
	if m.DraftInterval == 0 {
		m.DraftInterval = 2 * time.Second
	}
	if m.MessageTTL == 0 {
		m.MessageTTL = 3 * time.Second
	}
	if m.SearchDebounce == 0 {
		m.SearchDebounce = 300 * time.Millisecond
	}
	if m.StaleCheckInterval == 0 {
		m.StaleCheckInterval = 5 * time.Second
	}
	if m.DurableBackend == "" {
		m.DurableBackend = "sql"
	}
	if m.StoragePath == "" {
		m.StoragePath = "custmgr.db"
	}
	if m.Namespace == "" {
		m.Namespace = "custmgr"
	}
	if m.SessionTTL == 0 {
		m.SessionTTL = 30 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.HTTP.CustomerStore {
	case "memory", "database":
	default:
		return fmt.Errorf("http.customer_store must be memory or database, got %q", c.HTTP.CustomerStore)
	}

	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" && c.Database.URL == "" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if _, err := url.ParseRequestURI(c.CustomerAPI.Endpoint); err != nil {
		return fmt.Errorf("customer_api.endpoint is not a valid URL: %w", err)
	}

	return c.Manager.validate()
}

func (m *ManagerConfig) validate() error {
	switch m.DurableBackend {
	case "redis", "sql", "memory":
	default:
		return fmt.Errorf("manager.durable_backend must be redis, sql or memory, got %q", m.DurableBackend)
	}
	for name, d := range map[string]time.Duration{
		"manager.cache_copy_delay":     m.CacheCopyDelay,
		"manager.draft_interval":       m.DraftInterval,
		"manager.message_ttl":          m.MessageTTL,
		"manager.search_debounce":      m.SearchDebounce,
		"manager.stale_check_interval": m.StaleCheckInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values.
// An explicit URL wins over the discrete fields.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
