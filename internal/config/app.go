package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
	Migrate  bool   `mapstructure:"migrate"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type Logging struct {
	Level string `mapstructure:"level"`
}

// Conversion holds the pivot constants used until the pivot_rates table
// provides values.
type Conversion struct {
	EURToUSD float64 `mapstructure:"eur_to_usd"`
	SDRToUSD float64 `mapstructure:"sdr_to_usd"`
	MinYear  int     `mapstructure:"min_year"`
	MaxYear  int     `mapstructure:"max_year"`
}

// Defaults fills fields a client leaves out of a request.
type Defaults struct {
	Amount        float64 `mapstructure:"amount"`
	Country       string  `mapstructure:"country"`
	FromIndicator string  `mapstructure:"from_indicator"`
	ToIndicator   string  `mapstructure:"to_indicator"`
	AuditLimit    int     `mapstructure:"audit_limit"`
	MaxAuditLimit int     `mapstructure:"max_audit_limit"`
}

type WebSocket struct {
	ReadLimitBytes        int64    `mapstructure:"read_limit_bytes"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds"`
	WriteTimeoutSeconds   int      `mapstructure:"write_timeout_seconds"`
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
}

func (w WebSocket) RequestTimeout() time.Duration {
	return time.Duration(w.RequestTimeoutSeconds) * time.Second
}

func (w WebSocket) WriteTimeout() time.Duration {
	return time.Duration(w.WriteTimeoutSeconds) * time.Second
}

type Cache struct {
	Enabled    bool  `mapstructure:"enabled"`
	MaxItems   int64 `mapstructure:"max_items"`
	TTLSeconds int   `mapstructure:"ttl_seconds"`
}

const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

type Lock struct {
	Backend       string `mapstructure:"backend"`
	ExpirySeconds int    `mapstructure:"expiry_seconds"`
	Retries       int    `mapstructure:"retries"`
	RetryDelayMs  int    `mapstructure:"retry_delay_ms"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Scheduler struct {
	PivotRefreshSec int `mapstructure:"pivot_refresh_sec"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	DbServer   DbServer   `mapstructure:"db_server"`
	Logging    Logging    `mapstructure:"logging"`
	Conversion Conversion `mapstructure:"conversion"`
	Defaults   Defaults   `mapstructure:"defaults"`
	WebSocket  WebSocket  `mapstructure:"websocket"`
	Cache      Cache      `mapstructure:"cache"`
	Lock       Lock       `mapstructure:"lock"`
	Redis      Redis      `mapstructure:"redis"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
}

// Init loads config.yaml from the working directory, with an optional .env.
func Init() (*AppConfig, error) {
	return Load("config.yaml")
}

func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.Lock.Backend != LockBackendLocal && cfg.Lock.Backend != LockBackendRedis {
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Lock.Backend)
	}
	if cfg.Defaults.AuditLimit > cfg.Defaults.MaxAuditLimit {
		cfg.Defaults.AuditLimit = cfg.Defaults.MaxAuditLimit
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("db_server.migrate", true)
	v.SetDefault("logging.level", "info")

	v.SetDefault("conversion.eur_to_usd", 1.1)
	v.SetDefault("conversion.sdr_to_usd", 1.35)
	v.SetDefault("conversion.min_year", 1950)
	v.SetDefault("conversion.max_year", 2100)

	v.SetDefault("defaults.amount", 100)
	v.SetDefault("defaults.country", "Vietnam")
	v.SetDefault("defaults.from_indicator", "Domestic currency per US Dollar")
	v.SetDefault("defaults.to_indicator", "US Dollar per domestic currency")
	v.SetDefault("defaults.audit_limit", 10)
	v.SetDefault("defaults.max_audit_limit", 100)

	v.SetDefault("websocket.read_limit_bytes", 64*1024)
	v.SetDefault("websocket.request_timeout_seconds", 10)
	v.SetDefault("websocket.write_timeout_seconds", 5)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_items", 4096)
	v.SetDefault("cache.ttl_seconds", 600)

	v.SetDefault("lock.backend", LockBackendLocal)
	v.SetDefault("lock.expiry_seconds", 8)
	v.SetDefault("lock.retries", 32)
	v.SetDefault("lock.retry_delay_ms", 50)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("scheduler.pivot_refresh_sec", 300)
}

func bindEnv(v *viper.Viper) {
	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	_ = v.BindEnv("http_server.port", "HTTP_PORT")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	// redis / lock env vars
	_ = v.BindEnv("lock.backend", "LOCK_BACKEND")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
}
