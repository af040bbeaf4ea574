package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Service kinds served by cmd/app.
const (
	KindStock   = "stock"
	KindIris    = "iris"
	KindTitanic = "titanic"
)

// Store backends.
const (
	BackendPostgres   = "postgres"
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

type Config struct {
	Environment  string             `yaml:"environment" default:"development"`
	Service      ServiceConfig      `yaml:"service"`
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Backend      BackendConfig      `yaml:"backend"`
	Database     DatabaseConfig     `yaml:"database"`
	ClickHouse   ClickHouseConfig   `yaml:"clickhouse"`
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage"`
	ETL          ETLConfig          `yaml:"etl"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Model        ModelConfig        `yaml:"model"`
	Stock        StockConfig        `yaml:"stock"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
}

type ServiceConfig struct {
	Kind string `yaml:"kind" default:"stock"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	CORS            bool          `yaml:"cors" default:"true"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
	Output string `yaml:"output" default:"stdout"`
	// File additionally receives every log line as JSON, e.g. etl.log.
	File string `yaml:"file"`
	// Aggregated error logs are shipped to this Kafka topic when set.
	CollectorTopic    string        `yaml:"collector_topic"`
	CollectorInterval time.Duration `yaml:"collector_interval" default:"30s"`
	CollectorMax      int           `yaml:"collector_max" default:"100"`
}

type MetricsConfig struct {
	Enabled       bool          `yaml:"enabled" default:"true"`
	Path          string        `yaml:"path" default:"/metrics"`
	SlowThreshold time.Duration `yaml:"slow_threshold" default:"500ms"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps" default:"10"`
	Burst   int     `yaml:"burst" default:"20"`
}

type BackendConfig struct {
	Type string `yaml:"type" default:"postgres"`
}

type DatabaseConfig struct {
	// URL takes precedence over the discrete fields.
	URL            string        `yaml:"url"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port" default:"5432"`
	Name           string        `yaml:"name"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	SSLMode        string        `yaml:"sslmode" default:"disable"`
	Path           string        `yaml:"path" default:"stock_data.db"` // sqlite
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"5s"`
	MaxOpenConns   int           `yaml:"max_open_conns" default:"5"`
}

type ClickHouseConfig struct {
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"default"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	UseHTTP      bool          `yaml:"use_http"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
}

type AlphaVantageConfig struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url" default:"https://www.alphavantage.co/query"`
	Symbol        string        `yaml:"symbol"`
	Timeout       time.Duration `yaml:"timeout" default:"30s"`
	RetryAttempts int           `yaml:"retry_attempts" default:"2"`
	RetryBackoff  time.Duration `yaml:"retry_backoff" default:"2s"`
}

type ETLConfig struct {
	Timeout time.Duration `yaml:"timeout" default:"2m"`
	// LockTTL bounds the Redis run lock; ignored when Redis is disabled.
	LockTTL time.Duration `yaml:"lock_ttl" default:"10m"`
}

type ScheduleConfig struct {
	Time       string `yaml:"time" default:"10:00"`
	RunOnStart bool   `yaml:"run_on_start"`
}

type ModelConfig struct {
	Path string `yaml:"path"`
}

type StockConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"stock.bars"`
	RequiredAcks int           `yaml:"required_acks" default:"1"`
	Compression  string        `yaml:"compression" default:"snappy"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"50ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

// Load fills defaults and overlays the YAML file on them.
// A missing file is not an error: defaults and environment still apply.
func Load(path string) (*Config, error) {
	var c Config
	// defaults first so explicit zero values in the file survive
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides it with environment variables
// and validates the result.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("API_KEY", &c.AlphaVantage.APIKey)
	str("STOCK_SYMBOL", &c.AlphaVantage.Symbol)
	str("DATABASE_URL", &c.Database.URL)
	str("DB_HOST", &c.Database.Host)
	str("DB_NAME", &c.Database.Name)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("SCHEDULE_TIME", &c.Schedule.Time)
	str("BACKEND", &c.Backend.Type)
	str("SERVICE_KIND", &c.Service.Kind)
	str("MODEL_PATH", &c.Model.Path)

	if v, ok := lookup("DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_PORT: %w", err)
		}
		c.Database.Port = port
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	return nil
}

// Validate checks the settings every process needs.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Service.Kind {
	case KindStock, KindIris, KindTitanic:
	default:
		return fmt.Errorf("service.kind must be one of stock, iris, titanic, got '%s'", c.Service.Kind)
	}
	switch c.Backend.Type {
	case BackendPostgres, BackendSQLite, BackendClickHouse:
	default:
		return fmt.Errorf("backend.type must be one of postgres, sqlite, clickhouse, got '%s'", c.Backend.Type)
	}
	if _, _, err := ParseClock(c.Schedule.Time); err != nil {
		return fmt.Errorf("schedule.time: %w", err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// ValidateStore checks the settings needed to open the configured store.
func (c *Config) ValidateStore() error {
	switch c.Backend.Type {
	case BackendPostgres:
		if c.Database.URL != "" {
			return nil
		}
		var missing []string
		for name, v := range map[string]string{"host": c.Database.Host, "name": c.Database.Name, "user": c.Database.User} {
			if v == "" {
				missing = append(missing, "database."+name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing database configuration: %s", strings.Join(missing, ", "))
		}
	case BackendSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case BackendClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required")
		}
	}
	return nil
}

// ValidateETL checks the settings needed to run the ETL job.
func (c *Config) ValidateETL() error {
	if c.AlphaVantage.APIKey == "" {
		return fmt.Errorf("alphavantage.api_key is required")
	}
	if c.AlphaVantage.Symbol == "" {
		return fmt.Errorf("alphavantage.symbol is required")
	}
	return c.ValidateStore()
}

// PostgresDSN builds a lib/pq connection string from the database settings.
func (d DatabaseConfig) PostgresDSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	if d.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(d.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseClock parses a 24h "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}
