package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, KindStock, c.Service.Kind)
	assert.Equal(t, BackendPostgres, c.Backend.Type)
	assert.Equal(t, "10:00", c.Schedule.Time)
	assert.Equal(t, 30*time.Second, c.AlphaVantage.Timeout)
	assert.Equal(t, 2, c.AlphaVantage.RetryAttempts)
	assert.Equal(t, "https://www.alphavantage.co/query", c.AlphaVantage.BaseURL)
	assert.Equal(t, 5*time.Second, c.Database.ConnectTimeout)
	assert.NoError(t, c.Validate())
}

func TestLoadYAMLKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
environment: production
service:
  kind: iris
backend:
  type: sqlite
schedule:
  time: "07:30"
alphavantage:
  symbol: IBM
  retry_attempts: 5
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, KindIris, c.Service.Kind)
	assert.Equal(t, BackendSQLite, c.Backend.Type)
	assert.Equal(t, "07:30", c.Schedule.Time)
	assert.Equal(t, "IBM", c.AlphaVantage.Symbol)
	assert.Equal(t, 5, c.AlphaVantage.RetryAttempts)
}

func TestLoadYAMLKeepsExplicitZeroValues(t *testing.T) {
	path := writeConfig(t, `
server:
  cors: false
metrics:
  enabled: false
alphavantage:
  retry_attempts: 0
etl:
  timeout: 0s
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.False(t, c.Server.CORS)
	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, 0, c.AlphaVantage.RetryAttempts)
	assert.Equal(t, time.Duration(0), c.ETL.Timeout)
	// untouched keys still get their defaults
	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, "/metrics", c.Metrics.Path)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [\n"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	env := map[string]string{
		"API_KEY":       "secret",
		"STOCK_SYMBOL":  "MSFT",
		"DB_HOST":       "db",
		"DB_PORT":       "6543",
		"DB_NAME":       "stocks",
		"DB_USER":       "etl",
		"SCHEDULE_TIME": "18:15",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"REDIS_ADDR":    "redis:6379",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	require.NoError(t, c.applyEnv(lookup))

	assert.Equal(t, "secret", c.AlphaVantage.APIKey)
	assert.Equal(t, "MSFT", c.AlphaVantage.Symbol)
	assert.Equal(t, 6543, c.Database.Port)
	assert.Equal(t, "18:15", c.Schedule.Time)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.True(t, c.Redis.Enabled)
	assert.NoError(t, c.ValidateETL())

	env["DB_PORT"] = "abc"
	assert.Error(t, c.applyEnv(lookup))
}

func TestValidate(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	c.Service.Kind = "mnist"
	assert.Error(t, c.Validate())
	c.Service.Kind = KindTitanic

	c.Schedule.Time = "25:00"
	assert.Error(t, c.Validate())
	c.Schedule.Time = "09:05"

	c.Backend.Type = "mysql"
	assert.Error(t, c.Validate())
	c.Backend.Type = BackendClickHouse

	assert.NoError(t, c.Validate())
}

func TestValidateStore(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	err = c.ValidateStore()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host")

	c.Database.URL = "postgres://u:p@localhost/db"
	assert.NoError(t, c.ValidateStore())
}

func TestValidateETLNeedsKeyAndSymbol(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.Backend.Type = BackendSQLite

	assert.Error(t, c.ValidateETL())
	c.AlphaVantage.APIKey = "k"
	assert.Error(t, c.ValidateETL())
	c.AlphaVantage.Symbol = "IBM"
	assert.NoError(t, c.ValidateETL())
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "stocks", User: "etl", Password: "p@ss", SSLMode: "disable", ConnectTimeout: 5 * time.Second}
	assert.Equal(t, "postgres://etl:p%40ss@db:5432/stocks?connect_timeout=5&sslmode=disable", d.PostgresDSN())

	d.URL = "postgres://x"
	assert.Equal(t, "postgres://x", d.PostgresDSN())
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("10:00")
	require.NoError(t, err)
	assert.Equal(t, 10, h)
	assert.Equal(t, 0, m)

	for _, bad := range []string{"", "10", "1000", "24:00", "10:60"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
