package database

import "time"

// Drivers registered by this package.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds relational database settings.
type ClientConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// WithPostgres selects lib/pq with the given connection string.
func WithPostgres(dsn string) ClientOption {
	return func(c *ClientConfig) {
		c.Driver = DriverPostgres
		c.DSN = dsn
	}
}

// WithSQLite selects modernc sqlite on the given file path.
func WithSQLite(path string) ClientOption {
	return func(c *ClientConfig) {
		c.Driver = DriverSQLite
		c.DSN = path
	}
}

// WithMaxConnections sets max open and idle connections.
func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(c *ClientConfig) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
	}
}

// WithPingTimeout bounds the startup connectivity check.
func WithPingTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.PingTimeout = d
	}
}
