package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	cfg := ClientConfig{
		Host:        "ch",
		Port:        9000,
		Database:    "stocks",
		User:        "default",
		Password:    "s3cret",
		DialTimeout: 5 * time.Second,
		ReadTimeout: 30 * time.Second,
	}
	assert.Equal(t, "clickhouse://default:s3cret@ch:9000/stocks?dial_timeout=5s&read_timeout=30s", BuildDSN(cfg))

	cfg.UseHTTP = true
	cfg.Port = 8123
	cfg.DialTimeout, cfg.ReadTimeout = 0, 0
	cfg.MaxExecTime = time.Minute
	assert.Equal(t, "http://default:s3cret@ch:8123/stocks?max_execution_time=60", BuildDSN(cfg))
}

func TestNewClientNeedsHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
