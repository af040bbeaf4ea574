package server

import (
	"context"
	"net"
	"testing"
	"time"

	"StockCast/internal/scheduler"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFailsWhenPortIsTaken(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	srv := xhttp.NewServer(nil,
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(busy.Addr().(*net.TCPAddr).Port),
		xhttp.WithMetrics(false, "", 0),
	)
	app := New(&config.Config{}, nil, WithHTTPServer(srv))

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept waiting after a failed bind")
	}
}

func TestRunStopsScheduler(t *testing.T) {
	ran := make(chan struct{}, 1)
	s, err := scheduler.New("10:00", scheduler.JobFunc(func(context.Context) { ran <- struct{}{} }), nil,
		scheduler.WithRunOnStart(true))
	require.NoError(t, err)

	app := New(&config.Config{}, nil, WithScheduler(s))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job did not run")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
