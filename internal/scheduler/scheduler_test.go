package scheduler

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	applogger "StockCast/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by cron goroutines while the test reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDailySpec(t *testing.T) {
	assert.Equal(t, "0 10 * * *", DailySpec(10, 0))
	assert.Equal(t, "30 7 * * *", DailySpec(7, 30))

	sched, err := cron.ParseStandard(DailySpec(10, 0))
	require.NoError(t, err)
	from := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	// exactly once per day
	assert.Equal(t, time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), sched.Next(from))
	assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), sched.Next(from.Add(-time.Minute)))
}

func TestNewRejectsBadClock(t *testing.T) {
	for _, clock := range []string{"", "25:00", "10:61", "ten"} {
		_, err := New(clock, JobFunc(func(context.Context) {}), nil)
		assert.Error(t, err, clock)
	}
}

func TestNextTrigger(t *testing.T) {
	s, err := New("10:00", JobFunc(func(context.Context) {}), nil, WithLocation(time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "0 10 * * *", s.Spec())

	s.Start(context.Background())
	defer func() { _ = s.Stop(context.Background()) }()

	next := s.Next().In(time.UTC)
	assert.Equal(t, 10, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))
	assert.True(t, next.Before(time.Now().Add(24*time.Hour+time.Minute)))
}

func TestRunOnStart(t *testing.T) {
	ran := make(chan struct{}, 1)
	s, err := New("10:00", JobFunc(func(context.Context) { ran <- struct{}{} }), nil, WithRunOnStart(true))
	require.NoError(t, err)

	s.Start(context.Background())
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	require.NoError(t, s.Stop(context.Background()))
}

func TestPanicIsRecovered(t *testing.T) {
	var buf lockedBuffer
	l := applogger.NewWriter(&buf)
	s, err := New("10:00", JobFunc(func(context.Context) { panic("boom") }), l, WithRunOnStart(true))
	require.NoError(t, err)

	s.Start(context.Background())
	require.NoError(t, s.Stop(context.Background()))
	assert.Contains(t, buf.String(), "cron: panic")
}

func TestStopWaitsForRunningJob(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})
	job := JobFunc(func(ctx context.Context) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		// detached from the caller's cancellation
		if ctx.Err() == nil {
			finished.Store(true)
		}
	})
	s, err := New("10:00", job, nil, WithRunOnStart(true))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	<-started
	cancel()

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, finished.Load())
}

func TestStopTimesOut(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s, err := New("10:00", JobFunc(func(context.Context) {
		close(started)
		<-release
	}), nil, WithRunOnStart(true))
	require.NoError(t, err)

	s.Start(context.Background())
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
	close(release)
}

func TestRunBlocksUntilCancelled(t *testing.T) {
	s, err := New("10:00", JobFunc(func(context.Context) {}), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Second) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
