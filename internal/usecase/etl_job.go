package usecase

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	pkgcache "StockCast/pkg/cache"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
)

// ETL run outcomes, used as metric labels.
const (
	ETLSuccess = "success"
	ETLEmpty   = "empty"
	ETLSkipped = "skipped"
	ETLFailed  = "failed"
)

// ETLJob fetches the daily series for one symbol and stores new bars.
type ETLJob struct {
	source    drepo.BarSource
	store     drepo.BarStore
	publisher drepo.BarPublisher
	locker    drepo.Locker
	metrics   drepo.Metrics
	l         *applogger.Logger

	symbol  string
	lockTTL time.Duration
	timeout time.Duration
}

// ETLOption configures ETLJob.
type ETLOption func(*ETLJob)

// WithPublisher announces ingested bars after each successful commit.
func WithPublisher(p drepo.BarPublisher) ETLOption {
	return func(j *ETLJob) { j.publisher = p }
}

// WithLocker guards runs with a lock held for at most ttl.
func WithLocker(lk drepo.Locker, ttl time.Duration) ETLOption {
	return func(j *ETLJob) {
		j.locker = lk
		j.lockTTL = ttl
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m drepo.Metrics) ETLOption {
	return func(j *ETLJob) { j.metrics = m }
}

// WithRunTimeout bounds a single Run.
func WithRunTimeout(d time.Duration) ETLOption {
	return func(j *ETLJob) { j.timeout = d }
}

func NewETLJob(source drepo.BarSource, store drepo.BarStore, symbol string, l *applogger.Logger, opts ...ETLOption) *ETLJob {
	j := &ETLJob{
		source:  source,
		store:   store,
		symbol:  symbol,
		l:       l,
		metrics: metrics.Nop{},
		lockTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.l == nil {
		j.l = applogger.Nop()
	}
	j.l = j.l.With(applogger.String("symbol", symbol))
	return j
}

// LockKey is the run lock key for this job's symbol.
func (j *ETLJob) LockKey() string {
	return pkgcache.GenerateKey("etl", j.symbol)
}

// RunOnce performs fetch, store and publish. An empty provider response is a
// successful run with nothing stored.
func (j *ETLJob) RunOnce(ctx context.Context) (models.ETLResult, error) {
	start := time.Now()
	res := models.ETLResult{Symbol: j.symbol}

	if j.locker != nil {
		ok, err := j.locker.TryLock(ctx, j.LockKey(), j.lockTTL)
		switch {
		case err != nil:
			j.l.Warn("run lock unavailable, continuing unlocked", applogger.Error(err))
		case !ok:
			j.l.Warn("another ETL run holds the lock, skipping", applogger.String("key", j.LockKey()))
			res.Skipped = true
			res.Duration = time.Since(start)
			j.metrics.RecordETLRun(ETLSkipped)
			return res, nil
		default:
			defer func() {
				// release even if ctx was cancelled mid-run
				uctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := j.locker.Unlock(uctx, j.LockKey()); err != nil {
					j.l.Warn("release run lock", applogger.Error(err))
				}
			}()
		}
	}

	bars, err := j.source.FetchDaily(ctx, j.symbol)
	if err != nil {
		j.fail("fetch")
		return res, fmt.Errorf("fetch %s: %w", j.symbol, err)
	}
	res.Fetched = len(bars)

	if len(bars) == 0 {
		j.l.Warn("no data fetched from API")
		res.Duration = time.Since(start)
		j.metrics.RecordETLRun(ETLEmpty)
		return res, nil
	}
	j.l.Info("fetched daily records", applogger.Int("records", len(bars)))

	inserted, err := j.store.UpsertBars(ctx, bars)
	if err != nil {
		j.fail("store")
		return res, fmt.Errorf("store %s: %w", j.symbol, err)
	}
	res.Inserted = inserted

	if j.publisher != nil && inserted > 0 {
		if err := j.publisher.PublishBars(ctx, j.symbol, bars); err != nil {
			j.metrics.RecordError("publish")
			j.l.Warn("publish ingested bars failed", applogger.Error(err))
		}
	}

	res.Duration = time.Since(start)
	j.metrics.RecordETLRun(ETLSuccess)
	j.metrics.RecordBars(j.symbol, res.Fetched, res.Inserted)
	j.metrics.RecordLastClose(j.symbol, bars[len(bars)-1].Close.InexactFloat64())
	j.metrics.RecordLatency("etl_run", res.Duration.Seconds())

	j.l.Info("data successfully inserted into database",
		applogger.Int("fetched", res.Fetched),
		applogger.Int("inserted", res.Inserted),
		applogger.Duration("duration_ms", res.Duration),
	)
	return res, nil
}

// Run executes RunOnce and reports any failure at critical level instead of
// returning it, so a scheduler loop never sees an error.
func (j *ETLJob) Run(ctx context.Context) {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	j.l.Info("starting ETL pipeline")
	if _, err := j.RunOnce(ctx); err != nil {
		j.l.Critical("ETL pipeline failed", applogger.Error(err))
		return
	}
	j.l.Info("ETL pipeline completed")
}

func (j *ETLJob) fail(stage string) {
	j.metrics.RecordETLRun(ETLFailed)
	j.metrics.RecordError("etl_" + stage)
}
