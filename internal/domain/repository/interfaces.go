package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// BarSource fetches daily price bars for one symbol from an external provider.
// An empty result with a nil error means the provider returned no series.
type BarSource interface {
	FetchDaily(ctx context.Context, symbol string) ([]models.PriceBar, error)
}

// BarStore persists price bars keyed by date.
type BarStore interface {
	Init(ctx context.Context) error // ensure tables
	// UpsertBars inserts bars whose date is not yet stored; existing rows win.
	UpsertBars(ctx context.Context, bars []models.PriceBar) (int, error)
	// LatestBar returns the most recent bar or an errs.ErrNotFound error.
	LatestBar(ctx context.Context) (models.PriceBar, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// BarPublisher announces bars that were ingested by an ETL run.
type BarPublisher interface {
	PublishBars(ctx context.Context, symbol string, bars []models.PriceBar) error
	Close() error
}

// Locker guards a run against concurrent execution across processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Metrics interface {
	RecordETLRun(result string)
	RecordBars(symbol string, fetched, inserted int)
	RecordPrediction(model, label string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
