package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"

	"github.com/shopspring/decimal"
)

type fakeSource struct {
	bars  []models.PriceBar
	err   error
	calls int
}

func (f *fakeSource) FetchDaily(_ context.Context, _ string) ([]models.PriceBar, error) {
	f.calls++
	return f.bars, f.err
}

// memStore keeps the first bar written for each date.
type memStore struct {
	mu      sync.Mutex
	bars    map[string]models.PriceBar
	err     error
	readErr error
}

func newMemStore() *memStore {
	return &memStore{bars: make(map[string]models.PriceBar)}
}

func (s *memStore) Init(context.Context) error { return nil }

func (s *memStore) UpsertBars(_ context.Context, bars []models.PriceBar) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	n := 0
	for _, b := range bars {
		k := b.Date.Format("2006-01-02")
		if _, ok := s.bars[k]; ok {
			continue
		}
		s.bars[k] = b
		n++
	}
	return n, nil
}

func (s *memStore) LatestBar(context.Context) (models.PriceBar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return models.PriceBar{}, s.readErr
	}
	if len(s.bars) == 0 {
		return models.PriceBar{}, errs.Wrapf(errs.ErrNotFound, "no rows in stock_data")
	}
	keys := make([]string, 0, len(s.bars))
	for k := range s.bars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return s.bars[keys[len(keys)-1]], nil
}

func (s *memStore) Health(context.Context) error { return nil }
func (s *memStore) Close() error                 { return nil }

type fakePublisher struct {
	published [][]models.PriceBar
	err       error
}

func (f *fakePublisher) PublishBars(_ context.Context, _ string, bars []models.PriceBar) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, bars)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeModel struct {
	class int
	proba []float64
	err   error
	seen  []float64
}

func (m *fakeModel) Predict(x []float64) (int, error) {
	m.seen = x
	return m.class, m.err
}

func (m *fakeModel) NumFeatures() int { return len(models.FeatureNames) }

func (m *fakeModel) PredictProba([]float64) ([]float64, error) {
	return m.proba, m.err
}

// plainModel has no probabilities.
type plainModel struct{ class int }

func (m plainModel) Predict([]float64) (int, error) { return m.class, nil }
func (m plainModel) NumFeatures() int                { return 4 }

type recordingMetrics struct {
	mu          sync.Mutex
	runs        []string
	fetched     int
	inserted    int
	predictions []string
	errors      []string
	lastClose   float64
}

func (r *recordingMetrics) RecordETLRun(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, result)
}

func (r *recordingMetrics) RecordBars(_ string, fetched, inserted int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetched += fetched
	r.inserted += inserted
}

func (r *recordingMetrics) RecordPrediction(model, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions = append(r.predictions, model+":"+label)
}

func (r *recordingMetrics) RecordError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, kind)
}

func (r *recordingMetrics) RecordLastClose(_ string, price float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastClose = price
}

func (r *recordingMetrics) RecordLatency(string, float64) {}

func bar(day, open, high, low, close string, volume int64) models.PriceBar {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return models.PriceBar{
		Date:   d,
		Open:   decimal.RequireFromString(open),
		High:   decimal.RequireFromString(high),
		Low:    decimal.RequireFromString(low),
		Close:  decimal.RequireFromString(close),
		Volume: volume,
	}
}

var errBoom = errors.New("boom")
