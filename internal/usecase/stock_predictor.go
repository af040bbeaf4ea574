package usecase

import (
	"context"
	"errors"
	"time"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	dservice "StockCast/internal/domain/service"
	"StockCast/internal/services/classifier"
	"StockCast/internal/services/features"
	pkgcache "StockCast/pkg/cache"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/util"
)

// ResponseCache is the subset of pkg/cache used to memoise responses.
type ResponseCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// StockPredictor predicts the next session's direction from the newest stored bar.
type StockPredictor struct {
	store   drepo.BarStore
	model   dservice.Classifier
	metrics drepo.Metrics
	l       *applogger.Logger

	cache    ResponseCache
	cacheTTL time.Duration
	cacheKey string
}

type StockPredictorOption func(*StockPredictor)

// WithResponseCache memoises the latest prediction for ttl. A zero ttl disables it.
func WithResponseCache(c ResponseCache, symbol string, ttl time.Duration) StockPredictorOption {
	return func(p *StockPredictor) {
		if c == nil || ttl <= 0 {
			return
		}
		p.cache = c
		p.cacheTTL = ttl
		p.cacheKey = pkgcache.GenerateKey("latest-stock", symbol)
	}
}

func WithPredictorMetrics(m drepo.Metrics) StockPredictorOption {
	return func(p *StockPredictor) { p.metrics = m }
}

func NewStockPredictor(store drepo.BarStore, model dservice.Classifier, l *applogger.Logger, opts ...StockPredictorOption) *StockPredictor {
	p := &StockPredictor{
		store:   store,
		model:   model,
		metrics: metrics.Nop{},
		l:       l,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.l == nil {
		p.l = applogger.Nop()
	}
	return p
}

// LatestPrediction reads the newest bar, derives its features and runs the
// model. An empty store yields an errs.ErrNotFound error.
func (p *StockPredictor) LatestPrediction(ctx context.Context) (models.LatestStockResponse, error) {
	var resp models.LatestStockResponse
	if p.cache != nil {
		err := p.cache.Get(ctx, p.cacheKey, &resp)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, pkgcache.ErrCacheMiss) {
			p.l.Warn("read cached prediction", applogger.Error(err))
		}
	}

	start := time.Now()
	defer func() {
		p.metrics.RecordLatency("latest_stock", time.Since(start).Seconds())
	}()

	bar, err := p.store.LatestBar(ctx)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			p.metrics.RecordError("store_read")
		}
		return resp, err
	}

	fv, err := features.FromBar(bar)
	if err != nil {
		return resp, err
	}

	x := fv.Values()
	class, err := p.model.Predict(x)
	if err != nil {
		p.metrics.RecordError("predict")
		return resp, err
	}

	resp = models.LatestStockResponse{
		LatestDate:     util.FormatDate(bar.Date),
		NextDate:       util.FormatDate(util.NextBusinessDay(bar.Date)),
		OpenPrice:      bar.Open.InexactFloat64(),
		HighPrice:      bar.High.InexactFloat64(),
		LowPrice:       bar.Low.InexactFloat64(),
		ClosePrice:     bar.Close.InexactFloat64(),
		Volume:         bar.Volume,
		DailyRange:     fv.DailyRange,
		PriceChangePct: fv.PriceChangePct,
		Volatility:     fv.Volatility,
		Prediction:     directionOf(class),
	}
	if pm, ok := p.model.(dservice.ProbabilisticClassifier); ok {
		proba, err := pm.PredictProba(x)
		if err != nil {
			p.metrics.RecordError("predict")
			return resp, err
		}
		if len(proba) > 1 {
			up := proba[1]
			resp.Probability = &up
		}
	}
	p.metrics.RecordPrediction("stock", resp.Prediction)

	if p.cache != nil {
		if err := p.cache.Set(ctx, p.cacheKey, resp, p.cacheTTL); err != nil {
			p.l.Warn("cache prediction", applogger.Error(err))
		}
	}
	return resp, nil
}

// directionOf maps the binary class to Up (1) or Down (anything else).
func directionOf(class int) string {
	if class == 1 {
		return classifier.Direction.Name(1)
	}
	return classifier.Direction.Name(0)
}
