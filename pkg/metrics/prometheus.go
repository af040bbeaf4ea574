package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	etlRuns      *prometheus.CounterVec
	barsFetched  *prometheus.CounterVec
	barsInserted *prometheus.CounterVec
	predictions  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastClose    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New registers the recorder's collectors on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder's collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		etlRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_etl_runs_total",
				Help: "ETL runs by result (success, empty, skipped, failed)",
			},
			[]string{"result"},
		),
		barsFetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_bars_fetched_total",
				Help: "Daily bars returned by the data provider",
			},
			[]string{"symbol"},
		),
		barsInserted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_bars_inserted_total",
				Help: "Daily bars newly written to the store",
			},
			[]string{"symbol"},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_predictions_total",
				Help: "Predictions served by model and label",
			},
			[]string{"model", "label"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_last_close_price",
				Help: "Close price of the most recent stored bar",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordETLRun counts one ETL run outcome.
func (r *Recorder) RecordETLRun(result string) {
	r.etlRuns.WithLabelValues(result).Inc()
}

// RecordBars adds fetched and inserted bar counts for symbol.
func (r *Recorder) RecordBars(symbol string, fetched, inserted int) {
	r.barsFetched.WithLabelValues(symbol).Add(float64(fetched))
	r.barsInserted.WithLabelValues(symbol).Add(float64(inserted))
}

func (r *Recorder) RecordPrediction(model, label string) {
	r.predictions.WithLabelValues(model, label).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordETLRun(string) {}
func (Nop) RecordBars(string, int, int) {}
func (Nop) RecordPrediction(string, string) {}
func (Nop) RecordError(string) {}
func (Nop) RecordLastClose(string, float64) {}
func (Nop) RecordLatency(string, float64) {}
