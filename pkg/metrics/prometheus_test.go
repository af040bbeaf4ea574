package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordETLRun("success")
	r.RecordETLRun("success")
	r.RecordBars("IBM", 100, 3)
	r.RecordPrediction("stock", "Up")
	r.RecordLastClose("IBM", 187.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.etlRuns.WithLabelValues("success")))
	assert.Equal(t, 100.0, testutil.ToFloat64(r.barsFetched.WithLabelValues("IBM")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.barsInserted.WithLabelValues("IBM")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.predictions.WithLabelValues("stock", "Up")))
	assert.Equal(t, 187.5, testutil.ToFloat64(r.lastClose.WithLabelValues("IBM")))
}
