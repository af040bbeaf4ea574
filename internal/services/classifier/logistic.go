package classifier

import (
	"math"

	"StockCast/internal/domain/errs"
)

// Logistic is a fitted logistic regression. One coefficient row means a
// binary model (class 1 probability via sigmoid); more rows are multinomial
// (softmax over classes).
type Logistic struct {
	n         int
	mean      []float64
	scale     []float64
	coef      [][]float64
	intercept []float64
}

func newLogistic(a Artifact) (*Logistic, error) {
	if len(a.Coef) == 0 {
		return nil, errs.Wrapf(errs.ErrModelLoad, "logistic: coef is empty")
	}
	if len(a.Intercept) != len(a.Coef) {
		return nil, errs.Wrapf(errs.ErrModelLoad, "logistic: %d intercepts for %d coef rows", len(a.Intercept), len(a.Coef))
	}
	for i, row := range a.Coef {
		if len(row) != a.NumFeatures {
			return nil, errs.Wrapf(errs.ErrModelLoad, "logistic: coef row %d has %d values, want %d", i, len(row), a.NumFeatures)
		}
	}

	m := &Logistic{n: a.NumFeatures, coef: a.Coef, intercept: a.Intercept}
	if a.Scaler != nil {
		if len(a.Scaler.Mean) != a.NumFeatures || len(a.Scaler.Scale) != a.NumFeatures {
			return nil, errs.Wrapf(errs.ErrModelLoad, "logistic: scaler shape does not match %d features", a.NumFeatures)
		}
		for i, s := range a.Scaler.Scale {
			if s == 0 {
				return nil, errs.Wrapf(errs.ErrModelLoad, "logistic: scaler scale[%d] is zero", i)
			}
		}
		m.mean = a.Scaler.Mean
		m.scale = a.Scaler.Scale
	}
	return m, nil
}

func (m *Logistic) NumFeatures() int { return m.n }

func (m *Logistic) Predict(x []float64) (int, error) {
	z, err := m.decision(x)
	if err != nil {
		return 0, err
	}
	if len(z) == 1 {
		if z[0] > 0 {
			return 1, nil
		}
		return 0, nil
	}
	return argmax(z), nil
}

func (m *Logistic) PredictProba(x []float64) ([]float64, error) {
	z, err := m.decision(x)
	if err != nil {
		return nil, err
	}
	if len(z) == 1 {
		p := sigmoid(z[0])
		return []float64{1 - p, p}, nil
	}
	return softmax(z), nil
}

func (m *Logistic) decision(x []float64) ([]float64, error) {
	if err := checkInput(x, m.n, false); err != nil {
		return nil, err
	}
	in := x
	if m.mean != nil {
		in = make([]float64, m.n)
		for i := range x {
			in[i] = (x[i] - m.mean[i]) / m.scale[i]
		}
	}
	z := make([]float64, len(m.coef))
	for k, row := range m.coef {
		s := m.intercept[k]
		for i, w := range row {
			s += w * in[i]
		}
		z[k] = s
	}
	return z, nil
}

func checkInput(x []float64, n int, allowNaN bool) error {
	if len(x) != n {
		return errs.Wrapf(errs.ErrValidation, "expected %d features, got %d", n, len(x))
	}
	for i, v := range x {
		if math.IsInf(v, 0) || (!allowNaN && math.IsNaN(v)) {
			return errs.Wrapf(errs.ErrValidation, "feature %d is not a finite number", i)
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softmax(z []float64) []float64 {
	maxZ := z[argmax(z)]
	out := make([]float64, len(z))
	sum := 0.0
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax(z []float64) int {
	best := 0
	for i := 1; i < len(z); i++ {
		if z[i] > z[best] {
			best = i
		}
	}
	return best
}
