package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/service"
)

// Artifact kinds understood by Load.
const (
	KindLogistic = "logistic"
	KindGBTree   = "gbtree"
)

// Artifact is the on-disk JSON form of a trained model as exported by the
// offline training scripts.
type Artifact struct {
	Kind         string   `json:"kind"`
	Name         string   `json:"name,omitempty"`
	NumFeatures  int      `json:"n_features"`
	FeatureNames []string `json:"feature_names,omitempty"`

	// logistic
	Scaler    *Scaler     `json:"scaler,omitempty"`
	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty"`

	// gbtree
	BaseScore *float64 `json:"base_score,omitempty"`
	Trees     []Tree   `json:"trees,omitempty"`
}

// Scaler standardises inputs as (x - mean) / scale before the linear step.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Load reads and validates a model artifact from path.
func Load(path string) (service.ProbabilisticClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrModelLoad, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes an artifact document and builds the matching model.
func Parse(data []byte) (service.ProbabilisticClassifier, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errs.Wrap(errs.ErrModelLoad, err)
	}
	if a.NumFeatures <= 0 {
		return nil, errs.Wrapf(errs.ErrModelLoad, "n_features must be positive, got %d", a.NumFeatures)
	}
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != a.NumFeatures {
		return nil, errs.Wrapf(errs.ErrModelLoad, "feature_names has %d entries, want %d", len(a.FeatureNames), a.NumFeatures)
	}

	switch a.Kind {
	case KindLogistic:
		return newLogistic(a)
	case KindGBTree:
		return newGBTree(a)
	default:
		return nil, errs.Wrapf(errs.ErrModelLoad, "unknown artifact kind %q", a.Kind)
	}
}
