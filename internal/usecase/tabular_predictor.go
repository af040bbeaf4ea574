package usecase

import (
	"strconv"

	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	dservice "StockCast/internal/domain/service"
	"StockCast/internal/services/classifier"
	"StockCast/pkg/metrics"
)

// TabularPredictor serves a classifier over caller-supplied feature rows.
type TabularPredictor struct {
	name    string
	model   dservice.Classifier
	labels  classifier.Labels
	proba   bool
	metrics drepo.Metrics
}

// NewIrisPredictor reports the species name and no probability.
func NewIrisPredictor(model dservice.Classifier, m drepo.Metrics) *TabularPredictor {
	return newTabular("iris", model, classifier.IrisSpecies, false, m)
}

// NewTitanicPredictor reports the raw class and the probability of class 1.
func NewTitanicPredictor(model dservice.Classifier, m drepo.Metrics) *TabularPredictor {
	return newTabular("titanic", model, nil, true, m)
}

func newTabular(name string, model dservice.Classifier, labels classifier.Labels, proba bool, m drepo.Metrics) *TabularPredictor {
	if m == nil {
		m = metrics.Nop{}
	}
	return &TabularPredictor{name: name, model: model, labels: labels, proba: proba, metrics: m}
}

func (p *TabularPredictor) Name() string { return p.name }

func (p *TabularPredictor) Predict(x []float64) (models.Prediction, error) {
	class, err := p.model.Predict(x)
	if err != nil {
		p.metrics.RecordError("predict")
		return models.Prediction{}, err
	}

	out := models.Prediction{Class: class, Label: class}
	if p.labels != nil {
		out.Label = p.labels.Name(class)
	}

	if pm, ok := p.model.(dservice.ProbabilisticClassifier); ok && p.proba {
		proba, err := pm.PredictProba(x)
		if err != nil {
			p.metrics.RecordError("predict")
			return models.Prediction{}, err
		}
		if len(proba) > 1 {
			v := proba[1]
			out.Probability = &v
		}
	}

	label := strconv.Itoa(class)
	if s, ok := out.Label.(string); ok {
		label = s
	}
	p.metrics.RecordPrediction(p.name, label)
	return out, nil
}
