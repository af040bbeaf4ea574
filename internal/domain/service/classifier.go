package service

// Classifier is a trained model that maps a feature row to a class index.
type Classifier interface {
	Predict(x []float64) (int, error)
	NumFeatures() int
}

// ProbabilisticClassifier also reports per-class probabilities.
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(x []float64) ([]float64, error)
}
