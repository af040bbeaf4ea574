package models

// Direction labels returned by the stock model.
const (
	DirectionUp   = "Up"
	DirectionDown = "Down"
)

// Prediction is the result of one classifier invocation.
// Label is a string for named classes (iris species, Up/Down) and an int otherwise.
type Prediction struct {
	Class       int
	Label       interface{}
	Probability *float64
}
