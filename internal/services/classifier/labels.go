package classifier

import "StockCast/internal/domain/models"

// Labels maps class indices to display names.
type Labels []string

// Name returns the label for class, or "Unknown" when out of range.
func (l Labels) Name(class int) string {
	if class < 0 || class >= len(l) {
		return "Unknown"
	}
	return l[class]
}

var (
	IrisSpecies = Labels{"Setosa", "Versicolor", "Virginica"}
	Direction   = Labels{models.DirectionDown, models.DirectionUp}
)
