package models

// Requests and responses for the prediction HTTP endpoints.

// IrisRequest carries the four iris measurements. Pointers let validation tell
// a missing field from an explicit zero.
type IrisRequest struct {
	Feature1 *float64 `json:"feature1" form:"feature1" validate:"required"`
	Feature2 *float64 `json:"feature2" form:"feature2" validate:"required"`
	Feature3 *float64 `json:"feature3" form:"feature3" validate:"required"`
	Feature4 *float64 `json:"feature4" form:"feature4" validate:"required"`
}

// Values returns the features in model order. Call only after validation.
func (r *IrisRequest) Values() []float64 {
	return []float64{*r.Feature1, *r.Feature2, *r.Feature3, *r.Feature4}
}

// TitanicRequest mirrors the preprocessed Titanic training columns.
type TitanicRequest struct {
	Pclass    *int     `json:"Pclass" validate:"required"`
	Sex       *int     `json:"Sex" validate:"required"`
	Age       *float64 `json:"Age" validate:"required"`
	SibSp     *int     `json:"SibSp" validate:"required"`
	Parch     *int     `json:"Parch" validate:"required"`
	Fare      *float64 `json:"Fare" validate:"required"`
	EmbarkedQ *bool    `json:"Embarked_Q" validate:"required"`
	EmbarkedS *bool    `json:"Embarked_S" validate:"required"`
}

// Values returns the features in model order. Call only after validation.
func (r *TitanicRequest) Values() []float64 {
	return []float64{
		float64(*r.Pclass),
		float64(*r.Sex),
		*r.Age,
		float64(*r.SibSp),
		float64(*r.Parch),
		*r.Fare,
		boolToFloat(*r.EmbarkedQ),
		boolToFloat(*r.EmbarkedS),
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// PredictResponse is the body of POST /predict.
type PredictResponse struct {
	Prediction  interface{} `json:"prediction"`
	Probability *float64    `json:"probability,omitempty"`
}

// LatestStockResponse is the body of GET /latest-stock.
type LatestStockResponse struct {
	LatestDate     string   `json:"latest_date"`
	NextDate       string   `json:"next_date"`
	OpenPrice      float64  `json:"open_price"`
	HighPrice      float64  `json:"high_price"`
	LowPrice       float64  `json:"low_price"`
	ClosePrice     float64  `json:"close_price"`
	Volume         int64    `json:"volume"`
	DailyRange     float64  `json:"daily_range"`
	PriceChangePct float64  `json:"price_change_pct"`
	Volatility     float64  `json:"volatility"`
	Prediction     string   `json:"prediction"`
	Probability    *float64 `json:"probability,omitempty"`
}
