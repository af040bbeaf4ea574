package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"
	"StockCast/internal/services/classifier"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// up when price_change_pct (feature 5) is above zero
const stockModel = `{
  "kind": "gbtree",
  "n_features": 7,
  "base_score": 0.5,
  "trees": [{"nodes": [
    {"feature": 5, "threshold": 0, "left": 1, "right": 2, "default_left": true},
    {"leaf": -2},
    {"leaf": 2}
  ]}]
}`

// predicts class 0 for small petals, class 2 for large, class 1 between
const irisModel = `{
  "kind": "logistic",
  "n_features": 4,
  "coef": [[0, 0, -4, 0], [0, 0, 0, 0], [0, 0, 4, 0]],
  "intercept": [8, 0, -20]
}`

const titanicModel = `{
  "kind": "logistic",
  "n_features": 8,
  "coef": [[-1, 2, 0, 0, 0, 0, 0, 0]],
  "intercept": [1]
}`

type oneBarStore struct {
	bar *models.PriceBar
	err error
}

func (s oneBarStore) Init(context.Context) error                                { return nil }
func (s oneBarStore) UpsertBars(context.Context, []models.PriceBar) (int, error) { return 0, nil }
func (s oneBarStore) Health(context.Context) error                              { return nil }
func (s oneBarStore) Close() error                                              { return nil }

func (s oneBarStore) LatestBar(context.Context) (models.PriceBar, error) {
	if s.err != nil {
		return models.PriceBar{}, s.err
	}
	if s.bar == nil {
		return models.PriceBar{}, errs.Wrapf(errs.ErrNotFound, "no rows in stock_data")
	}
	return *s.bar, nil
}

func newEcho(t *testing.T, h xhttp.Handler) *echo.Echo {
	t.Helper()
	tpl, err := NewTemplates()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = tpl
	e.HTTPErrorHandler = xhttp.ErrorHandler
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func stockEcho(t *testing.T, store oneBarStore) *echo.Echo {
	model, err := classifier.Parse([]byte(stockModel))
	require.NoError(t, err)
	p := usecase.NewStockPredictor(store, model, xlogger.Nop())
	return newEcho(t, NewStockHandler(xlogger.Nop(), p))
}

func TestLatestStock(t *testing.T) {
	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	bar := models.PriceBar{
		Date:   d,
		Open:   decimal.NewFromInt(100),
		High:   decimal.NewFromInt(105),
		Low:    decimal.NewFromInt(98),
		Close:  decimal.NewFromInt(102),
		Volume: 1000,
	}
	e := stockEcho(t, oneBarStore{bar: &bar})

	rec := do(e, http.MethodGet, "/latest-stock", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2024-01-05", body["latest_date"])
	assert.Equal(t, "2024-01-08", body["next_date"])
	assert.Equal(t, 100.0, body["open_price"])
	assert.Equal(t, 1000.0, body["volume"])
	assert.InDelta(t, 7.0, body["daily_range"], 1e-9)
	assert.InDelta(t, 2.0, body["price_change_pct"], 1e-9)
	assert.InDelta(t, 0.07, body["volatility"], 1e-9)
	assert.Equal(t, "Up", body["prediction"])
	assert.Contains(t, body, "probability")
}

func TestLatestStockEmptyStore(t *testing.T) {
	e := stockEcho(t, oneBarStore{})
	rec := do(e, http.MethodGet, "/latest-stock", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), NoStockDataMessage)
}

func TestLatestStockHidesInternalErrors(t *testing.T) {
	e := stockEcho(t, oneBarStore{err: errs.Wrapf(errs.ErrPersistence, "dial tcp 10.0.0.1:5432: refused")})
	rec := do(e, http.MethodGet, "/latest-stock", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), xhttp.GenericErrorMessage)
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}

func TestLatestStockRejectedBarIsInternalError(t *testing.T) {
	bar := models.PriceBar{
		Date:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Open:   decimal.Zero,
		High:   decimal.NewFromInt(105),
		Low:    decimal.NewFromInt(98),
		Close:  decimal.NewFromInt(102),
		Volume: 1000,
	}
	rec := do(stockEcho(t, oneBarStore{bar: &bar}), http.MethodGet, "/latest-stock", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), xhttp.GenericErrorMessage)
	assert.NotContains(t, rec.Body.String(), "open price")
}

func TestStockHome(t *testing.T) {
	rec := do(stockEcho(t, oneBarStore{}), http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/latest-stock")
}

func irisEcho(t *testing.T, mw ...echo.MiddlewareFunc) *echo.Echo {
	model, err := classifier.Parse([]byte(irisModel))
	require.NoError(t, err)
	return newEcho(t, NewIrisHandler(xlogger.Nop(), usecase.NewIrisPredictor(model, nil), mw...))
}

func TestIrisPredict(t *testing.T) {
	e := irisEcho(t)

	rec := do(e, http.MethodPost, "/predict", echo.MIMEApplicationJSON,
		`{"feature1": 5.1, "feature2": 3.5, "feature3": 1.4, "feature4": 0.2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prediction":"Setosa"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/predict", echo.MIMEApplicationJSON,
		`{"feature1": 6.3, "feature2": 3.3, "feature3": 6.0, "feature4": 2.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prediction":"Virginica"}`, rec.Body.String())
}

func TestIrisPredictMissingField(t *testing.T) {
	rec := do(irisEcho(t), http.MethodPost, "/predict", echo.MIMEApplicationJSON,
		`{"feature1": 5.1, "feature2": 3.5, "feature3": 1.4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "feature4 is required")
}

func TestIrisPredictWrongType(t *testing.T) {
	rec := do(irisEcho(t), http.MethodPost, "/predict", echo.MIMEApplicationJSON,
		`{"feature1": "wide", "feature2": 3.5, "feature3": 1.4, "feature4": 0.2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_BIND")
}

func TestIrisForm(t *testing.T) {
	e := irisEcho(t)

	rec := do(e, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/predict_form"`)

	form := url.Values{"feature1": {"5.1"}, "feature2": {"3.5"}, "feature3": {"1.4"}, "feature4": {"0.2"}}
	rec = do(e, http.MethodPost, "/predict_form", echo.MIMEApplicationForm, form.Encode())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Setosa")

	form.Del("feature3")
	rec = do(e, http.MethodPost, "/predict_form", echo.MIMEApplicationForm, form.Encode())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "feature3")
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func TestPredictRateLimited(t *testing.T) {
	e := irisEcho(t, xhttp.RateLimit(denyAll{}, xlogger.Nop()))

	rec := do(e, http.MethodPost, "/predict", echo.MIMEApplicationJSON,
		`{"feature1": 5.1, "feature2": 3.5, "feature3": 1.4, "feature4": 0.2}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// the home page is not limited
	rec = do(e, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func titanicEcho(t *testing.T) *echo.Echo {
	model, err := classifier.Parse([]byte(titanicModel))
	require.NoError(t, err)
	return newEcho(t, NewTitanicHandler(xlogger.Nop(), usecase.NewTitanicPredictor(model, nil)))
}

func TestTitanicHome(t *testing.T) {
	rec := do(titanicEcho(t), http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Titanic Model"}`, rec.Body.String())
}

func TestTitanicPredict(t *testing.T) {
	e := titanicEcho(t)

	// z = -1*1 + 2*1 + 1 = 2
	rec := do(e, http.MethodPost, "/predict", echo.MIMEApplicationJSON,
		`{"Pclass": 1, "Sex": 1, "Age": 29, "SibSp": 0, "Parch": 0, "Fare": 100, "Embarked_Q": false, "Embarked_S": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Prediction  int      `json:"prediction"`
		Probability *float64 `json:"probability"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Prediction)
	require.NotNil(t, body.Probability)
	assert.InDelta(t, 0.880797, *body.Probability, 1e-6)

	// z = -3 + 0 + 1 = -2
	rec = do(e, http.MethodPost, "/predict", echo.MIMEApplicationJSON,
		`{"Pclass": 3, "Sex": 0, "Age": 22, "SibSp": 1, "Parch": 0, "Fare": 7.25, "Embarked_Q": false, "Embarked_S": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Prediction)
}

func TestTitanicPredictMissingField(t *testing.T) {
	rec := do(titanicEcho(t), http.MethodPost, "/predict", echo.MIMEApplicationJSON,
		`{"Pclass": 3, "Sex": 0, "Age": 22, "SibSp": 1, "Parch": 0, "Fare": 7.25, "Embarked_Q": false}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Embarked_S")
}
