package api

import (
	"errors"
	"net/http"

	"StockCast/internal/domain/models"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IrisHandler serves the iris species classifier as JSON and as an HTML form.
type IrisHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.TabularPredictor
	mw        []echo.MiddlewareFunc
}

func NewIrisHandler(logger *xlogger.Logger, predictor *usecase.TabularPredictor, mw ...echo.MiddlewareFunc) *IrisHandler {
	return &IrisHandler{logger: logger, predictor: predictor, mw: mw}
}

func (h *IrisHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.POST("/predict", h.Predict, h.mw...)
	e.POST("/predict_form", h.PredictForm, h.mw...)
}

func (h *IrisHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "iris_form.html", nil)
}

func (h *IrisHandler) Predict(c echo.Context) error {
	req := &models.IrisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	out, err := h.predictor.Predict(req.Values())
	if err != nil {
		h.logger.Error("iris prediction failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}
	return xhttp.SuccessResponse(c, models.PredictResponse{Prediction: out.Label})
}

type irisResultPage struct {
	Prediction interface{}
	Errors     []string
}

// PredictForm handles the HTML form post and renders the result page.
func (h *IrisHandler) PredictForm(c echo.Context) error {
	var x [4]float64
	errs := echo.FormFieldBinder(c).
		MustFloat64("feature1", &x[0]).
		MustFloat64("feature2", &x[1]).
		MustFloat64("feature3", &x[2]).
		MustFloat64("feature4", &x[3]).
		BindErrors()
	if len(errs) > 0 {
		page := irisResultPage{}
		for _, err := range errs {
			var be *echo.BindingError
			if errors.As(err, &be) {
				page.Errors = append(page.Errors, be.Field+": "+formMessage(be))
				continue
			}
			page.Errors = append(page.Errors, err.Error())
		}
		return c.Render(http.StatusBadRequest, "iris_result.html", page)
	}

	out, err := h.predictor.Predict(x[:])
	if err != nil {
		h.logger.Error("iris form prediction failed", xlogger.Error(err))
		return c.Render(http.StatusInternalServerError, "iris_result.html",
			irisResultPage{Errors: []string{xhttp.GenericErrorMessage}})
	}
	return c.Render(http.StatusOK, "iris_result.html", irisResultPage{Prediction: out.Label})
}

func formMessage(be *echo.BindingError) string {
	if s, ok := be.Message.(string); ok {
		return s
	}
	return "invalid value"
}
