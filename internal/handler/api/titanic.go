package api

import (
	"net/http"

	"StockCast/internal/domain/models"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

type TitanicHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.TabularPredictor
	mw        []echo.MiddlewareFunc
}

func NewTitanicHandler(logger *xlogger.Logger, predictor *usecase.TabularPredictor, mw ...echo.MiddlewareFunc) *TitanicHandler {
	return &TitanicHandler{logger: logger, predictor: predictor, mw: mw}
}

func (h *TitanicHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.POST("/predict", h.Predict, h.mw...)
}

func (h *TitanicHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Titanic Model"})
}

func (h *TitanicHandler) Predict(c echo.Context) error {
	req := &models.TitanicRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	out, err := h.predictor.Predict(req.Values())
	if err != nil {
		h.logger.Error("titanic prediction failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}
	return xhttp.SuccessResponse(c, models.PredictResponse{
		Prediction:  out.Label,
		Probability: out.Probability,
	})
}
