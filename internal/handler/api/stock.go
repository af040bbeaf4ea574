package api

import (
	"errors"
	"net/http"

	"StockCast/internal/domain/errs"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NoStockDataMessage is returned when the store holds no bars.
const NoStockDataMessage = "No stock data available"

// StockHandler serves the latest-bar direction prediction.
type StockHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.StockPredictor
	mw        []echo.MiddlewareFunc
}

func NewStockHandler(logger *xlogger.Logger, predictor *usecase.StockPredictor, mw ...echo.MiddlewareFunc) *StockHandler {
	return &StockHandler{logger: logger, predictor: predictor, mw: mw}
}

func (h *StockHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/latest-stock", h.LatestStock, h.mw...)
}

func (h *StockHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "stock_home.html", nil)
}

func (h *StockHandler) LatestStock(c echo.Context) error {
	res, err := h.predictor.LatestPrediction(c.Request().Context())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError(NoStockDataMessage))
		}
		// the request carries no input, so every other failure is a 500
		h.logger.Error("latest stock prediction failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(xhttp.GenericErrorMessage).WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
