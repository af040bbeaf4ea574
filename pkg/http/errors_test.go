package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"StockCast/internal/domain/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDomainError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, FromDomainError(errs.Wrapf(errs.ErrValidation, "bad")).Status)
	assert.Equal(t, http.StatusNotFound, FromDomainError(errs.Wrapf(errs.ErrNotFound, "none")).Status)

	internal := FromDomainError(errs.Wrap(errs.ErrPersistence, errors.New("password=secret")))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, GenericErrorMessage, internal.Message)

	nf := NotFoundError("x")
	assert.Same(t, nf, FromDomainError(nf))
}

type sample struct {
	Value *float64 `json:"value" validate:"required"`
	Count *int     `json:"count" validate:"required"`
}

func bind(t *testing.T, body string) []ValidationError {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	var s sample
	return ReadAndValidateRequest(c, &s)
}

func TestReadAndValidateRequest(t *testing.T) {
	assert.Nil(t, bind(t, `{"value": 0, "count": 0}`))

	verrs := bind(t, `{"value": 1.5}`)
	require.Len(t, verrs, 1)
	assert.Equal(t, "count", verrs[0].Field)
	assert.Equal(t, "ERR_REQUIRED", verrs[0].Code)
	assert.Equal(t, "count is required", verrs[0].Message)

	verrs = bind(t, `{"value": "abc", "count": 1}`)
	require.Len(t, verrs, 1)
	assert.Equal(t, "ERR_BIND", verrs[0].Code)
}

func TestErrorHandlerEnvelope(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Not Found","data":"Not Found"}`, rec.Body.String())
}
