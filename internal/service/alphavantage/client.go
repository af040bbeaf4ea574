package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"

	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co/query"
	seriesKey      = "Time Series (Daily)"
)

type dailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type dailyResponse struct {
	Series       map[string]dailyEntry `json:"Time Series (Daily)"`
	Note         string                `json:"Note"`
	Information  string                `json:"Information"`
	ErrorMessage string                `json:"Error Message"`
}

// Client implements a BarSource backed by the Alpha Vantage REST API.
type Client struct {
	http          *xhttp.Client
	baseURL       string
	apiKey        string
	retryAttempts int
	retryBackoff  time.Duration
	l             *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the query endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithRetry sets how many extra attempts follow a transport failure and the
// linear backoff step between them.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryBackoff = backoff
	}
}

// WithHTTPClient sets the outbound client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		c.l = l
	}
}

// New creates an Alpha Vantage BarSource.
func New(apiKey string, opts ...Option) drepo.BarSource {
	c := &Client{
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		retryAttempts: 2,
		retryBackoff:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient()
	}
	if c.l == nil {
		c.l = applogger.Nop()
	}
	return c
}

// FetchDaily returns the daily series for symbol sorted by ascending date.
// A response without a series yields no bars and no error.
func (c *Client) FetchDaily(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	body, err := c.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var resp dailyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.Wrap(errs.ErrParse, fmt.Errorf("decode response: %w", err))
	}

	if len(resp.Series) == 0 {
		c.l.Warn("no daily series in response",
			applogger.String("symbol", symbol),
			applogger.String("note", firstNonEmpty(resp.Note, resp.Information, resp.ErrorMessage)),
		)
		return []models.PriceBar{}, nil
	}

	bars, err := parseSeries(resp.Series)
	if err != nil {
		return nil, err
	}
	c.l.Info("daily series fetched",
		applogger.String("symbol", symbol),
		applogger.Int("records", len(bars)),
	)
	return bars, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) ([]byte, error) {
	req := &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"function": {"TIME_SERIES_DAILY"},
			"symbol":   {symbol},
			"apikey":   {c.apiKey},
			"datatype": {"json"},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.retryBackoff
			c.l.Warn("retrying daily series request",
				applogger.String("symbol", symbol),
				applogger.Int("attempt", attempt),
				applogger.Duration("backoff_ms", wait),
				applogger.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, errs.Wrap(errs.ErrTransport, ctx.Err())
			case <-time.After(wait):
			}
		}

		var body []byte
		err := c.http.SendAndParse(ctx, req, &body)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}
	return nil, errs.Wrap(errs.ErrTransport, lastErr)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return true
}

func parseSeries(series map[string]dailyEntry) ([]models.PriceBar, error) {
	bars := make([]models.PriceBar, 0, len(series))
	for day, e := range series {
		b, err := parseEntry(day, e)
		if err != nil {
			return nil, errs.Wrap(errs.ErrParse, err)
		}
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func parseEntry(day string, e dailyEntry) (models.PriceBar, error) {
	date, err := util.ParseDate(day)
	if err != nil {
		return models.PriceBar{}, err
	}
	var b models.PriceBar
	b.Date = date

	prices := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"open", e.Open, &b.Open},
		{"high", e.High, &b.High},
		{"low", e.Low, &b.Low},
		{"close", e.Close, &b.Close},
	}
	for _, p := range prices {
		v, err := decimal.NewFromString(strings.TrimSpace(p.raw))
		if err != nil {
			return models.PriceBar{}, fmt.Errorf("%s %s %q: %w", day, p.name, p.raw, err)
		}
		*p.dst = v
	}

	vol, err := strconv.ParseInt(strings.TrimSpace(e.Volume), 10, 64)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("%s volume %q: %w", day, e.Volume, err)
	}
	b.Volume = vol
	return b, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
