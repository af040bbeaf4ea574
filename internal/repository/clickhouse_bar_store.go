package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgch "StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"

	"github.com/shopspring/decimal"
)

// CHBarStore implements BarStore on ClickHouse. ClickHouse has no unique
// constraint, so UpsertBars reads the dates already present in the batch
// range and inserts only the missing ones.
type CHBarStore struct {
	db *sql.DB
	ch *pkgch.Client
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, l *applogger.Logger) domrepo.BarStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHBarStore{db: ch.DB(), ch: ch, l: l}
}

func (s *CHBarStore) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, clickhouseSchema); err != nil {
		return errs.Wrap(errs.ErrPersistence, err)
	}
	return nil
}

func (s *CHBarStore) UpsertBars(ctx context.Context, bars []models.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	start := time.Now()

	existing, err := s.existingDates(ctx, bars)
	if err != nil {
		return 0, err
	}
	fresh := filterNew(bars, existing)
	if len(fresh) == 0 {
		return 0, nil
	}

	q, args := buildCHInsert(fresh)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		s.l.Error("clickhouse insert bars failed",
			applogger.Int("rows", len(fresh)),
			applogger.Error(err),
		)
		return 0, errs.Wrap(errs.ErrPersistence, fmt.Errorf("insert bars: %w", err))
	}

	s.l.Debug("clickhouse bars inserted",
		applogger.Int("rows", len(bars)),
		applogger.Int("inserted", len(fresh)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return len(fresh), nil
}

func (s *CHBarStore) existingDates(ctx context.Context, bars []models.PriceBar) (map[string]struct{}, error) {
	from, to := bars[0].Date, bars[0].Date
	for _, b := range bars[1:] {
		if b.Date.Before(from) {
			from = b.Date
		}
		if b.Date.After(to) {
			to = b.Date
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT toString(date) FROM stock_data WHERE date >= toDate(?) AND date <= toDate(?)`,
		util.FormatDate(from), util.FormatDate(to))
	if err != nil {
		return nil, errs.Wrap(errs.ErrPersistence, fmt.Errorf("existing dates: %w", err))
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, errs.Wrap(errs.ErrPersistence, fmt.Errorf("scan date: %w", err))
		}
		out[d] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrPersistence, err)
	}
	return out, nil
}

// filterNew drops bars whose date is in existing, and duplicates within bars
// after their first occurrence.
func filterNew(bars []models.PriceBar, existing map[string]struct{}) []models.PriceBar {
	seen := make(map[string]struct{}, len(bars))
	out := make([]models.PriceBar, 0, len(bars))
	for _, b := range bars {
		d := util.FormatDate(b.Date)
		if _, ok := existing[d]; ok {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, b)
	}
	return out
}

func buildCHInsert(bars []models.PriceBar) (string, []interface{}) {
	values := make([]string, 0, len(bars))
	args := make([]interface{}, 0, len(bars)*6)
	for _, b := range bars {
		values = append(values, "(toDate(?), ?, ?, ?, ?, ?)")
		args = append(args,
			util.FormatDate(b.Date),
			b.Open.InexactFloat64(),
			b.High.InexactFloat64(),
			b.Low.InexactFloat64(),
			b.Close.InexactFloat64(),
			b.Volume,
		)
	}
	q := "INSERT INTO stock_data (date, open_price, high_price, low_price, close_price, volume) VALUES " +
		strings.Join(values, ", ")
	return q, args
}

func (s *CHBarStore) LatestBar(ctx context.Context) (models.PriceBar, error) {
	var (
		date                   time.Time
		open, high, low, closePx float64
		volume                 int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM stock_data FINAL
		ORDER BY date DESC
		LIMIT 1`).Scan(&date, &open, &high, &low, &closePx, &volume)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PriceBar{}, errs.Wrapf(errs.ErrNotFound, "no rows in %s", StockTable)
	}
	if err != nil {
		return models.PriceBar{}, errs.Wrap(errs.ErrPersistence, fmt.Errorf("latest bar: %w", err))
	}
	return models.PriceBar{
		Date:   util.TruncateDay(date),
		Open:   decimal.NewFromFloat(open),
		High:   decimal.NewFromFloat(high),
		Low:    decimal.NewFromFloat(low),
		Close:  decimal.NewFromFloat(closePx),
		Volume: volume,
	}, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHBarStore) Close() error {
	return nil // Managed by pkg
}
