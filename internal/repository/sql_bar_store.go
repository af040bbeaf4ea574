package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/pkg/database"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

const (
	insertBarSQL = `INSERT INTO stock_data (date, open_price, high_price, low_price, close_price, volume)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO NOTHING`
	latestBarSQL = `SELECT date, open_price, high_price, low_price, close_price, volume
		FROM stock_data
		ORDER BY date DESC
		LIMIT 1`
)

// SQLBarStore implements BarStore on PostgreSQL or SQLite.
type SQLBarStore struct {
	client *database.Client
	l      *applogger.Logger
}

func NewSQLBarStore(client *database.Client, l *applogger.Logger) domrepo.BarStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &SQLBarStore{client: client, l: l}
}

func (s *SQLBarStore) Init(ctx context.Context) error {
	if err := s.client.InitSchema(ctx, schemaFor(s.client.Driver())); err != nil {
		return errs.Wrap(errs.ErrPersistence, err)
	}
	return nil
}

// UpsertBars inserts all bars in one transaction. Rows whose date already
// exists are left untouched; the returned count covers new rows only.
func (s *SQLBarStore) UpsertBars(ctx context.Context, bars []models.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	start := time.Now()

	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.Wrap(errs.ErrPersistence, fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.client.Rebind(insertBarSQL))
	if err != nil {
		return 0, errs.Wrap(errs.ErrPersistence, fmt.Errorf("prepare insert: %w", err))
	}
	defer stmt.Close()

	inserted := 0
	for _, b := range bars {
		res, err := stmt.ExecContext(ctx, util.FormatDate(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			s.l.Error("insert bar failed",
				applogger.String("date", util.FormatDate(b.Date)),
				applogger.Error(err),
			)
			return 0, errs.Wrap(errs.ErrPersistence, fmt.Errorf("insert %s: %w", util.FormatDate(b.Date), err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, errs.Wrap(errs.ErrPersistence, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, errs.Wrap(errs.ErrPersistence, fmt.Errorf("commit: %w", err))
	}

	s.l.Debug("bars upserted",
		applogger.String("driver", s.client.Driver()),
		applogger.Int("rows", len(bars)),
		applogger.Int("inserted", inserted),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return inserted, nil
}

func (s *SQLBarStore) LatestBar(ctx context.Context) (models.PriceBar, error) {
	var (
		b    models.PriceBar
		date dateValue
	)
	err := s.client.DB().QueryRowContext(ctx, latestBarSQL).
		Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PriceBar{}, errs.Wrapf(errs.ErrNotFound, "no rows in %s", StockTable)
	}
	if err != nil {
		return models.PriceBar{}, errs.Wrap(errs.ErrPersistence, fmt.Errorf("latest bar: %w", err))
	}
	b.Date = date.t
	return b, nil
}

func (s *SQLBarStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *SQLBarStore) Close() error {
	return nil // pool owned by database.Client
}

// dateValue scans DATE columns (time.Time from lib/pq) and TEXT dates (SQLite).
type dateValue struct {
	t time.Time
}

func (d *dateValue) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.t = util.TruncateDay(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported date type %T", src)
	}
}

func (d *dateValue) parse(s string) error {
	if len(s) > len(util.DateLayout) {
		s = s[:len(util.DateLayout)]
	}
	t, err := util.ParseDate(s)
	if err != nil {
		return err
	}
	d.t = t
	return nil
}
