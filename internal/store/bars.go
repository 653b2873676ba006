package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stocklens/internal/contracts"
)

// BarStore persists daily bars keyed by (market, symbol, session).
type BarStore struct {
	pool *pgxpool.Pool
}

// NewBarStore creates a new bar store
func NewBarStore(pool *pgxpool.Pool) *BarStore {
	return &BarStore{pool: pool}
}

// EnsureSchema creates the bars table if it does not exist yet.
func (s *BarStore) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS daily_bars (
			market       TEXT        NOT NULL,
			symbol       TEXT        NOT NULL,
			session_date DATE        NOT NULL,
			open_price   NUMERIC     NOT NULL,
			high_price   NUMERIC     NOT NULL,
			low_price    NUMERIC     NOT NULL,
			close_price  NUMERIC     NOT NULL,
			volume       BIGINT      NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (market, symbol, session_date)
		)
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// Save upserts a single bar.
func (s *BarStore) Save(ctx context.Context, market, symbol string, bar contracts.RawBar) error {
	query := `
		INSERT INTO daily_bars (market, symbol, session_date, open_price, high_price, low_price, close_price, volume, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (market, symbol, session_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query,
		market, symbol, bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
	)
	return err
}

// SaveBatch upserts multiple bars in a single round trip.
func (s *BarStore) SaveBatch(ctx context.Context, market, symbol string, bars []contracts.RawBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_bars (market, symbol, session_date, open_price, high_price, low_price, close_price, volume, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (market, symbol, session_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(query, market, symbol, bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Range retrieves bars for a symbol within a date range, oldest first.
func (s *BarStore) Range(ctx context.Context, market, symbol string, from, to time.Time) ([]contracts.RawBar, error) {
	query := `
		SELECT session_date, open_price, high_price, low_price, close_price, volume
		FROM daily_bars
		WHERE market = $1 AND symbol = $2 AND session_date BETWEEN $3 AND $4
		ORDER BY session_date ASC
	`

	rows, err := s.pool.Query(ctx, query, market, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.RawBar
	for rows.Next() {
		var b contracts.RawBar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// Latest retrieves the most recent bar for a symbol. The second return
// value reports whether any bar was found.
func (s *BarStore) Latest(ctx context.Context, market, symbol string) (contracts.RawBar, bool, error) {
	query := `
		SELECT session_date, open_price, high_price, low_price, close_price, volume
		FROM daily_bars
		WHERE market = $1 AND symbol = $2
		ORDER BY session_date DESC
		LIMIT 1
	`

	var b contracts.RawBar
	err := s.pool.QueryRow(ctx, query, market, symbol).Scan(
		&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.RawBar{}, false, nil
	}
	if err != nil {
		return contracts.RawBar{}, false, err
	}
	return b, true, nil
}

// Count returns the number of stored sessions for a symbol.
func (s *BarStore) Count(ctx context.Context, market, symbol string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM daily_bars WHERE market = $1 AND symbol = $2`,
		market, symbol,
	).Scan(&n)
	return n, err
}
