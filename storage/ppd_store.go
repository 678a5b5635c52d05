package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"propertyedge/models"
)

const isoDate = "2006-01-02"

// PPDStore serves comparable sales from a Price Paid table in PostgreSQL.
type PPDStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPPDStore connects to the Price Paid database and ensures its schema.
func NewPPDStore(ctx context.Context, databaseURL string) (*PPDStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("ppd: database URL is required")
	}
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ppd: parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ppd: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ppd: ping: %w", err)
	}

	s := &PPDStore{pool: pool, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ppd: migrate: %w", err)
	}
	return s, nil
}

func (s *PPDStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ppd_sales (
			transaction_id TEXT,
			price          INTEGER NOT NULL,
			date           DATE    NOT NULL,
			postcode       TEXT    NOT NULL,
			ptype          TEXT    NOT NULL,
			street         TEXT,
			town           TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_ppd_sales_postcode ON ppd_sales (UPPER(postcode) text_pattern_ops);
		CREATE INDEX IF NOT EXISTS idx_ppd_sales_date ON ppd_sales (date DESC);
	`)
	return err
}

// FindComps returns up to q.Limit sales in the subject's postcode sector
// from the last q.Months months, newest first. Flats are matched only
// against flats. No postcode means no comps.
func (s *PPDStore) FindComps(ctx context.Context, q CompQuery) ([]models.Comp, error) {
	if q.Postcode == "" {
		return nil, nil
	}
	q = q.withDefaults()

	sql := `
		SELECT price, date, postcode, ptype, street, town
		FROM ppd_sales
		WHERE UPPER(postcode) LIKE $1
		  AND date >= $2`
	args := []any{PostcodeSector(q.Postcode) + "%", q.Cutoff(s.now())}
	if LooksLikeFlat(q.PropertyType) {
		sql += " AND ptype = $3"
		args = append(args, PPDFlat)
	}
	sql += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d", len(args)+1)
	args = append(args, q.Limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ppd: query comps: %w", err)
	}
	defer rows.Close()

	var comps []models.Comp
	for rows.Next() {
		var c models.Comp
		var date time.Time
		if err := rows.Scan(&c.Price, &date, &c.Postcode, &c.PropertyType, &c.Street, &c.Town); err != nil {
			return nil, fmt.Errorf("ppd: scan comp: %w", err)
		}
		c.Date = date.Format(isoDate)
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// Import bulk-loads sales with COPY and returns the number of rows written.
func (s *PPDStore) Import(ctx context.Context, sales []PPDSale) (int64, error) {
	if len(sales) == 0 {
		return 0, nil
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"ppd_sales"},
		[]string{"transaction_id", "price", "date", "postcode", "ptype", "street", "town"},
		pgx.CopyFromSlice(len(sales), func(i int) ([]any, error) {
			r := sales[i]
			return []any{r.TransactionID, r.Price, r.Date, r.Postcode, r.PropertyType, r.Street, r.Town}, nil
		}),
	)
	if err != nil {
		return n, fmt.Errorf("ppd: copy sales: %w", err)
	}
	return n, nil
}

func (s *PPDStore) Close() {
	s.pool.Close()
}
