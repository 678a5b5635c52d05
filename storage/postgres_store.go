package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"propertyedge/models"
)

// PostgresStore persists analyses to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			id             BIGSERIAL    PRIMARY KEY,
			created_at_utc TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			url            TEXT         NOT NULL,
			property_id    TEXT         NOT NULL DEFAULT '',
			facts_json     JSONB        NOT NULL DEFAULT '{}'::jsonb,
			comps_json     JSONB        NOT NULL DEFAULT '[]'::jsonb,
			valuation_json JSONB        NOT NULL DEFAULT '{}'::jsonb,
			md_report      TEXT         NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_analyses_property_id ON analyses(property_id);
	`)
	return err
}

// Save inserts the analysis and returns its new id.
func (ps *PostgresStore) Save(ctx context.Context, a *models.Analysis) (int64, error) {
	facts, err := json.Marshal(a.Facts)
	if err != nil {
		return 0, fmt.Errorf("postgres: encode facts: %w", err)
	}
	comps := a.Comps
	if comps == nil {
		comps = []models.Comp{}
	}
	compsJSON, err := json.Marshal(comps)
	if err != nil {
		return 0, fmt.Errorf("postgres: encode comps: %w", err)
	}
	val, err := json.Marshal(a.Valuation)
	if err != nil {
		return 0, fmt.Errorf("postgres: encode valuation: %w", err)
	}

	var id int64
	err = ps.db.QueryRowContext(ctx, `
		INSERT INTO analyses (created_at_utc, url, property_id, facts_json, comps_json, valuation_json, md_report)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, a.CreatedAt.UTC(), a.URL, a.PropertyID, string(facts), string(compsJSON), string(val), a.Report).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert analysis: %w", err)
	}
	return id, nil
}

// Get loads one analysis by id.
func (ps *PostgresStore) Get(ctx context.Context, id int64) (*models.Analysis, error) {
	a := &models.Analysis{}
	var facts, comps, val []byte

	err := ps.db.QueryRowContext(ctx, `
		SELECT id, created_at_utc, url, property_id, facts_json, comps_json, valuation_json, md_report
		FROM analyses
		WHERE id = $1
	`, id).Scan(&a.ID, &a.CreatedAt, &a.URL, &a.PropertyID, &facts, &comps, &val, &a.Report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get analysis %d: %w", id, err)
	}

	if err := json.Unmarshal(facts, &a.Facts); err != nil {
		return nil, fmt.Errorf("postgres: decode facts: %w", err)
	}
	if err := json.Unmarshal(comps, &a.Comps); err != nil {
		return nil, fmt.Errorf("postgres: decode comps: %w", err)
	}
	if err := json.Unmarshal(val, &a.Valuation); err != nil {
		return nil, fmt.Errorf("postgres: decode valuation: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

// List returns the most recent analyses, newest first.
func (ps *PostgresStore) List(ctx context.Context, limit int) ([]models.AnalysisSummary, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT id, created_at_utc, url, property_id, valuation_json
		FROM analyses
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list analyses: %w", err)
	}
	defer rows.Close()

	var out []models.AnalysisSummary
	for rows.Next() {
		a := &models.Analysis{}
		var val []byte
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.URL, &a.PropertyID, &val); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		// a summary row stays listable even if its valuation blob is unreadable
		if err := json.Unmarshal(val, &a.Valuation); err != nil {
			a.Valuation = nil
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, Summarize(a))
	}
	return out, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
