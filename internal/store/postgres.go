// Package store persists saved comp analyses and raw comp-search snapshots
// in Postgres. It is optional; the service runs without it.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/yourorg/comps-api/internal/property"
)

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comp_analyses (
            id            UUID PRIMARY KEY,
            name          TEXT NOT NULL,
            property_key  TEXT NOT NULL,
            mode          TEXT NOT NULL,
            subject       JSONB NOT NULL,
            results       JSONB NOT NULL,
            created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_property_key ON comp_analyses(property_key);`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created ON comp_analyses(created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS comp_search_snapshots (
            id             UUID PRIMARY KEY,
            mode           TEXT NOT NULL,
            subject_city   TEXT NOT NULL,
            query          TEXT NOT NULL,
            payload        JSONB NOT NULL,
            payload_sha256 TEXT NOT NULL,
            fetched_at     TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON comp_search_snapshots(mode, fetched_at DESC);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

type Analysis struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	PropertyKey string                   `json:"propertyKey"`
	Mode        property.SearchMode      `json:"mode"`
	Subject     property.SubjectProperty `json:"subject"`
	Results     []property.CompResult    `json:"results"`
	CreatedAt   time.Time                `json:"createdAt"`
}

type SaveAnalysisInput struct {
	Name        string
	PropertyKey string
	Mode        property.SearchMode
	Subject     property.SubjectProperty
	Results     []property.CompResult
}

func (s *Store) SaveAnalysis(ctx context.Context, in SaveAnalysisInput) (Analysis, error) {
	a := Analysis{
		ID:          uuid.NewString(),
		Name:        in.Name,
		PropertyKey: in.PropertyKey,
		Mode:        in.Mode,
		Subject:     in.Subject,
		Results:     in.Results,
	}
	subjectJSON, err := json.Marshal(in.Subject)
	if err != nil {
		return Analysis{}, err
	}
	resultsJSON, err := json.Marshal(in.Results)
	if err != nil {
		return Analysis{}, err
	}
	err = s.DB.QueryRowContext(ctx, `
        INSERT INTO comp_analyses (id, name, property_key, mode, subject, results)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`,
		a.ID, a.Name, a.PropertyKey, a.Mode, subjectJSON, resultsJSON,
	).Scan(&a.CreatedAt)
	if err != nil {
		return Analysis{}, err
	}
	return a, nil
}

func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, name, property_key, mode, subject, results, created_at
        FROM comp_analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	row := s.DB.QueryRowContext(ctx, `
        SELECT id, name, property_key, mode, subject, results, created_at
        FROM comp_analyses WHERE id = $1`, id)
	a, err := scanAnalysis(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) DeleteAnalysis(ctx context.Context, id string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM comp_analyses WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanAnalysis(scan func(...any) error) (Analysis, error) {
	var a Analysis
	var subjectJSON, resultsJSON []byte
	if err := scan(&a.ID, &a.Name, &a.PropertyKey, &a.Mode, &subjectJSON, &resultsJSON, &a.CreatedAt); err != nil {
		return Analysis{}, err
	}
	if err := json.Unmarshal(subjectJSON, &a.Subject); err != nil {
		return Analysis{}, err
	}
	if err := json.Unmarshal(resultsJSON, &a.Results); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

type SnapshotInput struct {
	Mode        property.SearchMode
	SubjectCity string
	Query       string
	Results     []property.CompResult
}

// SaveSearchSnapshot records the ranked result set of one comp search, with
// a payload hash for dedupe and audit.
func (s *Store) SaveSearchSnapshot(ctx context.Context, in SnapshotInput) error {
	payload, err := json.Marshal(in.Results)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(payload)
	_, err = s.DB.ExecContext(ctx, `
        INSERT INTO comp_search_snapshots (id, mode, subject_city, query, payload, payload_sha256)
        VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.NewString(), in.Mode, in.SubjectCity, in.Query, payload, hex.EncodeToString(sum[:]))
	return err
}
