package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Skufu/heartrisk/internal/assessment"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS assessments (
	id                  TEXT PRIMARY KEY,
	generated_at        TEXT NOT NULL,
	probability         REAL NOT NULL,
	predicted_label     INTEGER NOT NULL,
	risk_tier           TEXT NOT NULL,
	recommendation      TEXT NOT NULL,
	risk_factors        TEXT NOT NULL,
	source              TEXT NOT NULL,
	authoritative       INTEGER NOT NULL,
	model_version       TEXT NOT NULL DEFAULT '',
	record              TEXT NOT NULL,
	notes               TEXT NOT NULL DEFAULT '',
	patient_label       TEXT NOT NULL DEFAULT '',
	patient_dob         TEXT NOT NULL DEFAULT '',
	referring_clinician TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_assessments_generated_at ON assessments(generated_at DESC);
`

const selectColumns = `id, generated_at, probability, predicted_label, risk_tier, recommendation,
	risk_factors, source, authoritative, model_version, record,
	notes, patient_label, patient_dob, referring_clinician`

// SQLiteStore is the single-file backend used for local deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, a *assessment.Assessment) error {
	enc, err := encode(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.GeneratedAt.UTC().Format(sqliteTimeLayout), a.Probability, a.PredictedLabel,
		string(a.RiskTier), a.Recommendation, string(enc.factors), a.Source, a.Authoritative,
		a.ModelVersion, string(enc.record),
		a.Notes, a.PatientLabel, a.PatientDOB, a.ReferringClinician,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*assessment.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM assessments WHERE id = ?`, id)
	a, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*assessment.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM assessments ORDER BY generated_at DESC, id LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	out := []*assessment.Assessment{}
	for rows.Next() {
		a, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLite(sc scanner) (*assessment.Assessment, error) {
	a := &assessment.Assessment{}
	var generatedAt, tier, factors, record string
	err := sc.Scan(
		&a.ID, &generatedAt, &a.Probability, &a.PredictedLabel, &tier, &a.Recommendation,
		&factors, &a.Source, &a.Authoritative, &a.ModelVersion, &record,
		&a.Notes, &a.PatientLabel, &a.PatientDOB, &a.ReferringClinician,
	)
	if err != nil {
		return nil, err
	}
	a.RiskTier = assessment.Tier(tier)
	if a.GeneratedAt, err = time.Parse(sqliteTimeLayout, generatedAt); err != nil {
		return nil, fmt.Errorf("parse generated_at: %w", err)
	}
	if err := decode(a, []byte(factors), []byte(record)); err != nil {
		return nil, err
	}
	return a, nil
}
