package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/heartrisk/internal/assessment"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS assessments (
	id                  TEXT PRIMARY KEY,
	generated_at        TIMESTAMPTZ NOT NULL,
	probability         DOUBLE PRECISION NOT NULL,
	predicted_label     SMALLINT NOT NULL,
	risk_tier           TEXT NOT NULL,
	recommendation      TEXT NOT NULL,
	risk_factors        JSONB NOT NULL,
	source              TEXT NOT NULL,
	authoritative       BOOLEAN NOT NULL,
	model_version       TEXT NOT NULL DEFAULT '',
	record              JSONB NOT NULL,
	notes               TEXT NOT NULL DEFAULT '',
	patient_label       TEXT NOT NULL DEFAULT '',
	patient_dob         TEXT NOT NULL DEFAULT '',
	referring_clinician TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_assessments_generated_at ON assessments(generated_at DESC);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and makes sure the schema exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, a *assessment.Assessment) error {
	enc, err := encode(a)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO assessments (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.GeneratedAt, a.Probability, a.PredictedLabel,
		string(a.RiskTier), a.Recommendation, string(enc.factors), a.Source, a.Authoritative,
		a.ModelVersion, string(enc.record),
		a.Notes, a.PatientLabel, a.PatientDOB, a.ReferringClinician,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*assessment.Assessment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM assessments WHERE id = $1`, id)
	a, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]*assessment.Assessment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresColumns+` FROM assessments ORDER BY generated_at DESC, id LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	out := []*assessment.Assessment{}
	for rows.Next() {
		a, err := scanPostgres(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// postgresColumns casts the JSONB columns to text so they scan into plain
// strings.
const postgresColumns = `id, generated_at, probability, predicted_label, risk_tier, recommendation,
	risk_factors::text, source, authoritative, model_version, record::text,
	notes, patient_label, patient_dob, referring_clinician`

func scanPostgres(row pgx.Row) (*assessment.Assessment, error) {
	a := &assessment.Assessment{}
	var tier, factors, record string
	var label int16
	err := row.Scan(
		&a.ID, &a.GeneratedAt, &a.Probability, &label, &tier, &a.Recommendation,
		&factors, &a.Source, &a.Authoritative, &a.ModelVersion, &record,
		&a.Notes, &a.PatientLabel, &a.PatientDOB, &a.ReferringClinician,
	)
	if err != nil {
		return nil, err
	}
	a.PredictedLabel = int(label)
	a.RiskTier = assessment.Tier(tier)
	a.GeneratedAt = a.GeneratedAt.UTC()
	if err := decode(a, []byte(factors), []byte(record)); err != nil {
		return nil, err
	}
	return a, nil
}
