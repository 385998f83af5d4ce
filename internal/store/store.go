// Package store keeps a history of completed Assessments. It never stores
// partial results: only Assessments returned by the pipeline are saved.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Skufu/heartrisk/internal/assessment"
)

var ErrNotFound = errors.New("assessment not found")

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Store interface {
	Save(ctx context.Context, a *assessment.Assessment) error
	Get(ctx context.Context, id string) (*assessment.Assessment, error)
	// List returns the newest Assessments first.
	List(ctx context.Context, limit int) ([]*assessment.Assessment, error)
	Ping(ctx context.Context) error
	Close()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// encoded holds the JSON columns shared by both backends.
type encoded struct {
	factors []byte
	record  []byte
}

func encode(a *assessment.Assessment) (encoded, error) {
	factors, err := json.Marshal(a.RiskFactors)
	if err != nil {
		return encoded{}, fmt.Errorf("marshal risk factors: %w", err)
	}
	record, err := json.Marshal(a.Record)
	if err != nil {
		return encoded{}, fmt.Errorf("marshal record: %w", err)
	}
	return encoded{factors: factors, record: record}, nil
}

func decode(a *assessment.Assessment, factors, record []byte) error {
	if err := json.Unmarshal(factors, &a.RiskFactors); err != nil {
		return fmt.Errorf("unmarshal risk factors: %w", err)
	}
	if a.RiskFactors == nil {
		a.RiskFactors = []string{}
	}
	if err := json.Unmarshal(record, &a.Record); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}
