// Package model provides the artifacts behind assessment.Model: a logistic
// regression exported to JSON and loaded from disk, and an HTTP client for
// an inference sidecar that hosts the original trained model.
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/Skufu/heartrisk/internal/assessment"
)

// Artifact is the on-disk form of an exported logistic regression. Mean and
// Scale are the fitted standard scaler; both may be omitted.
type Artifact struct {
	Version      string    `json:"version"`
	Algorithm    string    `json:"algorithm"`
	Features     []string  `json:"features"`
	Mean         []float64 `json:"mean,omitempty"`
	Scale        []float64 `json:"scale,omitempty"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Threshold    float64   `json:"threshold,omitempty"`
}

// Logistic is read-only after Load and safe to share between requests.
type Logistic struct {
	artifact Artifact
}

// Load reads the artifact once. Every failure is reported as
// assessment.ErrModelUnavailable.
func Load(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: model file %s not found", assessment.ErrModelUnavailable, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", assessment.ErrModelUnavailable, path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", assessment.ErrModelUnavailable, path, err)
	}
	if err := checkArtifact(a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", assessment.ErrModelUnavailable, path, err)
	}
	if a.Threshold == 0 {
		a.Threshold = 0.5
	}

	return &Logistic{artifact: a}, nil
}

// NewLogistic wraps an in-memory artifact, used by tests and the CLI.
func NewLogistic(a Artifact) *Logistic {
	if a.Threshold == 0 {
		a.Threshold = 0.5
	}
	return &Logistic{artifact: a}
}

// checkArtifact rejects artifacts that could never score a record.
func checkArtifact(a Artifact) error {
	if err := checkFeatures(a.Features); err != nil {
		return err
	}
	n := len(assessment.FeatureOrder)
	if len(a.Coefficients) != n {
		return fmt.Errorf("artifact has %d coefficients, want %d", len(a.Coefficients), n)
	}
	if len(a.Mean) == 0 && len(a.Scale) == 0 {
		return nil
	}
	if len(a.Mean) != n || len(a.Scale) != n {
		return fmt.Errorf("scaler has %d/%d entries, want %d", len(a.Mean), len(a.Scale), n)
	}
	for i, s := range a.Scale {
		if s == 0 {
			return fmt.Errorf("zero scale for feature %q", assessment.FeatureOrder[i])
		}
	}
	return nil
}

func checkFeatures(features []string) error {
	if len(features) == 0 {
		return fmt.Errorf("artifact lists no features")
	}
	if len(features) != len(assessment.FeatureOrder) {
		return fmt.Errorf("artifact lists %d features, record has %d", len(features), len(assessment.FeatureOrder))
	}
	for i, name := range assessment.FeatureOrder {
		if features[i] != name {
			return fmt.Errorf("feature %d is %q, want %q", i, features[i], name)
		}
	}
	return nil
}

func (l *Logistic) Version() string {
	if l.artifact.Version == "" {
		return "unversioned"
	}
	return l.artifact.Version
}

func (l *Logistic) Predict(ctx context.Context, features []float64) (int, error) {
	p, err := l.positive(features)
	if err != nil {
		return 0, err
	}
	if p >= l.artifact.Threshold {
		return 1, nil
	}
	return 0, nil
}

func (l *Logistic) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	p, err := l.positive(features)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

func (l *Logistic) positive(features []float64) (float64, error) {
	a := l.artifact
	if len(features) != len(a.Coefficients) {
		return 0, fmt.Errorf("%w: got %d features, model expects %d", assessment.ErrPrediction, len(features), len(a.Coefficients))
	}
	scaled := len(a.Mean) > 0 || len(a.Scale) > 0
	if scaled && (len(a.Mean) != len(features) || len(a.Scale) != len(features)) {
		return 0, fmt.Errorf("%w: scaler has %d/%d entries, model expects %d", assessment.ErrPrediction, len(a.Mean), len(a.Scale), len(features))
	}

	z := a.Intercept
	for i, x := range features {
		if scaled {
			if a.Scale[i] == 0 {
				return 0, fmt.Errorf("%w: zero scale for feature %d", assessment.ErrPrediction, i)
			}
			x = (x - a.Mean[i]) / a.Scale[i]
		}
		z += a.Coefficients[i] * x
	}
	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) {
		return 0, fmt.Errorf("%w: non-finite score", assessment.ErrPrediction)
	}
	return p, nil
}
