package assessment

import (
	"context"
	"errors"
	"fmt"
)

const (
	SourceModel = "model"
	SourceDemo  = "demo"
)

// Model is the boundary to the pre-trained artifact. Both methods take the
// record flattened in FeatureOrder. PredictProba returns the distribution
// over {0,1}; index 1 is the disease class.
type Model interface {
	Predict(ctx context.Context, features []float64) (int, error)
	PredictProba(ctx context.Context, features []float64) ([]float64, error)
	Version() string
}

// Prediction is the classifier output for one record.
type Prediction struct {
	Label        int
	Probability  float64
	Source       string
	ModelVersion string
}

type Classifier interface {
	Classify(ctx context.Context, r InputRecord) (Prediction, error)
}

// ModelClassifier adapts a Model to the Classifier contract. It does not
// re-validate the record and does not clamp the probability.
type ModelClassifier struct {
	model Model
}

func NewModelClassifier(m Model) *ModelClassifier {
	return &ModelClassifier{model: m}
}

func (c *ModelClassifier) Classify(ctx context.Context, r InputRecord) (Prediction, error) {
	features := r.Features()

	label, err := c.model.Predict(ctx, features)
	if err != nil {
		return Prediction{}, wrapModelErr("predict", err)
	}
	if label != 0 && label != 1 {
		return Prediction{}, fmt.Errorf("%w: predict returned label %d", ErrPrediction, label)
	}

	proba, err := c.model.PredictProba(ctx, features)
	if err != nil {
		return Prediction{}, wrapModelErr("predict_proba", err)
	}
	if len(proba) != 2 {
		return Prediction{}, fmt.Errorf("%w: predict_proba returned %d classes, want 2", ErrPrediction, len(proba))
	}

	return Prediction{
		Label:        label,
		Probability:  proba[1],
		Source:       SourceModel,
		ModelVersion: c.model.Version(),
	}, nil
}

// wrapModelErr keeps ErrModelUnavailable as is and files everything else
// under ErrPrediction.
func wrapModelErr(op string, err error) error {
	if errors.Is(err, ErrModelUnavailable) || errors.Is(err, ErrPrediction) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrPrediction, op, err)
}

// UnavailableClassifier always fails with the load error it was built from.
// The server installs it when the artifact could not be loaded and demo
// mode is off, so every request reports ErrModelUnavailable.
type UnavailableClassifier struct {
	Err error
}

func (u UnavailableClassifier) Classify(context.Context, InputRecord) (Prediction, error) {
	if u.Err == nil || !errors.Is(u.Err, ErrModelUnavailable) {
		return Prediction{}, fmt.Errorf("%w: %v", ErrModelUnavailable, u.Err)
	}
	return Prediction{}, u.Err
}

// DemoClassifier produces a non-authoritative score from the number of
// triggered risk factor rules. Every Prediction it returns is tagged
// SourceDemo.
type DemoClassifier struct{}

func (DemoClassifier) Classify(_ context.Context, r InputRecord) (Prediction, error) {
	triggered := len(ExtractFactors(r))
	p := 0.05 + 0.9*float64(triggered)/float64(len(factorRules))
	label := 0
	if p >= 0.5 {
		label = 1
	}
	return Prediction{
		Label:        label,
		Probability:  p,
		Source:       SourceDemo,
		ModelVersion: "demo",
	}, nil
}
