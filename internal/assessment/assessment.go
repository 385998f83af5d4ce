// Package assessment turns a validated clinical Input Record into an
// immutable Assessment: model probability and label, risk tier with its
// recommendation, and the ordered list of triggered risk factors.
//
// The package has no UI, storage or rendering concerns. Renderers consume
// Assessment fields and never recompute tier, recommendation or factors.
package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Metadata is carried through to the Assessment untouched.
type Metadata struct {
	Notes              string `json:"notes,omitempty"`
	PatientLabel       string `json:"patientLabel,omitempty"`
	PatientDOB         string `json:"patientDob,omitempty"`
	ReferringClinician string `json:"referringClinician,omitempty"`
}

// Assessment is the result of scoring one Input Record. All derived fields
// come from the same record and probability. Callers must treat it as
// read-only.
type Assessment struct {
	ID             string      `json:"id"`
	Probability    float64     `json:"probability"`
	PredictedLabel int         `json:"predictedLabel"`
	RiskTier       Tier        `json:"riskTier"`
	Recommendation string      `json:"recommendation"`
	RiskFactors    []string    `json:"riskFactors"`
	GeneratedAt    time.Time   `json:"generatedAt"`
	Source         string      `json:"source"`
	Authoritative  bool        `json:"authoritative"`
	ModelVersion   string      `json:"modelVersion"`
	Record         InputRecord `json:"record"`
	Metadata
}

type (
	TierResolver    func(probability float64) (Tier, string, error)
	FactorExtractor func(r InputRecord) []string
)

// Assembler wires the three pipeline stages together. It is safe for
// concurrent use as long as its Classifier is.
type Assembler struct {
	classifier Classifier
	resolve    TierResolver
	extract    FactorExtractor
	now        func() time.Time
	newID      func() string
}

type Option func(*Assembler)

// WithTierResolver replaces ResolveTier. A nil fn keeps the default.
func WithTierResolver(fn TierResolver) Option {
	return func(a *Assembler) {
		if fn != nil {
			a.resolve = fn
		}
	}
}

// WithFactorExtractor replaces ExtractFactors. A nil fn keeps the default.
func WithFactorExtractor(fn FactorExtractor) Option {
	return func(a *Assembler) {
		if fn != nil {
			a.extract = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(a *Assembler) { a.newID = fn }
}

func NewAssembler(classifier Classifier, opts ...Option) *Assembler {
	a := &Assembler{
		classifier: classifier,
		resolve:    ResolveTier,
		extract:    ExtractFactors,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess runs Classifier, Tier Resolver and Factor Extractor in that order.
// On any failure it returns a nil Assessment and the wrapped error kind.
func (a *Assembler) Assess(ctx context.Context, r InputRecord, meta Metadata) (*Assessment, error) {
	pred, err := a.classifier.Classify(ctx, r)
	if err != nil {
		return nil, err
	}

	tier, recommendation, err := a.resolve(pred.Probability)
	if err != nil {
		return nil, err
	}

	factors := a.extract(r)
	if factors == nil {
		factors = []string{}
	}

	return &Assessment{
		ID:             a.newID(),
		Probability:    pred.Probability,
		PredictedLabel: pred.Label,
		RiskTier:       tier,
		Recommendation: recommendation,
		RiskFactors:    factors,
		GeneratedAt:    a.now(),
		Source:         pred.Source,
		Authoritative:  pred.Source != SourceDemo,
		ModelVersion:   pred.ModelVersion,
		Record:         r,
		Metadata:       meta,
	}, nil
}

// Assemble is the one-shot form of Assembler.Assess with explicit stages.
func Assemble(ctx context.Context, r InputRecord, classifier Classifier, resolve TierResolver, extract FactorExtractor, meta Metadata) (*Assessment, error) {
	return NewAssembler(classifier, WithTierResolver(resolve), WithFactorExtractor(extract)).Assess(ctx, r, meta)
}
