package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	label      int
	proba      []float64
	predictErr error
	probaErr   error
	calls      int
	lastInput  []float64
}

func (f *fakeModel) Predict(_ context.Context, features []float64) (int, error) {
	f.calls++
	f.lastInput = features
	return f.label, f.predictErr
}

func (f *fakeModel) PredictProba(_ context.Context, features []float64) ([]float64, error) {
	return f.proba, f.probaErr
}

func (f *fakeModel) Version() string { return "test-1" }

func lowRiskRecord(t *testing.T) InputRecord {
	t.Helper()
	r, err := NewInputRecord(RawRecord{
		Age: 30, Sex: 0, ChestPainType: 2, RestingBP: 110, Cholesterol: 150,
		RestingECG: 0, MaxHeartRate: 170, STDepression: 0, STSlope: 0,
		MajorVessels: 0, Thalassemia: 0,
	})
	require.NoError(t, err)
	return r
}

func highRiskRecord(t *testing.T) InputRecord {
	t.Helper()
	r, err := NewInputRecord(RawRecord{
		Age: 70, Sex: 1, ChestPainType: 0, RestingBP: 160, Cholesterol: 300,
		FastingSugarHigh: true, RestingECG: 2, MaxHeartRate: 110, ExerciseAngina: true,
		STDepression: 3.5, STSlope: 1, MajorVessels: 2, Thalassemia: 2,
	})
	require.NoError(t, err)
	return r
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestAssess_PopulatesEveryField(t *testing.T) {
	model := &fakeModel{label: 1, proba: []float64{0.18, 0.82}}
	a := NewAssembler(NewModelClassifier(model),
		WithClock(fixedClock),
		WithIDGenerator(func() string { return "a-1" }),
	)
	meta := Metadata{Notes: "family history", PatientLabel: "P-001", PatientDOB: "1955-01-02", ReferringClinician: "Dr. Vega"}

	got, err := a.Assess(context.Background(), highRiskRecord(t), meta)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a-1", got.ID)
	assert.InDelta(t, 0.82, got.Probability, 1e-9)
	assert.Equal(t, 1, got.PredictedLabel)
	assert.Equal(t, TierHigh, got.RiskTier)
	assert.Equal(t, TierHigh.Recommendation(), got.Recommendation)
	assert.Len(t, got.RiskFactors, 9)
	assert.Equal(t, fixedClock(), got.GeneratedAt)
	assert.Equal(t, SourceModel, got.Source)
	assert.True(t, got.Authoritative)
	assert.Equal(t, "test-1", got.ModelVersion)
	assert.Equal(t, meta, got.Metadata)
	assert.Equal(t, highRiskRecord(t).Features(), model.lastInput)
}

func TestAssess_Deterministic(t *testing.T) {
	model := &fakeModel{label: 0, proba: []float64{0.6, 0.4}}
	a := NewAssembler(NewModelClassifier(model))
	rec := highRiskRecord(t)

	first, err := a.Assess(context.Background(), rec, Metadata{})
	require.NoError(t, err)
	second, err := a.Assess(context.Background(), rec, Metadata{})
	require.NoError(t, err)

	assert.Equal(t, first.Probability, second.Probability)
	assert.Equal(t, first.PredictedLabel, second.PredictedLabel)
	assert.Equal(t, first.RiskTier, second.RiskTier)
	assert.Equal(t, first.Recommendation, second.Recommendation)
	assert.Equal(t, first.RiskFactors, second.RiskFactors)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAssess_ModelUnavailable(t *testing.T) {
	a := NewAssembler(UnavailableClassifier{Err: errors.New("open heart_disease_model.json: no such file")})

	got, err := a.Assess(context.Background(), lowRiskRecord(t), Metadata{})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestAssess_PredictionError(t *testing.T) {
	model := &fakeModel{predictErr: errors.New("X has 12 features, but model expects 13")}
	a := NewAssembler(NewModelClassifier(model))

	got, err := a.Assess(context.Background(), lowRiskRecord(t), Metadata{})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrPrediction)
	assert.Contains(t, err.Error(), "13")
}

func TestAssess_InvalidProbabilityProducesNothing(t *testing.T) {
	model := &fakeModel{label: 1, proba: []float64{-0.5, 1.5}}
	a := NewAssembler(NewModelClassifier(model))

	got, err := a.Assess(context.Background(), lowRiskRecord(t), Metadata{})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInvalidProbability)
}

func TestAssess_RejectsBadModelShapes(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"label out of range", &fakeModel{label: 2, proba: []float64{0.5, 0.5}}},
		{"single class distribution", &fakeModel{label: 1, proba: []float64{0.9}}},
		{"proba error", &fakeModel{label: 1, probaErr: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAssembler(NewModelClassifier(tt.model)).Assess(context.Background(), lowRiskRecord(t), Metadata{})
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrPrediction)
		})
	}
}

func TestAssess_ModelErrorKindPreserved(t *testing.T) {
	model := &fakeModel{predictErr: ErrModelUnavailable}
	_, err := NewAssembler(NewModelClassifier(model)).Assess(context.Background(), lowRiskRecord(t), Metadata{})
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.NotErrorIs(t, err, ErrPrediction)
}

func TestAssess_DemoIsTaggedNonAuthoritative(t *testing.T) {
	got, err := NewAssembler(DemoClassifier{}).Assess(context.Background(), highRiskRecord(t), Metadata{})

	require.NoError(t, err)
	assert.Equal(t, SourceDemo, got.Source)
	assert.False(t, got.Authoritative)
	assert.InDelta(t, 0.95, got.Probability, 1e-9)
	assert.Equal(t, TierHigh, got.RiskTier)
}

func TestAssess_EmptyFactorsNeverNil(t *testing.T) {
	a := NewAssembler(NewModelClassifier(&fakeModel{proba: []float64{0.9, 0.1}}),
		WithFactorExtractor(func(InputRecord) []string { return nil }))

	got, err := a.Assess(context.Background(), lowRiskRecord(t), Metadata{})

	require.NoError(t, err)
	assert.NotNil(t, got.RiskFactors)
	assert.Empty(t, got.RiskFactors)
}

func TestAssemble_UsesGivenStages(t *testing.T) {
	resolve := func(p float64) (Tier, string, error) { return TierMedium, "custom", nil }
	extract := func(InputRecord) []string { return []string{"only"} }

	got, err := Assemble(context.Background(), lowRiskRecord(t),
		NewModelClassifier(&fakeModel{proba: []float64{0.99, 0.01}}), resolve, extract, Metadata{Notes: "n"})

	require.NoError(t, err)
	assert.Equal(t, TierMedium, got.RiskTier)
	assert.Equal(t, "custom", got.Recommendation)
	assert.Equal(t, []string{"only"}, got.RiskFactors)
	assert.Equal(t, "n", got.Notes)
}
