package assessment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawRecord {
	return RawRecord{
		Age: 50, Sex: 1, ChestPainType: 1, RestingBP: 120, Cholesterol: 200,
		RestingECG: 1, MaxHeartRate: 150, STDepression: 1.0, STSlope: 1,
		MajorVessels: 0, Thalassemia: 1,
	}
}

func TestNewInputRecord_Valid(t *testing.T) {
	r, err := NewInputRecord(validRaw())

	require.NoError(t, err)
	assert.Equal(t, SexMale, r.Sex)
	assert.Equal(t, ChestPainAtypical, r.ChestPainType)
	assert.Equal(t, RestingECGSTTAbnormal, r.RestingECG)
	assert.Equal(t, STSlopeFlat, r.STSlope)
	assert.Equal(t, ThalassemiaFixed, r.Thalassemia)
}

func TestNewInputRecord_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*RawRecord)
		field string
	}{
		{"age zero", func(r *RawRecord) { r.Age = 0 }, "age"},
		{"age too high", func(r *RawRecord) { r.Age = 121 }, "age"},
		{"bp low", func(r *RawRecord) { r.RestingBP = 49 }, "resting_bp"},
		{"cholesterol high", func(r *RawRecord) { r.Cholesterol = 601 }, "cholesterol"},
		{"heart rate", func(r *RawRecord) { r.MaxHeartRate = 251 }, "max_heart_rate"},
		{"vessels", func(r *RawRecord) { r.MajorVessels = 5 }, "major_vessels"},
		{"st depression", func(r *RawRecord) { r.STDepression = 10.5 }, "st_depression"},
		{"sex", func(r *RawRecord) { r.Sex = 2 }, "sex"},
		{"chest pain", func(r *RawRecord) { r.ChestPainType = 4 }, "chest_pain_type"},
		{"ecg", func(r *RawRecord) { r.RestingECG = -1 }, "resting_ecg"},
		{"slope", func(r *RawRecord) { r.STSlope = 3 }, "st_slope"},
		{"thal", func(r *RawRecord) { r.Thalassemia = 4 }, "thalassemia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mut(&raw)

			_, err := NewInputRecord(raw)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRecord)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNewInputRecord_ReportsAllViolations(t *testing.T) {
	raw := validRaw()
	raw.Age = 0
	raw.Thalassemia = 9

	_, err := NewInputRecord(raw)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "'age'")
	assert.Contains(t, err.Error(), "'thalassemia'")
}

func TestFeatures_Order(t *testing.T) {
	r, err := NewInputRecord(RawRecord{
		Age: 63, Sex: 1, ChestPainType: 3, RestingBP: 145, Cholesterol: 233,
		FastingSugarHigh: true, RestingECG: 0, MaxHeartRate: 150, ExerciseAngina: false,
		STDepression: 2.3, STSlope: 0, MajorVessels: 0, Thalassemia: 1,
	})
	require.NoError(t, err)

	got := r.Features()

	assert.Len(t, got, len(FeatureOrder))
	assert.Equal(t, []float64{63, 1, 3, 145, 233, 1, 0, 150, 0, 2.3, 0, 0, 1}, got)
}

func TestEnumLabels(t *testing.T) {
	assert.Equal(t, "Female", SexFemale.String())
	assert.Equal(t, "Typical Angina", ChestPainTypical.String())
	assert.Equal(t, "Asymptomatic", ChestPainAsymptomatic.String())
	assert.Equal(t, "LVH", RestingECGLVH.String())
	assert.Equal(t, "Downsloping", STSlopeDown.String())
	assert.Equal(t, "Reversible Defect", ThalassemiaReversible.String())
	assert.Equal(t, "Thalassemia(7)", Thalassemia(7).String())
}
