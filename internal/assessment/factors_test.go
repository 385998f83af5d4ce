package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFactors_Empty(t *testing.T) {
	got := ExtractFactors(lowRiskRecord(t))

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractFactors_AllTriggeredInOrder(t *testing.T) {
	got := ExtractFactors(highRiskRecord(t))

	assert.Equal(t, []string{
		"Age (70 years)",
		"High cholesterol (300 mg/dL)",
		"Elevated blood pressure (160 mm Hg)",
		"Fasting blood sugar > 120 mg/dL",
		"Exercise-induced angina present",
		"Significant ST depression (3.5)",
		"Coronary artery blockage (2 vessel(s))",
		"Reversible perfusion defect (thalassemia)",
		"Typical angina presentation",
	}, got)
}

func TestExtractFactors_ThresholdsAreStrict(t *testing.T) {
	r := lowRiskRecord(t)
	r.Age = 55
	r.Cholesterol = 240
	r.RestingBP = 140
	r.STDepression = 2.0

	assert.Empty(t, ExtractFactors(r))
}

// Toggling one triggering field only changes that rule's finding.
func TestExtractFactors_Independent(t *testing.T) {
	base := lowRiskRecord(t)
	toggles := []struct {
		name  string
		apply func(*InputRecord)
		want  string
	}{
		{"age", func(r *InputRecord) { r.Age = 60 }, "Age (60 years)"},
		{"cholesterol", func(r *InputRecord) { r.Cholesterol = 250 }, "High cholesterol (250 mg/dL)"},
		{"blood pressure", func(r *InputRecord) { r.RestingBP = 150 }, "Elevated blood pressure (150 mm Hg)"},
		{"fasting sugar", func(r *InputRecord) { r.FastingSugarHigh = true }, "Fasting blood sugar > 120 mg/dL"},
		{"angina", func(r *InputRecord) { r.ExerciseAngina = true }, "Exercise-induced angina present"},
		{"st depression", func(r *InputRecord) { r.STDepression = 2.1 }, "Significant ST depression (2.1)"},
		{"vessels", func(r *InputRecord) { r.MajorVessels = 1 }, "Coronary artery blockage (1 vessel(s))"},
		{"thalassemia", func(r *InputRecord) { r.Thalassemia = ThalassemiaReversible }, "Reversible perfusion defect (thalassemia)"},
		{"chest pain", func(r *InputRecord) { r.ChestPainType = ChestPainTypical }, "Typical angina presentation"},
	}

	for _, tt := range toggles {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.apply(&r)
			assert.Equal(t, []string{tt.want}, ExtractFactors(r))
		})
	}

	full := highRiskRecord(t)
	all := ExtractFactors(full)
	for i, tt := range toggles {
		t.Run("without "+tt.name, func(t *testing.T) {
			rules := FactorRules()
			rules = append(rules[:i:i], rules[i+1:]...)
			got := ExtractFactorsWith(rules, full)
			want := append(append([]string{}, all[:i]...), all[i+1:]...)
			assert.Equal(t, want, got)
		})
	}
}

func TestExtractFactors_EmbedsRawValues(t *testing.T) {
	for _, v := range []struct {
		depression float64
		want       string
	}{
		{2.04, "Significant ST depression (2.04)"},
		{2.25, "Significant ST depression (2.25)"},
		{4, "Significant ST depression (4)"},
	} {
		r := lowRiskRecord(t)
		r.STDepression = v.depression
		assert.Equal(t, []string{v.want}, ExtractFactors(r))
	}
}

func TestFactorRules_ReturnsCopy(t *testing.T) {
	rules := FactorRules()
	rules[0] = FactorRule{ID: "changed"}

	assert.Equal(t, "age", FactorRules()[0].ID)
}
