package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Skufu/heartrisk/internal/assessment"
)

func sample() *assessment.Assessment {
	return &assessment.Assessment{
		ID:             "3f1e7c2a-0000-4000-8000-000000000001",
		Probability:    0.82,
		PredictedLabel: 1,
		RiskTier:       assessment.TierHigh,
		Recommendation: assessment.TierHigh.Recommendation(),
		RiskFactors:    []string{"Age (70 years)", "High cholesterol (300 mg/dL)"},
		GeneratedAt:    time.Date(2025, 2, 3, 14, 5, 9, 0, time.UTC),
		Source:         assessment.SourceModel,
		Authoritative:  true,
		ModelVersion:   "logreg-2024.1",
		Record: assessment.InputRecord{
			Age: 70, Sex: assessment.SexMale, ChestPainType: assessment.ChestPainTypical,
			RestingBP: 160, Cholesterol: 300, FastingSugarHigh: true,
			RestingECG: assessment.RestingECGLVH, MaxHeartRate: 110, ExerciseAngina: true,
			STDepression: 3.5, STSlope: assessment.STSlopeFlat, MajorVessels: 2,
			Thalassemia: assessment.ThalassemiaReversible,
		},
		Metadata: assessment.Metadata{
			Notes:        "<b>smoker</b>, 20 pack-years",
			PatientLabel: "P-001",
		},
	}
}

func render(t *testing.T, r Renderer, a *assessment.Assessment) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, a))
	return buf.Bytes()
}

func TestForFormat(t *testing.T) {
	for _, name := range append(Formats(), "", "TXT", " HTML ") {
		r, err := ForFormat(name)
		require.NoError(t, err, name)
		assert.NotNil(t, r)
	}

	_, err := ForFormat("docx")
	assert.ErrorContains(t, err, "unsupported report format")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "heart_risk_20250203_1405.txt", Filename(sample(), TextRenderer{}))
	assert.Equal(t, "heart_risk_20250203_1405.pdf", Filename(sample(), PDFRenderer{}))
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.82, Confidence(0.82), 1e-12)
	assert.InDelta(t, 0.9, Confidence(0.1), 1e-12)
	assert.InDelta(t, 0.5, Confidence(0.5), 1e-12)
}

func TestTextRenderer(t *testing.T) {
	out := string(render(t, TextRenderer{}, sample()))

	for _, want := range []string{
		"HEART DISEASE RISK ASSESSMENT",
		"Generated: 2025-02-03 14:05:09",
		"Patient: P-001",
		"- Age: 70 years",
		"- Sex: Male",
		"- Chest Pain: Typical Angina",
		"- Thalassemia: Reversible Defect",
		"Risk Level: HIGH",
		"Probability: 82.0%",
		"Classification: Disease",
		"Confidence: 82.0%",
		"Recommendation: " + assessment.TierHigh.Recommendation(),
		"• Age (70 years)\n• High cholesterol (300 mg/dL)",
		"CLINICAL NOTES",
		Disclaimer,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "DEMO MODE")
	assert.NotContains(t, out, "Date of birth")
}

func TestTextRenderer_NoFactorsAndDemo(t *testing.T) {
	a := sample()
	a.RiskFactors = []string{}
	a.Authoritative = false
	a.Source = assessment.SourceDemo

	out := string(render(t, TextRenderer{}, a))

	assert.Contains(t, out, "• None identified")
	assert.Contains(t, out, DemoBanner)
}

func TestHTMLRenderer_Escapes(t *testing.T) {
	out := string(render(t, HTMLRenderer{}, sample()))

	assert.Contains(t, out, `class="risk risk-high"`)
	assert.Contains(t, out, "<li>Age (70 years)</li>")
	assert.Contains(t, out, "&lt;b&gt;smoker&lt;/b&gt;")
	assert.NotContains(t, out, "<b>smoker</b>")
	assert.NotContains(t, out, `class="demo"`)
}

func TestHTMLRenderer_Demo(t *testing.T) {
	a := sample()
	a.Authoritative = false

	out := string(render(t, HTMLRenderer{}, a))

	assert.Contains(t, out, `<div class="demo">`)
}

func TestPDFRenderer(t *testing.T) {
	out := render(t, PDFRenderer{}, sample())

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 1000)
}

func TestNonLatinMetadata(t *testing.T) {
	a := sample()
	a.PatientLabel = "Пациент 患者"
	a.Notes = "Ελληνικά σημειώσεις"

	assert.NotEmpty(t, render(t, PDFRenderer{}, a))
	assert.Contains(t, string(render(t, TextRenderer{}, a)), "Пациент 患者")
	assert.Contains(t, string(render(t, HTMLRenderer{}, a)), "Ελληνικά σημειώσεις")
}

func TestXLSXRenderer(t *testing.T) {
	out := render(t, XLSXRenderer{}, sample())

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)

	values := map[string]string{}
	for _, row := range rows {
		if len(row) >= 2 {
			values[row[0]] = row[1]
		}
	}
	assert.Equal(t, Title, rows[0][0])
	assert.Equal(t, "HIGH", values["Risk Level"])
	assert.Equal(t, "Disease", values["Classification"])
	assert.Equal(t, "Age (70 years)", values["1"])
	assert.Equal(t, "High cholesterol (300 mg/dL)", values["2"])
	assert.Equal(t, "P-001", values["Patient"])
	assert.True(t, strings.HasPrefix(values["Probability"], "82"), values["Probability"])
}
