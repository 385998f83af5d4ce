// Package report renders a completed Assessment for people. Renderers only
// format what the Assessment already holds; the only values computed here
// are display conveniences such as confidence and percentages.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Skufu/heartrisk/internal/assessment"
)

const (
	Title      = "Heart Disease Risk Assessment"
	Disclaimer = "Educational tool only. Not for medical diagnosis."
	DemoBanner = "DEMO MODE: simulated score, not a model prediction. Do not use clinically."
)

// Renderer writes one Assessment in a single format.
type Renderer interface {
	Render(w io.Writer, a *assessment.Assessment) error
	ContentType() string
	Extension() string
}

var renderers = map[string]Renderer{
	"text": TextRenderer{},
	"html": HTMLRenderer{},
	"pdf":  PDFRenderer{},
	"xlsx": XLSXRenderer{},
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"text", "html", "pdf", "xlsx"}
}

// ForFormat picks a renderer by name. An empty name means text.
func ForFormat(name string) (Renderer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "txt" {
		name = "text"
	}
	r, ok := renderers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported report format %q (want one of %s)", name, strings.Join(Formats(), ", "))
	}
	return r, nil
}

// Filename is heart_risk_YYYYMMDD_HHMM.<ext>, stamped from GeneratedAt.
func Filename(a *assessment.Assessment, r Renderer) string {
	return fmt.Sprintf("heart_risk_%s.%s", a.GeneratedAt.Format("20060102_1504"), r.Extension())
}

// Confidence is max(p, 1-p). It is a display value, not part of the
// Assessment.
func Confidence(probability float64) float64 {
	return math.Max(probability, 1-probability)
}

// Classification is the display text for the predicted label.
func Classification(label int) string {
	if label == 1 {
		return "Disease"
	}
	return "No Disease"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// line is one label/value pair of the patient summary.
type line struct {
	Label string
	Value string
}

type section struct {
	Title string
	Lines []line
}

// view flattens an Assessment into the strings every renderer prints.
type view struct {
	Title          string
	GeneratedAt    string
	Demo           bool
	DemoBanner     string
	Patient        []line
	Summary        []section
	RiskTier       string
	Probability    string
	Classification string
	Confidence     string
	Recommendation string
	RiskFactors    []string
	Notes          string
	ModelVersion   string
	Disclaimer     string
}

func newView(a *assessment.Assessment) view {
	r := a.Record
	v := view{
		Title:          Title,
		GeneratedAt:    a.GeneratedAt.Format("2006-01-02 15:04:05"),
		Demo:           !a.Authoritative,
		DemoBanner:     DemoBanner,
		RiskTier:       string(a.RiskTier),
		Probability:    percent(a.Probability),
		Classification: Classification(a.PredictedLabel),
		Confidence:     percent(Confidence(a.Probability)),
		Recommendation: a.Recommendation,
		RiskFactors:    a.RiskFactors,
		Notes:          a.Notes,
		ModelVersion:   a.ModelVersion,
		Disclaimer:     Disclaimer,
	}
	for _, l := range []line{
		{"Patient", a.PatientLabel},
		{"Date of birth", a.PatientDOB},
		{"Referring clinician", a.ReferringClinician},
	} {
		if l.Value != "" {
			v.Patient = append(v.Patient, l)
		}
	}
	v.Summary = []section{
		{"Demographics", []line{
			{"Age", fmt.Sprintf("%d years", r.Age)},
			{"Sex", r.Sex.String()},
		}},
		{"Vitals", []line{
			{"Blood Pressure", fmt.Sprintf("%d mm Hg", r.RestingBP)},
			{"Cholesterol", fmt.Sprintf("%d mg/dL", r.Cholesterol)},
			{"Max Heart Rate", fmt.Sprintf("%d bpm", r.MaxHeartRate)},
		}},
		{"Test Results", []line{
			{"Chest Pain", r.ChestPainType.String()},
			{"Fasting Blood Sugar > 120", yesNo(r.FastingSugarHigh)},
			{"Resting ECG", r.RestingECG.String()},
			{"Exercise Angina", yesNo(r.ExerciseAngina)},
			{"ST Depression", fmt.Sprintf("%.1f", r.STDepression)},
			{"ST Slope", r.STSlope.String()},
			{"Major Vessels", fmt.Sprintf("%d", r.MajorVessels)},
			{"Thalassemia", r.Thalassemia.String()},
		}},
	}
	return v
}
