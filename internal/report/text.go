package report

import (
	"io"
	"strings"
	"text/template"

	"github.com/Skufu/heartrisk/internal/assessment"
)

var textTemplate = template.Must(template.New("text").Funcs(template.FuncMap{
	"upper":     strings.ToUpper,
	"underline": func(s string) string { return strings.Repeat("=", len(s)) },
}).Parse(`{{upper .Title}}
{{underline .Title}}
Generated: {{.GeneratedAt}}
{{- if .Demo}}

*** {{.DemoBanner}} ***
{{- end}}
{{- if .Patient}}

PATIENT
{{- range .Patient}}
{{.Label}}: {{.Value}}
{{- end}}
{{- end}}
{{range .Summary}}
{{upper .Title}}
{{- range .Lines}}
- {{.Label}}: {{.Value}}
{{- end}}
{{end}}
RISK ASSESSMENT
Risk Level: {{.RiskTier}}
Probability: {{.Probability}}
Classification: {{.Classification}}
Confidence: {{.Confidence}}
Recommendation: {{.Recommendation}}

RISK FACTORS
{{- range .RiskFactors}}
• {{.}}
{{- else}}
• None identified
{{- end}}
{{- if .Notes}}

CLINICAL NOTES
{{.Notes}}
{{- end}}

Model: {{.ModelVersion}}
{{.Disclaimer}}
`))

// TextRenderer produces the plain-text download.
type TextRenderer struct{}

func (TextRenderer) Render(w io.Writer, a *assessment.Assessment) error {
	return textTemplate.Execute(w, newView(a))
}

func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (TextRenderer) Extension() string { return "txt" }
