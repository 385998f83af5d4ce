package report

import (
	"html/template"
	"io"
	"strings"

	"github.com/Skufu/heartrisk/internal/assessment"
)

var htmlTemplate = template.Must(template.New("html").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #222; max-width: 760px; margin: 2rem auto; }
h1 { color: #C44569; margin-bottom: 0.2rem; }
.meta { color: #666; font-size: 0.9rem; }
.demo { background: #FFF3CD; border: 2px solid #F2994A; padding: 0.6rem; font-weight: bold; margin: 1rem 0; }
.risk { border-radius: 10px; padding: 1rem; color: #fff; margin: 1rem 0; }
.risk-low { background: #2F80ED; }
.risk-medium { background: #F2994A; }
.risk-high { background: #EB5757; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1rem; }
td { padding: 0.25rem 0.5rem; border-bottom: 1px solid #eee; }
td.label { color: #666; width: 40%; }
.disclaimer { color: #888; font-size: 0.8rem; margin-top: 2rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated: {{.GeneratedAt}} &middot; Model: {{.ModelVersion}}</p>
{{- if .Demo}}
<div class="demo">{{.DemoBanner}}</div>
{{- end}}
{{- if .Patient}}
<table>
{{- range .Patient}}
<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>
{{- end}}
</table>
{{- end}}
<div class="risk risk-{{lower .RiskTier}}">
<h2>{{.RiskTier}} RISK</h2>
<p>Probability: {{.Probability}} &middot; {{.Classification}} &middot; Confidence: {{.Confidence}}</p>
<p><strong>{{.Recommendation}}</strong></p>
</div>
<h3>Risk Factors</h3>
<ul>
{{- range .RiskFactors}}
<li>{{.}}</li>
{{- else}}
<li>None identified</li>
{{- end}}
</ul>
{{- range .Summary}}
<h3>{{.Title}}</h3>
<table>
{{- range .Lines}}
<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- if .Notes}}
<h3>Clinical Notes</h3>
<p>{{.Notes}}</p>
{{- end}}
<p class="disclaimer">{{.Disclaimer}}</p>
</body>
</html>
`))

// HTMLRenderer produces a self-contained HTML page. All Assessment text is
// escaped by html/template.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(w io.Writer, a *assessment.Assessment) error {
	return htmlTemplate.Execute(w, newView(a))
}

func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (HTMLRenderer) Extension() string { return "html" }
