package report

import (
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/Skufu/heartrisk/internal/assessment"
)

type rgb struct{ r, g, b int }

var tierColors = map[string]rgb{
	string(assessment.TierLow):    {47, 128, 237},
	string(assessment.TierMedium): {242, 153, 74},
	string(assessment.TierHigh):   {235, 87, 87},
}

// PDFRenderer lays the report out on one A4 page with the core fonts.
type PDFRenderer struct{}

func (PDFRenderer) Render(w io.Writer, a *assessment.Assessment) error {
	v := newView(a)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(v.Title, true)
	pdf.SetCreator("heartrisk", true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(196, 69, 105)
	pdf.CellFormat(0, 10, tr(v.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, tr("Generated: "+v.GeneratedAt+"   Model: "+v.ModelVersion), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if v.Demo {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(255, 243, 205)
		pdf.SetTextColor(120, 60, 0)
		pdf.MultiCell(0, 7, tr(v.DemoBanner), "1", "C", true)
		pdf.Ln(3)
	}

	pdf.SetTextColor(34, 34, 34)
	for _, l := range v.Patient {
		labelValue(pdf, tr, l)
	}
	if len(v.Patient) > 0 {
		pdf.Ln(3)
	}

	c := tierColors[v.RiskTier]
	pdf.SetFillColor(c.r, c.g, c.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 11, tr(v.RiskTier+" RISK"), "", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 7, tr("Probability: "+v.Probability+"   "+v.Classification+"   Confidence: "+v.Confidence), "", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(0, 7, tr(v.Recommendation), "", "C", true)
	pdf.Ln(4)

	pdf.SetTextColor(34, 34, 34)
	heading(pdf, tr, "Risk Factors")
	pdf.SetFont("Helvetica", "", 10)
	factors := v.RiskFactors
	if len(factors) == 0 {
		factors = []string{"None identified"}
	}
	for _, f := range factors {
		pdf.CellFormat(0, 6, tr("• "+f), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	for _, s := range v.Summary {
		heading(pdf, tr, s.Title)
		for _, l := range s.Lines {
			labelValue(pdf, tr, l)
		}
		pdf.Ln(2)
	}

	if v.Notes != "" {
		heading(pdf, tr, "Clinical Notes")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(v.Notes), "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(130, 130, 130)
	pdf.MultiCell(0, 5, tr(v.Disclaimer), "", "L", false)

	return pdf.Output(w)
}

func heading(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func labelValue(pdf *fpdf.Fpdf, tr func(string) string, l line) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(60, 6, tr(l.Label), "", 0, "L", false, 0, "")
	pdf.SetTextColor(34, 34, 34)
	pdf.CellFormat(0, 6, tr(l.Value), "", 1, "L", false, 0, "")
}

func (PDFRenderer) ContentType() string { return "application/pdf" }

func (PDFRenderer) Extension() string { return "pdf" }
