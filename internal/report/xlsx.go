package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Skufu/heartrisk/internal/assessment"
)

const xlsxSheet = "Assessment"

// XLSXRenderer writes a two-column workbook: label and value.
type XLSXRenderer struct{}

func (XLSXRenderer) Render(w io.Writer, a *assessment.Assessment) error {
	v := newView(a)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "#C44569"},
	})
	if err != nil {
		return fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	demoStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#783C00"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFF3CD"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create demo style: %w", err)
	}

	sw := &sheetWriter{f: f, row: 1}
	sw.styled(titleStyle, v.Title, "")
	sw.pair("Generated", v.GeneratedAt)
	sw.pair("Model", v.ModelVersion)
	if v.Demo {
		sw.styled(demoStyle, v.DemoBanner, "")
	}
	for _, l := range v.Patient {
		sw.pair(l.Label, l.Value)
	}

	sw.blank()
	sw.styled(headerStyle, "Risk Assessment", "")
	sw.pair("Risk Level", v.RiskTier)
	sw.pair("Probability", a.Probability)
	sw.pair("Classification", v.Classification)
	sw.pair("Confidence", Confidence(a.Probability))
	sw.pair("Recommendation", v.Recommendation)

	sw.blank()
	sw.styled(headerStyle, "Risk Factors", "")
	if len(v.RiskFactors) == 0 {
		sw.pair("None identified", "")
	}
	for i, rf := range v.RiskFactors {
		sw.pair(fmt.Sprintf("%d", i+1), rf)
	}

	for _, s := range v.Summary {
		sw.blank()
		sw.styled(headerStyle, s.Title, "")
		for _, l := range s.Lines {
			sw.pair(l.Label, l.Value)
		}
	}

	if v.Notes != "" {
		sw.blank()
		sw.styled(headerStyle, "Clinical Notes", "")
		sw.pair("", v.Notes)
	}
	sw.blank()
	sw.pair(v.Disclaimer, "")

	if sw.err != nil {
		return sw.err
	}

	probStyle, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return fmt.Errorf("create percent style: %w", err)
	}
	for _, row := range sw.percentRows {
		cell, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellStyle(xlsxSheet, cell, cell, probStyle); err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 32); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "B", "B", 70); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	return f.Write(w)
}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXRenderer) Extension() string { return "xlsx" }

// sheetWriter appends label/value rows and keeps the first error.
type sheetWriter struct {
	f           *excelize.File
	row         int
	err         error
	percentRows []int
}

func (s *sheetWriter) pair(label string, value interface{}) {
	if s.err != nil {
		return
	}
	if _, ok := value.(float64); ok {
		s.percentRows = append(s.percentRows, s.row)
	}
	s.set(1, label)
	s.set(2, value)
	s.row++
}

func (s *sheetWriter) styled(style int, label string, value interface{}) {
	if s.err != nil {
		return
	}
	row := s.row
	s.pair(label, value)
	if s.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(2, row)
	if err := s.f.SetCellStyle(xlsxSheet, from, to, style); err != nil {
		s.err = fmt.Errorf("style row %d: %w", row, err)
	}
}

func (s *sheetWriter) blank() {
	s.row++
}

func (s *sheetWriter) set(col int, value interface{}) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, s.row)
	if err != nil {
		s.err = fmt.Errorf("convert coordinates: %w", err)
		return
	}
	if err := s.f.SetCellValue(xlsxSheet, cell, value); err != nil {
		s.err = fmt.Errorf("set cell %s: %w", cell, err)
	}
}
