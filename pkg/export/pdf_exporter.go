package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a tabular PDF. Timetable tables are wide,
// so pages are landscape A4 and column widths are weighted per header.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// columnWeights gives wider columns to free-text fields. Headers without a
// weight share the default.
var columnWeights = map[string]float64{
	"Time":       1.6,
	"Course":     1.4,
	"Instructor": 1.8,
	"Lane":       0.5,
	"Duration":   0.6,
}

// Render creates a landscape PDF document with a title row and the table
// body, repeating the header after each page break.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	widths := e.columnWidths(data.Headers, 277.0)
	writeHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			writeHeader()
			pdf.SetFont("Arial", "", 8)
		}
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) columnWidths(headers []string, usable float64) []float64 {
	weights := make([]float64, len(headers))
	var total float64
	for i, header := range headers {
		w, ok := columnWeights[header]
		if !ok {
			w = 1.0
		}
		weights[i] = w
		total += w
	}
	widths := make([]float64, len(headers))
	for i, w := range weights {
		widths[i] = usable * w / total
	}
	return widths
}
