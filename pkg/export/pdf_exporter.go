package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// Document describes a single-table PDF report.
type Document struct {
	Title string
	// Header lines are printed under the title, before the table.
	Header []string
	Data   Dataset
	// Weights sizes columns relative to each other; missing weights count as 1.
	Weights []float64
	// Numeric marks right-aligned columns by index.
	Numeric map[int]bool
	Summary []string
	// GeneratedAt is printed in the footer when set.
	GeneratedAt time.Time
}

// PDFExporter renders documents as A4 portrait PDFs.
type PDFExporter struct {
	font string
}

// NewPDFExporter constructs a PDF exporter using the core Arial font.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{font: "Arial"}
}

// Render lays out doc and returns the encoded PDF.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if len(doc.Data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if !doc.GeneratedAt.IsZero() {
		stamp := doc.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")
		pdf.SetFooterFunc(func() {
			pdf.SetY(-12)
			pdf.SetFont(e.font, "I", 8)
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("Generated %s - page %d", stamp, pdf.PageNo())), "", 0, "R", false, 0, "")
		})
	}
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont(e.font, "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(doc.Title)), "", 1, "C", false, 0, "")
	}
	if len(doc.Header) > 0 {
		pdf.SetFont(e.font, "", 10)
		for _, line := range doc.Header {
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	widths := columnWidths(len(doc.Data.Headers), doc.Weights)
	pdf.SetFont(e.font, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range doc.Data.Headers {
		pdf.CellFormat(widths[i], 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(e.font, "", 9)
	for _, row := range doc.Data.Rows {
		for i := range doc.Data.Headers {
			value, align := "", "L"
			if i < len(row) {
				value = row[i]
			}
			if doc.Numeric[i] {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(doc.Summary) > 0 {
		pdf.Ln(4)
		pdf.SetFont(e.font, "B", 10)
		for _, line := range doc.Summary {
			pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(n int, weights []float64) []float64 {
	total := 0.0
	resolved := make([]float64, n)
	for i := range resolved {
		w := 1.0
		if i < len(weights) && weights[i] > 0 {
			w = weights[i]
		}
		resolved[i] = w
		total += w
	}
	for i := range resolved {
		resolved[i] = pageWidth * resolved[i] / total
	}
	return resolved
}
