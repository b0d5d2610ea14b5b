package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/jsamuelsen/quotation-service/internal/domain"
)

// Landscape A4 leaves 277mm between the 10mm margins.
var pdfWidths = []float64{40, 35, 35, 70, 45, 52}

const (
	pdfFont       = "Arial"
	pdfLineHeight = 7.0
)

func writePDF(w io.Writer, doc *Document) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(doc.Title, true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.CellFormat(0, 8, "Page "+strconv.Itoa(pdf.PageNo())+" of {nb}", "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdfSummary(pdf, doc, tr)

	pdf.Ln(4)
	pdfTableHeader(pdf)
	pdf.SetHeaderFunc(func() {
		pdfTableHeader(pdf)
	})

	for i, item := range doc.Items {
		fill := i%2 == 1
		pdf.SetFont(pdfFont, "", 9)
		pdf.SetFillColor(245, 245, 245)

		for col, v := range rowValues(domain.ToRow(item)) {
			align := "L"
			if col == len(pdfWidths)-1 {
				align = "R"
			}

			pdf.CellFormat(pdfWidths[col], pdfLineHeight, tr(v), "1", 0, align, fill, 0, "")
		}

		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	return nil
}

// pdfTableHeader is also the header func, so the columns repeat on every page.
func pdfTableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(pdfFont, "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)

	for i, c := range columns {
		pdf.CellFormat(pdfWidths[i], 8, c, "1", 0, "C", true, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

func pdfSummary(pdf *gofpdf.Fpdf, doc *Document, tr func(string) string) {
	s := doc.Summary

	pdf.SetFont(pdfFont, "B", 14)
	pdf.CellFormat(0, 8, tr(doc.Title), "", 1, "L", false, 0, "")

	pdf.SetFont(pdfFont, "", 10)

	lines := []string{
		"Generated: " + doc.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
		"Filter: " + describeCriteria(doc.Criteria),
		fmt.Sprintf("Quotations: %d (%d with client, %d without)", s.Count, s.WithClient, s.WithoutClient),
	}

	if s.InvalidAmounts > 0 {
		lines = append(lines, fmt.Sprintf("Excluded from totals: %d unparseable amounts", s.InvalidAmounts))
	}

	for _, l := range lines {
		pdf.CellFormat(0, 6, tr(l), "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont(pdfFont, "B", 10)

	for _, t := range s.Totals {
		pdf.CellFormat(30, 7, t.Currency, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(t.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 7, t.Total.StringFixed(2), "1", 1, "R", false, 0, "")
	}
}
