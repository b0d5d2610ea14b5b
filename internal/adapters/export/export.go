// Package export renders filtered quotation lists as downloadable
// spreadsheets and PDF reports.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/quotation-service/internal/domain"
)

// Format is a supported export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ErrUnsupportedFormat is returned for formats other than xlsx and pdf.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat is case-insensitive. An empty value selects xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}

	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename names the download, e.g. quotations-20240305-101500.xlsx.
func (f Format) Filename(at time.Time) string {
	return "quotations-" + at.UTC().Format("20060102-150405") + "." + string(f)
}

// Document is everything an export renders.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Criteria    domain.FilterCriteria
	Items       []domain.EnrichedQuotation
	Summary     domain.Summary
}

// NewDocument summarizes items for rendering.
func NewDocument(title string, criteria domain.FilterCriteria, items []domain.EnrichedQuotation, at time.Time) *Document {
	return &Document{
		Title:       title,
		GeneratedAt: at,
		Criteria:    criteria,
		Items:       items,
		Summary:     domain.Summarize(items),
	}
}

// Write renders doc in format f.
func Write(w io.Writer, f Format, doc *Document) error {
	switch f {
	case FormatXLSX:
		return writeXLSX(w, doc)
	case FormatPDF:
		return writePDF(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

var columns = []string{"Quotation No.", "Created", "Valid Until", "Company", "Contact", "Amount"}

func rowValues(r domain.QuotationRow) []string {
	return []string{r.QuotationNumber, r.CreatedAt, r.ValidUntil, r.CompanyName, r.ContactPerson, r.Amount}
}

// describeCriteria renders the active filters, or "all quotations".
func describeCriteria(c domain.FilterCriteria) string {
	if c.IsEmpty() {
		return "all quotations"
	}

	var parts []string

	if c.Company != "" {
		parts = append(parts, "company contains "+strconv.Quote(c.Company))
	}

	if c.Email != "" {
		parts = append(parts, "email contains "+strconv.Quote(c.Email))
	}

	if c.StartDate != nil {
		parts = append(parts, "from "+c.StartDate.Format(domain.DateLayout))
	}

	if c.EndDate != nil {
		parts = append(parts, "until "+c.EndDate.Format(domain.DateLayout))
	}

	return strings.Join(parts, ", ")
}
