package domain

import "time"

// DisplayDateLayout renders dates in the listing table.
const DisplayDateLayout = "Jan 2, 2006"

// Placeholder stands in for a missing value in a rendered row.
const Placeholder = "-"

// QuotationRow is the tabular projection of an enriched quotation.
type QuotationRow struct {
	QuotationNumber string
	CreatedAt       string
	ValidUntil      string
	CompanyName     string
	ContactPerson   string
	Amount          string
}

// ToRow renders an enriched quotation for display.
func ToRow(e EnrichedQuotation) QuotationRow {
	row := QuotationRow{
		QuotationNumber: e.QuotationNumber,
		CreatedAt:       formatDate(e.CreatedAt),
		ValidUntil:      formatDate(e.ValidUntil),
		CompanyName:     Placeholder,
		ContactPerson:   Placeholder,
		Amount:          e.Currency + " " + e.TotalAmount,
	}

	if e.Client != nil {
		row.CompanyName = orPlaceholder(e.Client.CompanyName)
		row.ContactPerson = orPlaceholder(e.Client.ContactPerson)
	}

	return row
}

// ToRows renders every record, keeping order.
func ToRows(items []EnrichedQuotation) []QuotationRow {
	rows := make([]QuotationRow, len(items))
	for i, item := range items {
		rows[i] = ToRow(item)
	}

	return rows
}

func formatDate(t *time.Time) string {
	if t == nil {
		return Placeholder
	}

	return t.Format(DisplayDateLayout)
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}

	return s
}
