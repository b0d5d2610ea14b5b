package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a customer record owned by the quotation backend.
// Records are never modified after they are fetched.
type Client struct {
	ClientID      int
	CompanyName   string
	Email         string
	Address       string
	ContactPerson string
}

// Quotation is a price offer issued to a client.
//
// CreatedAt and ValidUntil are nil when the backend omitted them or sent a
// value that could not be parsed as a timestamp. Amounts stay in the
// backend's decimal string form; use Total for arithmetic.
type Quotation struct {
	QuotationID     int
	QuotationNumber string
	ClientID        int
	CreatedAt       *time.Time
	ValidUntil      *time.Time
	Currency        string
	Subtotal        string
	TaxAmount       string
	TotalAmount     string
	Status          string
	Notes           string
	CreatedBy       string
}

// Total parses TotalAmount. An empty amount is zero.
func (q Quotation) Total() (decimal.Decimal, error) {
	if q.TotalAmount == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(q.TotalAmount)
	if err != nil {
		return decimal.Zero, NewValidationErrorWithValue("total_amount", "not a decimal number", q.TotalAmount)
	}

	return d, nil
}

// EnrichedQuotation is a quotation joined with its client.
// Client is nil when no client with the quotation's ClientID was supplied.
type EnrichedQuotation struct {
	Quotation
	Client *Client
}

// HasClient reports whether the join found a client.
func (e EnrichedQuotation) HasClient() bool {
	return e.Client != nil
}

// QuotationDraft carries the fields needed to create a quotation upstream.
type QuotationDraft struct {
	QuotationNumber string
	ClientID        int
	ValidUntil      time.Time
	Currency        string
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	Notes           string
	CreatedBy       string
}
