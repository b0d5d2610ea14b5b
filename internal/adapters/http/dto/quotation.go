package dto

import (
	"errors"
	"strconv"
	"time"

	"github.com/jsamuelsen/quotation-service/internal/app"
	"github.com/jsamuelsen/quotation-service/internal/domain"
)

// CriteriaRequest is the filter part of the list, summary and export
// query strings. Dates are YYYY-MM-DD.
type CriteriaRequest struct {
	Company   string `form:"company"    json:"company"    validate:"max=200"`
	Email     string `form:"email"      json:"email"      validate:"max=200"`
	StartDate string `form:"start_date" json:"start_date" validate:"omitempty,date"`
	EndDate   string `form:"end_date"   json:"end_date"   validate:"omitempty,date"`
}

// Criteria converts the request into filter criteria.
func (r *CriteriaRequest) Criteria() (domain.FilterCriteria, error) {
	return domain.NewFilterCriteria(r.Company, r.Email, r.StartDate, r.EndDate)
}

// ListQuotationsRequest is the query of GET /quotations.
type ListQuotationsRequest struct {
	CriteriaRequest
	PaginationRequest
}

// ExportRequest is the query of GET /quotations/export.
type ExportRequest struct {
	CriteriaRequest

	Format string `form:"format" json:"format" validate:"omitempty,oneof=xlsx pdf"`
}

// CreateQuotationRequest is the body of POST /quotations.
type CreateQuotationRequest struct {
	QuotationNumber string `json:"quotation_number" validate:"required,notempty,max=50"`
	CompanyName     string `json:"company_name"     validate:"required,notempty,max=200"`
	ValidUntil      string `json:"valid_until"      validate:"required,date"`
	Subtotal        string `json:"subtotal"         validate:"required,positive_decimal"`
	Currency        string `json:"currency"         validate:"omitempty,len=3,alpha"`
	Notes           string `json:"notes"            validate:"max=1000"`
}

// Input converts the request for the application layer.
func (r *CreateQuotationRequest) Input() app.CreateQuotationInput {
	return app.CreateQuotationInput{
		QuotationNumber: r.QuotationNumber,
		CompanyName:     r.CompanyName,
		ValidUntil:      r.ValidUntil,
		Subtotal:        r.Subtotal,
		Currency:        r.Currency,
		Notes:           r.Notes,
	}
}

type ClientResponse struct {
	ClientID      int    `json:"client_id"`
	CompanyName   string `json:"company_name"`
	Email         string `json:"email"`
	Address       string `json:"address,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// RowResponse is the table rendering of a quotation, ready for display.
type RowResponse struct {
	QuotationNumber string `json:"quotation_number"`
	CreatedAt       string `json:"created_at"`
	ValidUntil      string `json:"valid_until"`
	CompanyName     string `json:"company_name"`
	ContactPerson   string `json:"contact_person"`
	Amount          string `json:"amount"`
}

type QuotationResponse struct {
	QuotationID     int             `json:"quotation_id"`
	QuotationNumber string          `json:"quotation_number"`
	ClientID        int             `json:"client_id"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
	Status          string          `json:"status,omitempty"`
	Currency        string          `json:"currency"`
	Subtotal        string          `json:"subtotal,omitempty"`
	TaxAmount       string          `json:"tax_amount,omitempty"`
	TotalAmount     string          `json:"total_amount"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by,omitempty"`
	Client          *ClientResponse `json:"client,omitempty"`
	Display         RowResponse     `json:"display"`
}

// QuotationListResponse is one page of filtered quotations.
type QuotationListResponse struct {
	PaginatedResponse[QuotationResponse]

	// Matched counts every quotation passing the filter, across pages.
	Matched   int `json:"matched"`
	Fetched   int `json:"fetched"`
	Unmatched int `json:"unmatchedClients"`
}

type CurrencyTotalResponse struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Count    int    `json:"count"`
}

type SummaryResponse struct {
	Count          int                     `json:"count"`
	WithClient     int                     `json:"withClient"`
	WithoutClient  int                     `json:"withoutClient"`
	InvalidAmounts int                     `json:"invalidAmounts"`
	Fetched        int                     `json:"fetched"`
	Unmatched      int                     `json:"unmatchedClients"`
	Totals         []CurrencyTotalResponse `json:"totals"`
}

func ToClientResponse(c *domain.Client) *ClientResponse {
	if c == nil {
		return nil
	}

	return &ClientResponse{
		ClientID:      c.ClientID,
		CompanyName:   c.CompanyName,
		Email:         c.Email,
		Address:       c.Address,
		ContactPerson: c.ContactPerson,
	}
}

func ToRowResponse(r domain.QuotationRow) RowResponse {
	return RowResponse{
		QuotationNumber: r.QuotationNumber,
		CreatedAt:       r.CreatedAt,
		ValidUntil:      r.ValidUntil,
		CompanyName:     r.CompanyName,
		ContactPerson:   r.ContactPerson,
		Amount:          r.Amount,
	}
}

func ToQuotationResponse(e domain.EnrichedQuotation) QuotationResponse {
	return QuotationResponse{
		QuotationID:     e.QuotationID,
		QuotationNumber: e.QuotationNumber,
		ClientID:        e.ClientID,
		CreatedAt:       e.CreatedAt,
		ValidUntil:      e.ValidUntil,
		Status:          e.Status,
		Currency:        e.Currency,
		Subtotal:        e.Subtotal,
		TaxAmount:       e.TaxAmount,
		TotalAmount:     e.TotalAmount,
		Notes:           e.Notes,
		CreatedBy:       e.CreatedBy,
		Client:          ToClientResponse(e.Client),
		Display:         ToRowResponse(domain.ToRow(e)),
	}
}

// quotationCursorField names the cursor field for quotation pages.
const quotationCursorField = "quotation_id"

// PageQuotations slices a filtered list after the quotation named by the
// cursor. Backend order is kept, so the cursor stores the last id served.
func PageQuotations(result *app.ListResult, page *PaginationRequest) (*QuotationListResponse, error) {
	start := 0

	cursor, err := page.DecodeCursor()

	switch {
	case errors.Is(err, ErrNoCursor):
	case err != nil:
		return nil, err
	default:
		if cursor.Field != quotationCursorField {
			return nil, ErrInvalidCursor
		}

		idx := indexOfQuotation(result.Items, cursor.ID)
		if idx < 0 {
			return nil, ErrInvalidCursor
		}

		start = idx + 1
	}

	limit := page.GetLimit()
	end := min(start+limit+1, len(result.Items))

	window := make([]QuotationResponse, 0, end-start)
	for _, item := range result.Items[start:end] {
		window = append(window, ToQuotationResponse(item))
	}

	return &QuotationListResponse{
		PaginatedResponse: *NewPaginatedResponse(window, limit, func(q QuotationResponse) *CursorData {
			return NewCursor(quotationCursorField, q.QuotationNumber, strconv.Itoa(q.QuotationID))
		}),
		Matched:   len(result.Items),
		Fetched:   result.Fetched,
		Unmatched: result.Unmatched,
	}, nil
}

func indexOfQuotation(items []domain.EnrichedQuotation, id string) int {
	for i, item := range items {
		if strconv.Itoa(item.QuotationID) == id {
			return i
		}
	}

	return -1
}

func ToSummaryResponse(s *app.SummaryResult) SummaryResponse {
	totals := make([]CurrencyTotalResponse, 0, len(s.Totals))
	for _, t := range s.Totals {
		totals = append(totals, CurrencyTotalResponse{
			Currency: t.Currency,
			Total:    t.Total.StringFixed(2),
			Count:    t.Count,
		})
	}

	return SummaryResponse{
		Count:          s.Count,
		WithClient:     s.WithClient,
		WithoutClient:  s.WithoutClient,
		InvalidAmounts: s.InvalidAmounts,
		Fetched:        s.Fetched,
		Unmatched:      s.Unmatched,
		Totals:         totals,
	}
}
