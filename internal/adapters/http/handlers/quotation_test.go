package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotation-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotation-service/internal/app"
	"github.com/jsamuelsen/quotation-service/internal/domain"
	"github.com/jsamuelsen/quotation-service/internal/mocks"
)

func ts(t *testing.T, v string) *time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, v)
	require.NoError(t, err)

	return &parsed
}

func fixtureClients() []domain.Client {
	return []domain.Client{
		{ClientID: 1, CompanyName: "Acme Corp", Email: "sales@acme.com", ContactPerson: "Ann"},
		{ClientID: 2, CompanyName: "Globex", Email: "buy@globex.io"},
	}
}

func fixtureQuotations(t *testing.T) []domain.Quotation {
	return []domain.Quotation{
		{QuotationID: 11, QuotationNumber: "Q1", ClientID: 1, CreatedAt: ts(t, "2024-03-05T10:00:00Z"), Currency: "THB", TotalAmount: "1070.00"},
		{QuotationID: 12, QuotationNumber: "Q2", ClientID: 2, CreatedAt: ts(t, "2024-03-06T10:00:00Z"), Currency: "USD", TotalAmount: "50.00"},
		{QuotationID: 13, QuotationNumber: "Q3", ClientID: 1, CreatedAt: ts(t, "2024-04-01T00:00:00Z"), Currency: "THB", TotalAmount: "30.50"},
		{QuotationID: 14, QuotationNumber: "Q4", ClientID: 9, CreatedAt: ts(t, "2024-03-07T00:00:00Z"), Currency: "THB", TotalAmount: "abc"},
	}
}

// stockedBackend answers every list call with the fixtures.
func stockedBackend(t *testing.T) *mocks.MockQuotationBackend {
	backend := mocks.NewMockQuotationBackend(t)
	backend.EXPECT().ListQuotations(mock.Anything).Return(fixtureQuotations(t), nil).Maybe()
	backend.EXPECT().ListClients(mock.Anything).Return(fixtureClients(), nil).Maybe()

	return backend
}

func quotationRouter(t *testing.T, backend *mocks.MockQuotationBackend, createdBy string) *gin.Engine {
	t.Helper()

	svc := app.NewQuotationService(app.QuotationServiceConfig{
		Backend:   backend,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		CreatedBy: createdBy,
	})

	h := NewQuotationHandler(svc, "")
	h.now = func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) }

	router := gin.New()
	h.RegisterQuotationRoutes(router.Group("/api/v1"))

	return router
}

func serve(router *gin.Engine, method, target string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	router.ServeHTTP(w, req)

	return w
}

func TestQuotationHandler_List(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		numbers []string
		matched int
	}{
		{"no filter", "", []string{"Q1", "Q2", "Q3", "Q4"}, 4},
		{"company substring, any case", "?company=ACME", []string{"Q1", "Q3"}, 2},
		{"email substring", "?email=globex", []string{"Q2"}, 1},
		{"date window", "?start_date=2024-03-06&end_date=2024-03-31", []string{"Q2", "Q4"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := quotationRouter(t, stockedBackend(t), "")

			w := serve(router, http.MethodGet, "/api/v1/quotations"+tt.query, nil)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp dto.QuotationListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

			numbers := make([]string, 0, len(resp.Items))
			for _, item := range resp.Items {
				numbers = append(numbers, item.QuotationNumber)
			}

			assert.Equal(t, tt.numbers, numbers)
			assert.Equal(t, tt.matched, resp.Matched)
			assert.Equal(t, 4, resp.Fetched)
			assert.Equal(t, 1, resp.Unmatched)
		})
	}
}

func TestQuotationHandler_List_Pages(t *testing.T) {
	router := quotationRouter(t, stockedBackend(t), "")

	first := serve(router, http.MethodGet, "/api/v1/quotations?limit=3", nil)
	require.Equal(t, http.StatusOK, first.Code)

	var page dto.QuotationListResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &page))
	require.True(t, page.HasMore)
	require.Len(t, page.Items, 3)

	second := serve(router, http.MethodGet, "/api/v1/quotations?limit=3&cursor="+page.NextCursor, nil)
	require.Equal(t, http.StatusOK, second.Code)

	page = dto.QuotationListResponse{}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &page))
	assert.False(t, page.HasMore)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Q4", page.Items[0].QuotationNumber)

	bad := serve(router, http.MethodGet, "/api/v1/quotations?cursor=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestQuotationHandler_List_Rendering(t *testing.T) {
	router := quotationRouter(t, stockedBackend(t), "")

	w := serve(router, http.MethodGet, "/api/v1/quotations", nil)

	var resp dto.QuotationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 4)

	assert.Equal(t, dto.RowResponse{
		QuotationNumber: "Q1",
		CreatedAt:       "Mar 5, 2024",
		ValidUntil:      "-",
		CompanyName:     "Acme Corp",
		ContactPerson:   "Ann",
		Amount:          "THB 1070.00",
	}, resp.Items[0].Display)

	assert.Equal(t, "-", resp.Items[1].Display.ContactPerson, "empty contact renders a placeholder")
	assert.Nil(t, resp.Items[3].Client)
	assert.Equal(t, "-", resp.Items[3].Display.CompanyName)
}

func TestQuotationHandler_List_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"malformed start", "?start_date=03/01/2024", "start_date"},
		{"malformed end", "?end_date=2024-02-30", "end_date"},
		{"limit too large", "?limit=500", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := quotationRouter(t, mocks.NewMockQuotationBackend(t), "")

			w := serve(router, http.MethodGet, "/api/v1/quotations"+tt.query, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, dto.ErrorCodeValidation, resp.Error.Code)
			assert.Contains(t, resp.Error.Details, tt.field)
		})
	}
}

func TestQuotationHandler_List_BackendDown(t *testing.T) {
	backend := mocks.NewMockQuotationBackend(t)
	backend.EXPECT().ListQuotations(mock.Anything).
		Return(nil, domain.NewUnavailableError("quotation-backend", "connection refused"))
	backend.EXPECT().ListClients(mock.Anything).Return(fixtureClients(), nil).Maybe()

	router := quotationRouter(t, backend, "")

	w := serve(router, http.MethodGet, "/api/v1/quotations", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "quotation-backend is temporarily unavailable")
}

func TestQuotationHandler_Summary(t *testing.T) {
	router := quotationRouter(t, stockedBackend(t), "")

	w := serve(router, http.MethodGet, "/api/v1/quotations/summary?company=acme", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, resp.WithClient)
	assert.Equal(t, []dto.CurrencyTotalResponse{{Currency: "THB", Total: "1100.50", Count: 2}}, resp.Totals)
}

func TestQuotationHandler_Export(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		contentType string
		filename    string
		magic       []byte
	}{
		{"default xlsx", "", "spreadsheetml", "quotations-20240501-083000.xlsx", []byte("PK")},
		{"pdf", "?format=pdf&company=acme", "application/pdf", "quotations-20240501-083000.pdf", []byte("%PDF-")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := quotationRouter(t, stockedBackend(t), "")

			w := serve(router, http.MethodGet, "/api/v1/quotations/export"+tt.query, nil)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, w.Header().Get("Content-Disposition"), tt.filename)
			assert.True(t, bytes.HasPrefix(w.Body.Bytes(), tt.magic))
		})
	}
}

func TestQuotationHandler_Export_UnknownFormat(t *testing.T) {
	router := quotationRouter(t, mocks.NewMockQuotationBackend(t), "")

	w := serve(router, http.MethodGet, "/api/v1/quotations/export?format=docx", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "format")
}

func TestQuotationHandler_Create(t *testing.T) {
	backend := mocks.NewMockQuotationBackend(t)
	backend.EXPECT().ListClients(mock.Anything).Return(fixtureClients(), nil)
	backend.EXPECT().CreateQuotation(mock.Anything, mock.MatchedBy(func(d domain.QuotationDraft) bool {
		return d.ClientID == 2 &&
			d.TaxAmount.StringFixed(2) == "70.00" &&
			d.TotalAmount.StringFixed(2) == "1070.00" &&
			d.CreatedBy == "42"
	})).Return(&domain.Quotation{
		QuotationID:     99,
		QuotationNumber: "QT-99",
		ClientID:        2,
		Currency:        "THB",
		TotalAmount:     "1070.00",
		CreatedBy:       "42",
	}, nil)

	router := quotationRouter(t, backend, "42")

	body := `{"quotation_number":"QT-99","company_name":"globex","valid_until":"2024-12-31","subtotal":"1000"}`
	w := serve(router, http.MethodPost, "/api/v1/quotations", strings.NewReader(body))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.QuotationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 99, resp.QuotationID)
	assert.Equal(t, "1070.00", resp.TotalAmount)
}

func TestQuotationHandler_Create_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createdBy  string
		setup      func(*mocks.MockQuotationBackend)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"quotation_number":`,
			createdBy:  "42",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeBadRequest,
		},
		{
			name:       "negative subtotal",
			body:       `{"quotation_number":"Q","company_name":"Globex","valid_until":"2024-12-31","subtotal":"-1"}`,
			createdBy:  "42",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "no backend user",
			body:       `{"quotation_number":"Q","company_name":"Globex","valid_until":"2024-12-31","subtotal":"1"}`,
			wantStatus: http.StatusForbidden,
			wantCode:   dto.ErrorCodeForbidden,
		},
		{
			name:      "unknown company",
			body:      `{"quotation_number":"Q","company_name":"Initech","valid_until":"2024-12-31","subtotal":"1"}`,
			createdBy: "42",
			setup: func(m *mocks.MockQuotationBackend) {
				m.EXPECT().ListClients(mock.Anything).Return(fixtureClients(), nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := mocks.NewMockQuotationBackend(t)
			if tt.setup != nil {
				tt.setup(backend)
			}

			router := quotationRouter(t, backend, tt.createdBy)

			w := serve(router, http.MethodPost, "/api/v1/quotations", strings.NewReader(tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
