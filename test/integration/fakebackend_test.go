//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeBackend serves the quotation backend's REST API under /api.
type fakeBackend struct {
	server *httptest.Server

	mu         sync.Mutex
	quotations []map[string]any
	clients    []map[string]any
	created    []map[string]any
	headers    []http.Header

	// failNext answers the next n requests with 503.
	failNext atomic.Int32

	// down answers every request with 503 while set.
	down atomic.Bool

	gets  atomic.Int32
	posts atomic.Int32
}

func newFakeBackend(t testing.TB) *fakeBackend {
	t.Helper()

	fb := &fakeBackend{
		quotations: []map[string]any{
			quotationJSON(1, "QT-2024-001", 1, "2024-03-05T09:00:00.000Z", "2024-04-05T00:00:00.000Z", "1070.00", "THB"),
			quotationJSON(2, "QT-2024-002", 2, "2024-03-20T10:30:00.000Z", "2024-04-20T00:00:00.000Z", "50.00", "USD"),
			quotationJSON(3, "QT-2024-003", 1, "2024-04-02T08:00:00.000Z", "2024-05-02T00:00:00.000Z", "30.50", "THB"),
			quotationJSON(4, "QT-2024-004", 99, "2024-03-07T12:00:00.000Z", nil, "10.00", "THB"),
		},
		clients: []map[string]any{
			{"client_id": 1, "company_name": "Acme Corp", "email": "sales@acme.com", "address": "1 Silom Rd", "contact_person": "Ann"},
			{"client_id": 2, "company_name": "Globex", "email": "buy@globex.io", "address": "", "contact_person": nil},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/quotation", fb.guard(func(w http.ResponseWriter, _ *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()

		writeJSON(w, http.StatusOK, fb.quotations)
	}))
	mux.HandleFunc("GET /api/client", fb.guard(func(w http.ResponseWriter, _ *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()

		writeJSON(w, http.StatusOK, fb.clients)
	}))
	mux.HandleFunc("POST /api/quotation", fb.guard(fb.create))

	fb.server = httptest.NewServer(mux)
	t.Cleanup(fb.server.Close)

	return fb
}

func quotationJSON(id int, number string, clientID int, createdAt string, validUntil any, total, currency string) map[string]any {
	return map[string]any{
		"quotation_id":     id,
		"quotation_number": number,
		"client_id":        clientID,
		"created_at":       createdAt,
		"valid_until":      validUntil,
		"status":           "draft",
		"total_amount":     total,
		"currency":         currency,
		"created_by":       7,
	}
}

// BaseURL is what backend.base_url points at.
func (fb *fakeBackend) BaseURL() string {
	return fb.server.URL + "/api"
}

func (fb *fakeBackend) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fb.posts.Add(1)
		} else {
			fb.gets.Add(1)
		}

		fb.mu.Lock()
		fb.headers = append(fb.headers, r.Header.Clone())
		fb.mu.Unlock()

		if fb.down.Load() || fb.failNext.Add(-1) >= 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "backend unavailable"})
			return
		}

		next(w, r)
	}
}

func (fb *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"code": "VALIDATION_ERROR", "message": err.Error()}})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	for _, q := range fb.quotations {
		if q["quotation_number"] == body["quotation_number"] {
			writeJSON(w, http.StatusConflict, map[string]any{"error": map[string]any{"code": "DUPLICATE", "message": "quotation number already used"}})
			return
		}
	}

	stored := map[string]any{"quotation_id": len(fb.quotations) + 1, "status": "draft", "created_at": "2024-05-01T08:30:00.000Z"}
	for k, v := range body {
		stored[k] = v
	}

	fb.quotations = append(fb.quotations, stored)
	fb.created = append(fb.created, body)

	writeJSON(w, http.StatusCreated, stored)
}

// Created returns the bodies of accepted POSTs.
func (fb *fakeBackend) Created() []map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	return append([]map[string]any(nil), fb.created...)
}

// LastHeaders returns the headers of the most recent request.
func (fb *fakeBackend) LastHeaders() http.Header {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if len(fb.headers) == 0 {
		return nil
	}

	return fb.headers[len(fb.headers)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
