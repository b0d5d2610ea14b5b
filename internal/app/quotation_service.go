// Package app contains the use cases that sit between the HTTP and CLI
// adapters and the quotation backend.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotation-service/internal/domain"
	"github.com/jsamuelsen/quotation-service/internal/ports"
)

// DefaultCurrency prices new quotations when neither the input nor
// QuotationServiceConfig names a currency.
const DefaultCurrency = "THB"

// QuotationServiceConfig wires a QuotationService.
type QuotationServiceConfig struct {
	Backend ports.QuotationBackend
	Logger  *slog.Logger
	Metrics *Metrics

	// TaxRate is applied to every subtotal as given; zero means untaxed.
	// The configured default lives in config.DefaultTaxRate.
	TaxRate         decimal.Decimal
	DefaultCurrency string

	// CreatedBy is the backend user id recorded on new quotations.
	CreatedBy string
}

// QuotationService lists, summarizes and creates quotations.
type QuotationService struct {
	backend         ports.QuotationBackend
	logger          *slog.Logger
	metrics         *Metrics
	executor        *Executor
	taxRate         decimal.Decimal
	defaultCurrency string
	createdBy       string
}

// NewQuotationService panics when no backend is configured.
func NewQuotationService(cfg QuotationServiceConfig) *QuotationService {
	if cfg.Backend == nil {
		panic("QuotationService: Backend is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	currency := cfg.DefaultCurrency
	if currency == "" {
		currency = DefaultCurrency
	}

	return &QuotationService{
		backend:         cfg.Backend,
		logger:          logger,
		metrics:         cfg.Metrics,
		executor:        NewExecutor(logger, cfg.Metrics),
		taxRate:         cfg.TaxRate,
		defaultCurrency: currency,
		createdBy:       cfg.CreatedBy,
	}
}

// ListResult is a filtered quotation list.
type ListResult struct {
	Items []domain.EnrichedQuotation

	// Fetched counts every quotation the backend returned.
	Fetched int

	// Unmatched counts fetched quotations with no client record.
	Unmatched int
}

type snapshot struct {
	quotations []domain.Quotation
	clients    []domain.Client
}

// List fetches quotations and clients concurrently, joins them and applies
// criteria. A failure of either fetch fails the whole call.
func (s *QuotationService) List(ctx context.Context, criteria domain.FilterCriteria) (*ListResult, error) {
	op := Operation[domain.FilterCriteria, snapshot, []domain.EnrichedQuotation, *ListResult]{
		Name: "list_quotations",
		Perform: func(ctx context.Context, _ domain.FilterCriteria) (snapshot, error) {
			return s.fetch(ctx)
		},
		Verify: func(_ context.Context, _ domain.FilterCriteria, snap snapshot) ([]domain.EnrichedQuotation, error) {
			enriched := domain.Enrich(snap.quotations, snap.clients)
			if err := verifyJoin(enriched); err != nil {
				return nil, err
			}

			return enriched, nil
		},
		Respond: func(ctx context.Context, criteria domain.FilterCriteria, enriched []domain.EnrichedQuotation) (*ListResult, error) {
			result := &ListResult{
				Items:   domain.Filter(enriched, criteria),
				Fetched: len(enriched),
			}

			for _, e := range enriched {
				if !e.HasClient() {
					result.Unmatched++
				}
			}

			s.metrics.observeFilter(result.Fetched, len(result.Items), result.Unmatched)
			s.logger.DebugContext(ctx, "quotations filtered",
				slog.Int("fetched", result.Fetched),
				slog.Int("matched", len(result.Items)),
				slog.Int("unmatched_clients", result.Unmatched),
			)

			return result, nil
		},
	}

	return Execute(ctx, s.executor, op, criteria)
}

// SummaryResult aggregates a filtered list.
type SummaryResult struct {
	domain.Summary

	Fetched   int
	Unmatched int
}

// Summary totals the quotations matching criteria.
func (s *QuotationService) Summary(ctx context.Context, criteria domain.FilterCriteria) (*SummaryResult, error) {
	list, err := s.List(ctx, criteria)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		Summary:   domain.Summarize(list.Items),
		Fetched:   list.Fetched,
		Unmatched: list.Unmatched,
	}, nil
}

// CreateQuotationInput is what a user fills in to create a quotation.
// The client is looked up by company name; tax and total are derived.
type CreateQuotationInput struct {
	QuotationNumber string
	CompanyName     string
	ValidUntil      string // YYYY-MM-DD
	Subtotal        string
	Currency        string
	Notes           string
}

type preparedDraft struct {
	draft   domain.QuotationDraft
	created *domain.Quotation
}

// Create resolves the client, prices the draft and submits it.
func (s *QuotationService) Create(ctx context.Context, input CreateQuotationInput) (*domain.Quotation, error) {
	op := Operation[CreateQuotationInput, preparedDraft, *domain.Quotation, *domain.Quotation]{
		Name:     "create_quotation",
		Validate: s.validateCreate,
		Perform:  s.submit,
		Verify: func(_ context.Context, _ CreateQuotationInput, p preparedDraft) (*domain.Quotation, error) {
			if p.created == nil {
				return nil, domain.NewUnavailableError("quotation-backend", "no quotation returned")
			}

			if p.created.QuotationNumber != "" && p.created.QuotationNumber != p.draft.QuotationNumber {
				return nil, fmt.Errorf("backend stored quotation %q, expected %q",
					p.created.QuotationNumber, p.draft.QuotationNumber)
			}

			return p.created, nil
		},
		Archive: func(ctx context.Context, _ CreateQuotationInput, created *domain.Quotation) error {
			s.metrics.observeCreated(created.Currency)
			s.logger.InfoContext(ctx, "quotation created",
				slog.Int("quotation_id", created.QuotationID),
				slog.String("quotation_number", created.QuotationNumber),
				slog.Int("client_id", created.ClientID),
				slog.String("total_amount", created.TotalAmount),
				slog.String("created_by", created.CreatedBy),
			)

			return nil
		},
	}

	return Execute(ctx, s.executor, op, input)
}

func (s *QuotationService) validateCreate(_ context.Context, in CreateQuotationInput) error {
	required := []struct{ field, value string }{
		{"quotation_number", in.QuotationNumber},
		{"company_name", in.CompanyName},
		{"valid_until", in.ValidUntil},
		{"subtotal", in.Subtotal},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.NewValidationError(r.field, "is required")
		}
	}

	if _, err := domain.ParseDate("valid_until", in.ValidUntil); err != nil {
		return err
	}

	subtotal, err := decimal.NewFromString(strings.TrimSpace(in.Subtotal))
	if err != nil {
		return domain.NewValidationErrorWithValue("subtotal", "must be a decimal number", in.Subtotal)
	}

	if !subtotal.IsPositive() {
		return domain.NewValidationErrorWithValue("subtotal", "must be greater than zero", in.Subtotal)
	}

	if s.createdBy == "" {
		return domain.NewForbiddenError("create quotation", "no backend user id configured")
	}

	return nil
}

// submit resolves the client against a fresh client list, then posts.
func (s *QuotationService) submit(ctx context.Context, in CreateQuotationInput) (preparedDraft, error) {
	clients, err := s.backend.ListClients(ctx)
	if err != nil {
		return preparedDraft{}, err
	}

	client, ok := findClientByName(clients, in.CompanyName)
	if !ok {
		return preparedDraft{}, domain.NewValidationErrorWithValue(
			"company_name", "no client with this company name", in.CompanyName)
	}

	draft := s.price(in, client.ClientID)

	created, err := s.backend.CreateQuotation(ctx, draft)
	if err != nil {
		return preparedDraft{}, err
	}

	return preparedDraft{draft: draft, created: created}, nil
}

// price derives tax and total from the subtotal, each rounded to cents.
func (s *QuotationService) price(in CreateQuotationInput, clientID int) domain.QuotationDraft {
	// Validated earlier.
	subtotal, _ := decimal.NewFromString(strings.TrimSpace(in.Subtotal))
	validUntil, _ := domain.ParseDate("valid_until", in.ValidUntil)

	tax := subtotal.Mul(s.taxRate).Round(2)

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	return domain.QuotationDraft{
		QuotationNumber: strings.TrimSpace(in.QuotationNumber),
		ClientID:        clientID,
		ValidUntil:      *validUntil,
		Currency:        currency,
		Subtotal:        subtotal.Round(2),
		TaxAmount:       tax,
		TotalAmount:     subtotal.Round(2).Add(tax),
		Notes:           in.Notes,
		CreatedBy:       s.createdBy,
	}
}

// findClientByName matches company names exactly, ignoring case and
// surrounding whitespace. The first match wins.
func findClientByName(clients []domain.Client, name string) (domain.Client, bool) {
	name = strings.TrimSpace(name)

	for _, c := range clients {
		if strings.EqualFold(strings.TrimSpace(c.CompanyName), name) {
			return c, true
		}
	}

	return domain.Client{}, false
}

func (s *QuotationService) fetch(ctx context.Context) (snapshot, error) {
	quotations, clients, err := Parallel2(ctx,
		s.backend.ListQuotations,
		s.backend.ListClients,
	)
	if err != nil {
		return snapshot{}, err
	}

	return snapshot{quotations: quotations, clients: clients}, nil
}

func verifyJoin(items []domain.EnrichedQuotation) error {
	for _, e := range items {
		if e.Client != nil && e.Client.ClientID != e.ClientID {
			return fmt.Errorf("quotation %d joined to client %d", e.QuotationID, e.Client.ClientID)
		}
	}

	return nil
}
