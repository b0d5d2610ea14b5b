package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jsamuelsen/quotation-service/internal/adapters/clients"
	"github.com/jsamuelsen/quotation-service/internal/domain"
	"github.com/jsamuelsen/quotation-service/internal/platform/logging"
)

const (
	quotationPath = "/quotation"
	clientPath    = "/client"
)

// BackendConfig configures a BackendClient.
type BackendConfig struct {
	// Client must have its BaseURL pointed at the quotation backend.
	Client *clients.Client

	// ServiceName appears in domain errors and health responses.
	ServiceName string

	Logger *slog.Logger
}

// BackendClient reads quotations and clients from the quotation backend and
// submits new quotations to it. It implements ports.QuotationBackend and
// ports.HealthChecker.
type BackendClient struct {
	BaseAdapter
	logger *slog.Logger
}

// NewBackendClient panics when no HTTP client is configured.
func NewBackendClient(cfg BackendConfig) *BackendClient {
	if cfg.Client == nil {
		panic("BackendClient: Client is required")
	}

	name := cfg.ServiceName
	if name == "" {
		name = cfg.Client.ServiceName()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BackendClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, name),
		logger:      logger.With(slog.String("component", "acl.BackendClient")),
	}
}

// looseString accepts a JSON string, number or null. The backend sends
// amounts as numeric strings and user ids as numbers.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}

		*s = looseString(v)

		return nil
	}

	*s = looseString(data)

	return nil
}

func (s looseString) String() string {
	return string(s)
}

// quotationDTO is the backend's quotation shape.
type quotationDTO struct {
	QuotationID     int         `json:"quotation_id"`
	QuotationNumber string      `json:"quotation_number"`
	ClientID        int         `json:"client_id"`
	CreatedAt       *string     `json:"created_at"`
	ValidUntil      *string     `json:"valid_until"`
	Status          string      `json:"status"`
	Subtotal        looseString `json:"subtotal"`
	TaxAmount       looseString `json:"tax_amount"`
	TotalAmount     looseString `json:"total_amount"`
	Currency        string      `json:"currency"`
	Notes           string      `json:"notes"`
	CreatedBy       looseString `json:"created_by"`
}

type clientDTO struct {
	ClientID      int     `json:"client_id"`
	CompanyName   string  `json:"company_name"`
	Address       string  `json:"address"`
	Email         string  `json:"email"`
	ContactPerson *string `json:"contact_person"`
}

type createQuotationRequest struct {
	QuotationNumber string `json:"quotation_number"`
	ClientID        int    `json:"client_id"`
	CreatedBy       int    `json:"created_by"`
	ValidUntil      string `json:"valid_until"`
	Subtotal        string `json:"subtotal"`
	TaxAmount       string `json:"tax_amount"`
	TotalAmount     string `json:"total_amount"`
	Currency        string `json:"currency"`
	Notes           string `json:"notes"`
}

// ListQuotations fetches every quotation.
func (c *BackendClient) ListQuotations(ctx context.Context) ([]domain.Quotation, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", quotationPath))

	body, err := c.Get(ctx, quotationPath, "list quotations")
	if err != nil {
		return nil, err
	}

	dtos, err := DecodeResponse[[]quotationDTO](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	quotations, err := TranslateSlice(*dtos, func(d *quotationDTO) (domain.Quotation, error) {
		return c.translateQuotation(ctx, d), nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).DebugContext(ctx, "fetched quotations", slog.Int("count", len(quotations)))

	return quotations, nil
}

// ListClients fetches every client.
func (c *BackendClient) ListClients(ctx context.Context) ([]domain.Client, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", clientPath))

	body, err := c.Get(ctx, clientPath, "list clients")
	if err != nil {
		return nil, err
	}

	dtos, err := DecodeResponse[[]clientDTO](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	result, err := TranslateSlice(*dtos, translateClient)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).DebugContext(ctx, "fetched clients", slog.Int("count", len(result)))

	return result, nil
}

// CreateQuotation posts a draft. Amounts are sent fixed to two places.
func (c *BackendClient) CreateQuotation(ctx context.Context, draft domain.QuotationDraft) (*domain.Quotation, error) {
	if err := ValidateRequired(draft.QuotationNumber, "quotation_number"); err != nil {
		return nil, err
	}

	createdBy, err := strconv.Atoi(draft.CreatedBy)
	if err != nil || createdBy <= 0 {
		return nil, domain.NewValidationErrorWithValue("created_by", "must be a positive user id", draft.CreatedBy)
	}

	req := createQuotationRequest{
		QuotationNumber: draft.QuotationNumber,
		ClientID:        draft.ClientID,
		CreatedBy:       createdBy,
		ValidUntil:      draft.ValidUntil.UTC().Format(time.RFC3339Nano),
		Subtotal:        draft.Subtotal.StringFixed(2),
		TaxAmount:       draft.TaxAmount.StringFixed(2),
		TotalAmount:     draft.TotalAmount.StringFixed(2),
		Currency:        draft.Currency,
		Notes:           draft.Notes,
	}

	c.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("path", quotationPath),
		slog.String("quotation_number", draft.QuotationNumber))

	body, err := c.Post(ctx, quotationPath, req, "create quotation")
	if err != nil {
		return nil, err
	}

	dto, err := DecodeResponse[quotationDTO](body)
	if err != nil {
		// The backend accepted the quotation; echo what was sent.
		c.logger.WarnContext(ctx, "create response not decodable", slog.Any("error", err))

		validUntil := draft.ValidUntil.UTC()

		return &domain.Quotation{
			QuotationNumber: req.QuotationNumber,
			ClientID:        req.ClientID,
			ValidUntil:      &validUntil,
			Currency:        req.Currency,
			Subtotal:        req.Subtotal,
			TaxAmount:       req.TaxAmount,
			TotalAmount:     req.TotalAmount,
			Notes:           req.Notes,
			CreatedBy:       draft.CreatedBy,
		}, nil
	}

	q := c.translateQuotation(ctx, dto)

	return &q, nil
}

// Name implements ports.HealthChecker.
func (c *BackendClient) Name() string {
	return c.ServiceName()
}

// Check reports the backend unhealthy while the circuit is open, otherwise
// it lists clients as a connectivity probe.
func (c *BackendClient) Check(ctx context.Context) error {
	if snap := c.client.CircuitSnapshot(); snap.State == clients.StateOpen {
		return fmt.Errorf("circuit breaker open since %s", snap.LastFailure.UTC().Format(time.RFC3339))
	}

	body, err := c.Get(ctx, clientPath, "health check")
	if err != nil {
		return err
	}

	return body.Close()
}

// translateQuotation never fails: unparseable timestamps become absent.
func (c *BackendClient) translateQuotation(ctx context.Context, d *quotationDTO) domain.Quotation {
	q := domain.Quotation{
		QuotationID:     d.QuotationID,
		QuotationNumber: d.QuotationNumber,
		ClientID:        d.ClientID,
		Currency:        d.Currency,
		Subtotal:        d.Subtotal.String(),
		TaxAmount:       d.TaxAmount.String(),
		TotalAmount:     d.TotalAmount.String(),
		Status:          d.Status,
		Notes:           d.Notes,
		CreatedBy:       d.CreatedBy.String(),
	}

	var err error

	if q.CreatedAt, err = parseTimestamp(d.CreatedAt); err != nil {
		c.logger.DebugContext(ctx, "dropping created_at",
			slog.Int("quotation_id", d.QuotationID), slog.Any("error", err))
	}

	if q.ValidUntil, err = parseTimestamp(d.ValidUntil); err != nil {
		c.logger.DebugContext(ctx, "dropping valid_until",
			slog.Int("quotation_id", d.QuotationID), slog.Any("error", err))
	}

	return q
}

func translateClient(d *clientDTO) (domain.Client, error) {
	c := domain.Client{
		ClientID:    d.ClientID,
		CompanyName: d.CompanyName,
		Email:       d.Email,
		Address:     d.Address,
	}

	if d.ContactPerson != nil {
		c.ContactPerson = *d.ContactPerson
	}

	return c, nil
}
