// Package ports defines the contracts between the application layer and
// the adapters that reach the quotation backend.
//
// Implementations return domain types and domain errors only:
// domain.ErrUnavailable when the backend cannot be reached,
// domain.ErrForbidden when it rejects the credentials and
// domain.ErrValidation when it rejects a payload.
package ports

import (
	"context"

	"github.com/jsamuelsen/quotation-service/internal/domain"
)

// QuotationSource lists and creates quotations held by the backend.
type QuotationSource interface {
	// ListQuotations returns every quotation in backend order.
	ListQuotations(ctx context.Context) ([]domain.Quotation, error)

	// CreateQuotation submits a draft and returns the stored quotation.
	CreateQuotation(ctx context.Context, draft domain.QuotationDraft) (*domain.Quotation, error)
}

// ClientDirectory lists the clients quotations are issued to.
type ClientDirectory interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
}

// QuotationBackend is the full backend surface used by the service.
type QuotationBackend interface {
	QuotationSource
	ClientDirectory
}
