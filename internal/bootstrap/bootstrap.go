// Package bootstrap builds the object graph shared by the HTTP service and
// the quotectl CLI from a loaded configuration.
package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotation-service/internal/adapters/clients"
	"github.com/jsamuelsen/quotation-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotation-service/internal/app"
	"github.com/jsamuelsen/quotation-service/internal/platform/config"
	"github.com/jsamuelsen/quotation-service/internal/platform/logging"
	"github.com/jsamuelsen/quotation-service/internal/ports"
)

// Logger writes to w, and to the rolling file when enabled, with the
// backend token masked.
func Logger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
		Secrets: []string{cfg.Backend.Token},
	}, w)
}

// Backend builds the resilient HTTP client for the quotation backend and
// the anti-corruption adapter over it.
func Backend(cfg *config.Config, logger *slog.Logger) (*acl.BackendClient, error) {
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Backend.BaseURL,
		ServiceName: cfg.Backend.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc:    clients.BearerAuth(cfg.Backend.Token),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating backend HTTP client: %w", err)
	}

	return acl.NewBackendClient(acl.BackendConfig{
		Client:      httpClient,
		ServiceName: cfg.Backend.Name,
		Logger:      logger,
	}), nil
}

// CreatedBy resolves the backend user id recorded on new quotations:
// backend.user_id when set, else the token's user_id or sub claim. An
// empty result disables quotation creation.
func CreatedBy(cfg *config.Config, logger *slog.Logger, now time.Time) string {
	if cfg.Backend.UserID != "" {
		return cfg.Backend.UserID
	}

	if cfg.Backend.Token == "" {
		logger.Warn("no backend token or user id configured; creating quotations is disabled")
		return ""
	}

	info, err := clients.InspectToken(cfg.Backend.Token)
	if err != nil {
		logger.Warn("backend token carries no readable claims; set backend.user_id to create quotations",
			slog.Any("error", err))

		return ""
	}

	if info.Expired(now) {
		logger.Warn("backend token has expired", slog.Time("expires_at", *info.ExpiresAt))
	}

	return info.Principal()
}

// QuotationService builds the use case layer over backend.
func QuotationService(cfg *config.Config, backend ports.QuotationBackend, logger *slog.Logger, metrics *app.Metrics) (*app.QuotationService, error) {
	taxRate, err := decimal.NewFromString(cfg.Quotation.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("parsing quotation.tax_rate %q: %w", cfg.Quotation.TaxRate, err)
	}

	return app.NewQuotationService(app.QuotationServiceConfig{
		Backend:         backend,
		Logger:          logger,
		Metrics:         metrics,
		TaxRate:         taxRate,
		DefaultCurrency: cfg.Quotation.DefaultCurrency,
		CreatedBy:       CreatedBy(cfg, logger, time.Now()),
	}), nil
}
