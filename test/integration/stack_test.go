//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/jsamuelsen/quotation-service/internal/adapters/http"
	"github.com/jsamuelsen/quotation-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotation-service/internal/app"
	"github.com/jsamuelsen/quotation-service/internal/bootstrap"
	"github.com/jsamuelsen/quotation-service/internal/platform/config"
	"github.com/jsamuelsen/quotation-service/internal/ports"
)

// stack is the quotation service wired the way cmd/service wires it,
// listening on a loopback port in front of a fake backend.
type stack struct {
	cfg     *config.Config
	backend *fakeBackend
	server  *httpadapter.Server
	client  *http.Client
}

// stackConfig loads the built-in defaults only and points them at fb.
func stackConfig(t testing.TB, fb *fakeBackend) *config.Config {
	t.Helper()

	dir := t.TempDir()

	cfg, err := config.LoadWithOptions(config.Options{Dir: dir, DotEnv: filepath.Join(dir, ".env")})
	require.NoError(t, err)

	cfg.App.Environment = "test"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Backend.BaseURL = fb.BaseURL()
	cfg.Backend.UserID = "7"
	cfg.Backend.Token = "integration-token"
	cfg.Client.Timeout = 2 * time.Second
	cfg.Client.Retry.InitialInterval = 10 * time.Millisecond
	cfg.Client.Retry.MaxInterval = 100 * time.Millisecond
	cfg.Client.CircuitBreaker.MaxFailures = 3
	cfg.Client.CircuitBreaker.Timeout = time.Second

	return cfg
}

func startStack(t testing.TB, mutate func(*config.Config)) *stack {
	t.Helper()

	fb := newFakeBackend(t)
	cfg := stackConfig(t, fb)

	if mutate != nil {
		mutate(cfg)
	}

	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	backend, err := bootstrap.Backend(cfg, logger)
	require.NoError(t, err)

	registry := ports.NewHealthRegistry(cfg.Backend.HealthTimeout)
	require.NoError(t, registry.Register(backend))

	reg := prometheus.NewRegistry()

	service, err := bootstrap.QuotationService(cfg, backend, logger, app.NewMetrics(reg))
	require.NoError(t, err)

	server := httpadapter.New(&cfg.Server, logger)
	httpadapter.SetupRouter(server.Engine(), httpadapter.NewRouterConfig(cfg,
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "abc123", "2024-05-01T00:00:00Z"), reg),
		handlers.NewQuotationHandler(service, cfg.Quotation.ExportTitle),
	))

	_, err = server.Start()
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = server.Shutdown(ctx)
	})

	return &stack{
		cfg:     cfg,
		backend: fb,
		server:  server,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *stack) url(path string) string {
	return "http://" + s.server.Addr() + path
}

// send performs a request without asserting, so it is safe off the test
// goroutine. A non-nil body is sent as JSON.
func (s *stack) send(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader = http.NoBody

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url(path), reader)
	if err != nil {
		return 0, nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	return resp.StatusCode, data, err
}

// do sends a prepared request and returns the response and its body.
func (s *stack) do(t testing.TB, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := s.client.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func (s *stack) get(t testing.TB, path string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, s.url(path), http.NoBody)
	require.NoError(t, err)

	return s.do(t, req)
}
