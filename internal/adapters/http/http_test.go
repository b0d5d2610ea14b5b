package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
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
	"github.com/jsamuelsen/quotation-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotation-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotation-service/internal/app"
	"github.com/jsamuelsen/quotation-service/internal/domain"
	"github.com/jsamuelsen/quotation-service/internal/mocks"
	"github.com/jsamuelsen/quotation-service/internal/platform/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serverConfig(port int) *config.ServerConfig {
	return &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           port,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxRequestSize: 1 << 10,
	}
}

func TestServer_New(t *testing.T) {
	cfg := serverConfig(8080)
	srv := New(cfg, discardLogger())

	require.NotNil(t, srv.Engine())
	assert.Same(t, cfg, srv.Config())
	assert.Equal(t, "127.0.0.1:8080", srv.Addr())
	assert.Equal(t, cfg.ReadTimeout, srv.httpServer.ReadHeaderTimeout)
}

func TestServer_StartShutdown(t *testing.T) {
	srv := New(serverConfig(0), discardLogger())
	srv.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	errCh, err := srv.Start()
	require.NoError(t, err)
	require.NotEqual(t, "127.0.0.1:0", srv.Addr(), "Addr should report the bound port")

	resp, err := http.Get("http://" + srv.Addr() + "/ping")
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	_, open := <-errCh
	assert.False(t, open, "error channel should be closed after shutdown")
}

func TestServer_StartBindFailure(t *testing.T) {
	first := New(serverConfig(0), discardLogger())
	_, err := first.Start()
	require.NoError(t, err)

	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	host, port := splitAddr(t, first.Addr())
	cfg := serverConfig(port)
	cfg.Host = host

	_, err = New(cfg, discardLogger()).Start()
	assert.Error(t, err)
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()

	tcp, err := net.ResolveTCPAddr("tcp", addr)
	require.NoError(t, err)

	return tcp.IP.String(), tcp.Port
}

func TestServer_MaxBodySize(t *testing.T) {
	srv := New(serverConfig(0), discardLogger())
	srv.Engine().POST("/upload", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.Status(http.StatusOK)
	})

	small := httptest.NewRecorder()
	srv.Engine().ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("ok")))
	assert.Equal(t, http.StatusOK, small.Code)

	large := httptest.NewRecorder()
	srv.Engine().ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 2<<10))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, large.Code)
}

func quotationHandler(t *testing.T) *handlers.QuotationHandler {
	t.Helper()

	backend := mocks.NewMockQuotationBackend(t)
	backend.EXPECT().ListQuotations(mock.Anything).Return([]domain.Quotation{
		{QuotationID: 1, QuotationNumber: "Q-1", ClientID: 1, Currency: "THB", TotalAmount: "100.00"},
	}, nil).Maybe()
	backend.EXPECT().ListClients(mock.Anything).Return([]domain.Client{
		{ClientID: 1, CompanyName: "Acme Corp", Email: "sales@acme.com"},
	}, nil).Maybe()

	svc := app.NewQuotationService(app.QuotationServiceConfig{Backend: backend, Logger: discardLogger()})

	return handlers.NewQuotationHandler(svc, "")
}

func fullRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		App:    config.AppConfig{Name: "quotation-service"},
		Server: *serverConfig(0),
		Auth: config.AuthConfig{
			SubjectHeader: "X-User-ID",
			ScopesHeader:  "X-User-Scopes",
			ReadScope:     "quotations:read",
			WriteScope:    "quotations:write",
		},
	}
	cfg.Server.RequestTimeout = time.Second

	if mutate != nil {
		mutate(cfg)
	}

	health := handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t), handlers.BuildInfo{Version: "test"}, nil)

	engine := gin.New()
	SetupRouter(engine, NewRouterConfig(cfg, health, quotationHandler(t)))

	return engine
}

func TestSetupRouter_Routes(t *testing.T) {
	engine := fullRouter(t, nil)

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /-/live",
		"GET /-/ready",
		"GET /-/build",
		"GET /-/metrics",
		"GET /api/v1/quotations",
		"GET /api/v1/quotations/summary",
		"GET /api/v1/quotations/export",
		"POST /api/v1/quotations",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestSetupRouter_ListEchoesIDs(t *testing.T) {
	engine := fullRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-77")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "req-77", w.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderCorrelationID))
	assert.Contains(t, w.Body.String(), `"Q-1"`)
}

func TestSetupRouter_UnknownRoute(t *testing.T) {
	engine := fullRouter(t, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeNotFound, resp.Error.Code)
}

func TestSetupRouter_AuthEnabled(t *testing.T) {
	engine := fullRouter(t, func(cfg *config.Config) { cfg.Auth.Enabled = true })

	tests := []struct {
		name    string
		subject string
		scopes  string
		want    int
	}{
		{"anonymous", "", "", http.StatusForbidden},
		{"missing read scope", "42", "quotations:write", http.StatusForbidden},
		{"read scope", "42", "quotations:read", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations/summary", nil)
			if tt.subject != "" {
				req.Header.Set("X-User-ID", tt.subject)
			}

			req.Header.Set("X-User-Scopes", tt.scopes)

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	t.Run("probes stay open", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSetupRouter_CORS(t *testing.T) {
	engine := fullRouter(t, func(cfg *config.Config) {
		cfg.Server.CORS = config.CORSConfig{
			AllowedOrigins: []string{"https://sales.example.com"},
			MaxAge:         time.Hour,
		}
	})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/quotations", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		return w
	}

	allowed := preflight("https://sales.example.com")
	assert.Equal(t, http.StatusNoContent, allowed.Code)
	assert.Equal(t, "https://sales.example.com", allowed.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", allowed.Header().Get("Access-Control-Max-Age"))

	denied := preflight("https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}

