// Package config loads the service and CLI configuration using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts   = 3
	DefaultClientRetryMultiplier    = 2.0
	DefaultClientRetryJitterFactor  = 0.25
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the number of probe successes
	// that close the circuit again.
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10
	DefaultTransportIdleConnTimeout     = 90 * time.Second

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultTaxRate is Thai VAT.
	DefaultTaxRate         = "0.07"
	DefaultCurrency        = "THB"
	DefaultBackendName     = "quotation-backend"
	DefaultServiceName     = "quotation-service"
	DefaultExportTitle     = "Quotations"
	DefaultCORSMaxAge      = 12 * time.Hour
	DefaultHealthTimeout   = 5 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultDotEnvFile      = ".env"
	DefaultConfigDirectory = "configs"
)

// EnvPrefix prefixes every environment override, e.g. APP_BACKEND_BASE_URL.
const EnvPrefix = "APP_"

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Backend   BackendConfig   `koanf:"backend"   validate:"required"`
	Quotation QuotationConfig `koanf:"quotation" validate:"required"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"min=0"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
	CORS            CORSConfig    `koanf:"cors"`
}

// CORSConfig lets the browser front end call the API from another origin.
// An empty AllowedOrigins disables CORS handling.
type CORSConfig struct {
	AllowedOrigins   []string      `koanf:"allowed_origins"   validate:"dive,required,origin"`
	AllowCredentials bool          `koanf:"allow_credentials"`
	MaxAge           time.Duration `koanf:"max_age"           validate:"min=0"`
}

type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig configures the rotating JSON log file.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,hostname_port"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// AuthConfig describes the identity headers set by the API gateway in
// front of the service. When Enabled, /api/v1 requires a subject and the
// read or write scope.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	RolesHeader   string `koanf:"roles_header"`
	ScopesHeader  string `koanf:"scopes_header"`
	SubjectHeader string `koanf:"subject_header"`
	ReadScope     string `koanf:"read_scope"     validate:"required_if=Enabled true"`
	WriteScope    string `koanf:"write_scope"    validate:"required_if=Enabled true"`
}

// ClientConfig tunes the resilient HTTP client used for the backend.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// BackendConfig points at the quotation backend REST API.
//
// Token is sent as a bearer token. UserID is recorded as created_by on new
// quotations; when empty it is read from the token's claims.
type BackendConfig struct {
	BaseURL       string        `koanf:"base_url"       validate:"required,url"`
	Name          string        `koanf:"name"           validate:"required"`
	Token         string        `koanf:"token"`
	UserID        string        `koanf:"user_id"`
	HealthTimeout time.Duration `koanf:"health_timeout" validate:"required,min=100ms"`
}

// QuotationConfig holds the pricing and export defaults.
type QuotationConfig struct {
	TaxRate         string `koanf:"tax_rate"         validate:"required,rate"`
	DefaultCurrency string `koanf:"default_currency" validate:"required,len=3,alpha"`
	ExportTitle     string `koanf:"export_title"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        DefaultServiceName,
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":                   DefaultServerPort,
		"server.host":                   "0.0.0.0",
		"server.read_timeout":           "30s",
		"server.write_timeout":          "60s",
		"server.idle_timeout":           "120s",
		"server.shutdown_timeout":       "10s",
		"server.request_timeout":        DefaultRequestTimeout.String(),
		"server.max_request_size":       DefaultMaxRequestSize,
		"server.cors.allowed_origins":   []string{},
		"server.cors.allow_credentials": false,
		"server.cors.max_age":           DefaultCORSMaxAge.String(),

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotation-service.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  DefaultServiceName,
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"auth.enabled":        false,
		"auth.roles_header":   "X-User-Roles",
		"auth.scopes_header":  "X-User-Scopes",
		"auth.subject_header": "X-User-ID",
		"auth.read_scope":     "quotations:read",
		"auth.write_scope":    "quotations:write",

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       DefaultTransportIdleConnTimeout.String(),

		"backend.base_url":       "http://localhost:3000/api",
		"backend.name":           DefaultBackendName,
		"backend.token":          "",
		"backend.user_id":        "",
		"backend.health_timeout": DefaultHealthTimeout.String(),

		"quotation.tax_rate":         DefaultTaxRate,
		"quotation.default_currency": DefaultCurrency,
		"quotation.export_title":     DefaultExportTitle,
	}
}

// Options controls where Load looks for configuration.
type Options struct {
	// Profile selects configs/{profile}.yaml on top of configs/base.yaml.
	Profile string

	// Dir holds base.yaml and the profile files. Defaults to "configs".
	Dir string

	// DotEnv is loaded into the process environment without overriding
	// variables already set. Defaults to ".env"; a missing file is ignored.
	DotEnv string

	// Flags, when set, override everything else. See FlagKeys.
	Flags *pflag.FlagSet
}

// FlagKeys maps CLI flag names onto config keys. Flags whose name is
// already a config key (e.g. --log.level) need no entry.
var FlagKeys = map[string]string{
	"backend-url":   "backend.base_url",
	"backend-token": "backend.token",
	"user-id":       "backend.user_id",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"port":          "server.port",
}

// Load reads configuration for profile with the default locations.
func Load(profile string) (*Config, error) {
	return LoadWithOptions(Options{Profile: profile})
}

// LoadWithOptions loads configuration with the following precedence
// (highest to lowest):
//  1. Changed command line flags
//  2. Environment variables (APP_ prefix), including those from .env
//  3. Profile config file ({dir}/{profile}.yaml)
//  4. Base config file ({dir}/base.yaml)
//  5. Default values
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.Dir == "" {
		opts.Dir = DefaultConfigDirectory
	}

	if opts.DotEnv == "" {
		opts.DotEnv = DefaultDotEnvFile
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(opts.Dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if opts.Profile != "" {
		if err := loadFileIfExists(k, filepath.Join(opts.Dir, opts.Profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", opts.Profile, err)
		}
	}

	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, fmt.Errorf("loading %s: %w", opts.DotEnv, err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envMapper(k)), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagKeyMapper(k, opts.Flags)), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envMapper resolves APP_BACKEND_BASE_URL to backend.base_url by
// matching against the keys loaded so far, since keys contain underscores
// too. Unknown variables fall back to replacing every underscore with a
// dot. Values for list keys are split on commas.
func envMapper(k *koanf.Koanf) func(string, string) (string, any) {
	index := make(map[string]string)
	lists := make(map[string]bool)

	for key, value := range k.All() {
		index[strings.ReplaceAll(key, ".", "_")] = key

		switch value.(type) {
		case []any, []string:
			lists[key] = true
		}
	}

	return func(name, value string) (string, any) {
		name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))

		key, ok := index[name]
		if !ok {
			return strings.ReplaceAll(name, "_", "."), value
		}

		if lists[key] {
			return key, splitList(value)
		}

		return key, value
	}
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	out := []string{}

	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

// flagKeyMapper loads only flags the user set that map onto a config key.
func flagKeyMapper(k *koanf.Koanf, flags *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}

		key, ok := FlagKeys[f.Name]
		if !ok {
			if !k.Exists(f.Name) {
				return "", nil
			}

			key = f.Name
		}

		return key, posflag.FlagVal(flags, f)
	}
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
