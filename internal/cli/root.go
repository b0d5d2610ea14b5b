// Package cli implements quotectl, a command-line client for the
// quotation backend that shares the service's configuration and use cases.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotation-service/internal/app"
	"github.com/jsamuelsen/quotation-service/internal/bootstrap"
	"github.com/jsamuelsen/quotation-service/internal/platform/config"
	"github.com/jsamuelsen/quotation-service/internal/ports"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// BackendFactory builds the quotation backend from the loaded config.
type BackendFactory func(cfg *config.Config, logger *slog.Logger) (ports.QuotationBackend, error)

// Options injects collaborators; zero values use the real ones.
type Options struct {
	Out     io.Writer
	Err     io.Writer
	Backend BackendFactory
	Now     func() time.Time
}

const (
	cliLogLevel  = "warn"
	cliLogFormat = "pretty"
)

type serviceKey struct{}

type session struct {
	cfg     *config.Config
	service *app.QuotationService
	now     func() time.Time
}

// NewRootCmd builds the quotectl command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	if opts.Backend == nil {
		opts.Backend = func(cfg *config.Config, logger *slog.Logger) (ports.QuotationBackend, error) {
			return bootstrap.Backend(cfg, logger)
		}
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	var profile string

	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Browse, summarize and export quotations",
		Long: `quotectl reads quotations and clients from the quotation backend, joins
them and applies the same company, email and date filters as the HTTP API.

Configuration comes from configs/base.yaml, configs/<profile>.yaml, .env and
APP_* variables; the flags below override all of them.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			s, err := open(cmd, profile, opts)
			if err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), serviceKey{}, s))

			return nil
		},
	}

	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&profile, "profile", os.Getenv("APP_ENVIRONMENT"), "configuration profile (configs/<profile>.yaml)")
	pf.String("backend-url", "", "quotation backend base URL")
	pf.String("backend-token", "", "bearer token for the backend")
	pf.String("user-id", "", "backend user id recorded on created quotations")
	pf.String("log-level", cliLogLevel, "log level: trace, debug, info, warn, error")
	pf.String("log-format", cliLogFormat, "log format: json, text, pretty")

	root.AddCommand(
		newListCmd(),
		newSummaryCmd(),
		newExportCmd(),
	)

	return root
}

// open loads configuration with the command's flags on top and builds the
// quotation service. CLI logging goes to stderr and defaults to warn.
func open(cmd *cobra.Command, profile string, opts Options) (*session, error) {
	cfg, err := config.LoadWithOptions(config.Options{Profile: profile, Flags: cmd.Flags()})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Flag or APP_LOG_* beat the CLI defaults; config files do not.
	if !cmd.Flags().Changed("log-level") && os.Getenv("APP_LOG_LEVEL") == "" {
		cfg.Log.Level = cliLogLevel
	}

	if !cmd.Flags().Changed("log-format") && os.Getenv("APP_LOG_FORMAT") == "" {
		cfg.Log.Format = cliLogFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := bootstrap.Logger(cfg, opts.Err)

	backend, err := opts.Backend(cfg, logger)
	if err != nil {
		return nil, err
	}

	service, err := bootstrap.QuotationService(cfg, backend, logger, nil)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, service: service, now: opts.Now}, nil
}

func sessionFrom(cmd *cobra.Command) *session {
	s, _ := cmd.Context().Value(serviceKey{}).(*session)
	return s
}
