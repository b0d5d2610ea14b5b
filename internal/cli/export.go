package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotation-service/internal/adapters/export"
)

func newExportCmd() *cobra.Command {
	var (
		filter criteriaFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the matching quotations to an Excel or PDF file",
		Example: `  quotectl export --format pdf --company acme
  quotectl export --format xlsx --out march.xlsx --from 2024-03-01 --to 2024-03-31
  quotectl export --format pdf --out - > quotations.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			criteria, err := filter.criteria()
			if err != nil {
				return err
			}

			s := sessionFrom(cmd)

			result, err := s.service.List(cmd.Context(), criteria)
			if err != nil {
				return err
			}

			now := s.now()
			doc := export.NewDocument(s.cfg.Quotation.ExportTitle, criteria, result.Items, now)

			if out == "-" {
				return export.Write(cmd.OutOrStdout(), f, doc)
			}

			if out == "" {
				out = f.Filename(now)
			}

			if err := writeFile(out, func(w io.Writer) error { return export.Write(w, f, doc) }); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d quotation(s) to %s\n", len(result.Items), out)

			return nil
		},
	}

	filter.register(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatXLSX), "file format: xlsx or pdf")
	cmd.Flags().StringVar(&out, "out", "", `output file, "-" for stdout (default quotations-<timestamp>.<format>)`)

	return cmd
}

// writeFile removes the file again when write fails.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
