package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotation-service/internal/adapters/http/dto"
)

func newSummaryCmd() *cobra.Command {
	var (
		filter criteriaFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count the matching quotations and total them per currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			criteria, err := filter.criteria()
			if err != nil {
				return err
			}

			result, err := sessionFrom(cmd).service.Summary(cmd.Context(), criteria)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if output == outputJSON {
				return writeJSON(w, dto.ToSummaryResponse(result))
			}

			_, _ = fmt.Fprintf(w, "Quotations: %d (with client %d, without client %d)\n",
				result.Count, result.WithClient, result.WithoutClient)

			if result.InvalidAmounts > 0 {
				_, _ = fmt.Fprintf(w, "Unparseable amounts: %d\n", result.InvalidAmounts)
			}

			if len(result.Totals) == 0 {
				return nil
			}

			t := newTable(w)
			t.AppendHeader(table.Row{"Currency", "Count", "Total"})

			for _, ct := range result.Totals {
				t.AppendRow(table.Row{ct.Currency, ct.Count, ct.Total.StringFixed(2)})
			}

			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 2, Align: text.AlignRight},
				{Number: 3, Align: text.AlignRight},
			})
			t.Render()

			return nil
		},
	}

	filter.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")

	return cmd
}
