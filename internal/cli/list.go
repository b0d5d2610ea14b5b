package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotation-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotation-service/internal/domain"
)

func newListCmd() *cobra.Command {
	var (
		filter criteriaFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotations matching the filters",
		Example: `  quotectl list --company acme --from 2024-03-01
  quotectl list --email @globex.io --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			criteria, err := filter.criteria()
			if err != nil {
				return err
			}

			result, err := sessionFrom(cmd).service.List(cmd.Context(), criteria)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if output == outputJSON {
				items := make([]dto.QuotationResponse, len(result.Items))
				for i, item := range result.Items {
					items[i] = dto.ToQuotationResponse(item)
				}

				return writeJSON(w, items)
			}

			if len(result.Items) == 0 {
				_, _ = fmt.Fprintln(w, "No quotations match the filters.")
				return nil
			}

			t := newTable(w)
			t.AppendHeader(table.Row{"Quotation No.", "Created", "Valid Until", "Company", "Contact", "Amount"})

			for _, r := range domain.ToRows(result.Items) {
				t.AppendRow(table.Row{r.QuotationNumber, r.CreatedAt, r.ValidUntil, r.CompanyName, r.ContactPerson, r.Amount})
			}

			t.AppendFooter(table.Row{"", "", "", "", "Matched", fmt.Sprintf("%d of %d", len(result.Items), result.Fetched)})
			t.Render()

			if result.Unmatched > 0 {
				_, _ = fmt.Fprintf(w, "%d quotation(s) reference a client that does not exist.\n", result.Unmatched)
			}

			return nil
		},
	}

	filter.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")

	return cmd
}
