package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/invoicer/internal/domain"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show totals per customer and revenue by month",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = time.Now().Year()
		}

		o, err := appInstance.ReportService.GetOverview(cmd.Context(), year)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		out := cmd.OutOrStdout()
		currency := appInstance.Exporter.Currency

		fmt.Fprintf(out, "Invoices: %d\n", o.Count)
		fmt.Fprintf(out, "Total:    %s\n\n", domain.FormatMoney(o.Total, currency))

		if len(o.ByCustomer) > 0 {
			fmt.Fprintln(out, "By customer:")
			fmt.Fprintln(out, strings.Repeat("-", 50))
			for _, cs := range o.ByCustomer {
				fmt.Fprintf(out, "%-28s %4d %16s\n", truncate(cs.Customer, 28), cs.Count, domain.FormatMoney(cs.Total, currency))
			}
			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "Revenue by month (%d):\n", year)
		fmt.Fprintln(out, strings.Repeat("-", 50))
		found := false
		for month := time.January; month <= time.December; month++ {
			revenue, ok := o.ByMonth[month]
			if !ok {
				continue
			}
			found = true
			fmt.Fprintf(out, "%-10s %16s\n", month.String()[:3], domain.FormatMoney(revenue, currency))
		}
		if !found {
			fmt.Fprintln(out, "No revenue recorded")
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().Int("year", 0, "Year for the monthly breakdown (defaults to the current year)")
}
