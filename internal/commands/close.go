package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCloseCommand(configPath *string) *cobra.Command {
	var companyID, yearID string
	var begin bool

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a fiscal year and carry forward opening balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if begin {
				fy, err := e.closing().BeginClosing(ctx, companyID, yearID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Fiscal year %d is now closing; only corrective entries are accepted\n", fy.Year)
				return nil
			}

			result, err := e.closing().CloseFiscalYear(ctx, companyID, yearID)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Closed fiscal year %d\n", result.ClosedYear.Year)
			fmt.Fprintf(out, "Period result: %s\n", result.PeriodResult.StringFixed(2))
			fmt.Fprintf(out, "Next fiscal year %d: %s\n", result.NextYear.Year, result.NextYear.ID)
			if result.OpeningVerification.ID != "" {
				fmt.Fprintf(out, "Opening verification %d with %d rows\n",
					result.OpeningVerification.Number, len(result.OpeningVerification.Rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&yearID, "year", "", "fiscal year id (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().BoolVar(&begin, "begin", false, "only move the year into the closing state")

	return cmd
}
