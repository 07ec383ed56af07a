package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBalanceCommand(configPath *string) *cobra.Command {
	var companyID, yearID string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the trial balance for a fiscal year",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			rows, err := e.ledger().TrialBalance(cmd.Context(), companyID, yearID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tNAME\tDEBIT\tCREDIT")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					r.AccountNumber, r.AccountName, r.Debit.StringFixed(2), r.Credit.StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&yearID, "year", "", "fiscal year id (required)")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}
