package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bokfor-dev/bokfor/internal/consolidation"
	"github.com/bokfor-dev/bokfor/internal/model"
)

func newGroupCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage consolidation groups",
	}
	cmd.AddCommand(newGroupCreateCommand(configPath))
	cmd.AddCommand(newGroupAddMemberCommand(configPath))
	cmd.AddCommand(newGroupEliminateCommand(configPath))
	return cmd
}

func newGroupCreateCommand(configPath *string) *cobra.Command {
	var name, parentID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a consolidation group",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			g := model.ConsolidationGroup{Name: name, ParentCompanyID: parentID}
			if err := e.db.InsertGroup(cmd.Context(), &g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group: %s (%s)\n", g.Name, g.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "group name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent company id (required)")
	_ = cmd.MarkFlagRequired("parent")

	return cmd
}

func newGroupAddMemberCommand(configPath *string) *cobra.Command {
	var groupID, companyID, pctStr string

	cmd := &cobra.Command{
		Use:   "add-member",
		Short: "Add a member company to a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			pct, err := decimal.NewFromString(pctStr)
			if err != nil || pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
				return fmt.Errorf("ownership must be a percentage between 0 and 100")
			}

			m := model.ConsolidationMember{GroupID: groupID, CompanyID: companyID, OwnershipPct: pct}
			if err := e.db.InsertMember(cmd.Context(), &m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Member added with %s%% ownership\n", pct)
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "group id (required)")
	_ = cmd.MarkFlagRequired("group")
	cmd.Flags().StringVar(&companyID, "company", "", "member company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&pctStr, "ownership", "100", "ownership percentage")

	return cmd
}

func newGroupEliminateCommand(configPath *string) *cobra.Command {
	var groupID, fromID, toID, account, amountStr, description string
	var year int

	cmd := &cobra.Command{
		Use:   "eliminate",
		Short: "Register an intercompany elimination",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("invalid amount %q", amountStr)
			}

			elim := model.IntercompanyElimination{
				GroupID:       groupID,
				FromCompanyID: fromID,
				ToCompanyID:   toID,
				AccountNumber: account,
				Year:          year,
				Amount:        amount,
				Description:   description,
			}
			if err := e.db.InsertElimination(cmd.Context(), &elim); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Elimination registered (%s)\n", elim.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "group id (required)")
	_ = cmd.MarkFlagRequired("group")
	cmd.Flags().StringVar(&fromID, "from", "", "from company id (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&toID, "to", "", "to company id (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&account, "account", "", "account number (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount to eliminate (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&description, "description", "", "description")

	return cmd
}

func newConsolidateCommand(configPath *string) *cobra.Command {
	var groupID, reportType string
	var year int

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Build a consolidated report for a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			report, err := e.consolidation().Consolidate(cmd.Context(), groupID, year,
				consolidation.ReportType(reportType))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Consolidated %s report for %s, %d\n", report.Type, report.GroupName, report.Year)
			if len(report.UnauditedCompanies) > 0 {
				fmt.Fprintf(out, "PARTIAL: fiscal year still open for %s\n",
					strings.Join(report.UnauditedCompanies, ", "))
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tNAME\tTOTAL")
			for _, line := range report.Lines {
				fmt.Fprintf(w, "%s\t%s\t%s\n", line.AccountNumber, line.AccountName, line.Total.StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "Non-controlling interest: %s\n", report.MinorityInterest.StringFixed(2))
			for _, ae := range report.Eliminations {
				status := "applied"
				if !ae.Applied {
					status = "duplicate, skipped"
				}
				fmt.Fprintf(out, "Elimination %s %s on %s: %s\n",
					ae.Elimination.Amount.StringFixed(2), status,
					ae.Elimination.AccountNumber, ae.Elimination.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "group id (required)")
	_ = cmd.MarkFlagRequired("group")
	cmd.Flags().IntVar(&year, "year", 0, "calendar year label (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVar(&reportType, "type", "full", "report type: full, income or balance")

	return cmd
}
