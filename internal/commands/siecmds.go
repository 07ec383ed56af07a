package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bokfor-dev/bokfor/internal/closing"
	"github.com/bokfor-dev/bokfor/internal/sie"
)

func newImportCommand(configPath *string) *cobra.Command {
	var companyID, yearID string

	cmd := &cobra.Command{
		Use:   "import <file.se>",
		Short: "Import a SIE4 file into a fiscal year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening SIE file: %w", err)
			}
			defer f.Close()

			doc, err := sie.Parse(f)
			if err != nil {
				return err
			}

			stats, err := e.importer().Import(cmd.Context(), companyID, yearID, doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts: %d created, %d existing\n", stats.AccountsCreated, stats.AccountsExisting)
			fmt.Fprintf(out, "Verifications: %d created (%d rows)\n", stats.VerificationsCreated, stats.RowsCreated)
			for _, w := range stats.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range stats.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&yearID, "year", "", "target fiscal year id (required)")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

func newExportCommand(configPath *string) *cobra.Command {
	var companyID, yearID, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a fiscal year as SIE4",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			company, err := e.db.Company(ctx, companyID)
			if err != nil {
				return err
			}
			fy, err := e.db.FiscalYear(ctx, yearID)
			if err != nil {
				return err
			}
			accts, err := e.db.AccountsByCompany(ctx, companyID)
			if err != nil {
				return err
			}
			verifications, err := e.db.VerificationsByYear(ctx, yearID)
			if err != nil {
				return err
			}

			// The carry-forward verification, when present, provides #IB.
			openingID := ""
			for _, v := range verifications {
				if v.Description == closing.OpeningDescription && v.ReversesID == "" {
					openingID = v.ID
					break
				}
			}

			doc := sie.BuildDocument(sie.ExportParams{
				Company:               company,
				FiscalYear:            fy,
				Accounts:              accts,
				Verifications:         verifications,
				OpeningVerificationID: openingID,
			})

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return sie.Serialize(w, doc)
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&yearID, "year", "", "fiscal year id (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	return cmd
}
