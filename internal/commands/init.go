package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bokfor-dev/bokfor/internal/accounts"
	"github.com/bokfor-dev/bokfor/internal/config"
	"github.com/bokfor-dev/bokfor/internal/model"
	"github.com/bokfor-dev/bokfor/internal/store"
)

func newInitCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bokfor project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir, *configPath)
		},
	}
	return cmd
}

func runInit(cmd *cobra.Command, dir, configPath string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating project dir: %w", err)
	}

	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(dir, filepath.Base(configPath))
	}
	if _, err := os.Stat(configPath); !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config %s already exists", configPath)
	}

	cfg := config.Default(filepath.Join(dir, "bokfor.db"))
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	// Opening the database applies the schema migrations.
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized bokfor project in %s\n", dir)
	fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", configPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n", cfg.Database.Path)
	return nil
}

func newCompanyCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies",
	}
	cmd.AddCommand(newCompanyCreateCommand(configPath))
	return cmd
}

func newCompanyCreateCommand(configPath *string) *cobra.Command {
	var name, orgNumber, currency string
	var year int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a company with its first fiscal year and default chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			if currency == "" {
				currency = e.cfg.Ledger.BaseCurrency
			}
			if year == 0 {
				year = time.Now().Year()
			}

			company := model.Company{Name: name, OrgNumber: orgNumber, BaseCurrency: currency}
			if err := e.db.InsertCompany(ctx, &company); err != nil {
				return err
			}

			fy := model.FiscalYear{
				CompanyID: company.ID,
				Year:      year,
				StartDate: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
				Status:    model.FiscalYearOpen,
			}
			if err := e.db.InsertFiscalYear(ctx, &fy); err != nil {
				return err
			}

			for _, a := range accounts.DefaultChart(company.ID) {
				a := a
				if err := e.db.InsertAccount(ctx, &a); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Company: %s (%s)\n", company.Name, company.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Fiscal year %d: %s\n", fy.Year, fy.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&orgNumber, "orgnr", "", "organization number")
	cmd.Flags().StringVar(&currency, "currency", "", "base currency (default from config)")
	cmd.Flags().IntVar(&year, "year", 0, "first fiscal year (default current)")

	return cmd
}
