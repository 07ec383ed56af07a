package commands

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bokfor-dev/bokfor/internal/currency"
	"github.com/bokfor-dev/bokfor/internal/ledger"
)

// jsonRow mirrors the structured verification request of the inbound
// interface: {account_number, debit, credit}.
type jsonRow struct {
	AccountNumber string `json:"account_number"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
}

func newPostCommand(configPath *string) *cobra.Command {
	var (
		companyID, yearID, dateStr, description string
		debitAccount, creditAccount, amountStr  string
		rowsJSON, currencyCode                  string
		correction                              bool
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a verification",
		Long: `Post a balanced verification. Either give --debit/--credit/--amount for a
simple two-row entry, or --rows with a JSON array of {account_number, debit,
credit} objects. Foreign-currency amounts are converted to the base currency
with the stored rate for the verification date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			date, err := parseDate(dateStr)
			if err != nil {
				return err
			}

			var rows []ledger.RowInput
			switch {
			case rowsJSON != "":
				var parsed []jsonRow
				if err := json.Unmarshal([]byte(rowsJSON), &parsed); err != nil {
					return fmt.Errorf("parsing --rows: %w", err)
				}
				for _, jr := range parsed {
					row := ledger.RowInput{AccountNumber: jr.AccountNumber}
					if jr.Debit != "" {
						if row.Debit, err = decimal.NewFromString(jr.Debit); err != nil {
							return fmt.Errorf("row %s: invalid debit %q", jr.AccountNumber, jr.Debit)
						}
					}
					if jr.Credit != "" {
						if row.Credit, err = decimal.NewFromString(jr.Credit); err != nil {
							return fmt.Errorf("row %s: invalid credit %q", jr.AccountNumber, jr.Credit)
						}
					}
					rows = append(rows, row)
				}
			case debitAccount != "" && creditAccount != "" && amountStr != "":
				amount, err := decimal.NewFromString(amountStr)
				if err != nil {
					return fmt.Errorf("invalid amount %q", amountStr)
				}
				debitRow := ledger.RowInput{AccountNumber: debitAccount, Debit: amount}
				creditRow := ledger.RowInput{AccountNumber: creditAccount, Credit: amount}

				if currencyCode != "" && currencyCode != e.cfg.Ledger.BaseCurrency {
					rate, err := e.db.ExchangeRate(ctx, currencyCode, date)
					if err != nil {
						return err
					}
					base := currency.ToBase(amount, currencyCode, e.cfg.Ledger.BaseCurrency, rate.Rate)
					debitRow = ledger.RowInput{
						AccountNumber: debitAccount, Debit: base,
						Currency: currencyCode, ForeignDebit: amount, ExchangeRate: rate.Rate,
					}
					creditRow = ledger.RowInput{
						AccountNumber: creditAccount, Credit: base,
						Currency: currencyCode, ForeignCredit: amount, ExchangeRate: rate.Rate,
					}
				}
				rows = []ledger.RowInput{debitRow, creditRow}
			default:
				return fmt.Errorf("either --rows or --debit/--credit/--amount is required")
			}

			v, err := e.ledger().CreateVerification(ctx, ledger.CreateParams{
				CompanyID:    companyID,
				FiscalYearID: yearID,
				Date:         date,
				Description:  description,
				Correction:   correction,
				Rows:         rows,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Verification %d created (%s)\n", v.Number, v.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&yearID, "year", "", "fiscal year id (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVar(&dateStr, "date", "", "verification date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&debitAccount, "debit", "", "debit account number")
	cmd.Flags().StringVar(&creditAccount, "credit", "", "credit account number")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount")
	cmd.Flags().StringVar(&rowsJSON, "rows", "", "JSON array of rows")
	cmd.Flags().StringVar(&currencyCode, "currency", "", "foreign currency code for --amount")
	cmd.Flags().BoolVar(&correction, "correction", false, "mark as corrective entry (closing state)")

	return cmd
}

func newReverseCommand(configPath *string) *cobra.Command {
	var verificationID, yearID, dateStr string

	cmd := &cobra.Command{
		Use:   "reverse",
		Short: "Reverse a verification into an open fiscal year",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			date, err := parseDate(dateStr)
			if err != nil {
				return err
			}

			v, err := e.ledger().ReverseVerification(cmd.Context(), verificationID, yearID, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reversal posted as verification %d (%s)\n", v.Number, v.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&verificationID, "verification", "", "verification id to reverse (required)")
	_ = cmd.MarkFlagRequired("verification")
	cmd.Flags().StringVar(&yearID, "year", "", "open fiscal year id for the reversal (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVar(&dateStr, "date", "", "reversal date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
