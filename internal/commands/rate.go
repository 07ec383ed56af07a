package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bokfor-dev/bokfor/internal/model"
)

func newRateCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Manage exchange rates",
	}
	cmd.AddCommand(newRateSetCommand(configPath))
	return cmd
}

func newRateSetCommand(configPath *string) *cobra.Command {
	var currencyCode, dateStr, rateStr string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store an exchange rate for a currency and date",
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
			rate, err := decimal.NewFromString(rateStr)
			if err != nil || !rate.IsPositive() {
				return fmt.Errorf("rate must be a positive decimal")
			}

			r := model.ExchangeRate{CurrencyCode: currencyCode, RateDate: date, Rate: rate}
			if err := e.db.InsertExchangeRate(cmd.Context(), &r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "1 %s = %s %s on %s\n",
				currencyCode, rate, e.cfg.Ledger.BaseCurrency, dateStr)
			return nil
		},
	}

	cmd.Flags().StringVar(&currencyCode, "currency", "", "currency code (required)")
	_ = cmd.MarkFlagRequired("currency")
	cmd.Flags().StringVar(&dateStr, "date", "", "rate date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&rateStr, "rate", "", "base units per 1 foreign unit (required)")
	_ = cmd.MarkFlagRequired("rate")

	return cmd
}
