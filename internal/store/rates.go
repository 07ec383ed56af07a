package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// InsertExchangeRate persists a rate keyed by (currency, date). Rate
// fetching happens outside this core; the table only serves lookups.
func (d *DB) InsertExchangeRate(ctx context.Context, r *model.ExchangeRate) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := d.sql.ExecContext(ctx, `
	INSERT INTO exchange_rates(id, currency_code, rate_date, rate) VALUES(?, ?, ?, ?)`,
		r.ID, r.CurrencyCode, r.RateDate.Format(dateFormat), r.Rate.String())
	return err
}

// ExchangeRate returns the rate for a currency on or before the given date
// (the most recent published rate applies).
func (d *DB) ExchangeRate(ctx context.Context, currencyCode string, date time.Time) (model.ExchangeRate, error) {
	row := d.sql.QueryRowContext(ctx, `
	SELECT id, currency_code, rate_date, rate FROM exchange_rates
	WHERE currency_code = ? AND rate_date <= ?
	ORDER BY rate_date DESC LIMIT 1`, currencyCode, date.Format(dateFormat))

	var r model.ExchangeRate
	var rateDate, rate string
	err := row.Scan(&r.ID, &r.CurrencyCode, &rateDate, &rate)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExchangeRate{}, ledger.NotFoundError{Kind: "exchange rate", Key: currencyCode}
	}
	if err != nil {
		return model.ExchangeRate{}, err
	}
	if r.RateDate, err = time.Parse(dateFormat, rateDate); err != nil {
		return model.ExchangeRate{}, fmt.Errorf("parsing rate date %q: %w", rateDate, err)
	}
	if r.Rate, err = parseDec(rate); err != nil {
		return model.ExchangeRate{}, err
	}
	return r, nil
}
