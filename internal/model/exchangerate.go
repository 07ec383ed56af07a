package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores "1 foreign unit = Rate base-currency units" for a
// currency on a date. Rates are looked up by this core, never mutated by it.
type ExchangeRate struct {
	ID           string
	CurrencyCode string
	RateDate     time.Time
	Rate         decimal.Decimal
}
