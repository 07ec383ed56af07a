// Package currency holds the pure conversion arithmetic for foreign-currency
// postings. Rate lookup lives in the store; nothing here does I/O.
package currency

import "github.com/shopspring/decimal"

// ToBase converts a foreign amount to the base currency given a rate of
// "1 foreign unit = rate base units". Identity when the currencies match.
func ToBase(amount decimal.Decimal, currencyCode, baseCurrency string, rate decimal.Decimal) decimal.Decimal {
	if currencyCode == "" || currencyCode == baseCurrency {
		return amount
	}
	return amount.Mul(rate)
}

// FxGainLoss computes the realized effect of settling a booked amount at a
// different rate: settled minus booked, both in base currency. Positive
// means loss (more base currency moved than booked), negative means gain.
func FxGainLoss(bookedBase, settledBase decimal.Decimal) decimal.Decimal {
	return settledBase.Sub(bookedBase)
}
