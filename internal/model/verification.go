package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Verification is one journal entry: an atomic, balanced set of debit/credit
// rows. Immutable once created; corrections go through a reversing
// verification that references the original via ReversesID.
type Verification struct {
	ID           string
	CompanyID    string
	FiscalYearID string
	Number       int // sequential per (company, fiscal year), no gaps
	Date         time.Time
	Description  string
	ReversesID   string // id of the verification this one reverses, if any
	Rows         []VerificationRow
}

// VerificationRow is one posting line of a verification. Exactly one of
// Debit/Credit is normally non-zero, but both may be set for netting entries.
type VerificationRow struct {
	ID             string
	VerificationID string
	AccountID      string
	AccountNumber  string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Currency       string // empty for base-currency rows
	ForeignDebit   decimal.Decimal
	ForeignCredit  decimal.Decimal
	ExchangeRate   decimal.Decimal
}

// TotalDebit sums the debit side of all rows.
func (v Verification) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, r := range v.Rows {
		total = total.Add(r.Debit)
	}
	return total
}

// TotalCredit sums the credit side of all rows.
func (v Verification) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, r := range v.Rows {
		total = total.Add(r.Credit)
	}
	return total
}
