package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bokfor-dev/bokfor/internal/model"
)

// Epsilon is the tolerance for the balance law: one cent.
var Epsilon = decimal.New(1, -2)

// Balanced reports whether total debits equal total credits within Epsilon.
func Balanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().Cmp(Epsilon) < 0
}

// ValidateRows enforces the row-level invariants on a verification's rows:
// non-empty, non-negative amounts, at least one side set per row, and the
// balance law across the set.
func ValidateRows(rows []model.VerificationRow) []ValidationError {
	var errs []ValidationError

	if len(rows) == 0 {
		errs = append(errs, ValidationError{Field: "rows", Description: "verification must have at least one row"})
		return errs
	}

	for i, r := range rows {
		field := fmt.Sprintf("rows[%d]", i)
		if r.Debit.IsNegative() {
			errs = append(errs, ValidationError{Field: field, Description: fmt.Sprintf("negative debit %s", r.Debit)})
		}
		if r.Credit.IsNegative() {
			errs = append(errs, ValidationError{Field: field, Description: fmt.Sprintf("negative credit %s", r.Credit)})
		}
		if r.Debit.IsZero() && r.Credit.IsZero() {
			errs = append(errs, ValidationError{Field: field, Description: "row has neither debit nor credit"})
		}
	}

	return errs
}

// SignedBalances aggregates debit-credit per account number across a set of
// verifications. The result is in debit-positive sign regardless of account
// type; use NaturalBalance to convert for reporting.
func SignedBalances(verifications []model.Verification) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, v := range verifications {
		for _, r := range v.Rows {
			balances[r.AccountNumber] = balances[r.AccountNumber].Add(r.Debit).Sub(r.Credit)
		}
	}
	return balances
}

// NaturalBalance converts a debit-positive signed balance into the natural
// sign for the account type: debit-normal accounts keep the sign, credit
// normal accounts flip it.
func NaturalBalance(t model.AccountType, signed decimal.Decimal) decimal.Decimal {
	if t.DebitNormal() {
		return signed
	}
	return signed.Neg()
}
