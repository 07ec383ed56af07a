package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceError reports a verification whose debits and credits differ by
// more than the accepted epsilon. It is never auto-corrected; the caller
// must fix the input rows.
type BalanceError struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e BalanceError) Error() string {
	return fmt.Sprintf("verification does not balance: debits %s != credits %s",
		e.Debit.StringFixed(2), e.Credit.StringFixed(2))
}

// DateRangeError reports a verification date outside its fiscal year.
type DateRangeError struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

func (e DateRangeError) Error() string {
	const f = "2006-01-02"
	return fmt.Sprintf("date %s outside fiscal year %s..%s",
		e.Date.Format(f), e.Start.Format(f), e.End.Format(f))
}

// PeriodClosedError reports a write attempted against a year that no longer
// accepts it (closed, or closing without the correction policy).
type PeriodClosedError struct {
	FiscalYearID string
	Year         int
	Status       string
}

func (e PeriodClosedError) Error() string {
	return fmt.Sprintf("fiscal year %d is %s and accepts no new verifications", e.Year, e.Status)
}

// SequenceError reports an ordering violation: closing years out of
// chronological order, closing an already-closed year, or registering a
// duplicate elimination tuple.
type SequenceError struct {
	Reason string
}

func (e SequenceError) Error() string { return e.Reason }

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Kind string // "company", "account", "fiscal year", ...
	Key  string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// ValidationError describes a single rejected input row or field.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}
