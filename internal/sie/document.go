// Package sie reads and writes the SIE4 interchange format: line-oriented
// #TAG directives with quoted-string fields and brace-delimited #VER blocks.
package sie

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Document is the intermediate form of one parsed SIE4 file. Balance lines
// (#IB/#UB/#RES) are surfaced as declared; the ledger recomputes balances
// from rows as the source of truth.
type Document struct {
	CompanyName string
	OrgNumber   string
	Currency    string

	// Years maps a relative fiscal-year offset (0 = current, -1 = prior)
	// to its date range, from #RAR lines.
	Years map[int]YearRange

	// Accounts maps account number to name, from #KONTO lines.
	Accounts map[string]string

	Opening []BalanceLine // #IB
	Closing []BalanceLine // #UB
	Results []BalanceLine // #RES

	Verifications []Verification

	// Errors collects structurally invalid lines. Parsing never aborts on
	// them; the rest of the file is still read.
	Errors []ParseError
}

// YearRange is one #RAR date span.
type YearRange struct {
	Start time.Time
	End   time.Time
}

// BalanceLine is one declared opening/closing/result balance.
type BalanceLine struct {
	YearOffset int
	Account    string
	Amount     decimal.Decimal
}

// Verification is one #VER block.
type Verification struct {
	Series string
	Number int
	Date   time.Time
	Text   string
	Rows   []Row
}

// Row is one #TRANS line. Amount keeps the SIE sign convention: positive is
// a debit, negative a credit.
type Row struct {
	Account string
	Amount  decimal.Decimal
	Date    time.Time
	Text    string
}

// ParseError describes one malformed line, with the offending line number
// and its raw text.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// NewDocument returns an empty document with initialized maps.
func NewDocument() *Document {
	return &Document{
		Years:    make(map[int]YearRange),
		Accounts: make(map[string]string),
	}
}
