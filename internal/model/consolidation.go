package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// ConsolidationGroup ties a parent company to a set of member companies for
// group reporting. Groups reference companies by id but do not own them.
type ConsolidationGroup struct {
	ID              string
	Name            string
	ParentCompanyID string
}

// ConsolidationMember is one company in a group with its ownership share.
type ConsolidationMember struct {
	ID           string
	GroupID      string
	CompanyID    string
	OwnershipPct decimal.Decimal // 0-100
}

// IntercompanyElimination removes a double-counted intra-group amount from
// both sides of a transaction pair in a given fiscal year.
type IntercompanyElimination struct {
	ID            string
	GroupID       string
	FromCompanyID string
	ToCompanyID   string
	AccountNumber string
	Year          int
	Amount        decimal.Decimal
	Description   string
}

// Key identifies an elimination for idempotent application: the same tuple
// applied twice must not double-subtract.
func (e IntercompanyElimination) Key() string {
	return e.FromCompanyID + "|" + e.ToCompanyID + "|" + e.AccountNumber + "|" + strconv.Itoa(e.Year)
}
