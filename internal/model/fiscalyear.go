package model

import "time"

// FiscalYearStatus is the lifecycle state of a fiscal year. Transitions run
// open -> closing -> closed with no path backward.
type FiscalYearStatus string

const (
	FiscalYearOpen    FiscalYearStatus = "open"
	FiscalYearClosing FiscalYearStatus = "closing"
	FiscalYearClosed  FiscalYearStatus = "closed"
)

// FiscalYear is one accounting period of a company. Sibling years of the
// same company must not overlap.
type FiscalYear struct {
	ID        string
	CompanyID string
	Year      int // calendar year label, used to match years across companies
	StartDate time.Time
	EndDate   time.Time
	Status    FiscalYearStatus
}

// Contains reports whether d falls within [StartDate, EndDate].
func (fy FiscalYear) Contains(d time.Time) bool {
	return !d.Before(fy.StartDate) && !d.After(fy.EndDate)
}
