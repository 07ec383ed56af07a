// Package closing owns the open -> closing -> closed lifecycle of fiscal
// years, including the year-end carry-forward.
package closing

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// OpeningDescription is the description of generated opening verifications.
const OpeningDescription = "Ingående balanser"

// DefaultResultAccount receives the net result at closing ("Årets resultat"
// in the BAS chart).
const DefaultResultAccount = "2099"

// Store is the persistence surface the closing procedure needs. CloseYear
// must run as one transaction: reuse or insert the next year, insert the
// opening verification, and flip the closed year's status, or nothing at all.
type Store interface {
	FiscalYear(ctx context.Context, id string) (model.FiscalYear, error)
	FiscalYears(ctx context.Context, companyID string) ([]model.FiscalYear, error)
	AccountsByCompany(ctx context.Context, companyID string) ([]model.Account, error)
	AccountByNumber(ctx context.Context, companyID, number string) (model.Account, error)
	VerificationsByYear(ctx context.Context, fiscalYearID string) ([]model.Verification, error)
	UpdateFiscalYearStatus(ctx context.Context, id string, status model.FiscalYearStatus) error
	CloseYear(ctx context.Context, closedYearID string, next *model.FiscalYear, opening *model.Verification) error
}

// Service runs the fiscal year lifecycle.
type Service struct {
	store         Store
	resultAccount string
}

// NewService creates a closing Service. resultAccount may be empty to use
// the default.
func NewService(store Store, resultAccount string) *Service {
	if resultAccount == "" {
		resultAccount = DefaultResultAccount
	}
	return &Service{store: store, resultAccount: resultAccount}
}

// Result reports what one closing produced.
type Result struct {
	ClosedYear          model.FiscalYear
	NextYear            model.FiscalYear
	PeriodResult        decimal.Decimal // positive = profit
	OpeningVerification model.Verification
}

// BeginClosing flips an open year to closing, the state in which only
// policy-gated corrective entries are accepted.
func (s *Service) BeginClosing(ctx context.Context, companyID, fiscalYearID string) (model.FiscalYear, error) {
	fy, err := s.lookupYear(ctx, companyID, fiscalYearID)
	if err != nil {
		return model.FiscalYear{}, err
	}
	if fy.Status != model.FiscalYearOpen {
		return model.FiscalYear{}, ledger.PeriodClosedError{FiscalYearID: fy.ID, Year: fy.Year, Status: string(fy.Status)}
	}
	if err := s.store.UpdateFiscalYearStatus(ctx, fy.ID, model.FiscalYearClosing); err != nil {
		return model.FiscalYear{}, err
	}
	fy.Status = model.FiscalYearClosing
	return fy, nil
}

// CloseFiscalYear seals a year: computes the period result, creates the next
// year (idempotently reusing one that already exists), posts the opening
// verification carrying balance-sheet balances plus the result into the
// result account, and only then marks the year closed. A failure anywhere
// leaves the year untouched. Revenue and expense accounts do not carry
// forward.
func (s *Service) CloseFiscalYear(ctx context.Context, companyID, fiscalYearID string) (Result, error) {
	fy, err := s.lookupYear(ctx, companyID, fiscalYearID)
	if err != nil {
		return Result{}, err
	}

	switch fy.Status {
	case model.FiscalYearOpen, model.FiscalYearClosing:
	case model.FiscalYearClosed:
		return Result{}, ledger.PeriodClosedError{FiscalYearID: fy.ID, Year: fy.Year, Status: string(fy.Status)}
	default:
		return Result{}, fmt.Errorf("fiscal year %d has unknown status %q", fy.Year, fy.Status)
	}

	// Years close in chronological order.
	years, err := s.store.FiscalYears(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	for _, other := range years {
		if other.ID != fy.ID && other.StartDate.Before(fy.StartDate) && other.Status != model.FiscalYearClosed {
			return Result{}, ledger.SequenceError{
				Reason: fmt.Sprintf("fiscal year %d cannot close before year %d", fy.Year, other.Year),
			}
		}
	}

	verifications, err := s.store.VerificationsByYear(ctx, fy.ID)
	if err != nil {
		return Result{}, err
	}
	for _, v := range verifications {
		if !ledger.Balanced(v.TotalDebit(), v.TotalCredit()) {
			return Result{}, fmt.Errorf("closing aborted, verification %d: %w",
				v.Number, ledger.BalanceError{Debit: v.TotalDebit(), Credit: v.TotalCredit()})
		}
	}

	accts, err := s.store.AccountsByCompany(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	typeByNumber := make(map[string]model.AccountType, len(accts))
	idByNumber := make(map[string]string, len(accts))
	for _, a := range accts {
		typeByNumber[a.Number] = a.Type
		idByNumber[a.Number] = a.ID
	}

	signed := ledger.SignedBalances(verifications)

	// Net income = revenue credit balances minus expense debit balances.
	// Every verification balances, so this equals the negated sum of the
	// result accounts' signed balances.
	periodResult := decimal.Zero
	for number, bal := range signed {
		if t, ok := typeByNumber[number]; ok && !t.BalanceSheet() {
			periodResult = periodResult.Sub(bal)
		}
	}

	next := model.FiscalYear{
		CompanyID: companyID,
		Year:      fy.Year + 1,
		StartDate: fy.EndDate.AddDate(0, 0, 1),
		EndDate:   fy.EndDate.AddDate(1, 0, 0),
		Status:    model.FiscalYearOpen,
	}

	opening, err := s.buildOpening(ctx, companyID, signed, typeByNumber, idByNumber, periodResult)
	if err != nil {
		return Result{}, err
	}
	if opening != nil {
		opening.Date = next.StartDate
		if !ledger.Balanced(opening.TotalDebit(), opening.TotalCredit()) {
			return Result{}, fmt.Errorf("closing aborted, opening verification: %w",
				ledger.BalanceError{Debit: opening.TotalDebit(), Credit: opening.TotalCredit()})
		}
	}

	if err := s.store.CloseYear(ctx, fy.ID, &next, opening); err != nil {
		return Result{}, err
	}

	fy.Status = model.FiscalYearClosed
	result := Result{ClosedYear: fy, NextYear: next, PeriodResult: periodResult}
	if opening != nil {
		result.OpeningVerification = *opening
	}
	return result, nil
}

// buildOpening assembles the carry-forward verification: one row per
// balance-sheet account with a non-zero ending balance, plus the net result
// rolled into the result account. Returns nil when there is nothing to carry.
func (s *Service) buildOpening(ctx context.Context, companyID string, signed map[string]decimal.Decimal, typeByNumber map[string]model.AccountType, idByNumber map[string]string, periodResult decimal.Decimal) (*model.Verification, error) {
	numbers := make([]string, 0, len(signed))
	for n := range signed {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	var rows []model.VerificationRow
	for _, number := range numbers {
		t, ok := typeByNumber[number]
		if !ok || !t.BalanceSheet() {
			continue
		}
		bal := signed[number]
		if bal.IsZero() {
			continue
		}
		row := model.VerificationRow{AccountID: idByNumber[number], AccountNumber: number}
		if bal.IsNegative() {
			row.Credit = bal.Neg()
		} else {
			row.Debit = bal
		}
		rows = append(rows, row)
	}

	if !periodResult.IsZero() {
		acct, err := s.store.AccountByNumber(ctx, companyID, s.resultAccount)
		if err != nil {
			return nil, fmt.Errorf("result account %s: %w", s.resultAccount, err)
		}
		row := model.VerificationRow{AccountID: acct.ID, AccountNumber: acct.Number}
		if periodResult.IsNegative() {
			row.Debit = periodResult.Neg()
		} else {
			row.Credit = periodResult
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return &model.Verification{
		CompanyID:   companyID,
		Description: OpeningDescription,
		Rows:        rows,
	}, nil
}

func (s *Service) lookupYear(ctx context.Context, companyID, fiscalYearID string) (model.FiscalYear, error) {
	fy, err := s.store.FiscalYear(ctx, fiscalYearID)
	if err != nil {
		return model.FiscalYear{}, err
	}
	if fy.CompanyID != companyID {
		return model.FiscalYear{}, ledger.NotFoundError{Kind: "fiscal year", Key: fiscalYearID}
	}
	return fy, nil
}
