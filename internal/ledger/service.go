package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bokfor-dev/bokfor/internal/model"
)

// Store is the persistence surface the ledger needs. InsertVerification must
// allocate the verification number atomically per (company, fiscal year)
// under the storage layer's isolation; see internal/store.
type Store interface {
	FiscalYear(ctx context.Context, id string) (model.FiscalYear, error)
	FiscalYears(ctx context.Context, companyID string) ([]model.FiscalYear, error)
	AccountByNumber(ctx context.Context, companyID, number string) (model.Account, error)
	AccountsByCompany(ctx context.Context, companyID string) ([]model.Account, error)
	Verification(ctx context.Context, id string) (model.Verification, error)
	VerificationsByYear(ctx context.Context, fiscalYearID string) ([]model.Verification, error)
	InsertVerification(ctx context.Context, v *model.Verification) error
}

// PostingPolicy controls writes outside the plain open state.
type PostingPolicy struct {
	// ClosingCorrections permits explicit corrective entries while a year is
	// in the closing state.
	ClosingCorrections bool
}

// Service provides business logic for verifications and balances.
type Service struct {
	store  Store
	policy PostingPolicy
}

// NewService creates a ledger Service.
func NewService(store Store, policy PostingPolicy) *Service {
	return &Service{store: store, policy: policy}
}

// RowInput is one requested posting line.
type RowInput struct {
	AccountNumber string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Currency      string
	ForeignDebit  decimal.Decimal
	ForeignCredit decimal.Decimal
	ExchangeRate  decimal.Decimal
}

// CreateParams holds parameters for creating a verification.
type CreateParams struct {
	CompanyID    string
	FiscalYearID string
	Date         time.Time
	Description  string
	// Correction marks the entry as an explicit correction, which is the
	// only kind accepted while the year is in the closing state.
	Correction bool
	Rows       []RowInput
}

// CreateVerification validates the request against the fiscal year and the
// balance law, then persists the verification. The verification number is
// allocated by the store inside the insert transaction and is never reused.
func (s *Service) CreateVerification(ctx context.Context, params CreateParams) (model.Verification, error) {
	return s.create(ctx, params, "")
}

func (s *Service) create(ctx context.Context, params CreateParams, reversesID string) (model.Verification, error) {
	fy, err := s.store.FiscalYear(ctx, params.FiscalYearID)
	if err != nil {
		return model.Verification{}, err
	}
	if fy.CompanyID != params.CompanyID {
		return model.Verification{}, NotFoundError{Kind: "fiscal year", Key: params.FiscalYearID}
	}

	switch fy.Status {
	case model.FiscalYearOpen:
	case model.FiscalYearClosing:
		if !s.policy.ClosingCorrections || !params.Correction {
			return model.Verification{}, PeriodClosedError{FiscalYearID: fy.ID, Year: fy.Year, Status: string(fy.Status)}
		}
	default:
		return model.Verification{}, PeriodClosedError{FiscalYearID: fy.ID, Year: fy.Year, Status: string(fy.Status)}
	}

	if !fy.Contains(params.Date) {
		return model.Verification{}, DateRangeError{Date: params.Date, Start: fy.StartDate, End: fy.EndDate}
	}

	rows := make([]model.VerificationRow, 0, len(params.Rows))
	for _, in := range params.Rows {
		acct, err := s.store.AccountByNumber(ctx, params.CompanyID, in.AccountNumber)
		if err != nil {
			return model.Verification{}, err
		}
		if !acct.Active {
			return model.Verification{}, ValidationError{
				Field:       "rows",
				Description: fmt.Sprintf("account %s is archived", in.AccountNumber),
			}
		}
		rows = append(rows, model.VerificationRow{
			AccountID:     acct.ID,
			AccountNumber: acct.Number,
			Debit:         in.Debit,
			Credit:        in.Credit,
			Currency:      in.Currency,
			ForeignDebit:  in.ForeignDebit,
			ForeignCredit: in.ForeignCredit,
			ExchangeRate:  in.ExchangeRate,
		})
	}

	if verrs := ValidateRows(rows); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return model.Verification{}, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	v := model.Verification{
		CompanyID:    params.CompanyID,
		FiscalYearID: params.FiscalYearID,
		Date:         params.Date,
		Description:  params.Description,
		ReversesID:   reversesID,
		Rows:         rows,
	}

	if !Balanced(v.TotalDebit(), v.TotalCredit()) {
		return model.Verification{}, BalanceError{Debit: v.TotalDebit(), Credit: v.TotalCredit()}
	}

	if err := s.store.InsertVerification(ctx, &v); err != nil {
		return model.Verification{}, err
	}
	return v, nil
}

// ReverseVerification creates a new verification in the given (open) fiscal
// year with every row's debit and credit swapped, referencing the original.
// The original is not mutated.
func (s *Service) ReverseVerification(ctx context.Context, verificationID, fiscalYearID string, date time.Time) (model.Verification, error) {
	orig, err := s.store.Verification(ctx, verificationID)
	if err != nil {
		return model.Verification{}, err
	}

	rows := make([]RowInput, 0, len(orig.Rows))
	for _, r := range orig.Rows {
		rows = append(rows, RowInput{
			AccountNumber: r.AccountNumber,
			Debit:         r.Credit,
			Credit:        r.Debit,
			Currency:      r.Currency,
			ForeignDebit:  r.ForeignCredit,
			ForeignCredit: r.ForeignDebit,
			ExchangeRate:  r.ExchangeRate,
		})
	}

	return s.create(ctx, CreateParams{
		CompanyID:    orig.CompanyID,
		FiscalYearID: fiscalYearID,
		Date:         date,
		Description:  fmt.Sprintf("Reversal of verification %d: %s", orig.Number, orig.Description),
		Rows:         rows,
	}, orig.ID)
}

// AccountBalance returns the account's balance for one fiscal year in its
// natural sign (debit-normal for assets and expenses, credit-normal for the
// rest). Opening balances are regular rows of the year's opening
// verification, so no separate carry-forward term is needed.
func (s *Service) AccountBalance(ctx context.Context, companyID, accountNumber, fiscalYearID string) (decimal.Decimal, error) {
	acct, err := s.store.AccountByNumber(ctx, companyID, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	verifications, err := s.store.VerificationsByYear(ctx, fiscalYearID)
	if err != nil {
		return decimal.Zero, err
	}
	signed := SignedBalances(verifications)[accountNumber]
	return NaturalBalance(acct.Type, signed), nil
}

// TrialBalanceRow is one line of a trial balance report.
type TrialBalanceRow struct {
	AccountNumber string
	AccountName   string
	AccountType   model.AccountType
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// TrialBalance aggregates every posted account of a fiscal year into
// debit/credit columns, sorted by account number. Accounts with no postings
// are omitted.
func (s *Service) TrialBalance(ctx context.Context, companyID, fiscalYearID string) ([]TrialBalanceRow, error) {
	accts, err := s.store.AccountsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[string]model.Account, len(accts))
	for _, a := range accts {
		byNumber[a.Number] = a
	}

	verifications, err := s.store.VerificationsByYear(ctx, fiscalYearID)
	if err != nil {
		return nil, err
	}

	signed := SignedBalances(verifications)
	numbers := make([]string, 0, len(signed))
	for n := range signed {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	rows := make([]TrialBalanceRow, 0, len(numbers))
	for _, n := range numbers {
		bal := signed[n]
		row := TrialBalanceRow{AccountNumber: n}
		if a, ok := byNumber[n]; ok {
			row.AccountName = a.Name
			row.AccountType = a.Type
		}
		if bal.IsNegative() {
			row.Credit = bal.Neg()
		} else {
			row.Debit = bal
		}
		rows = append(rows, row)
	}
	return rows, nil
}
