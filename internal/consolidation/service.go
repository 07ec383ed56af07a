// Package consolidation combines member companies' ledgers into one group
// view, scaled by ownership and net of intercompany eliminations.
package consolidation

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// ReportType selects which account classes a report covers.
type ReportType string

const (
	ReportFull         ReportType = "full"
	ReportIncome       ReportType = "income"  // revenue + expense accounts
	ReportBalanceSheet ReportType = "balance" // asset + liability + equity
)

// Store is the persistence surface consolidation reads. It never writes:
// every Consolidate call replays from raw member balances, which is what
// makes elimination application idempotent.
type Store interface {
	Group(ctx context.Context, id string) (model.ConsolidationGroup, error)
	Members(ctx context.Context, groupID string) ([]model.ConsolidationMember, error)
	Eliminations(ctx context.Context, groupID string, year int) ([]model.IntercompanyElimination, error)
	Company(ctx context.Context, id string) (model.Company, error)
	FiscalYearByLabel(ctx context.Context, companyID string, year int) (model.FiscalYear, error)
	AccountsByCompany(ctx context.Context, companyID string) ([]model.Account, error)
	VerificationsByYear(ctx context.Context, fiscalYearID string) ([]model.Verification, error)
}

// Service builds consolidated reports.
type Service struct {
	store Store
}

// NewService creates a consolidation Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Line is one consolidated account total in natural sign, with the scaled,
// eliminated contribution of each member company.
type Line struct {
	AccountNumber string
	AccountName   string
	AccountType   model.AccountType
	Total         decimal.Decimal
	ByCompany     map[string]decimal.Decimal
}

// AppliedElimination is one audit-trail entry. Duplicate tuples are listed
// with Applied=false rather than subtracted twice.
type AppliedElimination struct {
	Elimination model.IntercompanyElimination
	Applied     bool
}

// Report is the consolidated view handed to the rendering collaborator.
type Report struct {
	GroupID   string
	GroupName string
	Year      int
	Type      ReportType
	Lines     []Line
	// MinorityInterest is the non-controlling share of member net assets
	// (equity plus period result), reported rather than silently dropped.
	MinorityInterest decimal.Decimal
	Eliminations     []AppliedElimination
	// UnauditedCompanies lists members whose matching fiscal year is not
	// yet closed; their figures are partial by definition.
	UnauditedCompanies []string
}

// Consolidate aggregates every member's balances for the fiscal year with
// the given calendar-year label. Members are matched by label, not fiscal
// year id, since each company has its own year rows. Contributions are
// scaled by ownership, intercompany eliminations are applied once per
// tuple, and the per-account remainders are summed into one chart.
func (s *Service) Consolidate(ctx context.Context, groupID string, year int, reportType ReportType) (Report, error) {
	group, err := s.store.Group(ctx, groupID)
	if err != nil {
		return Report{}, err
	}
	members, err := s.store.Members(ctx, groupID)
	if err != nil {
		return Report{}, err
	}

	report := Report{GroupID: groupID, GroupName: group.Name, Year: year, Type: reportType}
	hundred := decimal.NewFromInt(100)

	// Per-company natural-sign balances per account, scaled by ownership.
	type memberBalances struct {
		companyID   string
		companyName string
		balances    map[string]decimal.Decimal
	}
	var scaled []memberBalances
	accountMeta := make(map[string]model.Account)

	for _, m := range members {
		company, err := s.store.Company(ctx, m.CompanyID)
		if err != nil {
			return Report{}, err
		}
		fy, err := s.store.FiscalYearByLabel(ctx, m.CompanyID, year)
		if err != nil {
			return Report{}, err
		}
		if fy.Status != model.FiscalYearClosed {
			report.UnauditedCompanies = append(report.UnauditedCompanies, company.Name)
		}

		accts, err := s.store.AccountsByCompany(ctx, m.CompanyID)
		if err != nil {
			return Report{}, err
		}
		typeByNumber := make(map[string]model.AccountType, len(accts))
		for _, a := range accts {
			typeByNumber[a.Number] = a.Type
			if _, seen := accountMeta[a.Number]; !seen {
				accountMeta[a.Number] = a
			}
		}

		verifications, err := s.store.VerificationsByYear(ctx, fy.ID)
		if err != nil {
			return Report{}, err
		}
		signed := ledger.SignedBalances(verifications)

		share := m.OwnershipPct.Div(hundred)
		minorityShare := decimal.NewFromInt(1).Sub(share)

		natural := make(map[string]decimal.Decimal, len(signed))
		netAssets := decimal.Zero
		for number, bal := range signed {
			t := typeByNumber[number]
			natural[number] = ledger.NaturalBalance(t, bal).Mul(share)
			// Net assets = equity + period result = -(signed equity) - (signed result).
			if t == model.AccountTypeEquity || t == model.AccountTypeRevenue || t == model.AccountTypeExpense {
				netAssets = netAssets.Sub(bal)
			}
		}
		report.MinorityInterest = report.MinorityInterest.Add(netAssets.Mul(minorityShare))

		scaled = append(scaled, memberBalances{companyID: m.CompanyID, companyName: company.Name, balances: natural})
	}

	// Apply eliminations once per (from, to, account, year) tuple, against
	// each named company's line on that account where one exists. A side
	// with no balance on the account simply has nothing to eliminate.
	eliminations, err := s.store.Eliminations(ctx, groupID, year)
	if err != nil {
		return Report{}, err
	}
	applied := make(map[string]bool)
	for _, e := range eliminations {
		entry := AppliedElimination{Elimination: e}
		if !applied[e.Key()] {
			applied[e.Key()] = true
			entry.Applied = true
			for i := range scaled {
				mb := &scaled[i]
				if mb.companyID != e.FromCompanyID && mb.companyID != e.ToCompanyID {
					continue
				}
				if bal, ok := mb.balances[e.AccountNumber]; ok && !bal.IsZero() {
					mb.balances[e.AccountNumber] = bal.Sub(e.Amount)
				}
			}
		}
		report.Eliminations = append(report.Eliminations, entry)
	}

	// Sum the remaining per-account balances across companies.
	totals := make(map[string]*Line)
	for _, mb := range scaled {
		for number, bal := range mb.balances {
			line, ok := totals[number]
			if !ok {
				meta := accountMeta[number]
				line = &Line{
					AccountNumber: number,
					AccountName:   meta.Name,
					AccountType:   meta.Type,
					ByCompany:     make(map[string]decimal.Decimal),
				}
				totals[number] = line
			}
			line.ByCompany[mb.companyName] = line.ByCompany[mb.companyName].Add(bal)
			line.Total = line.Total.Add(bal)
		}
	}

	numbers := make([]string, 0, len(totals))
	for n := range totals {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	for _, n := range numbers {
		line := totals[n]
		if !includeType(reportType, line.AccountType) {
			continue
		}
		report.Lines = append(report.Lines, *line)
	}

	return report, nil
}

func includeType(rt ReportType, t model.AccountType) bool {
	switch rt {
	case ReportIncome:
		return t == model.AccountTypeRevenue || t == model.AccountTypeExpense
	case ReportBalanceSheet:
		return t.BalanceSheet()
	}
	return true
}
