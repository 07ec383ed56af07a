package consolidation_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bokfor-dev/bokfor/internal/consolidation"
	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
	"github.com/bokfor-dev/bokfor/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store *store.Memory
	svc   *consolidation.Service
	group model.ConsolidationGroup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	group := model.ConsolidationGroup{Name: "Koncernen"}
	require.NoError(t, mem.InsertGroup(context.Background(), &group))
	return &fixture{store: mem, svc: consolidation.NewService(mem), group: group}
}

type posting struct {
	debitAcct  string
	creditAcct string
	amount     string
}

// addMember creates a company with a closed 2025 fiscal year holding the
// given postings, and joins it to the group at the given ownership.
func (f *fixture) addMember(t *testing.T, name, ownership string, postings []posting) model.Company {
	t.Helper()
	ctx := context.Background()

	company := model.Company{Name: name, BaseCurrency: "SEK"}
	require.NoError(t, f.store.InsertCompany(ctx, &company))

	fy := model.FiscalYear{
		CompanyID: company.ID,
		Year:      2025,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:    model.FiscalYearOpen,
	}
	require.NoError(t, f.store.InsertFiscalYear(ctx, &fy))

	for _, a := range []struct {
		number string
		typ    model.AccountType
	}{
		{"1510", model.AccountTypeAsset},
		{"1930", model.AccountTypeAsset},
		{"2081", model.AccountTypeEquity},
		{"2440", model.AccountTypeLiability},
		{"3000", model.AccountTypeRevenue},
		{"4000", model.AccountTypeExpense},
	} {
		acct := model.Account{CompanyID: company.ID, Number: a.number, Name: "Konto " + a.number, Type: a.typ, Active: true}
		require.NoError(t, f.store.InsertAccount(ctx, &acct))
	}

	svc := ledger.NewService(f.store, ledger.PostingPolicy{})
	for _, p := range postings {
		_, err := svc.CreateVerification(ctx, ledger.CreateParams{
			CompanyID:    company.ID,
			FiscalYearID: fy.ID,
			Date:         time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			Rows: []ledger.RowInput{
				{AccountNumber: p.debitAcct, Debit: dec(p.amount)},
				{AccountNumber: p.creditAcct, Credit: dec(p.amount)},
			},
		})
		require.NoError(t, err)
	}
	require.NoError(t, f.store.UpdateFiscalYearStatus(ctx, fy.ID, model.FiscalYearClosed))

	member := model.ConsolidationMember{GroupID: f.group.ID, CompanyID: company.ID, OwnershipPct: dec(ownership)}
	require.NoError(t, f.store.InsertMember(ctx, &member))
	return company
}

func lineFor(t *testing.T, report consolidation.Report, number string) consolidation.Line {
	t.Helper()
	for _, l := range report.Lines {
		if l.AccountNumber == number {
			return l
		}
	}
	t.Fatalf("no consolidated line for account %s", number)
	return consolidation.Line{}
}

func TestConsolidate_Elimination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The parent's only revenue is an intercompany sale to the subsidiary.
	parent := f.addMember(t, "Moder AB", "100", []posting{
		{"1510", "3000", "10000.00"},
	})
	sub := f.addMember(t, "Dotter AB", "100", []posting{
		{"4000", "2440", "10000.00"},
	})

	require.NoError(t, f.store.InsertElimination(ctx, &model.IntercompanyElimination{
		GroupID:       f.group.ID,
		FromCompanyID: parent.ID,
		ToCompanyID:   sub.ID,
		AccountNumber: "3000",
		Year:          2025,
		Amount:        dec("10000.00"),
	}))
	require.NoError(t, f.store.InsertElimination(ctx, &model.IntercompanyElimination{
		GroupID:       f.group.ID,
		FromCompanyID: parent.ID,
		ToCompanyID:   sub.ID,
		AccountNumber: "4000",
		Year:          2025,
		Amount:        dec("10000.00"),
	}))

	report, err := f.svc.Consolidate(ctx, f.group.ID, 2025, consolidation.ReportFull)
	require.NoError(t, err)

	assert.True(t, lineFor(t, report, "3000").Total.IsZero(), "intercompany revenue eliminated")
	assert.True(t, lineFor(t, report, "4000").Total.IsZero(), "intercompany expense eliminated")
	assert.Empty(t, report.UnauditedCompanies)

	require.Len(t, report.Eliminations, 2)
	assert.True(t, report.Eliminations[0].Applied)
	assert.True(t, report.Eliminations[1].Applied)

	// Replaying from raw balances leaves nothing to double-subtract.
	again, err := f.svc.Consolidate(ctx, f.group.ID, 2025, consolidation.ReportFull)
	require.NoError(t, err)
	assert.True(t, lineFor(t, again, "3000").Total.IsZero())
}

func TestConsolidate_DuplicateEliminationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.addMember(t, "Moder AB", "100", nil)
	sub := f.addMember(t, "Dotter AB", "100", nil)

	e := model.IntercompanyElimination{
		GroupID:       f.group.ID,
		FromCompanyID: parent.ID,
		ToCompanyID:   sub.ID,
		AccountNumber: "3000",
		Year:          2025,
		Amount:        dec("500.00"),
	}
	require.NoError(t, f.store.InsertElimination(ctx, &e))

	dup := e
	dup.ID = ""
	err := f.store.InsertElimination(ctx, &dup)
	var se ledger.SequenceError
	assert.ErrorAs(t, err, &se)
}

func TestConsolidate_OwnershipAndMinority(t *testing.T) {
	f := newFixture(t)

	f.addMember(t, "Moder AB", "100", []posting{
		{"1930", "2081", "50000.00"},
	})
	// 60% owned: contributions scale, the other 40% is minority interest.
	f.addMember(t, "Dotter AB", "60", []posting{
		{"1930", "2081", "10000.00"},
	})

	report, err := f.svc.Consolidate(context.Background(), f.group.ID, 2025, consolidation.ReportFull)
	require.NoError(t, err)

	bank := lineFor(t, report, "1930")
	assert.True(t, bank.Total.Equal(dec("56000.00")), "got %s", bank.Total)
	assert.True(t, bank.ByCompany["Moder AB"].Equal(dec("50000.00")))
	assert.True(t, bank.ByCompany["Dotter AB"].Equal(dec("6000.00")))

	assert.True(t, report.MinorityInterest.Equal(dec("4000.00")), "got %s", report.MinorityInterest)
}

func TestConsolidate_UnauditedMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMember(t, "Moder AB", "100", nil)
	open := f.addMember(t, "Dotter AB", "100", nil)

	fy, err := f.store.FiscalYearByLabel(ctx, open.ID, 2025)
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateFiscalYearStatus(ctx, fy.ID, model.FiscalYearOpen))

	report, err := f.svc.Consolidate(ctx, f.group.ID, 2025, consolidation.ReportFull)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dotter AB"}, report.UnauditedCompanies)
}

func TestConsolidate_ReportTypes(t *testing.T) {
	f := newFixture(t)

	f.addMember(t, "Moder AB", "100", []posting{
		{"1930", "3000", "1000.00"},
		{"4000", "2440", "400.00"},
	})

	income, err := f.svc.Consolidate(context.Background(), f.group.ID, 2025, consolidation.ReportIncome)
	require.NoError(t, err)
	for _, l := range income.Lines {
		assert.False(t, l.AccountType.BalanceSheet(), "income report must only hold result accounts, got %s", l.AccountNumber)
	}
	assert.Len(t, income.Lines, 2)

	balance, err := f.svc.Consolidate(context.Background(), f.group.ID, 2025, consolidation.ReportBalanceSheet)
	require.NoError(t, err)
	for _, l := range balance.Lines {
		assert.True(t, l.AccountType.BalanceSheet())
	}
	assert.Len(t, balance.Lines, 2)
}
