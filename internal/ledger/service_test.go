package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
	"github.com/bokfor-dev/bokfor/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store   *store.Memory
	svc     *ledger.Service
	company model.Company
	year    model.FiscalYear
}

func newFixture(t *testing.T, policy ledger.PostingPolicy) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	company := model.Company{Name: "Test AB", BaseCurrency: "SEK"}
	require.NoError(t, mem.InsertCompany(ctx, &company))

	fy := model.FiscalYear{
		CompanyID: company.ID,
		Year:      2025,
		StartDate: date(2025, 1, 1),
		EndDate:   date(2025, 12, 31),
		Status:    model.FiscalYearOpen,
	}
	require.NoError(t, mem.InsertFiscalYear(ctx, &fy))

	for _, a := range []struct {
		number string
		typ    model.AccountType
	}{
		{"1930", model.AccountTypeAsset},
		{"2099", model.AccountTypeEquity},
		{"3000", model.AccountTypeRevenue},
		{"4000", model.AccountTypeExpense},
	} {
		acct := model.Account{CompanyID: company.ID, Number: a.number, Name: "Konto " + a.number, Type: a.typ, Active: true}
		require.NoError(t, mem.InsertAccount(ctx, &acct))
	}

	return &fixture{
		store:   mem,
		svc:     ledger.NewService(mem, policy),
		company: company,
		year:    fy,
	}
}

func (f *fixture) sale(t *testing.T, amount string) model.Verification {
	t.Helper()
	v, err := f.svc.CreateVerification(context.Background(), ledger.CreateParams{
		CompanyID:    f.company.ID,
		FiscalYearID: f.year.ID,
		Date:         date(2025, 3, 10),
		Description:  "Sale",
		Rows: []ledger.RowInput{
			{AccountNumber: "1930", Debit: dec(amount)},
			{AccountNumber: "3000", Credit: dec(amount)},
		},
	})
	require.NoError(t, err)
	return v
}

func TestCreateVerification(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})

	v := f.sale(t, "1000.00")
	assert.Equal(t, 1, v.Number)
	assert.Len(t, v.Rows, 2)
	assert.True(t, v.TotalDebit().Equal(v.TotalCredit()))

	// Numbers are sequential with no gaps.
	v2 := f.sale(t, "200.00")
	assert.Equal(t, 2, v2.Number)
}

func TestCreateVerification_BalanceViolation(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})

	_, err := f.svc.CreateVerification(context.Background(), ledger.CreateParams{
		CompanyID:    f.company.ID,
		FiscalYearID: f.year.ID,
		Date:         date(2025, 3, 10),
		Description:  "Broken",
		Rows: []ledger.RowInput{
			{AccountNumber: "1930", Debit: dec("1000")},
			{AccountNumber: "3000", Credit: dec("500")},
		},
	})
	var be ledger.BalanceError
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Debit.Equal(dec("1000")))
	assert.True(t, be.Credit.Equal(dec("500")))

	// Nothing persisted.
	vs, err := f.store.VerificationsByYear(context.Background(), f.year.ID)
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestCreateVerification_DateOutsideYear(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})

	_, err := f.svc.CreateVerification(context.Background(), ledger.CreateParams{
		CompanyID:    f.company.ID,
		FiscalYearID: f.year.ID,
		Date:         date(2026, 1, 5),
		Rows: []ledger.RowInput{
			{AccountNumber: "1930", Debit: dec("10")},
			{AccountNumber: "3000", Credit: dec("10")},
		},
	})
	var dre ledger.DateRangeError
	assert.ErrorAs(t, err, &dre)
}

func TestCreateVerification_ClosedYearRejected(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})
	ctx := context.Background()
	require.NoError(t, f.store.UpdateFiscalYearStatus(ctx, f.year.ID, model.FiscalYearClosed))

	_, err := f.svc.CreateVerification(ctx, ledger.CreateParams{
		CompanyID:    f.company.ID,
		FiscalYearID: f.year.ID,
		Date:         date(2025, 3, 10),
		Rows: []ledger.RowInput{
			{AccountNumber: "1930", Debit: dec("10")},
			{AccountNumber: "3000", Credit: dec("10")},
		},
	})
	var pce ledger.PeriodClosedError
	require.ErrorAs(t, err, &pce)
	assert.Equal(t, 2025, pce.Year)
}

func TestCreateVerification_ClosingState(t *testing.T) {
	ctx := context.Background()

	params := func(f *fixture, correction bool) ledger.CreateParams {
		return ledger.CreateParams{
			CompanyID:    f.company.ID,
			FiscalYearID: f.year.ID,
			Date:         date(2025, 12, 31),
			Correction:   correction,
			Rows: []ledger.RowInput{
				{AccountNumber: "4000", Debit: dec("10")},
				{AccountNumber: "1930", Credit: dec("10")},
			},
		}
	}

	t.Run("rejected without policy", func(t *testing.T) {
		f := newFixture(t, ledger.PostingPolicy{})
		require.NoError(t, f.store.UpdateFiscalYearStatus(ctx, f.year.ID, model.FiscalYearClosing))
		_, err := f.svc.CreateVerification(ctx, params(f, true))
		var pce ledger.PeriodClosedError
		assert.ErrorAs(t, err, &pce)
	})

	t.Run("correction allowed with policy", func(t *testing.T) {
		f := newFixture(t, ledger.PostingPolicy{ClosingCorrections: true})
		require.NoError(t, f.store.UpdateFiscalYearStatus(ctx, f.year.ID, model.FiscalYearClosing))
		_, err := f.svc.CreateVerification(ctx, params(f, true))
		assert.NoError(t, err)
	})

	t.Run("plain entry still rejected with policy", func(t *testing.T) {
		f := newFixture(t, ledger.PostingPolicy{ClosingCorrections: true})
		require.NoError(t, f.store.UpdateFiscalYearStatus(ctx, f.year.ID, model.FiscalYearClosing))
		_, err := f.svc.CreateVerification(ctx, params(f, false))
		var pce ledger.PeriodClosedError
		assert.ErrorAs(t, err, &pce)
	})
}

func TestCreateVerification_ArchivedAccount(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})
	ctx := context.Background()

	acct, err := f.store.AccountByNumber(ctx, f.company.ID, "4000")
	require.NoError(t, err)
	require.NoError(t, f.store.ArchiveAccount(ctx, acct.ID))

	_, err = f.svc.CreateVerification(ctx, ledger.CreateParams{
		CompanyID:    f.company.ID,
		FiscalYearID: f.year.ID,
		Date:         date(2025, 3, 10),
		Rows: []ledger.RowInput{
			{AccountNumber: "4000", Debit: dec("10")},
			{AccountNumber: "1930", Credit: dec("10")},
		},
	})
	assert.Error(t, err)
}

func TestReverseVerification(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})
	ctx := context.Background()

	orig := f.sale(t, "1000.00")

	rev, err := f.svc.ReverseVerification(ctx, orig.ID, f.year.ID, date(2025, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, orig.ID, rev.ReversesID)
	assert.Equal(t, 2, rev.Number, "reversal consumes the next number")

	// Debits and credits are swapped.
	assert.True(t, rev.Rows[0].Credit.Equal(dec("1000.00")))
	assert.True(t, rev.Rows[1].Debit.Equal(dec("1000.00")))

	// Original untouched; account nets to zero.
	got, err := f.store.Verification(ctx, orig.ID)
	require.NoError(t, err)
	assert.True(t, got.Rows[0].Debit.Equal(dec("1000.00")))

	bal, err := f.svc.AccountBalance(ctx, f.company.ID, "1930", f.year.ID)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestAccountBalance_NaturalSign(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})
	ctx := context.Background()

	f.sale(t, "1000.00")

	bank, err := f.svc.AccountBalance(ctx, f.company.ID, "1930", f.year.ID)
	require.NoError(t, err)
	assert.True(t, bank.Equal(dec("1000.00")))

	sales, err := f.svc.AccountBalance(ctx, f.company.ID, "3000", f.year.ID)
	require.NoError(t, err)
	assert.True(t, sales.Equal(dec("1000.00")), "revenue reported credit-normal")
}

func TestTrialBalance(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})

	f.sale(t, "1000.00")
	_, err := f.svc.CreateVerification(context.Background(), ledger.CreateParams{
		CompanyID:    f.company.ID,
		FiscalYearID: f.year.ID,
		Date:         date(2025, 5, 2),
		Description:  "Rent",
		Rows: []ledger.RowInput{
			{AccountNumber: "4000", Debit: dec("400.00")},
			{AccountNumber: "1930", Credit: dec("400.00")},
		},
	})
	require.NoError(t, err)

	rows, err := f.svc.TrialBalance(context.Background(), f.company.ID, f.year.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "1930", rows[0].AccountNumber)
	assert.True(t, rows[0].Debit.Equal(dec("600.00")))
	assert.Equal(t, "3000", rows[1].AccountNumber)
	assert.True(t, rows[1].Credit.Equal(dec("1000.00")))
	assert.Equal(t, "4000", rows[2].AccountNumber)
	assert.True(t, rows[2].Debit.Equal(dec("400.00")))
}

func TestCreateVerification_UnknownAccount(t *testing.T) {
	f := newFixture(t, ledger.PostingPolicy{})

	_, err := f.svc.CreateVerification(context.Background(), ledger.CreateParams{
		CompanyID:    f.company.ID,
		FiscalYearID: f.year.ID,
		Date:         date(2025, 3, 10),
		Rows: []ledger.RowInput{
			{AccountNumber: "9999", Debit: dec("10")},
			{AccountNumber: "1930", Credit: dec("10")},
		},
	})
	var nfe ledger.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "account", nfe.Kind)
}
