package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bokfor-dev/bokfor/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		name   string
		debit  string
		credit string
		want   bool
	}{
		{"equal", "1000.00", "1000.00", true},
		{"off by less than a cent", "1000.004", "1000.00", true},
		{"off by a cent", "1000.01", "1000.00", false},
		{"wildly off", "1000.00", "500.00", false},
		{"both zero", "0", "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Balanced(dec(tt.debit), dec(tt.credit)))
		})
	}
}

func TestValidateRows(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		errs := ValidateRows(nil)
		assert.Len(t, errs, 1)
	})

	t.Run("negative amounts", func(t *testing.T) {
		errs := ValidateRows([]model.VerificationRow{
			{AccountNumber: "1930", Debit: dec("-5")},
		})
		assert.NotEmpty(t, errs)
	})

	t.Run("empty row", func(t *testing.T) {
		errs := ValidateRows([]model.VerificationRow{
			{AccountNumber: "1930"},
		})
		assert.Len(t, errs, 1)
	})

	t.Run("netting row with both sides is allowed", func(t *testing.T) {
		errs := ValidateRows([]model.VerificationRow{
			{AccountNumber: "1930", Debit: dec("100"), Credit: dec("40")},
			{AccountNumber: "3000", Credit: dec("60")},
		})
		assert.Empty(t, errs)
	})
}

func TestSignedBalances(t *testing.T) {
	vs := []model.Verification{
		{Rows: []model.VerificationRow{
			{AccountNumber: "1930", Debit: dec("1000")},
			{AccountNumber: "3000", Credit: dec("1000")},
		}},
		{Rows: []model.VerificationRow{
			{AccountNumber: "1930", Credit: dec("250")},
			{AccountNumber: "4000", Debit: dec("250")},
		}},
	}
	balances := SignedBalances(vs)
	assert.True(t, balances["1930"].Equal(dec("750")))
	assert.True(t, balances["3000"].Equal(dec("-1000")))
	assert.True(t, balances["4000"].Equal(dec("250")))
}

func TestNaturalBalance(t *testing.T) {
	assert.True(t, NaturalBalance(model.AccountTypeAsset, dec("750")).Equal(dec("750")))
	assert.True(t, NaturalBalance(model.AccountTypeRevenue, dec("-1000")).Equal(dec("1000")))
	assert.True(t, NaturalBalance(model.AccountTypeLiability, dec("-300")).Equal(dec("300")))
	assert.True(t, NaturalBalance(model.AccountTypeExpense, dec("250")).Equal(dec("250")))
}
