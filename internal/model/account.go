package model

import "strings"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Account is one entry in a company's chart of accounts. Accounts referenced
// by verification rows are never deleted, only archived via Active=false.
type Account struct {
	ID        string
	CompanyID string
	Number    string // short numeric code, unique per company
	Name      string
	Type      AccountType
	Active    bool
}

// TypeForNumber maps an account number to its type by the BAS leading-digit
// ranges: 1 asset, 20 equity, 2 (other) liability, 3 revenue, 4-8 expense.
// Numbers outside those ranges return ok=false.
func TypeForNumber(number string) (AccountType, bool) {
	if number == "" {
		return "", false
	}
	switch number[0] {
	case '1':
		return AccountTypeAsset, true
	case '2':
		if strings.HasPrefix(number, "20") {
			return AccountTypeEquity, true
		}
		return AccountTypeLiability, true
	case '3':
		return AccountTypeRevenue, true
	case '4', '5', '6', '7', '8':
		return AccountTypeExpense, true
	}
	return "", false
}

// DebitNormal reports whether balances on this account type grow on the
// debit side (assets and expenses) rather than the credit side.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// BalanceSheet reports whether the type carries forward across fiscal years.
// Revenue and expense accounts reset to zero at closing.
func (t AccountType) BalanceSheet() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity:
		return true
	}
	return false
}
