// Package accounts provides the default chart of accounts seeded for new
// companies, a small cut of the Swedish BAS standard.
package accounts

import "github.com/bokfor-dev/bokfor/internal/model"

// DefaultChart returns the starter chart for a new company. Types follow the
// leading-digit table, stated explicitly here so the seed never depends on
// classification changes.
func DefaultChart(companyID string) []model.Account {
	chart := []struct {
		number string
		name   string
		typ    model.AccountType
	}{
		{"1510", "Kundfordringar", model.AccountTypeAsset},
		{"1910", "Kassa", model.AccountTypeAsset},
		{"1930", "Företagskonto", model.AccountTypeAsset},
		{"2081", "Aktiekapital", model.AccountTypeEquity},
		{"2091", "Balanserad vinst eller förlust", model.AccountTypeEquity},
		{"2099", "Årets resultat", model.AccountTypeEquity},
		{"2440", "Leverantörsskulder", model.AccountTypeLiability},
		{"2611", "Utgående moms", model.AccountTypeLiability},
		{"2641", "Ingående moms", model.AccountTypeLiability},
		{"3000", "Försäljning", model.AccountTypeRevenue},
		{"3740", "Öresutjämning", model.AccountTypeRevenue},
		{"4000", "Inköp av varor", model.AccountTypeExpense},
		{"5010", "Lokalhyra", model.AccountTypeExpense},
		{"6110", "Kontorsmateriel", model.AccountTypeExpense},
		{"6570", "Banktjänster", model.AccountTypeExpense},
		{"8310", "Ränteintäkter", model.AccountTypeExpense},
	}

	out := make([]model.Account, 0, len(chart))
	for _, c := range chart {
		out = append(out, model.Account{
			CompanyID: companyID,
			Number:    c.number,
			Name:      c.name,
			Type:      c.typ,
			Active:    true,
		})
	}
	return out
}
