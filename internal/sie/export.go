package sie

import (
	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// ExportParams selects what one exported SIE4 file covers.
type ExportParams struct {
	Company       model.Company
	FiscalYear    model.FiscalYear
	Accounts      []model.Account
	Verifications []model.Verification
	// OpeningVerificationID marks the year's opening-balance verification;
	// its rows become #IB lines instead of the declared balances being
	// guessed from description text. May be empty.
	OpeningVerificationID string
	// Series for emitted #VER lines; defaults to "A".
	Series string
}

// BuildDocument assembles a Document for Serialize from a company's year.
// Declared #UB/#RES lines are computed from the rows, so the export is
// internally consistent by construction.
func BuildDocument(p ExportParams) *Document {
	doc := NewDocument()
	doc.CompanyName = p.Company.Name
	doc.OrgNumber = p.Company.OrgNumber
	doc.Currency = p.Company.BaseCurrency
	doc.Years[0] = YearRange{Start: p.FiscalYear.StartDate, End: p.FiscalYear.EndDate}

	series := p.Series
	if series == "" {
		series = "A"
	}

	typeByNumber := make(map[string]model.AccountType, len(p.Accounts))
	for _, a := range p.Accounts {
		doc.Accounts[a.Number] = a.Name
		typeByNumber[a.Number] = a.Type
	}

	var opening []model.Verification
	for _, v := range p.Verifications {
		if p.OpeningVerificationID != "" && v.ID == p.OpeningVerificationID {
			opening = append(opening, v)
		}
		out := Verification{Series: series, Number: v.Number, Date: v.Date, Text: v.Description}
		for _, r := range v.Rows {
			out.Rows = append(out.Rows, Row{
				Account: r.AccountNumber,
				Amount:  r.Debit.Sub(r.Credit),
				Date:    v.Date,
			})
		}
		doc.Verifications = append(doc.Verifications, out)
	}

	for number, amount := range ledger.SignedBalances(opening) {
		doc.Opening = append(doc.Opening, BalanceLine{Account: number, Amount: amount})
	}
	for number, amount := range ledger.SignedBalances(p.Verifications) {
		t, ok := typeByNumber[number]
		if !ok {
			continue
		}
		if t.BalanceSheet() {
			doc.Closing = append(doc.Closing, BalanceLine{Account: number, Amount: amount})
		} else {
			doc.Results = append(doc.Results, BalanceLine{Account: number, Amount: amount})
		}
	}

	return doc
}
