package sie

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// Store is the persistence surface the importer needs for accounts.
type Store interface {
	AccountByNumber(ctx context.Context, companyID, number string) (model.Account, error)
	InsertAccount(ctx context.Context, a *model.Account) error
	VerificationsByYear(ctx context.Context, fiscalYearID string) ([]model.Verification, error)
}

// Ledger posts verifications; the ledger service enforces the balance law
// and allocates numbers, so the importer never inserts rows directly.
type Ledger interface {
	CreateVerification(ctx context.Context, params ledger.CreateParams) (model.Verification, error)
}

// Stats summarizes one import run. A non-empty Errors slice does not mean
// the run failed: import is partial-failure by design, each bad verification
// is skipped whole and the rest of the file continues.
type Stats struct {
	AccountsCreated      int
	AccountsExisting     int
	VerificationsCreated int
	RowsCreated          int
	Errors               []string
	Warnings             []string
}

// Importer maps parsed SIE documents onto a company's ledger.
type Importer struct {
	store  Store
	ledger Ledger
}

// NewImporter creates an Importer.
func NewImporter(store Store, ledger Ledger) *Importer {
	return &Importer{store: store, ledger: ledger}
}

// Import applies a parsed document to the target company and fiscal year.
// Accounts are matched by number and created when missing, never
// overwritten. Verifications are always created fresh; any verification the
// ledger rejects is recorded in Errors and skipped without partial rows.
// Declared #UB balances that disagree with the computed result become
// non-fatal Warnings.
func (im *Importer) Import(ctx context.Context, companyID, fiscalYearID string, doc *Document) (Stats, error) {
	var stats Stats

	for _, pe := range doc.Errors {
		stats.Errors = append(stats.Errors, pe.Error())
	}

	if err := im.ensureAccounts(ctx, companyID, doc, &stats); err != nil {
		return stats, err
	}

	for _, v := range doc.Verifications {
		params := ledger.CreateParams{
			CompanyID:    companyID,
			FiscalYearID: fiscalYearID,
			Date:         v.Date,
			Description:  v.Text,
		}
		for _, r := range v.Rows {
			in := ledger.RowInput{AccountNumber: r.Account}
			if r.Amount.IsNegative() {
				in.Credit = r.Amount.Neg()
			} else {
				in.Debit = r.Amount
			}
			params.Rows = append(params.Rows, in)
		}

		created, err := im.ledger.CreateVerification(ctx, params)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("verification %s %d: %v", v.Series, v.Number, err))
			continue
		}
		stats.VerificationsCreated++
		stats.RowsCreated += len(created.Rows)
	}

	im.checkDeclaredClosing(ctx, fiscalYearID, doc, &stats)

	return stats, nil
}

// ensureAccounts creates every account the document names or posts to.
// Account type comes from the leading-digit table; names from #KONTO lines,
// falling back to "Konto <number>" for accounts only seen in rows.
func (im *Importer) ensureAccounts(ctx context.Context, companyID string, doc *Document, stats *Stats) error {
	needed := make(map[string]string)
	for number, name := range doc.Accounts {
		needed[number] = name
	}
	for _, v := range doc.Verifications {
		for _, r := range v.Rows {
			if _, ok := needed[r.Account]; !ok {
				needed[r.Account] = fmt.Sprintf("Konto %s", r.Account)
			}
		}
	}

	numbers := make([]string, 0, len(needed))
	for n := range needed {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	for _, number := range numbers {
		_, err := im.store.AccountByNumber(ctx, companyID, number)
		if err == nil {
			stats.AccountsExisting++
			continue
		}
		var nf ledger.NotFoundError
		if !errors.As(err, &nf) {
			return err
		}

		accountType, ok := model.TypeForNumber(number)
		if !ok {
			stats.Errors = append(stats.Errors, fmt.Sprintf("account %s: number outside the chart ranges", number))
			continue
		}
		account := model.Account{
			CompanyID: companyID,
			Number:    number,
			Name:      needed[number],
			Type:      accountType,
			Active:    true,
		}
		if err := im.store.InsertAccount(ctx, &account); err != nil {
			return err
		}
		stats.AccountsCreated++
	}
	return nil
}

// checkDeclaredClosing compares each current-year #UB line to the balance
// computed from the imported rows. Real-world exports are sometimes
// inconsistent, so a mismatch is a warning, not an import error.
func (im *Importer) checkDeclaredClosing(ctx context.Context, fiscalYearID string, doc *Document, stats *Stats) {
	if len(doc.Closing) == 0 {
		return
	}
	verifications, err := im.store.VerificationsByYear(ctx, fiscalYearID)
	if err != nil {
		stats.Warnings = append(stats.Warnings, fmt.Sprintf("could not verify declared closing balances: %v", err))
		return
	}
	computed := ledger.SignedBalances(verifications)
	for _, line := range doc.Closing {
		if line.YearOffset != 0 {
			continue
		}
		got := computed[line.Account]
		if !got.Equal(line.Amount) {
			stats.Warnings = append(stats.Warnings, fmt.Sprintf(
				"account %s: declared closing balance %s differs from computed %s",
				line.Account, line.Amount.StringFixed(2), got.StringFixed(2)))
		}
	}
}
