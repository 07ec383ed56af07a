package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// Memory is an in-process implementation of the same repository surface as
// DB: flat tables keyed by surrogate id, every cross-reference a plain id.
// It backs the service tests and keeps the relational semantics (uniqueness,
// gap-free number allocation, all-or-nothing CloseYear) without sqlite.
type Memory struct {
	mu            sync.RWMutex
	companies     map[string]model.Company
	accounts      map[string]model.Account
	fiscalYears   map[string]model.FiscalYear
	verifications map[string]model.Verification
	rates         []model.ExchangeRate
	groups        map[string]model.ConsolidationGroup
	members       []model.ConsolidationMember
	eliminations  []model.IntercompanyElimination
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		companies:     make(map[string]model.Company),
		accounts:      make(map[string]model.Account),
		fiscalYears:   make(map[string]model.FiscalYear),
		verifications: make(map[string]model.Verification),
		groups:        make(map[string]model.ConsolidationGroup),
	}
}

func (m *Memory) InsertCompany(_ context.Context, c *model.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.BaseCurrency == "" {
		c.BaseCurrency = "SEK"
	}
	m.companies[c.ID] = *c
	return nil
}

func (m *Memory) Company(_ context.Context, id string) (model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	if !ok {
		return model.Company{}, ledger.NotFoundError{Kind: "company", Key: id}
	}
	return c, nil
}

func (m *Memory) InsertAccount(_ context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.CompanyID == a.CompanyID && existing.Number == a.Number {
			return fmt.Errorf("account %s already exists for company", a.Number)
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.accounts[a.ID] = *a
	return nil
}

func (m *Memory) ArchiveAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return ledger.NotFoundError{Kind: "account", Key: id}
	}
	a.Active = false
	m.accounts[id] = a
	return nil
}

func (m *Memory) AccountByNumber(_ context.Context, companyID, number string) (model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.CompanyID == companyID && a.Number == number {
			return a, nil
		}
	}
	return model.Account{}, ledger.NotFoundError{Kind: "account", Key: number}
}

func (m *Memory) AccountsByCompany(_ context.Context, companyID string) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Account
	for _, a := range m.accounts {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *Memory) InsertFiscalYear(_ context.Context, fy *model.FiscalYear) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertFiscalYearLocked(fy)
}

func (m *Memory) insertFiscalYearLocked(fy *model.FiscalYear) error {
	if fy.Status == "" {
		fy.Status = model.FiscalYearOpen
	}
	for _, existing := range m.fiscalYears {
		if existing.CompanyID == fy.CompanyID &&
			!existing.StartDate.After(fy.EndDate) && !existing.EndDate.Before(fy.StartDate) {
			return ledger.SequenceError{
				Reason: fmt.Sprintf("fiscal year %d overlaps an existing year", fy.Year),
			}
		}
	}
	if fy.ID == "" {
		fy.ID = uuid.NewString()
	}
	m.fiscalYears[fy.ID] = *fy
	return nil
}

func (m *Memory) FiscalYear(_ context.Context, id string) (model.FiscalYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fy, ok := m.fiscalYears[id]
	if !ok {
		return model.FiscalYear{}, ledger.NotFoundError{Kind: "fiscal year", Key: id}
	}
	return fy, nil
}

func (m *Memory) FiscalYearByLabel(_ context.Context, companyID string, year int) (model.FiscalYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, fy := range m.fiscalYears {
		if fy.CompanyID == companyID && fy.Year == year {
			return fy, nil
		}
	}
	return model.FiscalYear{}, ledger.NotFoundError{Kind: "fiscal year", Key: strconv.Itoa(year)}
}

func (m *Memory) FiscalYears(_ context.Context, companyID string) ([]model.FiscalYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.FiscalYear
	for _, fy := range m.fiscalYears {
		if fy.CompanyID == companyID {
			out = append(out, fy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *Memory) UpdateFiscalYearStatus(_ context.Context, id string, status model.FiscalYearStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fy, ok := m.fiscalYears[id]
	if !ok {
		return ledger.NotFoundError{Kind: "fiscal year", Key: id}
	}
	fy.Status = status
	m.fiscalYears[id] = fy
	return nil
}

func (m *Memory) InsertVerification(_ context.Context, v *model.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertVerificationLocked(v)
	return nil
}

func (m *Memory) insertVerificationLocked(v *model.Verification) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	max := 0
	for _, existing := range m.verifications {
		if existing.FiscalYearID == v.FiscalYearID && existing.Number > max {
			max = existing.Number
		}
	}
	v.Number = max + 1
	for i := range v.Rows {
		if v.Rows[i].ID == "" {
			v.Rows[i].ID = uuid.NewString()
		}
		v.Rows[i].VerificationID = v.ID
	}
	stored := *v
	stored.Rows = append([]model.VerificationRow(nil), v.Rows...)
	m.verifications[v.ID] = stored
}

func (m *Memory) Verification(_ context.Context, id string) (model.Verification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.verifications[id]
	if !ok {
		return model.Verification{}, ledger.NotFoundError{Kind: "verification", Key: id}
	}
	return v, nil
}

func (m *Memory) VerificationsByYear(_ context.Context, fiscalYearID string) ([]model.Verification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Verification
	for _, v := range m.verifications {
		if v.FiscalYearID == fiscalYearID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *Memory) CloseYear(_ context.Context, closedYearID string, next *model.FiscalYear, opening *model.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	closed, ok := m.fiscalYears[closedYearID]
	if !ok {
		return ledger.NotFoundError{Kind: "fiscal year", Key: closedYearID}
	}
	if closed.Status == model.FiscalYearClosed {
		return ledger.SequenceError{Reason: "fiscal year is already closed"}
	}

	reused := false
	for _, fy := range m.fiscalYears {
		if fy.CompanyID == next.CompanyID && fy.Year == next.Year {
			*next = fy
			reused = true
			break
		}
	}
	if !reused {
		if err := m.insertFiscalYearLocked(next); err != nil {
			return err
		}
	}

	if opening != nil {
		opening.FiscalYearID = next.ID
		m.insertVerificationLocked(opening)
	}

	closed.Status = model.FiscalYearClosed
	m.fiscalYears[closedYearID] = closed
	return nil
}

func (m *Memory) InsertExchangeRate(_ context.Context, r *model.ExchangeRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.rates = append(m.rates, *r)
	return nil
}

func (m *Memory) ExchangeRate(_ context.Context, currencyCode string, date time.Time) (model.ExchangeRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best model.ExchangeRate
	found := false
	for _, r := range m.rates {
		if r.CurrencyCode != currencyCode || r.RateDate.After(date) {
			continue
		}
		if !found || r.RateDate.After(best.RateDate) {
			best = r
			found = true
		}
	}
	if !found {
		return model.ExchangeRate{}, ledger.NotFoundError{Kind: "exchange rate", Key: currencyCode}
	}
	return best, nil
}

func (m *Memory) InsertGroup(_ context.Context, g *model.ConsolidationGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	m.groups[g.ID] = *g
	return nil
}

func (m *Memory) Group(_ context.Context, id string) (model.ConsolidationGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return model.ConsolidationGroup{}, ledger.NotFoundError{Kind: "consolidation group", Key: id}
	}
	return g, nil
}

func (m *Memory) InsertMember(_ context.Context, member *model.ConsolidationMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	m.members = append(m.members, *member)
	return nil
}

func (m *Memory) Members(_ context.Context, groupID string) ([]model.ConsolidationMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.ConsolidationMember
	for _, member := range m.members {
		if member.GroupID == groupID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *Memory) InsertElimination(_ context.Context, e *model.IntercompanyElimination) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.eliminations {
		if existing.GroupID == e.GroupID && existing.Key() == e.Key() {
			return ledger.SequenceError{
				Reason: fmt.Sprintf("elimination for account %s in %d already registered", e.AccountNumber, e.Year),
			}
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.eliminations = append(m.eliminations, *e)
	return nil
}

func (m *Memory) Eliminations(_ context.Context, groupID string, year int) ([]model.IntercompanyElimination, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.IntercompanyElimination
	for _, e := range m.eliminations {
		if e.GroupID == groupID && e.Year == year {
			out = append(out, e)
		}
	}
	return out, nil
}
