package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// InsertGroup persists a consolidation group.
func (d *DB) InsertGroup(ctx context.Context, g *model.ConsolidationGroup) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := d.sql.ExecContext(ctx, `
	INSERT INTO consolidation_groups(id, name, parent_company_id) VALUES(?, ?, ?)`,
		g.ID, g.Name, g.ParentCompanyID)
	return err
}

// Group returns one consolidation group by id.
func (d *DB) Group(ctx context.Context, id string) (model.ConsolidationGroup, error) {
	var g model.ConsolidationGroup
	err := d.sql.QueryRowContext(ctx,
		`SELECT id, name, parent_company_id FROM consolidation_groups WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.ParentCompanyID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ConsolidationGroup{}, ledger.NotFoundError{Kind: "consolidation group", Key: id}
	}
	return g, err
}

// InsertMember adds a company to a group with its ownership share.
func (d *DB) InsertMember(ctx context.Context, m *model.ConsolidationMember) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := d.sql.ExecContext(ctx, `
	INSERT INTO consolidation_members(id, group_id, company_id, ownership_pct) VALUES(?, ?, ?, ?)`,
		m.ID, m.GroupID, m.CompanyID, m.OwnershipPct.String())
	return err
}

// Members returns a group's members.
func (d *DB) Members(ctx context.Context, groupID string) ([]model.ConsolidationMember, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT id, group_id, company_id, ownership_pct FROM consolidation_members
	WHERE group_id = ?`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ConsolidationMember
	for rows.Next() {
		var m model.ConsolidationMember
		var pct string
		if err := rows.Scan(&m.ID, &m.GroupID, &m.CompanyID, &pct); err != nil {
			return nil, err
		}
		if m.OwnershipPct, err = parseDec(pct); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertElimination registers an intercompany elimination. Re-registering
// the same (from, to, account, year) tuple for a group is a SequenceError,
// enforced by the unique index.
func (d *DB) InsertElimination(ctx context.Context, e *model.IntercompanyElimination) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := d.sql.ExecContext(ctx, `
	INSERT INTO eliminations(id, group_id, from_company_id, to_company_id, account_number, year, amount, description)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GroupID, e.FromCompanyID, e.ToCompanyID, e.AccountNumber, e.Year, e.Amount.String(), e.Description)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ledger.SequenceError{
			Reason: fmt.Sprintf("elimination for account %s in %d already registered", e.AccountNumber, e.Year),
		}
	}
	return err
}

// Eliminations returns a group's eliminations for one calendar year.
func (d *DB) Eliminations(ctx context.Context, groupID string, year int) ([]model.IntercompanyElimination, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT id, group_id, from_company_id, to_company_id, account_number, year, amount, description
	FROM eliminations WHERE group_id = ? AND year = ?`, groupID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.IntercompanyElimination
	for rows.Next() {
		var e model.IntercompanyElimination
		var amount string
		if err := rows.Scan(&e.ID, &e.GroupID, &e.FromCompanyID, &e.ToCompanyID,
			&e.AccountNumber, &e.Year, &amount, &e.Description); err != nil {
			return nil, err
		}
		if e.Amount, err = parseDec(amount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
