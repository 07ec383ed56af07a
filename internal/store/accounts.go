package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// InsertAccount persists a new account, assigning its id. The unique
// (company_id, number) constraint rejects duplicates.
func (d *DB) InsertAccount(ctx context.Context, a *model.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := d.sql.ExecContext(ctx, `
	INSERT INTO accounts(id, company_id, number, name, type, active) VALUES(?, ?, ?, ?, ?, ?)`,
		a.ID, a.CompanyID, a.Number, a.Name, string(a.Type), boolInt(a.Active))
	return err
}

// ArchiveAccount marks an account inactive. Accounts referenced by rows are
// never deleted.
func (d *DB) ArchiveAccount(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, `UPDATE accounts SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ledger.NotFoundError{Kind: "account", Key: id}
	}
	return err
}

// AccountByNumber returns a company's account by its number.
func (d *DB) AccountByNumber(ctx context.Context, companyID, number string) (model.Account, error) {
	row := d.sql.QueryRowContext(ctx, `
	SELECT id, company_id, number, name, type, active FROM accounts
	WHERE company_id = ? AND number = ?`, companyID, number)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ledger.NotFoundError{Kind: "account", Key: number}
	}
	return a, err
}

// AccountsByCompany returns a company's chart ordered by number.
func (d *DB) AccountsByCompany(ctx context.Context, companyID string) ([]model.Account, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT id, company_id, number, name, type, active FROM accounts
	WHERE company_id = ? ORDER BY number`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (model.Account, error) {
	var a model.Account
	var typ string
	var active int
	if err := s.Scan(&a.ID, &a.CompanyID, &a.Number, &a.Name, &typ, &active); err != nil {
		return model.Account{}, err
	}
	a.Type = model.AccountType(typ)
	a.Active = active != 0
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
