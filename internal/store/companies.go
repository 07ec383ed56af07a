package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// InsertCompany persists a new company, assigning its id.
func (d *DB) InsertCompany(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.BaseCurrency == "" {
		c.BaseCurrency = "SEK"
	}
	_, err := d.sql.ExecContext(ctx, `
	INSERT INTO companies(id, name, org_number, base_currency) VALUES(?, ?, ?, ?)`,
		c.ID, c.Name, c.OrgNumber, c.BaseCurrency)
	return err
}

// Company returns one company by id.
func (d *DB) Company(ctx context.Context, id string) (model.Company, error) {
	var c model.Company
	err := d.sql.QueryRowContext(ctx,
		`SELECT id, name, org_number, base_currency FROM companies WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.OrgNumber, &c.BaseCurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, ledger.NotFoundError{Kind: "company", Key: id}
	}
	return c, err
}

// Companies returns all companies ordered by name.
func (d *DB) Companies(ctx context.Context) ([]model.Company, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, name, org_number, base_currency FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.OrgNumber, &c.BaseCurrency); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
