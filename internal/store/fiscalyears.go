package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// InsertFiscalYear persists a new fiscal year after checking it does not
// overlap a sibling year of the same company.
func (d *DB) InsertFiscalYear(ctx context.Context, fy *model.FiscalYear) error {
	if fy.ID == "" {
		fy.ID = uuid.NewString()
	}
	if fy.Status == "" {
		fy.Status = model.FiscalYearOpen
	}
	return d.withTx(func(tx *sql.Tx) error {
		return insertFiscalYearTx(ctx, tx, fy)
	})
}

func insertFiscalYearTx(ctx context.Context, tx *sql.Tx, fy *model.FiscalYear) error {
	var overlaps int
	err := tx.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM fiscal_years
	WHERE company_id = ? AND start_date <= ? AND end_date >= ?`,
		fy.CompanyID, fy.EndDate.Format(dateFormat), fy.StartDate.Format(dateFormat)).Scan(&overlaps)
	if err != nil {
		return err
	}
	if overlaps > 0 {
		return ledger.SequenceError{
			Reason: fmt.Sprintf("fiscal year %d overlaps an existing year", fy.Year),
		}
	}
	_, err = tx.ExecContext(ctx, `
	INSERT INTO fiscal_years(id, company_id, year, start_date, end_date, status) VALUES(?, ?, ?, ?, ?, ?)`,
		fy.ID, fy.CompanyID, fy.Year, fy.StartDate.Format(dateFormat), fy.EndDate.Format(dateFormat), string(fy.Status))
	return err
}

// FiscalYear returns one fiscal year by id.
func (d *DB) FiscalYear(ctx context.Context, id string) (model.FiscalYear, error) {
	row := d.sql.QueryRowContext(ctx, `
	SELECT id, company_id, year, start_date, end_date, status FROM fiscal_years WHERE id = ?`, id)
	fy, err := scanFiscalYear(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FiscalYear{}, ledger.NotFoundError{Kind: "fiscal year", Key: id}
	}
	return fy, err
}

// FiscalYearByLabel returns a company's fiscal year by calendar year label.
func (d *DB) FiscalYearByLabel(ctx context.Context, companyID string, year int) (model.FiscalYear, error) {
	row := d.sql.QueryRowContext(ctx, `
	SELECT id, company_id, year, start_date, end_date, status FROM fiscal_years
	WHERE company_id = ? AND year = ?`, companyID, year)
	fy, err := scanFiscalYear(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FiscalYear{}, ledger.NotFoundError{Kind: "fiscal year", Key: strconv.Itoa(year)}
	}
	return fy, err
}

// FiscalYears returns a company's years ordered by start date.
func (d *DB) FiscalYears(ctx context.Context, companyID string) ([]model.FiscalYear, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT id, company_id, year, start_date, end_date, status FROM fiscal_years
	WHERE company_id = ? ORDER BY start_date`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.FiscalYear
	for rows.Next() {
		fy, err := scanFiscalYear(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fy)
	}
	return out, rows.Err()
}

// UpdateFiscalYearStatus sets a year's lifecycle state.
func (d *DB) UpdateFiscalYearStatus(ctx context.Context, id string, status model.FiscalYearStatus) error {
	res, err := d.sql.ExecContext(ctx, `UPDATE fiscal_years SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ledger.NotFoundError{Kind: "fiscal year", Key: id}
	}
	return err
}

func scanFiscalYear(s scanner) (model.FiscalYear, error) {
	var fy model.FiscalYear
	var start, end, status string
	if err := s.Scan(&fy.ID, &fy.CompanyID, &fy.Year, &start, &end, &status); err != nil {
		return model.FiscalYear{}, err
	}
	var err error
	if fy.StartDate, err = time.Parse(dateFormat, start); err != nil {
		return model.FiscalYear{}, fmt.Errorf("parsing start date %q: %w", start, err)
	}
	if fy.EndDate, err = time.Parse(dateFormat, end); err != nil {
		return model.FiscalYear{}, fmt.Errorf("parsing end date %q: %w", end, err)
	}
	fy.Status = model.FiscalYearStatus(status)
	return fy, nil
}
