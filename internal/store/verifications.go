package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/model"
)

// InsertVerification persists a verification and its rows in one
// transaction, allocating the next verification number for the fiscal year
// inside the write lock. Numbers are monotonic with no gaps and are never
// reused, even after a reversal.
func (d *DB) InsertVerification(ctx context.Context, v *model.Verification) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return d.withTx(func(tx *sql.Tx) error {
		return insertVerificationTx(ctx, tx, v)
	})
}

func insertVerificationTx(ctx context.Context, tx *sql.Tx, v *model.Verification) error {
	err := tx.QueryRowContext(ctx, `
	SELECT COALESCE(MAX(number), 0) + 1 FROM verifications WHERE fiscal_year_id = ?`,
		v.FiscalYearID).Scan(&v.Number)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO verifications(id, company_id, fiscal_year_id, number, date, description, reverses_id)
	VALUES(?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.CompanyID, v.FiscalYearID, v.Number, v.Date.Format(dateFormat), v.Description, v.ReversesID)
	if err != nil {
		return err
	}

	for i := range v.Rows {
		r := &v.Rows[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		r.VerificationID = v.ID
		_, err = tx.ExecContext(ctx, `
		INSERT INTO verification_rows(id, verification_id, account_id, account_number,
		 debit, credit, currency, foreign_debit, foreign_credit, exchange_rate, seq)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.VerificationID, r.AccountID, r.AccountNumber,
			r.Debit.String(), r.Credit.String(), r.Currency,
			r.ForeignDebit.String(), r.ForeignCredit.String(), r.ExchangeRate.String(), i)
		if err != nil {
			return err
		}
	}
	return nil
}

// Verification returns one verification with its rows.
func (d *DB) Verification(ctx context.Context, id string) (model.Verification, error) {
	row := d.sql.QueryRowContext(ctx, `
	SELECT id, company_id, fiscal_year_id, number, date, description, reverses_id
	FROM verifications WHERE id = ?`, id)
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Verification{}, ledger.NotFoundError{Kind: "verification", Key: id}
	}
	if err != nil {
		return model.Verification{}, err
	}
	if v.Rows, err = d.rowsFor(ctx, v.ID); err != nil {
		return model.Verification{}, err
	}
	return v, nil
}

// VerificationsByYear returns a fiscal year's verifications in number order,
// rows included.
func (d *DB) VerificationsByYear(ctx context.Context, fiscalYearID string) ([]model.Verification, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT id, company_id, fiscal_year_id, number, date, description, reverses_id
	FROM verifications WHERE fiscal_year_id = ? ORDER BY number`, fiscalYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Rows, err = d.rowsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CloseYear runs the terminal closing transition as one transaction: reuse
// or insert the next fiscal year, insert the opening verification into it,
// and flip the closed year's status. A failure rolls everything back.
// next is updated in place when an existing year is reused; opening may be
// nil when there is nothing to carry forward.
func (d *DB) CloseYear(ctx context.Context, closedYearID string, next *model.FiscalYear, opening *model.Verification) error {
	return d.withTx(func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM fiscal_years WHERE id = ?`, closedYearID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.NotFoundError{Kind: "fiscal year", Key: closedYearID}
		}
		if err != nil {
			return err
		}
		if model.FiscalYearStatus(status) == model.FiscalYearClosed {
			return ledger.SequenceError{Reason: "fiscal year is already closed"}
		}

		// Reuse the next year when a prior attempt already created it.
		row := tx.QueryRowContext(ctx, `
		SELECT id, company_id, year, start_date, end_date, status FROM fiscal_years
		WHERE company_id = ? AND year = ?`, next.CompanyID, next.Year)
		existing, err := scanFiscalYear(row)
		switch {
		case err == nil:
			*next = existing
		case errors.Is(err, sql.ErrNoRows):
			if next.ID == "" {
				next.ID = uuid.NewString()
			}
			if err := insertFiscalYearTx(ctx, tx, next); err != nil {
				return err
			}
		default:
			return err
		}

		if opening != nil {
			if opening.ID == "" {
				opening.ID = uuid.NewString()
			}
			opening.FiscalYearID = next.ID
			if err := insertVerificationTx(ctx, tx, opening); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE fiscal_years SET status = ? WHERE id = ?`,
			string(model.FiscalYearClosed), closedYearID)
		return err
	})
}

func (d *DB) rowsFor(ctx context.Context, verificationID string) ([]model.VerificationRow, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT id, verification_id, account_id, account_number, debit, credit,
	 currency, foreign_debit, foreign_credit, exchange_rate
	FROM verification_rows WHERE verification_id = ? ORDER BY seq`, verificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.VerificationRow
	for rows.Next() {
		var r model.VerificationRow
		var debit, credit, fdebit, fcredit, rate string
		if err := rows.Scan(&r.ID, &r.VerificationID, &r.AccountID, &r.AccountNumber,
			&debit, &credit, &r.Currency, &fdebit, &fcredit, &rate); err != nil {
			return nil, err
		}
		if r.Debit, err = parseDec(debit); err != nil {
			return nil, err
		}
		if r.Credit, err = parseDec(credit); err != nil {
			return nil, err
		}
		if r.ForeignDebit, err = parseDec(fdebit); err != nil {
			return nil, err
		}
		if r.ForeignCredit, err = parseDec(fcredit); err != nil {
			return nil, err
		}
		if r.ExchangeRate, err = parseDec(rate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanVerification(s scanner) (model.Verification, error) {
	var v model.Verification
	var date string
	if err := s.Scan(&v.ID, &v.CompanyID, &v.FiscalYearID, &v.Number, &date, &v.Description, &v.ReversesID); err != nil {
		return model.Verification{}, err
	}
	var err error
	if v.Date, err = time.Parse(dateFormat, date); err != nil {
		return model.Verification{}, fmt.Errorf("parsing verification date %q: %w", date, err)
	}
	return v, nil
}

func parseDec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
