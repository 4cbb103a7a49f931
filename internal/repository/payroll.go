package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/jackc/pgx/v5"
)

// CreatePayroll validates and stores a payroll entry for an existing order.
func (r *Repository) CreatePayroll(ctx context.Context, entry models.Payroll) (int64, error) {
	return insertPayroll(ctx, r.db, entry)
}

func insertPayroll(ctx context.Context, db Database, entry models.Payroll) (int64, error) {
	if err := models.Validate(entry); err != nil {
		return 0, fmt.Errorf("failed to create payroll: %w", err)
	}

	var id int64
	err := db.QueryRow(ctx, InsertPayrollSQL,
		entry.EmployeeID,
		entry.EmployeeName,
		entry.OrderID,
		entry.OrderDate,
		entry.OrderValue,
		entry.PaymentPercent,
		entry.CalculatedAmount,
		entry.Status,
	).Scan(&id, &entry.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert payroll: %w", err)
	}

	return id, nil
}

// GetPayroll returns the payroll entry with the given id or ErrNotFound.
func (r *Repository) GetPayroll(ctx context.Context, id int64) (models.Payroll, error) {
	entry, err := scanPayroll(r.db.QueryRow(ctx, SelectPayrollSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Payroll{}, ErrNotFound
		}
		return models.Payroll{}, fmt.Errorf("failed to get payroll %d: %w", id, err)
	}

	return entry, nil
}

// UpdatePayrollStatus moves the entry from one status to another.
// It returns false without error when the entry is missing or not in the from status.
func (r *Repository) UpdatePayrollStatus(
	ctx context.Context, id int64, from, to models.PayrollStatus,
) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, UpdatePayrollStatusSQL, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update payroll %d status: %w", id, err)
	}

	return cmdTag.RowsAffected() == 1, nil
}

// ListPayroll returns a page of payroll entries with the given status, newest orders first.
func (r *Repository) ListPayroll(
	ctx context.Context, status models.PayrollStatus, limit, offset int,
) ([]models.Payroll, error) {
	rows, err := r.db.Query(ctx, SelectPayrollByStatusSQL, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll: %w", err)
	}
	defer rows.Close()

	var entries []models.Payroll
	for rows.Next() {
		entry, errScan := scanPayroll(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan payroll row: %w", errScan)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payroll rows: %w", err)
	}

	return entries, nil
}

// PayrollSummary aggregates payroll per employee.
func (r *Repository) PayrollSummary(ctx context.Context) ([]models.PayrollSummary, error) {
	rows, err := r.db.Query(ctx, PayrollSummarySQL)
	if err != nil {
		return nil, fmt.Errorf("error querying payroll summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.PayrollSummary
	for rows.Next() {
		var summary models.PayrollSummary
		err = rows.Scan(
			&summary.EmployeeID, &summary.EmployeeName, &summary.Entries, &summary.Total,
			&summary.PendingTotal, &summary.FirstOrderDay, &summary.LastOrderDay,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning payroll summary row: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterating payroll summary rows: %w", err)
	}

	return summaries, nil
}

func scanPayroll(row pgx.Row) (models.Payroll, error) {
	var entry models.Payroll
	err := row.Scan(
		&entry.ID, &entry.EmployeeID, &entry.EmployeeName, &entry.OrderID, &entry.OrderDate, &entry.OrderValue,
		&entry.PaymentPercent, &entry.CalculatedAmount, &entry.Status, &entry.PaidAt, &entry.CreatedAt,
	)
	return entry, err
}
