package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/repository"
)

var (
	// ErrPayrollNotFound is returned when the payroll entry does not exist.
	ErrPayrollNotFound = errors.New("payroll entry not found")
	// ErrAlreadyPaid is returned when the payroll entry has already been paid.
	ErrAlreadyPaid = errors.New("payroll entry is already paid")
	// ErrExpenseNotRecorded is returned when the expense could not be written and the payment was reverted.
	ErrExpenseNotRecorded = errors.New("failed to record payroll expense")
)

// Store is the persistence the lifecycle manager depends on.
type Store interface {
	GetPayroll(ctx context.Context, id int64) (models.Payroll, error)
	UpdatePayrollStatus(ctx context.Context, id int64, from, to models.PayrollStatus) (bool, error)
	CreateTransaction(ctx context.Context, txn models.Transaction) (int64, error)
}

// Manager moves payroll entries from pending to paid.
type Manager struct {
	store Store
	log   *slog.Logger
}

// NewManager creates a payroll lifecycle manager.
func NewManager(log *slog.Logger, store Store) *Manager {
	return &Manager{store: store, log: log.With(slog.String("component", "payroll"))}
}

// MarkPaid flips a pending payroll entry to paid and records the matching expense.
// A second call for the same entry fails with ErrAlreadyPaid and records nothing.
// If the expense write fails the status is reverted to pending and ErrExpenseNotRecorded is returned.
func (m *Manager) MarkPaid(ctx context.Context, payrollID int64) (models.Transaction, error) {
	entry, err := m.store.GetPayroll(ctx, payrollID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Transaction{}, ErrPayrollNotFound
		}
		return models.Transaction{}, fmt.Errorf("failed to get payroll %d: %w", payrollID, err)
	}
	if entry.Status == models.PayrollPaid {
		return models.Transaction{}, ErrAlreadyPaid
	}

	// The conditional update is the guard against two concurrent calls for one entry.
	flipped, err := m.store.UpdatePayrollStatus(ctx, payrollID, models.PayrollPending, models.PayrollPaid)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to mark payroll %d paid: %w", payrollID, err)
	}
	if !flipped {
		return models.Transaction{}, ErrAlreadyPaid
	}

	expense := ExpenseFor(entry)
	expense.ID, err = m.store.CreateTransaction(ctx, expense)
	if err != nil {
		m.log.ErrorContext(ctx, "Failed to record payroll expense, reverting payment",
			"payroll", payrollID, "error", err)
		m.revert(ctx, payrollID)
		return models.Transaction{}, fmt.Errorf("%w: %w", ErrExpenseNotRecorded, err)
	}

	m.log.InfoContext(ctx, "Payroll marked paid",
		"payroll", payrollID, "transaction", expense.ID, "amount", entry.CalculatedAmount.StringFixed(AmountPlaces))
	return expense, nil
}

func (m *Manager) revert(ctx context.Context, payrollID int64) {
	// The caller's context may already be done; the revert must still be attempted.
	ctx = context.WithoutCancel(ctx)

	reverted, err := m.store.UpdatePayrollStatus(ctx, payrollID, models.PayrollPaid, models.PayrollPending)
	switch {
	case err != nil:
		m.log.ErrorContext(ctx, "Failed to revert payroll status, entry is paid without expense",
			"payroll", payrollID, "error", err)
	case !reverted:
		m.log.ErrorContext(ctx, "Payroll status changed during revert", "payroll", payrollID)
	default:
		m.log.WarnContext(ctx, "Payroll payment reverted", "payroll", payrollID)
	}
}

// ExpenseFor builds the expense transaction recorded when entry is paid. The description carries
// no language of its own; viewers label payroll expenses by Source.
func ExpenseFor(entry models.Payroll) models.Transaction {
	orderID := entry.OrderID

	return models.Transaction{
		Type:  models.TransactionExpense,
		Value: entry.CalculatedAmount,
		Description: fmt.Sprintf("%s, #%d, %s",
			entry.EmployeeName, entry.OrderID, entry.OrderDate.Format(models.DateLayout)),
		Source:  models.SourcePayroll,
		OrderID: &orderID,
	}
}
