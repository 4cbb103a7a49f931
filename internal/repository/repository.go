package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrOrderLocked is returned when an order cannot be deleted because its payroll was already paid.
var ErrOrderLocked = errors.New("order has paid payroll")

type Repository struct {
	db Database
}

// OrderManager defines order persistence. CreateOrder stores the order and, when entry is not nil,
// its payroll entry in one transaction and returns both ids (payrollID is 0 without an entry).
type OrderManager interface {
	CreateOrder(ctx context.Context, order models.Order, entry *models.Payroll) (int64, int64, error)
	GetOrder(ctx context.Context, id int64) (models.Order, error)
	ListOrdersByDate(ctx context.Context, day time.Time) ([]models.Order, error)
	CountOrdersByDay(ctx context.Context, from, to time.Time) (map[string]int, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	DeleteOrder(ctx context.Context, id int64) error
}

// EmployeeManager defines employee persistence.
type EmployeeManager interface {
	CreateEmployee(ctx context.Context, employee models.Employee) (int64, error)
	GetEmployee(ctx context.Context, id int64) (models.Employee, error)
	ListEmployees(ctx context.Context, status models.EmployeeStatus) ([]models.Employee, error)
	CountEmployees(ctx context.Context, status models.EmployeeStatus) (int, error)
	UpdateEmployeeStatus(ctx context.Context, id int64, status models.EmployeeStatus) error
}

// PayrollManager defines payroll persistence.
type PayrollManager interface {
	CreatePayroll(ctx context.Context, entry models.Payroll) (int64, error)
	GetPayroll(ctx context.Context, id int64) (models.Payroll, error)
	UpdatePayrollStatus(ctx context.Context, id int64, from, to models.PayrollStatus) (bool, error)
	ListPayroll(ctx context.Context, status models.PayrollStatus, limit, offset int) ([]models.Payroll, error)
	PayrollSummary(ctx context.Context) ([]models.PayrollSummary, error)
}

// FinanceManager defines income and expense persistence.
type FinanceManager interface {
	CreateTransaction(ctx context.Context, txn models.Transaction) (int64, error)
	ListTransactions(ctx context.Context, kind models.TransactionType, limit, offset int) ([]models.Transaction, error)
	Totals(ctx context.Context) (models.Totals, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database) *Repository {
	return &Repository{db: db}
}

// inTx runs fn inside a transaction and commits it when fn succeeds.
func (r *Repository) inTx(ctx context.Context, fn func(tx Database) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // omitted because checking for errors will not affect the function

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
