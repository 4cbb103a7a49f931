package payroll_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/payroll"
	"github.com/UnknownOlympus/metrica/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetPayroll(ctx context.Context, id int64) (models.Payroll, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Payroll), args.Error(1) //nolint:errcheck // test mock
}

func (m *mockStore) UpdatePayrollStatus(ctx context.Context, id int64, from, to models.PayrollStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) CreateTransaction(ctx context.Context, txn models.Transaction) (int64, error) {
	args := m.Called(ctx, txn)
	return args.Get(0).(int64), args.Error(1) //nolint:errcheck // test mock
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingEntry() models.Payroll {
	return models.Payroll{
		ID:               11,
		EmployeeID:       3,
		EmployeeName:     "Alex",
		OrderID:          7,
		OrderDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		OrderValue:       decimal.RequireFromString("833.33"),
		PaymentPercent:   decimal.NewNullDecimal(decimal.NewFromInt(30)),
		CalculatedAmount: decimal.RequireFromString("250.00"),
		Status:           models.PayrollPending,
	}
}

func TestMarkPaid(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success records one expense", func(t *testing.T) {
		t.Parallel()
		store := new(mockStore)
		manager := payroll.NewManager(discardLogger(), store)

		store.On("GetPayroll", mock.Anything, int64(11)).Return(pendingEntry(), nil)
		store.On("UpdatePayrollStatus", mock.Anything, int64(11), models.PayrollPending, models.PayrollPaid).
			Return(true, nil).Once()
		store.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(txn models.Transaction) bool {
			return txn.Type == models.TransactionExpense &&
				txn.Source == models.SourcePayroll &&
				txn.Value.Equal(decimal.RequireFromString("250.00")) &&
				txn.OrderID != nil && *txn.OrderID == 7
		})).Return(int64(41), nil).Once()

		expense, err := manager.MarkPaid(ctx, 11)

		require.NoError(t, err)
		assert.Equal(t, int64(41), expense.ID)
		assert.Equal(t, "250.00", expense.Value.StringFixed(2))
		assert.Contains(t, expense.Description, "Alex")
		store.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		store := new(mockStore)
		manager := payroll.NewManager(discardLogger(), store)

		store.On("GetPayroll", mock.Anything, int64(5)).Return(models.Payroll{}, repository.ErrNotFound)

		_, err := manager.MarkPaid(ctx, 5)

		require.ErrorIs(t, err, payroll.ErrPayrollNotFound)
		store.AssertNotCalled(t, "UpdatePayrollStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("already paid is rejected", func(t *testing.T) {
		t.Parallel()
		store := new(mockStore)
		manager := payroll.NewManager(discardLogger(), store)

		paid := pendingEntry()
		paid.Status = models.PayrollPaid
		store.On("GetPayroll", mock.Anything, int64(11)).Return(paid, nil)

		_, err := manager.MarkPaid(ctx, 11)

		require.ErrorIs(t, err, payroll.ErrAlreadyPaid)
		store.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("second call loses the status race", func(t *testing.T) {
		t.Parallel()
		store := new(mockStore)
		manager := payroll.NewManager(discardLogger(), store)

		store.On("GetPayroll", mock.Anything, int64(11)).Return(pendingEntry(), nil)
		store.On("UpdatePayrollStatus", mock.Anything, int64(11), models.PayrollPending, models.PayrollPaid).
			Return(true, nil).Once()
		store.On("UpdatePayrollStatus", mock.Anything, int64(11), models.PayrollPending, models.PayrollPaid).
			Return(false, nil).Once()
		store.On("CreateTransaction", mock.Anything, mock.Anything).Return(int64(41), nil).Once()

		_, err := manager.MarkPaid(ctx, 11)
		require.NoError(t, err)

		_, err = manager.MarkPaid(ctx, 11)
		require.ErrorIs(t, err, payroll.ErrAlreadyPaid)

		store.AssertNumberOfCalls(t, "CreateTransaction", 1)
	})

	t.Run("expense failure reverts status", func(t *testing.T) {
		t.Parallel()
		store := new(mockStore)
		manager := payroll.NewManager(discardLogger(), store)

		store.On("GetPayroll", mock.Anything, int64(11)).Return(pendingEntry(), nil)
		store.On("UpdatePayrollStatus", mock.Anything, int64(11), models.PayrollPending, models.PayrollPaid).
			Return(true, nil).Once()
		store.On("CreateTransaction", mock.Anything, mock.Anything).Return(int64(0), assert.AnError).Once()
		store.On("UpdatePayrollStatus", mock.Anything, int64(11), models.PayrollPaid, models.PayrollPending).
			Return(true, nil).Once()

		_, err := manager.MarkPaid(ctx, 11)

		require.ErrorIs(t, err, payroll.ErrExpenseNotRecorded)
		require.ErrorIs(t, err, assert.AnError)
		store.AssertExpectations(t)
	})

	t.Run("status update failure", func(t *testing.T) {
		t.Parallel()
		store := new(mockStore)
		manager := payroll.NewManager(discardLogger(), store)

		store.On("GetPayroll", mock.Anything, int64(11)).Return(pendingEntry(), nil)
		store.On("UpdatePayrollStatus", mock.Anything, int64(11), models.PayrollPending, models.PayrollPaid).
			Return(false, assert.AnError)

		_, err := manager.MarkPaid(ctx, 11)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to mark payroll 11 paid")
		store.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()
		store := new(mockStore)
		manager := payroll.NewManager(discardLogger(), store)

		store.On("GetPayroll", mock.Anything, int64(11)).Return(models.Payroll{}, assert.AnError)

		_, err := manager.MarkPaid(ctx, 11)

		require.ErrorIs(t, err, assert.AnError)
		require.NotErrorIs(t, err, payroll.ErrPayrollNotFound)
	})
}

func TestExpenseFor(t *testing.T) {
	t.Parallel()

	expense := payroll.ExpenseFor(pendingEntry())

	assert.Equal(t, models.TransactionExpense, expense.Type)
	assert.Equal(t, models.SourcePayroll, expense.Source)
	assert.Equal(t, "Alex, #7, 2024-01-15", expense.Description)
	require.NotNil(t, expense.OrderID)
	assert.Equal(t, int64(7), *expense.OrderID)
}
