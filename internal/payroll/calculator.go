// Package payroll computes the amounts owed to employees and manages the payment of payroll entries.
package payroll

import (
	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of decimal places calculated amounts are rounded to.
const AmountPlaces = 2

var hundred = decimal.NewFromInt(100) //nolint:gochecknoglobals // constant decimal

// Calculate returns orderValue * percent / 100 rounded to two decimal places.
func Calculate(orderValue, percent decimal.Decimal) decimal.Decimal {
	return orderValue.Mul(percent).Div(hundred).Round(AmountPlaces)
}

// Snapshot is the payment configuration of an employee captured when they were assigned to an order.
type Snapshot struct {
	EmployeeID   int64                `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Method       models.PaymentMethod `json:"method"`
	Value        decimal.NullDecimal  `json:"value"`
}

// SnapshotOf captures the payment configuration of employee.
func SnapshotOf(employee models.Employee) Snapshot {
	return Snapshot{
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		Method:       employee.PaymentMethod,
		Value:        employee.PaymentValue,
	}
}

// Accrues reports whether an order assigned with this snapshot produces a payroll entry.
// Only percent-based employees with a positive rate are paid per order.
func (s Snapshot) Accrues() bool {
	return s.Method == models.PaymentPercent && s.Value.Valid && s.Value.Decimal.IsPositive()
}

// ForOrder builds the pending payroll entry owed for order, or nil when the snapshot does not accrue.
// The returned entry has no OrderID yet when the order itself is not persisted.
func ForOrder(order models.Order, snap Snapshot) *models.Payroll {
	if !snap.Accrues() {
		return nil
	}

	return &models.Payroll{
		EmployeeID:       snap.EmployeeID,
		EmployeeName:     snap.EmployeeName,
		OrderID:          order.ID,
		OrderDate:        order.Date,
		OrderValue:       order.IncomeValue,
		PaymentPercent:   snap.Value,
		CalculatedAmount: Calculate(order.IncomeValue, snap.Value.Decimal),
		Status:           models.PayrollPending,
	}
}
