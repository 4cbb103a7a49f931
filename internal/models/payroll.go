package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus is the payment state of a payroll entry.
type PayrollStatus string

const (
	PayrollPending PayrollStatus = "pending"
	PayrollPaid    PayrollStatus = "paid"
)

// Payroll is the amount owed to an employee for a single order.
type Payroll struct {
	ID               int64               `json:"id"`
	EmployeeID       int64               `json:"employee_id"       validate:"gt=0"`
	EmployeeName     string              `json:"employee_name"     validate:"required"`
	OrderID          int64               `json:"order_id"          validate:"gt=0"`
	OrderDate        time.Time           `json:"order_date"        validate:"required"`
	OrderValue       decimal.Decimal     `json:"order_value"`
	PaymentPercent   decimal.NullDecimal `json:"payment_percent"`
	CalculatedAmount decimal.Decimal     `json:"calculated_amount"`
	Status           PayrollStatus       `json:"status"            validate:"oneof=pending paid"`
	PaidAt           *time.Time          `json:"paid_at"`
	CreatedAt        time.Time           `json:"created_at"`
}

// PayrollSummary aggregates the payroll of one employee.
type PayrollSummary struct {
	EmployeeID    int64
	EmployeeName  string
	Entries       int
	Total         decimal.Decimal
	PendingTotal  decimal.Decimal
	FirstOrderDay time.Time
	LastOrderDay  time.Time
}
