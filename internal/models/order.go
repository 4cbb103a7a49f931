package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar day format used for order and employee dates.
const DateLayout = "2006-01-02"

// OrderStatus is the processing state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	return s == OrderPending || s == OrderCompleted || s == OrderCancelled
}

// Order is a client order registered for a calendar day.
type Order struct {
	ID            int64           `json:"id"`
	ClientName    string          `json:"client_name"   validate:"required"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"          validate:"required"`
	EmployeeID    int64           `json:"employee_id"   validate:"gt=0"`
	EmployeeName  string          `json:"employee_name" validate:"required"`
	IncomeValue   decimal.Decimal `json:"income_value"`
	Status        OrderStatus     `json:"status"        validate:"oneof=pending completed cancelled"`
	ClientContact string          `json:"client_contact"`
	CreatedAt     time.Time       `json:"created_at"`
}
