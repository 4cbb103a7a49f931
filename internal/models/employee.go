package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod describes how an employee is paid for the orders assigned to them.
type PaymentMethod string

const (
	PaymentOwner   PaymentMethod = "owner"      // no payment value, never produces payroll
	PaymentPercent PaymentMethod = "in_percent" // share of the order income, value in [0,100]
	PaymentFixed   PaymentMethod = "fixed"      // fixed rate, value >= 0
)

// PaymentMethods lists the accepted payment methods in the order they are offered to users.
var PaymentMethods = []PaymentMethod{PaymentOwner, PaymentPercent, PaymentFixed} //nolint:gochecknoglobals // enum

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentOwner, PaymentPercent, PaymentFixed:
		return true
	}
	return false
}

// RequiresValue reports whether a payment value must be collected for m.
func (m PaymentMethod) RequiresValue() bool {
	return m == PaymentPercent || m == PaymentFixed
}

// EmployeeStatus is the employment state of an employee.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee represents a person who can be assigned to orders.
type Employee struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"           validate:"required"`
	Phone         string              `json:"phone"`
	PaymentMethod PaymentMethod       `json:"payment_method" validate:"oneof=owner in_percent fixed"`
	PaymentValue  decimal.NullDecimal `json:"payment_value"` // null for owners
	DateStarted   time.Time           `json:"date_started"   validate:"required"`
	Email         string              `json:"email"`
	Status        EmployeeStatus      `json:"status"         validate:"oneof=active inactive"`
	Notes         string              `json:"notes"`
	CreatedAt     time.Time           `json:"created_at"`
}
