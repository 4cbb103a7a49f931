package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalid is returned by Validate when an entity breaks its invariants.
var ErrInvalid = errors.New("invalid entity")

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(employeeRules, Employee{})
	v.RegisterStructValidation(orderRules, Order{})
	v.RegisterStructValidation(payrollRules, Payroll{})
	v.RegisterStructValidation(transactionRules, Transaction{})
	return v
}

// Validate checks the entity against its field tags and payment rules.
func Validate(entity any) error {
	if err := validate.Struct(entity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

var hundred = decimal.NewFromInt(100) //nolint:gochecknoglobals // constant decimal

// ValidPercent reports whether value lies in [0,100].
func ValidPercent(value decimal.Decimal) bool {
	return !value.IsNegative() && value.LessThanOrEqual(hundred)
}

func employeeRules(sl validator.StructLevel) {
	emp, _ := sl.Current().Interface().(Employee)
	value := emp.PaymentValue

	switch emp.PaymentMethod {
	case PaymentOwner:
		if value.Valid {
			sl.ReportError(value, "PaymentValue", "payment_value", "owner_without_value", "")
		}
	case PaymentPercent:
		if !value.Valid || !ValidPercent(value.Decimal) {
			sl.ReportError(value, "PaymentValue", "payment_value", "percent", "")
		}
	case PaymentFixed:
		if !value.Valid || value.Decimal.IsNegative() {
			sl.ReportError(value, "PaymentValue", "payment_value", "non_negative", "")
		}
	}
}

func orderRules(sl validator.StructLevel) {
	order, _ := sl.Current().Interface().(Order)
	if order.IncomeValue.IsNegative() {
		sl.ReportError(order.IncomeValue, "IncomeValue", "income_value", "non_negative", "")
	}
}

func payrollRules(sl validator.StructLevel) {
	entry, _ := sl.Current().Interface().(Payroll)
	if entry.CalculatedAmount.IsNegative() {
		sl.ReportError(entry.CalculatedAmount, "CalculatedAmount", "calculated_amount", "non_negative", "")
	}
	if entry.PaymentPercent.Valid && !ValidPercent(entry.PaymentPercent.Decimal) {
		sl.ReportError(entry.PaymentPercent, "PaymentPercent", "payment_percent", "percent", "")
	}
}

func transactionRules(sl validator.StructLevel) {
	txn, _ := sl.Current().Interface().(Transaction)
	if txn.Value.IsNegative() {
		sl.ReportError(txn.Value, "Value", "value", "non_negative", "")
	}
}
