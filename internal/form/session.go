// Package form implements the step-by-step conversations that collect new orders and employees.
//
// A conversation is an explicit Session value. Every transition takes the current Session and an Input
// and returns the next Session together with the Prompt the user should see.
package form

import (
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/payroll"
	"github.com/shopspring/decimal"
)

// Kind identifies which entity a session is collecting.
type Kind string

const (
	KindOrder    Kind = "order"
	KindEmployee Kind = "employee"
)

// Step is a state of a form. Its value doubles as the suffix of the prompt's i18n key.
type Step string

// Order form steps.
const (
	StepClientName    Step = "order.client_name"
	StepDescription   Step = "order.description"
	StepEmployee      Step = "order.employee"
	StepIncomeValue   Step = "order.income_value"
	StepClientContact Step = "order.client_contact"
	StepOrderConfirm  Step = "order.confirm"
)

// Employee form steps.
const (
	StepName            Step = "employee.name"
	StepPhone           Step = "employee.phone"
	StepPaymentMethod   Step = "employee.payment_method"
	StepPaymentValue    Step = "employee.payment_value"
	StepDateStarted     Step = "employee.date_started"
	StepEmail           Step = "employee.email"
	StepNotes           Step = "employee.notes"
	StepEmployeeConfirm Step = "employee.confirm"
)

// Terminal steps.
const (
	StepSaved     Step = "saved"
	StepCancelled Step = "cancelled"
)

// Session is the state of one chat's active form.
type Session struct {
	ID        string         `json:"id"`
	ChatID    int64          `json:"chat_id"`
	Kind      Kind           `json:"kind"`
	Step      Step           `json:"step"`
	Order     *OrderDraft    `json:"order,omitempty"`
	Employee  *EmployeeDraft `json:"employee,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// OrderDraft holds the order fields collected so far.
type OrderDraft struct {
	Date          string            `json:"date"`
	ClientName    string            `json:"client_name"`
	Description   string            `json:"description"`
	Employee      *payroll.Snapshot `json:"employee,omitempty"`
	IncomeValue   decimal.Decimal   `json:"income_value"`
	ClientContact string            `json:"client_contact"`
}

// EmployeeDraft holds the employee fields collected so far.
type EmployeeDraft struct {
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	PaymentValue  decimal.NullDecimal  `json:"payment_value"`
	DateStarted   string               `json:"date_started"`
	Email         string               `json:"email"`
	Notes         string               `json:"notes"`
}

// Terminal reports whether the session has ended.
func (s Session) Terminal() bool {
	return s.Step == StepSaved || s.Step == StepCancelled
}

// clone returns a copy that shares no drafts with s.
func (s Session) clone() Session {
	next := s
	if s.Order != nil {
		order := *s.Order
		if s.Order.Employee != nil {
			snap := *s.Order.Employee
			order.Employee = &snap
		}
		next.Order = &order
	}
	if s.Employee != nil {
		employee := *s.Employee
		next.Employee = &employee
	}
	return next
}
