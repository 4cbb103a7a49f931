package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/payroll"
)

func (e *Engine) orderFlow() map[Step]handler {
	return map[Step]handler{
		StepClientName: {accept: acceptClientName},
		StepDescription: optionalText(func(s *Session, text string) {
			s.Order.Description = text
		}, StepEmployee),
		StepEmployee:    {accept: e.acceptEmployee},
		StepIncomeValue: {accept: acceptIncomeValue},
		StepClientContact: optionalText(func(s *Session, text string) {
			s.Order.ClientContact = text
		}, StepOrderConfirm),
		StepOrderConfirm: confirmStep(),
	}
}

func acceptClientName(_ context.Context, s *Session, in Input) (Step, error) {
	if in.Kind != InputText {
		return "", ErrUnexpectedInput
	}

	name := strings.TrimSpace(in.Text)
	if name == "" {
		return "", ErrClientNameEmpty
	}

	s.Order.ClientName = name
	return StepDescription, nil
}

// acceptEmployee snapshots the chosen employee's payment configuration.
// The snapshot, not a later re-read, is what payroll is computed from.
func (e *Engine) acceptEmployee(ctx context.Context, s *Session, in Input) (Step, error) {
	if in.Kind != InputEmployee {
		return "", ErrChooseEmployee
	}

	employees, err := e.store.ListEmployees(ctx, models.EmployeeActive)
	if err != nil {
		return "", fmt.Errorf("failed to list active employees: %w", err)
	}

	for _, employee := range employees {
		if employee.ID == in.EmployeeID {
			snap := payroll.SnapshotOf(employee)
			s.Order.Employee = &snap
			return StepIncomeValue, nil
		}
	}

	return "", ErrEmployeeGone
}

func acceptIncomeValue(_ context.Context, s *Session, in Input) (Step, error) {
	if in.Kind != InputText {
		return "", ErrUnexpectedInput
	}

	value, ok := models.ParseAmount(in.Text, models.MoneyPlaces)
	if !ok {
		return "", ErrNotANumber
	}
	if value.IsNegative() {
		return "", ErrNegativeValue
	}

	s.Order.IncomeValue = value
	return StepClientContact, nil
}

var errNoEmployee = errors.New("order draft has no employee")

func (e *Engine) saveOrder(ctx context.Context, session Session) (Result, error) {
	draft := session.Order
	if draft == nil || draft.Employee == nil {
		return Result{}, errNoEmployee
	}

	day, ok := parseDay(draft.Date)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidDate, draft.Date)
	}

	order := models.Order{
		ClientName:    draft.ClientName,
		Description:   draft.Description,
		Date:          day,
		EmployeeID:    draft.Employee.EmployeeID,
		EmployeeName:  draft.Employee.EmployeeName,
		IncomeValue:   draft.IncomeValue,
		Status:        models.OrderPending,
		ClientContact: draft.ClientContact,
	}
	entry := payroll.ForOrder(order, *draft.Employee)

	orderID, payrollID, err := e.store.CreateOrder(ctx, order, entry)
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to save order", "session", session.ID, "error", err)
		return Result{}, fmt.Errorf("failed to save order: %w", err)
	}

	e.log.InfoContext(ctx, "Order saved",
		"session", session.ID, "order", orderID, "payroll", payrollID, "employee", order.EmployeeID)

	summary := orderSummary(draft)
	if entry != nil {
		summary = append(summary, Field{LabelKey: "field.payroll", Value: formatMoney(entry.CalculatedAmount)})
	}

	return Result{OrderID: orderID, PayrollID: payrollID, EmployeeID: order.EmployeeID, Summary: summary}, nil
}

func orderSummary(draft *OrderDraft) []Field {
	employee := ""
	if draft.Employee != nil {
		employee = draft.Employee.EmployeeName
	}

	return []Field{
		{LabelKey: "field.date", Value: draft.Date},
		{LabelKey: "field.client_name", Value: draft.ClientName},
		{LabelKey: "field.description", Value: orDash(draft.Description)},
		{LabelKey: "field.employee", Value: employee},
		{LabelKey: "field.income_value", Value: formatMoney(draft.IncomeValue)},
		{LabelKey: "field.client_contact", Value: orDash(draft.ClientContact)},
	}
}
