package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/shopspring/decimal"
)

func (e *Engine) employeeFlow() map[Step]handler {
	return map[Step]handler{
		StepName: {accept: acceptName},
		StepPhone: optionalText(func(s *Session, text string) {
			s.Employee.Phone = normalizePhone(text, e.phoneRegion)
		}, StepPaymentMethod),
		StepPaymentMethod: {accept: acceptPaymentMethod},
		StepPaymentValue:  {accept: acceptPaymentValue},
		StepDateStarted:   {accept: acceptDateStarted},
		StepEmail: optionalText(func(s *Session, text string) {
			s.Employee.Email = text
		}, StepNotes),
		StepNotes: optionalText(func(s *Session, text string) {
			s.Employee.Notes = text
		}, StepEmployeeConfirm),
		StepEmployeeConfirm: confirmStep(),
	}
}

func acceptName(_ context.Context, s *Session, in Input) (Step, error) {
	if in.Kind != InputText {
		return "", ErrUnexpectedInput
	}

	name := strings.TrimSpace(in.Text)
	if name == "" {
		return "", ErrNameEmpty
	}

	s.Employee.Name = name
	return StepPhone, nil
}

// acceptPaymentMethod branches: owners have no payment value and skip straight to the start date.
func acceptPaymentMethod(_ context.Context, s *Session, in Input) (Step, error) {
	if in.Kind != InputMethod || !in.Method.Valid() {
		return "", ErrChooseMethod
	}

	s.Employee.PaymentMethod = in.Method
	s.Employee.PaymentValue = decimal.NullDecimal{}
	if !in.Method.RequiresValue() {
		return StepDateStarted, nil
	}
	return StepPaymentValue, nil
}

func acceptPaymentValue(_ context.Context, s *Session, in Input) (Step, error) {
	if in.Kind != InputText {
		return "", ErrUnexpectedInput
	}

	places := models.MoneyPlaces
	if s.Employee.PaymentMethod == models.PaymentPercent {
		places = models.PercentPlaces
	}
	value, ok := models.ParseAmount(in.Text, places)

	switch s.Employee.PaymentMethod {
	case models.PaymentPercent:
		if !ok {
			return "", ErrPercentNotANumber
		}
		if !models.ValidPercent(value) {
			return "", ErrPercentRange
		}
	case models.PaymentFixed:
		if !ok {
			return "", ErrFixedNotANumber
		}
		if value.IsNegative() {
			return "", ErrFixedNegative
		}
	default:
		return "", ErrChooseMethod
	}

	s.Employee.PaymentValue = decimal.NewNullDecimal(value)
	return StepDateStarted, nil
}

func acceptDateStarted(_ context.Context, s *Session, in Input) (Step, error) {
	if in.Kind != InputText {
		return "", ErrUnexpectedInput
	}

	day, ok := parseDay(in.Text)
	if !ok {
		return "", ErrDateFormat
	}

	s.Employee.DateStarted = day.Format(models.DateLayout)
	return StepEmail, nil
}

func (e *Engine) saveEmployee(ctx context.Context, session Session) (Result, error) {
	draft := session.Employee

	started, ok := parseDay(draft.DateStarted)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidDate, draft.DateStarted)
	}

	employee := models.Employee{
		Name:          draft.Name,
		Phone:         draft.Phone,
		PaymentMethod: draft.PaymentMethod,
		PaymentValue:  draft.PaymentValue,
		DateStarted:   started,
		Email:         draft.Email,
		Status:        models.EmployeeActive,
		Notes:         draft.Notes,
	}

	id, err := e.store.CreateEmployee(ctx, employee)
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to save employee", "session", session.ID, "error", err)
		return Result{}, fmt.Errorf("failed to save employee: %w", err)
	}

	e.log.InfoContext(ctx, "Employee saved", "session", session.ID, "employee", id, "method", employee.PaymentMethod)
	return Result{EmployeeID: id, Summary: employeeSummary(draft)}, nil
}

func employeeSummary(draft *EmployeeDraft) []Field {
	value := "-"
	if draft.PaymentValue.Valid {
		value = draft.PaymentValue.Decimal.String()
		if draft.PaymentMethod == models.PaymentPercent {
			value += "%"
		} else {
			value = formatMoney(draft.PaymentValue.Decimal)
		}
	}

	return []Field{
		{LabelKey: "field.name", Value: draft.Name},
		{LabelKey: "field.phone", Value: orDash(draft.Phone)},
		{LabelKey: "field.payment_method", ValueKey: "payment." + string(draft.PaymentMethod)},
		{LabelKey: "field.payment_value", Value: value},
		{LabelKey: "field.date_started", Value: draft.DateStarted},
		{LabelKey: "field.email", Value: orDash(draft.Email)},
		{LabelKey: "field.notes", Value: orDash(draft.Notes)},
	}
}
