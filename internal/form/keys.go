package form

import (
	"slices"

	"github.com/UnknownOlympus/metrica/internal/models"
)

//nolint:gochecknoglobals // fixed notice list
var inputErrors = []*InputError{
	ErrClientNameEmpty, ErrNameEmpty, ErrNotANumber, ErrNegativeValue,
	ErrPercentNotANumber, ErrPercentRange, ErrFixedNotANumber, ErrFixedNegative,
	ErrDateFormat, ErrChooseEmployee, ErrEmployeeGone, ErrChooseMethod,
	ErrNotSkippable, ErrConfirmWithButtons, ErrUnexpectedInput,
}

// Keys lists the i18n keys a Prompt or Result of this engine can carry, sorted and without duplicates.
func (e *Engine) Keys() []string {
	keys := []string{NoticeNoEmployees, "field.payroll"}
	for _, inputErr := range inputErrors {
		keys = append(keys, inputErr.Key)
	}

	for _, flow := range e.flows {
		for step := range flow {
			if step != StepPaymentValue {
				keys = append(keys, "form."+string(step))
			}
		}
	}

	for _, field := range orderSummary(&OrderDraft{}) {
		keys = append(keys, field.LabelKey)
	}
	for _, method := range models.PaymentMethods {
		keys = append(keys, "payment."+string(method))
		if method != models.PaymentOwner {
			keys = append(keys, "form."+string(StepPaymentValue)+"."+string(method))
		}
		for _, field := range employeeSummary(&EmployeeDraft{PaymentMethod: method}) {
			keys = append(keys, field.LabelKey)
		}
	}

	slices.Sort(keys)
	return slices.Compact(keys)
}
