package form

import "errors"

var (
	// ErrSessionClosed is returned when input arrives for a saved or cancelled session.
	ErrSessionClosed = errors.New("form session is closed")
	// ErrUnknownStep is returned when a session is in a step its form does not define.
	ErrUnknownStep = errors.New("unknown form step")
	// ErrInvalidDate is returned when an order form is started with a malformed date.
	ErrInvalidDate = errors.New("invalid order date")
)

// InputError rejects a user input. The session stays on the same step and the user sees Key as a notice.
type InputError struct {
	Key string
}

func (e *InputError) Error() string {
	return "rejected input: " + e.Key
}

// Rejections returned for invalid input. Each Key is an i18n message.
var (
	ErrClientNameEmpty    = &InputError{Key: "form.notice.client_name_empty"}
	ErrNameEmpty          = &InputError{Key: "form.notice.name_empty"}
	ErrNotANumber         = &InputError{Key: "form.notice.not_a_number"}
	ErrNegativeValue      = &InputError{Key: "form.notice.negative_value"}
	ErrPercentNotANumber  = &InputError{Key: "form.notice.percent_not_a_number"}
	ErrPercentRange       = &InputError{Key: "form.notice.percent_range"}
	ErrFixedNotANumber    = &InputError{Key: "form.notice.fixed_not_a_number"}
	ErrFixedNegative      = &InputError{Key: "form.notice.fixed_negative"}
	ErrDateFormat         = &InputError{Key: "form.notice.date_format"}
	ErrChooseEmployee     = &InputError{Key: "form.notice.choose_employee"}
	ErrEmployeeGone       = &InputError{Key: "form.notice.employee_unavailable"}
	ErrChooseMethod       = &InputError{Key: "form.notice.choose_method"}
	ErrNotSkippable       = &InputError{Key: "form.notice.required"}
	ErrConfirmWithButtons = &InputError{Key: "form.notice.use_buttons"}
	ErrUnexpectedInput    = &InputError{Key: "form.notice.unexpected"}
)

// NoticeNoEmployees is shown at employee selection while there is nobody to choose.
const NoticeNoEmployees = "form.notice.no_employees"
