package form

import "github.com/UnknownOlympus/metrica/internal/models"

// InputKind tags the variant carried by an Input.
type InputKind int

const (
	InputText InputKind = iota + 1
	InputSkip
	InputCancel
	InputConfirm
	InputEmployee
	InputMethod
)

// Input is a single user action delivered to a session.
// Only the field matching Kind is meaningful.
type Input struct {
	Kind       InputKind
	Text       string
	EmployeeID int64
	Method     models.PaymentMethod
}

// Text is typed text.
func Text(raw string) Input { return Input{Kind: InputText, Text: raw} }

// Skip leaves an optional field empty.
func Skip() Input { return Input{Kind: InputSkip} }

// Cancel abandons the form.
func Cancel() Input { return Input{Kind: InputCancel} }

// Confirm saves the form from the confirmation step.
func Confirm() Input { return Input{Kind: InputConfirm} }

// ChooseEmployee picks the employee assigned to an order.
func ChooseEmployee(id int64) Input { return Input{Kind: InputEmployee, EmployeeID: id} }

// ChooseMethod picks an employee's payment method.
func ChooseMethod(method models.PaymentMethod) Input { return Input{Kind: InputMethod, Method: method} }
