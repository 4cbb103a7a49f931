package form

// Prompt tells the transport what to ask next. Keys are i18n message keys.
type Prompt struct {
	Step      Step
	Key       string
	Data      map[string]any
	Notice    string // set when the previous input was rejected or nothing can be chosen
	Choices   []Choice
	Skippable bool
	Summary   []Field // filled on confirmation steps
}

// Choice is a discrete answer offered as a button.
type Choice struct {
	Label    string // literal label, e.g. an employee name
	LabelKey string // i18n label used when Label is empty
	Input    Input
}

// Field is one line of a confirmation summary.
type Field struct {
	LabelKey string
	Value    string
	ValueKey string // i18n value used instead of Value when set
}

// Confirmable reports whether the prompt expects a confirm or cancel decision.
func (p Prompt) Confirmable() bool {
	return p.Step == StepOrderConfirm || p.Step == StepEmployeeConfirm
}

// Result describes what a completed form stored.
type Result struct {
	OrderID    int64
	PayrollID  int64 // zero when the order produced no payroll entry
	EmployeeID int64
	Summary    []Field
}

// Outcome is the result of applying an input to a session.
type Outcome struct {
	Session Session
	Prompt  Prompt // next question, empty once Done
	Done    bool
	Result  Result // set when the session was saved
}
