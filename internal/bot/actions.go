package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAction is returned for callback data this bot did not produce.
var ErrUnknownAction = errors.New("unknown callback action")

// ActionKind names what an inline button does.
type ActionKind string

const (
	ActMenu          ActionKind = "menu"  // Arg: menu type
	ActNoop          ActionKind = "noop"  // decorative calendar cells
	ActCalendar      ActionKind = "cal"   // Arg: YYYY-MM, empty for the current month
	ActDay           ActionKind = "day"   // Arg: YYYY-MM-DD
	ActOrderAdd      ActionKind = "oadd"  // Arg: YYYY-MM-DD
	ActOrderComplete ActionKind = "odone" // Arg: order id
	ActOrderCancel   ActionKind = "ocanc" // Arg: order id
	ActOrderDelete   ActionKind = "odel"  // Arg: order id
	ActEmployees     ActionKind = "emps"
	ActEmployeeAdd   ActionKind = "eadd"
	ActEmployeeOff   ActionKind = "eoff" // Arg: employee id
	ActPayroll       ActionKind = "pay"  // Arg: page
	ActPayrollPaid   ActionKind = "paid" // Arg: payroll id
	ActPayrollSum    ActionKind = "psum"
	ActPayrollExport ActionKind = "pxls"
	ActFinance       ActionKind = "fin"

	// Form actions carry the session id in Form so buttons of a finished form are rejected.
	ActFormSkip     ActionKind = "fskip"
	ActFormCancel   ActionKind = "fcanc"
	ActFormConfirm  ActionKind = "fok"
	ActFormEmployee ActionKind = "femp" // Arg: employee id
	ActFormMethod   ActionKind = "fmeth" // Arg: payment method
)

var knownActions = map[ActionKind]bool{ //nolint:gochecknoglobals // lookup table
	ActMenu: true, ActNoop: true, ActCalendar: true, ActDay: true, ActOrderAdd: true,
	ActOrderComplete: true, ActOrderCancel: true, ActOrderDelete: true,
	ActEmployees: true, ActEmployeeAdd: true, ActEmployeeOff: true,
	ActPayroll: true, ActPayrollPaid: true, ActPayrollSum: true, ActPayrollExport: true, ActFinance: true,
	ActFormSkip: true, ActFormCancel: true, ActFormConfirm: true, ActFormEmployee: true, ActFormMethod: true,
}

const (
	actionSeparator = "|"
	// Telegram limits callback data to 64 bytes.
	maxCallbackData = 64
)

// Action is the decoded callback data of an inline button.
type Action struct {
	Kind ActionKind
	Form string
	Arg  string
}

// Encode renders the action as callback data.
func (a Action) Encode() string {
	return string(a.Kind) + actionSeparator + a.Form + actionSeparator + a.Arg
}

// ParseAction decodes callback data produced by Encode.
func ParseAction(data string) (Action, error) {
	if len(data) > maxCallbackData {
		return Action{}, fmt.Errorf("%w: data too long", ErrUnknownAction)
	}

	parts := strings.Split(data, actionSeparator)
	const fields = 3
	if len(parts) != fields {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}

	action := Action{Kind: ActionKind(parts[0]), Form: parts[1], Arg: parts[2]}
	if !knownActions[action.Kind] {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}

	return action, nil
}

// ID parses Arg as a positive record id.
func (a Action) ID() (int64, error) {
	id, err := strconv.ParseInt(a.Arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q for %s", ErrUnknownAction, a.Arg, a.Kind)
	}
	return id, nil
}

func idArg(id int64) string {
	return strconv.FormatInt(id, 10)
}
