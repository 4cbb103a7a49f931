package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence the forms write to.
type Store interface {
	ListEmployees(ctx context.Context, status models.EmployeeStatus) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, employee models.Employee) (int64, error)
	CreateOrder(ctx context.Context, order models.Order, entry *models.Payroll) (int64, int64, error)
}

// handler processes input for one step and names the step to move to.
// Returning an *InputError keeps the session on the current step.
type handler struct {
	skippable bool
	accept    func(ctx context.Context, s *Session, in Input) (Step, error)
}

// Engine runs the order and employee forms.
type Engine struct {
	store       Store
	log         *slog.Logger
	phoneRegion string
	now         func() time.Time
	newID       func() string
	flows       map[Kind]map[Step]handler
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPhoneRegion sets the region used to interpret phone numbers without a country code.
func WithPhoneRegion(region string) Option {
	return func(e *Engine) { e.phoneRegion = region }
}

// WithClock replaces the clock used to stamp sessions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a form engine backed by store.
func NewEngine(log *slog.Logger, store Store, opts ...Option) *Engine {
	engine := &Engine{
		store:       store,
		log:         log.With(slog.String("component", "form")),
		phoneRegion: "UA",
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(engine)
	}

	engine.flows = map[Kind]map[Step]handler{
		KindOrder:    engine.orderFlow(),
		KindEmployee: engine.employeeFlow(),
	}

	return engine
}

// BeginOrder starts an order form for the given YYYY-MM-DD date.
func (e *Engine) BeginOrder(ctx context.Context, chatID int64, date string) (Session, Prompt, error) {
	day, ok := parseDay(date)
	if !ok {
		return Session{}, Prompt{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	session := Session{
		ID:        e.newID(),
		ChatID:    chatID,
		Kind:      KindOrder,
		Step:      StepClientName,
		Order:     &OrderDraft{Date: day.Format(models.DateLayout)},
		UpdatedAt: e.now(),
	}
	e.log.DebugContext(ctx, "Order form started", "chat", chatID, "session", session.ID, "date", date)

	prompt, err := e.Current(ctx, session)
	return session, prompt, err
}

// BeginEmployee starts an employee form.
func (e *Engine) BeginEmployee(ctx context.Context, chatID int64) (Session, Prompt, error) {
	session := Session{
		ID:        e.newID(),
		ChatID:    chatID,
		Kind:      KindEmployee,
		Step:      StepName,
		Employee:  &EmployeeDraft{},
		UpdatedAt: e.now(),
	}
	e.log.DebugContext(ctx, "Employee form started", "chat", chatID, "session", session.ID)

	prompt, err := e.Current(ctx, session)
	return session, prompt, err
}

// Apply feeds one input to the session and returns the resulting session and prompt.
// Rejected input is not an error: the outcome repeats the current step with a notice.
// On a store failure the returned session is the unchanged input session.
func (e *Engine) Apply(ctx context.Context, session Session, in Input) (Outcome, error) {
	if session.Terminal() {
		return Outcome{Session: session, Done: true}, ErrSessionClosed
	}

	if in.Kind == InputCancel {
		return e.cancel(ctx, session), nil
	}

	step, ok := e.flows[session.Kind][session.Step]
	if !ok {
		return Outcome{Session: session}, fmt.Errorf("%w: %s/%s", ErrUnknownStep, session.Kind, session.Step)
	}

	next := session.clone()
	next.UpdatedAt = e.now()

	var target Step
	var err error
	if in.Kind == InputSkip && !step.skippable {
		err = ErrNotSkippable
	} else {
		target, err = step.accept(ctx, &next, in)
	}

	var rejected *InputError
	if errors.As(err, &rejected) {
		retry := session.clone()
		retry.UpdatedAt = next.UpdatedAt
		prompt, perr := e.Current(ctx, retry)
		prompt.Notice = rejected.Key
		e.log.DebugContext(ctx, "Input rejected", "session", session.ID, "step", session.Step, "reason", rejected.Key)
		return Outcome{Session: retry, Prompt: prompt}, perr
	}
	if err != nil {
		return Outcome{Session: session}, err
	}

	if target == StepSaved {
		result, perr := e.persist(ctx, next)
		if perr != nil {
			return Outcome{Session: session}, perr
		}
		next.Step = StepSaved
		return Outcome{Session: next, Done: true, Result: result}, nil
	}

	next.Step = target
	prompt, err := e.Current(ctx, next)
	return Outcome{Session: next, Prompt: prompt}, err
}

// Submit applies typed text to the session.
func (e *Engine) Submit(ctx context.Context, session Session, raw string) (Outcome, error) {
	return e.Apply(ctx, session, Text(raw))
}

// SkipField leaves the current optional field empty.
func (e *Engine) SkipField(ctx context.Context, session Session) (Outcome, error) {
	return e.Apply(ctx, session, Skip())
}

// SelectEmployee assigns an active employee to the order being collected.
func (e *Engine) SelectEmployee(ctx context.Context, session Session, employeeID int64) (Outcome, error) {
	return e.Apply(ctx, session, ChooseEmployee(employeeID))
}

// SelectPaymentMethod sets the payment method of the employee being collected.
func (e *Engine) SelectPaymentMethod(
	ctx context.Context, session Session, method models.PaymentMethod,
) (Outcome, error) {
	return e.Apply(ctx, session, ChooseMethod(method))
}

// Confirm saves the form from its confirmation step.
func (e *Engine) Confirm(ctx context.Context, session Session) (Outcome, error) {
	return e.Apply(ctx, session, Confirm())
}

// Cancel ends the session without saving anything.
func (e *Engine) Cancel(ctx context.Context, session Session) Session {
	if session.Terminal() {
		return session
	}
	return e.cancel(ctx, session).Session
}

func (e *Engine) cancel(ctx context.Context, session Session) Outcome {
	e.log.DebugContext(ctx, "Form cancelled", "session", session.ID, "kind", session.Kind, "step", session.Step)

	return Outcome{
		Session: Session{
			ID:        session.ID,
			ChatID:    session.ChatID,
			Kind:      session.Kind,
			Step:      StepCancelled,
			UpdatedAt: e.now(),
		},
		Done: true,
	}
}

// Current renders the prompt for the session's step.
func (e *Engine) Current(ctx context.Context, session Session) (Prompt, error) {
	step, ok := e.flows[session.Kind][session.Step]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %s/%s", ErrUnknownStep, session.Kind, session.Step)
	}

	prompt := Prompt{
		Step:      session.Step,
		Key:       "form." + string(session.Step),
		Skippable: step.skippable,
	}

	switch session.Step {
	case StepClientName:
		prompt.Data = map[string]any{"date": session.Order.Date}
	case StepEmployee:
		employees, err := e.store.ListEmployees(ctx, models.EmployeeActive)
		if err != nil {
			return prompt, fmt.Errorf("failed to list active employees: %w", err)
		}
		if len(employees) == 0 {
			prompt.Notice = NoticeNoEmployees
		}
		for _, employee := range employees {
			prompt.Choices = append(prompt.Choices, Choice{Label: employee.Name, Input: ChooseEmployee(employee.ID)})
		}
	case StepPaymentMethod:
		for _, method := range models.PaymentMethods {
			prompt.Choices = append(prompt.Choices, Choice{LabelKey: "payment." + string(method), Input: ChooseMethod(method)})
		}
	case StepPaymentValue:
		prompt.Key += "." + string(session.Employee.PaymentMethod)
	case StepOrderConfirm:
		prompt.Summary = orderSummary(session.Order)
	case StepEmployeeConfirm:
		prompt.Summary = employeeSummary(session.Employee)
	}

	return prompt, nil
}

func (e *Engine) persist(ctx context.Context, session Session) (Result, error) {
	switch session.Kind {
	case KindOrder:
		return e.saveOrder(ctx, session)
	case KindEmployee:
		return e.saveEmployee(ctx, session)
	}
	return Result{}, fmt.Errorf("%w: %s", ErrUnknownStep, session.Kind)
}

// optionalText stores trimmed text, or an empty string on skip, and moves to next.
func optionalText(set func(*Session, string), next Step) handler {
	return handler{
		skippable: true,
		accept: func(_ context.Context, s *Session, in Input) (Step, error) {
			switch in.Kind {
			case InputText:
				set(s, strings.TrimSpace(in.Text))
			case InputSkip:
				set(s, "")
			default:
				return "", ErrUnexpectedInput
			}
			return next, nil
		},
	}
}

// confirmStep accepts only the confirm signal; cancel is handled before any step.
func confirmStep() handler {
	return handler{
		accept: func(_ context.Context, _ *Session, in Input) (Step, error) {
			if in.Kind == InputConfirm {
				return StepSaved, nil
			}
			return "", ErrConfirmWithButtons
		},
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
