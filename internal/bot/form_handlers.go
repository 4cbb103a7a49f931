package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/UnknownOlympus/metrica/internal/form"
	"github.com/UnknownOlympus/metrica/internal/models"
	"gopkg.in/telebot.v4"
)

const (
	// noticeSaveFailed is shown on the confirmation step when storing the form failed.
	noticeSaveFailed = "form.notice.save_failed"
	// noticeUnknownCommand answers a command that no handler is registered for.
	noticeUnknownCommand = "text.unknown_command"
)

// startOrderForm opens an order form for the day. Any form already open in the chat is replaced.
func (b *Bot) startOrderForm(ctx telebot.Context, date string) error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session, prompt, err := b.forms.BeginOrder(timeoutCtx, chatID(ctx), date)
	if err != nil {
		b.log.Error("Failed to start order form", "chat", chatID(ctx), "date", date, "error", err)
		return b.sendInternalError(ctx)
	}
	return b.showForm(timeoutCtx, ctx, session, prompt)
}

// startEmployeeForm opens an employee form. Any form already open in the chat is replaced.
func (b *Bot) startEmployeeForm(ctx telebot.Context) error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session, prompt, err := b.forms.BeginEmployee(timeoutCtx, chatID(ctx))
	if err != nil {
		b.log.Error("Failed to start employee form", "chat", chatID(ctx), "error", err)
		return b.sendInternalError(ctx)
	}
	return b.showForm(timeoutCtx, ctx, session, prompt)
}

func (b *Bot) showForm(reqCtx context.Context, ctx telebot.Context, session form.Session, prompt form.Prompt) error {
	if err := b.sessions.Save(reqCtx, session); err != nil {
		b.log.Error("Failed to save form session", "chat", session.ChatID, "error", err)
		return b.sendInternalError(ctx)
	}

	text, markup := b.renderPrompt(b.lang(ctx), session, prompt)
	return b.reply(ctx, text, markup)
}

// formCallbackHandler feeds a form button press to the chat's session.
// Buttons of a form that is no longer the chat's active form are rejected.
func (b *Bot) formCallbackHandler(ctx telebot.Context, action Action) error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session, ok, err := b.sessions.Load(timeoutCtx, chatID(ctx))
	if err != nil {
		b.log.Error("Failed to load form session", "chat", chatID(ctx), "error", err)
		return b.sendInternalError(ctx)
	}
	if !ok || session.ID != action.Form {
		b.metrics.Forms.WithLabelValues("unknown", "expired").Inc()
		return b.notify(ctx, "form.expired")
	}

	var in form.Input
	switch action.Kind {
	case ActFormSkip:
		in = form.Skip()
	case ActFormCancel:
		in = form.Cancel()
	case ActFormConfirm:
		in = form.Confirm()
	case ActFormEmployee:
		id, idErr := action.ID()
		if idErr != nil {
			return b.notify(ctx, "form.expired")
		}
		in = form.ChooseEmployee(id)
	case ActFormMethod:
		in = form.ChooseMethod(models.PaymentMethod(action.Arg))
	default:
		return b.notify(ctx, "form.expired")
	}

	outcome, err := b.forms.Apply(timeoutCtx, session, in)
	return b.handleOutcome(timeoutCtx, ctx, session, outcome, err)
}

// textHandler routes free text to the chat's active form. Unknown commands are never taken as field values.
func (b *Bot) textHandler(ctx telebot.Context) error {
	if strings.HasPrefix(strings.TrimSpace(ctx.Text()), "/") {
		return b.reply(ctx, b.t(ctx, noticeUnknownCommand), nil)
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session, ok, err := b.sessions.Load(timeoutCtx, chatID(ctx))
	if err != nil {
		b.log.Error("Failed to load form session", "chat", chatID(ctx), "error", err)
		return b.sendInternalError(ctx)
	}
	if !ok {
		title, menu := b.menus.Build(b.lang(ctx), MenuMain)
		return b.reply(ctx, b.t(ctx, "text.use_buttons")+"\n\n"+title, menu)
	}

	outcome, err := b.forms.Submit(timeoutCtx, session, ctx.Text())
	return b.handleOutcome(timeoutCtx, ctx, session, outcome, err)
}

// cancelHandler process command /cancel.
func (b *Bot) cancelHandler(ctx telebot.Context) error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session, ok, err := b.sessions.Load(timeoutCtx, chatID(ctx))
	if err != nil {
		b.log.Error("Failed to load form session", "chat", chatID(ctx), "error", err)
		return b.sendInternalError(ctx)
	}
	if !ok {
		return b.reply(ctx, b.t(ctx, "form.none"), nil)
	}

	outcome := form.Outcome{Session: b.forms.Cancel(timeoutCtx, session), Done: true}
	return b.handleOutcome(timeoutCtx, ctx, session, outcome, nil)
}

func (b *Bot) handleOutcome(
	reqCtx context.Context,
	ctx telebot.Context,
	previous form.Session,
	outcome form.Outcome,
	err error,
) error {
	kind := string(previous.Kind)

	if errors.Is(err, form.ErrSessionClosed) || errors.Is(err, form.ErrUnknownStep) {
		b.log.Warn("Dropping unusable form session", "chat", previous.ChatID, "session", previous.ID, "error", err)
		_ = b.sessions.Delete(reqCtx, previous.ChatID)
		b.metrics.Forms.WithLabelValues(kind, "expired").Inc()
		return b.notify(ctx, "form.expired")
	}

	if err != nil {
		b.log.Error("Failed to apply form input", "chat", previous.ChatID, "session", previous.ID,
			"step", previous.Step, "error", err)
		b.metrics.Forms.WithLabelValues(kind, "failed").Inc()

		prompt, perr := b.forms.Current(reqCtx, outcome.Session)
		if perr != nil {
			return b.sendInternalError(ctx)
		}
		prompt.Notice = noticeSaveFailed
		text, markup := b.renderPrompt(b.lang(ctx), outcome.Session, prompt)
		return b.reply(ctx, text, markup)
	}

	if !outcome.Done {
		return b.showForm(reqCtx, ctx, outcome.Session, outcome.Prompt)
	}

	if derr := b.sessions.Delete(reqCtx, previous.ChatID); derr != nil {
		b.log.Error("Failed to delete finished form session", "chat", previous.ChatID, "error", derr)
	}

	if outcome.Session.Step == form.StepCancelled {
		b.metrics.Forms.WithLabelValues(kind, "cancelled").Inc()
		title, menu := b.menus.Build(b.lang(ctx), MenuMain)
		return b.reply(ctx, b.t(ctx, "form.cancelled")+"\n\n"+title, menu)
	}

	b.metrics.Forms.WithLabelValues(kind, "saved").Inc()
	b.log.Info("Form saved", "chat", previous.ChatID, "kind", kind,
		"order", outcome.Result.OrderID, "payroll", outcome.Result.PayrollID, "employee", outcome.Result.EmployeeID)

	lang := b.lang(ctx)
	text := b.t(ctx, "form.saved."+kind) + "\n\n" + b.renderFields(lang, outcome.Result.Summary)

	menu := &telebot.ReplyMarkup{}
	back := Action{Kind: ActMenu, Arg: string(MenuEmployees)}
	if previous.Kind == form.KindOrder && previous.Order != nil {
		back = Action{Kind: ActDay, Arg: previous.Order.Date}
	}
	menu.Inline(menu.Row(inlineButton(menu, b.t(ctx, "button.back"), back)))

	return b.reply(ctx, text, menu)
}
