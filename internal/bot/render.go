package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/UnknownOlympus/metrica/internal/form"
	"gopkg.in/telebot.v4"
)

// reply edits the message behind a pressed button, or sends a new message for commands and text.
func (b *Bot) reply(ctx telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	opts := []any{telebot.ModeHTML}
	if markup != nil {
		opts = append(opts, markup)
	}

	if ctx.Callback() != nil {
		_ = ctx.Respond()
		b.metrics.SentMessages.WithLabelValues("edit").Inc()
		err := ctx.Edit(text, opts...)
		if err == nil || errors.Is(err, telebot.ErrSameMessageContent) {
			return nil
		}
		b.log.Warn("Failed to edit message, sending a new one", "error", err)
	}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(text, opts...)
}

// notify shows a short callback toast, or a message when the update is not a button press.
func (b *Bot) notify(ctx telebot.Context, key string) error {
	if ctx.Callback() != nil {
		return ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, key)})
	}
	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.t(ctx, key))
}

func (b *Bot) sendInternalError(ctx telebot.Context) error {
	b.metrics.SentMessages.WithLabelValues("error").Inc()
	if ctx.Callback() != nil {
		return ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, "error.internal"), ShowAlert: true})
	}
	return ctx.Send(b.t(ctx, "error.internal"))
}

// renderPrompt turns a form prompt into message text and its inline keyboard.
func (b *Bot) renderPrompt(lang string, session form.Session, prompt form.Prompt) (string, *telebot.ReplyMarkup) {
	var sb strings.Builder

	if prompt.Notice != "" {
		sb.WriteString("⚠️ " + b.localizer.Get(lang, prompt.Notice) + "\n\n")
	}

	sb.WriteString(b.localizer.GetWithData(lang, prompt.Key, escapeData(prompt.Data)))

	if len(prompt.Summary) > 0 {
		sb.WriteString("\n\n" + b.renderFields(lang, prompt.Summary))
	}

	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(prompt.Choices)+2)

	for _, choice := range prompt.Choices {
		label := choice.Label
		if label == "" {
			label = b.localizer.Get(lang, choice.LabelKey)
		}
		rows = append(rows, menu.Row(inlineButton(menu, label, choiceAction(session.ID, choice.Input))))
	}

	if prompt.Skippable {
		rows = append(rows, menu.Row(
			inlineButton(menu, b.localizer.Get(lang, "button.skip"), Action{Kind: ActFormSkip, Form: session.ID}),
		))
	}

	cancel := inlineButton(menu, b.localizer.Get(lang, "button.cancel"), Action{Kind: ActFormCancel, Form: session.ID})
	if prompt.Confirmable() {
		confirm := inlineButton(menu, b.localizer.Get(lang, "button.confirm"), Action{Kind: ActFormConfirm, Form: session.ID})
		rows = append(rows, menu.Row(confirm, cancel))
	} else {
		rows = append(rows, menu.Row(cancel))
	}

	menu.Inline(rows...)
	return sb.String(), menu
}

// renderFields prints summary fields one per line.
func (b *Bot) renderFields(lang string, fields []form.Field) string {
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		value := html.EscapeString(field.Value)
		if field.ValueKey != "" {
			value = b.localizer.Get(lang, field.ValueKey)
		}
		lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", b.localizer.Get(lang, field.LabelKey), value))
	}
	return strings.Join(lines, "\n")
}

func choiceAction(sessionID string, in form.Input) Action {
	switch in.Kind {
	case form.InputEmployee:
		return Action{Kind: ActFormEmployee, Form: sessionID, Arg: idArg(in.EmployeeID)}
	case form.InputMethod:
		return Action{Kind: ActFormMethod, Form: sessionID, Arg: string(in.Method)}
	}
	return Action{Kind: ActNoop}
}

// escapeData escapes user-provided values before they are placed into HTML messages.
func escapeData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return data
	}
	escaped := make(map[string]any, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			v = html.EscapeString(s)
		}
		escaped[k] = v
	}
	return escaped
}
