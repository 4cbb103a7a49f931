package bot

import (
	"html"
	"strconv"
	"strings"

	"gopkg.in/telebot.v4"
)

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("start").Inc()
	b.log.Info("User started the bot", "id", ctx.Sender().ID, "username", ctx.Sender().Username)

	title, menu := b.menus.Build(b.lang(ctx), MenuMain)
	return b.reply(ctx, b.tWithData(ctx, "start.welcome", map[string]any{
		"name": html.EscapeString(ctx.Sender().FirstName),
	})+"\n\n"+title, menu)
}

// helpHandler process command /help.
func (b *Bot) helpHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("help").Inc()
	return b.reply(ctx, b.t(ctx, "help.text"), nil)
}

// aboutHandler process command /about.
func (b *Bot) aboutHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("about").Inc()
	return b.reply(ctx, b.t(ctx, "about.text"), nil)
}

// getMyIDHandler replies with the sender's Telegram id, which goes on the allow-list.
func (b *Bot) getMyIDHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("get_my_id").Inc()
	return b.reply(ctx, b.tWithData(ctx, "get_my_id.text", map[string]any{
		"id": strconv.FormatInt(ctx.Sender().ID, 10),
	}), nil)
}

// callbackHandler dispatches every inline button press by its encoded action.
func (b *Bot) callbackHandler(ctx telebot.Context) error {
	data := strings.TrimPrefix(ctx.Callback().Data, "\f")

	action, err := ParseAction(data)
	if err != nil {
		b.log.Warn("Unknown callback", "data", data, "error", err)
		return b.notify(ctx, "form.expired")
	}

	switch action.Kind {
	case ActNoop:
		return ctx.Respond()
	case ActMenu:
		return b.menuHandler(ctx, MenuType(action.Arg))
	case ActCalendar:
		return b.calendarHandler(ctx, action.Arg)
	case ActDay:
		return b.dayHandler(ctx, action.Arg)
	case ActOrderAdd:
		return b.startOrderForm(ctx, action.Arg)
	case ActOrderComplete, ActOrderCancel, ActOrderDelete:
		return b.orderActionHandler(ctx, action)
	case ActEmployees:
		return b.employeesHandler(ctx)
	case ActEmployeeAdd:
		return b.startEmployeeForm(ctx)
	case ActEmployeeOff:
		return b.deactivateEmployeeHandler(ctx, action)
	case ActPayroll:
		return b.payrollHandler(ctx, action.Arg)
	case ActPayrollPaid:
		return b.markPaidHandler(ctx, action)
	case ActPayrollSum:
		return b.payrollSummaryHandler(ctx)
	case ActPayrollExport:
		return b.payrollExportHandler(ctx)
	case ActFinance:
		return b.financeHandler(ctx)
	case ActFormSkip, ActFormCancel, ActFormConfirm, ActFormEmployee, ActFormMethod:
		return b.formCallbackHandler(ctx, action)
	}

	return b.notify(ctx, "form.expired")
}

// menuHandler redraws the message as the requested menu.
func (b *Bot) menuHandler(ctx telebot.Context, menuType MenuType) error {
	title, menu := b.menus.Build(b.lang(ctx), menuType)
	return b.reply(ctx, title, menu)
}
