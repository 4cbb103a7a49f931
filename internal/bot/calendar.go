package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/repository"
	"gopkg.in/telebot.v4"
)

const (
	monthLayout  = "2006-01"
	daysPerWeek  = 7
	orderMarker  = "•"
	moneyPlaces  = models.MoneyPlaces
	noopCellText = " "
)

// calendarHandler shows a month grid. Days with orders are marked.
func (b *Bot) calendarHandler(ctx telebot.Context, arg string) error {
	b.metrics.CommandReceived.WithLabelValues("calendar").Inc()

	month := firstOfMonth(b.now())
	if arg != "" {
		parsed, err := time.Parse(monthLayout, arg)
		if err != nil {
			return b.notify(ctx, "form.expired")
		}
		month = parsed
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	started := time.Now()
	counts, err := b.store.CountOrdersByDay(timeoutCtx, month, month.AddDate(0, 1, -1))
	b.observe("count_orders_by_day", started)
	if err != nil {
		b.log.Error("Failed to count orders by day", "month", month.Format(monthLayout), "error", err)
		return b.sendInternalError(ctx)
	}

	lang := b.lang(ctx)
	text := b.localizer.Get(lang, "calendar.title")
	return b.reply(ctx, text, b.buildCalendar(lang, month, b.now(), counts))
}

// buildCalendar lays out a Monday-first month grid with month navigation.
func (b *Bot) buildCalendar(lang string, month, today time.Time, counts map[string]int) *telebot.ReplyMarkup {
	month = firstOfMonth(month)
	menu := &telebot.ReplyMarkup{}
	noop := Action{Kind: ActNoop}

	prev := month.AddDate(0, -1, 0).Format(monthLayout)
	next := month.AddDate(0, 1, 0).Format(monthLayout)
	title := fmt.Sprintf("%s %d", b.localizer.Get(lang, "calendar.month."+strconv.Itoa(int(month.Month()))), month.Year())

	rows := []telebot.Row{
		menu.Row(
			inlineButton(menu, "«", Action{Kind: ActCalendar, Arg: prev}),
			inlineButton(menu, title, noop),
			inlineButton(menu, "»", Action{Kind: ActCalendar, Arg: next}),
		),
	}

	weekdays := make([]telebot.Btn, 0, daysPerWeek)
	for i := 1; i <= daysPerWeek; i++ {
		weekdays = append(weekdays, inlineButton(menu, b.localizer.Get(lang, "calendar.weekday."+strconv.Itoa(i)), noop))
	}
	rows = append(rows, menu.Row(weekdays...))

	// Monday is column 0.
	offset := (int(month.Weekday()) + daysPerWeek - 1) % daysPerWeek
	week := make([]telebot.Btn, 0, daysPerWeek)
	for range offset {
		week = append(week, inlineButton(menu, noopCellText, noop))
	}

	todayKey := today.Format(models.DateLayout)
	for day := month; day.Month() == month.Month(); day = day.AddDate(0, 0, 1) {
		key := day.Format(models.DateLayout)
		label := strconv.Itoa(day.Day())
		if counts[key] > 0 {
			label += orderMarker
		}
		if key == todayKey {
			label = "[" + label + "]"
		}
		week = append(week, inlineButton(menu, label, Action{Kind: ActDay, Arg: key}))

		if len(week) == daysPerWeek {
			rows = append(rows, menu.Row(week...))
			week = make([]telebot.Btn, 0, daysPerWeek)
		}
	}
	if len(week) > 0 {
		for len(week) < daysPerWeek {
			week = append(week, inlineButton(menu, noopCellText, noop))
		}
		rows = append(rows, menu.Row(week...))
	}

	rows = append(rows, menu.Row(
		inlineButton(menu, b.localizer.Get(lang, "menu.back"), Action{Kind: ActMenu, Arg: string(MenuMain)}),
	))
	menu.Inline(rows...)
	return menu
}

// dayHandler lists the orders of a day with buttons to manage them.
func (b *Bot) dayHandler(ctx telebot.Context, date string) error {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return b.notify(ctx, "form.expired")
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	started := time.Now()
	orders, err := b.store.ListOrdersByDate(timeoutCtx, day)
	b.observe("list_orders", started)
	if err != nil {
		b.log.Error("Failed to list orders", "date", date, "error", err)
		return b.sendInternalError(ctx)
	}

	text, markup := b.renderDay(b.lang(ctx), day, orders)
	return b.reply(ctx, text, markup)
}

func (b *Bot) renderDay(lang string, day time.Time, orders []models.Order) (string, *telebot.ReplyMarkup) {
	date := day.Format(models.DateLayout)

	var sb strings.Builder
	sb.WriteString(b.localizer.GetWithData(lang, "day.title", map[string]any{"date": date}))
	sb.WriteString("\n\n")

	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(orders)+2)

	if len(orders) == 0 {
		sb.WriteString(b.localizer.Get(lang, "day.empty"))
	}

	for _, order := range orders {
		sb.WriteString(fmt.Sprintf("<b>#%d</b> %s | %s | %s | %s\n",
			order.ID,
			html.EscapeString(order.ClientName),
			html.EscapeString(order.EmployeeName),
			order.IncomeValue.StringFixed(moneyPlaces),
			b.localizer.Get(lang, "order.status."+string(order.Status)),
		))
		if order.Description != "" {
			sb.WriteString("   " + html.EscapeString(order.Description) + "\n")
		}

		id := idArg(order.ID)
		buttons := make([]telebot.Btn, 0, 3)
		if order.Status == models.OrderPending {
			buttons = append(buttons,
				inlineButton(menu, "✅ #"+id, Action{Kind: ActOrderComplete, Arg: id}),
				inlineButton(menu, "✖️ #"+id, Action{Kind: ActOrderCancel, Arg: id}),
			)
		}
		buttons = append(buttons, inlineButton(menu, "🗑 #"+id, Action{Kind: ActOrderDelete, Arg: id}))
		rows = append(rows, menu.Row(buttons...))
	}

	rows = append(rows,
		menu.Row(inlineButton(menu, b.localizer.Get(lang, "button.add_order"), Action{Kind: ActOrderAdd, Arg: date})),
		menu.Row(inlineButton(menu, b.localizer.Get(lang, "button.back"),
			Action{Kind: ActCalendar, Arg: day.Format(monthLayout)})),
	)
	menu.Inline(rows...)

	return strings.TrimRight(sb.String(), "\n"), menu
}

// orderActionHandler completes, cancels or deletes an order and redraws its day.
func (b *Bot) orderActionHandler(ctx telebot.Context, action Action) error {
	id, err := action.ID()
	if err != nil {
		return b.notify(ctx, "form.expired")
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	order, err := b.store.GetOrder(timeoutCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return b.notify(ctx, "order.not_found")
		}
		b.log.Error("Failed to get order", "order", id, "error", err)
		return b.sendInternalError(ctx)
	}

	switch action.Kind {
	case ActOrderComplete:
		err = b.store.UpdateOrderStatus(timeoutCtx, id, models.OrderCompleted)
	case ActOrderCancel:
		err = b.store.UpdateOrderStatus(timeoutCtx, id, models.OrderCancelled)
	case ActOrderDelete:
		err = b.store.DeleteOrder(timeoutCtx, id)
	}

	switch {
	case errors.Is(err, repository.ErrOrderLocked):
		return b.notify(ctx, "order.locked")
	case errors.Is(err, repository.ErrNotFound):
		return b.notify(ctx, "order.not_found")
	case err != nil:
		b.log.Error("Failed to update order", "order", id, "action", action.Kind, "error", err)
		return b.sendInternalError(ctx)
	}

	b.log.Info("Order updated", "order", id, "action", action.Kind)
	return b.dayHandler(ctx, order.Date.Format(models.DateLayout))
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
