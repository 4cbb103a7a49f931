package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/repository"
	"gopkg.in/telebot.v4"
)

// employeesHandler lists active employees with a button to deactivate each.
func (b *Bot) employeesHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("employees").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	started := time.Now()
	employees, err := b.store.ListEmployees(timeoutCtx, models.EmployeeActive)
	b.observe("list_employees", started)
	if err != nil {
		b.log.Error("Failed to list employees", "error", err)
		return b.sendInternalError(ctx)
	}

	inactive, err := b.store.CountEmployees(timeoutCtx, models.EmployeeInactive)
	if err != nil {
		b.log.Error("Failed to count inactive employees", "error", err)
		return b.sendInternalError(ctx)
	}

	text, markup := b.renderEmployees(b.lang(ctx), employees, inactive)
	return b.reply(ctx, text, markup)
}

func (b *Bot) renderEmployees(lang string, employees []models.Employee, inactive int) (string, *telebot.ReplyMarkup) {
	var sb strings.Builder
	sb.WriteString(b.localizer.GetWithData(lang, "employees.list", map[string]any{
		"active":   len(employees),
		"inactive": inactive,
	}))
	sb.WriteString("\n\n")

	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(employees)+2)

	for _, employee := range employees {
		sb.WriteString(fmt.Sprintf("<b>%s</b> | %s | %s\n",
			html.EscapeString(employee.Name),
			b.localizer.Get(lang, "payment."+string(employee.PaymentMethod)),
			paymentValue(employee),
		))
		if employee.Phone != "" {
			sb.WriteString("   " + html.EscapeString(employee.Phone) + "\n")
		}
		label := b.localizer.GetWithData(lang, "button.deactivate", map[string]any{"name": employee.Name})
		rows = append(rows, menu.Row(inlineButton(menu, label, Action{Kind: ActEmployeeOff, Arg: idArg(employee.ID)})))
	}

	rows = append(rows,
		menu.Row(inlineButton(menu, b.localizer.Get(lang, "menu.employee_add"), Action{Kind: ActEmployeeAdd})),
		menu.Row(inlineButton(menu, b.localizer.Get(lang, "button.back"), Action{Kind: ActMenu, Arg: string(MenuEmployees)})),
	)
	menu.Inline(rows...)

	return strings.TrimRight(sb.String(), "\n"), menu
}

// deactivateEmployeeHandler removes an employee from order selection. Past orders and payroll stay.
func (b *Bot) deactivateEmployeeHandler(ctx telebot.Context, action Action) error {
	id, err := action.ID()
	if err != nil {
		return b.notify(ctx, "form.expired")
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	err = b.store.UpdateEmployeeStatus(timeoutCtx, id, models.EmployeeInactive)
	if errors.Is(err, repository.ErrNotFound) {
		return b.notify(ctx, "employee.not_found")
	}
	if err != nil {
		b.log.Error("Failed to deactivate employee", "employee", id, "error", err)
		return b.sendInternalError(ctx)
	}

	b.log.Info("Employee deactivated", "employee", id)
	return b.employeesHandler(ctx)
}

func paymentValue(employee models.Employee) string {
	if !employee.PaymentValue.Valid {
		return "-"
	}
	if employee.PaymentMethod == models.PaymentPercent {
		return employee.PaymentValue.Decimal.String() + "%"
	}
	return employee.PaymentValue.Decimal.StringFixed(moneyPlaces)
}
