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
	"github.com/UnknownOlympus/metrica/internal/payroll"
	"github.com/UnknownOlympus/metrica/internal/report"
	"gopkg.in/telebot.v4"
)

const (
	payrollPageSize = 10
	// exportLimit caps each status in the spreadsheet export.
	exportLimit      = 10000
	payrollDayLayout = "02.01.2006"
)

// payrollHandler shows a page of pending payroll entries with a mark-paid button for each.
func (b *Bot) payrollHandler(ctx telebot.Context, arg string) error {
	b.metrics.CommandReceived.WithLabelValues("payroll").Inc()

	page, err := strconv.Atoi(arg)
	if err != nil || page < 0 {
		page = 0
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	started := time.Now()
	entries, err := b.store.ListPayroll(timeoutCtx, models.PayrollPending, payrollPageSize+1, page*payrollPageSize)
	b.observe("list_payroll", started)
	if err != nil {
		b.log.Error("Failed to list pending payroll", "page", page, "error", err)
		return b.sendInternalError(ctx)
	}

	hasNext := len(entries) > payrollPageSize
	if hasNext {
		entries = entries[:payrollPageSize]
	}

	text, markup := b.renderPayrollPage(b.lang(ctx), entries, page, hasNext)
	return b.reply(ctx, text, markup)
}

func (b *Bot) renderPayrollPage(
	lang string, entries []models.Payroll, page int, hasNext bool,
) (string, *telebot.ReplyMarkup) {
	var sb strings.Builder
	sb.WriteString(b.localizer.Get(lang, "payroll.pending_title"))
	sb.WriteString("\n\n")
	if len(entries) == 0 {
		sb.WriteString(b.localizer.Get(lang, "payroll.empty"))
	}

	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(entries)+2)

	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("<b>#%d</b> %s | %s | %s\n",
			entry.ID,
			html.EscapeString(entry.EmployeeName),
			entry.OrderDate.Format(payrollDayLayout),
			entry.CalculatedAmount.StringFixed(moneyPlaces),
		))
		label := b.localizer.GetWithData(lang, "button.mark_paid", map[string]any{
			"id":     entry.ID,
			"amount": entry.CalculatedAmount.StringFixed(moneyPlaces),
		})
		rows = append(rows, menu.Row(inlineButton(menu, label, Action{Kind: ActPayrollPaid, Arg: idArg(entry.ID)})))
	}

	var nav []telebot.Btn
	if page > 0 {
		nav = append(nav, inlineButton(menu, "«", Action{Kind: ActPayroll, Arg: strconv.Itoa(page - 1)}))
	}
	if hasNext {
		nav = append(nav, inlineButton(menu, "»", Action{Kind: ActPayroll, Arg: strconv.Itoa(page + 1)}))
	}
	if len(nav) > 0 {
		rows = append(rows, menu.Row(nav...))
	}

	rows = append(rows, menu.Row(
		inlineButton(menu, b.localizer.Get(lang, "button.back"), Action{Kind: ActMenu, Arg: string(MenuPayroll)}),
	))
	menu.Inline(rows...)

	return strings.TrimRight(sb.String(), "\n"), menu
}

// markPaidHandler pays one payroll entry and redraws the pending list.
func (b *Bot) markPaidHandler(ctx telebot.Context, action Action) error {
	b.metrics.CommandReceived.WithLabelValues("payroll_mark_paid").Inc()

	id, err := action.ID()
	if err != nil {
		return b.notify(ctx, "form.expired")
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	txn, err := b.payer.MarkPaid(timeoutCtx, id)
	switch {
	case errors.Is(err, payroll.ErrAlreadyPaid):
		b.metrics.PayrollPaid.WithLabelValues("already_paid").Inc()
		return b.notify(ctx, "payroll.already_paid")
	case errors.Is(err, payroll.ErrPayrollNotFound):
		b.metrics.PayrollPaid.WithLabelValues("not_found").Inc()
		return b.notify(ctx, "payroll.not_found")
	case errors.Is(err, payroll.ErrExpenseNotRecorded):
		b.metrics.PayrollPaid.WithLabelValues("compensated").Inc()
		b.log.Error("Payroll payment reverted", "payroll", id, "error", err)
		return b.notify(ctx, "payroll.expense_failed")
	case err != nil:
		b.metrics.PayrollPaid.WithLabelValues("error").Inc()
		b.log.Error("Failed to mark payroll paid", "payroll", id, "error", err)
		return b.sendInternalError(ctx)
	}

	b.metrics.PayrollPaid.WithLabelValues("paid").Inc()
	b.log.Info("Payroll paid", "payroll", id, "expense", txn.ID, "amount", txn.Value.String())

	if ctx.Callback() != nil {
		_ = ctx.Respond(&telebot.CallbackResponse{Text: b.tWithData(ctx, "payroll.paid", map[string]any{
			"id":     id,
			"amount": txn.Value.StringFixed(moneyPlaces),
		})})
	}
	return b.payrollHandler(ctx, "0")
}

// payrollSummaryHandler shows the per-employee payroll totals.
func (b *Bot) payrollSummaryHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("payroll_summary").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	started := time.Now()
	summaries, err := b.store.PayrollSummary(timeoutCtx)
	b.observe("payroll_summary", started)
	if err != nil {
		b.log.Error("Failed to get payroll summary", "error", err)
		return b.sendInternalError(ctx)
	}

	lang := b.lang(ctx)
	var sb strings.Builder
	sb.WriteString(b.localizer.Get(lang, "payroll.summary_title"))
	sb.WriteString("\n\n")
	if len(summaries) == 0 {
		sb.WriteString(b.localizer.Get(lang, "payroll.empty"))
	}
	for _, s := range summaries {
		sb.WriteString(b.localizer.GetWithData(lang, "payroll.summary_line", map[string]any{
			"name":    html.EscapeString(s.EmployeeName),
			"entries": s.Entries,
			"total":   s.Total.StringFixed(moneyPlaces),
			"pending": s.PendingTotal.StringFixed(moneyPlaces),
			"from":    s.FirstOrderDay.Format(payrollDayLayout),
			"to":      s.LastOrderDay.Format(payrollDayLayout),
		}))
		sb.WriteString("\n")
	}

	menu := &telebot.ReplyMarkup{}
	menu.Inline(menu.Row(
		inlineButton(menu, b.localizer.Get(lang, "button.back"), Action{Kind: ActMenu, Arg: string(MenuPayroll)}),
	))
	return b.reply(ctx, strings.TrimRight(sb.String(), "\n"), menu)
}

// payrollExportHandler sends all pending and paid entries as a spreadsheet.
func (b *Bot) payrollExportHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("payroll_export").Inc()
	if ctx.Callback() != nil {
		_ = ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, "payroll.export_started")})
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var entries []models.Payroll
	for _, status := range []models.PayrollStatus{models.PayrollPending, models.PayrollPaid} {
		page, err := b.store.ListPayroll(timeoutCtx, status, exportLimit, 0)
		if err != nil {
			b.log.Error("Failed to list payroll for export", "status", status, "error", err)
			return b.sendInternalError(ctx)
		}
		entries = append(entries, page...)
	}

	started := time.Now()
	buf, err := report.GeneratePayrollReport(entries)
	b.metrics.ReportGeneration.WithLabelValues("payroll").Observe(time.Since(started).Seconds())
	if errors.Is(err, report.ErrNoPayroll) {
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return ctx.Send(b.t(ctx, "payroll.empty"))
	}
	if err != nil {
		b.log.Error("Failed to generate payroll report", "error", err)
		return b.sendInternalError(ctx)
	}

	doc := &telebot.Document{
		File:     telebot.FromReader(buf),
		FileName: fmt.Sprintf("payroll_%s.xlsx", b.now().Format(models.DateLayout)),
		Caption:  b.t(ctx, "payroll.export_caption"),
	}

	b.metrics.SentMessages.WithLabelValues("document").Inc()
	return ctx.Send(doc)
}
