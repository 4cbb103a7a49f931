package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
	"gopkg.in/telebot.v4"
)

// recentTransactions is how many of the latest incomes and expenses the finance view lists.
const recentTransactions = 5

// financeHandler shows income, expense and net profit with the latest transactions.
func (b *Bot) financeHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("finance").Inc()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	started := time.Now()
	totals, err := b.store.Totals(timeoutCtx)
	b.observe("finance_totals", started)
	if err != nil {
		b.log.Error("Failed to get finance totals", "error", err)
		return b.sendInternalError(ctx)
	}

	lang := b.lang(ctx)
	var sb strings.Builder
	sb.WriteString(b.localizer.GetWithData(lang, "finance.totals", map[string]any{
		"income":  totals.Income.StringFixed(moneyPlaces),
		"expense": totals.Expense.StringFixed(moneyPlaces),
		"net":     totals.NetProfit().StringFixed(moneyPlaces),
	}))

	for _, kind := range []models.TransactionType{models.TransactionIncome, models.TransactionExpense} {
		txns, lerr := b.store.ListTransactions(timeoutCtx, kind, recentTransactions, 0)
		if lerr != nil {
			b.log.Error("Failed to list transactions", "type", kind, "error", lerr)
			return b.sendInternalError(ctx)
		}
		if len(txns) == 0 {
			continue
		}
		sb.WriteString("\n\n" + b.localizer.Get(lang, "finance.recent."+string(kind)))
		for _, txn := range txns {
			sb.WriteString(fmt.Sprintf("\n%s | %s | %s",
				txn.CreatedAt.Format(payrollDayLayout),
				txn.Value.StringFixed(moneyPlaces),
				b.describeTransaction(lang, txn),
			))
		}
	}
	sb.WriteString("\n\n" + b.localizer.Get(lang, "finance.hint"))

	menu := &telebot.ReplyMarkup{}
	menu.Inline(menu.Row(
		inlineButton(menu, b.localizer.Get(lang, "menu.back"), Action{Kind: ActMenu, Arg: string(MenuMain)}),
	))
	return b.reply(ctx, sb.String(), menu)
}

func (b *Bot) describeTransaction(lang string, txn models.Transaction) string {
	description := html.EscapeString(orDash(txn.Description))
	if txn.Source == models.SourcePayroll {
		return b.localizer.GetWithData(lang, "finance.payroll_expense", map[string]any{"description": description})
	}
	return description
}

// transactionCommandHandler records a manual income or expense: /income <amount> [description].
func (b *Bot) transactionCommandHandler(kind models.TransactionType) telebot.HandlerFunc {
	return func(ctx telebot.Context) error {
		b.metrics.CommandReceived.WithLabelValues(string(kind)).Inc()

		txn, ok := parseTransaction(kind, ctx.Args())
		if !ok {
			return b.reply(ctx, b.t(ctx, "finance.usage."+string(kind)), nil)
		}

		if err := models.Validate(txn); err != nil {
			return b.reply(ctx, b.t(ctx, "finance.usage."+string(kind)), nil)
		}

		timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		id, err := b.store.CreateTransaction(timeoutCtx, txn)
		if err != nil {
			b.log.Error("Failed to record transaction", "type", kind, "error", err)
			return b.sendInternalError(ctx)
		}

		b.log.Info("Transaction recorded", "id", id, "type", kind, "value", txn.Value.String())
		return b.reply(ctx, b.tWithData(ctx, "finance.recorded."+string(kind), map[string]any{
			"amount": txn.Value.StringFixed(moneyPlaces),
		}), nil)
	}
}

// parseTransaction reads "<amount> [description...]". The amount is a plain decimal with at
// most two places and accepts a decimal comma.
func parseTransaction(kind models.TransactionType, args []string) (models.Transaction, bool) {
	if len(args) == 0 {
		return models.Transaction{}, false
	}

	value, ok := models.ParseAmount(args[0], models.MoneyPlaces)
	if !ok || !value.IsPositive() {
		return models.Transaction{}, false
	}

	return models.Transaction{
		Type:        kind,
		Value:       value,
		Description: strings.TrimSpace(strings.Join(args[1:], " ")),
		Source:      models.SourceManual,
	}, true
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
