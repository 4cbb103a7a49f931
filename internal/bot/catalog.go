package bot

import (
	"fmt"
	"strconv"

	"github.com/UnknownOlympus/metrica/internal/form"
	"github.com/UnknownOlympus/metrica/internal/i18n"
	"github.com/UnknownOlympus/metrica/internal/models"
)

// composedKeys lists the i18n keys that handlers build from a prefix and a value, together with
// the keys of the form engine. Literal keys are covered by the catalog tests.
func composedKeys(forms *form.Engine) []string {
	keys := []string{noticeUnknownCommand, noticeSaveFailed, "finance.payroll_expense"}
	if forms != nil {
		keys = append(keys, forms.Keys()...)
	}

	for _, kind := range []form.Kind{form.KindOrder, form.KindEmployee} {
		keys = append(keys, "form.saved."+string(kind))
	}
	for _, kind := range []models.TransactionType{models.TransactionIncome, models.TransactionExpense} {
		keys = append(keys, "finance.recent."+string(kind), "finance.usage."+string(kind),
			"finance.recorded."+string(kind))
	}
	for _, status := range []models.OrderStatus{models.OrderPending, models.OrderCompleted, models.OrderCancelled} {
		keys = append(keys, "order.status."+string(status))
	}
	for month := 1; month <= 12; month++ {
		keys = append(keys, "calendar.month."+strconv.Itoa(month))
	}
	for day := 1; day <= daysPerWeek; day++ {
		keys = append(keys, "calendar.weekday."+strconv.Itoa(day))
	}

	return keys
}

// checkCatalogs fails when a language lacks a key the bot can render.
func checkCatalogs(localizer *i18n.Localizer, forms *form.Engine) error {
	if missing := localizer.Missing(composedKeys(forms)...); missing != nil {
		return fmt.Errorf("incomplete locale catalogs: %v", missing)
	}
	return nil
}
