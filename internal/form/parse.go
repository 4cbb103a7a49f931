package form

import (
	"strings"
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

// parseDay parses a strict YYYY-MM-DD calendar date.
func parseDay(raw string) (time.Time, bool) {
	day, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// normalizePhone formats a recognizable number as E.164 and keeps anything else as typed.
func normalizePhone(raw, region string) string {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return ""
	}

	number, err := libphonenumber.Parse(phone, region)
	if err != nil || !libphonenumber.IsValidNumber(number) {
		return phone
	}
	return libphonenumber.Format(number, libphonenumber.E164)
}

func formatMoney(value decimal.Decimal) string {
	return value.StringFixed(models.MoneyPlaces)
}
