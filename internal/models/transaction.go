package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags a transaction as money coming in or going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction sources.
const (
	SourcePayroll = "payroll" // expense recorded when a payroll entry is paid
	SourceManual  = "manual"  // entered with /income or /expense
)

// Transaction is an income or expense record. Value is always a positive magnitude.
type Transaction struct {
	ID          int64           `json:"id"`
	Type        TransactionType `json:"type"        validate:"oneof=income expense"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
	Source      string          `json:"source"      validate:"required"`
	OrderID     *int64          `json:"order_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Totals holds the aggregated finances.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// NetProfit returns income minus expense.
func (t Totals) NetProfit() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}
