package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/payroll"
	"github.com/UnknownOlympus/metrica/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

func TestCallbackHandler_UnknownData(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)

	c := newTextContext("")
	c.callback = &telebot.Callback{Data: "report_period_last_month"}
	require.NoError(t, tb.callbackHandler(c))

	assert.Equal(t, []string{"This form is no longer active."}, c.toasts())
}

func TestMenuNavigation(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)

	c := newCallbackContext(Action{Kind: ActMenu, Arg: string(MenuPayroll)})
	require.NoError(t, tb.callbackHandler(c))

	msg := c.last(t)
	assert.True(t, msg.edit)
	assert.Equal(t, "💰 <b>Payroll</b>", msg.text())
	got := buttons(msg.markup)
	assert.Equal(t, Action{Kind: ActPayroll}.Encode(), got["🧾 Pending payroll"])
	assert.Equal(t, Action{Kind: ActMenu, Arg: string(MenuMain)}.Encode(), got["⬅️ Main menu"])
}

func TestBuildCalendar(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)

	t.Run("month starting on monday", func(t *testing.T) {
		t.Parallel()
		jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		today := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)

		markup := tb.buildCalendar("en", jan, today, map[string]int{"2024-01-15": 2})
		rows := markup.InlineKeyboard

		// header, weekdays, five weeks, back
		require.Len(t, rows, 8)
		assert.Equal(t, "January 2024", rows[0][1].Text)
		assert.Equal(t, Action{Kind: ActCalendar, Arg: "2023-12"}.Encode(), rows[0][0].Data)
		assert.Equal(t, Action{Kind: ActCalendar, Arg: "2024-02"}.Encode(), rows[0][2].Data)
		assert.Equal(t, "Mo", rows[1][0].Text)

		assert.Equal(t, "1", rows[2][0].Text)
		assert.Equal(t, Action{Kind: ActDay, Arg: "2024-01-01"}.Encode(), rows[2][0].Data)
		assert.Equal(t, "15•", rows[4][0].Text)
		assert.Equal(t, "[16]", rows[4][1].Text)

		last := rows[6]
		require.Len(t, last, daysPerWeek)
		assert.Equal(t, "31", last[2].Text)
		assert.Equal(t, Action{Kind: ActNoop}.Encode(), last[3].Data)
	})

	t.Run("month starting on thursday", func(t *testing.T) {
		t.Parallel()
		feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

		markup := tb.buildCalendar("uk", feb, feb.AddDate(1, 0, 0), nil)
		rows := markup.InlineKeyboard

		assert.Equal(t, "Лютий 2024", rows[0][1].Text)
		firstWeek := rows[2]
		for i := range 3 {
			assert.Equal(t, Action{Kind: ActNoop}.Encode(), firstWeek[i].Data)
		}
		assert.Equal(t, "1", firstWeek[3].Text)

		// 29 days in a leap February
		lastWeek := rows[len(rows)-2]
		assert.Equal(t, "29", lastWeek[3].Text)
	})
}

func TestCalendarHandler(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	tb.store.On("CountOrdersByDay", mock.Anything, from, to).Return(map[string]int{"2024-03-08": 1}, nil).Once()

	c := newCallbackContext(Action{Kind: ActCalendar, Arg: "2024-03"})
	require.NoError(t, tb.callbackHandler(c))

	assert.Contains(t, c.last(t).text(), "Calendar")
	assert.Contains(t, buttons(c.last(t).markup), "8•")
	tb.store.AssertExpectations(t)
}

func TestDayHandler(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tb.store.On("ListOrdersByDate", mock.Anything, day).Return([]models.Order{
		{
			ID: 7, ClientName: "<Acme>", EmployeeName: "Alex", Date: day,
			IncomeValue: decimal.NewFromInt(1000), Status: models.OrderPending,
		},
		{
			ID: 8, ClientName: "Beta", EmployeeName: "Olga", Date: day,
			IncomeValue: decimal.NewFromInt(50), Status: models.OrderCompleted,
		},
	}, nil)

	c := newCallbackContext(Action{Kind: ActDay, Arg: "2024-01-15"})
	require.NoError(t, tb.callbackHandler(c))

	msg := c.last(t)
	assert.Contains(t, msg.text(), "<b>#7</b> &lt;Acme&gt; | Alex | 1000.00 | ⏳ pending")
	got := buttons(msg.markup)
	assert.Equal(t, Action{Kind: ActOrderComplete, Arg: "7"}.Encode(), got["✅ #7"])
	assert.Contains(t, got, "🗑 #8")
	assert.NotContains(t, got, "✅ #8", "finished orders cannot be completed again")
	assert.Equal(t, Action{Kind: ActOrderAdd, Arg: "2024-01-15"}.Encode(), got["➕ Add order"])
	assert.Equal(t, Action{Kind: ActCalendar, Arg: "2024-01"}.Encode(), got["⬅️ Back"])
}

func TestOrderActionHandler(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	order := models.Order{ID: 7, Date: day, Status: models.OrderPending}

	tests := []struct {
		name      string
		action    Action
		setup     func(s *mockStore)
		wantToast string
	}{
		{
			name:   "complete",
			action: Action{Kind: ActOrderComplete, Arg: "7"},
			setup: func(s *mockStore) {
				s.On("UpdateOrderStatus", mock.Anything, int64(7), models.OrderCompleted).Return(nil).Once()
			},
		},
		{
			name:   "cancel",
			action: Action{Kind: ActOrderCancel, Arg: "7"},
			setup: func(s *mockStore) {
				s.On("UpdateOrderStatus", mock.Anything, int64(7), models.OrderCancelled).Return(nil).Once()
			},
		},
		{
			name:   "delete",
			action: Action{Kind: ActOrderDelete, Arg: "7"},
			setup: func(s *mockStore) {
				s.On("DeleteOrder", mock.Anything, int64(7)).Return(nil).Once()
			},
		},
		{
			name:   "delete with paid payroll",
			action: Action{Kind: ActOrderDelete, Arg: "7"},
			setup: func(s *mockStore) {
				s.On("DeleteOrder", mock.Anything, int64(7)).Return(repository.ErrOrderLocked).Once()
			},
			wantToast: "This order has paid payroll and cannot be deleted.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tb := newTestBot(t)
			tb.store.On("GetOrder", mock.Anything, int64(7)).Return(order, nil)
			tb.store.On("ListOrdersByDate", mock.Anything, day).Return([]models.Order{order}, nil).Maybe()
			tt.setup(tb.store)

			c := newCallbackContext(tt.action)
			require.NoError(t, tb.callbackHandler(c))

			if tt.wantToast != "" {
				assert.Equal(t, []string{tt.wantToast}, c.toasts())
				assert.Empty(t, c.sent)
			} else {
				assert.Contains(t, c.last(t).text(), "Orders for 2024-01-15", "the day is redrawn")
			}
			tb.store.AssertExpectations(t)
		})
	}

	t.Run("missing order", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.store.On("GetOrder", mock.Anything, int64(9)).Return(models.Order{}, repository.ErrNotFound)

		c := newCallbackContext(Action{Kind: ActOrderDelete, Arg: "9"})
		require.NoError(t, tb.callbackHandler(c))

		assert.Equal(t, []string{"Order not found."}, c.toasts())
		tb.store.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
	})
}

func TestMarkPaidHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantToast string
	}{
		{name: "paid", wantToast: "✅ Entry #11 paid, expense 300.00 recorded."},
		{name: "already paid", err: payroll.ErrAlreadyPaid, wantToast: "This entry is already paid."},
		{name: "not found", err: payroll.ErrPayrollNotFound, wantToast: "Payroll entry not found."},
		{
			name:      "expense reverted",
			err:       errors.Join(payroll.ErrExpenseNotRecorded, errors.New("disk full")),
			wantToast: "⚠️ The expense could not be recorded, the entry stays pending. Try again later.",
		},
		{name: "unexpected", err: errors.New("connection reset"), wantToast: "🚫 Internal error, please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tb := newTestBot(t)

			txn := models.Transaction{ID: 5, Type: models.TransactionExpense, Value: decimal.RequireFromString("300")}
			if tt.err != nil {
				txn = models.Transaction{}
			}
			tb.payer.On("MarkPaid", mock.Anything, int64(11)).Return(txn, tt.err).Once()
			tb.store.On("ListPayroll", mock.Anything, models.PayrollPending, payrollPageSize+1, 0).
				Return([]models.Payroll(nil), nil).Maybe()

			c := newCallbackContext(Action{Kind: ActPayrollPaid, Arg: "11"})
			require.NoError(t, tb.callbackHandler(c))

			require.NotEmpty(t, c.toasts())
			assert.Equal(t, tt.wantToast, c.toasts()[0])
			if tt.err == nil {
				assert.Contains(t, c.last(t).text(), "Pending payroll", "the list is redrawn")
			}
			tb.payer.AssertExpectations(t)
		})
	}
}

func TestPayrollHandler_Pagination(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)

	page := make([]models.Payroll, payrollPageSize+1)
	for i := range page {
		page[i] = models.Payroll{
			ID:               int64(100 + i),
			EmployeeName:     "Alex",
			OrderDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			CalculatedAmount: decimal.NewFromInt(10),
			Status:           models.PayrollPending,
		}
	}
	tb.store.On("ListPayroll", mock.Anything, models.PayrollPending, payrollPageSize+1, payrollPageSize).
		Return(page, nil).Once()

	c := newCallbackContext(Action{Kind: ActPayroll, Arg: "1"})
	require.NoError(t, tb.callbackHandler(c))

	msg := c.last(t)
	got := buttons(msg.markup)
	assert.Contains(t, msg.text(), "<b>#100</b> Alex | 15.01.2024 | 10.00")
	assert.NotContains(t, msg.text(), "#110", "the extra row only signals a next page")
	assert.Equal(t, Action{Kind: ActPayrollPaid, Arg: "100"}.Encode(), got["💸 Pay #100 (10.00)"])
	assert.Equal(t, Action{Kind: ActPayroll, Arg: "0"}.Encode(), got["«"])
	assert.Equal(t, Action{Kind: ActPayroll, Arg: "2"}.Encode(), got["»"])
}

func TestPayrollExportHandler(t *testing.T) {
	t.Parallel()

	t.Run("spreadsheet", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		entry := models.Payroll{
			ID: 1, EmployeeID: 3, EmployeeName: "Alex", OrderID: 7,
			OrderDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			OrderValue:       decimal.NewFromInt(1000),
			CalculatedAmount: decimal.NewFromInt(300),
			Status:           models.PayrollPending,
		}
		tb.store.On("ListPayroll", mock.Anything, models.PayrollPending, exportLimit, 0).Return([]models.Payroll{entry}, nil)
		tb.store.On("ListPayroll", mock.Anything, models.PayrollPaid, exportLimit, 0).Return([]models.Payroll(nil), nil)

		c := newCallbackContext(Action{Kind: ActPayrollExport})
		require.NoError(t, tb.callbackHandler(c))

		doc, ok := c.last(t).what.(*telebot.Document)
		require.True(t, ok, "a document is sent")
		assert.Equal(t, "payroll_2024-01-16.xlsx", doc.FileName)
	})

	t.Run("nothing to export", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.store.On("ListPayroll", mock.Anything, mock.Anything, exportLimit, 0).Return([]models.Payroll(nil), nil)

		c := newCallbackContext(Action{Kind: ActPayrollExport})
		require.NoError(t, tb.callbackHandler(c))

		assert.Equal(t, "Nothing here yet.", c.last(t).text())
	})
}

func TestFinanceHandler(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)
	tb.store.On("Totals", mock.Anything).Return(models.Totals{
		Income:  decimal.RequireFromString("1500.5"),
		Expense: decimal.RequireFromString("300"),
	}, nil)
	tb.store.On("ListTransactions", mock.Anything, models.TransactionIncome, recentTransactions, 0).
		Return([]models.Transaction{{
			Value: decimal.NewFromInt(1000), Description: "order #7",
			CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		}}, nil)
	tb.store.On("ListTransactions", mock.Anything, models.TransactionExpense, recentTransactions, 0).
		Return([]models.Transaction(nil), nil)

	c := newCallbackContext(Action{Kind: ActFinance})
	require.NoError(t, tb.callbackHandler(c))

	text := c.last(t).text()
	assert.Contains(t, text, "Income: 1500.50\nExpense: 300.00\nNet profit: <b>1200.50</b>")
	assert.Contains(t, text, "15.01.2024 | 1000.00 | order #7")
	assert.NotContains(t, text, "Latest expenses")
}

func TestFinanceHandler_PayrollExpenseLocalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lang string
		want string
	}{
		{name: "english", lang: "en", want: "16.01.2024 | 150.00 | Payroll: Alex, #7, 2024-01-15"},
		{name: "ukrainian", lang: "uk", want: "16.01.2024 | 150.00 | Зарплата: Alex, #7, 2024-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tb := newTestBot(t)
			expense := payroll.ExpenseFor(models.Payroll{
				OrderID: 7, EmployeeName: "Alex", CalculatedAmount: decimal.NewFromInt(150),
				OrderDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			})
			expense.CreatedAt = time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
			manual := models.Transaction{
				Value: decimal.NewFromInt(20), Description: "fuel", Source: models.SourceManual,
				CreatedAt: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			}
			tb.store.On("Totals", mock.Anything).Return(models.Totals{}, nil)
			tb.store.On("ListTransactions", mock.Anything, models.TransactionIncome, recentTransactions, 0).
				Return([]models.Transaction(nil), nil)
			tb.store.On("ListTransactions", mock.Anything, models.TransactionExpense, recentTransactions, 0).
				Return([]models.Transaction{expense, manual}, nil)

			c := newCallbackContext(Action{Kind: ActFinance})
			c.sender.LanguageCode = tt.lang
			require.NoError(t, tb.callbackHandler(c))

			text := c.last(t).text()
			assert.Contains(t, text, tt.want)
			assert.Contains(t, text, "16.01.2024 | 20.00 | fuel")
		})
	}
}

func TestTransactionCommand(t *testing.T) {
	t.Parallel()

	t.Run("records manual income", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)
		tb.store.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(txn models.Transaction) bool {
			return txn.Type == models.TransactionIncome &&
				txn.Source == models.SourceManual &&
				txn.Value.Equal(decimal.RequireFromString("1500.50")) &&
				txn.Description == "rent refund"
		})).Return(int64(3), nil).Once()

		c := newTextContext("/income 1500,50 rent refund", "1500,50", "rent", "refund")
		require.NoError(t, tb.transactionCommandHandler(models.TransactionIncome)(c))

		assert.Equal(t, "✅ Income 1500.50 recorded.", c.last(t).text())
		tb.store.AssertExpectations(t)
	})

	t.Run("bad amount", func(t *testing.T) {
		t.Parallel()
		tb := newTestBot(t)

		c := newTextContext("/expense lots", "lots")
		require.NoError(t, tb.transactionCommandHandler(models.TransactionExpense)(c))

		assert.Contains(t, c.last(t).text(), "Usage: /expense")
		tb.store.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})
}

func TestParseTransaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		ok    bool
		value string
		desc  string
	}{
		{name: "amount only", args: []string{"200"}, ok: true, value: "200", desc: ""},
		{name: "decimal comma", args: []string{"12,5", "fuel"}, ok: true, value: "12.5", desc: "fuel"},
		{name: "cents", args: []string{"0.01"}, ok: true, value: "0.01"},
		{name: "below a cent", args: []string{"0.001"}},
		{name: "zero cents", args: []string{"0.00"}},
		{name: "exponent", args: []string{"1e5"}},
		{name: "negative exponent", args: []string{"1e-9"}},
		{name: "huge exponent", args: []string{"1e2000000"}},
		{name: "too long", args: []string{strings.Repeat("9", models.MaxIntegerDigits+1)}},
		{name: "no args", args: nil},
		{name: "zero", args: []string{"0"}},
		{name: "negative", args: []string{"-5"}},
		{name: "text", args: []string{"five"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			txn, ok := parseTransaction(models.TransactionExpense, tt.args)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.True(t, decimal.RequireFromString(tt.value).Equal(txn.Value), "got %s", txn.Value)
			assert.Equal(t, tt.desc, txn.Description)
			assert.Equal(t, models.SourceManual, txn.Source)
		})
	}
}

func TestEmployeesHandler(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)
	tb.store.On("ListEmployees", mock.Anything, models.EmployeeActive).Return([]models.Employee{alex}, nil)
	tb.store.On("CountEmployees", mock.Anything, models.EmployeeInactive).Return(2, nil)
	tb.store.On("UpdateEmployeeStatus", mock.Anything, alex.ID, models.EmployeeInactive).Return(nil).Once()

	c := newCallbackContext(Action{Kind: ActEmployees})
	require.NoError(t, tb.callbackHandler(c))

	msg := c.last(t)
	assert.Contains(t, msg.text(), "Active employees: 1</b> (inactive: 2)")
	assert.Contains(t, msg.text(), "<b>Alex</b> | Percent of income | 30%")
	assert.Equal(t, Action{Kind: ActEmployeeOff, Arg: "3"}.Encode(), buttons(msg.markup)["🚫 Deactivate Alex"])

	c = newCallbackContext(Action{Kind: ActEmployeeOff, Arg: "3"})
	require.NoError(t, tb.callbackHandler(c))
	tb.store.AssertExpectations(t)
}

func TestStartHandler(t *testing.T) {
	t.Parallel()
	tb := newTestBot(t)

	c := newTextContext("/start")
	c.sender.FirstName = "<Olga>"
	c.sender.LanguageCode = "uk-UA"
	require.NoError(t, tb.startHandler(c))

	msg := c.last(t)
	assert.Contains(t, msg.text(), "Вітаю, &lt;Olga&gt;!")
	assert.Contains(t, msg.text(), "Головне меню")
	assert.Equal(t, Action{Kind: ActCalendar}.Encode(), buttons(msg.markup)["📅 Календар"])
}
