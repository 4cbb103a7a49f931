package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/metrica/internal/form"
	"github.com/UnknownOlympus/metrica/internal/metrics"
	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateOrder(ctx context.Context, order models.Order, entry *models.Payroll) (int64, int64, error) {
	args := m.Called(ctx, order, entry)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2) //nolint:errcheck // test mock
}

func (m *mockStore) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Order), args.Error(1) //nolint:errcheck // test mock
}

func (m *mockStore) ListOrdersByDate(ctx context.Context, day time.Time) ([]models.Order, error) {
	args := m.Called(ctx, day)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *mockStore) CountOrdersByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	args := m.Called(ctx, from, to)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

func (m *mockStore) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockStore) DeleteOrder(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) CreateEmployee(ctx context.Context, employee models.Employee) (int64, error) {
	args := m.Called(ctx, employee)
	return args.Get(0).(int64), args.Error(1) //nolint:errcheck // test mock
}

func (m *mockStore) GetEmployee(ctx context.Context, id int64) (models.Employee, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Employee), args.Error(1) //nolint:errcheck // test mock
}

func (m *mockStore) ListEmployees(ctx context.Context, status models.EmployeeStatus) ([]models.Employee, error) {
	args := m.Called(ctx, status)
	employees, _ := args.Get(0).([]models.Employee)
	return employees, args.Error(1)
}

func (m *mockStore) CountEmployees(ctx context.Context, status models.EmployeeStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) UpdateEmployeeStatus(ctx context.Context, id int64, status models.EmployeeStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockStore) CreatePayroll(ctx context.Context, entry models.Payroll) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1) //nolint:errcheck // test mock
}

func (m *mockStore) GetPayroll(ctx context.Context, id int64) (models.Payroll, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Payroll), args.Error(1) //nolint:errcheck // test mock
}

func (m *mockStore) UpdatePayrollStatus(ctx context.Context, id int64, from, to models.PayrollStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ListPayroll(
	ctx context.Context, status models.PayrollStatus, limit, offset int,
) ([]models.Payroll, error) {
	args := m.Called(ctx, status, limit, offset)
	entries, _ := args.Get(0).([]models.Payroll)
	return entries, args.Error(1)
}

func (m *mockStore) PayrollSummary(ctx context.Context) ([]models.PayrollSummary, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]models.PayrollSummary)
	return summaries, args.Error(1)
}

func (m *mockStore) CreateTransaction(ctx context.Context, txn models.Transaction) (int64, error) {
	args := m.Called(ctx, txn)
	return args.Get(0).(int64), args.Error(1) //nolint:errcheck // test mock
}

func (m *mockStore) ListTransactions(
	ctx context.Context, kind models.TransactionType, limit, offset int,
) ([]models.Transaction, error) {
	args := m.Called(ctx, kind, limit, offset)
	txns, _ := args.Get(0).([]models.Transaction)
	return txns, args.Error(1)
}

func (m *mockStore) Totals(ctx context.Context) (models.Totals, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Totals), args.Error(1) //nolint:errcheck // test mock
}

type mockPayer struct {
	mock.Mock
}

func (m *mockPayer) MarkPaid(ctx context.Context, id int64) (models.Transaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Transaction), args.Error(1) //nolint:errcheck // test mock
}

// sent is one outgoing message captured by fakeContext.
type sent struct {
	edit   bool
	what   any
	markup *telebot.ReplyMarkup
}

func (s sent) text() string {
	text, _ := s.what.(string)
	return text
}

// fakeContext implements the parts of telebot.Context the handlers use.
// Calling anything else panics on the nil embedded interface.
type fakeContext struct {
	telebot.Context

	sender    *telebot.User
	chat      *telebot.Chat
	callback  *telebot.Callback
	text      string
	args      []string
	sent      []sent
	responses []*telebot.CallbackResponse
}

func newTextContext(text string, args ...string) *fakeContext {
	return &fakeContext{
		sender: &telebot.User{ID: 42, FirstName: "Olga", Username: "olga", LanguageCode: "en"},
		chat:   &telebot.Chat{ID: 100},
		text:   text,
		args:   args,
	}
}

func newCallbackContext(action Action) *fakeContext {
	c := newTextContext("")
	c.callback = &telebot.Callback{ID: "cb", Data: action.Encode()}
	return c
}

func (c *fakeContext) Sender() *telebot.User       { return c.sender }
func (c *fakeContext) Chat() *telebot.Chat         { return c.chat }
func (c *fakeContext) Callback() *telebot.Callback { return c.callback }
func (c *fakeContext) Text() string                { return c.text }
func (c *fakeContext) Args() []string              { return c.args }

func (c *fakeContext) Send(what any, opts ...any) error {
	c.sent = append(c.sent, sent{what: what, markup: markupOf(opts)})
	return nil
}

func (c *fakeContext) Edit(what any, opts ...any) error {
	c.sent = append(c.sent, sent{edit: true, what: what, markup: markupOf(opts)})
	return nil
}

func (c *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	if len(resp) == 0 {
		resp = []*telebot.CallbackResponse{{}}
	}
	c.responses = append(c.responses, resp...)
	return nil
}

// last returns the latest message and fails the test when nothing was sent.
func (c *fakeContext) last(t *testing.T) sent {
	t.Helper()
	require.NotEmpty(t, c.sent, "nothing was sent")
	return c.sent[len(c.sent)-1]
}

// toasts lists the non-empty callback answers.
func (c *fakeContext) toasts() []string {
	var texts []string
	for _, resp := range c.responses {
		if resp.Text != "" {
			texts = append(texts, resp.Text)
		}
	}
	return texts
}

func markupOf(opts []any) *telebot.ReplyMarkup {
	for _, opt := range opts {
		if markup, ok := opt.(*telebot.ReplyMarkup); ok {
			return markup
		}
	}
	return nil
}

// buttons flattens an inline keyboard into button data keyed by label.
func buttons(markup *telebot.ReplyMarkup) map[string]string {
	out := make(map[string]string)
	if markup == nil {
		return out
	}
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			out[btn.Text] = btn.Data
		}
	}
	return out
}

type testBot struct {
	*Bot

	store    *mockStore
	payer    *mockPayer
	sessions *session.MemoryStore
}

func newTestBot(t *testing.T, allowed ...int64) *testBot {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &mockStore{}
	payer := &mockPayer{}
	sessions := session.NewMemoryStore(time.Hour)

	b, err := newBot(logger, Dependencies{
		Store:    store,
		Forms:    form.NewEngine(logger, store),
		Sessions: sessions,
		Locker:   session.NewLocalLocker(),
		Payer:    payer,
		Metrics:  metrics.NewMetrics(prometheus.NewRegistry()),
	}, allowed)
	require.NoError(t, err)
	b.now = func() time.Time { return time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC) }

	return &testBot{Bot: b, store: store, payer: payer, sessions: sessions}
}

// activeSession returns the chat's open form session.
func (tb *testBot) activeSession(t *testing.T) form.Session {
	t.Helper()
	s, ok, err := tb.sessions.Load(t.Context(), 100)
	require.NoError(t, err)
	require.True(t, ok, "no active form session")
	return s
}
