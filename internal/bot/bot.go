package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/metrica/internal/form"
	"github.com/UnknownOlympus/metrica/internal/i18n"
	"github.com/UnknownOlympus/metrica/internal/metrics"
	"github.com/UnknownOlympus/metrica/internal/models"
	"github.com/UnknownOlympus/metrica/internal/repository"
	"github.com/UnknownOlympus/metrica/internal/session"
	"gopkg.in/telebot.v4"
)

// requestTimeout bounds the storage work done for a single update.
const requestTimeout = 5 * time.Second

// Store is everything the bot reads and writes.
type Store interface {
	repository.OrderManager
	repository.EmployeeManager
	repository.PayrollManager
	repository.FinanceManager
}

// Payer marks payroll entries as paid.
type Payer interface {
	MarkPaid(ctx context.Context, id int64) (models.Transaction, error)
}

// Dependencies are the services the bot dispatches to.
type Dependencies struct {
	Store    Store
	Forms    *form.Engine
	Sessions session.Store
	Locker   session.Locker
	Payer    Payer
	Metrics  *metrics.Metrics
}

// Bot contains the bot API instance and the services behind its handlers.
type Bot struct {
	bot       *telebot.Bot
	log       *slog.Logger
	store     Store
	forms     *form.Engine
	sessions  session.Store
	locker    session.Locker
	payer     Payer
	metrics   *metrics.Metrics
	localizer *i18n.Localizer
	menus     *MenuBuilder
	allowed   map[int64]bool
	lockWait  time.Duration // how long an update waits for the previous update of its chat
	now       func() time.Time
}

// NewBot creates a new bot with the given token. An empty allowedUsers list lets everyone in.
func NewBot(
	log *slog.Logger,
	deps Dependencies,
	token string,
	poller time.Duration,
	allowedUsers []int64,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	botInstance, err := newBot(log, deps, allowedUsers)
	if err != nil {
		return nil, err
	}
	botInstance.bot = bot
	botInstance.registerRoutes()

	return botInstance, nil
}

// newBot assembles the handler state without contacting Telegram.
func newBot(log *slog.Logger, deps Dependencies, allowedUsers []int64) (*Bot, error) {
	localizer, err := i18n.NewLocalizer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize localizer: %w", err)
	}
	if err = checkCatalogs(localizer, deps.Forms); err != nil {
		return nil, err
	}

	allowed := make(map[int64]bool, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = true
	}

	return &Bot{
		log:       log.With(slog.String("component", "bot")),
		store:     deps.Store,
		forms:     deps.Forms,
		sessions:  deps.Sessions,
		locker:    deps.Locker,
		payer:     deps.Payer,
		metrics:   deps.Metrics,
		localizer: localizer,
		menus:     NewMenuBuilder(log, localizer),
		allowed:   allowed,
		lockWait:  requestTimeout,
		now:       time.Now,
	}, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	b.bot.Use(b.RecoverMiddleware)

	// Public: lets a new user find the id to put on the allow-list.
	b.bot.Handle("/get_my_id", b.getMyIDHandler)

	private := b.bot.Group()
	private.Use(b.AllowListMiddleware, b.ChatLockMiddleware)

	private.Handle("/start", b.startHandler)
	private.Handle("/help", b.helpHandler)
	private.Handle("/about", b.aboutHandler)
	private.Handle("/cancel", b.cancelHandler)
	private.Handle("/income", b.transactionCommandHandler(models.TransactionIncome))
	private.Handle("/expense", b.transactionCommandHandler(models.TransactionExpense))
	private.Handle(telebot.OnText, b.textHandler)
	private.Handle(telebot.OnCallback, b.callbackHandler)
}

// lang picks the catalog for the user from their Telegram client language.
func (b *Bot) lang(c telebot.Context) string {
	if sender := c.Sender(); sender != nil {
		return i18n.NormalizeLanguageCode(sender.LanguageCode)
	}
	return i18n.Languages[0]
}

// t is a shorthand method for getting translations.
func (b *Bot) t(c telebot.Context, key string) string {
	return b.localizer.Get(b.lang(c), key)
}

// tWithData is a shorthand method for getting translations with placeholder data.
func (b *Bot) tWithData(c telebot.Context, key string, data map[string]any) string {
	return b.localizer.GetWithData(b.lang(c), key, data)
}

// chatID is the key of the chat's form session and lock.
func chatID(c telebot.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if sender := c.Sender(); sender != nil {
		return sender.ID
	}
	return 0
}

// observe records how long a storage call took.
func (b *Bot) observe(queryType string, started time.Time) {
	b.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(started).Seconds())
}
