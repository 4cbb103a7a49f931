package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/metrica/internal/session"
	"gopkg.in/telebot.v4"
)

// AllowListMiddleware lets through only users on the allow-list. An empty list allows everyone.
func (b *Bot) AllowListMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(ctx telebot.Context) error {
		if len(b.allowed) == 0 {
			return next(ctx)
		}

		sender := ctx.Sender()
		if sender != nil && b.allowed[sender.ID] {
			return next(ctx)
		}

		log := b.log.With(slog.String("op", "Bot.AllowListMiddleware"))
		if sender != nil {
			log.Info("Access denied", "username", sender.Username, "id", sender.ID)
		}

		if ctx.Callback() != nil {
			return ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, "access.denied"), ShowAlert: true})
		}
		return ctx.Send(b.t(ctx, "access.denied"))
	}
}

// ChatLockMiddleware processes updates of one chat one at a time, so a form session is never
// read and written by two handlers at once.
func (b *Bot) ChatLockMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(ctx telebot.Context) error {
		id := chatID(ctx)

		lockCtx, cancel := context.WithTimeout(context.Background(), b.lockWait)
		defer cancel()

		release, err := b.locker.Lock(lockCtx, id)
		if err != nil {
			if errors.Is(err, session.ErrLockNotObtained) {
				b.log.Warn("Chat is busy, dropping update", "chat", id)
				if ctx.Callback() != nil {
					return ctx.Respond(&telebot.CallbackResponse{Text: b.t(ctx, "busy")})
				}
				return ctx.Send(b.t(ctx, "busy"))
			}
			b.log.Error("Failed to lock chat", "chat", id, "error", err)
			return b.sendInternalError(ctx)
		}
		defer release()

		return next(ctx)
	}
}

// RecoverMiddleware turns a handler panic into an error reply instead of stopping the poller.
func (b *Bot) RecoverMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(ctx telebot.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				b.log.Error("Handler panicked", "chat", chatID(ctx), "panic", r)
				err = fmt.Errorf("handler panic: %v", r)
				_ = b.sendInternalError(ctx)
			}
		}()
		return next(ctx)
	}
}
