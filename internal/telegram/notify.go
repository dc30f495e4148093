package telegram

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"order_desk_bot/internal/logging"
)

const sendTimeout = 5 * time.Second

// reply answers the chat the update came from. Send failures are logged and
// swallowed; an undeliverable reply must not fail the handler.
func (r *Router) reply(ctx context.Context, s sender, chat int64, text string, markup models.ReplyMarkup) {
	r.send(ctx, s, chat, text, markup, "reply_failed")
}

// notify sends an out-of-band message (order owner, operator) after the state
// change has committed. Best effort: bounded, logged, never rolled back.
func (r *Router) notify(ctx context.Context, s sender, chat int64, text string, markup models.ReplyMarkup) {
	r.send(ctx, s, chat, text, markup, "notify_failed")
}

func (r *Router) send(ctx context.Context, s sender, chat int64, text string, markup models.ReplyMarkup, failEvent string) {
	if chat == 0 {
		return
	}

	// Detached from the handler context so a cancelled update cannot drop an
	// already-earned notification.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID: chat,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := s.SendMessage(sendCtx, params); err != nil {
		r.logger.WithFields(logging.Fields{
			"event":   failEvent,
			"chat_id": chat,
		}).WithError(err).Warn("failed to send telegram message")
	}
}
