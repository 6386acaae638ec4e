package bot

import (
	"context"
	"strconv"

	"log/slog"

	"recbot/core/logger"
	"recbot/core/telegram/sender"
	"recbot/internal/nav"

	tele "gopkg.in/telebot.v4"
)

// Transport is the outbound message surface the flows draw screens with.
// Implementations must satisfy nav.Deleter so popped levels can clean up
// their messages.
type Transport interface {
	Send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (nav.Handle, error)
	// SendPhoto delivers a captioned image; implementations degrade to a
	// plain text message when the media cannot be delivered.
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, markup *tele.ReplyMarkup) (nav.Handle, error)
	Edit(ctx context.Context, h nav.Handle, text string, markup *tele.ReplyMarkup) error
	Delete(ctx context.Context, h nav.Handle) error
	// Notify sends a transient text notice outside of any screen level.
	Notify(ctx context.Context, chatID int64, text string) error
}

// telegramTransport implements Transport on a telebot instance. Deletions go
// through the async dispatcher so screen transitions never wait on them.
type telegramTransport struct {
	bot  *tele.Bot
	disp *sender.Dispatcher
}

// NewTelegramTransport wraps a telebot instance. The dispatcher may be nil,
// in which case deletions run synchronously.
func NewTelegramTransport(bot *tele.Bot, disp *sender.Dispatcher) Transport {
	return &telegramTransport{bot: bot, disp: disp}
}

func (t *telegramTransport) Send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (nav.Handle, error) {
	msg, err := t.bot.Send(tele.ChatID(chatID), text, markup)
	if err != nil {
		return nav.Handle{}, err
	}
	return nav.Handle{ChatID: chatID, MessageID: msg.ID}, nil
}

func (t *telegramTransport) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, markup *tele.ReplyMarkup) (nav.Handle, error) {
	photo := &tele.Photo{File: tele.FromURL(photoURL), Caption: caption}
	msg, err := t.bot.Send(tele.ChatID(chatID), photo, markup)
	if err == nil {
		return nav.Handle{ChatID: chatID, MessageID: msg.ID, HasMedia: true}, nil
	}

	logger.TG.Warn("photo send failed, falling back to text",
		slog.String("event", "send.photo_fallback"),
		slog.Int64("chat_id", chatID),
		slog.String("err", err.Error()),
	)
	return t.Send(ctx, chatID, caption, markup)
}

func (t *telegramTransport) Edit(ctx context.Context, h nav.Handle, text string, markup *tele.ReplyMarkup) error {
	stored := storedMessage(h)
	if h.HasMedia {
		_, err := t.bot.EditCaption(stored, text, markup)
		return err
	}
	_, err := t.bot.Edit(stored, text, markup)
	return err
}

func (t *telegramTransport) Delete(ctx context.Context, h nav.Handle) error {
	stored := storedMessage(h)
	if t.disp == nil {
		return t.bot.Delete(stored)
	}
	if err := t.disp.Enqueue(ctx, "delete.message", func() error {
		return t.bot.Delete(stored)
	}); err != nil {
		return t.bot.Delete(stored)
	}
	return nil
}

func (t *telegramTransport) Notify(ctx context.Context, chatID int64, text string) error {
	_, err := t.bot.Send(tele.ChatID(chatID), text)
	return err
}

func storedMessage(h nav.Handle) *tele.StoredMessage {
	return &tele.StoredMessage{
		MessageID: strconv.Itoa(h.MessageID),
		ChatID:    h.ChatID,
	}
}
