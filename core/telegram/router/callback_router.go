package router

import (
	"time"

	"log/slog"

	tg "recbot/core/telegram"
	"recbot/core/telegram/actions"
	"recbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback and privilege behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
	Admin    middleware.AdminOptions
}

// CallbackRoute returns a handler that decodes button payloads and routes
// them through the registry by verb.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		act := actions.Decode(cb.Data)
		name := "callback." + normalizeHandlerName(act.Verb)
		extras := []slog.Attr{slog.String("action", act.Verb)}

		entry, ok := reg.GetCallback(act.Verb)
		if !ok || entry.Handler == nil {
			fallback := reg.CallbackNotFound()
			if fallback == nil {
				fallback = opts.NotFound
			}
			extras = append(extras, slog.String("reason", "not_found"))
			return handleWithSummary(c, name, start, "", "", func() error {
				if fallback != nil {
					return fallback(c)
				}
				return c.Respond()
			}, extras...)
		}

		// A query can be answered only once. The admin check runs first so
		// a refusal notice takes that answer; allowed taps get the plain
		// ack that stops the client spinner.
		run := middleware.WithAdminCheck(opts.Admin, entry.AdminOnly, func(c tele.Context) error {
			_ = c.Respond()
			return entry.Handler(c)
		})

		return handleWithSummary(c, name, start, "", "", func() error {
			return run(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
