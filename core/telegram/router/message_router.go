package router

import (
	"time"

	tg "recbot/core/telegram"
	"recbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Flows is the minimal interface the text router needs from the multi-step
// flow manager: whether a user is mid-flow, and the handler that consumes
// their next text message.
type Flows interface {
	InProgress(userID int64) bool
	FlowHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the text routing handler: flow input first, then slash
// commands and aliases, then the registered fallback.
func TextRoutes(flows Flows, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if flows != nil && c.Sender() != nil && flows.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "flow", start, "", "", func() error {
				return flows.FlowHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}
