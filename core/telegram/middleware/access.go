package middleware

import (
	"log/slog"

	"recbot/core/logger"
	tghelpers "recbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks behave. IsAdmin is the
// allow-list predicate; a nil predicate denies everyone.
type AdminOptions struct {
	IsAdmin  func(userID int64) bool
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allowed(c tele.Context) bool {
	user := c.Sender()
	if user == nil || o.IsAdmin == nil {
		return false
	}
	return o.IsAdmin(user.ID)
}

func (o AdminOptions) reject(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	logger.Event(ctx, "tg", slog.LevelWarn, "access.denied",
		slog.String("status", "denied"),
	)
	if o.OnReject != nil {
		return o.OnReject(c)
	}
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Admins only."})
	}
	return nil
}

// WithAdminCheck wraps a handler, enforcing the allow-list when adminOnly is set.
func WithAdminCheck(opts AdminOptions, adminOnly bool, h tele.HandlerFunc) tele.HandlerFunc {
	if !adminOnly {
		return h
	}
	return func(c tele.Context) error {
		if !opts.allowed(c) {
			return opts.reject(c)
		}
		return h(c)
	}
}

// AdminGuard ensures only allow-listed users reach downstream handlers.
func AdminGuard(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !opts.allowed(c) {
				return opts.reject(c)
			}
			return next(c)
		}
	}
}
