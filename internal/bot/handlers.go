package bot

import (
	"context"
	"strconv"

	"log/slog"

	"recbot/core/logger"
	coretelegram "recbot/core/telegram"
	"recbot/core/telegram/actions"
	"recbot/core/telegram/commands"
	tghelpers "recbot/core/telegram/helpers"
	"recbot/internal/catalog"
	"recbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// InProgress reports whether the user is mid-flow; satisfies router.Flows.
func (a *App) InProgress(userID int64) bool {
	return a.sessions.Get(userID).InFlow()
}

// FlowHandler consumes the next text reply of a user who is mid-flow;
// satisfies router.Flows.
func (a *App) FlowHandler(c tele.Context) error {
	ctx, userID, chatID, ok := a.eventContext(c, "flow.reply")
	if !ok {
		return nil
	}
	if !a.cfg.IsAdmin(userID) {
		// Flows are admin-only; a stray state for a non-admin is dropped.
		a.sessions.Get(userID).State = session.StateIdle
		return nil
	}

	if a.sessions.Get(userID).State == session.StateEditValue {
		a.handleEditReply(ctx, userID, chatID, c.Text())
	} else {
		a.handleAddReply(ctx, userID, chatID, c.Text())
	}
	return nil
}

// handleMenuLabel reacts to the persistent reply-keyboard labels; anything
// else gets a short hint back.
func (a *App) handleMenuLabel(c tele.Context) error {
	ctx, userID, chatID, ok := a.eventContext(c, "menu.label")
	if !ok {
		return nil
	}
	if a.dispatchMenuLabel(ctx, userID, chatID, c.Text()) {
		return nil
	}
	return tghelpers.SendText(c, "Use the menu buttons below, or /start to reset.")
}

// dispatchMenuLabel routes one reply-keyboard label. Reports whether the
// text matched a known label.
func (a *App) dispatchMenuLabel(ctx context.Context, userID, chatID int64, text string) bool {
	switch text {
	case labelRecommendations:
		a.showCategories(ctx, userID, chatID)
	case labelMainMenu:
		a.start(ctx, userID, chatID)
	case labelAdminPanel:
		if !a.cfg.IsAdmin(userID) {
			logger.Warn(ctx, "flow", "access.denied",
				slog.String("status", "denied"),
				slog.Int64("user_id", userID),
			)
			return true
		}
		a.showAdminPanel(ctx, userID, chatID)
	default:
		return false
	}
	return true
}

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Description: "Reset and show the main menu",
		Handler: func(c tele.Context) error {
			ctx, userID, chatID, ok := a.eventContext(c, "start")
			if !ok {
				return nil
			}
			a.start(ctx, userID, chatID)
			return nil
		},
	})
	reg.RegisterCommand("/admin", commands.Command{
		Description: "Open the admin panel",
		AdminOnly:   true,
		Hidden:      true,
		Handler: func(c tele.Context) error {
			ctx, userID, chatID, ok := a.eventContext(c, "admin")
			if !ok {
				return nil
			}
			a.showAdminPanel(ctx, userID, chatID)
			return nil
		},
	})
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) error {
	type cbHandler struct {
		verb    string
		admin   bool
		handler func(ctx context.Context, userID, chatID int64, act actions.Action)
	}

	handlers := []cbHandler{
		{actCategory, false, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			if cat, err := catalog.ParseCategory(act.Arg(0)); err == nil {
				a.chooseCategory(ctx, userID, chatID, cat)
			}
		}},
		{actGenre, false, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			cat, err := catalog.ParseCategory(act.Arg(0))
			if err != nil || act.Arg(1) == "" {
				return
			}
			a.toggleGenre(ctx, userID, chatID, cat, act.Arg(1))
		}},
		{actShow, false, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			if cat, err := catalog.ParseCategory(act.Arg(0)); err == nil {
				a.applyFilter(ctx, userID, chatID, cat)
			}
		}},
		{actPage, false, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			cat, err := catalog.ParseCategory(act.Arg(0))
			if err != nil {
				return
			}
			page, err := strconv.Atoi(act.Arg(1))
			if err != nil {
				return
			}
			a.gotoPage(ctx, userID, chatID, cat, page)
		}},
		{actView, false, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			cat, entryID, ok := parseEntryArgs(act)
			if !ok {
				return
			}
			a.toggleView(ctx, userID, chatID, cat, entryID)
		}},
		{actBack, false, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			switch act.Arg(0) {
			case "recommendations":
				a.backToCategories(ctx, userID, chatID)
			case "genres":
				if cat, err := catalog.ParseCategory(act.Arg(1)); err == nil {
					a.backToGenres(ctx, userID, chatID, cat)
				}
			}
		}},

		{actDelete, true, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			cat, entryID, ok := parseEntryArgs(act)
			if !ok {
				return
			}
			a.deleteEntry(ctx, userID, chatID, cat, entryID)
		}},
		{actEdit, true, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			cat, entryID, ok := parseEntryArgs(act)
			if !ok {
				return
			}
			a.startEditFlow(ctx, userID, chatID, cat, entryID)
		}},
		{actEditField, true, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			raw := act.Arg(0)
			if len(raw) > 4 && raw[:4] == "obj_" {
				raw = raw[4:]
			}
			if field, err := catalog.ParseField(raw); err == nil {
				a.chooseEditField(ctx, userID, chatID, field)
			}
		}},
		{actEditCancel, true, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			a.cancelEditFlow(ctx, userID, chatID)
		}},
		{actAdmin, true, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			switch act.Arg(0) {
			case "panel":
				a.showAdminPanel(ctx, userID, chatID)
			case "add_object":
				a.startAddFlow(ctx, userID, chatID)
			}
		}},
		{actAddType, true, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			if cat, err := catalog.ParseCategory(act.Arg(0)); err == nil {
				a.chooseAddType(ctx, userID, chatID, cat)
			}
		}},
		{actAddCancel, true, func(ctx context.Context, userID, chatID int64, act actions.Action) {
			a.cancelAddFlow(ctx, userID, chatID)
		}},
	}

	for _, h := range handlers {
		h := h
		err := reg.RegisterCallback(h.verb, coretelegram.Callback{
			AdminOnly: h.admin,
			Handler: func(c tele.Context) error {
				ctx, userID, chatID, ok := a.eventContext(c, "callback."+h.verb)
				if !ok {
					return nil
				}
				h.handler(ctx, userID, chatID, actions.Decode(c.Callback().Data))
				return nil
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// eventContext extracts the identities an update acts on behalf of.
func (a *App) eventContext(c tele.Context, handler string) (context.Context, int64, int64, bool) {
	user := c.Sender()
	chat := c.Chat()
	if user == nil || chat == nil {
		return nil, 0, 0, false
	}
	return tghelpers.WithHandler(c, handler), user.ID, chat.ID, true
}

func parseEntryArgs(act actions.Action) (catalog.Category, int64, bool) {
	cat, err := catalog.ParseCategory(act.Arg(0))
	if err != nil {
		return "", 0, false
	}
	entryID, err := strconv.ParseInt(act.Arg(1), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return cat, entryID, true
}
