package bot

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"recbot/core/logger"
	"recbot/internal/catalog"
	"recbot/internal/session"
)

// showAdminPanel pushes the admin panel screen.
func (a *App) showAdminPanel(ctx context.Context, userID, chatID int64) {
	sess := a.sessions.Get(userID)
	sess.Stack.Push()
	a.sendScreen(ctx, sess, chatID, "Admin panel", adminPanelKeyboard())
}

// startAddFlow pushes the type chooser, the first step of entry creation.
func (a *App) startAddFlow(ctx context.Context, userID, chatID int64) {
	sess := a.sessions.Get(userID)
	sess.Stack.Push()
	a.sendScreen(ctx, sess, chatID, "What kind of entry is it?", addTypeKeyboard())
}

// chooseAddType fixes the entry type and starts collecting fields.
func (a *App) chooseAddType(ctx context.Context, userID, chatID int64, category catalog.Category) {
	sess := a.sessions.Get(userID)
	sess.Pending = &catalog.Draft{Type: category}
	sess.State = session.StateAddName

	prompt := "Send the name."
	if known := a.store.CategoryGenres(ctx, category); len(known) > 0 {
		prompt = fmt.Sprintf("Send the name.\n(Existing %s genres: %s)",
			strings.ToLower(category.Title()), strings.Join(known, ", "))
	}
	a.sendScreen(ctx, sess, chatID, prompt, addCancelKeyboard())
}

// cancelAddFlow discards the draft without storage side effects.
func (a *App) cancelAddFlow(ctx context.Context, userID, chatID int64) {
	sess := a.sessions.Get(userID)
	sess.Pending = nil
	sess.State = session.StateIdle
	sess.Stack.Pop(ctx, a.tr)
}

// handleAddReply consumes one free-text reply for the current step. A value
// that fails to parse re-prompts the same step and never advances.
func (a *App) handleAddReply(ctx context.Context, userID, chatID int64, text string) {
	sess := a.sessions.Get(userID)
	draft := sess.Pending
	if draft == nil {
		sess.State = session.StateIdle
		return
	}
	text = strings.TrimSpace(text)

	switch sess.State {
	case session.StateAddName:
		draft.Name = text
		sess.State = session.StateAddYear
		a.sendScreen(ctx, sess, chatID, "Release year?", addCancelKeyboard())

	case session.StateAddYear:
		year, err := catalog.ParseYear(text)
		if err != nil {
			a.sendScreen(ctx, sess, chatID, "That is not a year. Send a number like 1999.", addCancelKeyboard())
			return
		}
		draft.Year = year
		sess.State = session.StateAddDescription
		a.sendScreen(ctx, sess, chatID, "Short description?", addCancelKeyboard())

	case session.StateAddDescription:
		draft.Description = text
		sess.State = session.StateAddURL
		a.sendScreen(ctx, sess, chatID, "Link to the page?", addCancelKeyboard())

	case session.StateAddURL:
		draft.URL = text
		sess.State = session.StateAddImage
		a.sendScreen(ctx, sess, chatID, "Image URL?", addCancelKeyboard())

	case session.StateAddImage:
		draft.Image = text
		sess.State = session.StateAddAdminRating
		a.sendScreen(ctx, sess, chatID, "Your rating? (e.g. 7.5 or 7,5)", addCancelKeyboard())

	case session.StateAddAdminRating:
		rating, err := catalog.ParseRating(text)
		if err != nil {
			a.sendScreen(ctx, sess, chatID, "That is not a number. Send a rating like 7.5.", addCancelKeyboard())
			return
		}
		draft.AdminRating = rating
		sess.State = session.StateAddSiteRating
		a.sendScreen(ctx, sess, chatID, "Site rating?", addCancelKeyboard())

	case session.StateAddSiteRating:
		rating, err := catalog.ParseRating(text)
		if err != nil {
			a.sendScreen(ctx, sess, chatID, "That is not a number. Send a rating like 8.2.", addCancelKeyboard())
			return
		}
		draft.SiteRating = rating
		sess.State = session.StateAddGenres
		a.sendScreen(ctx, sess, chatID, "Genres, comma-separated?", addCancelKeyboard())

	case session.StateAddGenres:
		draft.Genres = catalog.SplitGenres(text)
		a.commitDraft(ctx, sess, userID, chatID)

	default:
		sess.State = session.StateIdle
	}
}

// commitDraft inserts the finished draft and closes the add screen.
func (a *App) commitDraft(ctx context.Context, sess *session.Session, userID, chatID int64) {
	draft := sess.Pending
	sess.Pending = nil
	sess.State = session.StateIdle

	id, err := a.store.InsertEntry(ctx, draft)
	sess.Stack.Pop(ctx, a.tr)
	if err != nil {
		logger.Error(ctx, "flow", "entry.insert_failed",
			slog.String("category", string(draft.Type)),
			slog.String("err", err.Error()),
		)
		a.notifyStorageFailure(ctx, chatID)
		return
	}

	if err := a.tr.Notify(ctx, chatID, fmt.Sprintf("Added %q to %s.", draft.Name, draft.Type.Title())); err != nil {
		logger.Warn(ctx, "flow", "notify.send_failed", slog.String("err", err.Error()))
	}
	logger.Info(ctx, "flow", "entry.added",
		slog.String("category", string(draft.Type)),
		slog.Int64("entry_id", id),
		slog.Int("genres", len(draft.Genres)),
	)
}
