package bot

import (
	"context"
	"strings"

	"log/slog"

	"recbot/core/logger"
	"recbot/internal/catalog"
	"recbot/internal/session"
)

// startEditFlow pushes the field chooser for the entry.
func (a *App) startEditFlow(ctx context.Context, userID, chatID int64, category catalog.Category, entryID int64) {
	sess := a.sessions.Get(userID)
	entry := sess.FindResult(entryID)
	if entry == nil {
		if err := a.tr.Notify(ctx, chatID, "That entry is no longer on this page."); err != nil {
			logger.Warn(ctx, "flow", "notify.send_failed", slog.String("err", err.Error()))
		}
		return
	}

	sess.Edit = &session.EditTarget{EntryID: entryID, Category: category}
	sess.Stack.Push()
	a.sendScreen(ctx, sess, chatID,
		"What do you want to change in \""+entry.Name+"\"?",
		editFieldKeyboard(),
	)
}

// chooseEditField shows the current value and awaits the replacement.
func (a *App) chooseEditField(ctx context.Context, userID, chatID int64, field catalog.Field) {
	sess := a.sessions.Get(userID)
	target := sess.Edit
	if target == nil {
		return
	}
	entry := sess.FindResult(target.EntryID)
	if entry == nil {
		a.cancelEditFlow(ctx, userID, chatID)
		return
	}

	target.Field = field
	sess.State = session.StateEditValue

	var genres []string
	if field == catalog.FieldGenres {
		genres = a.store.EntryGenres(ctx, target.EntryID)
	}

	handles := sess.Stack.Current()
	prompt := renderFieldPrompt(field, currentFieldValue(entry, genres, field))
	if len(handles) > 0 {
		if err := a.tr.Edit(ctx, handles[0], prompt, editCancelKeyboard()); err == nil {
			return
		}
	}
	a.sendScreen(ctx, sess, chatID, prompt, editCancelKeyboard())
}

// cancelEditFlow returns to the results page unchanged.
func (a *App) cancelEditFlow(ctx context.Context, userID, chatID int64) {
	sess := a.sessions.Get(userID)
	sess.Edit = nil
	sess.State = session.StateIdle
	sess.Stack.Pop(ctx, a.tr)
}

// handleEditReply validates and writes the replacement value, then
// re-renders the results page with the fresh copy.
func (a *App) handleEditReply(ctx context.Context, userID, chatID int64, text string) {
	sess := a.sessions.Get(userID)
	target := sess.Edit
	if target == nil {
		sess.State = session.StateIdle
		return
	}
	text = strings.TrimSpace(text)

	entry := sess.FindResult(target.EntryID)
	if entry == nil {
		a.cancelEditFlow(ctx, userID, chatID)
		return
	}

	var err error
	switch target.Field {
	case catalog.FieldYear:
		var year int
		if year, err = catalog.ParseYear(text); err != nil {
			a.sendScreen(ctx, sess, chatID, "That is not a year. Send a number like 1999.", editCancelKeyboard())
			return
		}
		if err = a.store.UpdateField(ctx, target.EntryID, target.Field, year); err == nil {
			entry.Year = year
		}

	case catalog.FieldAdminRating, catalog.FieldSiteRating:
		var rating float64
		if rating, err = catalog.ParseRating(text); err != nil {
			a.sendScreen(ctx, sess, chatID, "That is not a number. Send a rating like 7.5.", editCancelKeyboard())
			return
		}
		if err = a.store.UpdateField(ctx, target.EntryID, target.Field, rating); err == nil {
			if target.Field == catalog.FieldAdminRating {
				entry.AdminRating = &rating
			} else {
				entry.SiteRating = &rating
			}
		}

	case catalog.FieldGenres:
		genres := catalog.SplitGenres(text)
		err = a.store.ReplaceGenres(ctx, target.EntryID, genres)

	default:
		if err = a.store.UpdateField(ctx, target.EntryID, target.Field, text); err == nil {
			switch target.Field {
			case catalog.FieldName:
				entry.Name = text
			case catalog.FieldDescription:
				entry.Description = text
			case catalog.FieldURL:
				entry.URL = text
			case catalog.FieldImage:
				entry.Image = text
			}
		}
	}

	category := target.Category
	sess.Edit = nil
	sess.State = session.StateIdle
	sess.Stack.Pop(ctx, a.tr)

	if err != nil {
		logger.Error(ctx, "flow", "entry.update_failed",
			slog.Int64("entry_id", target.EntryID),
			slog.String("field", string(target.Field)),
			slog.String("err", err.Error()),
		)
		a.notifyStorageFailure(ctx, chatID)
		return
	}

	// Redraw the page so the updated card is what the user sees.
	sess.Stack.Pop(ctx, a.tr)
	a.renderResultsLevel(ctx, sess, userID, chatID, category)

	logger.Info(ctx, "flow", "entry.updated",
		slog.Int64("entry_id", target.EntryID),
		slog.String("field", string(target.Field)),
	)
}
