package bot

import (
	"context"

	"log/slog"

	"recbot/core/logger"
	"recbot/internal/catalog"
	"recbot/internal/nav"
	"recbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// sendScreen sends a message and records it into the session's current
// screen level.
func (a *App) sendScreen(ctx context.Context, sess *session.Session, chatID int64, text string, markup *tele.ReplyMarkup) {
	h, err := a.tr.Send(ctx, chatID, text, markup)
	if err != nil {
		logger.Warn(ctx, "flow", "screen.send_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return
	}
	sess.Stack.Record(h)
}

// start wipes the user's session and shows the main menu. The welcome
// message is not part of any screen level; it stays behind as the anchor.
func (a *App) start(ctx context.Context, userID, chatID int64) {
	sess := a.sessions.Get(userID)
	sess.Stack.Drain(ctx, a.tr)
	a.sessions.Reset(userID)

	_, err := a.tr.Send(ctx, chatID, renderWelcome(), mainMenuKeyboard(a.cfg.IsAdmin(userID)))
	if err != nil {
		logger.Warn(ctx, "flow", "start.send_failed", slog.String("err", err.Error()))
	}
	logger.Info(ctx, "flow", "session.reset", slog.Int64("user_id", userID))
}

// showCategories drains whatever screens are on display and shows the
// category chooser as the only level. Re-entering from the persistent menu
// button must replace the old screens, not bury them.
func (a *App) showCategories(ctx context.Context, userID, chatID int64) {
	sess := a.sessions.Get(userID)
	sess.Stack.Drain(ctx, a.tr)
	sess.Stack.Push()
	a.sendScreen(ctx, sess, chatID, renderCategoryPrompt(), categoryKeyboard())
}

// chooseCategory replaces the chooser with the genre-filter screen.
func (a *App) chooseCategory(ctx context.Context, userID, chatID int64, category catalog.Category) {
	sess := a.sessions.Get(userID)
	sess.Category = category

	sess.Stack.Pop(ctx, a.tr)
	sess.Stack.Push()
	a.showFilterScreen(ctx, sess, userID, chatID, category)
}

// showFilterScreen sends the genre-filter screen into the current level.
func (a *App) showFilterScreen(ctx context.Context, sess *session.Session, userID, chatID int64, category catalog.Category) {
	f := sess.Filter(category)
	count := a.store.CountFiltered(ctx, category, f.Genres(), f.ViewedOnly, userID)
	available := a.store.AvailableGenres(ctx, category, f.Genres(), f.ViewedOnly, userID)

	a.sendScreen(ctx, sess, chatID,
		renderFilterScreen(category, f, count),
		filterKeyboard(category, available, f),
	)
	logger.Debug(ctx, "flow", "filter.shown",
		slog.String("category", string(category)),
		slog.Int("count", count),
		slog.Int("genres", len(available)),
	)
}

// toggleGenre flips one genre (or the viewed sentinel) and refreshes the
// filter screen in place. A refinement, not a navigation: no level change.
func (a *App) toggleGenre(ctx context.Context, userID, chatID int64, category catalog.Category, genre string) {
	sess := a.sessions.Get(userID)
	f := sess.Filter(category)

	if genre == viewedSentinel {
		f.ViewedOnly = !f.ViewedOnly
	} else {
		f.ToggleGenre(genre)
	}

	handles := sess.Stack.Current()
	if len(handles) == 0 {
		// Stale button from a popped screen.
		return
	}

	count := a.store.CountFiltered(ctx, category, f.Genres(), f.ViewedOnly, userID)
	available := a.store.AvailableGenres(ctx, category, f.Genres(), f.ViewedOnly, userID)

	if err := a.tr.Edit(ctx, handles[0],
		renderFilterScreen(category, f, count),
		filterKeyboard(category, available, f),
	); err != nil {
		logger.Warn(ctx, "flow", "filter.edit_failed",
			slog.String("category", string(category)),
			slog.String("genre", genre),
			slog.String("err", err.Error()),
		)
	}
}

// applyFilter executes the query, snapshots the results and replaces the
// filter screen with page 0.
func (a *App) applyFilter(ctx context.Context, userID, chatID int64, category catalog.Category) {
	sess := a.sessions.Get(userID)
	f := sess.Filter(category)

	entries := a.store.SelectFiltered(ctx, category, f.Genres(), f.ViewedOnly, userID)
	sess.SetResults(entries)

	sess.Stack.Pop(ctx, a.tr)
	a.renderResultsLevel(ctx, sess, userID, chatID, category)

	logger.Info(ctx, "flow", "results.shown",
		slog.String("category", string(category)),
		slog.Int("count", len(entries)),
		slog.Int("page", sess.Page),
	)
}

// renderResultsLevel pushes a results level: one card per entry on the
// current page plus a pagination footer.
func (a *App) renderResultsLevel(ctx context.Context, sess *session.Session, userID, chatID int64, category catalog.Category) {
	sess.Stack.Push()
	sess.Cards = make(map[int64]nav.Handle)

	if len(sess.Results) == 0 {
		a.sendScreen(ctx, sess, chatID,
			renderEmptyResults(category),
			pageFooterKeyboard(category, 0, 0),
		)
		return
	}

	admin := a.cfg.IsAdmin(userID)
	page := sess.PageSlice(a.pageSize)
	for i := range page {
		a.sendEntryCard(ctx, sess, userID, chatID, category, &page[i], admin)
	}

	total := sess.TotalPages(a.pageSize)
	a.sendScreen(ctx, sess, chatID,
		renderPageFooter(sess.Page, total, len(sess.Results)),
		pageFooterKeyboard(category, sess.Page, total),
	)
}

func (a *App) sendEntryCard(ctx context.Context, sess *session.Session, userID, chatID int64, category catalog.Category, entry *catalog.Entry, admin bool) {
	genres := a.store.EntryGenres(ctx, entry.ID)
	viewed := a.store.IsViewed(ctx, userID, entry.ID)
	text := renderEntryCard(entry, genres, viewed)
	markup := entryCardKeyboard(category, entry, viewed, admin)

	var h nav.Handle
	var err error
	if entry.Image != "" {
		h, err = a.tr.SendPhoto(ctx, chatID, entry.Image, text, markup)
	} else {
		h, err = a.tr.Send(ctx, chatID, text, markup)
	}
	if err != nil {
		logger.Warn(ctx, "flow", "card.send_failed",
			slog.Int64("entry_id", entry.ID),
			slog.String("err", err.Error()),
		)
		return
	}
	sess.Stack.Record(h)
	sess.Cards[entry.ID] = h
}

// gotoPage re-renders the results level for the requested page, clamped
// into the valid range.
func (a *App) gotoPage(ctx context.Context, userID, chatID int64, category catalog.Category, page int) {
	sess := a.sessions.Get(userID)

	total := sess.TotalPages(a.pageSize)
	if total == 0 {
		page = 0
	} else {
		if page < 0 {
			page = 0
		}
		if page >= total {
			page = total - 1
		}
	}
	sess.Page = page

	sess.Stack.Pop(ctx, a.tr)
	a.renderResultsLevel(ctx, sess, userID, chatID, category)
}

// toggleView flips the viewed mark of one entry and updates only its card.
func (a *App) toggleView(ctx context.Context, userID, chatID int64, category catalog.Category, entryID int64) {
	sess := a.sessions.Get(userID)

	viewed := a.store.IsViewed(ctx, userID, entryID)
	var err error
	if viewed {
		err = a.store.ClearView(ctx, userID, entryID)
	} else {
		err = a.store.RecordView(ctx, userID, entryID)
	}
	if err != nil {
		a.notifyStorageFailure(ctx, chatID)
		return
	}

	entry := sess.FindResult(entryID)
	if entry == nil {
		return
	}

	// A card whose send failed has no handle; the toggle is then stored
	// but not redrawn until the next page render.
	h, ok := sess.Cards[entryID]
	if !ok {
		return
	}

	genres := a.store.EntryGenres(ctx, entryID)
	if err := a.tr.Edit(ctx, h,
		renderEntryCard(entry, genres, !viewed),
		entryCardKeyboard(category, entry, !viewed, a.cfg.IsAdmin(userID)),
	); err != nil {
		logger.Warn(ctx, "flow", "card.edit_failed",
			slog.Int64("entry_id", entryID),
			slog.String("err", err.Error()),
		)
	}
}

// deleteEntry removes an entry from storage and the cached snapshot, then
// re-renders the page clamped into the new range.
func (a *App) deleteEntry(ctx context.Context, userID, chatID int64, category catalog.Category, entryID int64) {
	if err := a.store.DeleteEntry(ctx, entryID); err != nil {
		a.notifyStorageFailure(ctx, chatID)
		return
	}

	sess := a.sessions.Get(userID)
	sess.RemoveResult(entryID)
	sess.ClampPage(a.pageSize)

	sess.Stack.Pop(ctx, a.tr)
	a.renderResultsLevel(ctx, sess, userID, chatID, category)

	logger.Info(ctx, "flow", "entry.deleted",
		slog.String("category", string(category)),
		slog.Int64("entry_id", entryID),
	)
}

// backToGenres pops the results level and re-establishes the filter screen
// with the selection intact.
func (a *App) backToGenres(ctx context.Context, userID, chatID int64, category catalog.Category) {
	sess := a.sessions.Get(userID)
	sess.Stack.Pop(ctx, a.tr)
	sess.Stack.Push()
	a.showFilterScreen(ctx, sess, userID, chatID, category)
}

// backToCategories replaces the filter level with a fresh category chooser.
func (a *App) backToCategories(ctx context.Context, userID, chatID int64) {
	sess := a.sessions.Get(userID)
	sess.Stack.Pop(ctx, a.tr)
	sess.Stack.Push()
	a.sendScreen(ctx, sess, chatID, renderCategoryPrompt(), categoryKeyboard())
}

func (a *App) notifyStorageFailure(ctx context.Context, chatID int64) {
	if err := a.tr.Notify(ctx, chatID, "Storage is unavailable right now, try again later."); err != nil {
		logger.Warn(ctx, "flow", "notify.send_failed", slog.String("err", err.Error()))
	}
}
