package bot

import (
	"fmt"
	"strconv"

	"recbot/core/telegram/actions"
	"recbot/core/telegram/keyboard"
	"recbot/internal/catalog"
	"recbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// Callback verbs carried in button payloads.
const (
	actCategory   = "category"
	actGenre      = "genre"
	actShow       = "show"
	actPage       = "page"
	actView       = "view"
	actDelete     = "delete"
	actEdit       = "edit"
	actEditField  = "edit_field"
	actEditCancel = "edit_cancel"
	actAddType    = "add_type"
	actAddCancel  = "add_cancel"
	actBack       = "back"
	actAdmin      = "admin"
)

// viewedSentinel is the pseudo-genre that toggles the viewed-only filter.
const viewedSentinel = "_viewed_"

const (
	labelRecommendations = "🎬 Recommendations"
	labelMainMenu        = "🏠 Main menu"
	labelAdminPanel      = "⚙️ Admin panel"
)

func mainMenuKeyboard(admin bool) *tele.ReplyMarkup {
	if admin {
		return keyboard.ReplyButtons(
			[]string{labelRecommendations},
			[]string{labelMainMenu},
			[]string{labelAdminPanel},
		)
	}
	return keyboard.ReplyButtons(
		[]string{labelRecommendations},
		[]string{labelMainMenu},
	)
}

func categoryKeyboard() *tele.ReplyMarkup {
	var buttons []keyboard.Btn
	for _, cat := range catalog.Categories() {
		buttons = append(buttons, keyboard.Btn{
			Text: cat.Title(),
			Data: actions.Encode(actCategory, string(cat)),
		})
	}
	return keyboard.InlineColumn(buttons...)
}

// filterKeyboard builds the genre-filter screen: one toggle per available
// genre, the viewed toggle, then show/back controls.
func filterKeyboard(category catalog.Category, available []string, f *session.Filter) *tele.ReplyMarkup {
	var genreButtons []keyboard.Btn
	for _, g := range available {
		label := g
		if f.HasGenre(g) {
			label = "✅ " + g
		}
		genreButtons = append(genreButtons, keyboard.Btn{
			Text: label,
			Data: actions.Encode(actGenre, string(category), g),
		})
	}
	rows := keyboard.Chunk(genreButtons, 2)

	viewedLabel := "Only viewed"
	if f.ViewedOnly {
		viewedLabel = "✅ Only viewed"
	}
	rows = append(rows, []keyboard.Btn{{
		Text: viewedLabel,
		Data: actions.Encode(actGenre, string(category), viewedSentinel),
	}})
	rows = append(rows, []keyboard.Btn{
		{Text: "Show", Data: actions.Encode(actShow, string(category))},
		{Text: "⬅ Back", Data: actions.Encode(actBack, "recommendations")},
	})
	return keyboard.Inline(rows...)
}

// entryCardKeyboard builds per-entry actions: viewed toggle, optional link,
// and the admin row.
func entryCardKeyboard(category catalog.Category, e *catalog.Entry, viewed, admin bool) *tele.ReplyMarkup {
	id := strconv.FormatInt(e.ID, 10)

	viewedLabel := unviewedMark + " Mark viewed"
	if viewed {
		viewedLabel = viewedMark + " Viewed"
	}
	rows := [][]keyboard.Btn{{
		{Text: viewedLabel, Data: actions.Encode(actView, string(category), id)},
	}}
	if e.HasLink() {
		rows = append(rows, []keyboard.Btn{{Text: "Open link", URL: e.URL}})
	}
	if admin {
		rows = append(rows, []keyboard.Btn{
			{Text: "✏ Edit", Data: actions.Encode(actEdit, string(category), id)},
			{Text: "🗑 Delete", Data: actions.Encode(actDelete, string(category), id)},
		})
	}
	return keyboard.Inline(rows...)
}

// pageFooterKeyboard builds prev/next navigation and the back control.
func pageFooterKeyboard(category catalog.Category, page, totalPages int) *tele.ReplyMarkup {
	var navRow []keyboard.Btn
	if page > 0 {
		navRow = append(navRow, keyboard.Btn{
			Text: "⬅ Prev",
			Data: actions.Encode(actPage, string(category), fmt.Sprintf("%d", page-1)),
		})
	}
	if page < totalPages-1 {
		navRow = append(navRow, keyboard.Btn{
			Text: "Next ➡",
			Data: actions.Encode(actPage, string(category), fmt.Sprintf("%d", page+1)),
		})
	}

	rows := [][]keyboard.Btn{}
	if len(navRow) > 0 {
		rows = append(rows, navRow)
	}
	rows = append(rows, []keyboard.Btn{{
		Text: "⬅ Back to genres",
		Data: actions.Encode(actBack, "genres", string(category)),
	}})
	return keyboard.Inline(rows...)
}

func adminPanelKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineColumn(
		keyboard.Btn{Text: "➕ Add entry", Data: actions.Encode(actAdmin, "add_object")},
	)
}

func addTypeKeyboard() *tele.ReplyMarkup {
	var buttons []keyboard.Btn
	for _, cat := range catalog.Categories() {
		buttons = append(buttons, keyboard.Btn{
			Text: cat.Title(),
			Data: actions.Encode(actAddType, string(cat)),
		})
	}
	buttons = append(buttons, keyboard.Btn{Text: "❌ Cancel", Data: actions.Encode(actAddCancel)})
	return keyboard.InlineColumn(buttons...)
}

func addCancelKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineColumn(keyboard.Btn{Text: "❌ Cancel", Data: actions.Encode(actAddCancel)})
}

// editFieldKeyboard lists editable fields for the chooser screen.
func editFieldKeyboard() *tele.ReplyMarkup {
	var buttons []keyboard.Btn
	for _, f := range catalog.EditableFields() {
		buttons = append(buttons, keyboard.Btn{
			Text: f.Label(),
			Data: actions.Encode(actEditField, "obj_"+string(f)),
		})
	}
	rows := keyboard.Chunk(buttons, 2)
	rows = append(rows, []keyboard.Btn{{Text: "❌ Cancel", Data: actions.Encode(actEditCancel)}})
	return keyboard.Inline(rows...)
}

func editCancelKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineColumn(keyboard.Btn{Text: "❌ Cancel", Data: actions.Encode(actEditCancel)})
}
