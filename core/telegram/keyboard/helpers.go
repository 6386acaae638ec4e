// Package keyboard builds telebot reply markups from plain button
// descriptions. Inline buttons carry raw callback data so payload routing
// stays in one place.
package keyboard

import tele "gopkg.in/telebot.v4"

// Btn describes an inline button. Exactly one of Data or URL should be set.
type Btn struct {
	Text string
	Data string
	URL  string
}

// RemoveKeyboard returns a markup that hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a persistent reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Inline builds an inline keyboard from rows of Btn.
func Inline(rows ...[]Btn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, b := range row {
			r[j] = tele.InlineButton{Text: b.Text, Data: b.Data, URL: b.URL}
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// InlineColumn places each button on its own row.
func InlineColumn(buttons ...Btn) *tele.ReplyMarkup {
	rows := make([][]Btn, len(buttons))
	for i, b := range buttons {
		rows[i] = []Btn{b}
	}
	return Inline(rows...)
}

// Chunk splits a flat list of buttons into rows with up to n buttons per row.
func Chunk(buttons []Btn, n int) [][]Btn {
	if n <= 1 {
		rows := make([][]Btn, len(buttons))
		for i, b := range buttons {
			rows[i] = []Btn{b}
		}
		return rows
	}
	var rows [][]Btn
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}
