// Package keyboard converts render instructions into Telebot reply markup.
package keyboard

import (
	tele "gopkg.in/telebot.v4"

	"fidelbot/internal/telegram/ui"
)

// FromRender converts a render's button grid into an inline keyboard.
// Renders without buttons yield a nil markup.
func FromRender(r ui.Render) *tele.ReplyMarkup {
	if len(r.Buttons) == 0 {
		return nil
	}
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(r.Buttons))
	for _, row := range r.Buttons {
		btns := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tele.InlineButton{
				Text: b.Text,
				Data: b.Token,
				URL:  b.URL,
			})
		}
		inline = append(inline, btns)
	}
	markup.InlineKeyboard = inline
	return markup
}
