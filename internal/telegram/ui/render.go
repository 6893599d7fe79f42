// Package ui declares the outbound render instruction produced by menu and
// quiz handlers. Keeping it free of transport types lets the quiz flow be
// exercised in tests without a live bot.
package ui

// Button is one inline keyboard button. Exactly one of Token or URL is set:
// Token is echoed back by Telegram as callback data, URL opens a link.
type Button struct {
	Text  string
	Token string
	URL   string
}

// Render is a single outbound instruction: message text plus an optional
// two-dimensional button grid. Alert short-circuits the instruction into a
// callback popup instead of a message edit.
type Render struct {
	Text    string
	Buttons [][]Button
	Alert   string
}

// Btn builds a callback button.
func Btn(text, token string) Button {
	return Button{Text: text, Token: token}
}

// LinkBtn builds a URL button.
func LinkBtn(text, url string) Button {
	return Button{Text: text, URL: url}
}

// Row groups buttons into one keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// ChunkRows splits a flat button list into rows of up to n buttons.
func ChunkRows(buttons []Button, n int) [][]Button {
	if n <= 1 {
		rows := make([][]Button, 0, len(buttons))
		for _, b := range buttons {
			rows = append(rows, []Button{b})
		}
		return rows
	}
	var rows [][]Button
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}
