// Package bot wires menus, quiz flow, leaderboard, feedback relay and admin
// broadcast into Telebot handlers.
package bot

import (
	"fmt"
	"strings"

	"fidelbot/internal/catalog"
	"fidelbot/internal/nav"
	"fidelbot/internal/storage"
	"fidelbot/internal/telegram/format"
	"fidelbot/internal/telegram/ui"
)

var medals = []string{"🥇", "🥈", "🥉"}

// Menus renders the navigation pages outside the quiz flow.
type Menus struct {
	catalog  *catalog.Catalog
	helpText string
	contact  string
}

// NewMenus builds the menu renderer. contact is the admin's public handle
// shown on the contact page.
func NewMenus(cat *catalog.Catalog, contact string) *Menus {
	return &Menus{
		catalog: cat,
		helpText: strings.Join([]string{
			"❓ *How it works*",
			"",
			"1. Pick your grade and subject from the menu.",
			"2. Choose a unit and start the quiz.",
			"3. Answer with the A-D buttons; each question shows an explanation.",
			"4. Finish the unit to add your score to the leaderboard.",
			"",
			"Send /start any time to return to the main menu.",
		}, "\n"),
		contact: contact,
	}
}

// Main renders the grade picker with the leaderboard, contact and help rows.
func (m *Menus) Main() ui.Render {
	grades := make([]ui.Button, 0, len(catalog.Grades))
	for _, g := range catalog.Grades {
		token := nav.MustEncode(nav.KindGrade, nav.State{Grade: g})
		grades = append(grades, ui.Btn(fmt.Sprintf("📚 Grade %d", g), token))
	}

	rows := ui.ChunkRows(grades, 2)
	rows = append(rows,
		ui.Row(ui.Btn("🏆 Leaderboard", string(nav.KindLeaderboard))),
		ui.Row(ui.Btn("📞 Contact", string(nav.KindContact)), ui.Btn("❓ Help", string(nav.KindHelp))),
	)

	return ui.Render{
		Text:    "👋 *Welcome to the Quiz Bot!*\n\nPick your grade to get started:",
		Buttons: rows,
	}
}

// Subjects renders the subject picker for a grade.
func (m *Menus) Subjects(grade int) ui.Render {
	subjects, ok := m.catalog.Subjects(grade)
	if !ok {
		return ui.Render{Alert: "Unknown grade, send /start to refresh the menu"}
	}

	buttons := make([]ui.Button, 0, len(subjects))
	for _, s := range subjects {
		token := nav.MustEncode(nav.KindUnits, nav.State{Grade: grade, Subject: s.Code})
		buttons = append(buttons, ui.Btn(s.Name, token))
	}

	rows := ui.ChunkRows(buttons, 2)
	rows = append(rows, ui.Row(ui.Btn("🔙 Back", string(nav.KindBackToMain))))

	return ui.Render{
		Text:    fmt.Sprintf("📚 *Grade %d*\n\nChoose a subject:", grade),
		Buttons: rows,
	}
}

// Units renders the unit picker for a grade/subject pair.
func (m *Menus) Units(grade int, code string) ui.Render {
	if !m.catalog.HasSubject(grade, code) {
		return ui.Render{Alert: "Unknown subject, send /start to refresh the menu"}
	}

	count := m.catalog.UnitCount(grade, code)
	buttons := make([]ui.Button, 0, count)
	for unit := 1; unit <= count; unit++ {
		token := nav.MustEncode(nav.KindPreQuiz, nav.State{Grade: grade, Subject: code, Unit: unit})
		buttons = append(buttons, ui.Btn(fmt.Sprintf("Unit %d", unit), token))
	}

	rows := ui.ChunkRows(buttons, 2)
	back := nav.MustEncode(nav.KindBackToGrade, nav.State{Grade: grade})
	rows = append(rows, ui.Row(ui.Btn("🔙 Back", back)))

	return ui.Render{
		Text: fmt.Sprintf("📖 *%s — Grade %d*\n\nChoose a unit:",
			m.catalog.SubjectName(grade, code), grade),
		Buttons: rows,
	}
}

// PreQuiz renders the confirmation page before a quiz starts.
func (m *Menus) PreQuiz(ref catalog.Ref) ui.Render {
	if !m.catalog.HasSubject(ref.Grade, ref.Subject) {
		return ui.Render{Alert: "Unknown subject, send /start to refresh the menu"}
	}

	start := nav.MustEncode(nav.KindStart, nav.State{Grade: ref.Grade, Subject: ref.Subject, Unit: ref.Unit})
	back := nav.MustEncode(nav.KindBackToUnits, nav.State{Grade: ref.Grade, Subject: ref.Subject})

	return ui.Render{
		Text: fmt.Sprintf("🎯 *%s — Grade %d, Unit %d*\n\nAnswer every question to add points to your leaderboard total. Ready?",
			m.catalog.SubjectName(ref.Grade, ref.Subject), ref.Grade, ref.Unit),
		Buttons: [][]ui.Button{
			{ui.Btn("🚀 Start Quiz", start)},
			{ui.Btn("🔙 Back", back)},
		},
	}
}

// Leaderboard renders the top scorers with medal markers.
func (m *Menus) Leaderboard(rows []storage.ScoreRow) ui.Render {
	var b strings.Builder
	b.WriteString("🏆 *Leaderboard — Top 10*\n\n")
	if len(rows) == 0 {
		b.WriteString("No scores yet. Complete a quiz to claim the first spot!")
	}
	for i, row := range rows {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		name := format.EscapeMarkdown(row.FullName)
		if name == "" {
			name = "Student"
		}
		fmt.Fprintf(&b, "%s %s — %d pts\n", rank, name, row.TotalScore)
	}

	return ui.Render{
		Text: b.String(),
		Buttons: [][]ui.Button{
			{ui.Btn("🔙 Back to Main Menu", string(nav.KindBackToMain))},
		},
	}
}

// Help renders the usage page.
func (m *Menus) Help() ui.Render {
	return ui.Render{
		Text: m.helpText,
		Buttons: [][]ui.Button{
			{ui.Btn("🔙 Back to Main Menu", string(nav.KindBackToMain))},
		},
	}
}

// Contact renders the contact page. Any plain message to the bot is also
// relayed to the admin as feedback; the URL button opens a direct chat.
func (m *Menus) Contact() ui.Render {
	text := "📞 *Contact*\n\nJust type your question or feedback here and it will be forwarded to the team."
	var rows [][]ui.Button
	if m.contact != "" {
		text += fmt.Sprintf("\n\nYou can also reach us directly: %s", format.EscapeMarkdown(m.contact))
		rows = append(rows, ui.Row(ui.LinkBtn("📩 Send Message", contactURL(m.contact))))
	}
	rows = append(rows, ui.Row(ui.Btn("🔙 Back to Main Menu", string(nav.KindBackToMain))))
	return ui.Render{
		Text:    text,
		Buttons: rows,
	}
}

// contactURL turns a public @handle into its t.me link. Values that already
// look like URLs pass through unchanged.
func contactURL(contact string) string {
	if strings.HasPrefix(contact, "http://") || strings.HasPrefix(contact, "https://") {
		return contact
	}
	return "https://t.me/" + strings.TrimPrefix(contact, "@")
}
