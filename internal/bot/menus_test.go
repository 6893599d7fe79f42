package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fidelbot/internal/catalog"
	"fidelbot/internal/storage"
)

func testMenus() *Menus {
	return NewMenus(catalog.New(), "@quiz_support")
}

func TestMainMenuLayout(t *testing.T) {
	r := testMenus().Main()

	require.Len(t, r.Buttons, 4)
	assert.Equal(t, "grade_9", r.Buttons[0][0].Token)
	assert.Equal(t, "grade_10", r.Buttons[0][1].Token)
	assert.Equal(t, "grade_11", r.Buttons[1][0].Token)
	assert.Equal(t, "grade_12", r.Buttons[1][1].Token)
	assert.Equal(t, "leaderboard", r.Buttons[2][0].Token)
	assert.Equal(t, "contact", r.Buttons[3][0].Token)
	assert.Equal(t, "help", r.Buttons[3][1].Token)
}

func TestSubjectsMenuTokensAndBack(t *testing.T) {
	r := testMenus().Subjects(9)
	require.NotEmpty(t, r.Buttons)

	var tokens []string
	for _, row := range r.Buttons {
		for _, b := range row {
			tokens = append(tokens, b.Token)
		}
	}
	assert.Contains(t, tokens, "units_9_phys")
	assert.Contains(t, tokens, "units_9_citi")
	assert.Equal(t, "back_to_main", tokens[len(tokens)-1])
}

func TestSubjectsMenuUnknownGradeAlerts(t *testing.T) {
	r := testMenus().Subjects(13)
	assert.NotEmpty(t, r.Alert)
	assert.Empty(t, r.Buttons)
}

func TestUnitsMenuCountAndLayout(t *testing.T) {
	// Grade 9 English is configured with 10 units.
	r := testMenus().Units(9, "engl")

	var unitTokens []string
	for _, row := range r.Buttons[:len(r.Buttons)-1] {
		assert.LessOrEqual(t, len(row), 2)
		for _, b := range row {
			unitTokens = append(unitTokens, b.Token)
		}
	}
	require.Len(t, unitTokens, 10)
	assert.Equal(t, "prequiz_9_engl_1", unitTokens[0])
	assert.Equal(t, "prequiz_9_engl_10", unitTokens[9])

	back := r.Buttons[len(r.Buttons)-1][0]
	assert.Equal(t, "back_to_grade_9", back.Token)
}

func TestPreQuizLinksStartAndBack(t *testing.T) {
	r := testMenus().PreQuiz(catalog.Ref{Grade: 11, Subject: "agri", Unit: 4})

	require.Len(t, r.Buttons, 2)
	assert.Equal(t, "start_11_agri_4", r.Buttons[0][0].Token)
	assert.Equal(t, "back_to_units_11_agri", r.Buttons[1][0].Token)
}

func TestLeaderboardMedalsAndEscaping(t *testing.T) {
	rows := []storage.ScoreRow{
		{UserID: 1, FullName: "Alem_u*", TotalScore: 30},
		{UserID: 2, FullName: "Beth", TotalScore: 20},
		{UserID: 3, FullName: "Chala", TotalScore: 10},
		{UserID: 4, FullName: "Dawit", TotalScore: 5},
	}
	r := testMenus().Leaderboard(rows)

	assert.Contains(t, r.Text, "🥇")
	assert.Contains(t, r.Text, "🥈")
	assert.Contains(t, r.Text, "🥉")
	assert.Contains(t, r.Text, "4. Dawit — 5 pts")
	assert.Contains(t, r.Text, `Alem\_u\*`)
	assert.Equal(t, "back_to_main", r.Buttons[0][0].Token)
}

func TestLeaderboardEmpty(t *testing.T) {
	r := testMenus().Leaderboard(nil)
	assert.Contains(t, r.Text, "No scores yet")
}

func TestContactLinksAdminChat(t *testing.T) {
	r := testMenus().Contact()

	require.Len(t, r.Buttons, 2)
	link := r.Buttons[0][0]
	assert.Equal(t, "https://t.me/quiz_support", link.URL)
	assert.Empty(t, link.Token)
	assert.Equal(t, "back_to_main", r.Buttons[1][0].Token)
	assert.Contains(t, r.Text, `@quiz\_support`)
}

func TestContactWithoutHandle(t *testing.T) {
	r := NewMenus(catalog.New(), "").Contact()

	require.Len(t, r.Buttons, 1)
	assert.Equal(t, "back_to_main", r.Buttons[0][0].Token)
}

func TestContactURLPassthrough(t *testing.T) {
	assert.Equal(t, "https://t.me/quiz_support", contactURL("@quiz_support"))
	assert.Equal(t, "https://t.me/quiz_support", contactURL("quiz_support"))
	assert.Equal(t, "https://t.me/HelpDeskBot", contactURL("https://t.me/HelpDeskBot"))
}
