package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fidelbot/internal/catalog"
	"fidelbot/internal/kvstore"
	"fidelbot/internal/nav"
)

type fakeScores struct {
	totals map[int64]int
	names  map[int64]string
	calls  int
}

func newFakeScores() *fakeScores {
	return &fakeScores{totals: map[int64]int{}, names: map[int64]string{}}
}

func (f *fakeScores) Add(_ context.Context, userID int64, fullName string, delta int) error {
	f.calls++
	f.totals[userID] += delta
	f.names[userID] = fullName
	return nil
}

type fakeNames struct {
	name string
	err  error
}

func (f fakeNames) FullName(context.Context, int64) (string, error) {
	return f.name, f.err
}

func seedQuiz(t *testing.T, store kvstore.Store, ref catalog.Ref, questions []Question) {
	t.Helper()
	raw, err := json.Marshal(questions)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), kvstore.QuizKey(ref.Key()), string(raw)))
}

func threeQuestions() []Question {
	return []Question{
		{Prompt: "What is force measured in?", Options: []string{"Newton", "Joule", "Watt", "Pascal"}, Correct: 0, Explanation: "Force is measured in newtons."},
		{Prompt: "Speed of light?", Options: []string{"3e6 m/s", "3e8 m/s", "3e10 m/s", "3e12 m/s"}, Correct: 1, Explanation: "Roughly 3x10^8 m/s in vacuum."},
		{Prompt: "Unit of power?", Options: []string{"Newton", "Joule", "Watt", "Volt"}, Correct: 2, Explanation: "Power is measured in watts."},
	}
}

func TestStartResetsTallyAndRendersFirstQuestion(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())
	require.NoError(t, store.Put(ctx, kvstore.TallyKey(77), "2"))

	eng := NewEngine(store, newFakeScores(), fakeNames{name: "Abebe K"})
	r, err := eng.Start(ctx, 77, ref)
	require.NoError(t, err)

	assert.Contains(t, r.Text, "Question 1/3")
	assert.Contains(t, r.Text, "What is force measured in?")
	require.Len(t, r.Buttons, 1)
	require.Len(t, r.Buttons[0], 4)
	assert.Equal(t, "answer_9_phys_3_0_0", r.Buttons[0][0].Token)
	assert.Equal(t, "answer_9_phys_3_0_3", r.Buttons[0][3].Token)

	tally, ok, err := store.Get(ctx, kvstore.TallyKey(77))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0", tally)
}

func TestQuestionRenderIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())

	eng := NewEngine(store, newFakeScores(), fakeNames{name: "Abebe K"})
	first, err := eng.Question(ctx, 77, ref, 1)
	require.NoError(t, err)
	second, err := eng.Question(ctx, 77, ref, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFullRunTallyAndScoreMerge(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	scores := newFakeScores()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())

	eng := NewEngine(store, scores, fakeNames{name: "Abebe K"})
	_, err := eng.Start(ctx, 77, ref)
	require.NoError(t, err)

	// Correct, wrong, correct.
	r, err := eng.Answer(ctx, 77, ref, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "Correct!")

	r, err = eng.Answer(ctx, 77, ref, 1, 3)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "Incorrect!")
	assert.Contains(t, r.Text, "3e8 m/s")

	_, err = eng.Answer(ctx, 77, ref, 2, 2)
	require.NoError(t, err)

	// Pressing Next on the last question lands past the end.
	r, err = eng.Question(ctx, 77, ref, 3)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "2/3")
	assert.Equal(t, 2, scores.totals[77])
	assert.Equal(t, "Abebe K", scores.names[77])

	tally, _, err := store.Get(ctx, kvstore.TallyKey(77))
	require.NoError(t, err)
	assert.Equal(t, "0", tally)
}

func TestScoreMergeIsAdditiveAcrossRuns(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	scores := newFakeScores()
	scores.totals[77] = 5
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())

	eng := NewEngine(store, scores, fakeNames{name: "Abebe K"})
	_, err := eng.Start(ctx, 77, ref)
	require.NoError(t, err)
	for i, q := range threeQuestions() {
		_, err = eng.Answer(ctx, 77, ref, i, q.Correct)
		require.NoError(t, err)
	}
	_, err = eng.Question(ctx, 77, ref, 3)
	require.NoError(t, err)

	assert.Equal(t, 8, scores.totals[77])
}

func TestZeroScoreSkipsMerge(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	scores := newFakeScores()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())

	eng := NewEngine(store, scores, fakeNames{name: "Abebe K"})
	_, err := eng.Start(ctx, 77, ref)
	require.NoError(t, err)
	_, err = eng.Question(ctx, 77, ref, 3)
	require.NoError(t, err)

	assert.Zero(t, scores.calls)
}

func TestSentinelChoiceLeavesTallyAlone(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())
	require.NoError(t, store.Put(ctx, kvstore.TallyKey(77), "1"))

	eng := NewEngine(store, newFakeScores(), fakeNames{name: "Abebe K"})
	r, err := eng.Answer(ctx, 77, ref, 0, nav.ChoiceNone)
	require.NoError(t, err)

	assert.Contains(t, r.Text, "Explanation")
	assert.NotContains(t, r.Text, "Correct!")
	assert.NotContains(t, r.Text, "Incorrect!")

	tally, _, err := store.Get(ctx, kvstore.TallyKey(77))
	require.NoError(t, err)
	assert.Equal(t, "1", tally)
}

func TestAnswerButtonsLinkForward(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())

	eng := NewEngine(store, newFakeScores(), fakeNames{name: "Abebe K"})
	r, err := eng.Answer(ctx, 77, ref, 1, 1)
	require.NoError(t, err)

	var tokens []string
	for _, row := range r.Buttons {
		for _, b := range row {
			tokens = append(tokens, b.Token)
		}
	}
	assert.Contains(t, tokens, "next_9_phys_3_2")
	assert.Contains(t, tokens, "seen_9_phys_3_1")
	assert.Contains(t, tokens, "back_to_main")
}

func TestReviewMarksCorrectOptionWithoutMutation(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())
	require.NoError(t, store.Put(ctx, kvstore.TallyKey(77), "1"))

	eng := NewEngine(store, newFakeScores(), fakeNames{name: "Abebe K"})
	r, err := eng.Review(ctx, ref, 1)
	require.NoError(t, err)

	lines := strings.Split(r.Text, "\n")
	var marked string
	for _, line := range lines {
		if strings.HasPrefix(line, "✅") {
			marked = line
		}
	}
	assert.Contains(t, marked, "3e8 m/s")

	// The way back re-enters the answer path with the sentinel choice.
	assert.Equal(t, "answer_9_phys_3_1_-1", r.Buttons[0][0].Token)

	tally, _, err := store.Get(ctx, kvstore.TallyKey(77))
	require.NoError(t, err)
	assert.Equal(t, "1", tally)
}

func TestMissingQuizReportsNotFound(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	eng := NewEngine(store, newFakeScores(), fakeNames{name: "Abebe K"})

	_, err := eng.Question(ctx, 77, catalog.Ref{Grade: 12, Subject: "chem", Unit: 9}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuizNotFound))
}

func TestCorruptTallyCountsFromZero(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	scores := newFakeScores()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())
	require.NoError(t, store.Put(ctx, kvstore.TallyKey(77), "garbage"))

	eng := NewEngine(store, scores, fakeNames{name: "Abebe K"})
	_, err := eng.Answer(ctx, 77, ref, 0, 0)
	require.NoError(t, err)

	tally, _, err := store.Get(ctx, kvstore.TallyKey(77))
	require.NoError(t, err)
	assert.Equal(t, "1", tally)
}

func TestNameFallbackWhenResolutionFails(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	scores := newFakeScores()
	ref := catalog.Ref{Grade: 9, Subject: "phys", Unit: 3}
	seedQuiz(t, store, ref, threeQuestions())

	eng := NewEngine(store, scores, fakeNames{err: errors.New("chat not found")})
	_, err := eng.Start(ctx, 77, ref)
	require.NoError(t, err)
	_, err = eng.Answer(ctx, 77, ref, 0, 0)
	require.NoError(t, err)
	_, err = eng.Question(ctx, 77, ref, 5)
	require.NoError(t, err)

	assert.Equal(t, "Student", scores.names[77])
}
