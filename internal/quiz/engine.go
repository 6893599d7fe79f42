// Package quiz drives the question/answer state machine. No state lives in
// this process between updates: every transition is reconstructed from the
// pressed button's token plus at most one read from the key/value store.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"fidelbot/internal/catalog"
	"fidelbot/internal/kvstore"
	"fidelbot/internal/logger"
	"fidelbot/internal/nav"
	"fidelbot/internal/telegram/ui"
	"log/slog"
)

// ErrQuizNotFound signals that no question set is published under the
// resolved catalog key. Shown to the user as an alert, never a crash.
var ErrQuizNotFound = errors.New("quiz: question set not found")

var optionLabels = []string{"A", "B", "C", "D"}

// Question is one entry of a published question set.
type Question struct {
	Prompt      string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// ScoreSink receives the finalized session score on completion.
type ScoreSink interface {
	Add(ctx context.Context, userID int64, fullName string, delta int) error
}

// NameSource resolves a user's current display name from the messaging side.
type NameSource interface {
	FullName(ctx context.Context, userID int64) (string, error)
}

// Engine renders quiz transitions. It is safe for concurrent use across
// users; concurrent updates for the same user race on the tally key (see
// the increment note on Answer).
type Engine struct {
	store  kvstore.Store
	scores ScoreSink
	names  NameSource
}

// NewEngine wires the engine's collaborators.
func NewEngine(store kvstore.Store, scores ScoreSink, names NameSource) *Engine {
	return &Engine{store: store, scores: scores, names: names}
}

// Start resets the user's running tally and renders the first question.
func (e *Engine) Start(ctx context.Context, userID int64, ref catalog.Ref) (ui.Render, error) {
	if err := e.store.Put(ctx, kvstore.TallyKey(userID), "0"); err != nil {
		return ui.Render{}, err
	}
	logger.SVCQuiz.Info("quiz started",
		slog.String("event", "quiz.start"),
		slog.Int64("user_id", userID),
		slog.String("key", ref.Key()),
	)
	return e.Question(ctx, userID, ref, 0)
}

// Question renders the question at index, or the completion summary when
// index falls outside [0, len): reaching the count exactly is the normal
// end of a run, anything negative is treated the same way defensively.
func (e *Engine) Question(ctx context.Context, userID int64, ref catalog.Ref, index int) (ui.Render, error) {
	questions, err := e.loadSet(ctx, ref)
	if err != nil {
		return ui.Render{}, err
	}
	if index >= len(questions) || index < 0 {
		return e.complete(ctx, userID, ref, len(questions))
	}

	q := questions[index]
	text := fmt.Sprintf("*Question %d/%d*\n\n%s\n\n", index+1, len(questions), q.Prompt)
	for i, opt := range q.Options {
		text += fmt.Sprintf("*%s.* %s\n", label(i), opt)
	}

	answers := make([]ui.Button, 0, len(q.Options))
	for i := range q.Options {
		token := nav.MustEncode(nav.KindAnswer, nav.State{
			Grade: ref.Grade, Subject: ref.Subject, Unit: ref.Unit,
			Question: index, Choice: i,
		})
		answers = append(answers, ui.Btn(label(i), token))
	}
	return ui.Render{
		Text:    text,
		Buttons: [][]ui.Button{answers},
	}, nil
}

// Answer evaluates a pressed option and renders feedback. A correct choice
// increments the running tally with a read-modify-write against the store;
// the increment is not atomic, so overlapping duplicate presses can lose an
// update. Accepted limitation, not an invariant.
//
// The sentinel choice nav.ChoiceNone re-renders the explanation without a
// correctness comparison and without touching the tally; it backs the
// "return to explanation" button of the review screen.
func (e *Engine) Answer(ctx context.Context, userID int64, ref catalog.Ref, index, choice int) (ui.Render, error) {
	questions, err := e.loadSet(ctx, ref)
	if err != nil {
		return ui.Render{}, err
	}
	if index < 0 || index >= len(questions) {
		return ui.Render{}, fmt.Errorf("quiz %s: question %d out of range", ref.Key(), index)
	}
	q := questions[index]

	var text string
	switch {
	case choice == nav.ChoiceNone:
		text = fmt.Sprintf("💡 *Explanation*\n\n%s", q.Explanation)
	case choice == q.Correct:
		if err := e.incrementTally(ctx, userID); err != nil {
			return ui.Render{}, err
		}
		text = fmt.Sprintf("✅ *Correct!*\n\n%s", q.Explanation)
	default:
		text = fmt.Sprintf("❌ *Incorrect!*\n\nThe correct answer was: *%s*\n\n%s",
			q.Options[q.Correct], q.Explanation)
	}

	next := nav.MustEncode(nav.KindNext, nav.State{
		Grade: ref.Grade, Subject: ref.Subject, Unit: ref.Unit, Question: index + 1,
	})
	seen := nav.MustEncode(nav.KindSeen, nav.State{
		Grade: ref.Grade, Subject: ref.Subject, Unit: ref.Unit, Question: index,
	})
	return ui.Render{
		Text: text,
		Buttons: [][]ui.Button{
			{ui.Btn("Next ➡️", next)},
			{ui.Btn("👁 Review Question", seen), ui.Btn("🏠 Home", string(nav.KindBackToMain))},
		},
	}, nil
}

// Review re-renders a question with the correct option marked. It never
// mutates the tally.
func (e *Engine) Review(ctx context.Context, ref catalog.Ref, index int) (ui.Render, error) {
	questions, err := e.loadSet(ctx, ref)
	if err != nil {
		return ui.Render{}, err
	}
	if index < 0 || index >= len(questions) {
		return ui.Render{}, fmt.Errorf("quiz %s: question %d out of range", ref.Key(), index)
	}
	q := questions[index]

	text := fmt.Sprintf("*Review Question %d*\n\n%s\n\n", index+1, q.Prompt)
	for i, opt := range q.Options {
		mark := "🔹"
		if i == q.Correct {
			mark = "✅"
		}
		text += fmt.Sprintf("%s *%s.* %s\n", mark, label(i), opt)
	}

	back := nav.MustEncode(nav.KindAnswer, nav.State{
		Grade: ref.Grade, Subject: ref.Subject, Unit: ref.Unit,
		Question: index, Choice: nav.ChoiceNone,
	})
	next := nav.MustEncode(nav.KindNext, nav.State{
		Grade: ref.Grade, Subject: ref.Subject, Unit: ref.Unit, Question: index + 1,
	})
	return ui.Render{
		Text: text,
		Buttons: [][]ui.Button{
			{ui.Btn("⬅️ Back to explanation", back)},
			{ui.Btn("Next ➡️", next)},
		},
	}, nil
}

// complete finalizes a run: merge a positive tally into the durable score,
// reset the tally, and render the summary.
func (e *Engine) complete(ctx context.Context, userID int64, ref catalog.Ref, total int) (ui.Render, error) {
	tally, err := e.readTally(ctx, userID)
	if err != nil {
		return ui.Render{}, err
	}

	if tally > 0 {
		fullName := e.displayName(ctx, userID)
		if err := e.scores.Add(ctx, userID, fullName, tally); err != nil {
			return ui.Render{}, err
		}
	}
	if err := e.store.Put(ctx, kvstore.TallyKey(userID), "0"); err != nil {
		return ui.Render{}, err
	}

	logger.SVCQuiz.Info("quiz completed",
		slog.String("event", "quiz.complete"),
		slog.Int64("user_id", userID),
		slog.String("key", ref.Key()),
		slog.Int("score", tally),
		slog.Int("count", total),
	)

	text := fmt.Sprintf("🎉 *Unit Completed!*\n\n🎯 Score: *%d/%d*\nCheck the leaderboard to see your standing! 🏆", tally, total)
	return ui.Render{
		Text: text,
		Buttons: [][]ui.Button{
			{ui.Btn("🔙 Back to Main Menu", string(nav.KindBackToMain))},
		},
	}, nil
}

func (e *Engine) loadSet(ctx context.Context, ref catalog.Ref) ([]Question, error) {
	key := kvstore.QuizKey(ref.Key())
	raw, ok, err := e.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, key)
	}
	var questions []Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("quiz %s: decode: %w", key, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrQuizNotFound, key)
	}
	return questions, nil
}

func (e *Engine) readTally(ctx context.Context, userID int64) (int, error) {
	raw, ok, err := e.store.Get(ctx, kvstore.TallyKey(userID))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		// A corrupt counter starts the count over instead of failing the run.
		return 0, nil
	}
	return n, nil
}

func (e *Engine) incrementTally(ctx context.Context, userID int64) error {
	tally, err := e.readTally(ctx, userID)
	if err != nil {
		return err
	}
	return e.store.Put(ctx, kvstore.TallyKey(userID), strconv.Itoa(tally+1))
}

func (e *Engine) displayName(ctx context.Context, userID int64) string {
	if e.names == nil {
		return "Student"
	}
	name, err := e.names.FullName(ctx, userID)
	if err != nil || name == "" {
		return "Student"
	}
	return name
}

func label(i int) string {
	if i < len(optionLabels) {
		return optionLabels[i]
	}
	return strconv.Itoa(i + 1)
}
