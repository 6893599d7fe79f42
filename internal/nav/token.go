// Package nav encodes navigation state into the callback tokens Telegram
// round-trips on button presses. The bot is stateless between updates; a
// token plus at most one store read is everything a transition has to work
// with, so the codec is strict: every kind has a fixed positional field
// layout and anything that does not parse is rejected.
package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedToken is returned when a token cannot be decoded.
var ErrMalformedToken = errors.New("nav: malformed token")

// ChoiceNone marks an answer token that carries no new choice. It re-renders
// the explanation without a correctness comparison and without touching the
// tally.
const ChoiceNone = -1

// Kind tags a token variant.
type Kind string

const (
	KindGrade       Kind = "grade"
	KindUnits       Kind = "units"
	KindPreQuiz     Kind = "prequiz"
	KindStart       Kind = "start"
	KindNext        Kind = "next"
	KindAnswer      Kind = "answer"
	KindSeen        Kind = "seen"
	KindBackToGrade Kind = "back_to_grade"
	KindBackToUnits Kind = "back_to_units"
	KindBackToMain  Kind = "back_to_main"
	KindLeaderboard Kind = "leaderboard"
	KindContact     Kind = "contact"
	KindHelp        Kind = "help"
)

// State is the decoded navigation state. Only the fields the token's kind
// declares are meaningful; Choice defaults to ChoiceNone.
type State struct {
	Grade    int
	Subject  string
	Unit     int
	Question int
	Choice   int
}

type field int

const (
	fieldGrade field = iota
	fieldSubject
	fieldUnit
	fieldQuestion
	fieldChoice
)

// schema is the single source of truth for the wire layout of every kind.
// Order matters: decoding walks this list top to bottom and takes the first
// prefix match, so the back_to_* kinds must precede the shorter kinds they
// would otherwise be shadowed by (back_to_grade_9 vs grade_9).
var schema = []struct {
	kind   Kind
	fields []field
}{
	{KindBackToGrade, []field{fieldGrade}},
	{KindBackToUnits, []field{fieldGrade, fieldSubject}},
	{KindBackToMain, nil},
	{KindPreQuiz, []field{fieldGrade, fieldSubject, fieldUnit}},
	{KindStart, []field{fieldGrade, fieldSubject, fieldUnit}},
	{KindNext, []field{fieldGrade, fieldSubject, fieldUnit, fieldQuestion}},
	{KindAnswer, []field{fieldGrade, fieldSubject, fieldUnit, fieldQuestion, fieldChoice}},
	{KindSeen, []field{fieldGrade, fieldSubject, fieldUnit, fieldQuestion}},
	{KindGrade, []field{fieldGrade}},
	{KindUnits, []field{fieldGrade, fieldSubject}},
	{KindLeaderboard, nil},
	{KindContact, nil},
	{KindHelp, nil},
}

func layoutFor(kind Kind) ([]field, bool) {
	for _, entry := range schema {
		if entry.kind == kind {
			return entry.fields, true
		}
	}
	return nil, false
}

// Encode renders the state fields declared by kind into a token string.
func Encode(kind Kind, st State) (string, error) {
	layout, ok := layoutFor(kind)
	if !ok {
		return "", fmt.Errorf("nav: unknown kind %q", kind)
	}
	parts := make([]string, 0, len(layout)+1)
	parts = append(parts, string(kind))
	for _, f := range layout {
		switch f {
		case fieldGrade:
			parts = append(parts, strconv.Itoa(st.Grade))
		case fieldSubject:
			if st.Subject == "" || strings.Contains(st.Subject, "_") {
				return "", fmt.Errorf("nav: invalid subject %q", st.Subject)
			}
			parts = append(parts, st.Subject)
		case fieldUnit:
			parts = append(parts, strconv.Itoa(st.Unit))
		case fieldQuestion:
			parts = append(parts, strconv.Itoa(st.Question))
		case fieldChoice:
			parts = append(parts, strconv.Itoa(st.Choice))
		}
	}
	return strings.Join(parts, "_"), nil
}

// Decode parses a token into its kind and state. Field count and numeric
// parse failures yield ErrMalformedToken.
func Decode(token string) (Kind, State, error) {
	st := State{Choice: ChoiceNone}
	for _, entry := range schema {
		prefix := string(entry.kind)
		if len(entry.fields) == 0 {
			if token == prefix {
				return entry.kind, st, nil
			}
			continue
		}
		rest, ok := strings.CutPrefix(token, prefix+"_")
		if !ok {
			continue
		}
		parts := strings.Split(rest, "_")
		if len(parts) != len(entry.fields) {
			return "", State{}, fmt.Errorf("%w: %q wants %d fields, got %d",
				ErrMalformedToken, entry.kind, len(entry.fields), len(parts))
		}
		for i, f := range entry.fields {
			if err := assign(&st, f, parts[i]); err != nil {
				return "", State{}, fmt.Errorf("%w: %q field %d: %v", ErrMalformedToken, entry.kind, i, err)
			}
		}
		return entry.kind, st, nil
	}
	return "", State{}, fmt.Errorf("%w: unknown kind in %q", ErrMalformedToken, token)
}

func assign(st *State, f field, raw string) error {
	switch f {
	case fieldSubject:
		if raw == "" {
			return errors.New("empty subject")
		}
		st.Subject = raw
		return nil
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		switch f {
		case fieldGrade:
			st.Grade = n
		case fieldUnit:
			st.Unit = n
		case fieldQuestion:
			st.Question = n
		case fieldChoice:
			st.Choice = n
		}
		return nil
	}
}

// MustEncode is Encode for tokens built from trusted in-process state, where
// a layout mismatch is a programming error.
func MustEncode(kind Kind, st State) string {
	token, err := Encode(kind, st)
	if err != nil {
		panic(err)
	}
	return token
}
