package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	full := State{Grade: 12, Subject: "chem", Unit: 8, Question: 4, Choice: 2}

	cases := []struct {
		kind Kind
		in   State
		want State
	}{
		{KindGrade, full, State{Grade: 12, Choice: ChoiceNone}},
		{KindUnits, full, State{Grade: 12, Subject: "chem", Choice: ChoiceNone}},
		{KindPreQuiz, full, State{Grade: 12, Subject: "chem", Unit: 8, Choice: ChoiceNone}},
		{KindStart, full, State{Grade: 12, Subject: "chem", Unit: 8, Choice: ChoiceNone}},
		{KindNext, full, State{Grade: 12, Subject: "chem", Unit: 8, Question: 4, Choice: ChoiceNone}},
		{KindAnswer, full, full},
		{KindSeen, full, State{Grade: 12, Subject: "chem", Unit: 8, Question: 4, Choice: ChoiceNone}},
		{KindBackToGrade, full, State{Grade: 12, Choice: ChoiceNone}},
		{KindBackToUnits, full, State{Grade: 12, Subject: "chem", Choice: ChoiceNone}},
		{KindBackToMain, full, State{Choice: ChoiceNone}},
		{KindLeaderboard, full, State{Choice: ChoiceNone}},
		{KindContact, full, State{Choice: ChoiceNone}},
		{KindHelp, full, State{Choice: ChoiceNone}},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			token, err := Encode(tc.kind, tc.in)
			require.NoError(t, err)

			kind, got, err := Decode(token)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeWireFormat(t *testing.T) {
	st := State{Grade: 9, Subject: "phys", Unit: 3, Question: 1, Choice: 2}

	assert.Equal(t, "grade_9", MustEncode(KindGrade, st))
	assert.Equal(t, "units_9_phys", MustEncode(KindUnits, st))
	assert.Equal(t, "prequiz_9_phys_3", MustEncode(KindPreQuiz, st))
	assert.Equal(t, "start_9_phys_3", MustEncode(KindStart, st))
	assert.Equal(t, "next_9_phys_3_1", MustEncode(KindNext, st))
	assert.Equal(t, "answer_9_phys_3_1_2", MustEncode(KindAnswer, st))
	assert.Equal(t, "seen_9_phys_3_1", MustEncode(KindSeen, st))
	assert.Equal(t, "back_to_grade_9", MustEncode(KindBackToGrade, st))
	assert.Equal(t, "back_to_units_9_phys", MustEncode(KindBackToUnits, st))
	assert.Equal(t, "back_to_main", MustEncode(KindBackToMain, st))
}

func TestDecodePrefixPrecedence(t *testing.T) {
	// back_to_grade_9 must not be swallowed by the generic grade kind.
	kind, st, err := Decode("back_to_grade_9")
	require.NoError(t, err)
	assert.Equal(t, KindBackToGrade, kind)
	assert.Equal(t, 9, st.Grade)

	kind, st, err = Decode("back_to_units_10_biol")
	require.NoError(t, err)
	assert.Equal(t, KindBackToUnits, kind)
	assert.Equal(t, 10, st.Grade)
	assert.Equal(t, "biol", st.Subject)

	kind, _, err = Decode("back_to_main")
	require.NoError(t, err)
	assert.Equal(t, KindBackToMain, kind)
}

func TestDecodeSentinelChoice(t *testing.T) {
	kind, st, err := Decode("answer_9_phys_3_1_-1")
	require.NoError(t, err)
	assert.Equal(t, KindAnswer, kind)
	assert.Equal(t, ChoiceNone, st.Choice)
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"bogus_9",
		"grade_",
		"grade_nine",
		"units_9",
		"units_9_phys_extra",
		"answer_9_phys_3_1",
		"next_9_phys_3_one",
		"seen_9_phys__1",
	}
	for _, token := range cases {
		t.Run(token, func(t *testing.T) {
			_, _, err := Decode(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestEncodeRejectsDelimiterInSubject(t *testing.T) {
	_, err := Encode(KindUnits, State{Grade: 9, Subject: "ph_ys"})
	assert.Error(t, err)
	_, err = Encode(KindUnits, State{Grade: 9})
	assert.Error(t, err)
}
