package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectsPerGrade(t *testing.T) {
	c := New()

	for _, grade := range Grades {
		subjects, ok := c.Subjects(grade)
		require.True(t, ok, "grade %d", grade)
		assert.Len(t, subjects, 8)
		assert.Equal(t, Subject{Name: "Physics", Code: "phys"}, subjects[0])
	}

	nine, _ := c.Subjects(9)
	assert.Equal(t, "citi", nine[len(nine)-1].Code)
	twelve, _ := c.Subjects(12)
	assert.Equal(t, "agri", twelve[len(twelve)-1].Code)

	_, ok := c.Subjects(8)
	assert.False(t, ok)
}

func TestUnitCountConfiguredPairs(t *testing.T) {
	c := New()

	// Every grade/subject pair present in the catalog must resolve to a
	// configured count of at least one unit.
	for _, grade := range Grades {
		subjects, _ := c.Subjects(grade)
		for _, s := range subjects {
			assert.GreaterOrEqual(t, c.UnitCount(grade, s.Code), 1, "grade %d %s", grade, s.Code)
		}
	}

	assert.Equal(t, 10, c.UnitCount(9, "engl"))
	assert.Equal(t, 12, c.UnitCount(11, "engl"))
	assert.Equal(t, 5, c.UnitCount(10, "citi"))
}

func TestUnitCountFallback(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultUnitCount, c.UnitCount(9, "math"))
	assert.Equal(t, DefaultUnitCount, c.UnitCount(13, "phys"))
}

func TestRefKey(t *testing.T) {
	ref := Ref{Grade: 9, Subject: "phys", Unit: 3}
	assert.Equal(t, "grade_9_phys_3", ref.Key())
}

func TestSubjectCode(t *testing.T) {
	assert.Equal(t, "phys", SubjectCode("Physics"))
	assert.Equal(t, "citi", SubjectCode("Citizenship"))
	assert.Equal(t, "engl", SubjectCode(" English "))
}

func TestHasSubject(t *testing.T) {
	c := New()
	assert.True(t, c.HasSubject(9, "citi"))
	assert.False(t, c.HasSubject(11, "citi"))
	assert.True(t, c.HasSubject(11, "agri"))
	assert.Equal(t, "Physics", c.SubjectName(9, "phys"))
	assert.Equal(t, "MATH", c.SubjectName(9, "math"))
}
