// Package catalog maps navigation state to quiz content: which subjects a
// grade offers, how many units a subject has, and the storage key one unit's
// question set lives under. All of it is static configuration.
package catalog

import (
	"fmt"
	"strings"

	"fidelbot/internal/logger"
	"log/slog"
)

// DefaultUnitCount is used when a grade/subject pair is missing from the
// unit-count table. A miss is logged so a configuration gap does not stay
// silent.
const DefaultUnitCount = 6

// Grades lists the supported grade levels in menu order.
var Grades = []int{9, 10, 11, 12}

// Subject is one selectable subject of a grade.
type Subject struct {
	Name string
	Code string
}

// Ref addresses a single question set.
type Ref struct {
	Grade   int
	Subject string
	Unit    int
}

// Key returns the composite catalog key, e.g. "grade_9_phys_3".
func (r Ref) Key() string {
	return fmt.Sprintf("grade_%d_%s_%d", r.Grade, r.Subject, r.Unit)
}

// Catalog resolves grades to subjects and unit counts.
type Catalog struct {
	subjects   map[int][]Subject
	unitCounts map[string]int
}

var commonSubjects = []string{
	"Physics", "History", "Biology", "Economics",
	"Chemistry", "Geography", "English",
}

// New builds the static catalog for grades 9-12.
// Grades 9 and 10 carry Citizenship, grades 11 and 12 carry Agriculture.
func New() *Catalog {
	c := &Catalog{
		subjects:   make(map[int][]Subject, len(Grades)),
		unitCounts: make(map[string]int),
	}
	for _, grade := range Grades {
		names := append([]string(nil), commonSubjects...)
		if grade <= 10 {
			names = append(names, "Citizenship")
		} else {
			names = append(names, "Agriculture")
		}
		subjects := make([]Subject, 0, len(names))
		for _, name := range names {
			subjects = append(subjects, Subject{Name: name, Code: SubjectCode(name)})
		}
		c.subjects[grade] = subjects
	}
	for key, count := range unitCounts {
		c.unitCounts[key] = count
	}
	return c
}

// SubjectCode derives the short code used inside tokens and storage keys.
func SubjectCode(name string) string {
	code := strings.ToLower(strings.TrimSpace(name))
	if len(code) > 4 {
		code = code[:4]
	}
	return code
}

// Subjects returns the ordered subject list for a grade.
func (c *Catalog) Subjects(grade int) ([]Subject, bool) {
	subjects, ok := c.subjects[grade]
	return subjects, ok
}

// HasSubject reports whether grade offers the subject code.
func (c *Catalog) HasSubject(grade int, code string) bool {
	for _, s := range c.subjects[grade] {
		if s.Code == code {
			return true
		}
	}
	return false
}

// SubjectName resolves a subject code to its display name, falling back to
// the upper-cased code when unknown.
func (c *Catalog) SubjectName(grade int, code string) string {
	for _, s := range c.subjects[grade] {
		if s.Code == code {
			return s.Name
		}
	}
	return strings.ToUpper(code)
}

// UnitCount returns the number of units for a grade/subject pair, or
// DefaultUnitCount when the pair is absent from the table.
func (c *Catalog) UnitCount(grade int, code string) int {
	key := fmt.Sprintf("grade_%d_%s", grade, code)
	if count, ok := c.unitCounts[key]; ok {
		return count
	}
	logger.SVCQuiz.Warn("unit count fallback",
		slog.String("event", "catalog.miss"),
		slog.String("key", key),
		slog.Int("count", DefaultUnitCount),
	)
	return DefaultUnitCount
}

// unitCounts pins the configured units per grade/subject pair.
var unitCounts = map[string]int{
	// Grade 9
	"grade_9_phys": 6, "grade_9_hist": 7, "grade_9_biol": 5, "grade_9_econ": 6,
	"grade_9_chem": 6, "grade_9_geog": 7, "grade_9_engl": 10, "grade_9_citi": 5,

	// Grade 10
	"grade_10_phys": 6, "grade_10_hist": 7, "grade_10_biol": 6, "grade_10_econ": 6,
	"grade_10_chem": 6, "grade_10_geog": 7, "grade_10_engl": 10, "grade_10_citi": 5,

	// Grade 11
	"grade_11_phys": 8, "grade_11_hist": 8, "grade_11_biol": 7, "grade_11_econ": 7,
	"grade_11_chem": 8, "grade_11_geog": 8, "grade_11_engl": 12, "grade_11_agri": 6,

	// Grade 12
	"grade_12_phys": 8, "grade_12_hist": 8, "grade_12_biol": 7, "grade_12_econ": 7,
	"grade_12_chem": 8, "grade_12_geog": 8, "grade_12_engl": 12, "grade_12_agri": 6,
}
