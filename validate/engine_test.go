package validate

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/reliefwizard/field"
)

func testSchema() *field.Schema {
	return field.MustSchema(
		field.Definition{Name: "category", Kind: field.KindEnum, Label: "Category"},
		field.Definition{Name: "other", Kind: field.KindText, Label: "Other category"},
		field.Definition{Name: "description", Kind: field.KindText, Label: "Description"},
		field.Definition{Name: "needs", Kind: field.KindTags, Label: "Needs"},
		field.Definition{Name: "needsOther", Kind: field.KindText},
		field.Definition{Name: "phone", Kind: field.KindText, Label: "Phone"},
		field.Definition{Name: "email", Kind: field.KindText, Label: "Email"},
	)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[a-z]{2,}$`)

func testSteps() []Step {
	return []Step{
		{
			Index:    1,
			Title:    "Incident",
			Required: []string{"category", "description"},
			MinLength: map[string]int{
				"description": 20,
			},
			Conditional: []ConditionalRequirement{
				{TriggerField: "category", TriggerValue: "Other Natural", ThenRequired: "other"},
			},
		},
		{
			Index:    2,
			Title:    "Needs",
			Required: []string{"needs"},
			Conditional: []ConditionalRequirement{
				{TriggerField: "needs", TriggerValue: "Other", ThenRequired: "needsOther", Message: "Describe the other need"},
			},
		},
		{
			Index:    3,
			Title:    "Contact",
			Patterns: []PatternRule{{Field: "email", Pattern: emailPattern}},
			CrossField: []CrossFieldRule{
				AnyOf("contact", "Provide a phone number or an email address", "phone", "email"),
			},
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(testSchema(), testSteps()...)
	require.NoError(t, err)
	return engine
}

func snapshot(values map[string]any) field.Snapshot {
	return field.NewSnapshot(testSchema(), values)
}

func TestNewEngineChecksSteps(t *testing.T) {
	schema := testSchema()

	_, err := NewEngine(schema)
	assert.ErrorIs(t, err, ErrNoSteps)

	_, err = NewEngine(schema, Step{Index: 1}, Step{Index: 3})
	assert.ErrorIs(t, err, ErrStepIndex)

	_, err = NewEngine(schema, Step{Index: 1, Required: []string{"ghost"}})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = NewEngine(schema, Step{Index: 1, CrossField: []CrossFieldRule{AnyOf("phone", "x", "phone")}})
	assert.ErrorIs(t, err, ErrKeyConflict)

	_, err = NewEngine(schema, Step{Index: 1, MinLength: map[string]int{"needs": 1}})
	assert.ErrorIs(t, err, ErrLengthKind)

	_, err = NewEngine(schema, Step{Index: 1, Patterns: []PatternRule{{Field: "email"}}})
	assert.ErrorIs(t, err, ErrInvalidRule)

	engine, err := NewEngine(schema, Step{Index: 2}, Step{Index: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, engine.StepCount())
}

func TestRequiredField(t *testing.T) {
	engine := newTestEngine(t)
	result := engine.ValidateStep(1, snapshot(nil))
	assert.Equal(t, Result{
		"category":    "Category is required",
		"description": "Description is required",
	}, result)
	assert.False(t, engine.Valid(1, snapshot(nil)))
}

func TestMinLengthCountsTrimmedRunes(t *testing.T) {
	engine := newTestEngine(t)

	short := snapshot(map[string]any{"category": "Flood", "description": "   too short   "})
	assert.Equal(t, "Description must be at least 20 characters", engine.ValidateStep(1, short)["description"])

	exact := snapshot(map[string]any{"category": "Flood", "description": strings.Repeat("é", 20)})
	assert.True(t, engine.Valid(1, exact))
}

func TestRequiredIsNotReportedTwice(t *testing.T) {
	engine := newTestEngine(t)
	result := engine.ValidateStep(1, snapshot(map[string]any{"category": "Flood", "description": "  "}))
	assert.Equal(t, "Description is required", result["description"])
	assert.Len(t, result, 1)
}

func TestConditionalRequirement(t *testing.T) {
	engine := newTestEngine(t)
	base := map[string]any{"category": "Other Natural", "description": "The hillside slid onto the road"}

	result := engine.ValidateStep(1, snapshot(base))
	assert.Equal(t, Result{"other": "Other category is required"}, result)

	base["other"] = "Sinkhole"
	assert.True(t, engine.Valid(1, snapshot(base)))

	base["category"] = "Flood"
	base["other"] = ""
	assert.True(t, engine.Valid(1, snapshot(base)))
}

func TestConditionalOnTagsMatchesMembership(t *testing.T) {
	engine := newTestEngine(t)
	result := engine.ValidateStep(2, snapshot(map[string]any{"needs": []string{"Food", "Other"}}))
	assert.Equal(t, Result{"needsOther": "Describe the other need"}, result)

	assert.True(t, engine.Valid(2, snapshot(map[string]any{"needs": []string{"Food"}})))
}

func TestCrossFieldRule(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.ValidateStep(3, snapshot(nil))
	assert.Equal(t, Result{"contact": "Provide a phone number or an email address"}, result)

	assert.True(t, engine.Valid(3, snapshot(map[string]any{"phone": "+63 912 345 6789"})))
	assert.True(t, engine.Valid(3, snapshot(map[string]any{"email": "ana@example.org"})))
}

func TestPatternOnlyWhenFilled(t *testing.T) {
	engine := newTestEngine(t)
	result := engine.ValidateStep(3, snapshot(map[string]any{"phone": "1234567", "email": "not-an-email"}))
	assert.Equal(t, Result{"email": "Email has an invalid format"}, result)
}

func TestMatchFuncOverridesPattern(t *testing.T) {
	engine, err := NewEngine(testSchema(), Step{
		Index: 1,
		Patterns: []PatternRule{{
			Field:   "other",
			Match:   TimeLayout("2006-01-02"),
			Message: "Use a real calendar date",
		}},
	})
	require.NoError(t, err)

	for _, date := range []string{"2024-02-29", " 2025-12-31 "} {
		assert.True(t, engine.Valid(1, snapshot(map[string]any{"other": date})), date)
	}
	for _, date := range []string{"2024-13-45", "2023-02-29", "2024-1-5", "yesterday"} {
		assert.Equal(t, Result{"other": "Use a real calendar date"}, engine.ValidateStep(1, snapshot(map[string]any{"other": date})), date)
	}
	assert.True(t, engine.Valid(1, snapshot(nil)))
}

func TestUnknownStep(t *testing.T) {
	engine := newTestEngine(t)
	for _, idx := range []int{0, -1, 4} {
		result := engine.ValidateStep(idx, snapshot(nil))
		assert.Len(t, result, 1)
		assert.Contains(t, result, StepKey)
	}
}

func TestFirstInvalid(t *testing.T) {
	engine := newTestEngine(t)
	values := map[string]any{
		"category":    "Flood",
		"description": "Water is rising in the lower town",
		"needs":       []string{"Food"},
	}
	step, result := engine.FirstInvalid(snapshot(values))
	assert.Equal(t, 3, step)
	assert.Contains(t, result, "contact")

	values["phone"] = "0917 000 0000"
	step, result = engine.FirstInvalid(snapshot(values))
	assert.Equal(t, 0, step)
	assert.Nil(t, result)
}

func TestMissing(t *testing.T) {
	engine := newTestEngine(t)
	missing := engine.Missing(1, snapshot(map[string]any{"category": "Other Natural"}))
	names := make([]string, 0, len(missing))
	for _, f := range missing {
		names = append(names, f.Name)
		assert.True(t, f.Required)
	}
	assert.Equal(t, []string{"description", "other"}, names)
	assert.Equal(t, "/description", missing[0].Pointer)
	assert.Nil(t, engine.Missing(9, snapshot(nil)))
}

func TestResultIssues(t *testing.T) {
	result := Result{"contact": "Need a contact", "email": "Bad email"}
	issues := result.Issues(testSchema())
	require.Len(t, issues, 2)
	assert.Equal(t, "contact", issues[0].Key)
	assert.Equal(t, "", issues[0].Label)
	assert.Equal(t, "Email", issues[1].Label)
}

func TestStepIsCopiedOnConstruction(t *testing.T) {
	steps := testSteps()
	engine, err := NewEngine(testSchema(), steps...)
	require.NoError(t, err)
	steps[0].Required[0] = "other"

	step, ok := engine.Step(1)
	require.True(t, ok)
	assert.Equal(t, "category", step.Required[0])
}
