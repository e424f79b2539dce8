package validate

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/types"
)

var (
	ErrNoSteps      = errors.New("no steps defined")
	ErrStepIndex    = errors.New("step indices must be contiguous from 1")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidRule  = errors.New("invalid rule")
	ErrKeyConflict  = errors.New("cross-field key conflicts with a field name")
	ErrLengthKind   = errors.New("length rules apply to text and enum fields only")
)

// Engine evaluates the rule group of each step against a snapshot. It holds
// no mutable state; every method is a pure function of its arguments.
type Engine struct {
	schema *field.Schema
	steps  []Step
}

func NewEngine(schema *field.Schema, steps ...Step) (*Engine, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	for i, step := range sorted {
		if step.Index != i+1 {
			return nil, fmt.Errorf("%w: got %d at position %d", ErrStepIndex, step.Index, i+1)
		}
		if err := checkStep(schema, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", step.Index, err)
		}
		sorted[i] = cloneStep(step)
	}
	return &Engine{schema: schema, steps: sorted}, nil
}

func checkStep(schema *field.Schema, step Step) error {
	for _, name := range step.Fields() {
		if !schema.Has(name) {
			return fmt.Errorf("%w %q", ErrUnknownField, name)
		}
	}
	for _, lengths := range []map[string]int{step.MinLength, step.MaxLength} {
		for name := range lengths {
			def, _ := schema.Lookup(name)
			if def.Kind != field.KindText && def.Kind != field.KindEnum {
				return fmt.Errorf("%w: %s", ErrLengthKind, name)
			}
		}
	}
	for _, p := range step.Patterns {
		if p.Pattern == nil && p.Match == nil {
			return fmt.Errorf("%w: format rule for %s has no pattern", ErrInvalidRule, p.Field)
		}
	}
	for _, c := range step.Conditional {
		if c.TriggerField == "" || c.ThenRequired == "" {
			return fmt.Errorf("%w: conditional requirement needs trigger and target", ErrInvalidRule)
		}
	}
	keys := make(map[string]bool)
	for _, r := range step.CrossField {
		if r.Key == "" || r.Check == nil {
			return fmt.Errorf("%w: cross-field rule needs a key and a check", ErrInvalidRule)
		}
		if schema.Has(r.Key) || r.Key == StepKey {
			return fmt.Errorf("%w: %s", ErrKeyConflict, r.Key)
		}
		if keys[r.Key] {
			return fmt.Errorf("%w: duplicate cross-field key %s", ErrInvalidRule, r.Key)
		}
		keys[r.Key] = true
	}
	return nil
}

func cloneStep(s Step) Step {
	s.Required = slices.Clone(s.Required)
	s.Patterns = slices.Clone(s.Patterns)
	s.Conditional = slices.Clone(s.Conditional)
	s.CrossField = slices.Clone(s.CrossField)
	if s.MinLength != nil {
		m := make(map[string]int, len(s.MinLength))
		for k, v := range s.MinLength {
			m[k] = v
		}
		s.MinLength = m
	}
	if s.MaxLength != nil {
		m := make(map[string]int, len(s.MaxLength))
		for k, v := range s.MaxLength {
			m[k] = v
		}
		s.MaxLength = m
	}
	return s
}

func (e *Engine) Schema() *field.Schema {
	return e.schema
}

func (e *Engine) StepCount() int {
	return len(e.steps)
}

func (e *Engine) Step(index int) (Step, bool) {
	if index < 1 || index > len(e.steps) {
		return Step{}, false
	}
	return cloneStep(e.steps[index-1]), true
}

// ValidateStep runs the rule group of one step:
// required fields, then length and format of filled fields, then
// conditional requirements, then cross-field rules. Each field reports at
// most one message.
func (e *Engine) ValidateStep(index int, snapshot field.Snapshot) Result {
	result := Result{}
	if index < 1 || index > len(e.steps) {
		result[StepKey] = fmt.Sprintf("unknown step %d", index)
		return result
	}
	step := e.steps[index-1]

	for _, name := range step.Required {
		if snapshot.IsEmpty(name) {
			result[name] = e.requiredMessage(name)
		}
	}

	for _, name := range sortedKeys(step.MinLength) {
		if _, reported := result[name]; reported || snapshot.IsEmpty(name) {
			continue
		}
		if n := textLength(snapshot, name); n < step.MinLength[name] {
			result[name] = fmt.Sprintf("%s must be at least %d characters", e.label(name), step.MinLength[name])
		}
	}
	for _, name := range sortedKeys(step.MaxLength) {
		if _, reported := result[name]; reported || snapshot.IsEmpty(name) {
			continue
		}
		if n := textLength(snapshot, name); n > step.MaxLength[name] {
			result[name] = fmt.Sprintf("%s must be at most %d characters", e.label(name), step.MaxLength[name])
		}
	}
	for _, p := range step.Patterns {
		if _, reported := result[p.Field]; reported || snapshot.IsEmpty(p.Field) {
			continue
		}
		if !p.matches(field.TrimText(snapshot.String(p.Field))) {
			msg := p.Message
			if msg == "" {
				msg = fmt.Sprintf("%s has an invalid format", e.label(p.Field))
			}
			result[p.Field] = msg
		}
	}

	for _, c := range step.Conditional {
		if !triggered(snapshot, c) {
			continue
		}
		if _, reported := result[c.ThenRequired]; reported {
			continue
		}
		if snapshot.IsEmpty(c.ThenRequired) {
			msg := c.Message
			if msg == "" {
				msg = e.requiredMessage(c.ThenRequired)
			}
			result[c.ThenRequired] = msg
		}
	}

	for _, r := range step.CrossField {
		if !r.Check(snapshot) {
			result[r.Key] = r.Message
		}
	}
	return result
}

// Valid reports whether ValidateStep would return an empty result.
func (e *Engine) Valid(index int, snapshot field.Snapshot) bool {
	return e.ValidateStep(index, snapshot).Valid()
}

// FirstInvalid returns the first step whose rules fail together with its
// result, or 0 and nil when every step passes.
func (e *Engine) FirstInvalid(snapshot field.Snapshot) (int, Result) {
	for i := range e.steps {
		if result := e.ValidateStep(i+1, snapshot); !result.Valid() {
			return i + 1, result
		}
	}
	return 0, nil
}

// Missing lists the required fields of a step that are still empty,
// including fields required by an active conditional requirement.
func (e *Engine) Missing(index int, snapshot field.Snapshot) []types.FieldInfo {
	step, ok := e.Step(index)
	if !ok {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] && snapshot.IsEmpty(name) {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range step.Required {
		add(name)
	}
	for _, c := range step.Conditional {
		if triggered(snapshot, c) {
			add(c.ThenRequired)
		}
	}
	fields := make([]types.FieldInfo, 0, len(names))
	for _, name := range names {
		def, _ := e.schema.Lookup(name)
		fields = append(fields, def.Info(true))
	}
	return fields
}

func (e *Engine) label(name string) string {
	if def, ok := e.schema.Lookup(name); ok {
		return def.DisplayName()
	}
	return name
}

func (e *Engine) requiredMessage(name string) string {
	return fmt.Sprintf("%s is required", e.label(name))
}

func textLength(snapshot field.Snapshot, name string) int {
	return utf8.RuneCountInString(field.TrimText(snapshot.String(name)))
}

func triggered(snapshot field.Snapshot, c ConditionalRequirement) bool {
	switch v := snapshot.Value(c.TriggerField).(type) {
	case []string:
		for _, tag := range v {
			if field.TrimText(tag) == c.TriggerValue {
				return true
			}
		}
		return false
	case string:
		return field.TrimText(v) == c.TriggerValue
	case bool:
		return strconv.FormatBool(v) == c.TriggerValue
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64) == c.TriggerValue
	default:
		return false
	}
}
