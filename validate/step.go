package validate

import (
	"regexp"
	"time"

	"github.com/tbxark/reliefwizard/field"
)

// ConditionalRequirement makes ThenRequired mandatory while TriggerField
// equals TriggerValue. For tag sets the trigger matches when the set
// contains TriggerValue.
type ConditionalRequirement struct {
	TriggerField string
	TriggerValue string
	ThenRequired string
	Message      string
}

// PatternRule checks the format of a non-empty text field. Match, when
// set, is used instead of Pattern.
type PatternRule struct {
	Field   string
	Pattern *regexp.Regexp
	Match   func(text string) bool
	Message string
}

func (p PatternRule) matches(text string) bool {
	if p.Match != nil {
		return p.Match(text)
	}
	return p.Pattern.MatchString(text)
}

// TimeLayout matches text that time.Parse accepts for layout, so calendar
// dates like 2024-02-30 fail where a digit pattern would pass.
func TimeLayout(layout string) func(text string) bool {
	return func(text string) bool {
		_, err := time.Parse(layout, text)
		return err == nil
	}
}

// CrossFieldRule is a predicate over several fields. A failure is reported
// under Key, which must not be a field name, so it renders as one message.
type CrossFieldRule struct {
	Key     string
	Message string
	Fields  []string
	Check   func(snapshot field.Snapshot) bool
}

// AnyOf requires at least one of fields to be non-empty.
func AnyOf(key, message string, fields ...string) CrossFieldRule {
	names := append([]string(nil), fields...)
	return CrossFieldRule{
		Key:     key,
		Message: message,
		Fields:  names,
		Check: func(snapshot field.Snapshot) bool {
			for _, name := range names {
				if !snapshot.IsEmpty(name) {
					return true
				}
			}
			return false
		},
	}
}

type Step struct {
	Index       int
	Title       string
	Required    []string
	MinLength   map[string]int
	MaxLength   map[string]int
	Patterns    []PatternRule
	Conditional []ConditionalRequirement
	CrossField  []CrossFieldRule
}

// Fields lists every field the step touches, in declaration order and
// without duplicates.
func (s Step) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range s.Required {
		add(name)
	}
	for _, c := range s.Conditional {
		add(c.TriggerField)
		add(c.ThenRequired)
	}
	for _, p := range s.Patterns {
		add(p.Field)
	}
	for _, r := range s.CrossField {
		for _, name := range r.Fields {
			add(name)
		}
	}
	for _, name := range sortedKeys(s.MinLength) {
		add(name)
	}
	for _, name := range sortedKeys(s.MaxLength) {
		add(name)
	}
	return out
}
