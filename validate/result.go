package validate

import (
	"sort"

	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/types"
)

// StepKey holds the error reported for a step index the engine does not know.
const StepKey = "_step"

// Result maps a field name or cross-field rule key to a message. An empty
// result means the step is valid.
type Result map[string]string

func (r Result) Valid() bool {
	return len(r) == 0
}

func (r Result) Keys() []string {
	return sortedKeys(r)
}

func (r Result) Clone() Result {
	if r == nil {
		return nil
	}
	out := make(Result, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Issues lists the result in key order with display labels from schema.
func (r Result) Issues(schema *field.Schema) []types.Issue {
	issues := make([]types.Issue, 0, len(r))
	for _, key := range r.Keys() {
		issue := types.Issue{Key: key, Message: r[key]}
		if def, ok := schema.Lookup(key); ok {
			issue.Label = def.DisplayName()
		}
		issues = append(issues, issue)
	}
	return issues
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
