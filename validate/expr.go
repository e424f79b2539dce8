package validate

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
	"github.com/tbxark/reliefwizard/field"
)

const exprVariable = "fields"

var (
	exprEnvOnce sync.Once
	exprEnv     *cel.Env
	exprEnvErr  error
)

func env() (*cel.Env, error) {
	exprEnvOnce.Do(func() {
		exprEnv, exprEnvErr = cel.NewEnv(
			ext.Strings(),
			cel.Variable(exprVariable, cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return exprEnv, exprEnvErr
}

// ExprRule builds a cross-field rule from a CEL expression evaluated against
// the trimmed field values, exposed as the map "fields". Locations appear as
// maps with address, lat and lng keys. Example:
//
//	fields.contactPhone != "" || fields.contactEmail != ""
func ExprRule(key, message, expression string, fields ...string) (CrossFieldRule, error) {
	e, err := env()
	if err != nil {
		return CrossFieldRule{}, fmt.Errorf("failed to create CEL env: %w", err)
	}
	ast, issues := e.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return CrossFieldRule{}, fmt.Errorf("CEL compile error in rule %s: %w", key, issues.Err())
	}
	prg, err := e.Program(ast)
	if err != nil {
		return CrossFieldRule{}, fmt.Errorf("CEL program error in rule %s: %w", key, err)
	}
	return CrossFieldRule{
		Key:     key,
		Message: message,
		Fields:  append([]string(nil), fields...),
		Check: func(snapshot field.Snapshot) bool {
			out, _, err := prg.Eval(map[string]any{exprVariable: trimmedValues(snapshot)})
			if err != nil {
				slog.Debug("cross-field expression failed", "rule", key, "error", err)
				return false
			}
			ok, isBool := out.Value().(bool)
			return isBool && ok
		},
	}, nil
}

// MustExprRule is ExprRule for statically declared rules.
func MustExprRule(key, message, expression string, fields ...string) CrossFieldRule {
	rule, err := ExprRule(key, message, expression, fields...)
	if err != nil {
		panic(err)
	}
	return rule
}

func trimmedValues(snapshot field.Snapshot) map[string]any {
	values := snapshot.Plain()
	for k, v := range values {
		switch val := v.(type) {
		case string:
			values[k] = field.TrimText(val)
		case []string:
			tags := make([]string, 0, len(val))
			for _, tag := range val {
				if t := field.TrimText(tag); t != "" {
					tags = append(tags, t)
				}
			}
			values[k] = tags
		}
	}
	return values
}
