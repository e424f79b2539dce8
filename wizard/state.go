package wizard

import (
	"context"

	"github.com/tbxark/reliefwizard/submission"
	"github.com/tbxark/reliefwizard/types"
	"github.com/tbxark/reliefwizard/validate"
)

// State is the progress of one wizard session. CurrentStep runs from 1 to
// N for the data steps; N+1 is the confirmation step.
type State struct {
	Phase           types.Phase
	CurrentStep     int
	Errors          map[int]validate.Result
	Submitting      bool
	PendingAuthGate bool
	SubmitError     string
	Receipt         *submission.Receipt
}

func (s State) Clone() State {
	out := s
	out.Errors = make(map[int]validate.Result, len(s.Errors))
	for step, result := range s.Errors {
		out.Errors[step] = result.Clone()
	}
	if s.Receipt != nil {
		r := *s.Receipt
		out.Receipt = &r
	}
	return out
}

// StepErrors returns the stored result of the last Advance on step.
func (s State) StepErrors(step int) validate.Result {
	return s.Errors[step].Clone()
}

type sessionKeyContext struct{}

const defaultSessionKey = "default"

// WithSessionKey sets the key drafts are stored under.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

func SessionKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok && key != ""
}

func sessionKeyOrDefault(ctx context.Context) (string, bool) {
	if key, ok := SessionKeyFromContext(ctx); ok {
		return key, true
	}
	return defaultSessionKey, true
}
