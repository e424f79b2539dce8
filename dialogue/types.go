package dialogue

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/reliefwizard/types"
)

// Request is everything a generator needs to phrase the next prompt.
type Request struct {
	Phase     types.Phase
	Step      int
	StepCount int
	StepTitle string

	Missing []types.FieldInfo
	Issues  []types.Issue
	// Summary lists label and value of every filled field; it is shown on
	// the confirmation step.
	Summary [][2]string

	PendingAuthGate bool
	SubmitError     string
	ReceiptID       string

	LastUserInput string
	PatchApplied  bool
}

type Generator interface {
	GenerateDialogue(ctx context.Context, req *Request) (string, error)
	GenerateDialogueStream(ctx context.Context, req *Request) (*schema.StreamReader[string], error)
}
