package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/reliefwizard/types"
)

// LocalDialogueGenerator phrases prompts from fixed templates. It never
// fails, so it is the usual last entry of a failback chain.
type LocalDialogueGenerator struct {
	MergeAllIssues bool
}

func (g *LocalDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	switch req.Phase {
	case types.PhaseCollecting:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Step %d of %d: %s\n", req.Step, req.StepCount, req.StepTitle)
		for _, issue := range req.Issues {
			sb.WriteString(issue.Message)
			sb.WriteString("\n")
			if !g.MergeAllIssues {
				return sb.String(), nil
			}
		}
		if len(req.Issues) == 0 {
			for _, f := range req.Missing {
				if f.Description != "" {
					fmt.Fprintf(&sb, "Please provide %s (%s)\n", f.DisplayName, f.Description)
				} else {
					fmt.Fprintf(&sb, "Please provide %s\n", f.DisplayName)
				}
				if !g.MergeAllIssues {
					return sb.String(), nil
				}
			}
		}
		if len(req.Issues) == 0 && len(req.Missing) == 0 {
			sb.WriteString("Type next to continue.\n")
		}
		return sb.String(), nil

	case types.PhaseConfirming:
		var sb strings.Builder
		if s := formatSummarySection(req.Summary); s != "" {
			sb.WriteString(s)
		}
		switch {
		case req.PendingAuthGate:
			sb.WriteString("Please sign in to submit your report. Your answers are kept.\n")
		case req.SubmitError != "":
			fmt.Fprintf(&sb, "Submitting failed: %s\nType submit to try again.\n", req.SubmitError)
		default:
			sb.WriteString("Please review your report and type submit to send it.\n")
		}
		return sb.String(), nil

	case types.PhaseSubmitted:
		if req.ReceiptID != "" {
			return fmt.Sprintf("Your report was submitted. Reference: %s", req.ReceiptID), nil
		}
		return "Your report was submitted.", nil

	case types.PhaseCancelled:
		return "Report cancelled.", nil

	default:
		return "Please continue filling in the report.", nil
	}
}

func (g *LocalDialogueGenerator) GenerateDialogueStream(ctx context.Context, req *Request) (*schema.StreamReader[string], error) {
	message, err := g.GenerateDialogue(ctx, req)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]string{message}), nil
}

var ErrNoGenerator = errors.New("no dialogue generator configured")

type FailbackDialogueGenerator struct {
	generators []Generator
}

func NewFailbackDialogueGenerator(generators ...Generator) *FailbackDialogueGenerator {
	return &FailbackDialogueGenerator{generators: generators}
}

func (g *FailbackDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	lastErr := ErrNoGenerator
	for _, generator := range g.generators {
		message, err := generator.GenerateDialogue(ctx, req)
		if err == nil {
			return message, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all dialogue generators failed: %w", lastErr)
}

func (g *FailbackDialogueGenerator) GenerateDialogueStream(ctx context.Context, req *Request) (*schema.StreamReader[string], error) {
	lastErr := ErrNoGenerator
	for _, generator := range g.generators {
		stream, err := generator.GenerateDialogueStream(ctx, req)
		if err == nil {
			return stream, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all dialogue generators failed: %w", lastErr)
}

var (
	_ Generator = (*LocalDialogueGenerator)(nil)
	_ Generator = (*FailbackDialogueGenerator)(nil)
	_ Generator = (*ToolBasedDialogueGenerator)(nil)
)
