package patch

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/reliefwizard/structured"
)

const (
	updateFormToolName        = "update_form"
	updateFormToolDescription = "Generate RFC6902 JSON Patch operations that fill report fields from the reporter's free text. Only include facts the reporter stated explicitly."
)

// ToolBasedPatchGenerator asks a tool-calling chat model to turn a free-text
// account of an incident into field updates.
type ToolBasedPatchGenerator struct {
	chain *structured.Chain[*Request, UpdateFormArgs]
}

func NewToolBasedPatchGenerator(chatModel model.ToolCallingChatModel) (*ToolBasedPatchGenerator, error) {
	chain, err := structured.NewChain[*Request, UpdateFormArgs](
		chatModel,
		buildPatchPrompt,
		updateFormToolName,
		updateFormToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedPatchGenerator{chain: chain}, nil
}

func (g *ToolBasedPatchGenerator) GeneratePatch(ctx context.Context, req *Request) (*UpdateFormArgs, error) {
	result, err := g.chain.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if result == nil {
		return &UpdateFormArgs{}, nil
	}

	allowed := make(map[string]bool, len(req.AllowedPaths))
	for _, path := range req.AllowedPaths {
		allowed[path] = true
	}
	if err := ValidatePatchOperations(result.Ops, allowed); err != nil {
		return nil, fmt.Errorf("generated patches failed validation: %w", err)
	}
	return result, nil
}

func buildPatchPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	valuesJSON, err := sonic.MarshalString(req.Values)
	if err != nil {
		return nil, fmt.Errorf("marshal form values: %w", err)
	}
	systemPrompt := fmt.Sprintf("You are an intake assistant for disaster reports. Read the reporter's text and call %s with RFC6902 JSON Patch operations. Rules: only use information the reporter stated; use replace for fields that already hold a value and add otherwise; only use allowed paths; if nothing can be extracted return an empty ops list.", updateFormToolName)

	sections := []string{
		fmt.Sprintf("# Form values JSON:\n%s", valuesJSON),
		fmt.Sprintf("# Allowed paths:\n%s", formatAllowedPaths(req.AllowedPaths)),
	}
	if req.Schema != "" {
		sections = append(sections, fmt.Sprintf("# Report schema JSON:\n%s", req.Schema))
	}
	if s := formatMissingFieldsSection(req.Missing); s != "" {
		sections = append(sections, s)
	}
	if s := formatFieldGuidanceSection(req.Guidance); s != "" {
		sections = append(sections, s)
	}
	if req.UserInput != "" {
		sections = append(sections, fmt.Sprintf("# Reporter text:\n%s", req.UserInput))
	}

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}, nil
}
