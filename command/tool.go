package command

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/reliefwizard/structured"
)

const (
	parseCommandToolName        = "parse_command_intent"
	parseCommandToolDescription = "Analyze reporter input and determine the navigation intent."
)

type parseCommandInput struct {
	Intent Command `json:"intent" jsonschema:"required,enum=next,enum=back,enum=submit,enum=cancel,enum=login,enum=save,enum=help,enum=none,description=The reporter's navigation intent"`
}

type ToolBasedCommandParser struct {
	chain *structured.Chain[*Request, parseCommandInput]
}

func NewToolBasedCommandParser(chatModel model.ToolCallingChatModel) (*ToolBasedCommandParser, error) {
	chain, err := structured.NewChain[*Request, parseCommandInput](
		chatModel,
		buildParseCommandPrompt,
		parseCommandToolName,
		parseCommandToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedCommandParser{chain: chain}, nil
}

func (p *ToolBasedCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	result, err := p.chain.Invoke(ctx, req)
	if err != nil {
		return None, err
	}
	if result == nil || result.Intent == "" {
		return None, fmt.Errorf("empty intent returned by %s", parseCommandToolName)
	}
	switch result.Intent {
	case Next, Back, Submit, Cancel, Login, Save, Help, None:
		return result.Intent, nil
	default:
		return None, fmt.Errorf("unknown intent %q returned by %s", result.Intent, parseCommandToolName)
	}
}

func buildParseCommandPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You are the assistant of a disaster report wizard. The reporter moves through numbered steps, then reaches a confirmation step where the report can be submitted.

Combine the assistant's last prompt with the reporter's answer to decide the intent. Do not judge from isolated words.

- next: the reporter wants to continue to the following step.
- back: the reporter wants to return to the previous step.
- submit: the reporter explicitly wants to send the report. Only valid in context of the confirmation step.
- cancel: the reporter explicitly abandons the report.
- login: the reporter wants to sign in.
- save: the reporter wants to keep a draft for later.
- help: the reporter asks how to use the wizard.
- none: the input describes the incident or answers a question; it is data, not navigation.

Call the '%s' tool with the result.`, parseCommandToolName)

	message := fmt.Sprintf("# Phase: %s\n# Step: %d\n# Assistant:\n%s\n# Reporter:\n%s", req.Phase, req.Step, req.Prompt, req.Input)
	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(message),
	}, nil
}
