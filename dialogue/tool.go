package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ToolBasedDialogueGenerator lets a chat model phrase the next prompt from
// the formatted wizard state.
type ToolBasedDialogueGenerator struct {
	Lang                 string
	systemPrompt         string
	systemPromptTemplate string
	chatModel            model.BaseChatModel
}

// DefaultDialogueSystemPromptTemplate may contain a single "%s" placeholder
// for the language.
const DefaultDialogueSystemPromptTemplate = `You are a calm, friendly assistant helping someone report a disaster. Guide them through the report one step at a time.

- If required fields are missing, ask for one or two of them in plain words.
- If there are validation errors, explain what to fix without blaming the reporter.
- On the confirmation step, summarize the report briefly and ask whether to submit.
- If the submission is held for sign-in, reassure them that their answers are kept and ask them to sign in.
- If the submission failed, say so honestly and offer to try again.
- Keep replies short; people may be in a stressful situation.
- Reply in %s.
`

type dialogueGeneratorOptions struct {
	lang                 string
	systemPrompt         string
	systemPromptTemplate string
}

type GeneratorOption func(*dialogueGeneratorOptions)

func WithDialogueLang(lang string) GeneratorOption {
	return func(o *dialogueGeneratorOptions) {
		o.lang = lang
	}
}

// WithDialogueSystemPrompt replaces the system prompt entirely.
func WithDialogueSystemPrompt(systemPrompt string) GeneratorOption {
	return func(o *dialogueGeneratorOptions) {
		o.systemPrompt = systemPrompt
	}
}

func WithDialogueSystemPromptTemplate(systemPromptTemplate string) GeneratorOption {
	return func(o *dialogueGeneratorOptions) {
		o.systemPromptTemplate = systemPromptTemplate
	}
}

func NewToolBasedDialogueGenerator(chatModel model.BaseChatModel, opts ...GeneratorOption) *ToolBasedDialogueGenerator {
	options := dialogueGeneratorOptions{
		lang:                 "English",
		systemPromptTemplate: DefaultDialogueSystemPromptTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.lang == "" {
		options.lang = "English"
	}
	return &ToolBasedDialogueGenerator{
		Lang:                 options.lang,
		systemPrompt:         options.systemPrompt,
		systemPromptTemplate: options.systemPromptTemplate,
		chatModel:            chatModel,
	}
}

func (g *ToolBasedDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	response, err := g.chatModel.Generate(ctx, g.buildDialoguePrompt(req))
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}

func (g *ToolBasedDialogueGenerator) GenerateDialogueStream(ctx context.Context, req *Request) (*schema.StreamReader[string], error) {
	stream, err := g.chatModel.Stream(ctx, g.buildDialoguePrompt(req))
	if err != nil {
		return nil, fmt.Errorf("LLM stream call failed: %w", err)
	}
	textStream := schema.StreamReaderWithConvert[*schema.Message, string](stream, func(message *schema.Message) (string, error) {
		return message.Content, nil
	})
	return textStream, nil
}

func (g *ToolBasedDialogueGenerator) buildDialoguePrompt(req *Request) []*schema.Message {
	systemPrompt := g.systemPrompt
	if systemPrompt == "" {
		tpl := g.systemPromptTemplate
		if tpl == "" {
			tpl = DefaultDialogueSystemPromptTemplate
		}
		if strings.Contains(tpl, "%s") {
			systemPrompt = fmt.Sprintf(tpl, g.Lang)
		} else {
			systemPrompt = tpl
		}
	}
	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(FormatRequest(req)),
	}
}
