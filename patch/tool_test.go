package patch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/reliefwizard/types"
)

type fakeChatModel struct {
	args   string
	lastIn []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.lastIn = input
	return &schema.Message{
		Role:      schema.Assistant,
		ToolCalls: []schema.ToolCall{{Function: schema.FunctionCall{Name: updateFormToolName, Arguments: f.args}}},
	}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func (f *fakeChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return f, nil
}

func TestToolBasedPatchGenerator(t *testing.T) {
	cm := &fakeChatModel{args: `{"ops":[{"op":"replace","path":"/description","value":"Flood water up to the knees"}]}`}
	gen, err := NewToolBasedPatchGenerator(cm)
	require.NoError(t, err)

	out, err := gen.GeneratePatch(context.Background(), &Request{
		UserInput:    "the water is up to my knees",
		Values:       map[string]any{"description": ""},
		AllowedPaths: []string{"/description"},
		Missing:      []types.FieldInfo{{DisplayName: "Description", Pointer: "/description"}},
		Guidance:     map[string]string{"/description": "What happened"},
	})
	require.NoError(t, err)
	require.Len(t, out.Ops, 1)
	assert.Equal(t, "Flood water up to the knees", out.Ops[0].Value)

	require.Len(t, cm.lastIn, 2)
	user := cm.lastIn[1].Content
	for _, want := range []string{"# Allowed paths:", "- /description", "# Missing required fields:", "# Field guidance:", "the water is up to my knees"} {
		assert.True(t, strings.Contains(user, want), want)
	}
}

func TestToolBasedPatchGeneratorRejectsForeignPaths(t *testing.T) {
	cm := &fakeChatModel{args: `{"ops":[{"op":"add","path":"/admin","value":true}]}`}
	gen, err := NewToolBasedPatchGenerator(cm)
	require.NoError(t, err)

	_, err = gen.GeneratePatch(context.Background(), &Request{AllowedPaths: []string{"/description"}})
	assert.Error(t, err)
}
