package patch

import (
	"context"

	"github.com/tbxark/reliefwizard/types"
)

const (
	OperationAdd     = "add"
	OperationRemove  = "remove"
	OperationReplace = "replace"
)

type Operation struct {
	Op    string `json:"op" jsonschema:"required,enum=add,enum=remove,enum=replace"`
	Path  string `json:"path" jsonschema:"required,description=RFC6901 pointer of the field to change"`
	Value any    `json:"value,omitempty" jsonschema:"description=New value for add and replace"`
}

type UpdateFormArgs struct {
	Ops []Operation `json:"ops" jsonschema:"required,description=Operations extracted from the user's text"`
}

// Request carries everything a Generator needs to propose changes to the
// current form values.
type Request struct {
	UserInput    string
	Values       map[string]any
	Schema       string
	AllowedPaths []string
	Missing      []types.FieldInfo
	Guidance     map[string]string
}

type Generator interface {
	GeneratePatch(ctx context.Context, req *Request) (*UpdateFormArgs, error)
}
