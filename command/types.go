package command

import (
	"context"

	"github.com/tbxark/reliefwizard/types"
)

type Command string

const (
	Next   Command = "next"
	Back   Command = "back"
	Submit Command = "submit"
	Cancel Command = "cancel"
	Login  Command = "login"
	Save   Command = "save"
	Help   Command = "help"
	// None means the input is field data or chatter, not navigation.
	None Command = "none"
)

// Request is one line of reporter input together with the prompt it
// answers and where the wizard currently is.
type Request struct {
	Phase  types.Phase
	Step   int
	Prompt string
	Input  string
}

type Parser interface {
	ParseCommand(ctx context.Context, req *Request) (Command, error)
}
