package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/tbxark/reliefwizard/command"
	"github.com/tbxark/reliefwizard/dialogue"
	"github.com/tbxark/reliefwizard/disaster"
	"github.com/tbxark/reliefwizard/patch"
	"github.com/tbxark/reliefwizard/submission"
	"github.com/tbxark/reliefwizard/wizard"
)

const draftTTL = 7 * 24 * time.Hour

func runCmd() *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fill in a report interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wizard.WithSessionKey(cmd.Context(), session)
			app, err := newApp(ctx, config)
			if err != nil {
				return err
			}
			return app.loop(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&session, "session", "default", "draft session key")
	return cmd
}

type app struct {
	config    *Config
	wizard    *wizard.Wizard
	parser    command.Parser
	dialogue  dialogue.Generator
	autofill  patch.Generator
	transport submission.Transport
	schema    string

	authenticated bool
	lastPrompt    string
}

func newApp(ctx context.Context, config *Config) (*app, error) {
	var drafts wizard.DraftStore = wizard.NewMemoryDraftStore()
	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		drafts = wizard.NewDraftStore(wizard.NewRedisCache[*wizard.Draft](client, draftTTL))
	}
	w, err := disaster.NewWizard(config.attachmentConfig(), wizard.WithDraftStore(drafts))
	if err != nil {
		return nil, err
	}

	local := &dialogue.LocalDialogueGenerator{}
	a := &app{
		config:    config,
		wizard:    w,
		parser:    command.NewLocalCommandParser(),
		dialogue:  local,
		transport: submission.LogTransport{},
	}
	if config.Endpoint != "" {
		a.transport = submission.NewHTTPTransport(config.Endpoint, &http.Client{Timeout: 30 * time.Second})
	}

	if config.APIKey != "" {
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  config.APIKey,
			Model:   config.Model,
			BaseURL: config.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		toolParser, err := command.NewToolBasedCommandParser(cm)
		if err != nil {
			return nil, err
		}
		a.parser = command.NewKeywordFirstParser(
			command.NewFailbackCommandParser(toolParser, command.NewLocalCommandParser()),
		)
		a.dialogue = dialogue.NewFailbackDialogueGenerator(dialogue.NewToolBasedDialogueGenerator(cm), local)
		if a.autofill, err = patch.NewToolBasedPatchGenerator(cm); err != nil {
			return nil, err
		}
		if a.schema, err = disaster.JSONSchema(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) loop(ctx context.Context, in io.Reader, out io.Writer) error {
	restored, err := a.wizard.RestoreDraft(ctx)
	if err != nil {
		slog.Warn("ignoring saved draft", "error", err)
	}
	if restored {
		fmt.Fprintln(out, "Resuming your saved report.")
	} else {
		fmt.Fprintln(out, "Report a disaster. Type help for the list of commands.")
	}
	a.say(ctx, out, "", false)

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "> ")
		line, rErr := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			if done := a.handle(ctx, out, line); done {
				return nil
			}
		}
		if rErr != nil {
			if errors.Is(rErr, io.EOF) {
				if err := a.wizard.SaveDraft(ctx); err != nil && !errors.Is(err, wizard.ErrFinished) {
					return err
				}
				return nil
			}
			return rErr
		}
	}
}

// handle runs one line of input and reports whether the session is over.
func (a *app) handle(ctx context.Context, out io.Writer, line string) bool {
	st := a.wizard.State()
	cmd, err := a.parser.ParseCommand(ctx, &command.Request{
		Phase:  st.Phase,
		Step:   st.CurrentStep,
		Prompt: a.lastPrompt,
		Input:  line,
	})
	if err != nil {
		slog.Warn("failed to parse command", "error", err)
		cmd = command.None
	}

	patched := false
	switch cmd {
	case command.Next:
		if _, err := a.wizard.Next(); err != nil {
			fmt.Fprintln(out, err)
		}
	case command.Back:
		if err := a.wizard.Retreat(); err != nil {
			fmt.Fprintln(out, err)
		}
	case command.Submit:
		a.submit(ctx, out)
	case command.Login:
		a.login(ctx, out)
	case command.Save:
		if err := a.wizard.SaveDraft(ctx); err != nil {
			fmt.Fprintln(out, err)
		} else {
			fmt.Fprintln(out, "Draft saved.")
		}
	case command.Cancel:
		if err := a.wizard.Cancel(ctx); err != nil {
			fmt.Fprintln(out, err)
		}
	case command.Help:
		fmt.Fprint(out, helpText)
		return false
	default:
		patched = a.input(ctx, out, line)
	}

	if err := a.wizard.SaveDraft(ctx); err != nil && !errors.Is(err, wizard.ErrFinished) {
		slog.Warn("failed to checkpoint draft", "error", err)
	}
	a.say(ctx, out, line, patched)
	return a.wizard.State().Phase.Terminal()
}

func (a *app) submit(ctx context.Context, out io.Writer) {
	_, err := a.wizard.TrySubmit(ctx, a.authenticated, a.transport)
	switch {
	case err == nil, errors.Is(err, wizard.ErrAuthRequired):
	case errors.Is(err, wizard.ErrInvalidDraft):
		fmt.Fprintln(out, "Some answers need attention before the report can be sent.")
	default:
		slog.Debug("submit failed", "error", err)
	}
}

// login stands in for the auth collaborator: it marks the session signed in,
// prefills identity fields and resumes a held submission.
func (a *app) login(ctx context.Context, out io.Writer) {
	a.authenticated = true
	if _, err := a.wizard.Prefill(disaster.IdentityValues(a.config.ReporterName, a.config.ReporterEmail)); err != nil {
		slog.Warn("failed to prefill identity", "error", err)
	}
	fmt.Fprintln(out, "Signed in.")
	if a.wizard.State().PendingAuthGate {
		a.submit(ctx, out)
	}
}

func (a *app) say(ctx context.Context, out io.Writer, lastInput string, patched bool) {
	msg, err := a.dialogue.GenerateDialogue(ctx, dialogue.NewRequest(a.wizard, lastInput, patched))
	if err != nil {
		slog.Warn("failed to generate prompt", "error", err)
		return
	}
	a.lastPrompt = msg
	fmt.Fprintf(out, "\n%s\n", strings.TrimRight(msg, "\n"))
}

const helpText = `Commands:
  next, back        move between steps
  submit            send the report from the confirmation step
  login             sign in (needed to submit)
  save              keep a draft for later
  cancel            abandon the report
  <field> = <value> set a field, e.g. description = Water is rising fast
  location <lat>,<lng> [address]
  attach <path>     attach a photo, video or PDF
  detach <n>        remove attachment n (from 1)
Anything else is read as a free-text account when autofill is configured.
`
