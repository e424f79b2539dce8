package dialogue

import (
	"fmt"
	"strings"

	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/types"
	"github.com/tbxark/reliefwizard/wizard"
)

// NewRequest captures the current state of w for a generator.
func NewRequest(w *wizard.Wizard, lastInput string, patchApplied bool) *Request {
	st := w.State()
	engine := w.Engine()
	snapshot := w.Store().Snapshot()

	req := &Request{
		Phase:           st.Phase,
		Step:            st.CurrentStep,
		StepCount:       engine.StepCount(),
		PendingAuthGate: st.PendingAuthGate,
		SubmitError:     st.SubmitError,
		LastUserInput:   lastInput,
		PatchApplied:    patchApplied,
	}
	if st.Receipt != nil {
		req.ReceiptID = st.Receipt.ID
	}

	switch st.Phase {
	case types.PhaseCollecting:
		if step, ok := engine.Step(st.CurrentStep); ok {
			req.StepTitle = step.Title
		}
		req.Missing = engine.Missing(st.CurrentStep, snapshot)
		req.Issues = st.StepErrors(st.CurrentStep).Issues(snapshot.Schema())
	case types.PhaseConfirming:
		req.StepTitle = "Confirm"
		req.Summary = Summarize(snapshot, len(w.Attachments().List()))
	}
	return req
}

// Summarize lists label and display value of every non-empty field.
func Summarize(snapshot field.Snapshot, attachments int) [][2]string {
	var rows [][2]string
	for _, def := range snapshot.Schema().Definitions() {
		if snapshot.IsEmpty(def.Name) {
			continue
		}
		rows = append(rows, [2]string{def.DisplayName(), displayValue(def, snapshot)})
	}
	if attachments > 0 {
		rows = append(rows, [2]string{"Attachments", fmt.Sprintf("%d file(s)", attachments)})
	}
	return rows
}

func displayValue(def field.Definition, snapshot field.Snapshot) string {
	switch def.Kind {
	case field.KindTags:
		return strings.Join(snapshot.Tags(def.Name), ", ")
	case field.KindLocation:
		loc := snapshot.Location(def.Name)
		if loc == nil {
			return ""
		}
		if loc.Address != "" {
			return loc.Address
		}
		return fmt.Sprintf("%.5f, %.5f", loc.Lat, loc.Lng)
	case field.KindFlag:
		if snapshot.Flag(def.Name) {
			return "yes"
		}
		return "no"
	case field.KindNumber:
		return fmt.Sprintf("%g", snapshot.Number(def.Name))
	default:
		return field.TrimText(snapshot.String(def.Name))
	}
}
