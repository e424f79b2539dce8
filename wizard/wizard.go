package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tbxark/reliefwizard/attachment"
	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/patch"
	"github.com/tbxark/reliefwizard/submission"
	"github.com/tbxark/reliefwizard/types"
	"github.com/tbxark/reliefwizard/validate"
)

var (
	ErrSubmitting    = errors.New("a submission is already in flight")
	ErrNotCollecting = errors.New("wizard is not collecting data")
	ErrNotConfirming = errors.New("wizard is not on the confirmation step")
	ErrStepMismatch  = errors.New("step is not the current step")
	ErrFinished      = errors.New("wizard is already finished")
	ErrAuthRequired  = errors.New("authentication required before submitting")
	ErrInvalidDraft  = errors.New("draft no longer passes validation")
	ErrSchemaMatch   = errors.New("store and engine use different schemas")
)

type Option func(*Wizard)

// WithDraftStore saves and restores drafts through store. A submitted or
// cancelled session clears its draft.
func WithDraftStore(store DraftStore) Option {
	return func(w *Wizard) {
		w.drafts = store
	}
}

// Wizard drives a multi-step intake: it owns the progress state, gates
// forward navigation on validation and dispatches the final record.
type Wizard struct {
	engine      *validate.Engine
	store       *field.Store
	attachments *attachment.Manager
	assembler   *submission.Assembler
	drafts      DraftStore

	mu    sync.Mutex
	state State
}

func New(
	engine *validate.Engine,
	store *field.Store,
	attachments *attachment.Manager,
	assembler *submission.Assembler,
	opts ...Option,
) (*Wizard, error) {
	if engine.Schema() != store.Schema() {
		return nil, ErrSchemaMatch
	}
	if attachments == nil {
		attachments = attachment.NewManager(attachment.DefaultConfig())
	}
	if assembler == nil {
		assembler = submission.NewAssembler(nil)
	}
	w := &Wizard{
		engine:      engine,
		store:       store,
		attachments: attachments,
		assembler:   assembler,
		state: State{
			Phase:       types.PhaseCollecting,
			CurrentStep: 1,
			Errors:      map[int]validate.Result{},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

func (w *Wizard) Engine() *validate.Engine {
	return w.engine
}

func (w *Wizard) Store() *field.Store {
	return w.store
}

func (w *Wizard) Attachments() *attachment.Manager {
	return w.attachments
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// ConfirmStep is the index of the confirmation step.
func (w *Wizard) ConfirmStep() int {
	return w.engine.StepCount() + 1
}

func (w *Wizard) checkMutable() error {
	switch {
	case w.state.Submitting:
		return ErrSubmitting
	case w.state.Phase.Terminal():
		return ErrFinished
	}
	return nil
}

// Set writes a field value. Writes are refused while submitting and after
// the session finished; otherwise they always succeed.
func (w *Wizard) Set(name string, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkMutable(); err != nil {
		return err
	}
	w.store.Set(name, value)
	return nil
}

// OnLocationSelect receives a selection from the location picker.
func (w *Wizard) OnLocationSelect(name string, lat, lng float64, address string) error {
	return w.Set(name, &field.Location{Address: address, Lat: lat, Lng: lng})
}

// ApplyPatch applies a batch of RFC6902 operations to the store, e.g. the
// output of an autofill generator. The batch is atomic.
func (w *Wizard) ApplyPatch(ops []patch.Operation) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkMutable(); err != nil {
		return err
	}
	return w.store.ApplyPatch(ops)
}

// Prefill seeds still-empty fields with values from the identity source.
func (w *Wizard) Prefill(values map[string]any) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkMutable(); err != nil {
		return 0, err
	}
	return w.store.Prefill(values)
}

func (w *Wizard) AddAttachments(files []attachment.File) (attachment.Result, error) {
	w.mu.Lock()
	err := w.checkMutable()
	w.mu.Unlock()
	if err != nil {
		return attachment.Result{}, err
	}
	return w.attachments.Add(files)
}

func (w *Wizard) RemoveAttachment(index int) error {
	w.mu.Lock()
	err := w.checkMutable()
	w.mu.Unlock()
	if err != nil {
		return err
	}
	return w.attachments.Remove(index)
}

// CanAdvance reports whether step would pass validation for snapshot. It
// writes nothing and is cheap enough to call on every keystroke.
func (w *Wizard) CanAdvance(step int, snapshot field.Snapshot) bool {
	return w.engine.Valid(step, snapshot)
}

// CanNext is CanAdvance for the current step and the live store.
func (w *Wizard) CanNext() bool {
	w.mu.Lock()
	st := w.state
	w.mu.Unlock()
	if st.Submitting || st.Phase != types.PhaseCollecting {
		return false
	}
	return w.CanAdvance(st.CurrentStep, w.store.Snapshot())
}

// Advance validates step against snapshot, stores the result for display
// and moves forward only when the result is empty. Passing the last data
// step enters the confirmation step.
func (w *Wizard) Advance(step int, snapshot field.Snapshot) (validate.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkMutable(); err != nil {
		return nil, err
	}
	if w.state.Phase != types.PhaseCollecting {
		return nil, ErrNotCollecting
	}
	if step != w.state.CurrentStep {
		return nil, fmt.Errorf("%w: got %d, current %d", ErrStepMismatch, step, w.state.CurrentStep)
	}

	result := w.engine.ValidateStep(step, snapshot)
	w.state.Errors[step] = result.Clone()
	if !result.Valid() {
		slog.Debug("step validation failed", "step", step, "errors", len(result))
		return result, nil
	}

	w.state.CurrentStep = step + 1
	if w.state.CurrentStep > w.engine.StepCount() {
		w.state.Phase = types.PhaseConfirming
	}
	slog.Debug("advanced", "from", step, "to", w.state.CurrentStep, "phase", w.state.Phase)
	return result, nil
}

// Next advances the current step using the live store.
func (w *Wizard) Next() (validate.Result, error) {
	w.mu.Lock()
	step := w.state.CurrentStep
	w.mu.Unlock()
	return w.Advance(step, w.store.Snapshot())
}

// Retreat goes back one step without validation and forgets the errors of
// the step being left. It stops at step 1.
func (w *Wizard) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkMutable(); err != nil {
		return err
	}
	if w.state.CurrentStep <= 1 {
		return nil
	}
	vacated := w.state.CurrentStep
	delete(w.state.Errors, vacated)
	w.state.CurrentStep = vacated - 1
	if w.state.Phase == types.PhaseConfirming {
		w.state.Phase = types.PhaseCollecting
		w.state.PendingAuthGate = false
		w.state.SubmitError = ""
	}
	slog.Debug("retreated", "from", vacated, "to", w.state.CurrentStep)
	return nil
}

// Missing lists the required fields of the current step that are empty.
func (w *Wizard) Missing() []types.FieldInfo {
	w.mu.Lock()
	step := w.state.CurrentStep
	w.mu.Unlock()
	return w.engine.Missing(step, w.store.Snapshot())
}

// TrySubmit dispatches the confirmed draft. Without authentication it only
// raises the pending gate and returns ErrAuthRequired, leaving all data in
// place for a retry. A transport failure is recorded in State.SubmitError
// and returned; the draft stays intact.
func (w *Wizard) TrySubmit(ctx context.Context, authenticated bool, transport submission.Transport) (*submission.Receipt, error) {
	w.mu.Lock()
	switch {
	case w.state.Submitting:
		w.mu.Unlock()
		return nil, ErrSubmitting
	case w.state.Phase.Terminal():
		w.mu.Unlock()
		return nil, ErrFinished
	case w.state.Phase != types.PhaseConfirming:
		w.mu.Unlock()
		return nil, ErrNotConfirming
	}

	if !authenticated {
		w.state.PendingAuthGate = true
		w.mu.Unlock()
		slog.Info("submission held until the reporter signs in")
		return nil, ErrAuthRequired
	}
	w.state.PendingAuthGate = false

	snapshot := w.store.Snapshot()
	if step, result := w.engine.FirstInvalid(snapshot); step != 0 {
		w.state.Phase = types.PhaseCollecting
		w.state.CurrentStep = step
		w.state.Errors[step] = result.Clone()
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: step %d", ErrInvalidDraft, step)
	}

	w.state.Submitting = true
	w.state.SubmitError = ""
	w.mu.Unlock()

	w.attachments.SetBusy(true)
	record := w.assembler.Assemble(snapshot, w.attachments.List())
	receipt, err := w.dispatch(ctx, transport, record)
	w.attachments.SetBusy(false)

	w.mu.Lock()
	w.state.Submitting = false
	if err != nil {
		w.state.SubmitError = err.Error()
		w.mu.Unlock()
		slog.Warn("submission failed", "record", record.ID(), "error", err)
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}
	w.state.Phase = types.PhaseSubmitted
	w.state.Receipt = receipt
	w.mu.Unlock()

	slog.Info("report submitted", "record", record.ID(), "receipt", receipt.ID, "status", receipt.Status)
	w.clearDraft(ctx)
	return receipt, nil
}

func (w *Wizard) dispatch(ctx context.Context, transport submission.Transport, record *submission.Record) (receipt *submission.Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recover from panic in transport: %v", r)
		}
	}()
	receipt, err = transport.Submit(ctx, record)
	if err == nil && receipt == nil {
		receipt = &submission.Receipt{ID: record.ID()}
	}
	return receipt, err
}

// Cancel abandons the session and drops its saved draft.
func (w *Wizard) Cancel(ctx context.Context) error {
	w.mu.Lock()
	if err := w.checkMutable(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.state.Phase = types.PhaseCancelled
	w.state.PendingAuthGate = false
	w.mu.Unlock()
	w.clearDraft(ctx)
	return nil
}

// SaveDraft stores values, attachments and position under the session key
// of ctx.
func (w *Wizard) SaveDraft(ctx context.Context) error {
	if w.drafts == nil {
		return nil
	}
	w.mu.Lock()
	st := w.state
	w.mu.Unlock()
	if st.Phase.Terminal() {
		return ErrFinished
	}
	draft := &Draft{
		Version:     draftVersion,
		Phase:       st.Phase,
		CurrentStep: st.CurrentStep,
		Values:      w.store.Snapshot().Values(),
		Attachments: w.attachments.List(),
		SavedAt:     time.Now().UTC(),
	}
	if err := w.drafts.Save(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// RestoreDraft loads the draft of the session key in ctx. It reports false
// when there is nothing to restore. A finished session is never reopened.
func (w *Wizard) RestoreDraft(ctx context.Context) (bool, error) {
	if w.drafts == nil {
		return false, nil
	}
	draft, ok, err := w.drafts.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load draft: %w", err)
	}
	if !ok {
		return false, nil
	}
	if draft.Version != draftVersion {
		return false, fmt.Errorf("incompatible draft version: %s (expected %s)", draft.Version, draftVersion)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkMutable(); err != nil {
		return false, err
	}
	w.store.Restore(draft.Values)
	w.attachments.Restore(draft.Attachments)

	step := draft.CurrentStep
	if step < 1 {
		step = 1
	}
	phase := types.PhaseCollecting
	if step > w.engine.StepCount() {
		step = w.ConfirmStep()
		phase = types.PhaseConfirming
	}
	w.state = State{
		Phase:       phase,
		CurrentStep: step,
		Errors:      map[int]validate.Result{},
	}
	return true, nil
}

func (w *Wizard) clearDraft(ctx context.Context) {
	if w.drafts == nil {
		return
	}
	if err := w.drafts.Clear(ctx); err != nil {
		slog.Warn("failed to clear draft", "error", err)
	}
}
