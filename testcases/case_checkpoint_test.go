package testcases

import (
	"context"
	"errors"
	"testing"

	"github.com/tbxark/reliefwizard/disaster"
	"github.com/tbxark/reliefwizard/types"
	"github.com/tbxark/reliefwizard/wizard"
)

// TestDraftSurvivesFailedSubmission saves a draft, fails the transport,
// resumes in a new wizard and submits.
func TestDraftSurvivesFailedSubmission(t *testing.T) {
	t.Parallel()
	ctx := wizard.WithSessionKey(context.Background(), "checkpoint")
	drafts := wizard.NewMemoryDraftStore()

	w := NewTestWizard(t, wizard.WithDraftStore(drafts))
	FillMinimal(t, w)
	if err := w.OnLocationSelect(disaster.FieldLocation, 14.65, 121.10, "Marikina Riverbanks"); err != nil {
		t.Fatalf("location: %v", err)
	}
	AdvanceToConfirm(t, w)
	if err := w.SaveDraft(ctx); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	transport := &RecordingTransport{Err: errors.New("503 service unavailable")}
	if _, err := w.TrySubmit(ctx, true, transport); err == nil {
		t.Fatal("expected submit to fail")
	}
	if w.State().SubmitError == "" {
		t.Error("expected submit error to be recorded")
	}

	resumed := NewTestWizard(t, wizard.WithDraftStore(drafts))
	ok, err := resumed.RestoreDraft(ctx)
	if err != nil || !ok {
		t.Fatalf("restore draft: ok=%v err=%v", ok, err)
	}
	if resumed.State().Phase != types.PhaseConfirming {
		t.Fatalf("expected confirming after restore, got %s", resumed.State().Phase)
	}
	loc := resumed.Store().Snapshot().Location(disaster.FieldLocation)
	if loc == nil || loc.Address != "Marikina Riverbanks" {
		t.Fatalf("location not restored: %+v", loc)
	}

	transport.Err = nil
	if _, err := resumed.TrySubmit(ctx, true, transport); err != nil {
		t.Fatalf("submit after restore: %v", err)
	}
	if _, ok, _ := drafts.Load(ctx); ok {
		t.Error("draft should be cleared after submission")
	}
}
