package testcases

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tbxark/reliefwizard/disaster"
	"github.com/tbxark/reliefwizard/wizard"
)

// TestAuthGateSuspendsSubmission checks an anonymous submit is held, not lost.
func TestAuthGateSuspendsSubmission(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := NewTestWizard(t)
	FillMinimal(t, w)
	AdvanceToConfirm(t, w)
	before := w.Store().Snapshot().Values()

	transport := &RecordingTransport{}
	_, err := w.TrySubmit(ctx, false, transport)
	if !errors.Is(err, wizard.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if len(transport.Records()) != 0 {
		t.Fatal("transport must not be called before sign-in")
	}
	if !w.State().PendingAuthGate {
		t.Error("expected pending auth gate")
	}
	if !reflect.DeepEqual(before, w.Store().Snapshot().Values()) {
		t.Error("field values changed while the submission was held")
	}

	if _, err := w.Prefill(disaster.IdentityValues("Ana Reyes", "ana@example.org")); err != nil {
		t.Fatalf("prefill failed: %v", err)
	}
	if _, err := w.TrySubmit(ctx, true, transport); err != nil {
		t.Fatalf("submit after sign-in failed: %v", err)
	}
	records := transport.Records()
	if len(records) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(records))
	}
	if v, _ := records[0].Field("reporter_name"); v != "Ana Reyes" {
		t.Errorf("expected prefilled reporter name, got %v", v)
	}
	if v, _ := records[0].Field("contact_phone"); v != "+63 917 555 0101" {
		t.Errorf("typed phone was overwritten: %v", v)
	}
}
