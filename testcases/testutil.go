package testcases

import (
	"context"
	"sync"
	"testing"

	"github.com/tbxark/reliefwizard/attachment"
	"github.com/tbxark/reliefwizard/disaster"
	"github.com/tbxark/reliefwizard/submission"
	"github.com/tbxark/reliefwizard/wizard"
)

// RecordingTransport keeps every record it is handed and can be told to
// fail.
type RecordingTransport struct {
	mu      sync.Mutex
	records []*submission.Record
	Err     error
}

func (r *RecordingTransport) Submit(ctx context.Context, record *submission.Record) (*submission.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	if r.Err != nil {
		return nil, r.Err
	}
	return &submission.Receipt{ID: "RPT-" + record.ID(), Status: "received"}, nil
}

func (r *RecordingTransport) Records() []*submission.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*submission.Record(nil), r.records...)
}

func NewTestWizard(t *testing.T, opts ...wizard.Option) *wizard.Wizard {
	t.Helper()
	w, err := disaster.NewWizard(attachment.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("failed to create wizard: %v", err)
	}
	return w
}

func mustSet(t *testing.T, w *wizard.Wizard, name string, value any) {
	t.Helper()
	if err := w.Set(name, value); err != nil {
		t.Fatalf("set %s: %v", name, err)
	}
}

// FillMinimal enters the smallest report that passes every step.
func FillMinimal(t *testing.T, w *wizard.Wizard) {
	t.Helper()
	mustSet(t, w, disaster.FieldDisasterDetail, "Flood")
	mustSet(t, w, disaster.FieldDescription, "Flash flood reached the second floor of homes")
	mustSet(t, w, disaster.FieldAssistanceTypes, []string{"Rescue"})
	mustSet(t, w, disaster.FieldContactPhone, "+63 917 555 0101")
}

func AdvanceToConfirm(t *testing.T, w *wizard.Wizard) {
	t.Helper()
	for i := 0; i < 3; i++ {
		result, err := w.Next()
		if err != nil {
			t.Fatalf("advance from step %d: %v", i+1, err)
		}
		if !result.Valid() {
			t.Fatalf("step %d did not validate: %v", i+1, result)
		}
	}
}
