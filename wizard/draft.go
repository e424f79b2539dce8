package wizard

import (
	"context"
	"time"

	"github.com/tbxark/reliefwizard/attachment"
	"github.com/tbxark/reliefwizard/types"
)

const draftVersion = "1"

// Draft is a resumable copy of a session: field values, attachments and
// position. Validation results are not kept; they are recomputed on the
// next Advance.
type Draft struct {
	Version     string                  `json:"version" msgpack:"version"`
	Phase       types.Phase             `json:"phase" msgpack:"phase"`
	CurrentStep int                     `json:"current_step" msgpack:"current_step"`
	Values      map[string]any          `json:"values" msgpack:"values"`
	Attachments []attachment.Attachment `json:"attachments,omitempty" msgpack:"attachments"`
	SavedAt     time.Time               `json:"saved_at" msgpack:"saved_at"`
}

type DraftStore interface {
	Load(ctx context.Context) (*Draft, bool, error)
	Save(ctx context.Context, draft *Draft) error
	Clear(ctx context.Context) error
}

// CacheDraftStore keeps one draft per session key.
type CacheDraftStore struct {
	store Scoped[*Draft]
}

func NewDraftStore(core Cache[*Draft]) *CacheDraftStore {
	return &CacheDraftStore{
		store: NewScoped(core, "wizard:draft", sessionKeyOrDefault),
	}
}

func NewMemoryDraftStore() *CacheDraftStore {
	return NewDraftStore(NewMemoryCache[*Draft]())
}

func (s *CacheDraftStore) Load(ctx context.Context) (*Draft, bool, error) {
	draft, ok, err := s.store.Get(ctx)
	if err != nil || !ok || draft == nil {
		return nil, false, err
	}
	return draft, true, nil
}

func (s *CacheDraftStore) Save(ctx context.Context, draft *Draft) error {
	if draft.Phase == "" {
		draft.Phase = types.PhaseCollecting
	}
	return s.store.Set(ctx, draft)
}

func (s *CacheDraftStore) Clear(ctx context.Context) error {
	return s.store.Del(ctx)
}

var _ DraftStore = (*CacheDraftStore)(nil)
