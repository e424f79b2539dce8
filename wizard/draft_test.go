package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/reliefwizard/attachment"
	"github.com/tbxark/reliefwizard/types"
)

func newRedisDraftStore(t *testing.T) (*CacheDraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDraftStore(NewRedisCache[*Draft](client, time.Hour)), mr
}

func TestDraftRoundTrip(t *testing.T) {
	stores := map[string]DraftStore{"memory": NewMemoryDraftStore()}
	stores["redis"], _ = newRedisDraftStore(t)

	for name, drafts := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := WithSessionKey(context.Background(), "reporter-1")
			w := newTestWizard(t, WithDraftStore(drafts))
			fill(t, w)
			_, err := w.AddAttachments([]attachment.File{{Name: "a.jpg", Handle: "h1", MIMEType: "image/jpeg", Size: 5}})
			require.NoError(t, err)
			_, err = w.Next()
			require.NoError(t, err)
			require.NoError(t, w.SaveDraft(ctx))

			resumed := newTestWizard(t, WithDraftStore(drafts))
			ok, err := resumed.RestoreDraft(ctx)
			require.NoError(t, err)
			require.True(t, ok)

			assert.Equal(t, 2, resumed.State().CurrentStep)
			assert.Equal(t, types.PhaseCollecting, resumed.State().Phase)
			assert.Equal(t, w.Store().Snapshot().Values(), resumed.Store().Snapshot().Values())
			assert.Equal(t, w.Attachments().List(), resumed.Attachments().List())

			other := newTestWizard(t, WithDraftStore(drafts))
			ok, err = other.RestoreDraft(WithSessionKey(context.Background(), "reporter-2"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDraftRestoresConfirmStep(t *testing.T) {
	drafts := NewMemoryDraftStore()
	ctx := context.Background()
	w := newTestWizard(t, WithDraftStore(drafts))
	fill(t, w)
	advanceToConfirm(t, w)
	require.NoError(t, w.SaveDraft(ctx))

	resumed := newTestWizard(t, WithDraftStore(drafts))
	ok, err := resumed.RestoreDraft(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.PhaseConfirming, resumed.State().Phase)
	assert.Equal(t, 4, resumed.State().CurrentStep)
}

func TestSubmitClearsDraft(t *testing.T) {
	drafts, mr := newRedisDraftStore(t)
	ctx := WithSessionKey(context.Background(), "s1")
	w := newTestWizard(t, WithDraftStore(drafts))
	fill(t, w)
	advanceToConfirm(t, w)
	require.NoError(t, w.SaveDraft(ctx))
	assert.True(t, mr.Exists("wizard:draft:s1"))

	_, err := w.TrySubmit(ctx, true, &countingTransport{})
	require.NoError(t, err)
	assert.False(t, mr.Exists("wizard:draft:s1"))
	assert.ErrorIs(t, w.SaveDraft(ctx), ErrFinished)
}

func TestCancelClearsDraft(t *testing.T) {
	drafts := NewMemoryDraftStore()
	ctx := context.Background()
	w := newTestWizard(t, WithDraftStore(drafts))
	require.NoError(t, w.SaveDraft(ctx))
	require.NoError(t, w.Cancel(ctx))

	_, ok, err := drafts.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestoreDoesNotReopenFinishedSession(t *testing.T) {
	drafts := NewMemoryDraftStore()
	ctx := context.Background()

	cancelled := newTestWizard(t, WithDraftStore(drafts))
	require.NoError(t, cancelled.Cancel(ctx))

	other := newTestWizard(t, WithDraftStore(drafts))
	fill(t, other)
	_, err := other.Next()
	require.NoError(t, err)
	require.NoError(t, other.SaveDraft(ctx))

	ok, err := cancelled.RestoreDraft(ctx)
	assert.ErrorIs(t, err, ErrFinished)
	assert.False(t, ok)
	assert.Equal(t, types.PhaseCancelled, cancelled.State().Phase)
	assert.True(t, cancelled.Store().Snapshot().IsEmpty("category"))
}

func TestRestoreRejectsOtherVersion(t *testing.T) {
	drafts := NewMemoryDraftStore()
	ctx := context.Background()
	require.NoError(t, drafts.Save(ctx, &Draft{Version: "0", CurrentStep: 2}))

	w := newTestWizard(t, WithDraftStore(drafts))
	ok, err := w.RestoreDraft(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, w.State().CurrentStep)
}

func TestWithoutDraftStore(t *testing.T) {
	w := newTestWizard(t)
	require.NoError(t, w.SaveDraft(context.Background()))
	ok, err := w.RestoreDraft(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close() //nolint:errcheck
	cache := NewRedisCache[map[string]string](client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", map[string]string{"a": "b"}))
	val, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"a": "b"}, val)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Del(ctx, "k"))
	exists, err = cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestScopedRequiresKey(t *testing.T) {
	scoped := NewScoped[string](NewMemoryCache[string](), "ns", SessionKeyFromContext)
	ctx := context.Background()
	assert.ErrorIs(t, scoped.Set(ctx, "v"), ErrNoSessionKey)

	ctx = WithSessionKey(ctx, "abc")
	require.NoError(t, scoped.Set(ctx, "v"))
	v, ok, err := scoped.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
