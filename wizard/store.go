package wizard

import (
	"context"
	"errors"
)

var ErrNoSessionKey = errors.New("session key not found in context")

// Scoped prefixes every key with a namespace and derives the key itself
// from the request context.
type Scoped[S any] struct {
	core      Cache[S]
	namespace string
	keyFn     func(ctx context.Context) (string, bool)
}

func NewScoped[S any](core Cache[S], namespace string, keyFn func(ctx context.Context) (string, bool)) Scoped[S] {
	return Scoped[S]{
		core:      core,
		namespace: namespace,
		keyFn:     keyFn,
	}
}

func (c Scoped[S]) key(ctx context.Context) (string, bool) {
	key, exist := c.keyFn(ctx)
	if !exist {
		return "", false
	}
	return c.namespace + ":" + key, true
}

func (c Scoped[S]) Set(ctx context.Context, val S) error {
	key, ok := c.key(ctx)
	if !ok {
		return ErrNoSessionKey
	}
	return c.core.Set(ctx, key, val)
}

func (c Scoped[S]) Get(ctx context.Context) (S, bool, error) {
	key, ok := c.key(ctx)
	if !ok {
		var zero S
		return zero, false, ErrNoSessionKey
	}
	return c.core.Get(ctx, key)
}

func (c Scoped[S]) Del(ctx context.Context) error {
	key, ok := c.key(ctx)
	if !ok {
		return ErrNoSessionKey
	}
	return c.core.Del(ctx, key)
}

func (c Scoped[S]) Exists(ctx context.Context) (bool, error) {
	key, ok := c.key(ctx)
	if !ok {
		return false, ErrNoSessionKey
	}
	return c.core.Exists(ctx, key)
}
