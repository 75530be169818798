package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// RenderFunc produces the artifact for a logical key on cache miss.
type RenderFunc func(ctx context.Context) ([]byte, error)

// Middleware wraps artifact production with caching.
//
// Concurrent calls for the same logical key are collapsed into one render
// via singleflight: when a batch submits the same document twice, the
// renderer runs once and both callers share the result.
type Middleware struct {
	store Store
	group singleflight.Group
	extra map[string]any
}

// NewMiddleware creates a cache middleware over store. The extra fields, if
// any, are attached to every entry the middleware writes.
func NewMiddleware(store Store, extra map[string]any) *Middleware {
	return &Middleware{
		store: store,
		extra: extra,
	}
}

// Do returns the cached artifact for key, rendering and caching it on miss.
// The second return reports whether the artifact came from the cache.
// Render errors are returned unchanged and never cached; Set failures are
// swallowed - the cache is a soft layer.
func (m *Middleware) Do(ctx context.Context, key string, render RenderFunc) ([]byte, bool, error) {
	if m == nil || m.store == nil {
		return nil, false, ErrNilStore
	}
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	if cached, ok := m.store.Get(ctx, key); ok {
		return cached, true, nil
	}

	type rendered struct {
		data []byte
		hit  bool
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		// A concurrent flight may have populated the entry between the
		// miss above and acquiring the flight.
		if cached, ok := m.store.Get(ctx, key); ok {
			return rendered{data: cached, hit: true}, nil
		}
		data, err := render(ctx)
		if err != nil {
			return nil, err
		}
		_ = m.store.Set(ctx, key, data, m.extra)
		return rendered{data: data}, nil
	})
	if err != nil {
		return nil, false, err
	}
	r := v.(rendered)
	return r.data, r.hit, nil
}
