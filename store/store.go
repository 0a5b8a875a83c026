package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/keenanlab/scopecache"
	"github.com/keenanlab/scopecache/errors"
)

// A Loader constructs a resource. The context passed to it is the store's
// lifetime context; it is canceled only when the store closes.
type Loader[T any] func(ctx context.Context) (T, error)

// Store lazily holds a single shared resource. The first successful load
// is cached and returned to every subsequent caller by identity; the
// loader runs at most once per process unless it fails.
//
// A Store must never reference the scopes that borrow its value. That
// invariant is structural: this package has no knowledge of scope handles.
type Store[T any] struct {
	mu       sync.Mutex
	value    T
	loaded   bool
	closed   bool
	inflight *inflight[T]

	cfg    config
	ctx    context.Context
	cancel context.CancelFunc
}

// inflight tracks one in-progress load. Waiters block on done; value and
// err are written exactly once, before done is closed.
type inflight[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// New creates an empty store.
func New[T any](opts ...Option) *Store[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store[T]{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Name returns the store name.
func (s *Store[T]) Name() string {
	return s.cfg.name
}

// GetOrLoad returns the cached resource, invoking load only if the store
// is empty. Concurrent callers share a single invocation. A failed load
// leaves the store empty, so a later call retries.
//
// ctx governs only this caller's wait: if it is canceled, the caller gets
// ctx.Err() but the load keeps running on the store's lifetime context
// and its result is cached for the next caller.
func (s *Store[T]) GetOrLoad(ctx context.Context, load Loader[T]) (T, error) {
	var zero T

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, errors.StoreClosed(s.cfg.name)
	}
	if s.loaded {
		v := s.value
		s.mu.Unlock()
		return v, nil
	}
	fl := s.inflight
	if fl == nil {
		fl = &inflight[T]{done: make(chan struct{})}
		s.inflight = fl
		go s.runLoad(fl, load)
	}
	s.mu.Unlock()

	select {
	case <-fl.done:
		return fl.value, fl.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *Store[T]) runLoad(fl *inflight[T], load Loader[T]) {
	started := s.cfg.now()
	v, err := load(s.ctx)
	elapsed := s.cfg.now().Sub(started)

	s.mu.Lock()
	s.inflight = nil
	discarded := false
	if err == nil {
		if s.closed || s.ctx.Err() != nil {
			// The store shut down while the loader ran. The half-delivered
			// resource must not outlive the store; dispose it.
			discarded = true
			err = errors.StoreClosed(s.cfg.name)
		} else {
			s.value = v
			s.loaded = true
		}
	}
	s.mu.Unlock()

	switch {
	case discarded:
		if derr := disposeValue(v); derr != nil {
			Logger().Warn("dispose of discarded resource failed",
				zap.String("store", s.cfg.name), zap.Error(derr))
		}
		fl.err = err
	case err != nil:
		fl.err = errors.LoaderFailed(s.cfg.name, "", err)
		Logger().Debug("load failed",
			zap.String("store", s.cfg.name), zap.Error(err))
		s.notify(scopecache.Event{
			Type:    scopecache.EventLoadFailed,
			Store:   s.cfg.name,
			Err:     err,
			Elapsed: elapsed,
		})
	default:
		fl.value = v
		Logger().Debug("resource loaded",
			zap.String("store", s.cfg.name), zap.Duration("elapsed", elapsed))
		s.notify(scopecache.Event{
			Type:    scopecache.EventLoaded,
			Store:   s.cfg.name,
			Value:   v,
			Elapsed: elapsed,
		})
	}
	close(fl.done)
}

// Peek returns the cached value without loading.
func (s *Store[T]) Peek() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.loaded
}

// Loaded reports whether the store holds a value.
func (s *Store[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Close empties the store, disposing the cached value if it implements
// scopecache.Disposer, and cancels any in-flight load so its result is
// discarded rather than cached. Close is idempotent; a closed store
// rejects further GetOrLoad calls.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancel()

	var v T
	had := s.loaded
	if had {
		v = s.value
		var zero T
		s.value = zero
		s.loaded = false
	}
	s.mu.Unlock()

	if !had {
		return nil
	}
	err := disposeValue(v)
	if err != nil {
		err = errors.DisposeFailed(errors.StagePurge, s.cfg.name, "", err)
	}
	s.notify(scopecache.Event{
		Type:  scopecache.EventPurged,
		Store: s.cfg.name,
	})
	return err
}

func (s *Store[T]) notify(e scopecache.Event) {
	for _, o := range s.cfg.observers {
		o.OnCacheEvent(e)
	}
}

// disposeValue calls Dispose if the value implements scopecache.Disposer.
func disposeValue(v any) error {
	if d, ok := v.(scopecache.Disposer); ok {
		return d.Dispose()
	}
	return nil
}
