package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/keenanlab/scopecache"
	"github.com/keenanlab/scopecache/errors"
)

// KeyedStore holds many resources keyed by string. Loads for the same key
// are deduplicated with a single-flight group; failed loads are never
// cached. Entries track their last use so idle ones can be evicted.
type KeyedStore[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	closed  bool

	group  singleflight.Group
	cfg    config
	ctx    context.Context
	cancel context.CancelFunc
}

type entry[T any] struct {
	value    T
	lastUsed time.Time
}

// NewKeyed creates an empty keyed store.
func NewKeyed[T any](opts ...Option) *KeyedStore[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &KeyedStore[T]{
		entries: make(map[string]*entry[T]),
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Name returns the store name.
func (ks *KeyedStore[T]) Name() string {
	return ks.cfg.name
}

// GetOrLoad returns the resource cached under key, invoking load only if
// absent. Concurrent callers for the same key share one invocation; other
// keys load independently. The caller's ctx governs only its wait.
func (ks *KeyedStore[T]) GetOrLoad(ctx context.Context, key string, load Loader[T]) (T, error) {
	var zero T

	ks.mu.Lock()
	if ks.closed {
		ks.mu.Unlock()
		return zero, errors.StoreClosed(ks.cfg.name)
	}
	if e, ok := ks.entries[key]; ok {
		e.lastUsed = ks.cfg.now()
		v := e.value
		ks.mu.Unlock()
		return v, nil
	}
	ks.mu.Unlock()

	ch := ks.group.DoChan(key, func() (any, error) {
		return ks.loadEntry(key, load)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (ks *KeyedStore[T]) loadEntry(key string, load Loader[T]) (any, error) {
	// Another single-flight round may have filled the entry between the
	// caller's miss and this call running.
	ks.mu.Lock()
	if e, ok := ks.entries[key]; ok {
		e.lastUsed = ks.cfg.now()
		v := e.value
		ks.mu.Unlock()
		return v, nil
	}
	ks.mu.Unlock()

	started := ks.cfg.now()
	v, err := load(ks.ctx)
	elapsed := ks.cfg.now().Sub(started)
	if err != nil {
		Logger().Debug("load failed",
			zap.String("store", ks.cfg.name), zap.String("key", key), zap.Error(err))
		ks.notify(scopecache.Event{
			Type:    scopecache.EventLoadFailed,
			Store:   ks.cfg.name,
			Key:     key,
			Err:     err,
			Elapsed: elapsed,
		})
		return nil, errors.LoaderFailed(ks.cfg.name, key, err)
	}

	ks.mu.Lock()
	if ks.closed || ks.ctx.Err() != nil {
		ks.mu.Unlock()
		if derr := disposeValue(v); derr != nil {
			Logger().Warn("dispose of discarded resource failed",
				zap.String("store", ks.cfg.name), zap.String("key", key), zap.Error(derr))
		}
		return nil, errors.StoreClosed(ks.cfg.name)
	}
	ks.entries[key] = &entry[T]{value: v, lastUsed: ks.cfg.now()}
	ks.mu.Unlock()

	Logger().Debug("resource loaded",
		zap.String("store", ks.cfg.name), zap.String("key", key),
		zap.Duration("elapsed", elapsed))
	ks.notify(scopecache.Event{
		Type:    scopecache.EventLoaded,
		Store:   ks.cfg.name,
		Key:     key,
		Value:   v,
		Elapsed: elapsed,
	})
	return v, nil
}

// Peek returns the value cached under key without loading or touching
// its last-used time.
func (ks *KeyedStore[T]) Peek(key string) (T, bool) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if e, ok := ks.entries[key]; ok {
		return e.value, true
	}
	var zero T
	return zero, false
}

// Len returns the number of cached entries.
func (ks *KeyedStore[T]) Len() int {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return len(ks.entries)
}

// Keys returns the cached keys in sorted order.
func (ks *KeyedStore[T]) Keys() []string {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	keys := make([]string, 0, len(ks.entries))
	for k := range ks.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LastUsed returns when the entry for key was last returned by GetOrLoad.
func (ks *KeyedStore[T]) LastUsed(key string) (time.Time, bool) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if e, ok := ks.entries[key]; ok {
		return e.lastUsed, true
	}
	return time.Time{}, false
}

// Purge removes and disposes the entry for key. It returns a not-found
// error if the key is absent.
func (ks *KeyedStore[T]) Purge(key string) error {
	ks.mu.Lock()
	e, ok := ks.entries[key]
	if ok {
		delete(ks.entries, key)
	}
	ks.mu.Unlock()

	if !ok {
		return errors.NotFound(ks.cfg.name, key)
	}
	return ks.disposeEntry(key, e, scopecache.EventPurged, errors.StagePurge)
}

// PurgeAll removes and disposes every entry, aggregating dispose errors.
func (ks *KeyedStore[T]) PurgeAll() error {
	ks.mu.Lock()
	entries := ks.entries
	ks.entries = make(map[string]*entry[T])
	ks.mu.Unlock()

	var err error
	for key, e := range entries {
		err = multierr.Append(err, ks.disposeEntry(key, e, scopecache.EventPurged, errors.StagePurge))
	}
	return err
}

// EvictIdle removes and disposes entries unused for at least maxIdle.
// It returns the evicted keys and any aggregated dispose errors.
func (ks *KeyedStore[T]) EvictIdle(maxIdle time.Duration) ([]string, error) {
	cutoff := ks.cfg.now().Add(-maxIdle)

	ks.mu.Lock()
	idle := make(map[string]*entry[T])
	for key, e := range ks.entries {
		if !e.lastUsed.After(cutoff) {
			idle[key] = e
			delete(ks.entries, key)
		}
	}
	ks.mu.Unlock()

	var err error
	keys := make([]string, 0, len(idle))
	for key, e := range idle {
		keys = append(keys, key)
		err = multierr.Append(err, ks.disposeEntry(key, e, scopecache.EventEvicted, errors.StageEvict))
	}
	sort.Strings(keys)
	return keys, err
}

// Close purges all entries and rejects further loads. An in-flight load
// completes but its result is disposed and discarded. Idempotent.
func (ks *KeyedStore[T]) Close() error {
	ks.mu.Lock()
	if ks.closed {
		ks.mu.Unlock()
		return nil
	}
	ks.closed = true
	ks.mu.Unlock()

	ks.cancel()
	return ks.PurgeAll()
}

func (ks *KeyedStore[T]) disposeEntry(key string, e *entry[T], event scopecache.EventType, stage errors.Stage) error {
	var err error
	if derr := disposeValue(e.value); derr != nil {
		err = errors.DisposeFailed(stage, ks.cfg.name, key, derr)
	}
	Logger().Debug("entry removed",
		zap.String("store", ks.cfg.name), zap.String("key", key),
		zap.Stringer("event", event))
	ks.notify(scopecache.Event{
		Type:  event,
		Store: ks.cfg.name,
		Key:   key,
	})
	return err
}

func (ks *KeyedStore[T]) notify(e scopecache.Event) {
	for _, o := range ks.cfg.observers {
		o.OnCacheEvent(e)
	}
}
