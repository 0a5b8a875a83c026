package main

import (
	"context"
	"crypto/rand"
	"fmt"
	mathrand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keenanlab/scopecache"
	"github.com/keenanlab/scopecache/internal/config"
	"github.com/keenanlab/scopecache/leakcheck"
	"github.com/keenanlab/scopecache/scope"
	"github.com/keenanlab/scopecache/store"
)

// workload drives simulated scopes against one keyed store: each scope
// loads a random key, attaches, holds the resource for a while, then
// detaches. With leak_every set it forgets every Nth detach, which is
// what the leak monitor exists to catch.
type workload struct {
	cfg   config.Demo
	store *store.KeyedStore[[]byte]
	reg   *scope.Registry[[]byte]
	mon   *leakcheck.Monitor

	seq    atomic.Uint64
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func newWorkload(cfg config.Demo, observers ...scopecache.Observer) *workload {
	storeOpts := []store.Option{store.WithName("demo")}
	regOpts := []scope.RegistryOption{}
	monOpts := []leakcheck.Option{}
	for _, o := range observers {
		storeOpts = append(storeOpts, store.WithObserver(o))
		regOpts = append(regOpts, scope.WithRegistryObserver(o))
		monOpts = append(monOpts, leakcheck.WithObserver(o))
	}
	return &workload{
		cfg:   cfg,
		store: store.NewKeyed[[]byte](storeOpts...),
		reg:   scope.NewRegistry[[]byte](regOpts...),
		mon:   leakcheck.New(monOpts...),
	}
}

// start launches the simulated scopes.
func (w *workload) start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	for i := 0; i < w.cfg.Scopes; i++ {
		w.wg.Add(1)
		go w.runScope(ctx, i)
	}
}

// stop tears the workload down and disposes cached resources.
func (w *workload) stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.store.Close()
}

func (w *workload) runScope(ctx context.Context, worker int) {
	defer w.wg.Done()
	for {
		key := fmt.Sprintf("res-%d", mathrand.IntN(w.cfg.Keys))
		data, err := w.store.GetOrLoad(ctx, key, w.load)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		id := fmt.Sprintf("scope-%d-%d", worker, w.seq.Add(1))
		h := scope.New[[]byte](id,
			scope.WithRegistry(w.reg),
			scope.WithLeakSink[[]byte](w.mon),
		)
		if err := h.Attach(data); err != nil {
			return
		}

		select {
		case <-time.After(w.cfg.Hold):
		case <-ctx.Done():
			h.Detach()
			return
		}

		if w.cfg.LeakEvery > 0 && w.seq.Load()%uint64(w.cfg.LeakEvery) == 0 {
			// Deliberately drop the handle without detaching so the
			// monitor has something to report.
			continue
		}
		h.Detach()
	}
}

// load simulates an expensive construction: a latency pause and a fresh
// random payload.
func (w *workload) load(ctx context.Context) ([]byte, error) {
	if w.cfg.LoadTime > 0 {
		select {
		case <-time.After(w.cfg.LoadTime):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	buf := make([]byte, 64<<10)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate payload: %w", err)
	}
	return buf, nil
}
