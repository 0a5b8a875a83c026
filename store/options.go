package store

import (
	"time"

	"github.com/keenanlab/scopecache"
)

// config holds settings shared by Store and KeyedStore.
type config struct {
	name      string
	observers []scopecache.Observer
	now       func() time.Time
}

// Option configures a Store or KeyedStore.
type Option func(*config)

func defaultConfig() config {
	return config{
		name: "default",
		now:  time.Now,
	}
}

// WithName sets the store name used in errors, logs and events.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithObserver registers an observer for lifecycle events.
func WithObserver(o scopecache.Observer) Option {
	return func(c *config) {
		c.observers = append(c.observers, o)
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}
