// Package leakcheck detects scope handles that were reclaimed by the
// garbage collector while still attached.
//
// A handle collected without Detach means some scope exit path skipped
// its release. Nothing breaks immediately, since the weak registry
// forgets the handle, but the same code that forgets Detach is one
// refactor away from parking the resource somewhere that does pin the
// scope. This package makes the omission loud instead of silent.
//
// Wire a Monitor into handles at construction:
//
//	mon := leakcheck.New()
//	h := scope.New[[]byte]("screen-1", scope.WithLeakSink[[]byte](mon))
//
// and fail tests that leak:
//
//	defer leakcheck.ExpectNone(t, mon)
package leakcheck
