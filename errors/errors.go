package errors

import (
	"fmt"
	"strings"
)

// Stage indicates where in the resource lifecycle the error occurred
type Stage string

const (
	StageLoad   Stage = "load"   // resource construction
	StageAttach Stage = "attach" // scope handle attachment
	StageDetach Stage = "detach" // scope handle release
	StagePurge  Stage = "purge"  // explicit removal and disposal
	StageEvict  Stage = "evict"  // idle eviction
	StageConfig Stage = "config" // configuration loading/validation
)

// Kind categorizes the error
type Kind string

const (
	KindLoaderFailed    Kind = "loader_failed"
	KindStoreClosed     Kind = "store_closed"
	KindAlreadyAttached Kind = "already_attached"
	KindHandleDetached  Kind = "handle_detached"
	KindNotFound        Kind = "not_found"
	KindDisposeFailed   Kind = "dispose_failed"
	KindInvalidInput    Kind = "invalid_input"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Stage  Stage
	Kind   Kind
	Store  string
	Key    string
	Scope  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Stage))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Store != "" {
		b.WriteString(" store ")
		b.WriteString(e.Store)
	}
	if e.Key != "" {
		b.WriteString(" key ")
		b.WriteString(strconvQuote(e.Key))
	}
	if e.Scope != "" {
		b.WriteString(" scope ")
		b.WriteString(strconvQuote(e.Scope))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func strconvQuote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's stage and kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Stage == t.Stage && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(stage Stage, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Stage: stage,
			Kind:  kind,
		},
	}
}

// Store sets the store name
func (b *Builder) Store(name string) *Builder {
	b.err.Store = name
	return b
}

// Key sets the entry key
func (b *Builder) Key(key string) *Builder {
	b.err.Key = key
	return b
}

// Scope sets the scope ID
func (b *Builder) Scope(id string) *Builder {
	b.err.Scope = id
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// LoaderFailed wraps a loader error for the given store and key
func LoaderFailed(store, key string, cause error) *Error {
	return &Error{
		Stage: StageLoad,
		Kind:  KindLoaderFailed,
		Store: store,
		Key:   key,
		Cause: cause,
	}
}

// StoreClosed reports an operation against a closed store
func StoreClosed(store string) *Error {
	return &Error{
		Stage:  StageLoad,
		Kind:   KindStoreClosed,
		Store:  store,
		Detail: "store has been closed",
	}
}

// AlreadyAttached reports a second Attach on the same handle
func AlreadyAttached(scope string) *Error {
	return &Error{
		Stage:  StageAttach,
		Kind:   KindAlreadyAttached,
		Scope:  scope,
		Detail: "handle is already attached to a resource",
	}
}

// HandleDetached reports an Attach on a handle whose scope already exited
func HandleDetached(scope string) *Error {
	return &Error{
		Stage:  StageAttach,
		Kind:   KindHandleDetached,
		Scope:  scope,
		Detail: "handle has been detached and cannot be reused",
	}
}

// NotFound reports a purge of an unknown key
func NotFound(store, key string) *Error {
	return &Error{
		Stage: StagePurge,
		Kind:  KindNotFound,
		Store: store,
		Key:   key,
	}
}

// DisposeFailed wraps a Dispose error raised during purge or eviction
func DisposeFailed(stage Stage, store, key string, cause error) *Error {
	return &Error{
		Stage: stage,
		Kind:  KindDisposeFailed,
		Store: store,
		Key:   key,
		Cause: cause,
	}
}

// Config reports a configuration problem
func Config(detail string, args ...any) *Error {
	return &Error{
		Stage:  StageConfig,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf(detail, args...),
	}
}
