package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Stage:  StageLoad,
				Kind:   KindLoaderFailed,
				Store:  "images",
				Key:    "background",
				Detail: "connection refused",
			},
			contains: []string{"[load]", "loader_failed", "images", `"background"`, "connection refused"},
		},
		{
			name: "minimal error",
			err: &Error{
				Stage: StageAttach,
				Kind:  KindAlreadyAttached,
			},
			contains: []string{"[attach]", "already_attached"},
		},
		{
			name: "error with cause",
			err: &Error{
				Stage:  StagePurge,
				Kind:   KindDisposeFailed,
				Detail: "entry still referenced",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[purge]", "dispose_failed", "entry still referenced", "caused by", "underlying error"},
		},
		{
			name: "scope error",
			err: &Error{
				Stage: StageAttach,
				Kind:  KindHandleDetached,
				Scope: "screen-1",
			},
			contains: []string{"[attach]", "handle_detached", `"screen-1"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := LoaderFailed("images", "bg", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := New(StageLoad, KindStoreClosed).Store("images").Build()

	if !errors.Is(err, &Error{Stage: StageLoad, Kind: KindStoreClosed}) {
		t.Error("errors with matching stage and kind should match")
	}
	if errors.Is(err, &Error{Stage: StageLoad, Kind: KindLoaderFailed}) {
		t.Error("errors with different kind should not match")
	}
	if errors.Is(err, &Error{Stage: StagePurge, Kind: KindStoreClosed}) {
		t.Error("errors with different stage should not match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("disk full")
	err := New(StageEvict, KindDisposeFailed).
		Store("blobs").
		Key("chunk-7").
		Detail("dispose after %d uses", 3).
		Cause(cause).
		Build()

	if err.Stage != StageEvict || err.Kind != KindDisposeFailed {
		t.Fatalf("unexpected stage/kind: %s/%s", err.Stage, err.Kind)
	}
	if err.Store != "blobs" || err.Key != "chunk-7" {
		t.Fatalf("unexpected store/key: %s/%s", err.Store, err.Key)
	}
	if err.Detail != "dispose after 3 uses" {
		t.Fatalf("unexpected detail: %q", err.Detail)
	}
	if err.Cause != cause {
		t.Fatal("cause not carried")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	if e := AlreadyAttached("s1"); e.Kind != KindAlreadyAttached || e.Scope != "s1" {
		t.Errorf("AlreadyAttached: %+v", e)
	}
	if e := HandleDetached("s2"); e.Kind != KindHandleDetached || e.Scope != "s2" {
		t.Errorf("HandleDetached: %+v", e)
	}
	if e := StoreClosed("st"); e.Kind != KindStoreClosed || e.Store != "st" {
		t.Errorf("StoreClosed: %+v", e)
	}
	if e := NotFound("st", "k"); e.Kind != KindNotFound || e.Key != "k" {
		t.Errorf("NotFound: %+v", e)
	}
	if e := Config("bad interval %q", "x"); e.Stage != StageConfig || !strings.Contains(e.Detail, `"x"`) {
		t.Errorf("Config: %+v", e)
	}
}
