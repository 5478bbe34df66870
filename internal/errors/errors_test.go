package errors

import (
	stderrors "errors"
	"testing"
)

func TestAppErrorFormatting(t *testing.T) {
	err := New(ErrNoIdentity, "no cached identity")
	want := "[NO_IDENTITY] no cached identity"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	inner := stderrors.New("disk full")
	wrapped := Wrap(ErrStorageUnavailable, "failed to migrate", inner)
	want = "[STORAGE_UNAVAILABLE] failed to migrate: disk full"
	if wrapped.Error() != want {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), want)
	}
	if !stderrors.Is(wrapped, inner) {
		t.Errorf("wrapped error does not unwrap to inner")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrNotFound, "no match")
	if !Is(err, ErrNotFound) {
		t.Errorf("Is() = false, want true")
	}
	if Is(err, ErrNoIdentity) {
		t.Errorf("Is() matched the wrong code")
	}
	if Is(stderrors.New("plain"), ErrNotFound) {
		t.Errorf("Is() matched a non-app error")
	}
}
