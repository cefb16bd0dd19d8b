package encryption

import (
	"bytes"
	"strings"
	"testing"
)

func TestAgeKeyWrapper_RoundTrip(t *testing.T) {
	t.Parallel()
	w := NewAgeKeyWrapper(testWorkFactor)
	key := testKey(7)

	wrapped, err := w.Wrap(key, "1234")
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	if !strings.HasPrefix(wrapped, "-----BEGIN AGE ENCRYPTED FILE-----") {
		t.Errorf("Wrap() output is not armored: %q", wrapped)
	}

	got, err := w.Unwrap(wrapped, "1234")
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("Unwrap() returned a different key")
	}
}

func TestAgeKeyWrapper_WrongPinFails(t *testing.T) {
	t.Parallel()
	w := NewAgeKeyWrapper(testWorkFactor)

	wrapped, err := w.Wrap(testKey(7), "1234")
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}

	for _, pin := range []string{"9999", "1235", "0000", "12345"} {
		if _, err := w.Unwrap(wrapped, pin); err == nil {
			t.Errorf("Unwrap(%q) expected error", pin)
		}
	}
}

func TestAgeKeyWrapper_CorruptedFails(t *testing.T) {
	t.Parallel()
	w := NewAgeKeyWrapper(testWorkFactor)

	if _, err := w.Unwrap("not an age file", "1234"); err == nil {
		t.Error("Unwrap() of garbage expected error")
	}
}

func TestAgeKeyWrapper_EmptyPinRejected(t *testing.T) {
	t.Parallel()
	if _, err := NewAgeKeyWrapper(testWorkFactor).Wrap(testKey(1), ""); err == nil {
		t.Error("Wrap() with empty PIN expected error")
	}
}
