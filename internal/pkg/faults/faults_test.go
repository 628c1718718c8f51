package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsWrappedFaults(t *testing.T) {
	base := Provider("transcription", errors.New("upstream 503"))
	wrapped := fmt.Errorf("transcribe: %w", base)

	if got := KindOf(wrapped); got != KindProvider {
		t.Fatalf("KindOf(wrapped) = %q, want %q", got, KindProvider)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Fatalf("KindOf(plain) = %q, want empty", got)
	}
}

func TestRetryablePartition(t *testing.T) {
	for _, kind := range []string{KindProvider, KindNetwork} {
		if !Retryable(kind) {
			t.Errorf("Retryable(%s) = false, want true", kind)
		}
	}
	for _, kind := range NonRetryableKinds() {
		if Retryable(kind) {
			t.Errorf("Retryable(%s) = true, want false", kind)
		}
	}
}

func TestErrorStringIncludesStep(t *testing.T) {
	f := Preconditionf("keyMoments", "transcript has no chapters")
	want := "PreconditionError (step=keyMoments): transcript has no chapters"
	if f.Error() != want {
		t.Fatalf("Error() = %q, want %q", f.Error(), want)
	}
}
