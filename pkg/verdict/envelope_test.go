package verdict

import (
	"errors"
	"testing"
	"time"
)

func sealedVerdict(t *testing.T) *Verdict {
	t.Helper()
	v, err := Seal("vid-1", StatusAllow, nil, "tenant-alpha", "rules-1",
		time.Now(), Evidence{RequestID: "req-1"}, false)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNewEnvelope_RequiresVerdict(t *testing.T) {
	if _, err := NewEnvelope([]byte("payload"), nil, false); err == nil {
		t.Error("envelope without a verdict must fail, not proceed")
	}
}

func TestEnvelope_HashRoundTrip(t *testing.T) {
	env, err := NewEnvelope([]byte(`{"report":"q3"}`), sealedVerdict(t), false)
	if err != nil {
		t.Fatal(err)
	}

	if err := env.Validate(); err != nil {
		t.Errorf("fresh envelope failed validation: %v", err)
	}
	// Repeated validation is stable.
	if err := env.Validate(); err != nil {
		t.Errorf("second validation failed: %v", err)
	}
}

func TestEnvelope_DetectsTamper(t *testing.T) {
	env, err := NewEnvelope([]byte("original"), sealedVerdict(t), false)
	if err != nil {
		t.Fatal(err)
	}

	env.Data = []byte("tampered")
	err = env.Validate()
	if err == nil {
		t.Fatal("mutated data passed validation")
	}
	if !errors.Is(err, ErrHashMismatch) {
		t.Errorf("error = %v, want ErrHashMismatch", err)
	}
}

func TestEnvelope_EmptyPayload(t *testing.T) {
	env, err := NewEnvelope(nil, sealedVerdict(t), true)
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Validate(); err != nil {
		t.Errorf("empty payload should still round-trip: %v", err)
	}
	if !env.IsSimulated {
		t.Error("simulated flag lost")
	}
}
