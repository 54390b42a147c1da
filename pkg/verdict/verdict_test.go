package verdict

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func validEvidence() Evidence {
	return Evidence{
		RequestID:  "req-1",
		Actor:      "svc-reports",
		Route:      "/v1/reports",
		InputsHash: "abc",
	}
}

func TestSeal_RejectsIncompleteVerdicts(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		fn   func() (*Verdict, error)
	}{
		{"missing id", func() (*Verdict, error) {
			return Seal("", StatusAllow, nil, "t", "v1", now, validEvidence(), false)
		}},
		{"invalid status", func() (*Verdict, error) {
			return Seal("id", "maybe", nil, "t", "v1", now, validEvidence(), false)
		}},
		{"missing tenant", func() (*Verdict, error) {
			return Seal("id", StatusAllow, nil, "", "v1", now, validEvidence(), false)
		}},
		{"missing policy version", func() (*Verdict, error) {
			return Seal("id", StatusAllow, nil, "t", "", now, validEvidence(), false)
		}},
		{"zero time", func() (*Verdict, error) {
			return Seal("id", StatusAllow, nil, "t", "v1", time.Time{}, validEvidence(), false)
		}},
		{"missing request id", func() (*Verdict, error) {
			return Seal("id", StatusAllow, nil, "t", "v1", now, Evidence{}, false)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); err == nil {
				t.Error("Seal accepted an incomplete verdict")
			}
		})
	}
}

func TestSeal_CopiesReasons(t *testing.T) {
	reasons := []Reason{{Code: "KILL_SWITCH", Message: "m"}}
	v, err := Seal("id", StatusDeny, reasons, "t", "v1", time.Now(), validEvidence(), false)
	if err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's slice or the returned copy must not change
	// the sealed verdict.
	reasons[0].Code = "HACKED"
	got := v.Reasons()
	got[0].Code = "ALSO_HACKED"

	if v.PrimaryReason() != "KILL_SWITCH" {
		t.Errorf("PrimaryReason = %s, sealed verdict was mutated", v.PrimaryReason())
	}
}

func TestVerdict_ReasonCodes(t *testing.T) {
	v, err := Seal("id", StatusDeny, []Reason{
		{Code: "KILL_SWITCH"},
		{Code: "POLICY_DENY"},
	}, "t", "v1", time.Now(), validEvidence(), false)
	if err != nil {
		t.Fatal(err)
	}

	codes := v.ReasonCodes()
	if len(codes) != 2 || codes[0] != "KILL_SWITCH" || codes[1] != "POLICY_DENY" {
		t.Errorf("ReasonCodes = %v", codes)
	}
}

func TestVerdict_MarshalJSON(t *testing.T) {
	decided := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	v, err := Seal("vid-1", StatusDeny, []Reason{{Code: "CROSS_TENANT", Message: "no"}},
		"tenant-alpha", "rules-9", decided, validEvidence(), true)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["verdictId"] != "vid-1" {
		t.Errorf("verdictId = %v", decoded["verdictId"])
	}
	if decoded["status"] != "deny" {
		t.Errorf("status = %v", decoded["status"])
	}
	if decoded["policyVersion"] != "rules-9" {
		t.Errorf("policyVersion = %v", decoded["policyVersion"])
	}
	if decoded["breakGlass"] != true {
		t.Errorf("breakGlass = %v", decoded["breakGlass"])
	}
	if !strings.Contains(string(data), `"requestId":"req-1"`) {
		t.Errorf("evidence missing from %s", data)
	}
}

func TestPrimaryReason_EmptyForPlainAllow(t *testing.T) {
	v, err := Seal("id", StatusAllow, nil, "t", "v1", time.Now(), validEvidence(), false)
	if err != nil {
		t.Fatal(err)
	}
	if v.PrimaryReason() != "" {
		t.Errorf("PrimaryReason = %q, want empty", v.PrimaryReason())
	}
}
