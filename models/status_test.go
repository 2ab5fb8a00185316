package models

import (
	"encoding/json"
	"testing"
)

func TestParseStatusCode(t *testing.T) {
	tests := []struct {
		in   string
		want StatusCode
	}{
		{"Accepted", StatusAccepted},
		{"wrong", StatusWrongAnswer},
		{"Wrong Answer", StatusWrongAnswer},
		{" memory ", StatusMemoryLimitExceeded},
		{"time limit exceeded", StatusTimeLimitExceeded},
		{"Compilation error", StatusCompilationError},
		{"runtime", StatusRuntimeError},
		{"Skipped", StatusSkipped},
		{"unknown", StatusUnknown},
	}

	for _, tt := range tests {
		got, err := ParseStatusCode(tt.in)
		if err != nil {
			t.Errorf("ParseStatusCode(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatusCode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseStatusCode("banana"); err == nil {
		t.Error("ParseStatusCode(banana) succeeded, want error")
	}
}

func TestStatusCode_JSONLabel(t *testing.T) {
	sub := Submission{Title: "Two Sum", StatusCode: StatusMemoryLimitExceeded}

	data, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if raw["statusCode"] != "Memory Limit Exceeded" {
		t.Errorf("statusCode = %v, want %q", raw["statusCode"], "Memory Limit Exceeded")
	}
}

func TestSnapshot_Consistent(t *testing.T) {
	subs := []Submission{{Title: "a"}, {Title: "b"}}

	if !(Snapshot{Submissions: subs, Stats: Stats{TotalSubmissions: 2}}).Consistent() {
		t.Error("matching snapshot reported inconsistent")
	}
	if (Snapshot{Submissions: subs, Stats: Stats{TotalSubmissions: 3}}).Consistent() {
		t.Error("mismatched total reported consistent")
	}
	if (Snapshot{}).Consistent() {
		t.Error("empty snapshot without submissions reported consistent")
	}
}
