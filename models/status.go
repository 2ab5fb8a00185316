package models

import (
	"fmt"
	"strings"
)

// StatusCode is the classified outcome of a submission.
type StatusCode int

const (
	StatusUnknown StatusCode = iota
	StatusAccepted
	StatusSkipped
	StatusMemoryLimitExceeded
	StatusTimeLimitExceeded
	StatusRuntimeError
	StatusCompilationError
	StatusWrongAnswer
)

// statusLabels are the display labels, also used as the serialized form.
var statusLabels = map[StatusCode]string{
	StatusUnknown:             "Unknown",
	StatusAccepted:            "Accepted",
	StatusSkipped:             "Skipped",
	StatusMemoryLimitExceeded: "Memory Limit Exceeded",
	StatusTimeLimitExceeded:   "Time Limit Exceeded",
	StatusRuntimeError:        "Runtime error",
	StatusCompilationError:    "Compilation error",
	StatusWrongAnswer:         "Wrong Answer",
}

// statusAliases are the short selector names accepted on the command line.
var statusAliases = map[string]StatusCode{
	"unknown":     StatusUnknown,
	"accepted":    StatusAccepted,
	"skipped":     StatusSkipped,
	"memory":      StatusMemoryLimitExceeded,
	"time":        StatusTimeLimitExceeded,
	"runtime":     StatusRuntimeError,
	"compilation": StatusCompilationError,
	"wrong":       StatusWrongAnswer,
}

// AllStatusCodes lists every code in display order.
func AllStatusCodes() []StatusCode {
	return []StatusCode{
		StatusAccepted,
		StatusSkipped,
		StatusMemoryLimitExceeded,
		StatusTimeLimitExceeded,
		StatusRuntimeError,
		StatusCompilationError,
		StatusWrongAnswer,
		StatusUnknown,
	}
}

// Alias returns the short selector name for s.
func (s StatusCode) Alias() string {
	for alias, code := range statusAliases {
		if code == s {
			return alias
		}
	}
	return "unknown"
}

func (s StatusCode) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return statusLabels[StatusUnknown]
}

// ParseStatusCode accepts a display label ("Wrong Answer") or a short alias
// ("wrong"), case-insensitively.
func ParseStatusCode(s string) (StatusCode, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	if code, ok := statusAliases[needle]; ok {
		return code, nil
	}
	for code, label := range statusLabels {
		if strings.ToLower(label) == needle {
			return code, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown status code: %q", s)
}

func (s StatusCode) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StatusCode) UnmarshalText(text []byte) error {
	code, err := ParseStatusCode(string(text))
	if err != nil {
		return err
	}
	*s = code
	return nil
}
