package classifier

import (
	"strings"

	"github.com/dtnitsch/codehub/models"
)

// rule matches a raw compiler status. Rules are evaluated in order and the
// first match wins.
type rule struct {
	code  models.StatusCode
	exact bool
	text  string
}

var rules = []rule{
	{code: models.StatusAccepted, exact: true, text: "Accepted"},
	{code: models.StatusWrongAnswer, text: "Wrong"},
	{code: models.StatusMemoryLimitExceeded, text: "Memory limit"},
	{code: models.StatusTimeLimitExceeded, text: "Time limit"},
	{code: models.StatusSkipped, exact: true, text: "Skipped"},
	{code: models.StatusCompilationError, text: "Compilation error"},
	{code: models.StatusRuntimeError, text: "Runtime error"},
}

// Classify maps a raw compiler status string to a status code.
// Matching is case-sensitive. Anything unmatched is StatusUnknown.
func Classify(raw string) models.StatusCode {
	for _, r := range rules {
		if r.exact {
			if raw == r.text {
				return r.code
			}
			continue
		}
		if strings.Contains(raw, r.text) {
			return r.code
		}
	}
	return models.StatusUnknown
}

// ClassifyAll assigns StatusCode on every submission in place.
func ClassifyAll(subs []models.Submission) {
	for i := range subs {
		subs[i].StatusCode = Classify(subs[i].CompilerStatus)
	}
}
