// Package validate post-processes generated section text: flagging suspect
// output and scrubbing model artifacts. Validation findings are warnings for
// operator review, never blockers; generation always proceeds.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Result reports validation findings for one section.
type Result struct {
	Valid  bool
	Issues []string
}

// placeholderTokens are strings the model must never leave in a delivered
// document.
var placeholderTokens = []string{
	"[TO BE COMPLETED]",
	"[TBD]",
	"[INSERT",
	"[PLACEHOLDER",
	"[FILL IN",
	"[COMPANY NAME]",
	"TODO:",
}

// MinSectionLength is the lower bound used when callers pass no override.
const MinSectionLength = 100

var leadingNumberRe = regexp.MustCompile(`^\s*(\d+)\.`)

// ValidateOutput checks one section's generated text against minLength
// (non-positive falls back to MinSectionLength). A false Valid means the
// section needs operator follow-up, not that it is rejected.
func ValidateOutput(id int, name, text string, minLength int) Result {
	res := Result{Valid: true}
	if minLength <= 0 {
		minLength = MinSectionLength
	}

	if len(strings.TrimSpace(text)) < minLength {
		res.Valid = false
		res.Issues = append(res.Issues,
			fmt.Sprintf("section %d (%s): content below minimum length (%d chars)", id, name, len(strings.TrimSpace(text))))
	}

	upper := strings.ToUpper(text)
	for _, token := range placeholderTokens {
		if strings.Contains(upper, token) {
			res.Valid = false
			res.Issues = append(res.Issues,
				fmt.Sprintf("section %d (%s): placeholder %q present in output", id, name, token))
		}
	}

	m := leadingNumberRe.FindStringSubmatch(text)
	if m == nil || m[1] != fmt.Sprintf("%d", id) {
		res.Valid = false
		res.Issues = append(res.Issues,
			fmt.Sprintf("section %d (%s): content does not start with its section number", id, name))
	}

	return res
}
