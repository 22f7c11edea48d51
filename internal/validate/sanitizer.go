package validate

import (
	"regexp"
	"strings"
)

var (
	boldRe         = regexp.MustCompile(`\*\*`)
	spacedColonRe  = regexp.MustCompile(`[ \t]+:`)
	multiBlankRe   = regexp.MustCompile(`\n{3,}`)
	annotationRe   = regexp.MustCompile(`(?m)^[A-Z][A-Z /_-]+ COMPLIANCE:[ \t]*`)
	metaCommentRe  = regexp.MustCompile(`(?i)^\s*here (is|are)[^\n]*:?\s*\n`)
	codeFenceRe    = regexp.MustCompile("(?s)^```[a-zA-Z]*\n(.*)\n```\\s*$")
	approvalLineRe = regexp.MustCompile(`(?i)^\s*(prepared|reviewed|approved) by\b.*_{3,}`)
	signatureishRe = regexp.MustCompile(`(?i)signature[:\s]*_{3,}|^_{5,}$`)
)

// Sanitize removes residual model artifacts: markdown code fences and bold
// markers, leading meta-commentary, spaced colons, and runs of blank lines.
func Sanitize(text string) string {
	if m := codeFenceRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		text = m[1]
	}
	text = metaCommentRe.ReplaceAllString(text, "")
	text = boldRe.ReplaceAllString(text, "")
	text = spacedColonRe.ReplaceAllString(text, ":")
	text = multiBlankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// StripComplianceAnnotations removes injected "XYZ COMPLIANCE:" style
// headers the model sometimes emits.
func StripComplianceAnnotations(text string) string {
	return annotationRe.ReplaceAllString(text, "")
}

// CutoffAfterSignatures truncates anything appearing after the approval
// signature block. The model occasionally appends summary commentary after
// the formal signatures; that must never reach the delivered document.
//
// The marker must be an actual signature line (label at line start with an
// underscore fill): compliance prose mentioning "approved by the QA manager"
// mid-sentence is body text and stays intact.
//
// Two passes: the first keeps legitimate signature-block furniture (blank
// lines, underscores, Date/Name/Title lines) after the approval marker; if
// post-signature content is still detected, a second aggressive pass cuts
// immediately after the nearest signature-looking line. Idempotent:
// applying it twice equals applying it once.
func CutoffAfterSignatures(text string) string {
	out := cutAfterApproval(text)
	if HasPostSignatureContent(out) {
		out = cutAfterSignatureish(out)
	}
	return out
}

// HasPostSignatureContent reports whether substantive text follows the
// signature block.
func HasPostSignatureContent(text string) bool {
	lines := strings.Split(text, "\n")
	idx := lastSignatureLine(lines)
	if idx < 0 {
		return false
	}
	for _, line := range lines[idx+1:] {
		if !isSignatureFurniture(line) {
			return true
		}
	}
	return false
}

// cutAfterApproval keeps everything through the approval line plus trailing
// signature furniture, dropping the rest.
func cutAfterApproval(text string) string {
	lines := strings.Split(text, "\n")
	marker := -1
	for i, line := range lines {
		if approvalLineRe.MatchString(line) {
			marker = i
			break
		}
	}
	if marker < 0 {
		return text
	}
	end := marker + 1
	for end < len(lines) && isSignatureFurniture(lines[end]) {
		end++
	}
	return strings.TrimRight(strings.Join(lines[:end], "\n"), "\n")
}

// cutAfterSignatureish cuts immediately after the last signature-looking
// line, discarding even furniture beyond it.
func cutAfterSignatureish(text string) string {
	lines := strings.Split(text, "\n")
	idx := lastSignatureLine(lines)
	if idx < 0 {
		return text
	}
	return strings.TrimRight(strings.Join(lines[:idx+1], "\n"), "\n")
}

func lastSignatureLine(lines []string) int {
	idx := -1
	for i, line := range lines {
		if approvalLineRe.MatchString(line) || signatureishRe.MatchString(strings.TrimSpace(line)) {
			idx = i
		}
	}
	return idx
}

func isSignatureFurniture(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.Count(trimmed, "_") >= 3 {
		return true
	}
	// Label lines only: prose that merely mentions a date or a reviewer
	// mid-sentence is content, not furniture.
	lower := strings.ToLower(trimmed)
	for _, kw := range []string{"date:", "name:", "title:", "signature", "prepared by", "reviewed by", "approved by"} {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}
