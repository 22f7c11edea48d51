// Package evidence mines plain-text source documents for lines that ground a
// section's generation prompt. Extraction is keyword substring matching with
// a hard character budget so prompt size stays bounded.
package evidence

import (
	"strings"
	"unicode/utf8"

	"compliancegen/internal/spec"
)

// NoEvidenceSentinel is returned when no document yields a match. Callers
// treat it as "proceed with spec-only generation", never as an error.
const NoEvidenceSentinel = "No relevant evidence found in the provided documents."

// Document is one uploaded source document, already converted to plain text.
type Document struct {
	FileName string
	Text     string
}

// fallbackKeywords covers sections whose module catalog omits a keyword
// entry. Keyed by exact section title.
var fallbackKeywords = map[string][]string{
	"Procedures":   {"procedure", "step", "process"},
	"Monitoring":   {"monitor", "check", "inspect"},
	"Verification": {"verify", "audit", "review"},
}

// Extract returns keyword-matching line excerpts for one section, truncated
// to budget characters. At most maxLinesPerDoc matching lines are taken from
// each document.
func Extract(sectionTitle string, docs []Document, module *spec.ModuleSpec, budget, maxLinesPerDoc int) string {
	keywords := resolveKeywords(sectionTitle, module)

	var blocks []string
	for _, doc := range docs {
		lines := matchingLines(doc.Text, keywords, maxLinesPerDoc)
		if len(lines) == 0 {
			continue
		}
		blocks = append(blocks, "[Source: "+doc.FileName+"]\n"+strings.Join(lines, "\n"))
	}

	if len(blocks) == 0 {
		return NoEvidenceSentinel
	}

	combined := strings.Join(blocks, "\n\n")
	if len(combined) > budget {
		// Back up to a rune boundary so the cut never leaves invalid UTF-8.
		cut := budget
		for cut > 0 && !utf8.RuneStart(combined[cut]) {
			cut--
		}
		combined = combined[:cut]
	}
	return combined
}

func resolveKeywords(sectionTitle string, module *spec.ModuleSpec) []string {
	if module != nil {
		if kws, ok := module.ComplianceKeywords[sectionTitle]; ok && len(kws) > 0 {
			return kws
		}
	}
	if kws, ok := fallbackKeywords[sectionTitle]; ok {
		return kws
	}
	// Last resort: first word of the section title.
	first := sectionTitle
	if idx := strings.IndexByte(first, ' '); idx > 0 {
		first = first[:idx]
	}
	return []string{strings.ToLower(first)}
}

func matchingLines(text string, keywords []string, max int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				out = append(out, trimmed)
				break
			}
		}
		if len(out) >= max {
			break
		}
	}
	return out
}
