package evidence

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"compliancegen/internal/spec"
)

func testModule() *spec.ModuleSpec {
	return &spec.ModuleSpec{
		Module: "primusgfs",
		ComplianceKeywords: map[string][]string{
			"Monitoring": {"monitor", "check", "frequency"},
		},
	}
}

func TestExtract_MatchingLines(t *testing.T) {
	docs := []Document{
		{
			FileName: "sanitation_sop.txt",
			Text: "Purpose of this SOP.\n" +
				"Supervisors monitor sanitizer strength daily.\n" +
				"Unrelated storage note.\n" +
				"Check ATP swabs weekly per the frequency table.\n",
		},
	}

	out := Extract("Monitoring", docs, testModule(), 2000, 5)
	if !strings.Contains(out, "[Source: sanitation_sop.txt]") {
		t.Fatalf("missing source header: %q", out)
	}
	if !strings.Contains(out, "Supervisors monitor sanitizer strength daily.") {
		t.Fatal("missing matching line")
	}
	if strings.Contains(out, "Unrelated storage note.") {
		t.Fatal("non-matching line leaked into evidence")
	}
}

func TestExtract_LineCapPerDocument(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "monitor reading number %d\n", i)
	}
	docs := []Document{{FileName: "log.txt", Text: b.String()}}

	out := Extract("Monitoring", docs, testModule(), 10000, 5)
	matches := strings.Count(out, "monitor reading")
	if matches != 5 {
		t.Fatalf("matching lines = %d, want 5", matches)
	}
}

func TestExtract_BudgetBound(t *testing.T) {
	long := strings.Repeat("monitor this very long line of evidence text\n", 200)
	docs := []Document{
		{FileName: "a.txt", Text: long},
		{FileName: "b.txt", Text: long},
		{FileName: "c.txt", Text: long},
	}

	for _, budget := range []int{100, 1000, 1500, 2000} {
		out := Extract("Monitoring", docs, testModule(), budget, 5)
		if len(out) > budget {
			t.Fatalf("budget %d exceeded: len = %d", budget, len(out))
		}
	}
}

func TestExtract_BudgetCutsOnRuneBoundary(t *testing.T) {
	// Multi-byte runes across the budget boundary must not be split.
	line := "monitor " + strings.Repeat("é", 600)
	docs := []Document{{FileName: "a.txt", Text: line + "\n"}}

	for budget := 990; budget < 1010; budget++ {
		out := Extract("Monitoring", docs, testModule(), budget, 5)
		if len(out) > budget {
			t.Fatalf("budget %d exceeded: len = %d", budget, len(out))
		}
		if !utf8.ValidString(out) {
			t.Fatalf("budget %d left invalid UTF-8 at the tail", budget)
		}
	}
}

func TestExtract_SentinelWhenNoMatches(t *testing.T) {
	docs := []Document{{FileName: "a.txt", Text: "nothing relevant here\n"}}

	out := Extract("Monitoring", docs, testModule(), 1000, 5)
	if out != NoEvidenceSentinel {
		t.Fatalf("got %q, want sentinel", out)
	}

	if got := Extract("Monitoring", nil, testModule(), 1000, 5); got != NoEvidenceSentinel {
		t.Fatalf("empty doc set: got %q, want sentinel", got)
	}
}

func TestResolveKeywords_Fallbacks(t *testing.T) {
	// No catalog entry, no static fallback: first word lowercased.
	kws := resolveKeywords("Widget Handling", &spec.ModuleSpec{})
	if len(kws) != 1 || kws[0] != "widget" {
		t.Fatalf("keywords = %v, want [widget]", kws)
	}

	// Static fallback table applies when the catalog omits the section.
	kws = resolveKeywords("Procedures", &spec.ModuleSpec{})
	if len(kws) == 0 || kws[0] != "procedure" {
		t.Fatalf("keywords = %v, want procedure fallback", kws)
	}
}
