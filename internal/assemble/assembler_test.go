package assemble

import (
	"strings"
	"testing"
	"time"

	"compliancegen/internal/generator"
)

func testMeta() Metadata {
	return Metadata{
		Title:         "Cleaning and Sanitation Program",
		DocNumber:     "2.04",
		Version:       "1.0",
		EffectiveDate: "2026-09-01",
		Owner:         "QA Manager",
		Purpose:       "Scheduled cleaning and sanitation of the facility.",
		DocumentID:    "3f6c0f5e-0000-0000-0000-000000000000",
		GeneratedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestFinalDocument_OrdersByIDRegardlessOfInputOrder(t *testing.T) {
	sections := []generator.GeneratedSection{
		{ID: 9, Name: "Monitoring", Content: "9. Monitoring\n\nM."},
		{ID: 2, Name: "Purpose", Content: "2. Purpose\n\nP."},
		{ID: 15, Name: "References", Content: "15. References\n\nR."},
		{ID: 7, Name: "Hazard Analysis", Content: "7. Hazard Analysis\n\nH."},
	}

	doc := FinalDocument(testMeta(), sections, nil)

	last := -1
	for _, heading := range []string{"2. Purpose", "7. Hazard Analysis", "9. Monitoring", "15. References"} {
		idx := strings.LastIndex(doc, heading)
		if idx < 0 {
			t.Fatalf("document missing %q", heading)
		}
		if idx < last {
			t.Fatalf("section %q out of order", heading)
		}
		last = idx
	}
}

func TestFinalDocument_HeaderAndTOC(t *testing.T) {
	sections := []generator.GeneratedSection{
		{ID: 2, Name: "Purpose", Content: "2. Purpose\n\nP."},
		{ID: 3, Name: "Scope", Content: "3. Scope\n\nS."},
	}
	doc := FinalDocument(testMeta(), sections, []string{"sanitation_sop.txt", "training_log.txt"})

	for _, want := range []string{
		"CLEANING AND SANITATION PROGRAM",
		"Document Number: 2.04",
		"Version: 1.0",
		"Effective Date: 2026-09-01",
		"Document Owner: QA Manager",
		"TABLE OF CONTENTS",
		"  2. Purpose",
		"  3. Scope",
		"Evidence Sources:",
		"  - sanitation_sop.txt",
		"  - training_log.txt",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q", want)
		}
	}

	toc := strings.Index(doc, "TABLE OF CONTENTS")
	body := strings.Index(doc, "2. Purpose\n\nP.")
	if toc < 0 || body < 0 || toc > body {
		t.Fatal("table of contents should precede section bodies")
	}
}

func TestFinalDocument_PrependsMissingPrefix(t *testing.T) {
	sections := []generator.GeneratedSection{
		{ID: 5, Name: "Roles and Responsibilities", Content: "The QA manager owns this program."},
	}
	doc := FinalDocument(testMeta(), sections, nil)
	if !strings.Contains(doc, "5. Roles and Responsibilities\n\nThe QA manager owns this program.") {
		t.Fatal("missing prefix was not prepended")
	}
}

func TestFinalDocument_SignatureBlockAndRevisionHistory(t *testing.T) {
	doc := FinalDocument(testMeta(), []generator.GeneratedSection{
		{ID: 2, Name: "Purpose", Content: "2. Purpose\n\nP."},
	}, nil)

	for _, want := range []string{
		"APPROVALS",
		"Prepared By: _________________________  Date: __________",
		"Reviewed By: _________________________  Date: __________",
		"Approved By: _________________________  Date: __________",
		"REVISION HISTORY",
		"Initial generated version",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q", want)
		}
	}

	if !strings.Contains(doc, "1.0     | 2026-09-01 | Initial generated version") {
		t.Fatal("revision history not seeded with the current version row")
	}
}

func TestFinalDocument_Deterministic(t *testing.T) {
	sections := []generator.GeneratedSection{
		{ID: 3, Name: "Scope", Content: "3. Scope\n\nS."},
		{ID: 2, Name: "Purpose", Content: "2. Purpose\n\nP."},
	}
	a := FinalDocument(testMeta(), sections, []string{"a.txt"})
	b := FinalDocument(testMeta(), sections, []string{"a.txt"})
	if a != b {
		t.Fatal("FinalDocument is not deterministic")
	}
}
