package structure

import (
	"strings"
	"testing"

	"compliancegen/internal/spec"
)

func newLoader(t *testing.T) *spec.Loader {
	t.Helper()
	l, err := spec.NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	return l
}

func TestBuildDeterministicStructure_ByteIdentical(t *testing.T) {
	l := newLoader(t)
	answers := map[string]string{"company": "Acme Produce", "version": "2.1"}

	first, err := BuildDeterministicStructure(l, "primusgfs", "2.04", answers)
	if err != nil {
		t.Fatalf("BuildDeterministicStructure() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := BuildDeterministicStructure(l, "primusgfs", "2.04", answers)
		if err != nil {
			t.Fatalf("repeat call error = %v", err)
		}
		if again != first {
			t.Fatalf("output differs on call %d", i+2)
		}
	}
}

func TestBuildDeterministicStructure_ProcedureBullets(t *testing.T) {
	l := newLoader(t)

	out, err := BuildDeterministicStructure(l, "primusgfs", "2.04", nil)
	if err != nil {
		t.Fatalf("BuildDeterministicStructure() error = %v", err)
	}

	// One bullet per required requirement plus its mandatory statements.
	for _, want := range []string{
		"2.04.01: A master sanitation schedule",
		"MANDATORY (2.04.01): The master sanitation schedule shall list responsible persons per task.",
		"2.04.05: Sanitation chemicals are stored locked",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("outline missing %q", want)
		}
	}

	// Micro-rule categories resolve in micro_inject order, rule ids sorted.
	sanIdx := strings.Index(out, "[sanitation/SAN-01]")
	wtrIdx := strings.Index(out, "[water_safety/WTR-01]")
	if sanIdx < 0 || wtrIdx < 0 {
		t.Fatalf("outline missing micro rules (san=%d wtr=%d)", sanIdx, wtrIdx)
	}
	if sanIdx > wtrIdx {
		t.Fatal("sanitation rules should precede water_safety rules")
	}
	if strings.Index(out, "[sanitation/SAN-01]") > strings.Index(out, "[sanitation/SAN-02]") {
		t.Fatal("rule ids not sorted within category")
	}
}

func TestBuildDeterministicStructure_SectionsWithoutDispatch(t *testing.T) {
	l := newLoader(t)

	out, err := BuildDeterministicStructure(l, "primusgfs", "1.01", nil)
	if err != nil {
		t.Fatalf("BuildDeterministicStructure() error = %v", err)
	}

	// Section 13 (Training) has no bullet builder registered: heading is
	// present, no Required content block under it.
	idx := strings.Index(out, "13. Training")
	if idx < 0 {
		t.Fatal("outline missing section 13 heading")
	}
	rest := out[idx:]
	end := strings.Index(rest, "14. Review")
	if end < 0 {
		t.Fatal("outline missing section 14 heading")
	}
	if strings.Contains(rest[:end], "Required content:") {
		t.Fatal("section 13 should have no injected bullets")
	}
}

func TestBuildDeterministicStructure_CAPAAndTraceability(t *testing.T) {
	l := newLoader(t)

	out, err := BuildDeterministicStructure(l, "primusgfs", "2.11", nil)
	if err != nil {
		t.Fatalf("BuildDeterministicStructure() error = %v", err)
	}
	if !strings.Contains(out, "Pest sightings trigger a corrective action record") {
		t.Fatal("outline missing capa_inject bullet")
	}
	if !strings.Contains(out, "Pest control service records are retained") {
		t.Fatal("outline missing traceability_inject bullet")
	}
}

func TestBuildDeterministicStructure_UnknownSubmodule(t *testing.T) {
	l := newLoader(t)

	_, err := BuildDeterministicStructure(l, "primusgfs", "9.99", nil)
	if !spec.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestBuildRequirementsList(t *testing.T) {
	l := newLoader(t)

	out, err := BuildRequirementsList(l, "primusgfs", "1.01")
	if err != nil {
		t.Fatalf("BuildRequirementsList() error = %v", err)
	}

	if !strings.Contains(out, "1.01.01 [required]") {
		t.Fatal("missing required marker")
	}
	if !strings.Contains(out, "1.01.04 [optional]") {
		t.Fatal("missing optional marker")
	}
	if !strings.Contains(out, "MANDATORY: Senior management shall sign and date the food safety policy.") {
		t.Fatal("missing mandatory statement")
	}
	if !strings.Contains(out, "Monitoring: Policy posting and staff awareness") {
		t.Fatal("missing monitoring expectations")
	}

	again, err := BuildRequirementsList(l, "primusgfs", "1.01")
	if err != nil {
		t.Fatalf("repeat call error = %v", err)
	}
	if again != out {
		t.Fatal("BuildRequirementsList is not deterministic")
	}
}
