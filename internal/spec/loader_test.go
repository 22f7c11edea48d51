package spec

import (
	"testing"
)

func TestLoader_ModuleSpec(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	mod, err := l.ModuleSpec("primusgfs")
	if err != nil {
		t.Fatalf("ModuleSpec() error = %v", err)
	}
	if mod.ModuleName == "" {
		t.Fatal("ModuleName is empty")
	}
	if len(mod.Sections) != 15 {
		t.Fatalf("Sections = %d, want 15", len(mod.Sections))
	}

	high := 0
	for _, s := range mod.Sections {
		if s.Priority == PriorityHigh {
			high++
			if s.Batchable {
				t.Fatalf("high-priority section %d marked batchable", s.Number)
			}
		}
	}
	if high != 2 {
		t.Fatalf("high-priority sections = %d, want 2", high)
	}
}

func TestLoader_ModuleSpec_NotFound(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	_, err = l.ModuleSpec("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown module")
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false, want true", err)
	}
}

func TestLoader_SubmoduleSpec_Cached(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	first, err := l.SubmoduleSpec("primusgfs", "2.04")
	if err != nil {
		t.Fatalf("SubmoduleSpec() error = %v", err)
	}
	second, err := l.SubmoduleSpec("primusgfs", "2.04")
	if err != nil {
		t.Fatalf("SubmoduleSpec() second call error = %v", err)
	}
	if first != second {
		t.Fatal("cache miss: second lookup returned a different pointer")
	}
	if len(first.Requirements) != 5 {
		t.Fatalf("Requirements = %d, want 5", len(first.Requirements))
	}
}

func TestLoader_FindSubmoduleByName(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	tests := []struct {
		name     string
		freeText string
		code     string
		wantCode string
	}{
		{"exact code wins", "", "2.11", "2.11"},
		{"alias match", "SSOP", "", "2.04"},
		{"alias is case-insensitive", "fsms", "", "1.01"},
		{"keyword substring in document name", "Pest Control SOP v3", "", "2.11"},
		{"keyword substring sanitation", "Master Sanitation Schedule 2026", "", "2.04"},
		{"code beats keyword", "pest control records", "1.01", "1.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := l.FindSubmoduleByName("primusgfs", tt.freeText, tt.code)
			if err != nil {
				t.Fatalf("FindSubmoduleByName() error = %v", err)
			}
			if sub.Code != tt.wantCode {
				t.Fatalf("Code = %q, want %q", sub.Code, tt.wantCode)
			}
		})
	}
}

func TestLoader_FindSubmoduleByName_NoMatch(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	_, err = l.FindSubmoduleByName("primusgfs", "completely unrelated title", "")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLoader_MicroRules_UnknownCategory(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	rules, err := l.MicroRules("primusgfs", "no_such_category")
	if err != nil {
		t.Fatalf("MicroRules() error = %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("rules = %d, want 0", len(rules))
	}
}
