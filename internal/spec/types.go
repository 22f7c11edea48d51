// Package spec loads and resolves regulatory specification records.
//
// The catalog is deploy-time static: it is embedded at build time and parsed
// once per process. Module and submodule records are immutable after load.
package spec

import "fmt"

// Priority classifies how much token budget and scheduling attention a
// section receives during generation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SectionTemplate describes one canonical document section. It is the single
// source of truth for both the deterministic outline and the generation
// pipeline: outline fields (MinParagraphs, ContentGuidance) and generation
// fields (Priority, Batchable) live on the same record so the two views can
// never drift apart.
type SectionTemplate struct {
	Number          int      `yaml:"number"`
	Title           string   `yaml:"title"`
	Required        bool     `yaml:"required"`
	MinParagraphs   int      `yaml:"min_paragraphs"`
	ContentGuidance string   `yaml:"content_guidance"`
	Priority        Priority `yaml:"priority"`
	Batchable       bool     `yaml:"batchable"`
}

// Heading returns the canonical "{number}. {title}" prefix every generated
// section must start with.
func (s SectionTemplate) Heading() string {
	return fmt.Sprintf("%d. %s", s.Number, s.Title)
}

// ModuleSpec identifies a regulatory module and its fixed document template.
type ModuleSpec struct {
	Module      string `yaml:"module"`
	ModuleName  string `yaml:"module_name"`
	Description string `yaml:"description"`
	Scope       string `yaml:"scope"`

	// Sections is the ordered canonical section catalog for documents
	// generated under this module.
	Sections []SectionTemplate `yaml:"sections"`

	// ComplianceKeywords maps a section title to the keywords used when
	// mining evidence documents for that section.
	ComplianceKeywords map[string][]string `yaml:"compliance_keywords"`

	// MicroRules maps a category name to rule id -> rule text. Submodules
	// pull categories in via micro_inject.
	MicroRules map[string]map[string]string `yaml:"micro_rules"`
}

// Section returns the template with the given number, or false.
func (m *ModuleSpec) Section(number int) (SectionTemplate, bool) {
	for _, s := range m.Sections {
		if s.Number == number {
			return s, true
		}
	}
	return SectionTemplate{}, false
}

// Requirement is a single auditable requirement inside a submodule checklist.
type Requirement struct {
	Code                     string   `yaml:"code"`
	Required                 bool     `yaml:"required"`
	Text                     string   `yaml:"text"`
	Keywords                 []string `yaml:"keywords"`
	MandatoryStatements      []string `yaml:"mandatory_statements"`
	MonitoringExpectations   string   `yaml:"monitoring_expectations"`
	VerificationExpectations string   `yaml:"verification_expectations"`
}

// SubmoduleSpec is one checklist under a module.
type SubmoduleSpec struct {
	Code        string   `yaml:"code"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Aliases     []string `yaml:"aliases"`

	// Keywords participate in free-text name resolution: a document named
	// "Pest Control SOP v3" resolves to the submodule whose keyword appears
	// in the name.
	Keywords []string `yaml:"keywords"`

	AppliesTo    []string      `yaml:"applies_to"`
	Requirements []Requirement `yaml:"requirements"`

	// MicroInject names MicroRules categories whose rules are appended to
	// the procedures section.
	MicroInject []string `yaml:"micro_inject"`

	// CAPAInject and TraceabilityInject feed the corrective-action and
	// traceability sections respectively.
	CAPAInject         []string `yaml:"capa_inject"`
	TraceabilityInject []string `yaml:"traceability_inject"`
}

// RequiredRequirements returns the subset with Required set, in declaration
// order.
func (s *SubmoduleSpec) RequiredRequirements() []Requirement {
	var out []Requirement
	for _, r := range s.Requirements {
		if r.Required {
			out = append(out, r)
		}
	}
	return out
}
