package structure

import (
	"fmt"
	"strings"

	"compliancegen/internal/spec"
)

// BuildRequirementsList renders a flattened, human-readable dump of a
// submodule's requirements for inclusion in generation prompts. Pure function
// of the spec; no randomness.
func BuildRequirementsList(loader *spec.Loader, moduleID, submoduleCode string) (string, error) {
	sub, err := loader.SubmoduleSpec(moduleID, submoduleCode)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "REQUIREMENTS: %s (%s)\n\n", sub.Title, sub.Code)

	for _, r := range sub.Requirements {
		marker := "optional"
		if r.Required {
			marker = "required"
		}
		fmt.Fprintf(&b, "%s [%s]\n", r.Code, marker)
		fmt.Fprintf(&b, "  %s\n", r.Text)
		for _, stmt := range r.MandatoryStatements {
			fmt.Fprintf(&b, "  MANDATORY: %s\n", stmt)
		}
		if r.MonitoringExpectations != "" {
			fmt.Fprintf(&b, "  Monitoring: %s\n", r.MonitoringExpectations)
		}
		if r.VerificationExpectations != "" {
			fmt.Fprintf(&b, "  Verification: %s\n", r.VerificationExpectations)
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}
