// Package structure builds the deterministic document outline for a
// submodule checklist. Every line is derived from the specification catalog;
// nothing here is generated text. Same spec + same answers yields
// byte-identical output, which downstream prompts rely on for auditability.
package structure

import (
	"fmt"
	"sort"
	"strings"

	"compliancegen/internal/spec"
)

// buildContext carries the resolved inputs a bullet builder may draw from.
type buildContext struct {
	module  *spec.ModuleSpec
	sub     *spec.SubmoduleSpec
	answers map[string]string

	// microRules holds pre-resolved rules per injected category, in
	// micro_inject declaration order. Rule ids within a category are sorted.
	microRules []categoryRules
}

type categoryRules struct {
	category string
	ruleIDs  []string
	rules    map[string]string
}

// bulletFunc produces the required-content bullets for one section number.
type bulletFunc func(buildContext) []string

// bulletRegistry maps section number to its bullet builder. Sections without
// an entry get no injected bullets. New sections register here instead of
// growing a central switch.
var bulletRegistry = map[int]bulletFunc{
	1:  titleControlBullets,
	2:  purposeBullets,
	3:  scopeBullets,
	7:  hazardBullets,
	8:  procedureBullets,
	9:  monitoringBullets,
	10: verificationBullets,
	11: capaBullets,
	12: traceabilityBullets,
}

// BuildDeterministicStructure resolves the submodule (by code, alias, or
// free-text name) and renders the full outline.
func BuildDeterministicStructure(loader *spec.Loader, moduleID, submoduleIdent string, answers map[string]string) (string, error) {
	module, err := loader.ModuleSpec(moduleID)
	if err != nil {
		return "", err
	}
	sub, err := loader.FindSubmoduleByName(moduleID, submoduleIdent, submoduleIdent)
	if err != nil {
		return "", err
	}
	return BuildForSubmodule(loader, module, sub, answers)
}

// BuildForSubmodule renders the outline for an already-resolved submodule.
func BuildForSubmodule(loader *spec.Loader, module *spec.ModuleSpec, sub *spec.SubmoduleSpec, answers map[string]string) (string, error) {
	if answers == nil {
		answers = map[string]string{}
	}

	ctx := buildContext{module: module, sub: sub, answers: answers}
	for _, category := range sub.MicroInject {
		rules, err := loader.MicroRules(module.Module, category)
		if err != nil {
			return "", err
		}
		ids := make([]string, 0, len(rules))
		for id := range rules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		ctx.microRules = append(ctx.microRules, categoryRules{category: category, ruleIDs: ids, rules: rules})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DOCUMENT STRUCTURE\n")
	fmt.Fprintf(&b, "Module: %s\n", module.ModuleName)
	fmt.Fprintf(&b, "Checklist: %s (%s)\n\n", sub.Title, sub.Code)

	for _, section := range module.Sections {
		fmt.Fprintf(&b, "%s\n", section.Heading())
		if section.ContentGuidance != "" {
			fmt.Fprintf(&b, "   Guidance: %s\n", section.ContentGuidance)
		}
		if section.MinParagraphs > 0 {
			fmt.Fprintf(&b, "   Minimum paragraphs: %d\n", section.MinParagraphs)
		}
		if fn, ok := bulletRegistry[section.Number]; ok {
			bullets := fn(ctx)
			if len(bullets) > 0 {
				fmt.Fprintf(&b, "   Required content:\n")
				for _, bullet := range bullets {
					fmt.Fprintf(&b, "   - %s\n", bullet)
				}
			}
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func titleControlBullets(ctx buildContext) []string {
	bullets := []string{
		fmt.Sprintf("Document title: %s", ctx.sub.Title),
		fmt.Sprintf("Checklist code: %s", ctx.sub.Code),
	}
	if company := ctx.answers["company"]; company != "" {
		bullets = append(bullets, fmt.Sprintf("Company: %s", company))
	}
	if version := ctx.answers["version"]; version != "" {
		bullets = append(bullets, fmt.Sprintf("Version: %s", version))
	} else {
		bullets = append(bullets, "Version: 1.0")
	}
	bullets = append(bullets,
		"Effective date, document owner, and approval fields",
	)
	return bullets
}

func purposeBullets(ctx buildContext) []string {
	return []string{
		strings.TrimSpace(ctx.sub.Description),
		fmt.Sprintf("State the compliance objective under %s", ctx.module.ModuleName),
	}
}

func scopeBullets(ctx buildContext) []string {
	bullets := []string{strings.TrimSpace(ctx.module.Scope)}
	if len(ctx.sub.AppliesTo) > 0 {
		bullets = append(bullets, fmt.Sprintf("Applies to: %s", strings.Join(ctx.sub.AppliesTo, ", ")))
	}
	return bullets
}

func hazardBullets(ctx buildContext) []string {
	bullets := []string{
		"Identify biological, chemical, and physical hazards relevant to this program",
	}
	for _, r := range ctx.sub.RequiredRequirements() {
		if len(r.Keywords) > 0 {
			bullets = append(bullets, fmt.Sprintf("Address hazards associated with: %s", strings.Join(r.Keywords, ", ")))
		}
	}
	return bullets
}

func procedureBullets(ctx buildContext) []string {
	var bullets []string
	for _, r := range ctx.sub.RequiredRequirements() {
		bullets = append(bullets, fmt.Sprintf("%s: %s", r.Code, r.Text))
		for _, stmt := range r.MandatoryStatements {
			bullets = append(bullets, fmt.Sprintf("MANDATORY (%s): %s", r.Code, stmt))
		}
	}
	for _, cat := range ctx.microRules {
		for _, id := range cat.ruleIDs {
			bullets = append(bullets, fmt.Sprintf("[%s/%s] %s", cat.category, id, cat.rules[id]))
		}
	}
	return bullets
}

func monitoringBullets(ctx buildContext) []string {
	var bullets []string
	for _, r := range ctx.sub.Requirements {
		if r.MonitoringExpectations != "" {
			bullets = append(bullets, fmt.Sprintf("%s: %s", r.Code, r.MonitoringExpectations))
		}
	}
	return bullets
}

func verificationBullets(ctx buildContext) []string {
	var bullets []string
	for _, r := range ctx.sub.Requirements {
		if r.VerificationExpectations != "" {
			bullets = append(bullets, fmt.Sprintf("%s: %s", r.Code, r.VerificationExpectations))
		}
	}
	return bullets
}

func capaBullets(ctx buildContext) []string {
	return append([]string(nil), ctx.sub.CAPAInject...)
}

func traceabilityBullets(ctx buildContext) []string {
	return append([]string(nil), ctx.sub.TraceabilityInject...)
}
