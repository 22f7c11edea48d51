package generator

import (
	"fmt"
	"sort"
	"strings"
)

// buildSectionPrompt renders the prompt for one section. Deterministic for
// identical inputs: map iteration goes through sorted keys.
func buildSectionPrompt(req SectionRequest) string {
	var b strings.Builder
	sec := req.Section

	fmt.Fprintf(&b, "You are writing section %d of a food safety compliance document for a Primus GFS audit.\n\n", sec.Number)
	fmt.Fprintf(&b, "SECTION: %s\n", sec.Heading())
	if sec.ContentGuidance != "" {
		fmt.Fprintf(&b, "GUIDANCE: %s\n", sec.ContentGuidance)
	}
	if sec.MinParagraphs > 0 {
		fmt.Fprintf(&b, "Write at least %d paragraph(s).\n", sec.MinParagraphs)
	}
	b.WriteString("\n")

	if req.Structure != "" {
		fmt.Fprintf(&b, "DOCUMENT OUTLINE:\n%s\n", req.Structure)
	}
	if req.Requirements != "" {
		fmt.Fprintf(&b, "APPLICABLE REQUIREMENTS:\n%s\n", req.Requirements)
	}
	if req.Evidence != "" {
		fmt.Fprintf(&b, "EVIDENCE FROM EXISTING DOCUMENTS:\n%s\n\n", req.Evidence)
	}
	writeCoverage(&b, req)

	fmt.Fprintf(&b, "Start your response with exactly %q. ", sec.Heading())
	b.WriteString("Write complete, audit-ready prose. Do not use placeholders such as [TBD] or [TO BE COMPLETED]. Do not add commentary about the document.\n")
	return b.String()
}

// buildBatchPrompt renders one prompt covering every batchable section, each
// wrapped in per-id delimiters so the response can be split regardless of
// the order sections come back in.
func buildBatchPrompt(reqs []SectionRequest) string {
	var b strings.Builder
	b.WriteString("You are writing multiple sections of a food safety compliance document for a Primus GFS audit.\n\n")
	b.WriteString("Write each section listed below. Wrap every section's content exactly as:\n")
	b.WriteString("--- SECTION_START: <id> ---\n<content>\n--- SECTION_END: <id> ---\n\n")

	if reqs[0].Structure != "" {
		fmt.Fprintf(&b, "DOCUMENT OUTLINE:\n%s\n", reqs[0].Structure)
	}
	if reqs[0].Requirements != "" {
		fmt.Fprintf(&b, "APPLICABLE REQUIREMENTS:\n%s\n", reqs[0].Requirements)
	}
	writeCoverage(&b, reqs[0])

	b.WriteString("SECTIONS TO WRITE:\n\n")
	for _, req := range reqs {
		sec := req.Section
		fmt.Fprintf(&b, "Section id %d: %s\n", sec.Number, sec.Heading())
		if sec.ContentGuidance != "" {
			fmt.Fprintf(&b, "  Guidance: %s\n", sec.ContentGuidance)
		}
		if req.Evidence != "" {
			fmt.Fprintf(&b, "  Evidence:\n%s\n", indent(req.Evidence, "  "))
		}
		b.WriteString("\n")
	}

	b.WriteString("Start each section's content with its \"{id}. {name}\" heading. Write complete, audit-ready prose with no placeholders and no commentary.\n")
	return b.String()
}

func writeCoverage(b *strings.Builder, req SectionRequest) {
	if len(req.Missing) > 0 {
		b.WriteString("REQUIREMENTS NOT YET COVERED BY EXISTING DOCUMENTS:\n")
		for _, m := range req.Missing {
			fmt.Fprintf(b, "- %s\n", m)
		}
		b.WriteString("\n")
	}
	if len(req.CoverageMap) > 0 {
		b.WriteString("COVERAGE STATUS:\n")
		codes := make([]string, 0, len(req.CoverageMap))
		for code := range req.CoverageMap {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Fprintf(b, "- %s: %s\n", code, req.CoverageMap[code])
		}
		b.WriteString("\n")
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
