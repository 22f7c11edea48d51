// Package assemble orders validated sections and concatenates them with the
// fixed front-matter and back-matter template. Pure and deterministic given
// its inputs; no network or I/O.
package assemble

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"compliancegen/internal/generator"
)

const dividerWidth = 80

// Metadata carries the document control fields injected into the header and
// revision history.
type Metadata struct {
	Title         string
	DocNumber     string
	Version       string
	EffectiveDate string
	Owner         string
	Purpose       string
	DocumentID    string
	GeneratedAt   time.Time
}

// FinalDocument builds the complete document text. Sections are emitted in
// strictly ascending numeric id order regardless of the order generation
// completed in; this is the single ordering guarantee the pipeline provides.
func FinalDocument(meta Metadata, sections []generator.GeneratedSection, sourceDocuments []string) string {
	ordered := make([]generator.GeneratedSection, len(sections))
	copy(ordered, sections)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	divider := strings.Repeat("=", dividerWidth)
	var b strings.Builder

	// Header block.
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "%s\n", strings.ToUpper(meta.Title))
	b.WriteString(divider + "\n\n")
	if meta.DocNumber != "" {
		fmt.Fprintf(&b, "Document Number: %s\n", meta.DocNumber)
	}
	if meta.DocumentID != "" {
		fmt.Fprintf(&b, "Document ID: %s\n", meta.DocumentID)
	}
	fmt.Fprintf(&b, "Version: %s\n", meta.Version)
	if meta.EffectiveDate != "" {
		fmt.Fprintf(&b, "Effective Date: %s\n", meta.EffectiveDate)
	}
	if meta.Owner != "" {
		fmt.Fprintf(&b, "Document Owner: %s\n", meta.Owner)
	}
	if !meta.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n", meta.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	if meta.Purpose != "" {
		fmt.Fprintf(&b, "\nPurpose: %s\n", meta.Purpose)
	}
	if len(sourceDocuments) > 0 {
		b.WriteString("\nEvidence Sources:\n")
		for _, name := range sourceDocuments {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}
	b.WriteString("\n")

	// Table of contents.
	b.WriteString("TABLE OF CONTENTS\n\n")
	for _, sec := range ordered {
		fmt.Fprintf(&b, "  %d. %s\n", sec.ID, sec.Name)
	}
	b.WriteString("\n")

	// Section bodies.
	for _, sec := range ordered {
		b.WriteString(divider + "\n\n")
		content := sec.Content
		prefix := fmt.Sprintf("%d. %s", sec.ID, sec.Name)
		if !strings.HasPrefix(strings.TrimSpace(content), prefix) {
			content = prefix + "\n\n" + content
		}
		b.WriteString(strings.TrimSpace(content))
		b.WriteString("\n\n")
	}

	// Signature block.
	b.WriteString(divider + "\n")
	b.WriteString("APPROVALS\n")
	b.WriteString(divider + "\n\n")
	b.WriteString("Prepared By: _________________________  Date: __________\n\n")
	b.WriteString("Reviewed By: _________________________  Date: __________\n\n")
	b.WriteString("Approved By: _________________________  Date: __________\n\n")

	// Revision history seeded with the current version.
	b.WriteString(divider + "\n")
	b.WriteString("REVISION HISTORY\n")
	b.WriteString(divider + "\n\n")
	b.WriteString("Version | Date       | Description\n")
	b.WriteString("--------|------------|------------------------------------------\n")
	date := meta.EffectiveDate
	if date == "" && !meta.GeneratedAt.IsZero() {
		date = meta.GeneratedAt.UTC().Format("2006-01-02")
	}
	fmt.Fprintf(&b, "%-7s | %-10s | Initial generated version\n", meta.Version, date)

	return b.String()
}
