// Package pipeline turns a regulatory specification plus uploaded evidence
// into a complete audit-ready document through section-by-section model
// calls.
//
// Partial-failure policy: a high-priority section that exhausts its retries
// aborts the whole generation (those sections are too important to silently
// placeholder). Batched and fallback sections degrade to placeholder text so
// a single bad section never blocks delivery of the rest of the document.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"compliancegen/internal/assemble"
	"compliancegen/internal/config"
	"compliancegen/internal/evidence"
	"compliancegen/internal/generator"
	"compliancegen/internal/llm"
	"compliancegen/internal/logging"
	"compliancegen/internal/spec"
	"compliancegen/internal/structure"
	"compliancegen/internal/validate"
)

// Input is one document generation request.
type Input struct {
	ModuleID string

	// Submodule is an explicit checklist code or a free-text document name;
	// resolution tries exact code, then alias, then keyword match.
	Submodule string

	ExistingDocuments []evidence.Document

	// Missing lists requirement codes/descriptions not covered by the
	// uploaded evidence.
	Missing []string

	// CoverageMap maps requirement code to covered|partial|missing.
	CoverageMap map[string]string

	// Answers feeds the deterministic outline (company name, version, ...).
	Answers map[string]string

	// Metadata overrides. Zero values fall back to spec-derived defaults.
	Title         string
	Version       string
	Owner         string
	EffectiveDate string
	GeneratedAt   time.Time
}

// Pipeline wires the loader, generator, and assembler together.
type Pipeline struct {
	loader *spec.Loader
	gen    *generator.Generator
	cfg    config.GenerationConfig
	log    *zap.Logger
}

// New builds a Pipeline around an LLM client.
func New(loader *spec.Loader, client llm.Client, cfg config.GenerationConfig) *Pipeline {
	return &Pipeline{
		loader: loader,
		gen:    generator.New(client, cfg),
		cfg:    cfg,
		log:    logging.Named("pipeline"),
	}
}

// ImproveDocument runs the full generation pipeline and returns the
// assembled document text. Specification misses and exhausted high-priority
// retries are the only errors that propagate.
func (p *Pipeline) ImproveDocument(ctx context.Context, in Input) (string, error) {
	module, err := p.loader.ModuleSpec(in.ModuleID)
	if err != nil {
		return "", err
	}
	sub, err := p.loader.FindSubmoduleByName(in.ModuleID, in.Submodule, in.Submodule)
	if err != nil {
		return "", err
	}

	outline, err := structure.BuildForSubmodule(p.loader, module, sub, in.Answers)
	if err != nil {
		return "", err
	}
	requirements, err := structure.BuildRequirementsList(p.loader, module.Module, sub.Code)
	if err != nil {
		return "", err
	}

	// The evidence cache is built once before generation starts and is
	// read-only afterwards, so all concurrent section generators share it
	// without coordination.
	evidenceCache := make(map[int]string, len(module.Sections))
	for _, sec := range module.Sections {
		evidenceCache[sec.Number] = evidence.Extract(
			sec.Title, in.ExistingDocuments, module, p.cfg.EvidenceBudget, p.cfg.EvidenceLinesPerDoc)
	}

	var highReqs, batchReqs []generator.SectionRequest
	for _, sec := range module.Sections {
		req := generator.SectionRequest{
			Section:      sec,
			Structure:    outline,
			Requirements: requirements,
			Evidence:     evidenceForPrompt(evidenceCache[sec.Number]),
			Missing:      in.Missing,
			CoverageMap:  in.CoverageMap,
		}
		if sec.Priority == spec.PriorityHigh || !sec.Batchable {
			highReqs = append(highReqs, req)
		} else {
			batchReqs = append(batchReqs, req)
		}
	}

	p.log.Info("starting document generation",
		zap.String("module", module.Module),
		zap.String("submodule", sub.Code),
		zap.Int("high_priority", len(highReqs)),
		zap.Int("batchable", len(batchReqs)))

	// High-priority sections: full parallelism, one call per section. A
	// failure here aborts generation; sibling calls already in flight finish
	// on their own and their results are discarded.
	highResults := make([]generator.GeneratedSection, len(highReqs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, req := range highReqs {
		i, req := i, req
		eg.Go(func() error {
			content, err := p.gen.GenerateSection(egCtx, req)
			if err != nil {
				return fmt.Errorf("high-priority section %d (%s): %w", req.Section.Number, req.Section.Title, err)
			}
			highResults[i] = generator.GeneratedSection{
				ID:      req.Section.Number,
				Name:    req.Section.Title,
				Content: content,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}

	// Batchable sections: one call, per-id delimiter parsing. If the call
	// itself fails, fall back to individual generation with placeholder
	// substitution.
	var batchResults []generator.GeneratedSection
	if len(batchReqs) > 0 {
		batchResults, err = p.gen.GenerateBatchedSections(ctx, batchReqs)
		if err != nil {
			p.log.Warn("batched call failed, falling back to individual generation", zap.Error(err))
			batchResults = p.gen.GenerateIndividually(ctx, batchReqs)
		}
	}

	sections := append(highResults, batchResults...)
	for i := range sections {
		content := validate.Sanitize(sections[i].Content)
		content = validate.StripComplianceAnnotations(content)
		content = validate.CutoffAfterSignatures(content)
		sections[i].Content = content

		if res := validate.ValidateOutput(sections[i].ID, sections[i].Name, content, p.cfg.MinSectionLength); !res.Valid {
			for _, issue := range res.Issues {
				p.log.Warn("validation issue", zap.String("issue", issue))
			}
		}
	}

	meta := p.buildMetadata(in, sub)
	sourceNames := make([]string, 0, len(in.ExistingDocuments))
	for _, doc := range in.ExistingDocuments {
		sourceNames = append(sourceNames, doc.FileName)
	}

	return assemble.FinalDocument(meta, sections, sourceNames), nil
}

func (p *Pipeline) buildMetadata(in Input, sub *spec.SubmoduleSpec) assemble.Metadata {
	meta := assemble.Metadata{
		Title:         in.Title,
		DocNumber:     sub.Code,
		Version:       in.Version,
		EffectiveDate: in.EffectiveDate,
		Owner:         in.Owner,
		Purpose:       strings.TrimSpace(sub.Description),
		DocumentID:    uuid.NewString(),
		GeneratedAt:   in.GeneratedAt,
	}
	if meta.Title == "" {
		meta.Title = sub.Title
	}
	if meta.Version == "" {
		meta.Version = "1.0"
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}
	return meta
}

// evidenceForPrompt maps the no-evidence sentinel to an empty prompt block:
// generation proceeds spec-only rather than quoting the sentinel at the
// model.
func evidenceForPrompt(extracted string) string {
	if extracted == evidence.NoEvidenceSentinel {
		return ""
	}
	return extracted
}
