// Package generator issues content-generation calls per document section:
// individually with retry for high-priority sections, batched in a single
// delimited call for the rest, with a per-section fallback when the batch
// call fails.
package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"compliancegen/internal/config"
	"compliancegen/internal/llm"
	"compliancegen/internal/logging"
	"compliancegen/internal/spec"
)

// PlaceholderContent marks a section whose generation degraded. It clearly
// flags the section for manual follow-up without blocking delivery.
const PlaceholderContent = "[Content not available]"

// GeneratedSection is the output of one generation call.
type GeneratedSection struct {
	ID      int
	Name    string
	Content string
}

// SectionRequest carries everything one section's prompt needs.
type SectionRequest struct {
	Section      spec.SectionTemplate
	Structure    string
	Requirements string
	Evidence     string
	Missing      []string
	CoverageMap  map[string]string
}

// Generator schedules generation calls against the model.
type Generator struct {
	client llm.Client
	cfg    config.GenerationConfig
	log    *zap.Logger
}

// New builds a Generator.
func New(client llm.Client, cfg config.GenerationConfig) *Generator {
	return &Generator{
		client: client,
		cfg:    cfg,
		log:    logging.Named("generator"),
	}
}

func (g *Generator) retryConfig() retryConfig {
	return retryConfig{
		MaxAttempts:    g.cfg.MaxAttempts,
		BackoffBase:    g.cfg.BackoffBase,
		AttemptTimeout: g.cfg.AttemptTimeout,
	}
}

// GenerateSection issues one content-generation call for a single section,
// with retry, backoff, and per-attempt timeout. Exhausted retries propagate
// the last error; the caller decides whether that is fatal.
func (g *Generator) GenerateSection(ctx context.Context, req SectionRequest) (string, error) {
	op := fmt.Sprintf("generate section %d", req.Section.Number)
	return withRetry(ctx, g.retryConfig(), op, g.log, func(ctx context.Context) (string, error) {
		return g.generateOnce(ctx, req)
	})
}

func (g *Generator) generateOnce(ctx context.Context, req SectionRequest) (string, error) {
	prompt := buildSectionPrompt(req)
	budget := g.cfg.TokenBudget(string(req.Section.Priority))

	res, err := g.client.Invoke(ctx, prompt, budget)
	if err != nil {
		return "", err
	}
	if res.Truncated {
		g.log.Warn("section output truncated at token budget",
			zap.Int("section", req.Section.Number),
			zap.Int("budget", budget))
	}
	return CleanupContent(req.Section, res.Text), nil
}

// GenerateBatchedSections generates a group of batchable sections in one
// call. The response is split per section id by delimiter; a missing
// delimiter yields the placeholder for that section only. The returned slice
// always has exactly len(reqs) entries. An error means the batch call itself
// failed; callers fall back to GenerateIndividually.
func (g *Generator) GenerateBatchedSections(ctx context.Context, reqs []SectionRequest) ([]GeneratedSection, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	prompt := buildBatchPrompt(reqs)
	budget := 0
	for _, req := range reqs {
		budget += g.cfg.TokenBudget(string(req.Section.Priority))
	}

	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if g.cfg.AttemptTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, g.cfg.AttemptTimeout)
	}
	res, err := g.client.Invoke(attemptCtx, prompt, budget)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("batched generation call failed: %w", err)
	}

	out := make([]GeneratedSection, len(reqs))
	for i, req := range reqs {
		sec := req.Section
		content, ok := extractDelimited(res.Text, sec.Number)
		if !ok {
			g.log.Warn("batch response missing delimiters for section",
				zap.Int("section", sec.Number))
			content = PlaceholderContent
		}
		out[i] = GeneratedSection{
			ID:      sec.Number,
			Name:    sec.Title,
			Content: CleanupContent(sec, content),
		}
	}
	return out, nil
}

// GenerateIndividually generates each section in parallel, substituting the
// placeholder on per-section failure. It never fails as a whole: a single
// bad section must not block delivery of the rest of the document.
func (g *Generator) GenerateIndividually(ctx context.Context, reqs []SectionRequest) []GeneratedSection {
	out := make([]GeneratedSection, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req SectionRequest) {
			defer wg.Done()
			content, err := g.GenerateSection(ctx, req)
			if err != nil {
				g.log.Warn("fallback generation failed, substituting placeholder",
					zap.Int("section", req.Section.Number),
					zap.Error(err))
				content = Placeholder(req.Section)
			}
			out[i] = GeneratedSection{
				ID:      req.Section.Number,
				Name:    req.Section.Title,
				Content: content,
			}
		}(i, req)
	}
	wg.Wait()
	return out
}

// Placeholder returns the degraded-content body for a section.
func Placeholder(s spec.SectionTemplate) string {
	return fmt.Sprintf("%s\n\n%s", s.Heading(), PlaceholderContent)
}

// CleanupContent strips markdown code fences and guarantees the canonical
// "{id}. {name}" prefix, prepending it when missing.
func CleanupContent(s spec.SectionTemplate, raw string) string {
	text := strings.TrimSpace(raw)
	text = stripCodeFence(text)
	if !strings.HasPrefix(text, s.Heading()) {
		text = s.Heading() + "\n\n" + text
	}
	return text
}

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\n(.*?)\n?```$")

func stripCodeFence(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

func extractDelimited(response string, id int) (string, bool) {
	re := regexp.MustCompile(fmt.Sprintf(`(?s)--- SECTION_START: %d ---\s*(.*?)\s*--- SECTION_END: %d ---`, id, id))
	m := re.FindStringSubmatch(response)
	if m == nil {
		return "", false
	}
	return m[1], true
}
