// Package config centralizes tunables for the document generation pipeline.
//
// In Go the SHORTEST timeout in the chain wins: a generous HTTP client
// timeout is useless if the per-attempt context expires first. These values
// are the canonical ones every layer should use.
package config

import "time"

// GenerationConfig holds timeout, retry, and budget settings for section
// generation.
type GenerationConfig struct {
	// HighTokenBudget is the max_tokens value for a high-priority section.
	HighTokenBudget int `yaml:"high_token_budget"`

	// MediumTokenBudget is the max_tokens value for a medium-priority section.
	MediumTokenBudget int `yaml:"medium_token_budget"`

	// LowTokenBudget is the max_tokens value for a low-priority section.
	LowTokenBudget int `yaml:"low_token_budget"`

	// MaxAttempts is the total number of attempts per individually generated
	// section (first try plus retries).
	MaxAttempts int `yaml:"max_attempts"`

	// BackoffBase is the base for exponential backoff between attempts
	// (base, 2*base, 4*base, ...).
	BackoffBase time.Duration `yaml:"backoff_base"`

	// AttemptTimeout bounds a single generation attempt. A timed-out
	// attempt's underlying call may keep running server-side; its result is
	// discarded.
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`

	// HTTPClientTimeout is the transport-level ceiling. Keep it above
	// AttemptTimeout so the context, not the transport, decides.
	HTTPClientTimeout time.Duration `yaml:"http_client_timeout"`

	// EvidenceBudget caps the combined evidence excerpt length in characters.
	EvidenceBudget int `yaml:"evidence_budget"`

	// EvidenceLinesPerDoc caps matching lines taken from one source document.
	EvidenceLinesPerDoc int `yaml:"evidence_lines_per_doc"`

	// MinSectionLength is the validator's lower bound before it flags a
	// section as suspiciously short.
	MinSectionLength int `yaml:"min_section_length"`
}

// DefaultGenerationConfig returns the settings used in production.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		HighTokenBudget:     2000,
		MediumTokenBudget:   1200,
		LowTokenBudget:      600,
		MaxAttempts:         2,
		BackoffBase:         1 * time.Second,
		AttemptTimeout:      45 * time.Second,
		HTTPClientTimeout:   2 * time.Minute,
		EvidenceBudget:      1500,
		EvidenceLinesPerDoc: 5,
		MinSectionLength:    100,
	}
}

// FastGenerationConfig returns tightened settings for tests and smoke runs.
func FastGenerationConfig() GenerationConfig {
	return GenerationConfig{
		HighTokenBudget:     2000,
		MediumTokenBudget:   1000,
		LowTokenBudget:      600,
		MaxAttempts:         2,
		BackoffBase:         10 * time.Millisecond,
		AttemptTimeout:      2 * time.Second,
		HTTPClientTimeout:   5 * time.Second,
		EvidenceBudget:      1000,
		EvidenceLinesPerDoc: 5,
		MinSectionLength:    100,
	}
}

// TokenBudget maps a section priority name to its max_tokens value.
func (c GenerationConfig) TokenBudget(priority string) int {
	switch priority {
	case "high":
		return c.HighTokenBudget
	case "medium":
		return c.MediumTokenBudget
	default:
		return c.LowTokenBudget
	}
}
