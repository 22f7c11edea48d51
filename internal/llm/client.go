// Package llm abstracts the hosted model behind a single invocation call.
// The client carries no retry semantics of its own; retry and timeout policy
// is layered on top by the section generator.
package llm

import "context"

// Result is the outcome of one model invocation.
type Result struct {
	// Text is the completion with surrounding whitespace trimmed.
	Text string

	// Truncated reports that the model stopped because it hit the
	// max_tokens budget rather than finishing naturally.
	Truncated bool
}

// Client is the interface to the hosted model. Implementations are treated
// as opaque, possibly slow, possibly failing remote calls.
type Client interface {
	Invoke(ctx context.Context, prompt string, maxTokens int) (Result, error)
}
