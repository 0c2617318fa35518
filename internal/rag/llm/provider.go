package llm

import "context"

// Provider generates the final answer. matches carries the evidence texts
// chosen by the route (retrieved chunks, tool output, or nothing for the
// reasoning route).
type Provider interface {
	Generate(ctx context.Context, query string, matches []string, messageHistory []string) (string, error)
}
