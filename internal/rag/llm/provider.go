package llm

import "context"

// Provider generates an answer from a two-message exchange: a system
// instruction and a user message carrying the assembled context plus the
// question. The retrieval pipeline is agnostic to which backend fulfils it.
type Provider interface {
	Complete(ctx context.Context, system string, user string) (string, error)
}
