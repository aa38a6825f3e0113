package llm

import "context"

// Provider is the LLM service boundary. Implementations must be safe for
// concurrent use; the runtime shares one provider across work orders.
type Provider interface {
	// CreateCompletion sends one request and returns the model's reply.
	CreateCompletion(ctx context.Context, req Request) (*Response, error)

	// Name identifies the provider for logging.
	Name() string
}
