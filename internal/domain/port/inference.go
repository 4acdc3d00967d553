package port

import "context"

// InferenceRequest carries one prompt to a backend. ImagePaths is empty for
// the text-only variant.
type InferenceRequest struct {
	Prompt     string
	ImagePaths []string
}

// InferenceBackend is one model tier in the priority list. Complete returns
// the raw model text; an empty response is treated as a failed attempt by the
// orchestrator.
type InferenceBackend interface {
	Name() string
	Complete(ctx context.Context, req InferenceRequest) (string, error)
}
