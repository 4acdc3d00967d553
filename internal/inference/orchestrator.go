package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
	"github.com/fundup7/bharatqa-backend/internal/domain/port"
	"github.com/fundup7/bharatqa-backend/internal/infra/metrics"
)

// Orchestrator walks an ordered priority list of backends until one returns
// non-empty text. Attempts are sequential: only the first success is needed
// and parallel calls would burn quota. No backend is tried more than once per
// job.
type Orchestrator struct {
	backends       []port.InferenceBackend
	attemptTimeout time.Duration
	logger         *zap.Logger
}

func NewOrchestrator(backends []port.InferenceBackend, attemptTimeout time.Duration, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{backends: backends, attemptTimeout: attemptTimeout, logger: logger}
}

// Run returns the first non-empty response text and the name of the backend
// that produced it. When every backend fails it returns an error wrapping
// entity.ErrBackendsExhausted that carries the last backend's failure text.
func (o *Orchestrator) Run(ctx context.Context, req port.InferenceRequest) (string, string, error) {
	if len(o.backends) == 0 {
		return "", "", fmt.Errorf("%w: no backends configured", entity.ErrBackendsExhausted)
	}

	var lastErr error
	for _, backend := range o.backends {
		text, err := o.attempt(ctx, backend, req)
		if err != nil {
			metrics.BackendAttemptsTotal.WithLabelValues(backend.Name(), "failure").Inc()
			lastErr = &entity.BackendError{Backend: backend.Name(), Err: err}
			o.logger.Warn("inference backend failed, trying next",
				zap.String("backend", backend.Name()),
				zap.Error(err),
			)
			continue
		}

		metrics.BackendAttemptsTotal.WithLabelValues(backend.Name(), "success").Inc()
		o.logger.Info("inference succeeded",
			zap.String("backend", backend.Name()),
			zap.Int("response_chars", len(text)),
		)
		return text, backend.Name(), nil
	}

	return "", "", fmt.Errorf("%w: %v", entity.ErrBackendsExhausted, lastErr)
}

func (o *Orchestrator) attempt(ctx context.Context, backend port.InferenceBackend, req port.InferenceRequest) (string, error) {
	if o.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.attemptTimeout)
		defer cancel()
	}

	text, err := backend.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("backend returned empty response")
	}
	return text, nil
}
