package narration

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Apology is shown instead of a narration text when the backend fails
const Apology = "Не удалось получить информацию."

// DefaultTimeout bounds a single narration call
const DefaultTimeout = 20 * time.Second

// Guard calls a Service with a bounded wait and replaces every failure with Apology
type Guard struct {
	svc     Service
	timeout time.Duration
	logger  *zap.Logger
}

// NewGuard wraps svc. A nil svc behaves as Unavailable.
func NewGuard(svc Service, timeout time.Duration, logger *zap.Logger) *Guard {
	if svc == nil {
		svc = Unavailable{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{svc: svc, timeout: timeout, logger: logger.With(zap.String("component", "narration.guard"))}
}

// Describe returns a description of the place or Apology
func (g *Guard) Describe(ctx context.Context, name, address string) string {
	return g.run(ctx, "describe", name, address, g.svc.Describe)
}

// Narrate returns a mini tour of the place or Apology
func (g *Guard) Narrate(ctx context.Context, name, address string) string {
	return g.run(ctx, "narrate", name, address, g.svc.Narrate)
}

// ReviewsSummary returns a reviews summary or Apology
func (g *Guard) ReviewsSummary(ctx context.Context, name, address string) string {
	return g.run(ctx, "reviews", name, address, g.svc.ReviewsSummary)
}

type call func(ctx context.Context, name, address string) (string, error)

func (g *Guard) run(ctx context.Context, op, name, address string, fn call) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := fn(ctx, name, address)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			g.logger.Warn("Narration call failed",
				zap.String("op", op), zap.String("place", name), zap.Error(r.err))
			return Apology
		}
		return r.text
	case <-ctx.Done():
		g.logger.Warn("Narration call timed out",
			zap.String("op", op), zap.String("place", name), zap.Error(ctx.Err()))
		return Apology
	}
}
