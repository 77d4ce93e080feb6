// Package sink holds the outbound email transports.
package sink

import (
	"context"
	"log/slog"

	"estudios/internal/notification/metrics"
	"estudios/pkg/platform/circuit"
)

// Sink delivers one message to one recipient.
type Sink interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// Log writes emails to the structured log. Used when no broker is configured
// and as the fallback while the primary sink is failing.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, recipient, subject, body string) error {
	l.logger.InfoContext(ctx, "email",
		"event", "email_logged",
		"to", recipient,
		"subject", subject,
		"body_len", len(body),
	)
	return nil
}

// Guarded routes to primary while its circuit is closed and to fallback while
// it is open. Primary failures are reported but the fallback still delivers.
type Guarded struct {
	primary  Sink
	fallback Sink
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewGuarded(primary, fallback Sink, breaker *circuit.Breaker, logger *slog.Logger, m *metrics.Metrics) *Guarded {
	return &Guarded{primary: primary, fallback: fallback, breaker: breaker, logger: logger, metrics: m}
}

func (g *Guarded) Notify(ctx context.Context, recipient, subject, body string) error {
	if g.breaker.IsOpen() {
		// Probe the primary so the circuit can close again.
		if err := g.primary.Notify(ctx, recipient, subject, body); err == nil {
			if _, change := g.breaker.RecordSuccess(); change.Closed {
				g.logger.InfoContext(ctx, "email circuit closed", "breaker", g.breaker.Name())
				g.metrics.SetBreakerOpen(false)
			}
			return nil
		}
		g.breaker.RecordFailure()
		return g.fallback.Notify(ctx, recipient, subject, body)
	}

	err := g.primary.Notify(ctx, recipient, subject, body)
	if err == nil {
		g.breaker.RecordSuccess()
		return nil
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.logger.WarnContext(ctx, "email circuit opened", "breaker", g.breaker.Name(), "error", err)
		g.metrics.SetBreakerOpen(true)
	}
	if fbErr := g.fallback.Notify(ctx, recipient, subject, body); fbErr != nil {
		return fbErr
	}
	return err
}
