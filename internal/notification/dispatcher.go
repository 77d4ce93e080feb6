// Package notification delivers emails and inbox entries off the request path.
// Callers enqueue after their transaction commits; enqueueing never blocks and
// delivery failures are logged, never returned.
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"estudios/internal/notification/inbox"
	"estudios/internal/notification/metrics"
	"estudios/internal/notification/models"
	"estudios/internal/notification/sink"
	pstrings "estudios/pkg/platform/strings"
	"estudios/pkg/requestcontext"
)

const (
	defaultQueueSize      = 256
	defaultWorkers        = 2
	defaultDeliverTimeout = 10 * time.Second
)

type job struct {
	requestID string
	email     *models.Email
	entry     *models.Notificacion
}

// Dispatcher owns the bounded delivery queue.
type Dispatcher struct {
	queue   chan job
	email   sink.Sink
	inbox   inbox.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	workers int
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan job, n)
		}
	}
}

func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithDeliverTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

func New(email sink.Sink, store inbox.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:   make(chan job, defaultQueueSize),
		email:   email,
		inbox:   store,
		logger:  slog.Default(),
		workers: defaultWorkers,
		timeout: defaultDeliverTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Email enqueues one message for every non-empty, distinct recipient.
func (d *Dispatcher) Email(ctx context.Context, to []string, subject, body string) {
	recipients := pstrings.DedupeFold(to)
	if len(recipients) == 0 {
		return
	}
	d.enqueue(ctx, job{email: &models.Email{To: recipients, Subject: subject, Body: body}}, "email")
}

// Inbox enqueues an in-app notification.
func (d *Dispatcher) Inbox(ctx context.Context, n models.Notificacion) {
	d.enqueue(ctx, job{entry: &n}, "inbox")
}

func (d *Dispatcher) enqueue(ctx context.Context, j job, kind string) {
	j.requestID = requestcontext.RequestID(ctx)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.IncDropped()
		d.logger.WarnContext(ctx, "notification dispatcher closed, dropping",
			"kind", kind,
			"request_id", j.requestID,
		)
		return
	}
	select {
	case d.queue <- j:
		d.metrics.IncEnqueued(kind)
		d.metrics.SetQueueDepth(len(d.queue))
	default:
		d.metrics.IncDropped()
		d.logger.WarnContext(ctx, "notification queue full, dropping",
			"kind", kind,
			"request_id", j.requestID,
		)
	}
}

// Start launches the workers. They exit when ctx is cancelled or Close drains the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.run(ctx)
		}()
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-d.queue:
			if !ok {
				return
			}
			d.metrics.SetQueueDepth(len(d.queue))
			d.deliver(context.WithoutCancel(ctx), j)
		}
	}
}

// Close stops accepting work and waits for queued jobs to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// deliver fans the job out to every recipient and sink. Errors are logged.
func (d *Dispatcher) deliver(ctx context.Context, j job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var g errgroup.Group
	if j.email != nil {
		for _, to := range j.email.To {
			g.Go(func() error {
				if err := d.email.Notify(ctx, to, j.email.Subject, j.email.Body); err != nil {
					d.metrics.IncFailed("email")
					d.logger.ErrorContext(ctx, "email delivery failed",
						"error", err,
						"to", to,
						"request_id", j.requestID,
					)
					return err
				}
				d.metrics.IncDelivered("email")
				return nil
			})
		}
	}
	if j.entry != nil {
		g.Go(func() error {
			if err := d.inbox.Add(ctx, *j.entry); err != nil {
				d.metrics.IncFailed("inbox")
				d.logger.ErrorContext(ctx, "inbox delivery failed",
					"error", err,
					"user_id", j.entry.UserID.String(),
					"request_id", j.requestID,
				)
				return err
			}
			d.metrics.IncDelivered("inbox")
			return nil
		})
	}
	_ = g.Wait()
	d.metrics.ObserveDeliver(time.Since(start).Seconds())
}
