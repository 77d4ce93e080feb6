// Package service orchestrates the study module: item lifecycle, the
// derived-field aggregator, the consent ledger and solicitud intake. Every
// mutation runs in one StoreTx; notifications and audit events are emitted
// after commit and never fail the caller.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"estudios/internal/access"
	"estudios/internal/audit"
	"estudios/internal/study/metrics"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/platform/sentinel"
	"estudios/pkg/requestcontext"
)

const defaultFrontendURL = "http://localhost:5173"

var tracer = otel.Tracer("estudios/study")

// Service is the application layer of the study module.
type Service struct {
	directory   DirectoryStore
	solicitudes SolicitudStore
	estudios    EstudioStore
	items       ItemStore
	consents    ConsentStore
	anexos      AnexoStore
	tx          StoreTx

	notifier       Notifier
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	frontendURL    string
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithFrontendURL sets the base URL used in invitation links.
func WithFrontendURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.frontendURL = strings.TrimRight(url, "/")
		}
	}
}

// New constructs a Service. A nil tx falls back to an in-memory ShardedTx.
func New(stores Stores, tx StoreTx, opts ...Option) *Service {
	s := &Service{
		directory:   stores.Directory,
		solicitudes: stores.Solicitudes,
		estudios:    stores.Estudios,
		items:       stores.Items,
		consents:    stores.Consents,
		anexos:      stores.Anexos,
		tx:          tx,
		frontendURL: defaultFrontendURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedTx(0)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// authorize resolves the caller and its policy from the request context.
func (s *Service) authorize(ctx context.Context) (id.Caller, access.Policy, error) {
	caller, ok := requestcontext.Caller(ctx)
	if !ok {
		return id.Caller{}, access.Policy{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return caller, access.For(caller.Role), nil
}

// loadEstudio reads a study and applies row scope. Invisible rows are reported
// as missing.
func (s *Service) loadEstudio(ctx context.Context, caller id.Caller, policy access.Policy, estudioID id.EstudioID) (*models.Estudio, error) {
	e, err := s.estudios.FindEstudio(ctx, estudioID)
	if err != nil {
		return nil, translateStoreError(err, "Estudio no encontrado.", "failed to load estudio")
	}
	if !policy.RowScope(caller).Allows(e.Ownership) {
		return nil, dErrors.New(dErrors.CodeNotFound, "Estudio no encontrado.")
	}
	return e, nil
}

// lockEstudio re-reads a study under the transaction's row lock.
func (s *Service) lockEstudio(ctx context.Context, estudioID id.EstudioID) (*models.Estudio, error) {
	e, err := s.estudios.FindEstudioForUpdate(ctx, estudioID)
	if err != nil {
		return nil, translateStoreError(err, "Estudio no encontrado.", "failed to lock estudio")
	}
	return e, nil
}

// saveEstudio persists a derived write guarded by the version stamp.
func (s *Service) saveEstudio(ctx context.Context, e *models.Estudio) error {
	if err := s.estudios.UpdateEstudio(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncConflict()
			return dErrors.Wrap(err, dErrors.CodeConflict, "El estudio cambió, intente de nuevo.")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update estudio")
	}
	return nil
}

// translateStoreError maps store sentinels to domain errors.
func translateStoreError(err error, notFoundMsg, internalMsg string) error {
	if _, ok := dErrors.From(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "El registro ya existe.")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
	}
}

// txError passes domain errors through and wraps infrastructure failures.
func txError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.From(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "transaction failed")
}

func (s *Service) emitAudit(ctx context.Context, caller id.Caller, action audit.Action, subject string, detail map[string]string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:    action,
		ActorID:   caller.UserID.String(),
		ActorRole: caller.Role.String(),
		Subject:   subject,
		Detail:    detail,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"event", string(action),
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.logger.InfoContext(ctx, string(action),
		"event", string(action),
		"log_type", "audit",
		"subject", subject,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// startSpan opens a span tagged with the caller role.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if caller, ok := requestcontext.Caller(ctx); ok {
		attrs = append(attrs, attribute.String("caller.role", caller.Role.String()))
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
