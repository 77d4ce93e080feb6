package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"estudios/internal/notification/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/platform/httputil"
	"estudios/pkg/requestcontext"
)

// Service is the inbox surface the handler needs.
type Service interface {
	List(ctx context.Context, userID id.UserID, unreadOnly bool) ([]models.Notificacion, error)
	MarkAllRead(ctx context.Context, userID id.UserID) (int, error)
}

// Handler serves the caller's in-app notifications.
type Handler struct {
	inbox  Service
	logger *slog.Logger
}

func New(inbox Service, logger *slog.Logger) *Handler {
	return &Handler{inbox: inbox, logger: logger}
}

// Register mounts the inbox routes. Callers must run behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notificaciones", h.handleList)
	r.Post("/notificaciones/marcar-leidas", h.handleMarkAllRead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requestcontext.Caller(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	entries, err := h.inbox.List(ctx, caller.UserID, unreadOnly)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list notificaciones",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notificaciones"))
		return
	}
	if entries == nil {
		entries = []models.Notificacion{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requestcontext.Caller(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	marked, err := h.inbox.MarkAllRead(ctx, caller.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mark notificaciones read",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notificaciones read"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "marcadas": marked})
}
