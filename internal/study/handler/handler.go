// Package handler exposes the study module over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"estudios/internal/access"
	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/platform/httputil"
	"estudios/pkg/requestcontext"
)

// Service is the study surface the handler needs.
type Service interface {
	CreateSolicitud(ctx context.Context, in service.CreateSolicitudInput) (*service.SolicitudDetail, error)
	ListSolicitudes(ctx context.Context) ([]models.Solicitud, error)
	GetSolicitud(ctx context.Context, solicitudID id.SolicitudID) (*service.SolicitudDetail, error)
	InviteCandidato(ctx context.Context, solicitudID id.SolicitudID) (*service.InviteResult, error)

	ListEstudios(ctx context.Context, f service.ListFilter) ([]access.EstudioView, error)
	GetEstudio(ctx context.Context, estudioID id.EstudioID) (*access.EstudioView, error)
	Summary(ctx context.Context, estudioID id.EstudioID) (*models.Summary, error)
	AddItem(ctx context.Context, estudioID id.EstudioID, tipo string) (*access.ItemView, error)
	BulkUpdate(ctx context.Context, estudioID id.EstudioID, updates []service.ItemUpdate) (int, error)
	ListConsents(ctx context.Context, estudioID id.EstudioID) ([]access.ConsentView, error)
	RecordConsent(ctx context.Context, estudioID id.EstudioID, d service.ConsentDecision) (*service.ConsentResult, error)

	GetItem(ctx context.Context, itemID id.ItemID) (*access.ItemView, error)
	ValidateItem(ctx context.Context, itemID id.ItemID, score float64, comentario string) (*access.ItemView, error)
	FlagFinding(ctx context.Context, itemID id.ItemID, score float64, comentario string) (*access.ItemView, error)

	GetPerfil(ctx context.Context) (*models.Candidato, error)
	UpdatePerfil(ctx context.Context, patch models.PerfilPatch) (*models.Candidato, error)

	ListAnexos(ctx context.Context, estudioID id.EstudioID, tipo string) ([]models.Anexo, error)
	CreateAnexo(ctx context.Context, in service.AnexoInput) (*models.Anexo, error)
	GetAnexo(ctx context.Context, anexoID id.AnexoID) (*models.Anexo, error)
	UpdateAnexo(ctx context.Context, anexoID id.AnexoID, f models.AnexoFields) (*models.Anexo, error)
	DeleteAnexo(ctx context.Context, anexoID id.AnexoID) error
}

// Handler wires study endpoints to the study service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the study routes. Callers must run behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Route("/solicitudes", func(r chi.Router) {
		r.Post("/", h.handleCreateSolicitud)
		r.Get("/", h.handleListSolicitudes)
		r.Get("/{id}", h.handleGetSolicitud)
		r.Post("/{id}/invitar", h.handleInvite)
	})
	r.Route("/estudios", func(r chi.Router) {
		r.Get("/", h.handleListEstudios)
		r.Get("/{id}", h.handleGetEstudio)
		r.Get("/{id}/resumen", h.handleSummary)
		r.Post("/{id}/items", h.handleAddItem)
		r.Post("/{id}/validar-masivo", h.handleBulkUpdate)
		r.Get("/{id}/consentimientos", h.handleListConsents)
		r.Post("/{id}/consentimientos", h.handleRecordConsent)
		r.Get("/{id}/anexos", h.handleListAnexos)
	})
	r.Route("/items", func(r chi.Router) {
		r.Get("/{id}", h.handleGetItem)
		r.Post("/{id}/validar", h.handleValidateItem)
		r.Post("/{id}/hallazgo", h.handleFlagFinding)
	})
	r.Route("/candidatos/me", func(r chi.Router) {
		r.Get("/", h.handleGetPerfil)
		r.Patch("/", h.handleUpdatePerfil)
	})
	r.Route("/anexos", func(r chi.Router) {
		r.Post("/", h.handleCreateAnexo)
		r.Get("/{id}", h.handleGetAnexo)
		r.Put("/{id}", h.handleUpdateAnexo)
		r.Delete("/{id}", h.handleDeleteAnexo)
	})
}

// -----------------------------------------------------------------------------
// Solicitudes
// -----------------------------------------------------------------------------

func (h *Handler) handleCreateSolicitud(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateSolicitudRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	detail, err := h.service.CreateSolicitud(ctx, req.Input())
	if err != nil {
		h.fail(ctx, w, "failed to create solicitud", err)
		return
	}
	h.logger.InfoContext(ctx, "solicitud created",
		"request_id", requestID,
		"solicitud_id", detail.ID.String(),
		"estudio_id", detail.EstudioID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, detail)
}

func (h *Handler) handleListSolicitudes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListSolicitudes(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list solicitudes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetSolicitud(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	solicitudID, err := id.ParseSolicitudID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.service.GetSolicitud(ctx, solicitudID)
	if err != nil {
		h.fail(ctx, w, "failed to get solicitud", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	solicitudID, err := id.ParseSolicitudID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.InviteCandidato(ctx, solicitudID)
	if err != nil {
		h.fail(ctx, w, "failed to invite candidato", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"estado":        res.Solicitud.Estado,
		"cuenta_creada": res.CuentaCreada,
	})
}

// -----------------------------------------------------------------------------
// Estudios
// -----------------------------------------------------------------------------

func (h *Handler) handleListEstudios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	desde, err := parseDay(q.Get("desde"), "desde")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	hasta, err := parseDay(q.Get("hasta"), "hasta")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	list, err := h.service.ListEstudios(ctx, service.ListFilter{
		Estado: models.ItemEstado(q.Get("estado")),
		Desde:  desde,
		Hasta:  hasta,
		Cedula: q.Get("cedula"),
	})
	if err != nil {
		h.fail(ctx, w, "failed to list estudios", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetEstudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	estudioID, ok := estudioParam(w, r)
	if !ok {
		return
	}
	v, err := h.service.GetEstudio(ctx, estudioID)
	if err != nil {
		h.fail(ctx, w, "failed to get estudio", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	estudioID, ok := estudioParam(w, r)
	if !ok {
		return
	}
	sum, err := h.service.Summary(ctx, estudioID)
	if err != nil {
		h.fail(ctx, w, "failed to build summary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sum)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	estudioID, ok := estudioParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddItemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.AddItem(ctx, estudioID, req.Tipo)
	if err != nil {
		h.fail(ctx, w, "failed to add item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	estudioID, ok := estudioParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BulkUpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	updated, err := h.service.BulkUpdate(ctx, estudioID, req.Updates())
	if err != nil {
		h.fail(ctx, w, "failed to bulk update items", err)
		return
	}
	h.logger.InfoContext(ctx, "items bulk updated",
		"request_id", requestID,
		"estudio_id", estudioID.String(),
		"requested", len(req.Items),
		"updated", updated,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": updated})
}

func (h *Handler) handleListConsents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	estudioID, ok := estudioParam(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListConsents(ctx, estudioID)
	if err != nil {
		h.fail(ctx, w, "failed to list consents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleRecordConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	estudioID, ok := estudioParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ConsentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.RecordConsent(ctx, estudioID, req.Decision())
	if err != nil {
		h.fail(ctx, w, "failed to record consent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// Items
// -----------------------------------------------------------------------------

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	v, err := h.service.GetItem(ctx, itemID)
	if err != nil {
		h.fail(ctx, w, "failed to get item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleValidateItem(w http.ResponseWriter, r *http.Request) {
	h.scoreItem(w, r, "failed to validate item", h.service.ValidateItem)
}

func (h *Handler) handleFlagFinding(w http.ResponseWriter, r *http.Request) {
	h.scoreItem(w, r, "failed to flag finding", h.service.FlagFinding)
}

func (h *Handler) scoreItem(
	w http.ResponseWriter,
	r *http.Request,
	failMsg string,
	apply func(ctx context.Context, itemID id.ItemID, score float64, comentario string) (*access.ItemView, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ItemScoreRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := apply(ctx, itemID, req.Score(), req.Comentario)
	if err != nil {
		h.fail(ctx, w, failMsg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// -----------------------------------------------------------------------------
// Candidate profile
// -----------------------------------------------------------------------------

func (h *Handler) handleGetPerfil(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.service.GetPerfil(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to get perfil", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdatePerfil(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[PerfilRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.UpdatePerfil(ctx, req.Patch())
	if err != nil {
		h.fail(ctx, w, "failed to update perfil", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// -----------------------------------------------------------------------------
// Anexos
// -----------------------------------------------------------------------------

func (h *Handler) handleListAnexos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	estudioID, ok := estudioParam(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListAnexos(ctx, estudioID, r.URL.Query().Get("tipo"))
	if err != nil {
		h.fail(ctx, w, "failed to list anexos", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreateAnexo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[AnexoRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	in := req.Input()
	// The study may also come in the query string.
	if raw := r.URL.Query().Get("estudio_id"); in.EstudioID == nil && raw != "" {
		estudioID, err := id.ParseEstudioID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		in.EstudioID = &estudioID
	}
	a, err := h.service.CreateAnexo(ctx, in)
	if err != nil {
		h.fail(ctx, w, "failed to create anexo", err)
		return
	}
	h.logger.InfoContext(ctx, "anexo created",
		"request_id", requestID,
		"anexo_id", a.ID.String(),
		"estudio_id", a.EstudioID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleGetAnexo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	anexoID, ok := anexoParam(w, r)
	if !ok {
		return
	}
	a, err := h.service.GetAnexo(ctx, anexoID)
	if err != nil {
		h.fail(ctx, w, "failed to get anexo", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) handleUpdateAnexo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	anexoID, ok := anexoParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AnexoRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	a, err := h.service.UpdateAnexo(ctx, anexoID, req.Fields())
	if err != nil {
		h.fail(ctx, w, "failed to update anexo", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) handleDeleteAnexo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	anexoID, ok := anexoParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteAnexo(ctx, anexoID); err != nil {
		h.fail(ctx, w, "failed to delete anexo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func anexoParam(w http.ResponseWriter, r *http.Request) (id.AnexoID, bool) {
	anexoID, err := id.ParseAnexoID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.AnexoID{}, false
	}
	return anexoID, true
}

func estudioParam(w http.ResponseWriter, r *http.Request) (id.EstudioID, bool) {
	estudioID, err := id.ParseEstudioID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.EstudioID{}, false
	}
	return estudioID, true
}

func itemParam(w http.ResponseWriter, r *http.Request) (id.ItemID, bool) {
	itemID, err := id.ParseItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ItemID{}, false
	}
	return itemID, true
}

// fail logs at a level matching the error class and writes the response.
// Client errors are warnings; anything else is an error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelError
	if de, ok := dErrors.From(err); ok && dErrors.ToHTTPStatus(de.Code) < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
