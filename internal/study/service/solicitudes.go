package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"estudios/internal/access"
	"estudios/internal/audit"
	"estudios/internal/study/credentials"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/platform/sentinel"
	"estudios/pkg/requestcontext"
)

// CandidatoInput identifies the person to check. Cedula is the lookup key.
type CandidatoInput struct {
	Nombre           string
	Apellido         string
	Cedula           string
	Email            string
	Celular          string
	CiudadResidencia string
}

// CreateSolicitudInput is the intake of a new background check. EmpresaID
// is honored only for ADMIN callers.
type CreateSolicitudInput struct {
	EmpresaID     *id.EmpresaID
	Candidato     CandidatoInput
	Observaciones string
	Items         []string
}

// SolicitudDetail is a solicitud with its candidate and study reference.
type SolicitudDetail struct {
	models.Solicitud
	Candidato models.Candidato `json:"candidato"`
	EstudioID id.EstudioID     `json:"estudio_id"`
}

// InviteResult reports the outcome of an invitation.
type InviteResult struct {
	Solicitud    models.Solicitud `json:"solicitud"`
	CuentaCreada bool             `json:"cuenta_creada"`
}

// CreateSolicitud registers a solicitud, its study, the three pending
// consents and any initial items, then assigns an analyst.
func (s *Service) CreateSolicitud(ctx context.Context, in CreateSolicitudInput) (detail *SolicitudDetail, err error) {
	ctx, span := startSpan(ctx, "study.create_solicitud", attribute.Int("items.requested", len(in.Items)))
	defer func() { endSpan(span, err) }()

	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(access.ActionCreateSolicitud); err != nil {
		return nil, err
	}

	empresaID, err := resolveEmpresa(caller, in.EmpresaID)
	if err != nil {
		return nil, err
	}
	cand := normalizeCandidato(in.Candidato)
	if cand.Cedula == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "cedula es requerida")
	}
	tipos := make([]models.ItemTipo, 0, len(in.Items))
	for _, raw := range in.Items {
		tipo, err := models.ParseItemTipo(raw)
		if err != nil {
			return nil, err
		}
		tipos = append(tipos, tipo)
	}

	empresa, err := s.directory.FindEmpresa(ctx, empresaID)
	if err != nil {
		return nil, translateStoreError(err, "Empresa no encontrada.", "failed to load empresa")
	}

	now := requestcontext.Now(ctx)
	estudioID := id.NewEstudioID()
	var (
		sol       *models.Solicitud
		candidato *models.Candidato
	)
	err = s.tx.RunInTx(WithTxKey(ctx, estudioID.String()), func(txCtx context.Context) error {
		c, err := s.getOrCreateCandidato(txCtx, cand, now)
		if err != nil {
			return err
		}

		solicitud := &models.Solicitud{
			ID:            id.NewSolicitudID(),
			EmpresaID:     empresa.ID,
			CandidatoID:   c.ID,
			Estado:        models.SolicitudPendienteInvitacion,
			Observaciones: strings.TrimSpace(in.Observaciones),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		analista, err := s.pickAnalista(txCtx, empresa.ID)
		if err != nil {
			return err
		}
		if analista != nil {
			solicitud.AssignAnalista(analista.ID)
		}
		solicitud.Ownership = models.Ownership{
			EmpresaID:          empresa.ID,
			AnalistaID:         solicitud.AnalistaID,
			CandidatoEmail:     c.Email,
			CandidatoCedula:    c.Cedula,
			SolicitudCreatedAt: now,
		}
		if err := s.solicitudes.CreateSolicitud(txCtx, solicitud); err != nil {
			return translateStoreError(err, "Solicitud no encontrada.", "failed to create solicitud")
		}

		e := models.NewEstudio(estudioID, solicitud.ID, now)
		e.Ownership = solicitud.Ownership
		if err := s.estudios.CreateEstudio(txCtx, e); err != nil {
			return translateStoreError(err, "Estudio no encontrado.", "failed to create estudio")
		}
		for _, tipo := range models.ConsentCatalog() {
			if err := s.consents.CreateConsent(txCtx, models.NewConsent(id.NewConsentID(), e.ID, tipo, now)); err != nil {
				return translateStoreError(err, "Consentimiento no encontrado.", "failed to create consent")
			}
		}
		for _, tipo := range tipos {
			it, err := models.NewItem(id.NewItemID(), e.ID, tipo, now)
			if err != nil {
				return err
			}
			if err := s.items.CreateItem(txCtx, it); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create item")
			}
		}
		if len(tipos) > 0 {
			if err := s.recompute(txCtx, e, now); err != nil {
				return err
			}
		}
		sol, candidato = solicitud, c
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.metrics.IncSolicitudCreated()
	detailMap := map[string]string{
		"empresa_id": empresa.ID.String(),
		"estudio_id": estudioID.String(),
		"items":      strconv.Itoa(len(tipos)),
	}
	if sol.AnalistaID != nil {
		detailMap["analista_id"] = sol.AnalistaID.String()
	}
	s.emitAudit(ctx, caller, audit.ActionSolicitudCreated, sol.ID.String(), detailMap)
	s.notifySolicitudCreated(ctx, sol, empresa, candidato)

	return &SolicitudDetail{Solicitud: *sol, Candidato: *candidato, EstudioID: estudioID}, nil
}

// ListSolicitudes returns the solicitudes visible to the caller, newest first.
func (s *Service) ListSolicitudes(ctx context.Context) ([]models.Solicitud, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	scope := policy.RowScope(caller)
	if scope.Kind == models.ScopeNone {
		return []models.Solicitud{}, nil
	}
	out, err := s.solicitudes.ListSolicitudes(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list solicitudes")
	}
	if out == nil {
		out = []models.Solicitud{}
	}
	return out, nil
}

// GetSolicitud reads one visible solicitud with its candidate and study id.
func (s *Service) GetSolicitud(ctx context.Context, solicitudID id.SolicitudID) (*SolicitudDetail, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	sol, err := s.loadSolicitud(ctx, caller, policy, solicitudID)
	if err != nil {
		return nil, err
	}
	cand, err := s.directory.FindCandidato(ctx, sol.CandidatoID)
	if err != nil {
		return nil, translateStoreError(err, "Candidato no encontrado.", "failed to load candidato")
	}
	e, err := s.estudios.FindEstudioBySolicitud(ctx, sol.ID)
	if err != nil {
		return nil, translateStoreError(err, "Estudio no encontrado.", "failed to load estudio")
	}
	return &SolicitudDetail{Solicitud: *sol, Candidato: *cand, EstudioID: e.ID}, nil
}

// InviteCandidato gives the candidate portal access. A CANDIDATO account with
// a temporary password is created when none exists for the candidate email.
func (s *Service) InviteCandidato(ctx context.Context, solicitudID id.SolicitudID) (result *InviteResult, err error) {
	ctx, span := startSpan(ctx, "study.invite_candidato", attribute.String("solicitud.id", solicitudID.String()))
	defer func() { endSpan(span, err) }()

	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(access.ActionInviteCandidato); err != nil {
		return nil, err
	}
	sol, err := s.loadSolicitud(ctx, caller, policy, solicitudID)
	if err != nil {
		return nil, err
	}
	cand, err := s.directory.FindCandidato(ctx, sol.CandidatoID)
	if err != nil {
		return nil, translateStoreError(err, "Candidato no encontrado.", "failed to load candidato")
	}
	if strings.TrimSpace(cand.Email) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "El candidato no tiene email.")
	}

	now := requestcontext.Now(ctx)
	var tempPassword string
	err = s.tx.RunInTx(WithTxKey(ctx, solicitudID.String()), func(txCtx context.Context) error {
		_, err := s.directory.FindUserByEmail(txCtx, cand.Email)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			password, user, err := newCandidatoUser(cand, now)
			if err != nil {
				return err
			}
			if err := s.directory.CreateUser(txCtx, user); err != nil {
				return translateStoreError(err, "Usuario no encontrado.", "failed to create user")
			}
			tempPassword = password
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}

		current, err := s.solicitudes.FindSolicitud(txCtx, solicitudID)
		if err != nil {
			return translateStoreError(err, "Solicitud no encontrada.", "failed to load solicitud")
		}
		current.MarkInvited(now)
		if err := s.solicitudes.UpdateSolicitud(txCtx, current); err != nil {
			return translateStoreError(err, "Solicitud no encontrada.", "failed to update solicitud")
		}
		sol = current
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.metrics.IncInvitation()
	s.emitAudit(ctx, caller, audit.ActionCandidatoInvited, solicitudID.String(), map[string]string{
		"candidato_id":  cand.ID.String(),
		"cuenta_creada": strconv.FormatBool(tempPassword != ""),
	})
	s.notifyInvitation(ctx, sol, cand, tempPassword)

	return &InviteResult{Solicitud: *sol, CuentaCreada: tempPassword != ""}, nil
}

func (s *Service) loadSolicitud(ctx context.Context, caller id.Caller, policy access.Policy, solicitudID id.SolicitudID) (*models.Solicitud, error) {
	sol, err := s.solicitudes.FindSolicitud(ctx, solicitudID)
	if err != nil {
		return nil, translateStoreError(err, "Solicitud no encontrada.", "failed to load solicitud")
	}
	if !policy.RowScope(caller).Allows(sol.Ownership) {
		return nil, dErrors.New(dErrors.CodeNotFound, "Solicitud no encontrada.")
	}
	return sol, nil
}

// getOrCreateCandidato reuses the candidate registered under the cedula.
func (s *Service) getOrCreateCandidato(ctx context.Context, in CandidatoInput, now time.Time) (*models.Candidato, error) {
	existing, err := s.directory.FindCandidatoByCedula(ctx, in.Cedula)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidato")
	}
	if in.Nombre == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "nombre del candidato es requerido")
	}
	c := &models.Candidato{
		ID:               id.NewCandidatoID(),
		Nombre:           in.Nombre,
		Apellido:         in.Apellido,
		Cedula:           in.Cedula,
		Email:            in.Email,
		Celular:          in.Celular,
		CiudadResidencia: in.CiudadResidencia,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.directory.CreateCandidato(ctx, c); err != nil {
		return nil, translateStoreError(err, "Candidato no encontrado.", "failed to create candidato")
	}
	return c, nil
}

// pickAnalista prefers an active analyst of the company, then any active analyst.
func (s *Service) pickAnalista(ctx context.Context, empresaID id.EmpresaID) (*models.User, error) {
	u, err := s.directory.FirstActiveAnalista(ctx, &empresaID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find analista")
	}
	u, err = s.directory.FirstActiveAnalista(ctx, nil)
	if err == nil {
		return u, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find analista")
}

func resolveEmpresa(caller id.Caller, requested *id.EmpresaID) (id.EmpresaID, error) {
	if caller.Role == id.RoleAdmin && requested != nil && !requested.IsNil() {
		return *requested, nil
	}
	if caller.EmpresaID != nil && !caller.EmpresaID.IsNil() {
		return *caller.EmpresaID, nil
	}
	if caller.Role == id.RoleAdmin {
		return id.EmpresaID{}, dErrors.New(dErrors.CodeValidation, "empresa_id es requerido")
	}
	return id.EmpresaID{}, dErrors.New(dErrors.CodeValidation, "El usuario cliente no tiene empresa asociada.")
}

func normalizeCandidato(in CandidatoInput) CandidatoInput {
	return CandidatoInput{
		Nombre:           strings.TrimSpace(in.Nombre),
		Apellido:         strings.TrimSpace(in.Apellido),
		Cedula:           strings.TrimSpace(in.Cedula),
		Email:            strings.ToLower(strings.TrimSpace(in.Email)),
		Celular:          strings.TrimSpace(in.Celular),
		CiudadResidencia: strings.TrimSpace(in.CiudadResidencia),
	}
}

func newCandidatoUser(cand *models.Candidato, now time.Time) (string, *models.User, error) {
	password, err := credentials.GenerateTempPassword()
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate password")
	}
	hash, err := credentials.Hash(password)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return password, &models.User{
		ID:           id.NewUserID(),
		Email:        strings.ToLower(strings.TrimSpace(cand.Email)),
		Nombre:       cand.FullName(),
		PasswordHash: hash,
		Role:         id.RoleCandidato,
		Active:       true,
		CreatedAt:    now,
	}, nil
}
