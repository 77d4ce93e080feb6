package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"estudios/internal/access"
	"estudios/internal/audit"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/requestcontext"
)

const anexoNotFound = "Anexo no encontrado."

// AnexoInput creates an academic or employment record. A nil EstudioID is
// allowed for candidates and resolves to their most recent study.
type AnexoInput struct {
	EstudioID *id.EstudioID
	Tipo      string
	Fields    models.AnexoFields
}

// ListAnexos returns a visible study's records, optionally of one tipo.
func (s *Service) ListAnexos(ctx context.Context, estudioID id.EstudioID, tipo string) ([]models.Anexo, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadEstudio(ctx, caller, policy, estudioID); err != nil {
		return nil, err
	}
	var filter models.AnexoTipo
	if tipo != "" {
		if filter, err = models.ParseAnexoTipo(tipo); err != nil {
			return nil, err
		}
	}
	anexos, err := s.anexos.ListAnexos(ctx, estudioID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list anexos")
	}
	return anexos, nil
}

// CreateAnexo attaches a record to a study the caller can see.
func (s *Service) CreateAnexo(ctx context.Context, in AnexoInput) (created *models.Anexo, err error) {
	ctx, span := startSpan(ctx, "study.create_anexo", attribute.String("anexo.tipo", in.Tipo))
	defer func() { endSpan(span, err) }()

	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(access.ActionManageAnexo); err != nil {
		return nil, err
	}
	tipo, err := models.ParseAnexoTipo(in.Tipo)
	if err != nil {
		return nil, err
	}
	estudioID, err := s.resolveAnexoEstudio(ctx, caller, policy, in.EstudioID)
	if err != nil {
		return nil, err
	}
	e, err := s.loadEstudio(ctx, caller, policy, estudioID)
	if err != nil {
		return nil, err
	}
	sol, err := s.solicitudes.FindSolicitud(ctx, e.SolicitudID)
	if err != nil {
		return nil, translateStoreError(err, "Solicitud no encontrada.", "failed to load solicitud")
	}
	a, err := models.NewAnexo(id.NewAnexoID(), e.ID, sol.CandidatoID, tipo, in.Fields, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(WithTxKey(ctx, e.ID.String()), func(txCtx context.Context) error {
		if err := s.anexos.CreateAnexo(txCtx, a); err != nil {
			return translateStoreError(err, "Estudio no encontrado.", "failed to create anexo")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.emitAudit(ctx, caller, audit.ActionAnexoCreated, a.ID.String(), anexoAuditDetail(a))
	return a, nil
}

// GetAnexo returns one record when its study is visible to the caller.
func (s *Service) GetAnexo(ctx context.Context, anexoID id.AnexoID) (*models.Anexo, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return s.loadAnexo(ctx, caller, policy, anexoID)
}

// UpdateAnexo replaces the editable content of a record. Its study, candidate
// and tipo do not change.
func (s *Service) UpdateAnexo(ctx context.Context, anexoID id.AnexoID, f models.AnexoFields) (*models.Anexo, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(access.ActionManageAnexo); err != nil {
		return nil, err
	}
	current, err := s.loadAnexo(ctx, caller, policy, anexoID)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	var updated *models.Anexo
	err = s.tx.RunInTx(WithTxKey(ctx, current.EstudioID.String()), func(txCtx context.Context) error {
		a, err := s.anexos.FindAnexo(txCtx, anexoID)
		if err != nil {
			return translateStoreError(err, anexoNotFound, "failed to load anexo")
		}
		if err := a.Replace(f, now); err != nil {
			return err
		}
		if err := s.anexos.UpdateAnexo(txCtx, a); err != nil {
			return translateStoreError(err, anexoNotFound, "failed to update anexo")
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.emitAudit(ctx, caller, audit.ActionAnexoUpdated, updated.ID.String(), anexoAuditDetail(updated))
	return updated, nil
}

// DeleteAnexo removes a record from a visible study.
func (s *Service) DeleteAnexo(ctx context.Context, anexoID id.AnexoID) error {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return err
	}
	if err := policy.Require(access.ActionManageAnexo); err != nil {
		return err
	}
	a, err := s.loadAnexo(ctx, caller, policy, anexoID)
	if err != nil {
		return err
	}
	err = s.tx.RunInTx(WithTxKey(ctx, a.EstudioID.String()), func(txCtx context.Context) error {
		if err := s.anexos.DeleteAnexo(txCtx, anexoID); err != nil {
			return translateStoreError(err, anexoNotFound, "failed to delete anexo")
		}
		return nil
	})
	if err != nil {
		return txError(err)
	}

	s.emitAudit(ctx, caller, audit.ActionAnexoDeleted, anexoID.String(), anexoAuditDetail(a))
	return nil
}

// loadAnexo reads a record and applies the row scope of its study. A record
// under an invisible study is reported as missing.
func (s *Service) loadAnexo(ctx context.Context, caller id.Caller, policy access.Policy, anexoID id.AnexoID) (*models.Anexo, error) {
	a, err := s.anexos.FindAnexo(ctx, anexoID)
	if err != nil {
		return nil, translateStoreError(err, anexoNotFound, "failed to load anexo")
	}
	if _, err := s.loadEstudio(ctx, caller, policy, a.EstudioID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, anexoNotFound)
		}
		return nil, err
	}
	return a, nil
}

// resolveAnexoEstudio picks the target study. Candidates may omit it and get
// their newest study; every other role must name one.
func (s *Service) resolveAnexoEstudio(ctx context.Context, caller id.Caller, policy access.Policy, estudioID *id.EstudioID) (id.EstudioID, error) {
	if estudioID != nil && !estudioID.IsNil() {
		return *estudioID, nil
	}
	scope := policy.RowScope(caller)
	if scope.Kind != models.ScopeCandidato {
		return id.EstudioID{}, dErrors.New(dErrors.CodeValidation, "estudio_id es requerido.")
	}
	estudios, err := s.estudios.ListEstudios(ctx, models.EstudioFilter{Scope: scope})
	if err != nil {
		return id.EstudioID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list estudios")
	}
	if len(estudios) == 0 {
		return id.EstudioID{}, dErrors.New(dErrors.CodeValidation, "estudio_id es requerido.")
	}
	return estudios[0].ID, nil
}

func anexoAuditDetail(a *models.Anexo) map[string]string {
	return map[string]string{
		"estudio_id": a.EstudioID.String(),
		"tipo":       string(a.Tipo),
	}
}
