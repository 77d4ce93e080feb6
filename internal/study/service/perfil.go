package service

import (
	"context"
	"strings"

	"estudios/internal/access"
	"estudios/internal/audit"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/requestcontext"
)

const perfilNotFound = "No se encontró candidato asociado al usuario."

// GetPerfil returns the candidate record matching the caller's email.
func (s *Service) GetPerfil(ctx context.Context) (*models.Candidato, error) {
	_, c, err := s.ownCandidato(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdatePerfil applies a partial update to the caller's own candidate record.
func (s *Service) UpdatePerfil(ctx context.Context, patch models.PerfilPatch) (*models.Candidato, error) {
	caller, c, err := s.ownCandidato(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	var updated *models.Candidato
	err = s.tx.RunInTx(WithTxKey(ctx, "candidato:"+c.ID.String()), func(txCtx context.Context) error {
		current, err := s.directory.FindCandidato(txCtx, c.ID)
		if err != nil {
			return translateStoreError(err, perfilNotFound, "failed to load candidato")
		}
		if err := current.ApplyPerfil(patch, now); err != nil {
			return err
		}
		if err := s.directory.UpdateCandidato(txCtx, current); err != nil {
			return translateStoreError(err, perfilNotFound, "failed to update candidato")
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.emitAudit(ctx, caller, audit.ActionPerfilUpdated, updated.ID.String(), map[string]string{
		"fields": strings.Join(patchedFields(patch), ","),
	})
	return updated, nil
}

// ownCandidato resolves the newest candidate record under the caller's email.
func (s *Service) ownCandidato(ctx context.Context) (id.Caller, *models.Candidato, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return caller, nil, err
	}
	if err := policy.Require(access.ActionSelfProfile); err != nil {
		return caller, nil, err
	}
	if strings.TrimSpace(caller.Email) == "" {
		return caller, nil, dErrors.New(dErrors.CodeNotFound, perfilNotFound)
	}
	c, err := s.directory.FindCandidatoByEmail(ctx, caller.Email)
	if err != nil {
		return caller, nil, translateStoreError(err, perfilNotFound, "failed to load candidato")
	}
	return caller, c, nil
}

func patchedFields(p models.PerfilPatch) []string {
	set := []struct {
		name string
		ok   bool
	}{
		{"nombre", p.Nombre != nil},
		{"apellido", p.Apellido != nil},
		{"celular", p.Celular != nil},
		{"ciudad_residencia", p.CiudadResidencia != nil},
		{"tipo_documento", p.TipoDocumento != nil},
		{"fecha_nacimiento", p.FechaNacimiento != nil},
		{"direccion", p.Direccion != nil},
		{"barrio", p.Barrio != nil},
		{"departamento", p.Departamento != nil},
		{"municipio", p.Municipio != nil},
		{"telefono", p.Telefono != nil},
		{"eps", p.EPS != nil},
		{"perfil_aspirante", p.PerfilAspirante != nil},
		{"estudia_actualmente", p.EstudiaActualmente != nil},
	}
	out := make([]string, 0, len(set))
	for _, f := range set {
		if f.ok {
			out = append(out, f.name)
		}
	}
	return out
}
