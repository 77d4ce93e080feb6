package service

import (
	"context"
	"fmt"

	notifmodels "estudios/internal/notification/models"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	"estudios/pkg/requestcontext"
)

// Notification helpers run after commit. Lookup failures are logged and the
// notification is skipped; they never reach the caller.

// notifyItemValidated emails the company contact and the candidate with the
// study's current progress.
func (s *Service) notifyItemValidated(ctx context.Context, e *models.Estudio, it *models.Item) {
	subject := fmt.Sprintf("Ítem validado en estudio %s", e.ID)
	body := fmt.Sprintf("El ítem %s fue validado. Progreso actual: %s%%.", it.Tipo, formatProgreso(e.Progreso))
	s.emailStudyStakeholders(ctx, e, subject, body)
}

// notifyBulkValidated sends one progress update for a bulk change.
func (s *Service) notifyBulkValidated(ctx context.Context, e *models.Estudio, validated int) {
	subject := fmt.Sprintf("Ítems validados en estudio %s", e.ID)
	body := fmt.Sprintf("Se validaron %d ítems. Progreso actual: %s%%.", validated, formatProgreso(e.Progreso))
	s.emailStudyStakeholders(ctx, e, subject, body)
}

func (s *Service) emailStudyStakeholders(ctx context.Context, e *models.Estudio, subject, body string) {
	if s.notifier == nil {
		return
	}
	to := []string{e.Ownership.CandidatoEmail}
	empresa, err := s.directory.FindEmpresa(ctx, e.Ownership.EmpresaID)
	if err != nil {
		s.logger.WarnContext(ctx, "empresa lookup failed for notification",
			"error", err,
			"estudio_id", e.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		to = append(to, empresa.EmailContacto)
	}
	s.notifier.Email(ctx, to, subject, body)
}

// notifySolicitudCreated drops an inbox entry for the assigned analyst and
// emails the analyst and the candidate.
func (s *Service) notifySolicitudCreated(ctx context.Context, sol *models.Solicitud, empresa *models.Empresa, cand *models.Candidato) {
	if s.notifier == nil {
		return
	}
	to := []string{cand.Email}
	if sol.AnalistaID != nil {
		solicitudID := sol.ID
		s.notifier.Inbox(ctx, notifmodels.Notificacion{
			ID:     id.NewNotificacionID(),
			UserID: *sol.AnalistaID,
			Tipo:   notifmodels.TipoNuevaSolicitud,
			Titulo: fmt.Sprintf("Nueva solicitud %s", sol.ID),
			Cuerpo: fmt.Sprintf("Empresa: %s - Candidato: %s (%s)",
				empresa.Nombre, cand.FullName(), cand.Cedula),
			SolicitudID: &solicitudID,
			CreatedAt:   requestcontext.Now(ctx),
		})

		analista, err := s.directory.FindUser(ctx, *sol.AnalistaID)
		if err != nil {
			s.logger.WarnContext(ctx, "analista lookup failed for notification",
				"error", err,
				"solicitud_id", sol.ID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
		} else {
			to = append(to, analista.Email)
		}
	}
	s.notifier.Email(ctx, to,
		fmt.Sprintf("Nueva solicitud de estudio %s", sol.ID),
		fmt.Sprintf("Se ha creado la solicitud %s para el candidato %s.", sol.ID, cand.FullName()),
	)
}

// notifyInvitation emails the candidate portal link. tempPassword is empty
// when the account already existed.
func (s *Service) notifyInvitation(ctx context.Context, sol *models.Solicitud, cand *models.Candidato, tempPassword string) {
	if s.notifier == nil {
		return
	}
	link := s.frontendURL + "/candidato"
	body := fmt.Sprintf("Hola %s,\n\nIngresa al portal del candidato y completa tu estudio:\n%s\n", cand.Nombre, link)
	if tempPassword != "" {
		body += fmt.Sprintf("\nUsuario: %s\nContraseña temporal: %s\n", cand.Email, tempPassword)
	} else {
		body += "Si no recuerdas tu clave, solicita recuperación."
	}
	s.notifier.Email(ctx, []string{cand.Email},
		fmt.Sprintf("Acceso para completar su estudio (Solicitud %s)", sol.ID),
		body,
	)
}
