package service_test

import (
	"context"
	"regexp"
	"strings"

	"estudios/internal/audit"
	notifmodels "estudios/internal/notification/models"
	"estudios/internal/study/credentials"
	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

func newCandidatoInput(cedula, email string) service.CreateSolicitudInput {
	return service.CreateSolicitudInput{
		Candidato: service.CandidatoInput{
			Nombre:   "María",
			Apellido: "Gómez",
			Cedula:   cedula,
			Email:    email,
		},
		Observaciones: "cargo: tesorera",
		Items:         []string{"LISTAS_RESTRICTIVAS", "visita_domiciliaria"},
	}
}

func (s *StudyServiceSuite) TestCreateSolicitud() {
	detail, err := s.service.CreateSolicitud(s.cliente(), newCandidatoInput("52000111", " Maria@Demo.com "))
	s.Require().NoError(err)

	s.Equal(s.seed.EmpresaID, detail.EmpresaID, "cliente company is forced")
	s.Equal(models.SolicitudPendienteInvitacion, detail.Estado)
	s.Equal("maria@demo.com", detail.Candidato.Email)
	s.Require().NotNil(detail.AnalistaID)
	s.Equal(s.seed.AnalistaID, *detail.AnalistaID)

	ctx := context.Background()
	e, err := s.mem.FindEstudio(ctx, detail.EstudioID)
	s.Require().NoError(err)
	s.Equal(detail.ID, e.SolicitudID)
	items, err := s.mem.ListItems(ctx, e.ID)
	s.Require().NoError(err)
	s.Len(items, 2)
	consents, err := s.mem.ListConsents(ctx, e.ID)
	s.Require().NoError(err)
	s.Len(consents, 3)
	for _, c := range consents {
		s.False(c.Aceptado)
	}

	s.Run("analyst gets an inbox entry and both parties an email", func() {
		s.Require().Len(s.notifier.inbox, 1)
		n := s.notifier.inbox[0]
		s.Equal(s.seed.AnalistaID, n.UserID)
		s.Equal(notifmodels.TipoNuevaSolicitud, n.Tipo)
		s.Require().NotNil(n.SolicitudID)
		s.Equal(detail.ID, *n.SolicitudID)

		sent := s.notifier.sent()
		s.Require().Len(sent, 1)
		s.ElementsMatch([]string{"maria@demo.com", "analista@demo.com"}, sent[0].to)
	})

	s.Run("the same cedula reuses the candidate", func() {
		again, err := s.service.CreateSolicitud(s.admin(), service.CreateSolicitudInput{
			EmpresaID: &s.seed.EmpresaID,
			Candidato: service.CandidatoInput{Cedula: "52000111"},
		})
		s.Require().NoError(err)
		s.Equal(detail.Candidato.ID, again.Candidato.ID)
		s.NotEqual(detail.EstudioID, again.EstudioID)

		e, err := s.mem.FindEstudio(ctx, again.EstudioID)
		s.Require().NoError(err)
		s.Equal(int64(1), e.Version, "no items means no recompute")
	})

	s.Contains(s.auditActions(), audit.ActionSolicitudCreated)
}

func (s *StudyServiceSuite) TestCreateSolicitudValidation() {
	s.Run("admin must name the company", func() {
		_, err := s.service.CreateSolicitud(s.admin(), newCandidatoInput("1", "a@demo.com"))
		s.assertCode(err, dErrors.CodeValidation)
	})

	s.Run("cliente without company", func() {
		ctx := s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleCliente})
		_, err := s.service.CreateSolicitud(ctx, newCandidatoInput("1", "a@demo.com"))
		s.assertCode(err, dErrors.CodeValidation)
	})

	s.Run("cedula is required", func() {
		_, err := s.service.CreateSolicitud(s.cliente(), newCandidatoInput("  ", "a@demo.com"))
		s.assertCode(err, dErrors.CodeValidation)
	})

	s.Run("unknown item tipo", func() {
		in := newCandidatoInput("77", "a@demo.com")
		in.Items = []string{"POLIGRAFO"}
		_, err := s.service.CreateSolicitud(s.cliente(), in)
		s.assertCode(err, dErrors.CodeValidation)
		_, err = s.mem.FindCandidatoByCedula(context.Background(), "77")
		s.Error(err, "nothing is written")
	})

	s.Run("unknown company", func() {
		other := id.NewEmpresaID()
		in := newCandidatoInput("78", "a@demo.com")
		in.EmpresaID = &other
		_, err := s.service.CreateSolicitud(s.admin(), in)
		s.assertCode(err, dErrors.CodeNotFound)
	})

	s.Run("analista and candidato cannot create", func() {
		_, err := s.service.CreateSolicitud(s.analista(), newCandidatoInput("79", ""))
		s.assertCode(err, dErrors.CodeForbidden)
		_, err = s.service.CreateSolicitud(s.candidato(), newCandidatoInput("79", ""))
		s.assertCode(err, dErrors.CodeForbidden)
	})
}

func (s *StudyServiceSuite) TestListAndGetSolicitudes() {
	created, err := s.service.CreateSolicitud(s.admin(), func() service.CreateSolicitudInput {
		in := newCandidatoInput("88", "ana@demo.com")
		in.EmpresaID = &s.seed.EmpresaID
		return in
	}())
	s.Require().NoError(err)

	list, err := s.service.ListSolicitudes(s.cliente())
	s.Require().NoError(err)
	s.Len(list, 2)

	list, err = s.service.ListSolicitudes(s.candidato())
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(s.seed.SolicitudID, list[0].ID)

	detail, err := s.service.GetSolicitud(s.analista(), created.ID)
	s.Require().NoError(err)
	s.Equal("88", detail.Candidato.Cedula)
	s.Equal(created.EstudioID, detail.EstudioID)

	_, err = s.service.GetSolicitud(s.candidato(), created.ID)
	s.assertCode(err, dErrors.CodeNotFound)
}

var tempPasswordLine = regexp.MustCompile(`Contraseña temporal: (\S+)`)

func (s *StudyServiceSuite) TestInviteCandidato() {
	s.Run("existing account is reused", func() {
		res, err := s.service.InviteCandidato(s.analista(), s.seed.SolicitudID)
		s.Require().NoError(err)
		s.False(res.CuentaCreada)
		s.Equal(models.SolicitudInvitado, res.Solicitud.Estado)

		sent := s.notifier.sent()
		s.Require().NotEmpty(sent)
		last := sent[len(sent)-1]
		s.Equal([]string{"juan@demo.com"}, last.to)
		s.Contains(last.body, "https://portal.demo.com/candidato")
		s.NotContains(last.body, "Contraseña temporal")
	})

	s.Run("a new candidate gets an account with a temporary password", func() {
		in := newCandidatoInput("99", "nuevo@demo.com")
		in.EmpresaID = &s.seed.EmpresaID
		created, err := s.service.CreateSolicitud(s.admin(), in)
		s.Require().NoError(err)

		res, err := s.service.InviteCandidato(s.admin(), created.ID)
		s.Require().NoError(err)
		s.True(res.CuentaCreada)

		sent := s.notifier.sent()
		body := sent[len(sent)-1].body
		m := tempPasswordLine.FindStringSubmatch(body)
		s.Require().Len(m, 2)

		u, err := s.mem.FindUserByEmail(context.Background(), "nuevo@demo.com")
		s.Require().NoError(err)
		s.Equal(id.RoleCandidato, u.Role)
		s.NoError(credentials.Verify(strings.TrimSpace(m[1]), u.PasswordHash))
	})

	s.Run("candidate without email", func() {
		in := newCandidatoInput("100", "")
		in.EmpresaID = &s.seed.EmpresaID
		created, err := s.service.CreateSolicitud(s.admin(), in)
		s.Require().NoError(err)

		_, err = s.service.InviteCandidato(s.admin(), created.ID)
		s.assertCode(err, dErrors.CodeValidation)
	})

	s.Run("cliente cannot invite", func() {
		_, err := s.service.InviteCandidato(s.cliente(), s.seed.SolicitudID)
		s.assertCode(err, dErrors.CodeForbidden)
	})

	s.Contains(s.auditActions(), audit.ActionCandidatoInvited)
}
