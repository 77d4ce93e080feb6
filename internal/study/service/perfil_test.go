package service_test

import (
	"context"
	"time"

	"estudios/internal/audit"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

func strRef(v string) *string { return &v }

func (s *StudyServiceSuite) TestGetPerfil() {
	c, err := s.service.GetPerfil(s.candidato())
	s.Require().NoError(err)
	s.Equal("1234567890", c.Cedula)
	s.Equal("Juan", c.Nombre)

	s.Run("a caller without a candidate record gets not found", func() {
		other := s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleCandidato, Email: "nadie@demo.com"})
		_, err := s.service.GetPerfil(other)
		s.assertCode(err, dErrors.CodeNotFound)
	})

	s.Run("staff roles have no self profile", func() {
		for _, ctx := range []context.Context{s.admin(), s.analista(), s.cliente()} {
			_, err := s.service.GetPerfil(ctx)
			s.assertCode(err, dErrors.CodeForbidden)
		}
	})

	s.Run("unauthenticated", func() {
		_, err := s.service.GetPerfil(context.Background())
		s.assertCode(err, dErrors.CodeUnauthorized)
	})
}

func (s *StudyServiceSuite) TestUpdatePerfil() {
	born := time.Date(1991, 7, 20, 0, 0, 0, 0, time.UTC)
	yes := true
	c, err := s.service.UpdatePerfil(s.candidato(), models.PerfilPatch{
		Direccion:          strRef(" Calle 1 # 2-3 "),
		TipoDocumento:      strRef("cc"),
		FechaNacimiento:    &born,
		EstudiaActualmente: &yes,
	})
	s.Require().NoError(err)
	s.Equal("Calle 1 # 2-3", c.Direccion)
	s.Equal(models.DocCedula, c.TipoDocumento)
	s.True(c.EstudiaActualmente)
	s.Equal("Juan", c.Nombre, "untouched fields survive")
	s.True(c.UpdatedAt.Equal(s.now))

	stored, err := s.mem.FindCandidatoByEmail(context.Background(), "juan@demo.com")
	s.Require().NoError(err)
	s.Equal("Calle 1 # 2-3", stored.Direccion)
	s.Require().NotNil(stored.FechaNacimiento)
	s.True(stored.FechaNacimiento.Equal(born))
	s.Contains(s.auditActions(), audit.ActionPerfilUpdated)

	s.Run("invalid patch changes nothing", func() {
		_, err := s.service.UpdatePerfil(s.candidato(), models.PerfilPatch{
			Direccion:     strRef("Otra"),
			TipoDocumento: strRef("XX"),
		})
		s.assertCode(err, dErrors.CodeValidation)

		again, err := s.mem.FindCandidatoByEmail(context.Background(), "juan@demo.com")
		s.Require().NoError(err)
		s.Equal("Calle 1 # 2-3", again.Direccion)
	})

	s.Run("staff cannot patch a profile", func() {
		_, err := s.service.UpdatePerfil(s.admin(), models.PerfilPatch{Direccion: strRef("x")})
		s.assertCode(err, dErrors.CodeForbidden)
	})
}
