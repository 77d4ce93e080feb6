package service_test

import (
	"context"
	"time"

	"estudios/internal/audit"
	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/requestcontext"
)

func (s *StudyServiceSuite) newAnexo(ctx context.Context, tipo, titulo string) *models.Anexo {
	estudioID := s.seed.EstudioID
	a, err := s.service.CreateAnexo(ctx, service.AnexoInput{
		EstudioID: &estudioID,
		Tipo:      tipo,
		Fields:    models.AnexoFields{Titulo: titulo, Entidad: "ACME"},
	})
	s.Require().NoError(err)
	return a
}

func (s *StudyServiceSuite) TestCreateAnexo() {
	a := s.newAnexo(s.analista(), "laboral", "Auxiliar contable")
	s.Equal(models.AnexoLaboral, a.Tipo)
	s.Equal(s.seed.EstudioID, a.EstudioID)

	sol, err := s.mem.FindSolicitud(context.Background(), s.seed.SolicitudID)
	s.Require().NoError(err)
	s.Equal(sol.CandidatoID, a.CandidatoID)
	s.Contains(s.auditActions(), audit.ActionAnexoCreated)

	s.Run("validation", func() {
		estudioID := s.seed.EstudioID
		_, err := s.service.CreateAnexo(s.admin(), service.AnexoInput{EstudioID: &estudioID, Tipo: "DEPORTIVO", Fields: models.AnexoFields{Titulo: "x"}})
		s.assertCode(err, dErrors.CodeValidation)

		_, err = s.service.CreateAnexo(s.admin(), service.AnexoInput{EstudioID: &estudioID, Tipo: "ACADEMICO"})
		s.assertCode(err, dErrors.CodeValidation)
	})

	s.Run("staff must name the study", func() {
		_, err := s.service.CreateAnexo(s.analista(), service.AnexoInput{Tipo: "ACADEMICO", Fields: models.AnexoFields{Titulo: "x"}})
		s.assertCode(err, dErrors.CodeValidation)
	})

	s.Run("clients are read only", func() {
		estudioID := s.seed.EstudioID
		_, err := s.service.CreateAnexo(s.cliente(), service.AnexoInput{EstudioID: &estudioID, Tipo: "ACADEMICO", Fields: models.AnexoFields{Titulo: "x"}})
		s.assertCode(err, dErrors.CodeForbidden)
	})

	s.Run("another candidate cannot attach to the study", func() {
		other := s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleCandidato, Email: "maria@demo.com"})
		estudioID := s.seed.EstudioID
		_, err := s.service.CreateAnexo(other, service.AnexoInput{EstudioID: &estudioID, Tipo: "ACADEMICO", Fields: models.AnexoFields{Titulo: "x"}})
		s.assertCode(err, dErrors.CodeNotFound)

		_, err = s.service.CreateAnexo(other, service.AnexoInput{Tipo: "ACADEMICO", Fields: models.AnexoFields{Titulo: "x"}})
		s.assertCode(err, dErrors.CodeValidation)
	})
}

func (s *StudyServiceSuite) TestCreateAnexoDefaultsToNewestStudy() {
	later := requestcontext.WithTime(s.admin(), s.now.Add(time.Hour))
	newer, err := s.service.CreateSolicitud(later, service.CreateSolicitudInput{
		EmpresaID: &s.seed.EmpresaID,
		Candidato: service.CandidatoInput{Cedula: "1234567890"},
	})
	s.Require().NoError(err)

	a, err := s.service.CreateAnexo(s.candidato(), service.AnexoInput{Tipo: "ACADEMICO", Fields: models.AnexoFields{Titulo: "Bachiller"}})
	s.Require().NoError(err)
	s.Equal(newer.EstudioID, a.EstudioID)

	older := s.seed.EstudioID
	b, err := s.service.CreateAnexo(s.candidato(), service.AnexoInput{EstudioID: &older, Tipo: "ACADEMICO", Fields: models.AnexoFields{Titulo: "Técnico"}})
	s.Require().NoError(err)
	s.Equal(older, b.EstudioID)
}

func (s *StudyServiceSuite) TestListAnexos() {
	s.newAnexo(s.admin(), "ACADEMICO", "Contador público")
	s.newAnexo(s.candidato(), "LABORAL", "Auxiliar")

	all, err := s.service.ListAnexos(s.cliente(), s.seed.EstudioID, "")
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Contador público", all[0].Titulo)

	laborales, err := s.service.ListAnexos(s.candidato(), s.seed.EstudioID, "laboral")
	s.Require().NoError(err)
	s.Require().Len(laborales, 1)
	s.Equal("Auxiliar", laborales[0].Titulo)

	_, err = s.service.ListAnexos(s.admin(), s.seed.EstudioID, "OTRO")
	s.assertCode(err, dErrors.CodeValidation)

	other := s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleCandidato, Email: "maria@demo.com"})
	_, err = s.service.ListAnexos(other, s.seed.EstudioID, "")
	s.assertCode(err, dErrors.CodeNotFound)
}

func (s *StudyServiceSuite) TestUpdateAndDeleteAnexo() {
	a := s.newAnexo(s.candidato(), "ACADEMICO", "Bachiller")
	other := s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleCandidato, Email: "maria@demo.com"})

	s.Run("out of scope records look missing", func() {
		_, err := s.service.GetAnexo(other, a.ID)
		s.assertCode(err, dErrors.CodeNotFound)
		_, err = s.service.UpdateAnexo(other, a.ID, models.AnexoFields{Titulo: "x"})
		s.assertCode(err, dErrors.CodeNotFound)
		s.assertCode(s.service.DeleteAnexo(other, a.ID), dErrors.CodeNotFound)
	})

	s.Run("update replaces the content", func() {
		updated, err := s.service.UpdateAnexo(s.analista(), a.ID, models.AnexoFields{Titulo: "Bachiller académico", Entidad: "Colegio"})
		s.Require().NoError(err)
		s.Equal("Bachiller académico", updated.Titulo)
		s.Equal(a.EstudioID, updated.EstudioID)
		s.Equal(models.AnexoAcademico, updated.Tipo)

		got, err := s.service.GetAnexo(s.cliente(), a.ID)
		s.Require().NoError(err)
		s.Equal("Colegio", got.Entidad)
	})

	s.Run("invalid update keeps the stored record", func() {
		_, err := s.service.UpdateAnexo(s.analista(), a.ID, models.AnexoFields{Titulo: " "})
		s.assertCode(err, dErrors.CodeValidation)
		got, err := s.service.GetAnexo(s.admin(), a.ID)
		s.Require().NoError(err)
		s.Equal("Bachiller académico", got.Titulo)
	})

	s.Run("clients cannot delete", func() {
		s.assertCode(s.service.DeleteAnexo(s.cliente(), a.ID), dErrors.CodeForbidden)
	})

	s.Run("delete", func() {
		s.Require().NoError(s.service.DeleteAnexo(s.candidato(), a.ID))
		_, err := s.service.GetAnexo(s.admin(), a.ID)
		s.assertCode(err, dErrors.CodeNotFound)
		s.Contains(s.auditActions(), audit.ActionAnexoDeleted)
	})
}
