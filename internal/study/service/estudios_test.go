package service_test

import (
	"time"

	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

func (s *StudyServiceSuite) TestGetEstudioRedaction() {
	_, err := s.service.FlagFinding(s.analista(), s.seed.ItemIDs[0], 80, "reporte")
	s.Require().NoError(err)

	s.Run("cliente sees study score but not item scores", func() {
		v, err := s.service.GetEstudio(s.cliente(), s.seed.EstudioID)
		s.Require().NoError(err)
		s.Require().NotNil(v.ScoreCuantitativo)
		s.Equal(80.0, *v.ScoreCuantitativo)
		s.Require().NotNil(v.NivelCualitativo)
		s.Equal(models.NivelCritico, *v.NivelCualitativo)
		s.Len(v.Items, 4)
		for _, it := range v.Items {
			s.Nil(it.Puntaje)
		}
	})

	s.Run("candidato sees item scores but not the study score", func() {
		v, err := s.service.GetEstudio(s.candidato(), s.seed.EstudioID)
		s.Require().NoError(err)
		s.Nil(v.ScoreCuantitativo)
		s.Nil(v.NivelCualitativo)
		s.NotNil(v.Items[0].Puntaje)
	})

	s.Run("admin sees everything", func() {
		v, err := s.service.GetEstudio(s.admin(), s.seed.EstudioID)
		s.Require().NoError(err)
		s.NotNil(v.ScoreCuantitativo)
		s.NotNil(v.Items[0].Puntaje)
	})
}

func (s *StudyServiceSuite) TestListEstudios() {
	list, err := s.service.ListEstudios(s.cliente(), service.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(s.seed.EstudioID, list[0].ID)

	s.Run("estado filter", func() {
		list, err := s.service.ListEstudios(s.admin(), service.ListFilter{Estado: models.EstadoHallazgo})
		s.Require().NoError(err)
		s.Empty(list)

		_, err = s.service.FlagFinding(s.admin(), s.seed.ItemIDs[1], 1, "x")
		s.Require().NoError(err)
		list, err = s.service.ListEstudios(s.admin(), service.ListFilter{Estado: models.EstadoHallazgo})
		s.Require().NoError(err)
		s.Len(list, 1)
	})

	s.Run("invalid estado", func() {
		_, err := s.service.ListEstudios(s.admin(), service.ListFilter{Estado: "ARCHIVADO"})
		s.assertCode(err, dErrors.CodeValidation)
	})

	s.Run("date and cedula filters", func() {
		day := time.Date(s.now.Year(), s.now.Month(), s.now.Day(), 0, 0, 0, 0, time.UTC)
		list, err := s.service.ListEstudios(s.admin(), service.ListFilter{Desde: &day, Hasta: &day, Cedula: " 4567 "})
		s.Require().NoError(err)
		s.Len(list, 1)

		next := day.AddDate(0, 0, 1)
		list, err = s.service.ListEstudios(s.admin(), service.ListFilter{Desde: &next})
		s.Require().NoError(err)
		s.Empty(list)
	})

	s.Run("analista only sees assigned studies", func() {
		other := s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleAnalista})
		list, err := s.service.ListEstudios(other, service.ListFilter{})
		s.Require().NoError(err)
		s.Empty(list)
	})
}

func (s *StudyServiceSuite) TestSummary() {
	_, err := s.service.ValidateItem(s.analista(), s.seed.ItemIDs[0], 20, "")
	s.Require().NoError(err)
	_, err = s.service.FlagFinding(s.analista(), s.seed.ItemIDs[1], 10, "x")
	s.Require().NoError(err)

	sum, err := s.service.Summary(s.admin(), s.seed.EstudioID)
	s.Require().NoError(err)
	s.Equal(s.seed.EstudioID, sum.EstudioID)
	s.Equal(25.0, sum.Progreso)
	s.Require().NotNil(sum.Score)
	s.Equal(30.0, *sum.Score)
	s.Equal(models.Totales{Items: 4, Validados: 1, Hallazgos: 1}, sum.Totales)
	s.False(sum.Autorizacion.Firmada)

	redacted, err := s.service.Summary(s.candidato(), s.seed.EstudioID)
	s.Require().NoError(err)
	s.Nil(redacted.Score)
	s.Nil(redacted.Nivel)
	s.Equal(25.0, redacted.Progreso)
}
