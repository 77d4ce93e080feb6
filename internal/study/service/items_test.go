package service_test

import (
	"context"
	"math"
	"sync"

	"estudios/internal/audit"
	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

func (s *StudyServiceSuite) TestValidateItem() {
	s.Run("analista validates and the study is recomputed", func() {
		v, err := s.service.ValidateItem(s.analista(), s.seed.ItemIDs[0], 12.5, "sin reportes")
		s.Require().NoError(err)
		s.Equal(models.EstadoValidado, v.Estado)
		s.Require().NotNil(v.Puntaje)
		s.Equal(12.5, *v.Puntaje)

		e := s.estudio()
		s.Equal(25.0, e.Progreso)
		s.Equal(12.5, e.ScoreCuantitativo)
		s.Equal(models.NivelBajo, e.NivelCualitativo)
		s.Equal(int64(2), e.Version)
		s.Contains(s.auditActions(), audit.ActionItemValidated)
	})

	s.Run("validation emails the candidate and the company contact", func() {
		sent := s.notifier.sent()
		s.Require().NotEmpty(sent)
		last := sent[len(sent)-1]
		s.ElementsMatch([]string{"juan@demo.com", "cliente@acme.com"}, last.to)
		s.Contains(last.body, "25.0%")
	})

	s.Run("negative and non-finite scores are rejected before any write", func() {
		before := s.estudio().Version
		for _, score := range []float64{-1, math.NaN(), math.Inf(1)} {
			_, err := s.service.ValidateItem(s.analista(), s.seed.ItemIDs[1], score, "")
			s.assertCode(err, dErrors.CodeValidation)
		}
		s.Equal(models.EstadoPendiente, s.item(1).Estado)
		s.Equal(before, s.estudio().Version)
	})

	s.Run("cliente and candidato are forbidden", func() {
		_, err := s.service.ValidateItem(s.cliente(), s.seed.ItemIDs[1], 1, "")
		s.assertCode(err, dErrors.CodeForbidden)
		_, err = s.service.ValidateItem(s.candidato(), s.seed.ItemIDs[1], 1, "")
		s.assertCode(err, dErrors.CodeForbidden)
	})

	s.Run("unknown item", func() {
		_, err := s.service.ValidateItem(s.admin(), id.NewItemID(), 1, "")
		s.assertCode(err, dErrors.CodeNotFound)
	})

	s.Run("analista outside the assignment gets not found", func() {
		other := s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleAnalista, Email: "otro@demo.com"})
		_, err := s.service.ValidateItem(other, s.seed.ItemIDs[1], 1, "")
		s.assertCode(err, dErrors.CodeNotFound)
	})
}

func (s *StudyServiceSuite) TestFlagFinding() {
	v, err := s.service.FlagFinding(s.admin(), s.seed.ItemIDs[2], 60, "reporte en listas")
	s.Require().NoError(err)
	s.Equal(models.EstadoHallazgo, v.Estado)
	s.Equal("reporte en listas", v.Comentario)

	e := s.estudio()
	s.Equal(0.0, e.Progreso, "HALLAZGO does not count as done")
	s.Equal(60.0, e.ScoreCuantitativo)
	s.Equal(models.NivelAlto, e.NivelCualitativo)
	s.Contains(s.auditActions(), audit.ActionItemFinding)
	s.Empty(s.notifier.sent(), "findings do not notify")
}

func (s *StudyServiceSuite) TestAggregationScenario() {
	ctx := context.Background()
	set := func(i int, estado models.ItemEstado, puntaje float64) {
		it := s.item(i)
		it.Estado, it.Puntaje = estado, puntaje
		s.Require().NoError(s.mem.UpdateItem(ctx, it))
	}
	set(1, models.EstadoHallazgo, 5)
	set(2, models.EstadoPendiente, 0)
	set(3, models.EstadoCerrado, 20)

	_, err := s.service.ValidateItem(s.analista(), s.seed.ItemIDs[0], 10, "")
	s.Require().NoError(err)

	e := s.estudio()
	s.Equal(50.0, e.Progreso)
	s.Equal(35.0, e.ScoreCuantitativo)
	s.Equal(models.NivelMedio, e.NivelCualitativo)

	s.Run("recompute is idempotent", func() {
		_, err := s.service.ValidateItem(s.analista(), s.seed.ItemIDs[0], 10, "")
		s.Require().NoError(err)
		again := s.estudio()
		s.Equal(e.Progreso, again.Progreso)
		s.Equal(e.ScoreCuantitativo, again.ScoreCuantitativo)
		s.Equal(e.NivelCualitativo, again.NivelCualitativo)
		s.Equal(e.Version+1, again.Version)
	})
}

func (s *StudyServiceSuite) TestBulkUpdate() {
	s.Run("unknown ids are skipped and the study is recomputed once", func() {
		before := s.estudio().Version
		updated, err := s.service.BulkUpdate(s.analista(), s.seed.EstudioID, []service.ItemUpdate{
			{ID: s.seed.ItemIDs[0], Estado: models.EstadoValidado, Puntaje: 10},
			{ID: id.NewItemID(), Estado: models.EstadoValidado, Puntaje: 99},
		})
		s.Require().NoError(err)
		s.Equal(1, updated)

		e := s.estudio()
		s.Equal(before+1, e.Version)
		s.Equal(25.0, e.Progreso)
		s.Equal(10.0, e.ScoreCuantitativo)
	})

	s.Run("HALLAZGO flags and anything else validates", func() {
		s.notifier.emails = nil
		updated, err := s.service.BulkUpdate(s.admin(), s.seed.EstudioID, []service.ItemUpdate{
			{ID: s.seed.ItemIDs[1], Estado: models.EstadoHallazgo, Puntaje: 30, Comentario: "antecedente"},
			{ID: s.seed.ItemIDs[2], Estado: models.EstadoCerrado, Puntaje: 5, Comentario: "ok"},
		})
		s.Require().NoError(err)
		s.Equal(2, updated)

		s.Equal(models.EstadoHallazgo, s.item(1).Estado)
		s.Equal("antecedente", s.item(1).Comentario)
		s.Equal(models.EstadoValidado, s.item(2).Estado)
		s.Equal("ok", s.item(2).Comentario)
		s.Len(s.notifier.sent(), 1, "one summary email per bulk update")
	})

	s.Run("an invalid score rejects the whole batch", func() {
		before := s.estudio().Version
		_, err := s.service.BulkUpdate(s.admin(), s.seed.EstudioID, []service.ItemUpdate{
			{ID: s.seed.ItemIDs[3], Estado: models.EstadoValidado, Puntaje: 5},
			{ID: s.seed.ItemIDs[3], Estado: models.EstadoValidado, Puntaje: -5},
		})
		s.assertCode(err, dErrors.CodeValidation)
		s.Equal(models.EstadoPendiente, s.item(3).Estado)
		s.Equal(before, s.estudio().Version)
	})

	s.Run("unknown study", func() {
		_, err := s.service.BulkUpdate(s.admin(), id.NewEstudioID(), []service.ItemUpdate{
			{ID: s.seed.ItemIDs[3], Puntaje: 1},
		})
		s.assertCode(err, dErrors.CodeNotFound)
	})

	s.Contains(s.auditActions(), audit.ActionItemsBulkUpdated)
}

func (s *StudyServiceSuite) TestAddItem() {
	v, err := s.service.AddItem(s.analista(), s.seed.EstudioID, "")
	s.Require().NoError(err)
	s.Equal(models.ItemListasRestrictivas, v.Tipo)
	s.Equal(models.EstadoPendiente, v.Estado)

	_, err = s.service.ValidateItem(s.analista(), s.seed.ItemIDs[0], 1, "")
	s.Require().NoError(err)
	s.Equal(20.0, s.estudio().Progreso, "one of five items done")

	_, err = s.service.AddItem(s.analista(), s.seed.EstudioID, "POLIGRAFO")
	s.assertCode(err, dErrors.CodeValidation)

	_, err = s.service.AddItem(s.cliente(), s.seed.EstudioID, "")
	s.assertCode(err, dErrors.CodeForbidden)
}

func (s *StudyServiceSuite) TestGetItemRedaction() {
	_, err := s.service.ValidateItem(s.analista(), s.seed.ItemIDs[0], 40, "")
	s.Require().NoError(err)

	v, err := s.service.GetItem(s.cliente(), s.seed.ItemIDs[0])
	s.Require().NoError(err)
	s.Nil(v.Puntaje)

	v, err = s.service.GetItem(s.candidato(), s.seed.ItemIDs[0])
	s.Require().NoError(err)
	s.Require().NotNil(v.Puntaje)
	s.Equal(40.0, *v.Puntaje)

	otherEmpresa := id.NewEmpresaID()
	_, err = s.service.GetItem(s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleCliente, EmpresaID: &otherEmpresa}), s.seed.ItemIDs[0])
	s.assertCode(err, dErrors.CodeNotFound)
}

func (s *StudyServiceSuite) TestConcurrentMutationsAreSerialized() {
	const rounds = 20
	var wg sync.WaitGroup
	errs := make(chan error, rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.service.ValidateItem(s.analista(), s.seed.ItemIDs[i%len(s.seed.ItemIDs)], 1, "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	e := s.estudio()
	s.Equal(int64(1+rounds), e.Version)
	s.Equal(100.0, e.Progreso)
	s.Equal(4.0, e.ScoreCuantitativo)
}
