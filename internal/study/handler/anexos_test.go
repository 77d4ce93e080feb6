package handler

import (
	"net/http"
	"time"

	"go.uber.org/mock/gomock"

	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/testutil"
)

func (s *StudyHandlerSuite) TestPerfil() {
	s.Run("get", func() {
		s.service.EXPECT().GetPerfil(gomock.Any()).Return(&models.Candidato{ID: id.NewCandidatoID(), Nombre: "Juan", Cedula: "123"}, nil)
		rr := testutil.DoRequest(s.router, s.do(testutil.NewRequest(s.T(), http.MethodGet, "/candidatos/me")))
		s.Equal(http.StatusOK, rr.Code)
		testutil.AssertJSONContains(s.T(), rr, "cedula", "123")
	})

	s.Run("patch forwards only the sent fields", func() {
		s.service.EXPECT().UpdatePerfil(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, p models.PerfilPatch) (*models.Candidato, error) {
				s.Require().NotNil(p.Direccion)
				s.Equal("Calle 1", *p.Direccion)
				s.Require().NotNil(p.FechaNacimiento)
				s.Equal(time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), *p.FechaNacimiento)
				s.Nil(p.Nombre)
				s.Nil(p.EstudiaActualmente)
				return &models.Candidato{Nombre: "Juan", Perfil: models.Perfil{Direccion: "Calle 1"}}, nil
			})
		rr := testutil.DoRequest(s.router, s.do(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/candidatos/me", map[string]any{
			"direccion":        "Calle 1",
			"fecha_nacimiento": "1990-01-02",
		})))
		s.Equal(http.StatusOK, rr.Code)
		testutil.AssertJSONContains(s.T(), rr, "direccion", "Calle 1")
	})

	s.Run("bad birth date never reaches the service", func() {
		rr := testutil.DoRequest(s.router, s.do(testutil.NewJSONRequest(s.T(), http.MethodPatch, "/candidatos/me", map[string]any{
			"fecha_nacimiento": "02/01/1990",
		})))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("no candidate record", func() {
		s.service.EXPECT().GetPerfil(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeNotFound, "No se encontró candidato asociado al usuario."))
		rr := testutil.DoRequest(s.router, s.do(testutil.NewRequest(s.T(), http.MethodGet, "/candidatos/me")))
		s.Equal(http.StatusNotFound, rr.Code)
	})
}

func (s *StudyHandlerSuite) TestCreateAnexo() {
	estudioID := id.NewEstudioID()

	s.Run("body maps onto the input", func() {
		s.service.EXPECT().CreateAnexo(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in service.AnexoInput) (*models.Anexo, error) {
				s.Require().NotNil(in.EstudioID)
				s.Equal(estudioID, *in.EstudioID)
				s.Equal("laboral", in.Tipo)
				s.Equal("Analista", in.Fields.Titulo)
				s.Require().NotNil(in.Fields.Desde)
				s.Nil(in.Fields.Hasta)
				return &models.Anexo{ID: id.NewAnexoID(), EstudioID: estudioID, Tipo: models.AnexoLaboral}, nil
			})
		rr := testutil.DoRequest(s.router, s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/anexos", map[string]any{
			"estudio_id": estudioID.String(),
			"tipo":       "laboral",
			"titulo":     "Analista",
			"desde":      "2020-02-01",
		})))
		s.Equal(http.StatusCreated, rr.Code)
		testutil.AssertJSONContains(s.T(), rr, "tipo", "LABORAL")
	})

	s.Run("study from the query string", func() {
		s.service.EXPECT().CreateAnexo(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in service.AnexoInput) (*models.Anexo, error) {
				s.Require().NotNil(in.EstudioID)
				s.Equal(estudioID, *in.EstudioID)
				return &models.Anexo{ID: id.NewAnexoID(), EstudioID: estudioID}, nil
			})
		rr := testutil.DoRequest(s.router, s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/anexos?estudio_id="+estudioID.String(), map[string]any{
			"tipo":   "ACADEMICO",
			"titulo": "Bachiller",
		})))
		s.Equal(http.StatusCreated, rr.Code)
	})

	s.Run("candidates may omit the study", func() {
		s.service.EXPECT().CreateAnexo(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in service.AnexoInput) (*models.Anexo, error) {
				s.Nil(in.EstudioID)
				return &models.Anexo{ID: id.NewAnexoID(), EstudioID: estudioID}, nil
			})
		rr := testutil.DoRequest(s.router, s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/anexos", map[string]any{
			"tipo":   "ACADEMICO",
			"titulo": "Bachiller",
		})))
		s.Equal(http.StatusCreated, rr.Code)
	})

	s.Run("missing titulo never reaches the service", func() {
		rr := testutil.DoRequest(s.router, s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/anexos", map[string]any{
			"tipo": "ACADEMICO",
		})))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("malformed estudio_id", func() {
		rr := testutil.DoRequest(s.router, s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/anexos", map[string]any{
			"estudio_id": "nope",
			"tipo":       "ACADEMICO",
			"titulo":     "x",
		})))
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *StudyHandlerSuite) TestAnexoRoutes() {
	estudioID := id.NewEstudioID()
	anexoID := id.NewAnexoID()

	s.Run("list passes the tipo filter", func() {
		s.service.EXPECT().ListAnexos(gomock.Any(), estudioID, "ACADEMICO").
			Return([]models.Anexo{{ID: anexoID, EstudioID: estudioID, Tipo: models.AnexoAcademico}}, nil)
		rr := testutil.DoRequest(s.router, s.do(testutil.NewRequest(s.T(), http.MethodGet, "/estudios/"+estudioID.String()+"/anexos?tipo=ACADEMICO")))
		s.Equal(http.StatusOK, rr.Code)
		s.Contains(rr.Body.String(), anexoID.String())
	})

	s.Run("get", func() {
		s.service.EXPECT().GetAnexo(gomock.Any(), anexoID).Return(nil, dErrors.New(dErrors.CodeNotFound, "Anexo no encontrado."))
		rr := testutil.DoRequest(s.router, s.do(testutil.NewRequest(s.T(), http.MethodGet, "/anexos/"+anexoID.String())))
		s.Equal(http.StatusNotFound, rr.Code)
	})

	s.Run("put replaces the content", func() {
		s.service.EXPECT().UpdateAnexo(gomock.Any(), anexoID, gomock.Any()).
			DoAndReturn(func(_ any, _ id.AnexoID, f models.AnexoFields) (*models.Anexo, error) {
				s.Equal("Maestría", f.Titulo)
				s.Equal("UNAL", f.Entidad)
				return &models.Anexo{ID: anexoID, AnexoFields: f}, nil
			})
		rr := testutil.DoRequest(s.router, s.do(testutil.NewJSONRequest(s.T(), http.MethodPut, "/anexos/"+anexoID.String(), map[string]any{
			"titulo":  "Maestría",
			"entidad": "UNAL",
		})))
		s.Equal(http.StatusOK, rr.Code)
		testutil.AssertJSONContains(s.T(), rr, "titulo", "Maestría")
	})

	s.Run("delete", func() {
		s.service.EXPECT().DeleteAnexo(gomock.Any(), anexoID).Return(nil)
		rr := testutil.DoRequest(s.router, s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/anexos/"+anexoID.String())))
		s.Equal(http.StatusNoContent, rr.Code)
		s.Empty(rr.Body.String())
	})

	s.Run("malformed id", func() {
		rr := testutil.DoRequest(s.router, s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/anexos/abc")))
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}
