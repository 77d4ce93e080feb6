package store

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	"estudios/pkg/platform/sentinel"
)

// contractSuite exercises the behavior every store adapter must share.
// Concrete suites set stores in SetupTest.
type contractSuite struct {
	suite.Suite
	ctx    context.Context
	stores service.Stores
	now    time.Time
}

type fixture struct {
	empresa   *models.Empresa
	analista  *models.User
	candidato *models.Candidato
	solicitud *models.Solicitud
	estudio   *models.Estudio
}

func (s *contractSuite) newFixture(cedula, email string, createdAt time.Time) fixture {
	f := fixture{}
	f.empresa = &models.Empresa{ID: id.NewEmpresaID(), Nombre: "Empresa " + cedula, NIT: "nit-" + cedula, EmailContacto: "rrhh-" + cedula + "@demo.com", CreatedAt: createdAt}
	s.Require().NoError(s.stores.Directory.CreateEmpresa(s.ctx, f.empresa))

	empresaID := f.empresa.ID
	f.analista = &models.User{ID: id.NewUserID(), Email: "analista-" + cedula + "@demo.com", Role: id.RoleAnalista, EmpresaID: &empresaID, Active: true, CreatedAt: createdAt}
	s.Require().NoError(s.stores.Directory.CreateUser(s.ctx, f.analista))

	f.candidato = &models.Candidato{ID: id.NewCandidatoID(), Nombre: "Cand", Cedula: cedula, Email: email, CreatedAt: createdAt, UpdatedAt: createdAt}
	s.Require().NoError(s.stores.Directory.CreateCandidato(s.ctx, f.candidato))

	analistaID := f.analista.ID
	f.solicitud = &models.Solicitud{ID: id.NewSolicitudID(), EmpresaID: f.empresa.ID, CandidatoID: f.candidato.ID, AnalistaID: &analistaID, Estado: models.SolicitudPendienteInvitacion, CreatedAt: createdAt, UpdatedAt: createdAt}
	s.Require().NoError(s.stores.Solicitudes.CreateSolicitud(s.ctx, f.solicitud))

	f.estudio = models.NewEstudio(id.NewEstudioID(), f.solicitud.ID, createdAt)
	s.Require().NoError(s.stores.Estudios.CreateEstudio(s.ctx, f.estudio))
	return f
}

func (s *contractSuite) addItem(estudioID id.EstudioID, tipo models.ItemTipo, at time.Time) *models.Item {
	it, err := models.NewItem(id.NewItemID(), estudioID, tipo, at)
	s.Require().NoError(err)
	s.Require().NoError(s.stores.Items.CreateItem(s.ctx, it))
	return it
}

func (s *contractSuite) TestDirectory() {
	f := s.newFixture("100", "ana@demo.com", s.now)

	s.Run("user lookup by email ignores case", func() {
		u, err := s.stores.Directory.FindUserByEmail(s.ctx, "ANALISTA-100@demo.com")
		s.Require().NoError(err)
		s.Equal(f.analista.ID, u.ID)
		s.Require().NotNil(u.EmpresaID)
		s.Equal(f.empresa.ID, *u.EmpresaID)
	})

	s.Run("duplicate email is a conflict", func() {
		dup := &models.User{ID: id.NewUserID(), Email: "Analista-100@demo.com", Role: id.RoleAdmin, Active: true, CreatedAt: s.now}
		s.ErrorIs(s.stores.Directory.CreateUser(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("duplicate cedula is a conflict", func() {
		dup := &models.Candidato{ID: id.NewCandidatoID(), Nombre: "Otro", Cedula: "100", CreatedAt: s.now, UpdatedAt: s.now}
		s.ErrorIs(s.stores.Directory.CreateCandidato(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("candidato by cedula", func() {
		c, err := s.stores.Directory.FindCandidatoByCedula(s.ctx, "100")
		s.Require().NoError(err)
		s.Equal(f.candidato.ID, c.ID)

		_, err = s.stores.Directory.FindCandidatoByCedula(s.ctx, "999")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("first active analista prefers the oldest and honors the company", func() {
		older := &models.User{ID: id.NewUserID(), Email: "viejo@demo.com", Role: id.RoleAnalista, Active: true, CreatedAt: s.now.Add(-time.Hour)}
		inactive := &models.User{ID: id.NewUserID(), Email: "inactivo@demo.com", Role: id.RoleAnalista, Active: false, CreatedAt: s.now.Add(-2 * time.Hour)}
		s.Require().NoError(s.stores.Directory.CreateUser(s.ctx, older))
		s.Require().NoError(s.stores.Directory.CreateUser(s.ctx, inactive))

		empresaID := f.empresa.ID
		u, err := s.stores.Directory.FirstActiveAnalista(s.ctx, &empresaID)
		s.Require().NoError(err)
		s.Equal(f.analista.ID, u.ID)

		u, err = s.stores.Directory.FirstActiveAnalista(s.ctx, nil)
		s.Require().NoError(err)
		s.Equal(older.ID, u.ID)

		other := id.NewEmpresaID()
		_, err = s.stores.Directory.FirstActiveAnalista(s.ctx, &other)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestOwnershipAndScope() {
	f := s.newFixture("200", "Juan@Demo.com", s.now)

	e, err := s.stores.Estudios.FindEstudio(s.ctx, f.estudio.ID)
	s.Require().NoError(err)
	s.Equal(f.empresa.ID, e.Ownership.EmpresaID)
	s.Require().NotNil(e.Ownership.AnalistaID)
	s.Equal(f.analista.ID, *e.Ownership.AnalistaID)
	s.Equal("200", e.Ownership.CandidatoCedula)
	s.True(e.Ownership.SolicitudCreatedAt.Equal(s.now))

	bySol, err := s.stores.Estudios.FindEstudioBySolicitud(s.ctx, f.solicitud.ID)
	s.Require().NoError(err)
	s.Equal(f.estudio.ID, bySol.ID)

	candScope := models.RowScope{Kind: models.ScopeCandidato, CandidatoEmail: "juan@demo.com"}
	sols, err := s.stores.Solicitudes.ListSolicitudes(s.ctx, candScope)
	s.Require().NoError(err)
	s.Require().Len(sols, 1)
	s.Equal(f.solicitud.ID, sols[0].ID)

	sols, err = s.stores.Solicitudes.ListSolicitudes(s.ctx, models.RowScope{Kind: models.ScopeEmpresa, EmpresaID: id.NewEmpresaID()})
	s.Require().NoError(err)
	s.Empty(sols)

	sols, err = s.stores.Solicitudes.ListSolicitudes(s.ctx, models.RowScope{Kind: models.ScopeNone})
	s.Require().NoError(err)
	s.Empty(sols)
}

func (s *contractSuite) TestListEstudiosFilters() {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	a := s.newFixture("1111", "a@demo.com", day(1).Add(10*time.Hour))
	b := s.newFixture("2222", "b@demo.com", day(5).Add(23*time.Hour))
	c := s.newFixture("3311", "c@demo.com", day(9))

	it := s.addItem(b.estudio.ID, models.ItemListasRestrictivas, s.now)
	s.Require().NoError(it.FlagFinding(10, "reporte", s.now))
	s.Require().NoError(s.stores.Items.UpdateItem(s.ctx, it))

	all := models.RowScope{Kind: models.ScopeAll}
	ids := func(f models.EstudioFilter) []id.EstudioID {
		out, err := s.stores.Estudios.ListEstudios(s.ctx, f)
		s.Require().NoError(err)
		got := make([]id.EstudioID, 0, len(out))
		for _, e := range out {
			got = append(got, e.ID)
		}
		return got
	}

	s.Equal([]id.EstudioID{c.estudio.ID, b.estudio.ID, a.estudio.ID}, ids(models.EstudioFilter{Scope: all}), "newest solicitud first")
	s.Equal([]id.EstudioID{b.estudio.ID}, ids(models.EstudioFilter{Scope: all, Estado: models.EstadoHallazgo}))

	desde, hasta := day(5), day(5)
	s.Equal([]id.EstudioID{b.estudio.ID}, ids(models.EstudioFilter{Scope: all, Desde: &desde, Hasta: &hasta}), "hasta is inclusive by day")
	s.Equal([]id.EstudioID{c.estudio.ID, a.estudio.ID}, ids(models.EstudioFilter{Scope: all, Cedula: "11"}))
	s.Equal([]id.EstudioID{a.estudio.ID}, ids(models.EstudioFilter{Scope: models.RowScope{Kind: models.ScopeAnalista, AnalistaID: a.analista.ID}}))
	s.Empty(ids(models.EstudioFilter{Scope: models.RowScope{Kind: models.ScopeNone}}))
}

func (s *contractSuite) TestUpdateEstudioVersionCheck() {
	f := s.newFixture("300", "v@demo.com", s.now)

	e, err := s.stores.Estudios.FindEstudioForUpdate(s.ctx, f.estudio.ID)
	s.Require().NoError(err)
	e.ApplyDerived(models.Derived{Progreso: 50, Score: 30, Nivel: models.NivelMedio}, s.now)
	s.Require().NoError(s.stores.Estudios.UpdateEstudio(s.ctx, e))

	stored, err := s.stores.Estudios.FindEstudio(s.ctx, f.estudio.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), stored.Version)
	s.Equal(50.0, stored.Progreso)
	s.Equal(models.NivelMedio, stored.NivelCualitativo)

	stale := *f.estudio
	stale.ApplyDerived(models.Derived{Progreso: 100}, s.now)
	s.ErrorIs(s.stores.Estudios.UpdateEstudio(s.ctx, &stale), sentinel.ErrConflict)

	missing := models.NewEstudio(id.NewEstudioID(), f.solicitud.ID, s.now)
	missing.Version = 2
	s.ErrorIs(s.stores.Estudios.UpdateEstudio(s.ctx, missing), sentinel.ErrNotFound)

	s.ErrorIs(s.stores.Estudios.CreateEstudio(s.ctx, models.NewEstudio(id.NewEstudioID(), f.solicitud.ID, s.now)), sentinel.ErrConflict,
		"one estudio per solicitud")
}

func (s *contractSuite) TestItems() {
	f := s.newFixture("400", "i@demo.com", s.now)
	other := s.newFixture("401", "j@demo.com", s.now)

	first := s.addItem(f.estudio.ID, models.ItemVisitaDomiciliaria, s.now)
	second := s.addItem(f.estudio.ID, models.ItemListasRestrictivas, s.now.Add(time.Second))
	foreign := s.addItem(other.estudio.ID, models.ItemCertLaborales, s.now)

	items, err := s.stores.Items.ListItems(s.ctx, f.estudio.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(first.ID, items[0].ID)
	s.Equal(second.ID, items[1].ID)

	found, err := s.stores.Items.FindItemsByIDs(s.ctx, f.estudio.ID, []id.ItemID{second.ID, foreign.ID, id.NewItemID()})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(second.ID, found[0].ID)

	s.Require().NoError(first.Validate(12.5, "ok", s.now))
	s.Require().NoError(s.stores.Items.UpdateItem(s.ctx, first))
	got, err := s.stores.Items.FindItem(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(models.EstadoValidado, got.Estado)
	s.Equal(12.5, got.Puntaje)
	s.Equal("ok", got.Comentario)

	ghost := *first
	ghost.ID = id.NewItemID()
	s.ErrorIs(s.stores.Items.UpdateItem(s.ctx, &ghost), sentinel.ErrNotFound)
}

func (s *contractSuite) TestConsents() {
	f := s.newFixture("500", "k@demo.com", s.now)
	for _, tipo := range []models.ConsentTipo{models.ConsentAcademico, models.ConsentGeneral, models.ConsentCentrales} {
		s.Require().NoError(s.stores.Consents.CreateConsent(s.ctx, models.NewConsent(id.NewConsentID(), f.estudio.ID, tipo, s.now)))
	}
	s.ErrorIs(s.stores.Consents.CreateConsent(s.ctx, models.NewConsent(id.NewConsentID(), f.estudio.ID, models.ConsentGeneral, s.now)), sentinel.ErrConflict)

	list, err := s.stores.Consents.ListConsents(s.ctx, f.estudio.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(models.ConsentCatalog(), []models.ConsentTipo{list[0].Tipo, list[1].Tipo, list[2].Tipo})

	c, err := s.stores.Consents.FindConsent(s.ctx, f.estudio.ID, models.ConsentCentrales)
	s.Require().NoError(err)
	s.Require().NoError(c.Accept([]byte{0x89, 'P', 'N', 'G'}, s.now, "10.0.0.1", "Mozilla/5.0"))
	s.Require().NoError(s.stores.Consents.UpdateConsent(s.ctx, c))

	got, err := s.stores.Consents.FindConsent(s.ctx, f.estudio.ID, models.ConsentCentrales)
	s.Require().NoError(err)
	s.True(got.Aceptado)
	s.Require().NotNil(got.FirmadoAt)
	s.Equal([]byte{0x89, 'P', 'N', 'G'}, got.Firma)
	s.Equal("10.0.0.1", got.IP)

	got.Revoke(s.now, "10.0.0.2", "curl")
	s.Require().NoError(s.stores.Consents.UpdateConsent(s.ctx, got))
	again, err := s.stores.Consents.FindConsent(s.ctx, f.estudio.ID, models.ConsentCentrales)
	s.Require().NoError(err)
	s.False(again.Aceptado)
	s.Nil(again.FirmadoAt)
	s.Empty(again.Firma)
	s.Equal("curl", again.UserAgent)

	_, err = s.stores.Consents.FindConsent(s.ctx, id.NewEstudioID(), models.ConsentGeneral)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestCandidatoProfile() {
	older := s.newFixture("600", "maria@demo.com", s.now.Add(-time.Hour))
	newer := s.newFixture("601", "Maria@Demo.com", s.now)

	s.Run("email lookup ignores case and prefers the newest", func() {
		c, err := s.stores.Directory.FindCandidatoByEmail(s.ctx, " MARIA@demo.com ")
		s.Require().NoError(err)
		s.Equal(newer.candidato.ID, c.ID)

		_, err = s.stores.Directory.FindCandidatoByEmail(s.ctx, "nadie@demo.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.stores.Directory.FindCandidatoByEmail(s.ctx, "")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("profile update round trips", func() {
		c, err := s.stores.Directory.FindCandidato(s.ctx, older.candidato.ID)
		s.Require().NoError(err)
		born := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
		doc, eps := "cc", "Sura"
		s.Require().NoError(c.ApplyPerfil(models.PerfilPatch{TipoDocumento: &doc, FechaNacimiento: &born, EPS: &eps}, s.now))
		s.Require().NoError(s.stores.Directory.UpdateCandidato(s.ctx, c))

		got, err := s.stores.Directory.FindCandidato(s.ctx, older.candidato.ID)
		s.Require().NoError(err)
		s.Equal(models.DocCedula, got.TipoDocumento)
		s.Equal("Sura", got.EPS)
		s.Require().NotNil(got.FechaNacimiento)
		s.True(got.FechaNacimiento.Equal(born))
		s.Equal("600", got.Cedula)
	})

	s.Run("updating an unknown candidate is not found", func() {
		ghost := &models.Candidato{ID: id.NewCandidatoID(), Nombre: "X", Cedula: "x", CreatedAt: s.now, UpdatedAt: s.now}
		s.ErrorIs(s.stores.Directory.UpdateCandidato(s.ctx, ghost), sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestAnexos() {
	f := s.newFixture("650", "anexos@demo.com", s.now)
	desde := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC)

	titulo, err := models.NewAnexo(id.NewAnexoID(), f.estudio.ID, f.candidato.ID, models.AnexoAcademico,
		models.AnexoFields{Titulo: "Ingeniería", Entidad: "UNAL", Desde: &desde, Hasta: &hasta}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.stores.Anexos.CreateAnexo(s.ctx, titulo))
	empleo, err := models.NewAnexo(id.NewAnexoID(), f.estudio.ID, f.candidato.ID, models.AnexoLaboral,
		models.AnexoFields{Titulo: "Analista", Entidad: "ACME"}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.stores.Anexos.CreateAnexo(s.ctx, empleo))

	s.Run("list keeps creation order and filters by tipo", func() {
		all, err := s.stores.Anexos.ListAnexos(s.ctx, f.estudio.ID, "")
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal(titulo.ID, all[0].ID)
		s.Equal(empleo.ID, all[1].ID)

		laborales, err := s.stores.Anexos.ListAnexos(s.ctx, f.estudio.ID, models.AnexoLaboral)
		s.Require().NoError(err)
		s.Require().Len(laborales, 1)
		s.Equal(empleo.ID, laborales[0].ID)

		none, err := s.stores.Anexos.ListAnexos(s.ctx, id.NewEstudioID(), "")
		s.Require().NoError(err)
		s.Empty(none)
	})

	s.Run("update and find", func() {
		s.Require().NoError(titulo.Replace(models.AnexoFields{Titulo: "Maestría", Entidad: "UNAL", Desde: &desde}, s.now.Add(time.Minute)))
		s.Require().NoError(s.stores.Anexos.UpdateAnexo(s.ctx, titulo))

		got, err := s.stores.Anexos.FindAnexo(s.ctx, titulo.ID)
		s.Require().NoError(err)
		s.Equal("Maestría", got.Titulo)
		s.Equal(f.candidato.ID, got.CandidatoID)
		s.Require().NotNil(got.Desde)
		s.True(got.Desde.Equal(desde))
		s.Nil(got.Hasta)
	})

	s.Run("delete", func() {
		s.Require().NoError(s.stores.Anexos.DeleteAnexo(s.ctx, empleo.ID))
		_, err := s.stores.Anexos.FindAnexo(s.ctx, empleo.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(s.stores.Anexos.DeleteAnexo(s.ctx, empleo.ID), sentinel.ErrNotFound)
		s.ErrorIs(s.stores.Anexos.UpdateAnexo(s.ctx, empleo), sentinel.ErrNotFound)
	})
}
