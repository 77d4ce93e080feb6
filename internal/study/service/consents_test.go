package service_test

import (
	"context"

	"estudios/internal/audit"
	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/requestcontext"
)

var firma = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}

func (s *StudyServiceSuite) accept(tipo models.ConsentTipo) *service.ConsentResult {
	res, err := s.service.RecordConsent(s.candidato(), s.seed.EstudioID, service.ConsentDecision{Tipo: string(tipo), Acepta: true, Firma: firma})
	s.Require().NoError(err)
	return res
}

func (s *StudyServiceSuite) TestConsentAuthorizationRequiresEveryTipo() {
	res := s.accept(models.ConsentGeneral)
	s.True(res.Consent.Aceptado)
	s.True(res.Consent.HasSignature)
	s.False(res.AutorizacionFirmada)

	s.accept(models.ConsentCentrales)
	res = s.accept(models.ConsentAcademico)
	s.True(res.AutorizacionFirmada)
	s.Require().NotNil(res.AutorizacionFecha)
	s.True(res.AutorizacionFecha.Equal(s.now))

	e := s.estudio()
	s.True(e.AutorizacionFirmada)
	s.Contains(s.auditActions(), audit.ActionAuthorizationChanged)

	s.Run("revoking one clears the authorization", func() {
		res, err := s.service.RecordConsent(s.candidato(), s.seed.EstudioID, service.ConsentDecision{Tipo: "centrales", Acepta: false})
		s.Require().NoError(err)
		s.False(res.Consent.Aceptado)
		s.Nil(res.Consent.FirmadoAt)
		s.False(res.Consent.HasSignature)
		s.False(res.AutorizacionFirmada)
		s.Nil(res.AutorizacionFecha)
		s.Contains(s.auditActions(), audit.ActionConsentRevoked)
	})
}

func (s *StudyServiceSuite) TestConsentWithoutSignatureIsRejected() {
	before := s.estudio()
	_, err := s.service.RecordConsent(s.candidato(), s.seed.EstudioID, service.ConsentDecision{Tipo: "GENERAL", Acepta: true})
	s.assertCode(err, dErrors.CodeValidation)

	c, err := s.mem.FindConsent(context.Background(), s.seed.EstudioID, models.ConsentGeneral)
	s.Require().NoError(err)
	s.False(c.Aceptado)
	s.Nil(c.FirmadoAt)
	s.Empty(c.IP)
	s.Equal(before.Version, s.estudio().Version)
	s.Empty(s.auditActions())
}

func (s *StudyServiceSuite) TestConsentRecordsClientMetadata() {
	ctx := requestcontext.WithClientMetadata(s.candidato(), "203.0.113.7", "Mozilla/5.0 (X11; Linux x86_64) Firefox/120.0")
	_, err := s.service.RecordConsent(ctx, s.seed.EstudioID, service.ConsentDecision{Tipo: "GENERAL", Acepta: false})
	s.Require().NoError(err)

	c, err := s.mem.FindConsent(context.Background(), s.seed.EstudioID, models.ConsentGeneral)
	s.Require().NoError(err)
	s.Equal("203.0.113.7", c.IP)
	s.Contains(c.UserAgent, "Firefox")

	_, err = s.service.RecordConsent(ctx, s.seed.EstudioID, service.ConsentDecision{Tipo: "GENERAL", Acepta: true, Firma: firma, UserAgent: "EstudiosApp/2.1"})
	s.Require().NoError(err)
	c, err = s.mem.FindConsent(context.Background(), s.seed.EstudioID, models.ConsentGeneral)
	s.Require().NoError(err)
	s.Equal("EstudiosApp/2.1", c.UserAgent, "explicit user agent wins over the header")
}

func (s *StudyServiceSuite) TestConsentAccessRules() {
	decision := service.ConsentDecision{Tipo: "GENERAL", Acepta: true, Firma: firma}

	s.Run("only candidates record consent", func() {
		_, err := s.service.RecordConsent(s.admin(), s.seed.EstudioID, decision)
		s.assertCode(err, dErrors.CodeForbidden)
	})

	s.Run("another candidate cannot see the study", func() {
		other := s.ctxAs(id.Caller{UserID: id.NewUserID(), Role: id.RoleCandidato, Email: "maria@demo.com"})
		_, err := s.service.RecordConsent(other, s.seed.EstudioID, decision)
		s.assertCode(err, dErrors.CodeNotFound)

		views, err := s.service.ListConsents(s.candidato(), s.seed.EstudioID)
		s.Require().NoError(err)
		for _, v := range views {
			s.False(v.Aceptado, "%s must stay untouched", v.Tipo)
		}
	})

	s.Run("unknown tipo", func() {
		_, err := s.service.RecordConsent(s.candidato(), s.seed.EstudioID, service.ConsentDecision{Tipo: "BIOMETRICO", Acepta: false})
		s.assertCode(err, dErrors.CodeValidation)
	})

	s.Run("unknown study", func() {
		_, err := s.service.RecordConsent(s.candidato(), id.NewEstudioID(), decision)
		s.assertCode(err, dErrors.CodeNotFound)
	})
}

func (s *StudyServiceSuite) TestListConsents() {
	s.accept(models.ConsentCentrales)

	list, err := s.service.ListConsents(s.cliente(), s.seed.EstudioID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(models.ConsentGeneral, list[0].Tipo)
	s.Equal(models.ConsentCentrales, list[1].Tipo)
	s.True(list[1].Aceptado)
	s.True(list[1].HasSignature)
	s.NotEmpty(list[1].Label)
	s.False(list[2].Aceptado)
}
