package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel/attribute"

	"estudios/internal/access"
	"estudios/internal/audit"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/requestcontext"
)

// ConsentDecision is a candidate's answer for one consent tipo. UserAgent
// overrides the request header when the client reports it explicitly.
type ConsentDecision struct {
	Tipo      string
	Acepta    bool
	Firma     []byte
	UserAgent string
}

// ConsentResult is the ledger entry after the decision plus the derived
// study authorization.
type ConsentResult struct {
	Consent             access.ConsentView `json:"consentimiento"`
	AutorizacionFirmada bool               `json:"autorizacion_firmada"`
	AutorizacionFecha   *time.Time         `json:"autorizacion_fecha"`
}

// RecordConsent stores the owning candidate's decision for one consent tipo
// and re-derives the study authorization in the same transaction.
func (s *Service) RecordConsent(ctx context.Context, estudioID id.EstudioID, d ConsentDecision) (result *ConsentResult, err error) {
	ctx, span := startSpan(ctx, "study.record_consent",
		attribute.String("estudio.id", estudioID.String()),
		attribute.String("consent.tipo", d.Tipo),
		attribute.Bool("consent.acepta", d.Acepta),
	)
	defer func() { endSpan(span, err) }()

	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(access.ActionRecordConsent); err != nil {
		return nil, err
	}
	// Row scope limits a CANDIDATO to studies under their own email.
	if _, err := s.loadEstudio(ctx, caller, policy, estudioID); err != nil {
		return nil, err
	}
	tipo, err := models.ParseConsentTipo(d.Tipo)
	if err != nil {
		return nil, err
	}
	if d.Acepta && len(d.Firma) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "Se requiere la imagen de la firma.")
	}

	now := requestcontext.Now(ctx)
	ip := requestcontext.ClientIP(ctx)
	ua := strings.TrimSpace(d.UserAgent)
	if ua == "" {
		ua = requestcontext.UserAgent(ctx)
	}

	var (
		consent    *models.Consent
		estudio    *models.Estudio
		authChange bool
	)
	err = s.tx.RunInTx(WithTxKey(ctx, estudioID.String()), func(txCtx context.Context) error {
		locked, err := s.lockEstudio(txCtx, estudioID)
		if err != nil {
			return err
		}
		c, err := s.consents.FindConsent(txCtx, estudioID, tipo)
		if err != nil {
			return translateStoreError(err, "Consentimiento no encontrado.", "failed to load consent")
		}
		if d.Acepta {
			if err := c.Accept(d.Firma, now, ip, ua); err != nil {
				return err
			}
		} else {
			c.Revoke(now, ip, ua)
		}
		if err := s.consents.UpdateConsent(txCtx, c); err != nil {
			return translateStoreError(err, "Consentimiento no encontrado.", "failed to update consent")
		}

		all, err := s.consents.ListConsents(txCtx, estudioID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
		}
		changed := locked.ApplyAuthorization(models.AuthorizationGranted(all), now)
		if err := s.saveEstudio(txCtx, locked); err != nil {
			return err
		}
		consent, estudio, authChange = c, locked, changed
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.metrics.IncConsent(string(tipo), consent.Aceptado)
	action := audit.ActionConsentRevoked
	if consent.Aceptado {
		action = audit.ActionConsentGranted
	}
	s.emitAudit(ctx, caller, action, estudioID.String(), consentAuditDetail(consent))
	if authChange {
		s.metrics.IncAuthorizationChange(estudio.AutorizacionFirmada)
		s.emitAudit(ctx, caller, audit.ActionAuthorizationChanged, estudioID.String(), map[string]string{
			"firmada": strconv.FormatBool(estudio.AutorizacionFirmada),
		})
	}

	return &ConsentResult{
		Consent:             access.Consent(*consent),
		AutorizacionFirmada: estudio.AutorizacionFirmada,
		AutorizacionFecha:   estudio.AutorizacionFecha,
	}, nil
}

// ListConsents returns the consent ledger of a visible study in catalog order.
func (s *Service) ListConsents(ctx context.Context, estudioID id.EstudioID) ([]access.ConsentView, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadEstudio(ctx, caller, policy, estudioID); err != nil {
		return nil, err
	}
	consents, err := s.consents.ListConsents(ctx, estudioID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	out := make([]access.ConsentView, 0, len(consents))
	for _, c := range consents {
		out = append(out, access.Consent(c))
	}
	return out, nil
}

// consentAuditDetail records who signed from where without the signature itself.
func consentAuditDetail(c *models.Consent) map[string]string {
	detail := map[string]string{
		"tipo":     string(c.Tipo),
		"aceptado": strconv.FormatBool(c.Aceptado),
		"ip":       c.IP,
	}
	if c.UserAgent != "" {
		ua := useragent.New(c.UserAgent)
		browser, version := ua.Browser()
		detail["browser"] = strings.TrimSpace(browser + " " + version)
		detail["os"] = ua.OS()
		detail["mobile"] = strconv.FormatBool(ua.Mobile())
	}
	return detail
}
