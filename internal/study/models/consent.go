package models

import (
	"time"

	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

// Consent is the ledger entry for one (estudio, tipo) pair.
//
// Invariants:
//   - Aceptado implies FirmadoAt and Firma are set
//   - !Aceptado implies FirmadoAt and Firma are nil
//   - IP and UserAgent reflect the last decision, accepted or not
type Consent struct {
	ID        id.ConsentID `json:"id"`
	EstudioID id.EstudioID `json:"estudio_id"`
	Tipo      ConsentTipo  `json:"tipo"`
	Aceptado  bool         `json:"aceptado"`
	FirmadoAt *time.Time   `json:"firmado_at"`
	Firma     []byte       `json:"-"`
	IP        string       `json:"ip,omitempty"`
	UserAgent string       `json:"user_agent,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewConsent provisions a pending consent record.
func NewConsent(consentID id.ConsentID, estudioID id.EstudioID, tipo ConsentTipo, now time.Time) *Consent {
	return &Consent{
		ID:        consentID,
		EstudioID: estudioID,
		Tipo:      tipo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Accept records a signed acceptance. A missing signature leaves the record untouched.
func (c *Consent) Accept(firma []byte, now time.Time, ip, userAgent string) error {
	if len(firma) == 0 {
		return dErrors.New(dErrors.CodeValidation, "firma requerida para aceptar")
	}
	signedAt := now
	c.Aceptado = true
	c.FirmadoAt = &signedAt
	c.Firma = firma
	c.IP = ip
	c.UserAgent = userAgent
	c.UpdatedAt = now
	return nil
}

// Revoke records a refusal. Signature data is cleared; client metadata is kept.
func (c *Consent) Revoke(now time.Time, ip, userAgent string) {
	c.Aceptado = false
	c.FirmadoAt = nil
	c.Firma = nil
	c.IP = ip
	c.UserAgent = userAgent
	c.UpdatedAt = now
}

// HasSignature reports whether a signature image is stored.
func (c *Consent) HasSignature() bool { return len(c.Firma) > 0 }

// AuthorizationGranted is true only when every catalog tipo has a record and
// all of them are accepted.
func AuthorizationGranted(consents []Consent) bool {
	accepted := make(map[ConsentTipo]bool, len(consents))
	for _, c := range consents {
		accepted[c.Tipo] = accepted[c.Tipo] || c.Aceptado
	}
	for _, tipo := range ConsentCatalog() {
		if !accepted[tipo] {
			return false
		}
	}
	return true
}

// ApplyAuthorization stores the derived authorization flag. A granted
// authorization is stamped with now on every evaluation; a withdrawn one
// clears the date. Returns true when the flag changed.
func (e *Estudio) ApplyAuthorization(granted bool, now time.Time) bool {
	changed := e.AutorizacionFirmada != granted
	e.AutorizacionFirmada = granted
	if granted {
		at := now
		e.AutorizacionFecha = &at
	} else {
		e.AutorizacionFecha = nil
	}
	e.Version++
	e.UpdatedAt = now
	return changed
}
