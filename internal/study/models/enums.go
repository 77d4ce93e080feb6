package models

import (
	"strings"

	dErrors "estudios/pkg/domain-errors"
)

// ItemTipo is the closed catalog of verification item kinds.
type ItemTipo string

const (
	ItemListasRestrictivas ItemTipo = "LISTAS_RESTRICTIVAS"
	ItemTitulosAcademicos  ItemTipo = "TITULOS_ACADEMICOS"
	ItemCertLaborales      ItemTipo = "CERT_LABORALES"
	ItemVisitaDomiciliaria ItemTipo = "VISITA_DOMICILIARIA"
)

// ItemTipos returns the item catalog in canonical order.
func ItemTipos() []ItemTipo {
	return []ItemTipo{ItemListasRestrictivas, ItemTitulosAcademicos, ItemCertLaborales, ItemVisitaDomiciliaria}
}

func (t ItemTipo) IsValid() bool {
	switch t {
	case ItemListasRestrictivas, ItemTitulosAcademicos, ItemCertLaborales, ItemVisitaDomiciliaria:
		return true
	}
	return false
}

// ParseItemTipo accepts a catalog name; empty input yields LISTAS_RESTRICTIVAS.
func ParseItemTipo(s string) (ItemTipo, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ItemListasRestrictivas, nil
	}
	t := ItemTipo(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown item tipo: "+s)
	}
	return t, nil
}

// ItemEstado is the lifecycle state of an item.
//
//	PENDIENTE -> EN_VALIDACION -> {VALIDADO, HALLAZGO} -> CERRADO
//
// Any state may be re-set by an authorized actor.
type ItemEstado string

const (
	EstadoPendiente    ItemEstado = "PENDIENTE"
	EstadoEnValidacion ItemEstado = "EN_VALIDACION"
	EstadoValidado     ItemEstado = "VALIDADO"
	EstadoHallazgo     ItemEstado = "HALLAZGO"
	EstadoCerrado      ItemEstado = "CERRADO"
)

func (e ItemEstado) IsValid() bool {
	switch e {
	case EstadoPendiente, EstadoEnValidacion, EstadoValidado, EstadoHallazgo, EstadoCerrado:
		return true
	}
	return false
}

// IsDone reports whether the item counts toward study progress.
func (e ItemEstado) IsDone() bool {
	return e == EstadoValidado || e == EstadoCerrado
}

// Nivel is the qualitative risk level derived from the study score.
type Nivel string

const (
	NivelBajo    Nivel = "BAJO"
	NivelMedio   Nivel = "MEDIO"
	NivelAlto    Nivel = "ALTO"
	NivelCritico Nivel = "CRITICO"
)

// NivelForScore maps a score to its risk band. Boundaries are inclusive lower bounds.
func NivelForScore(score float64) Nivel {
	switch {
	case score >= 75:
		return NivelCritico
	case score >= 50:
		return NivelAlto
	case score >= 25:
		return NivelMedio
	default:
		return NivelBajo
	}
}

// ConsentTipo is the closed catalog of consent kinds. Every Estudio carries one
// record per tipo.
type ConsentTipo string

const (
	ConsentGeneral   ConsentTipo = "GENERAL"
	ConsentCentrales ConsentTipo = "CENTRALES"
	ConsentAcademico ConsentTipo = "ACADEMICO"
)

var consentLabels = map[ConsentTipo]string{
	ConsentGeneral:   "Autorización de tratamiento de datos",
	ConsentCentrales: "Consulta en centrales de riesgo",
	ConsentAcademico: "Verificación académica",
}

// ConsentCatalog returns the consent tipos in canonical order.
func ConsentCatalog() []ConsentTipo {
	return []ConsentTipo{ConsentGeneral, ConsentCentrales, ConsentAcademico}
}

func (t ConsentTipo) IsValid() bool {
	_, ok := consentLabels[t]
	return ok
}

// Label is the human-readable description shown to the candidate.
func (t ConsentTipo) Label() string { return consentLabels[t] }

func ParseConsentTipo(s string) (ConsentTipo, error) {
	t := ConsentTipo(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "tipo inválido")
	}
	return t, nil
}

// SolicitudEstado tracks the request workflow.
type SolicitudEstado string

const (
	SolicitudPendienteInvitacion SolicitudEstado = "PENDIENTE_INVITACION"
	SolicitudInvitado            SolicitudEstado = "INVITADO"
	SolicitudEnProceso           SolicitudEstado = "EN_PROCESO"
	SolicitudCompletada          SolicitudEstado = "COMPLETADA"
)
