package models

import (
	"strings"
	"time"

	id "estudios/pkg/domain"
)

// ScopeKind selects which rows a caller may see.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeEmpresa
	ScopeAnalista
	ScopeCandidato
)

// RowScope is a resolved row filter for one caller.
type RowScope struct {
	Kind           ScopeKind
	EmpresaID      id.EmpresaID
	AnalistaID     id.UserID
	CandidatoEmail string
}

// Allows reports whether a row with the given ownership is visible.
func (s RowScope) Allows(o Ownership) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeEmpresa:
		return o.EmpresaID == s.EmpresaID
	case ScopeAnalista:
		return o.AnalistaID != nil && *o.AnalistaID == s.AnalistaID
	case ScopeCandidato:
		return s.CandidatoEmail != "" && strings.EqualFold(o.CandidatoEmail, s.CandidatoEmail)
	default:
		return false
	}
}

// EstudioFilter narrows an Estudio listing. Zero-valued fields do not filter.
type EstudioFilter struct {
	Scope RowScope
	// Estado keeps studies with at least one item in that state.
	Estado ItemEstado
	// Desde and Hasta bound the Solicitud creation date, both inclusive by day.
	Desde *time.Time
	Hasta *time.Time
	// Cedula is a substring match on the candidate document.
	Cedula string
}

// Matches applies every filter except Estado, which needs the items.
func (f EstudioFilter) Matches(o Ownership) bool {
	if !f.Scope.Allows(o) {
		return false
	}
	if f.Desde != nil && o.SolicitudCreatedAt.Before(*f.Desde) {
		return false
	}
	if f.Hasta != nil && !o.SolicitudCreatedAt.Before(f.Hasta.AddDate(0, 0, 1)) {
		return false
	}
	if f.Cedula != "" && !strings.Contains(o.CandidatoCedula, f.Cedula) {
		return false
	}
	return true
}
