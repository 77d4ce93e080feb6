package models

import (
	"math"
	"strings"
	"time"

	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

// Empresa is a client company requesting background checks.
type Empresa struct {
	ID            id.EmpresaID `json:"id"`
	Nombre        string       `json:"nombre"`
	NIT           string       `json:"nit"`
	EmailContacto string       `json:"email_contacto"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Candidato is the person being checked. Cedula is unique across the system.
type Candidato struct {
	ID               id.CandidatoID `json:"id"`
	Nombre           string         `json:"nombre"`
	Apellido         string         `json:"apellido"`
	Cedula           string         `json:"cedula"`
	Email            string         `json:"email"`
	Celular          string         `json:"celular,omitempty"`
	CiudadResidencia string         `json:"ciudad_residencia,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Perfil
}

func (c *Candidato) FullName() string {
	return strings.TrimSpace(c.Nombre + " " + c.Apellido)
}

// User is a platform account. Candidates get one when invited.
type User struct {
	ID           id.UserID     `json:"id"`
	Email        string        `json:"email"`
	Nombre       string        `json:"nombre"`
	PasswordHash []byte        `json:"-"`
	Role         id.Role       `json:"rol"`
	EmpresaID    *id.EmpresaID `json:"empresa_id,omitempty"`
	Active       bool          `json:"active"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Solicitud links a company, a candidate and optionally an analyst.
type Solicitud struct {
	ID            id.SolicitudID  `json:"id"`
	EmpresaID     id.EmpresaID    `json:"empresa_id"`
	CandidatoID   id.CandidatoID  `json:"candidato_id"`
	AnalistaID    *id.UserID      `json:"analista_id,omitempty"`
	Estado        SolicitudEstado `json:"estado"`
	Observaciones string          `json:"observaciones,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Ownership Ownership `json:"-"`
}

// AssignAnalista sets the analyst only when none is assigned yet.
func (s *Solicitud) AssignAnalista(analista id.UserID) bool {
	if s.AnalistaID != nil {
		return false
	}
	s.AnalistaID = &analista
	return true
}

// MarkInvited moves the solicitud to INVITADO.
func (s *Solicitud) MarkInvited(now time.Time) {
	s.Estado = SolicitudInvitado
	s.UpdatedAt = now
}

// Ownership carries the fields row scope is evaluated against. Stores fill it
// from the owning Solicitud and Candidato.
type Ownership struct {
	EmpresaID          id.EmpresaID
	AnalistaID         *id.UserID
	CandidatoEmail     string
	CandidatoCedula    string
	SolicitudCreatedAt time.Time
}

// Estudio is the 1:1 study of a Solicitud. Progreso, ScoreCuantitativo and
// NivelCualitativo are derived from the items and only change through
// ApplyDerived. Version increments on every derived write.
type Estudio struct {
	ID                  id.EstudioID   `json:"id"`
	SolicitudID         id.SolicitudID `json:"solicitud_id"`
	Progreso            float64        `json:"progreso"`
	ScoreCuantitativo   float64        `json:"score_cuantitativo"`
	NivelCualitativo    Nivel          `json:"nivel_cualitativo"`
	AutorizacionFirmada bool           `json:"autorizacion_firmada"`
	AutorizacionFecha   *time.Time     `json:"autorizacion_fecha"`
	Version             int64          `json:"version"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`

	Ownership Ownership `json:"-"`
}

// NewEstudio returns an empty study at BAJO with zero progress.
func NewEstudio(estudioID id.EstudioID, solicitudID id.SolicitudID, now time.Time) *Estudio {
	return &Estudio{
		ID:               estudioID,
		SolicitudID:      solicitudID,
		NivelCualitativo: NivelBajo,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Item is one verification unit of a study.
type Item struct {
	ID         id.ItemID    `json:"id"`
	EstudioID  id.EstudioID `json:"estudio_id"`
	Tipo       ItemTipo     `json:"tipo"`
	Estado     ItemEstado   `json:"estado"`
	Puntaje    float64      `json:"puntaje"`
	Comentario string       `json:"comentario"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewItem creates a PENDIENTE item with zero score.
func NewItem(itemID id.ItemID, estudioID id.EstudioID, tipo ItemTipo, now time.Time) (*Item, error) {
	if !tipo.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown item tipo")
	}
	return &Item{
		ID:        itemID,
		EstudioID: estudioID,
		Tipo:      tipo,
		Estado:    EstadoPendiente,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate marks the item VALIDADO with the given score. The comment is kept
// unless a non-empty replacement is supplied.
func (i *Item) Validate(score float64, comentario string, now time.Time) error {
	if err := CheckScore(score); err != nil {
		return err
	}
	i.Estado = EstadoValidado
	i.Puntaje = score
	if comentario != "" {
		i.Comentario = comentario
	}
	i.UpdatedAt = now
	return nil
}

// FlagFinding marks the item HALLAZGO with score and comment.
func (i *Item) FlagFinding(score float64, comentario string, now time.Time) error {
	if err := CheckScore(score); err != nil {
		return err
	}
	i.Estado = EstadoHallazgo
	i.Puntaje = score
	i.Comentario = comentario
	i.UpdatedAt = now
	return nil
}

// CheckScore rejects non-finite and negative scores.
func CheckScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return dErrors.New(dErrors.CodeValidation, "puntaje must be a finite number")
	}
	if score < 0 {
		return dErrors.New(dErrors.CodeValidation, "puntaje must be >= 0")
	}
	return nil
}
