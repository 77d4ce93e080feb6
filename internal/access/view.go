package access

import (
	"time"

	"estudios/internal/study/models"
	id "estudios/pkg/domain"
)

// ItemView is the rendered item. Puntaje is nil when redacted.
type ItemView struct {
	ID         id.ItemID         `json:"id"`
	EstudioID  id.EstudioID      `json:"estudio"`
	Tipo       models.ItemTipo   `json:"tipo"`
	Estado     models.ItemEstado `json:"estado"`
	Puntaje    *float64          `json:"puntaje,omitempty"`
	Comentario string            `json:"comentario"`
	CreatedAt  time.Time         `json:"created_at"`
}

// EstudioView is the rendered study. Score and level are nil when redacted.
type EstudioView struct {
	ID                  id.EstudioID   `json:"id"`
	SolicitudID         id.SolicitudID `json:"solicitud"`
	Progreso            float64        `json:"progreso"`
	ScoreCuantitativo   *float64       `json:"score_cuantitativo,omitempty"`
	NivelCualitativo    *models.Nivel  `json:"nivel_cualitativo,omitempty"`
	AutorizacionFirmada bool           `json:"autorizacion_firmada"`
	AutorizacionFecha   *time.Time     `json:"autorizacion_fecha"`
	Version             int64          `json:"version"`
	Items               []ItemView     `json:"items"`
}

// Item renders one item under the policy.
func (p Policy) Item(it models.Item) ItemView {
	v := ItemView{
		ID:         it.ID,
		EstudioID:  it.EstudioID,
		Tipo:       it.Tipo,
		Estado:     it.Estado,
		Comentario: it.Comentario,
		CreatedAt:  it.CreatedAt,
	}
	if !p.RedactItemScores {
		score := it.Puntaje
		v.Puntaje = &score
	}
	return v
}

// Estudio renders a study and its items under the policy.
func (p Policy) Estudio(e *models.Estudio, items []models.Item) EstudioView {
	v := EstudioView{
		ID:                  e.ID,
		SolicitudID:         e.SolicitudID,
		Progreso:            e.Progreso,
		AutorizacionFirmada: e.AutorizacionFirmada,
		AutorizacionFecha:   e.AutorizacionFecha,
		Version:             e.Version,
		Items:               make([]ItemView, 0, len(items)),
	}
	if !p.RedactStudyScore {
		score := e.ScoreCuantitativo
		nivel := e.NivelCualitativo
		v.ScoreCuantitativo = &score
		v.NivelCualitativo = &nivel
	}
	for _, it := range items {
		v.Items = append(v.Items, p.Item(it))
	}
	return v
}

// Summary drops score and level from a summary when the policy redacts them.
func (p Policy) Summary(s models.Summary) models.Summary {
	if p.RedactStudyScore {
		s.Score = nil
		s.Nivel = nil
	}
	return s
}

// ConsentView is a consent ledger entry without the signature bytes.
type ConsentView struct {
	Tipo         models.ConsentTipo `json:"tipo"`
	Label        string             `json:"label"`
	Aceptado     bool               `json:"aceptado"`
	FirmadoAt    *time.Time         `json:"firmado_at"`
	HasSignature bool               `json:"has_signature"`
}

// Consent renders a consent record. Consents are not redacted by role.
func Consent(c models.Consent) ConsentView {
	return ConsentView{
		Tipo:         c.Tipo,
		Label:        c.Tipo.Label(),
		Aceptado:     c.Aceptado,
		FirmadoAt:    c.FirmadoAt,
		HasSignature: c.HasSignature(),
	}
}
