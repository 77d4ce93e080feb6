package models

import (
	"time"

	id "estudios/pkg/domain"
)

// Summary is the roll-up of a study. Score and Nivel are pointers so role
// redaction can drop them from the rendered view.
type Summary struct {
	EstudioID    id.EstudioID          `json:"estudio_id"`
	Progreso     float64               `json:"progreso"`
	Score        *float64              `json:"score_cuantitativo,omitempty"`
	Nivel        *Nivel                `json:"nivel_cualitativo,omitempty"`
	Totales      Totales               `json:"totales"`
	Secciones    map[ItemTipo]*Seccion `json:"secciones"`
	Autorizacion Autorizacion          `json:"autorizacion"`
}

type Totales struct {
	Items     int `json:"items"`
	Validados int `json:"validados"`
	Hallazgos int `json:"hallazgos"`
}

// Seccion groups the items of one tipo. Estado lists item states in item order.
type Seccion struct {
	Estado    []ItemEstado `json:"estado"`
	Validados int          `json:"validados"`
	Hallazgos int          `json:"hallazgos"`
}

type Autorizacion struct {
	Firmada bool       `json:"firmada"`
	Fecha   *time.Time `json:"fecha"`
}

// BuildSummary aggregates items into a Summary. Validados counts VALIDADO
// items only; CERRADO items count toward progress but not here.
func BuildSummary(e *Estudio, items []Item) Summary {
	score := e.ScoreCuantitativo
	nivel := e.NivelCualitativo
	sum := Summary{
		EstudioID: e.ID,
		Progreso:  e.Progreso,
		Score:     &score,
		Nivel:     &nivel,
		Totales:   Totales{Items: len(items)},
		Secciones: make(map[ItemTipo]*Seccion),
		Autorizacion: Autorizacion{
			Firmada: e.AutorizacionFirmada,
			Fecha:   e.AutorizacionFecha,
		},
	}
	for _, it := range items {
		sec, ok := sum.Secciones[it.Tipo]
		if !ok {
			sec = &Seccion{Estado: []ItemEstado{}}
			sum.Secciones[it.Tipo] = sec
		}
		sec.Estado = append(sec.Estado, it.Estado)
		switch it.Estado {
		case EstadoValidado:
			sec.Validados++
			sum.Totales.Validados++
		case EstadoHallazgo:
			sec.Hallazgos++
			sum.Totales.Hallazgos++
		}
	}
	return sum
}
