package models

import (
	"strings"
	"time"

	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

const maxAnexoText = 2000

// AnexoTipo separates academic records from employment records.
type AnexoTipo string

const (
	AnexoAcademico AnexoTipo = "ACADEMICO"
	AnexoLaboral   AnexoTipo = "LABORAL"
)

func (t AnexoTipo) IsValid() bool {
	return t == AnexoAcademico || t == AnexoLaboral
}

// ParseAnexoTipo accepts a tipo name. Empty input is rejected.
func ParseAnexoTipo(s string) (AnexoTipo, error) {
	t := AnexoTipo(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "tipo de anexo inválido")
	}
	return t, nil
}

// Anexo is a supporting record a study collects from the candidate, such as
// a degree or a past job. Archivo is an opaque reference; the file itself
// lives elsewhere.
type Anexo struct {
	ID          id.AnexoID     `json:"id"`
	EstudioID   id.EstudioID   `json:"estudio_id"`
	CandidatoID id.CandidatoID `json:"candidato_id"`
	Tipo        AnexoTipo      `json:"tipo"`
	AnexoFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnexoFields is the editable content of an Anexo.
type AnexoFields struct {
	Titulo  string     `json:"titulo"`
	Entidad string     `json:"entidad"`
	Desde   *time.Time `json:"desde,omitempty"`
	Hasta   *time.Time `json:"hasta,omitempty"`
	Detalle string     `json:"detalle,omitempty"`
	Archivo string     `json:"archivo,omitempty"`
}

func (f AnexoFields) normalized() (AnexoFields, error) {
	f.Titulo = strings.TrimSpace(f.Titulo)
	f.Entidad = strings.TrimSpace(f.Entidad)
	f.Archivo = strings.TrimSpace(f.Archivo)
	if f.Titulo == "" {
		return f, dErrors.New(dErrors.CodeValidation, "titulo es requerido")
	}
	if len(f.Detalle) > maxAnexoText {
		return f, dErrors.New(dErrors.CodeValidation, "detalle es demasiado largo")
	}
	if f.Desde != nil && f.Hasta != nil && f.Hasta.Before(*f.Desde) {
		return f, dErrors.New(dErrors.CodeValidation, "hasta no puede ser anterior a desde")
	}
	return f, nil
}

// NewAnexo builds a record owned by the study's candidate.
func NewAnexo(anexoID id.AnexoID, estudioID id.EstudioID, candidatoID id.CandidatoID, tipo AnexoTipo, f AnexoFields, now time.Time) (*Anexo, error) {
	if !tipo.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "tipo de anexo inválido")
	}
	f, err := f.normalized()
	if err != nil {
		return nil, err
	}
	return &Anexo{
		ID:          anexoID,
		EstudioID:   estudioID,
		CandidatoID: candidatoID,
		Tipo:        tipo,
		AnexoFields: f,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Replace overwrites the editable content. Study, candidate and tipo stay.
func (a *Anexo) Replace(f AnexoFields, now time.Time) error {
	f, err := f.normalized()
	if err != nil {
		return err
	}
	a.AnexoFields = f
	a.UpdatedAt = now
	return nil
}
