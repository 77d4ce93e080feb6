package models

import (
	"strings"
	"time"

	dErrors "estudios/pkg/domain-errors"
)

const maxPerfilText = 2000

// TipoDocumento is the kind of identity document a candidate holds.
type TipoDocumento string

const (
	DocCedula            TipoDocumento = "CC"
	DocTarjetaIdentidad  TipoDocumento = "TI"
	DocCedulaExtranjeria TipoDocumento = "CE"
	DocPasaporte         TipoDocumento = "PA"
)

func (t TipoDocumento) IsValid() bool {
	switch t {
	case DocCedula, DocTarjetaIdentidad, DocCedulaExtranjeria, DocPasaporte:
		return true
	}
	return false
}

// Perfil is the self-service part of a candidate record.
type Perfil struct {
	TipoDocumento      TipoDocumento `json:"tipo_documento,omitempty"`
	FechaNacimiento    *time.Time    `json:"fecha_nacimiento,omitempty"`
	Direccion          string        `json:"direccion,omitempty"`
	Barrio             string        `json:"barrio,omitempty"`
	Departamento       string        `json:"departamento,omitempty"`
	Municipio          string        `json:"municipio,omitempty"`
	Telefono           string        `json:"telefono,omitempty"`
	EPS                string        `json:"eps,omitempty"`
	PerfilAspirante    string        `json:"perfil_aspirante,omitempty"`
	EstudiaActualmente bool          `json:"estudia_actualmente"`
}

// PerfilPatch is a partial profile update. Nil fields are left untouched.
// Cedula and email identify the candidate and are not editable here.
type PerfilPatch struct {
	Nombre             *string
	Apellido           *string
	Celular            *string
	CiudadResidencia   *string
	TipoDocumento      *string
	FechaNacimiento    *time.Time
	Direccion          *string
	Barrio             *string
	Departamento       *string
	Municipio          *string
	Telefono           *string
	EPS                *string
	PerfilAspirante    *string
	EstudiaActualmente *bool
}

// ApplyPerfil validates the whole patch, then applies it. A rejected patch
// leaves the candidate unchanged.
func (c *Candidato) ApplyPerfil(p PerfilPatch, now time.Time) error {
	if p.Nombre != nil && strings.TrimSpace(*p.Nombre) == "" {
		return dErrors.New(dErrors.CodeValidation, "nombre no puede quedar vacío")
	}
	var tipoDoc TipoDocumento
	if p.TipoDocumento != nil {
		tipoDoc = TipoDocumento(strings.ToUpper(strings.TrimSpace(*p.TipoDocumento)))
		if tipoDoc != "" && !tipoDoc.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "tipo_documento inválido")
		}
	}
	if p.FechaNacimiento != nil && p.FechaNacimiento.After(now) {
		return dErrors.New(dErrors.CodeValidation, "fecha_nacimiento no puede ser futura")
	}
	if p.PerfilAspirante != nil && len(*p.PerfilAspirante) > maxPerfilText {
		return dErrors.New(dErrors.CodeValidation, "perfil_aspirante es demasiado largo")
	}

	setText(&c.Nombre, p.Nombre)
	setText(&c.Apellido, p.Apellido)
	setText(&c.Celular, p.Celular)
	setText(&c.CiudadResidencia, p.CiudadResidencia)
	if p.TipoDocumento != nil {
		c.TipoDocumento = tipoDoc
	}
	if p.FechaNacimiento != nil {
		d := p.FechaNacimiento.UTC()
		c.FechaNacimiento = &d
	}
	setText(&c.Direccion, p.Direccion)
	setText(&c.Barrio, p.Barrio)
	setText(&c.Departamento, p.Departamento)
	setText(&c.Municipio, p.Municipio)
	setText(&c.Telefono, p.Telefono)
	setText(&c.EPS, p.EPS)
	setText(&c.PerfilAspirante, p.PerfilAspirante)
	if p.EstudiaActualmente != nil {
		c.EstudiaActualmente = *p.EstudiaActualmente
	}
	c.UpdatedAt = now
	return nil
}

func setText(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
