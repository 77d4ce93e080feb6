package handler

import (
	"encoding/base64"
	"strings"
	"time"

	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

const (
	maxCedulaLen    = 30
	maxTextLen      = 2000
	maxBulkItems    = 200
	dateLayout      = "2006-01-02"
	signaturePrefix = "data:image"
)

// CandidatoRequest is the candidate block of a new solicitud.
type CandidatoRequest struct {
	Nombre           string `json:"nombre"`
	Apellido         string `json:"apellido"`
	Cedula           string `json:"cedula"`
	Email            string `json:"email"`
	Celular          string `json:"celular"`
	CiudadResidencia string `json:"ciudad_residencia"`
}

// CreateSolicitudRequest is the body of POST /solicitudes.
type CreateSolicitudRequest struct {
	EmpresaID     string           `json:"empresa_id"`
	Candidato     CandidatoRequest `json:"candidato"`
	Observaciones string           `json:"observaciones"`
	Items         []string         `json:"items"`

	parsedEmpresaID *id.EmpresaID
}

func (r *CreateSolicitudRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Candidato.Cedula = strings.TrimSpace(r.Candidato.Cedula)
	if r.Candidato.Cedula == "" {
		return dErrors.New(dErrors.CodeValidation, "candidato.cedula es requerida")
	}
	if len(r.Candidato.Cedula) > maxCedulaLen {
		return dErrors.New(dErrors.CodeValidation, "candidato.cedula es demasiado larga")
	}
	if len(r.Observaciones) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "observaciones es demasiado largo")
	}
	if email := strings.TrimSpace(r.Candidato.Email); email != "" && !strings.Contains(email, "@") {
		return dErrors.New(dErrors.CodeValidation, "candidato.email inválido")
	}
	if raw := strings.TrimSpace(r.EmpresaID); raw != "" {
		empresaID, err := id.ParseEmpresaID(raw)
		if err != nil {
			return err
		}
		r.parsedEmpresaID = &empresaID
	}
	return nil
}

// Input maps the request onto the service intake.
func (r *CreateSolicitudRequest) Input() service.CreateSolicitudInput {
	return service.CreateSolicitudInput{
		EmpresaID: r.parsedEmpresaID,
		Candidato: service.CandidatoInput{
			Nombre:           r.Candidato.Nombre,
			Apellido:         r.Candidato.Apellido,
			Cedula:           r.Candidato.Cedula,
			Email:            r.Candidato.Email,
			Celular:          r.Candidato.Celular,
			CiudadResidencia: r.Candidato.CiudadResidencia,
		},
		Observaciones: r.Observaciones,
		Items:         r.Items,
	}
}

// ItemScoreRequest is the body of the validate and finding endpoints. A
// missing puntaje counts as zero.
type ItemScoreRequest struct {
	Puntaje    *float64 `json:"puntaje"`
	Comentario string   `json:"comentario"`
}

func (r *ItemScoreRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := models.CheckScore(r.Score()); err != nil {
		return err
	}
	if len(r.Comentario) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "comentario es demasiado largo")
	}
	return nil
}

func (r *ItemScoreRequest) Score() float64 {
	if r.Puntaje == nil {
		return 0
	}
	return *r.Puntaje
}

// AddItemRequest is the body of POST /estudios/{id}/items.
type AddItemRequest struct {
	Tipo string `json:"tipo"`
}

func (r *AddItemRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	_, err := models.ParseItemTipo(r.Tipo)
	return err
}

// BulkItemRequest is one entry of a bulk update. Entries without id are
// ignored; estado defaults to VALIDADO.
type BulkItemRequest struct {
	ID         string   `json:"id"`
	Estado     string   `json:"estado"`
	Puntaje    *float64 `json:"puntaje"`
	Comentario string   `json:"comentario"`
}

// BulkUpdateRequest is the body of POST /estudios/{id}/validar-masivo.
type BulkUpdateRequest struct {
	Items []BulkItemRequest `json:"items"`

	updates []service.ItemUpdate
}

func (r *BulkUpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Items) > maxBulkItems {
		return dErrors.New(dErrors.CodeValidation, "demasiados items")
	}
	r.updates = make([]service.ItemUpdate, 0, len(r.Items))
	for _, it := range r.Items {
		raw := strings.TrimSpace(it.ID)
		if raw == "" {
			continue
		}
		itemID, err := id.ParseItemID(raw)
		if err != nil {
			continue
		}
		estado := models.ItemEstado(strings.ToUpper(strings.TrimSpace(it.Estado)))
		if estado == "" {
			estado = models.EstadoValidado
		}
		u := service.ItemUpdate{ID: itemID, Estado: estado, Comentario: it.Comentario}
		if it.Puntaje != nil {
			u.Puntaje = *it.Puntaje
		}
		r.updates = append(r.updates, u)
	}
	return nil
}

func (r *BulkUpdateRequest) Updates() []service.ItemUpdate { return r.updates }

// ConsentRequest is the body of POST /estudios/{id}/consentimientos.
// FirmaBase64 is a data URL ("data:image/png;base64,...").
type ConsentRequest struct {
	Tipo        string `json:"tipo"`
	Acepta      bool   `json:"acepta"`
	FirmaBase64 string `json:"firma_base64"`
	UserAgent   string `json:"user_agent"`

	firma []byte
}

func (r *ConsentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Tipo = strings.TrimSpace(r.Tipo)
	if r.Tipo == "" {
		return dErrors.New(dErrors.CodeValidation, "Tipo inválido.")
	}
	if !r.Acepta || r.FirmaBase64 == "" {
		return nil
	}
	firma, err := decodeSignature(r.FirmaBase64)
	if err != nil {
		return err
	}
	r.firma = firma
	return nil
}

func (r *ConsentRequest) Decision() service.ConsentDecision {
	return service.ConsentDecision{
		Tipo:      r.Tipo,
		Acepta:    r.Acepta,
		Firma:     r.firma,
		UserAgent: r.UserAgent,
	}
}

// decodeSignature extracts the image bytes of a base64 data URL.
func decodeSignature(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, signaturePrefix) {
		return nil, dErrors.New(dErrors.CodeValidation, "Se requiere la imagen de la firma.")
	}
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "Formato de firma inválido.")
	}
	firma, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "Formato de firma inválido.")
	}
	return firma, nil
}

// parseDay reads an optional YYYY-MM-DD query value as midnight UTC.
func parseDay(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, field+" debe tener formato YYYY-MM-DD")
	}
	return &day, nil
}

// PerfilRequest is the body of PATCH /candidatos/me. Omitted fields are left
// untouched.
type PerfilRequest struct {
	Nombre             *string `json:"nombre"`
	Apellido           *string `json:"apellido"`
	Celular            *string `json:"celular"`
	CiudadResidencia   *string `json:"ciudad_residencia"`
	TipoDocumento      *string `json:"tipo_documento"`
	FechaNacimiento    *string `json:"fecha_nacimiento"`
	Direccion          *string `json:"direccion"`
	Barrio             *string `json:"barrio"`
	Departamento       *string `json:"departamento"`
	Municipio          *string `json:"municipio"`
	Telefono           *string `json:"telefono"`
	EPS                *string `json:"eps"`
	PerfilAspirante    *string `json:"perfil_aspirante"`
	EstudiaActualmente *bool   `json:"estudia_actualmente"`

	nacimiento *time.Time
}

func (r *PerfilRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.FechaNacimiento != nil {
		day, err := parseDay(*r.FechaNacimiento, "fecha_nacimiento")
		if err != nil {
			return err
		}
		r.nacimiento = day
	}
	return nil
}

func (r *PerfilRequest) Patch() models.PerfilPatch {
	return models.PerfilPatch{
		Nombre:             r.Nombre,
		Apellido:           r.Apellido,
		Celular:            r.Celular,
		CiudadResidencia:   r.CiudadResidencia,
		TipoDocumento:      r.TipoDocumento,
		FechaNacimiento:    r.nacimiento,
		Direccion:          r.Direccion,
		Barrio:             r.Barrio,
		Departamento:       r.Departamento,
		Municipio:          r.Municipio,
		Telefono:           r.Telefono,
		EPS:                r.EPS,
		PerfilAspirante:    r.PerfilAspirante,
		EstudiaActualmente: r.EstudiaActualmente,
	}
}

// AnexoRequest is the body of POST /anexos and PUT /anexos/{id}. EstudioID and
// Tipo are read on create only.
type AnexoRequest struct {
	EstudioID string `json:"estudio_id"`
	Tipo      string `json:"tipo"`
	Titulo    string `json:"titulo"`
	Entidad   string `json:"entidad"`
	Desde     string `json:"desde"`
	Hasta     string `json:"hasta"`
	Detalle   string `json:"detalle"`
	Archivo   string `json:"archivo"`

	estudioID *id.EstudioID
	desde     *time.Time
	hasta     *time.Time
}

func (r *AnexoRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Titulo) == "" {
		return dErrors.New(dErrors.CodeValidation, "titulo es requerido")
	}
	if len(r.Detalle) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "detalle es demasiado largo")
	}
	if raw := strings.TrimSpace(r.EstudioID); raw != "" {
		estudioID, err := id.ParseEstudioID(raw)
		if err != nil {
			return err
		}
		r.estudioID = &estudioID
	}
	var err error
	if r.desde, err = parseDay(r.Desde, "desde"); err != nil {
		return err
	}
	if r.hasta, err = parseDay(r.Hasta, "hasta"); err != nil {
		return err
	}
	return nil
}

func (r *AnexoRequest) Fields() models.AnexoFields {
	return models.AnexoFields{
		Titulo:  r.Titulo,
		Entidad: r.Entidad,
		Desde:   r.desde,
		Hasta:   r.hasta,
		Detalle: r.Detalle,
		Archivo: r.Archivo,
	}
}

func (r *AnexoRequest) Input() service.AnexoInput {
	return service.AnexoInput{
		EstudioID: r.estudioID,
		Tipo:      r.Tipo,
		Fields:    r.Fields(),
	}
}
