package models

import (
	"time"

	id "estudios/pkg/domain"
)

// Email is an outbound message addressed to one or more recipients.
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Tipo classifies in-app notifications.
type Tipo string

const (
	TipoNuevaSolicitud Tipo = "NUEVA_SOLICITUD"
	TipoOtro           Tipo = "OTRO"
)

// Notificacion is an in-app inbox entry for one user.
type Notificacion struct {
	ID          id.NotificacionID `json:"id"`
	UserID      id.UserID         `json:"user_id"`
	Tipo        Tipo              `json:"tipo"`
	Titulo      string            `json:"titulo"`
	Cuerpo      string            `json:"cuerpo"`
	SolicitudID *id.SolicitudID   `json:"solicitud,omitempty"`
	IsRead      bool              `json:"is_read"`
	CreatedAt   time.Time         `json:"created_at"`
}
