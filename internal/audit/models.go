package audit

import "time"

// Action names an auditable state change.
type Action string

const (
	ActionItemValidated        Action = "item_validated"
	ActionItemFinding          Action = "item_finding"
	ActionItemsBulkUpdated     Action = "items_bulk_updated"
	ActionItemAdded            Action = "item_added"
	ActionConsentGranted       Action = "consent_granted"
	ActionConsentRevoked       Action = "consent_revoked"
	ActionAuthorizationChanged Action = "authorization_changed"
	ActionSolicitudCreated     Action = "solicitud_created"
	ActionCandidatoInvited     Action = "candidato_invited"
	ActionPerfilUpdated        Action = "perfil_updated"
	ActionAnexoCreated         Action = "anexo_created"
	ActionAnexoUpdated         Action = "anexo_updated"
	ActionAnexoDeleted         Action = "anexo_deleted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	ActorID   string            `json:"actor_id"`
	ActorRole string            `json:"actor_role"`
	Subject   string            `json:"subject"`
	RequestID string            `json:"request_id,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}
