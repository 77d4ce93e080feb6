package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "estudios/pkg/domain-errors"
)

// Typed identifiers keep entity IDs from being mixed up at compile time.
// Construct them with the Parse functions at trust boundaries.
type (
	UserID         uuid.UUID
	EmpresaID      uuid.UUID
	CandidatoID    uuid.UUID
	SolicitudID    uuid.UUID
	EstudioID      uuid.UUID
	ItemID         uuid.UUID
	ConsentID      uuid.UUID
	NotificacionID uuid.UUID
	AnexoID        uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

// ParseUserID parses and validates a user ID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseEmpresaID parses and validates a empresa ID.
func ParseEmpresaID(s string) (EmpresaID, error) {
	u, err := parseUUID(s, "empresa ID")
	return EmpresaID(u), err
}

func (id EmpresaID) String() string { return uuid.UUID(id).String() }
func (id EmpresaID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id EmpresaID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *EmpresaID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseCandidatoID parses and validates a candidato ID.
func ParseCandidatoID(s string) (CandidatoID, error) {
	u, err := parseUUID(s, "candidato ID")
	return CandidatoID(u), err
}

func (id CandidatoID) String() string { return uuid.UUID(id).String() }
func (id CandidatoID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id CandidatoID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *CandidatoID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseSolicitudID parses and validates a solicitud ID.
func ParseSolicitudID(s string) (SolicitudID, error) {
	u, err := parseUUID(s, "solicitud ID")
	return SolicitudID(u), err
}

func (id SolicitudID) String() string { return uuid.UUID(id).String() }
func (id SolicitudID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id SolicitudID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *SolicitudID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseEstudioID parses and validates a estudio ID.
func ParseEstudioID(s string) (EstudioID, error) {
	u, err := parseUUID(s, "estudio ID")
	return EstudioID(u), err
}

func (id EstudioID) String() string { return uuid.UUID(id).String() }
func (id EstudioID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id EstudioID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *EstudioID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseItemID parses and validates a item ID.
func ParseItemID(s string) (ItemID, error) {
	u, err := parseUUID(s, "item ID")
	return ItemID(u), err
}

func (id ItemID) String() string { return uuid.UUID(id).String() }
func (id ItemID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ItemID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ItemID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseConsentID parses and validates a consent ID.
func ParseConsentID(s string) (ConsentID, error) {
	u, err := parseUUID(s, "consent ID")
	return ConsentID(u), err
}

func (id ConsentID) String() string { return uuid.UUID(id).String() }
func (id ConsentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ConsentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ConsentID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseNotificacionID parses and validates a notificacion ID.
func ParseNotificacionID(s string) (NotificacionID, error) {
	u, err := parseUUID(s, "notificacion ID")
	return NotificacionID(u), err
}

func (id NotificacionID) String() string { return uuid.UUID(id).String() }
func (id NotificacionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id NotificacionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *NotificacionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseAnexoID parses and validates an anexo ID.
func ParseAnexoID(s string) (AnexoID, error) {
	u, err := parseUUID(s, "anexo ID")
	return AnexoID(u), err
}

func (id AnexoID) String() string { return uuid.UUID(id).String() }
func (id AnexoID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id AnexoID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *AnexoID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// Fresh random identifiers for newly created entities.

func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewEmpresaID() EmpresaID           { return EmpresaID(uuid.New()) }
func NewCandidatoID() CandidatoID       { return CandidatoID(uuid.New()) }
func NewSolicitudID() SolicitudID       { return SolicitudID(uuid.New()) }
func NewEstudioID() EstudioID           { return EstudioID(uuid.New()) }
func NewItemID() ItemID                 { return ItemID(uuid.New()) }
func NewConsentID() ConsentID           { return ConsentID(uuid.New()) }
func NewNotificacionID() NotificacionID { return NotificacionID(uuid.New()) }
func NewAnexoID() AnexoID               { return AnexoID(uuid.New()) }
