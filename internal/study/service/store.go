package service

import (
	"context"

	"estudios/internal/audit"
	notifmodels "estudios/internal/notification/models"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
)

// Store contracts. Implementations return sentinel.ErrNotFound for missing
// rows and sentinel.ErrConflict for unique or version clashes. Reads that
// return Solicitud or Estudio fill Ownership from the owning rows.

type DirectoryStore interface {
	FindEmpresa(ctx context.Context, empresaID id.EmpresaID) (*models.Empresa, error)
	CreateEmpresa(ctx context.Context, e *models.Empresa) error
	FindUser(ctx context.Context, userID id.UserID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	// FirstActiveAnalista returns the oldest active ANALISTA, restricted to
	// empresaID when it is non-nil.
	FirstActiveAnalista(ctx context.Context, empresaID *id.EmpresaID) (*models.User, error)
	FindCandidato(ctx context.Context, candidatoID id.CandidatoID) (*models.Candidato, error)
	FindCandidatoByCedula(ctx context.Context, cedula string) (*models.Candidato, error)
	// FindCandidatoByEmail returns the newest candidate with that email,
	// compared case-insensitively.
	FindCandidatoByEmail(ctx context.Context, email string) (*models.Candidato, error)
	CreateCandidato(ctx context.Context, c *models.Candidato) error
	UpdateCandidato(ctx context.Context, c *models.Candidato) error
}

type SolicitudStore interface {
	CreateSolicitud(ctx context.Context, s *models.Solicitud) error
	FindSolicitud(ctx context.Context, solicitudID id.SolicitudID) (*models.Solicitud, error)
	// ListSolicitudes returns the rows visible under scope, newest first.
	ListSolicitudes(ctx context.Context, scope models.RowScope) ([]models.Solicitud, error)
	UpdateSolicitud(ctx context.Context, s *models.Solicitud) error
}

type EstudioStore interface {
	CreateEstudio(ctx context.Context, e *models.Estudio) error
	FindEstudio(ctx context.Context, estudioID id.EstudioID) (*models.Estudio, error)
	// FindEstudioForUpdate reads the row and holds it locked until the
	// surrounding transaction ends.
	FindEstudioForUpdate(ctx context.Context, estudioID id.EstudioID) (*models.Estudio, error)
	FindEstudioBySolicitud(ctx context.Context, solicitudID id.SolicitudID) (*models.Estudio, error)
	// ListEstudios applies every filter field, ordered by solicitud creation desc.
	ListEstudios(ctx context.Context, filter models.EstudioFilter) ([]models.Estudio, error)
	// UpdateEstudio persists derived fields. The stored version must equal
	// e.Version-1, otherwise sentinel.ErrConflict is returned.
	UpdateEstudio(ctx context.Context, e *models.Estudio) error
}

type ItemStore interface {
	CreateItem(ctx context.Context, it *models.Item) error
	FindItem(ctx context.Context, itemID id.ItemID) (*models.Item, error)
	// ListItems returns the items of a study in creation order.
	ListItems(ctx context.Context, estudioID id.EstudioID) ([]models.Item, error)
	// FindItemsByIDs returns the subset of ids that belong to the study.
	FindItemsByIDs(ctx context.Context, estudioID id.EstudioID, ids []id.ItemID) ([]models.Item, error)
	UpdateItem(ctx context.Context, it *models.Item) error
}

type ConsentStore interface {
	CreateConsent(ctx context.Context, c *models.Consent) error
	ListConsents(ctx context.Context, estudioID id.EstudioID) ([]models.Consent, error)
	FindConsent(ctx context.Context, estudioID id.EstudioID, tipo models.ConsentTipo) (*models.Consent, error)
	UpdateConsent(ctx context.Context, c *models.Consent) error
}

type AnexoStore interface {
	CreateAnexo(ctx context.Context, a *models.Anexo) error
	FindAnexo(ctx context.Context, anexoID id.AnexoID) (*models.Anexo, error)
	// ListAnexos returns a study's records in creation order. An empty tipo
	// lists every tipo.
	ListAnexos(ctx context.Context, estudioID id.EstudioID, tipo models.AnexoTipo) ([]models.Anexo, error)
	UpdateAnexo(ctx context.Context, a *models.Anexo) error
	DeleteAnexo(ctx context.Context, anexoID id.AnexoID) error
}

// Stores bundles the persistence ports of the study module.
type Stores struct {
	Directory   DirectoryStore
	Solicitudes SolicitudStore
	Estudios    EstudioStore
	Items       ItemStore
	Consents    ConsentStore
	Anexos      AnexoStore
}

// StoreTx runs fn as one unit of work. Stores called with txCtx join it.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Notifier enqueues outbound notifications. Calls never block on delivery.
type Notifier interface {
	Email(ctx context.Context, to []string, subject, body string)
	Inbox(ctx context.Context, n notifmodels.Notificacion)
}
