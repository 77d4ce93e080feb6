package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	"estudios/pkg/platform/sentinel"
)

// InMemory implements every study store port on maps guarded by one RWMutex.
// Values are copied in and out so callers never share state with the store.
// Row locking is provided by the service's ShardedTx.
type InMemory struct {
	mu sync.RWMutex

	empresas    map[id.EmpresaID]models.Empresa
	users       map[id.UserID]models.User
	candidatos  map[id.CandidatoID]models.Candidato
	solicitudes map[id.SolicitudID]models.Solicitud
	estudios    map[id.EstudioID]models.Estudio
	items       map[id.ItemID]models.Item
	consents    map[id.ConsentID]models.Consent
	anexos      map[id.AnexoID]models.Anexo

	// seq records insertion order for stable ties on equal timestamps.
	seq   int64
	order map[any]int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		empresas:    make(map[id.EmpresaID]models.Empresa),
		users:       make(map[id.UserID]models.User),
		candidatos:  make(map[id.CandidatoID]models.Candidato),
		solicitudes: make(map[id.SolicitudID]models.Solicitud),
		estudios:    make(map[id.EstudioID]models.Estudio),
		items:       make(map[id.ItemID]models.Item),
		consents:    make(map[id.ConsentID]models.Consent),
		anexos:      make(map[id.AnexoID]models.Anexo),
		order:       make(map[any]int64),
	}
}

func (s *InMemory) track(key any) {
	s.seq++
	s.order[key] = s.seq
}

// -----------------------------------------------------------------------------
// Directory
// -----------------------------------------------------------------------------

func (s *InMemory) FindEmpresa(_ context.Context, empresaID id.EmpresaID) (*models.Empresa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.empresas[empresaID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &e, nil
}

func (s *InMemory) CreateEmpresa(_ context.Context, e *models.Empresa) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.empresas[e.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.empresas {
		if e.NIT != "" && existing.NIT == e.NIT {
			return sentinel.ErrConflict
		}
	}
	s.empresas[e.ID] = *e
	return nil
}

func (s *InMemory) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return sentinel.ErrConflict
		}
	}
	stored := *u
	stored.PasswordHash = slices.Clone(u.PasswordHash)
	s.users[u.ID] = stored
	s.track(u.ID)
	return nil
}

func (s *InMemory) FirstActiveAnalista(_ context.Context, empresaID *id.EmpresaID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.User
	for _, u := range s.users {
		if u.Role != id.RoleAnalista || !u.Active {
			continue
		}
		if empresaID != nil && (u.EmpresaID == nil || *u.EmpresaID != *empresaID) {
			continue
		}
		if best == nil || s.before(u.CreatedAt.UnixNano(), u.ID, best.CreatedAt.UnixNano(), best.ID) {
			candidate := u
			best = &candidate
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	return best, nil
}

func (s *InMemory) FindCandidato(_ context.Context, candidatoID id.CandidatoID) (*models.Candidato, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidatos[candidatoID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c.FechaNacimiento = cloneTime(c.FechaNacimiento)
	return &c, nil
}

func (s *InMemory) FindCandidatoByCedula(_ context.Context, cedula string) (*models.Candidato, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.candidatos {
		if c.Cedula == cedula {
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindCandidatoByEmail(_ context.Context, email string) (*models.Candidato, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.TrimSpace(email)
	var best *models.Candidato
	for _, c := range s.candidatos {
		if email == "" || !strings.EqualFold(c.Email, email) {
			continue
		}
		if best == nil || s.before(best.CreatedAt.UnixNano(), best.ID, c.CreatedAt.UnixNano(), c.ID) {
			found := c
			best = &found
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	best.FechaNacimiento = cloneTime(best.FechaNacimiento)
	return best, nil
}

func (s *InMemory) CreateCandidato(_ context.Context, c *models.Candidato) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidatos[c.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.candidatos {
		if existing.Cedula == c.Cedula {
			return sentinel.ErrConflict
		}
	}
	stored := *c
	stored.FechaNacimiento = cloneTime(c.FechaNacimiento)
	s.candidatos[stored.ID] = stored
	s.track(c.ID)
	return nil
}

func (s *InMemory) UpdateCandidato(_ context.Context, c *models.Candidato) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.candidatos[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored := *c
	stored.Cedula, stored.Email, stored.CreatedAt = existing.Cedula, existing.Email, existing.CreatedAt
	stored.FechaNacimiento = cloneTime(c.FechaNacimiento)
	s.candidatos[c.ID] = stored
	return nil
}

// -----------------------------------------------------------------------------
// Solicitudes
// -----------------------------------------------------------------------------

// ownershipLocked joins the solicitud with its candidate. Caller holds mu.
func (s *InMemory) ownershipLocked(sol models.Solicitud) models.Ownership {
	o := models.Ownership{
		EmpresaID:          sol.EmpresaID,
		AnalistaID:         sol.AnalistaID,
		SolicitudCreatedAt: sol.CreatedAt,
	}
	if c, ok := s.candidatos[sol.CandidatoID]; ok {
		o.CandidatoEmail = c.Email
		o.CandidatoCedula = c.Cedula
	}
	return o
}

func (s *InMemory) CreateSolicitud(_ context.Context, sol *models.Solicitud) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.solicitudes[sol.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.empresas[sol.EmpresaID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.candidatos[sol.CandidatoID]; !ok {
		return sentinel.ErrNotFound
	}
	stored := *sol
	stored.Ownership = models.Ownership{}
	s.solicitudes[sol.ID] = stored
	s.track(sol.ID)
	return nil
}

func (s *InMemory) FindSolicitud(_ context.Context, solicitudID id.SolicitudID) (*models.Solicitud, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sol, ok := s.solicitudes[solicitudID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	sol.Ownership = s.ownershipLocked(sol)
	return &sol, nil
}

func (s *InMemory) ListSolicitudes(_ context.Context, scope models.RowScope) ([]models.Solicitud, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Solicitud, 0)
	for _, sol := range s.solicitudes {
		sol.Ownership = s.ownershipLocked(sol)
		if scope.Allows(sol.Ownership) {
			out = append(out, sol)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.before(out[j].CreatedAt.UnixNano(), out[j].ID, out[i].CreatedAt.UnixNano(), out[i].ID)
	})
	return out, nil
}

func (s *InMemory) UpdateSolicitud(_ context.Context, sol *models.Solicitud) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.solicitudes[sol.ID]; !ok {
		return sentinel.ErrNotFound
	}
	stored := *sol
	stored.Ownership = models.Ownership{}
	s.solicitudes[sol.ID] = stored
	return nil
}

// -----------------------------------------------------------------------------
// Estudios
// -----------------------------------------------------------------------------

func (s *InMemory) withOwnershipLocked(e models.Estudio) models.Estudio {
	if sol, ok := s.solicitudes[e.SolicitudID]; ok {
		e.Ownership = s.ownershipLocked(sol)
	}
	return e
}

func (s *InMemory) CreateEstudio(_ context.Context, e *models.Estudio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.estudios[e.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.solicitudes[e.SolicitudID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.estudios {
		if existing.SolicitudID == e.SolicitudID {
			return sentinel.ErrConflict
		}
	}
	stored := *e
	stored.Ownership = models.Ownership{}
	s.estudios[e.ID] = stored
	return nil
}

func (s *InMemory) FindEstudio(_ context.Context, estudioID id.EstudioID) (*models.Estudio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.estudios[estudioID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e = s.withOwnershipLocked(e)
	return &e, nil
}

// FindEstudioForUpdate is a plain read; ShardedTx holds the lock.
func (s *InMemory) FindEstudioForUpdate(ctx context.Context, estudioID id.EstudioID) (*models.Estudio, error) {
	return s.FindEstudio(ctx, estudioID)
}

func (s *InMemory) FindEstudioBySolicitud(_ context.Context, solicitudID id.SolicitudID) (*models.Estudio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.estudios {
		if e.SolicitudID == solicitudID {
			e = s.withOwnershipLocked(e)
			return &e, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListEstudios(_ context.Context, filter models.EstudioFilter) ([]models.Estudio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var withEstado map[id.EstudioID]bool
	if filter.Estado != "" {
		withEstado = make(map[id.EstudioID]bool)
		for _, it := range s.items {
			if it.Estado == filter.Estado {
				withEstado[it.EstudioID] = true
			}
		}
	}

	out := make([]models.Estudio, 0)
	for _, e := range s.estudios {
		e = s.withOwnershipLocked(e)
		if !filter.Matches(e.Ownership) {
			continue
		}
		if withEstado != nil && !withEstado[e.ID] {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Ownership.SolicitudCreatedAt, out[j].Ownership.SolicitudCreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return s.order[out[i].SolicitudID] > s.order[out[j].SolicitudID]
	})
	return out, nil
}

func (s *InMemory) UpdateEstudio(_ context.Context, e *models.Estudio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.estudios[e.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != e.Version-1 {
		return sentinel.ErrConflict
	}
	stored.Progreso = e.Progreso
	stored.ScoreCuantitativo = e.ScoreCuantitativo
	stored.NivelCualitativo = e.NivelCualitativo
	stored.AutorizacionFirmada = e.AutorizacionFirmada
	stored.AutorizacionFecha = e.AutorizacionFecha
	stored.Version = e.Version
	stored.UpdatedAt = e.UpdatedAt
	s.estudios[e.ID] = stored
	return nil
}

// -----------------------------------------------------------------------------
// Items
// -----------------------------------------------------------------------------

func (s *InMemory) CreateItem(_ context.Context, it *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[it.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.estudios[it.EstudioID]; !ok {
		return sentinel.ErrNotFound
	}
	s.items[it.ID] = *it
	s.track(it.ID)
	return nil
}

func (s *InMemory) FindItem(_ context.Context, itemID id.ItemID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &it, nil
}

func (s *InMemory) ListItems(_ context.Context, estudioID id.EstudioID) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Item, 0)
	for _, it := range s.items {
		if it.EstudioID == estudioID {
			out = append(out, it)
		}
	}
	s.sortItemsLocked(out)
	return out, nil
}

func (s *InMemory) FindItemsByIDs(_ context.Context, estudioID id.EstudioID, ids []id.ItemID) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[id.ItemID]bool, len(ids))
	out := make([]models.Item, 0, len(ids))
	for _, itemID := range ids {
		if seen[itemID] {
			continue
		}
		seen[itemID] = true
		if it, ok := s.items[itemID]; ok && it.EstudioID == estudioID {
			out = append(out, it)
		}
	}
	s.sortItemsLocked(out)
	return out, nil
}

func (s *InMemory) UpdateItem(_ context.Context, it *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[it.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Estado = it.Estado
	stored.Puntaje = it.Puntaje
	stored.Comentario = it.Comentario
	stored.UpdatedAt = it.UpdatedAt
	s.items[it.ID] = stored
	return nil
}

func (s *InMemory) sortItemsLocked(items []models.Item) {
	sort.Slice(items, func(i, j int) bool {
		return s.before(items[i].CreatedAt.UnixNano(), items[i].ID, items[j].CreatedAt.UnixNano(), items[j].ID)
	})
}

// -----------------------------------------------------------------------------
// Consents
// -----------------------------------------------------------------------------

func (s *InMemory) CreateConsent(_ context.Context, c *models.Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.consents[c.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.estudios[c.EstudioID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.consents {
		if existing.EstudioID == c.EstudioID && existing.Tipo == c.Tipo {
			return sentinel.ErrConflict
		}
	}
	stored := *c
	stored.Firma = slices.Clone(c.Firma)
	s.consents[c.ID] = stored
	return nil
}

// ListConsents returns the study's consents in catalog order.
func (s *InMemory) ListConsents(_ context.Context, estudioID id.EstudioID) ([]models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rank := make(map[models.ConsentTipo]int)
	for i, tipo := range models.ConsentCatalog() {
		rank[tipo] = i
	}
	out := make([]models.Consent, 0, len(rank))
	for _, c := range s.consents {
		if c.EstudioID == estudioID {
			c.Firma = slices.Clone(c.Firma)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return rank[out[i].Tipo] < rank[out[j].Tipo] })
	return out, nil
}

func (s *InMemory) FindConsent(_ context.Context, estudioID id.EstudioID, tipo models.ConsentTipo) (*models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.consents {
		if c.EstudioID == estudioID && c.Tipo == tipo {
			c.Firma = slices.Clone(c.Firma)
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) UpdateConsent(_ context.Context, c *models.Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.consents[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	stored := *c
	stored.Firma = slices.Clone(c.Firma)
	s.consents[c.ID] = stored
	return nil
}

// -----------------------------------------------------------------------------
// Anexos
// -----------------------------------------------------------------------------

func (s *InMemory) CreateAnexo(_ context.Context, a *models.Anexo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.anexos[a.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.estudios[a.EstudioID]; !ok {
		return sentinel.ErrNotFound
	}
	s.anexos[a.ID] = copyAnexo(*a)
	s.track(a.ID)
	return nil
}

func (s *InMemory) FindAnexo(_ context.Context, anexoID id.AnexoID) (*models.Anexo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.anexos[anexoID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	a = copyAnexo(a)
	return &a, nil
}

func (s *InMemory) ListAnexos(_ context.Context, estudioID id.EstudioID, tipo models.AnexoTipo) ([]models.Anexo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Anexo, 0)
	for _, a := range s.anexos {
		if a.EstudioID != estudioID || (tipo != "" && a.Tipo != tipo) {
			continue
		}
		out = append(out, copyAnexo(a))
	}
	sort.Slice(out, func(i, j int) bool {
		return s.before(out[i].CreatedAt.UnixNano(), out[i].ID, out[j].CreatedAt.UnixNano(), out[j].ID)
	})
	return out, nil
}

func (s *InMemory) UpdateAnexo(_ context.Context, a *models.Anexo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.anexos[a.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.anexos[a.ID] = copyAnexo(*a)
	return nil
}

func (s *InMemory) DeleteAnexo(_ context.Context, anexoID id.AnexoID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.anexos[anexoID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.anexos, anexoID)
	delete(s.order, anexoID)
	return nil
}

func copyAnexo(a models.Anexo) models.Anexo {
	a.Desde = cloneTime(a.Desde)
	a.Hasta = cloneTime(a.Hasta)
	return a
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// before orders by timestamp, then insertion order. Caller holds mu.
func (s *InMemory) before(ti int64, ki any, tj int64, kj any) bool {
	if ti != tj {
		return ti < tj
	}
	return s.order[ki] < s.order[kj]
}
