package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	"estudios/pkg/platform/sentinel"
)

// -----------------------------------------------------------------------------
// Estudios
// -----------------------------------------------------------------------------

const estudioSelect = `
	SELECT e.id, e.solicitud_id, e.progreso, e.score_cuantitativo, e.nivel_cualitativo,
	       e.autorizacion_firmada, e.autorizacion_fecha, e.version, e.created_at, e.updated_at,
	       s.empresa_id, s.analista_id, s.created_at, c.email, c.cedula
	FROM estudios e
	JOIN solicitudes s ON s.id = e.solicitud_id
	JOIN candidatos c ON c.id = s.candidato_id`

func scanEstudio(row rowScanner) (*models.Estudio, error) {
	var (
		e                    models.Estudio
		rawID, rawSol, rawEm uuid.UUID
		analista             uuid.NullUUID
		nivel                string
		fecha                sql.NullTime
	)
	if err := row.Scan(&rawID, &rawSol, &e.Progreso, &e.ScoreCuantitativo, &nivel,
		&e.AutorizacionFirmada, &fecha, &e.Version, &e.CreatedAt, &e.UpdatedAt,
		&rawEm, &analista, &e.Ownership.SolicitudCreatedAt, &e.Ownership.CandidatoEmail, &e.Ownership.CandidatoCedula); err != nil {
		return nil, err
	}
	e.ID = id.EstudioID(rawID)
	e.SolicitudID = id.SolicitudID(rawSol)
	e.NivelCualitativo = models.Nivel(nivel)
	if fecha.Valid {
		t := fecha.Time
		e.AutorizacionFecha = &t
	}
	e.Ownership.EmpresaID = id.EmpresaID(rawEm)
	if analista.Valid {
		a := id.UserID(analista.UUID)
		e.Ownership.AnalistaID = &a
	}
	return &e, nil
}

func (s *PostgresStore) CreateEstudio(ctx context.Context, e *models.Estudio) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO estudios (id, solicitud_id, progreso, score_cuantitativo, nivel_cualitativo,
		                      autorizacion_firmada, autorizacion_fecha, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID.String(), e.SolicitudID.String(), e.Progreso, e.ScoreCuantitativo, string(e.NivelCualitativo),
		e.AutorizacionFirmada, e.AutorizacionFecha, e.Version, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return translate("create estudio", err)
	}
	return nil
}

func (s *PostgresStore) FindEstudio(ctx context.Context, estudioID id.EstudioID) (*models.Estudio, error) {
	e, err := scanEstudio(s.q(ctx).QueryRowContext(ctx, estudioSelect+` WHERE e.id = $1`, estudioID.String()))
	if err != nil {
		return nil, translate("find estudio", err)
	}
	return e, nil
}

// FindEstudioForUpdate locks the estudio row until the surrounding
// transaction ends. Without a transaction in ctx the lock is released at once.
func (s *PostgresStore) FindEstudioForUpdate(ctx context.Context, estudioID id.EstudioID) (*models.Estudio, error) {
	e, err := scanEstudio(s.q(ctx).QueryRowContext(ctx, estudioSelect+` WHERE e.id = $1 FOR UPDATE OF e`, estudioID.String()))
	if err != nil {
		return nil, translate("lock estudio", err)
	}
	return e, nil
}

func (s *PostgresStore) FindEstudioBySolicitud(ctx context.Context, solicitudID id.SolicitudID) (*models.Estudio, error) {
	e, err := scanEstudio(s.q(ctx).QueryRowContext(ctx, estudioSelect+` WHERE e.solicitud_id = $1`, solicitudID.String()))
	if err != nil {
		return nil, translate("find estudio by solicitud", err)
	}
	return e, nil
}

func (s *PostgresStore) ListEstudios(ctx context.Context, filter models.EstudioFilter) ([]models.Estudio, error) {
	where, args, ok := scopeClause(filter.Scope, nil)
	if !ok {
		return []models.Estudio{}, nil
	}
	var b strings.Builder
	b.WriteString(estudioSelect)
	b.WriteString(where)
	if filter.Estado != "" {
		args = append(args, string(filter.Estado))
		fmt.Fprintf(&b, ` AND EXISTS (SELECT 1 FROM estudio_items i WHERE i.estudio_id = e.id AND i.estado = $%d)`, len(args))
	}
	if filter.Desde != nil {
		args = append(args, *filter.Desde)
		fmt.Fprintf(&b, ` AND s.created_at >= $%d`, len(args))
	}
	if filter.Hasta != nil {
		args = append(args, filter.Hasta.AddDate(0, 0, 1))
		fmt.Fprintf(&b, ` AND s.created_at < $%d`, len(args))
	}
	if filter.Cedula != "" {
		args = append(args, filter.Cedula)
		fmt.Fprintf(&b, ` AND strpos(c.cedula, $%d) > 0`, len(args))
	}
	b.WriteString(` ORDER BY s.created_at DESC, s.seq DESC`)

	rows, err := s.q(ctx).QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, translate("list estudios", err)
	}
	defer rows.Close()

	out := make([]models.Estudio, 0)
	for rows.Next() {
		e, err := scanEstudio(rows)
		if err != nil {
			return nil, translate("scan estudio", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list estudios", err)
	}
	return out, nil
}

// UpdateEstudio writes the derived fields when the stored version is the
// one the caller read.
func (s *PostgresStore) UpdateEstudio(ctx context.Context, e *models.Estudio) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE estudios
		SET progreso = $2, score_cuantitativo = $3, nivel_cualitativo = $4,
		    autorizacion_firmada = $5, autorizacion_fecha = $6, version = $7, updated_at = $8
		WHERE id = $1 AND version = $9`,
		e.ID.String(), e.Progreso, e.ScoreCuantitativo, string(e.NivelCualitativo),
		e.AutorizacionFirmada, e.AutorizacionFecha, e.Version, e.UpdatedAt, e.Version-1,
	)
	if err != nil {
		return translate("update estudio", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	var exists bool
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM estudios WHERE id = $1)`, e.ID.String()).Scan(&exists); err != nil {
		return translate("update estudio", err)
	}
	if !exists {
		return fmt.Errorf("update estudio: %w", sentinel.ErrNotFound)
	}
	return fmt.Errorf("update estudio: %w", sentinel.ErrConflict)
}

// -----------------------------------------------------------------------------
// Items
// -----------------------------------------------------------------------------

const itemColumns = `id, estudio_id, tipo, estado, puntaje, comentario, created_at, updated_at`

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		it            models.Item
		rawID, rawEst uuid.UUID
		tipo, estado  string
	)
	if err := row.Scan(&rawID, &rawEst, &tipo, &estado, &it.Puntaje, &it.Comentario, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.ID = id.ItemID(rawID)
	it.EstudioID = id.EstudioID(rawEst)
	it.Tipo = models.ItemTipo(tipo)
	it.Estado = models.ItemEstado(estado)
	return &it, nil
}

func (s *PostgresStore) queryItems(ctx context.Context, op, query string, args ...any) ([]models.Item, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer rows.Close()

	out := make([]models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, translate(op, err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(op, err)
	}
	return out, nil
}

func (s *PostgresStore) CreateItem(ctx context.Context, it *models.Item) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO estudio_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		it.ID.String(), it.EstudioID.String(), string(it.Tipo), string(it.Estado), it.Puntaje, it.Comentario, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return translate("create item", err)
	}
	return nil
}

func (s *PostgresStore) FindItem(ctx context.Context, itemID id.ItemID) (*models.Item, error) {
	it, err := scanItem(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM estudio_items WHERE id = $1`, itemID.String()))
	if err != nil {
		return nil, translate("find item", err)
	}
	return it, nil
}

func (s *PostgresStore) ListItems(ctx context.Context, estudioID id.EstudioID) ([]models.Item, error) {
	return s.queryItems(ctx, "list items", `
		SELECT `+itemColumns+`
		FROM estudio_items
		WHERE estudio_id = $1
		ORDER BY created_at, seq`, estudioID.String())
}

func (s *PostgresStore) FindItemsByIDs(ctx context.Context, estudioID id.EstudioID, ids []id.ItemID) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}
	raw := make([]string, 0, len(ids))
	for _, itemID := range ids {
		raw = append(raw, itemID.String())
	}
	return s.queryItems(ctx, "find items by ids", `
		SELECT `+itemColumns+`
		FROM estudio_items
		WHERE estudio_id = $1 AND id = ANY($2::uuid[])
		ORDER BY created_at, seq`, estudioID.String(), pq.Array(raw))
}

func (s *PostgresStore) UpdateItem(ctx context.Context, it *models.Item) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE estudio_items
		SET estado = $2, puntaje = $3, comentario = $4, updated_at = $5
		WHERE id = $1`,
		it.ID.String(), string(it.Estado), it.Puntaje, it.Comentario, it.UpdatedAt,
	)
	if err != nil {
		return translate("update item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update item: %w", sentinel.ErrNotFound)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Consents
// -----------------------------------------------------------------------------

const consentColumns = `id, estudio_id, tipo, aceptado, firmado_at, firma, ip, user_agent, created_at, updated_at`

func scanConsent(row rowScanner) (*models.Consent, error) {
	var (
		c             models.Consent
		rawID, rawEst uuid.UUID
		tipo          string
		firmadoAt     sql.NullTime
	)
	if err := row.Scan(&rawID, &rawEst, &tipo, &c.Aceptado, &firmadoAt, &c.Firma, &c.IP, &c.UserAgent, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.ConsentID(rawID)
	c.EstudioID = id.EstudioID(rawEst)
	c.Tipo = models.ConsentTipo(tipo)
	if firmadoAt.Valid {
		t := firmadoAt.Time
		c.FirmadoAt = &t
	}
	return &c, nil
}

func (s *PostgresStore) CreateConsent(ctx context.Context, c *models.Consent) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO consentimientos (`+consentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID.String(), c.EstudioID.String(), string(c.Tipo), c.Aceptado, c.FirmadoAt, c.Firma, c.IP, c.UserAgent, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return translate("create consent", err)
	}
	return nil
}

// ListConsents returns the study's consents in catalog order.
func (s *PostgresStore) ListConsents(ctx context.Context, estudioID id.EstudioID) ([]models.Consent, error) {
	catalog := make([]string, 0, 3)
	for _, tipo := range models.ConsentCatalog() {
		catalog = append(catalog, string(tipo))
	}
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+consentColumns+`
		FROM consentimientos
		WHERE estudio_id = $1
		ORDER BY array_position($2::text[], tipo), tipo`, estudioID.String(), pq.Array(catalog))
	if err != nil {
		return nil, translate("list consents", err)
	}
	defer rows.Close()

	out := make([]models.Consent, 0, len(catalog))
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, translate("scan consent", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list consents", err)
	}
	return out, nil
}

func (s *PostgresStore) FindConsent(ctx context.Context, estudioID id.EstudioID, tipo models.ConsentTipo) (*models.Consent, error) {
	c, err := scanConsent(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+consentColumns+` FROM consentimientos WHERE estudio_id = $1 AND tipo = $2`,
		estudioID.String(), string(tipo)))
	if err != nil {
		return nil, translate("find consent", err)
	}
	return c, nil
}

func (s *PostgresStore) UpdateConsent(ctx context.Context, c *models.Consent) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE consentimientos
		SET aceptado = $2, firmado_at = $3, firma = $4, ip = $5, user_agent = $6, updated_at = $7
		WHERE id = $1`,
		c.ID.String(), c.Aceptado, c.FirmadoAt, c.Firma, c.IP, c.UserAgent, c.UpdatedAt,
	)
	if err != nil {
		return translate("update consent", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update consent: %w", sentinel.ErrNotFound)
	}
	return nil
}
