package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	"estudios/pkg/platform/sentinel"
	"estudios/pkg/platform/tx"
)

// PostgresStore implements every study store port on PostgreSQL.
// Queries join the transaction carried in context when one is open.
// This store is pure I/O; derivation and authorization live in the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed study store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) q(ctx context.Context) tx.Execer {
	return tx.Use(ctx, s.db)
}

// translate maps driver errors onto store sentinels.
func translate(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
		case "23503":
			return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullableID[T ~[16]byte](v *T) any {
	if v == nil {
		return nil
	}
	return uuid.UUID(*v).String()
}

// -----------------------------------------------------------------------------
// Directory
// -----------------------------------------------------------------------------

func (s *PostgresStore) FindEmpresa(ctx context.Context, empresaID id.EmpresaID) (*models.Empresa, error) {
	var (
		e   models.Empresa
		raw uuid.UUID
	)
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, nombre, nit, email_contacto, created_at
		FROM empresas WHERE id = $1`, empresaID.String(),
	).Scan(&raw, &e.Nombre, &e.NIT, &e.EmailContacto, &e.CreatedAt)
	if err != nil {
		return nil, translate("find empresa", err)
	}
	e.ID = id.EmpresaID(raw)
	return &e, nil
}

func (s *PostgresStore) CreateEmpresa(ctx context.Context, e *models.Empresa) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO empresas (id, nombre, nit, email_contacto, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID.String(), e.Nombre, e.NIT, e.EmailContacto, e.CreatedAt,
	)
	if err != nil {
		return translate("create empresa", err)
	}
	return nil
}

const userColumns = `id, email, nombre, password_hash, rol, empresa_id, active, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		raw       uuid.UUID
		empresaID uuid.NullUUID
		role      string
	)
	if err := row.Scan(&raw, &u.Email, &u.Nombre, &u.PasswordHash, &role, &empresaID, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(raw)
	u.Role = id.Role(role)
	if empresaID.Valid {
		e := id.EmpresaID(empresaID.UUID)
		u.EmpresaID = &e
	}
	return &u, nil
}

func (s *PostgresStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := scanUser(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID.String()))
	if err != nil {
		return nil, translate("find user", err)
	}
	return u, nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		return nil, translate("find user by email", err)
	}
	return u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO users (id, email, nombre, password_hash, rol, empresa_id, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID.String(), u.Email, u.Nombre, u.PasswordHash, string(u.Role), nullableID(u.EmpresaID), u.Active, u.CreatedAt,
	)
	if err != nil {
		return translate("create user", err)
	}
	return nil
}

func (s *PostgresStore) FirstActiveAnalista(ctx context.Context, empresaID *id.EmpresaID) (*models.User, error) {
	u, err := scanUser(s.q(ctx).QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE rol = $1 AND active AND ($2::uuid IS NULL OR empresa_id = $2::uuid)
		ORDER BY created_at, seq
		LIMIT 1`,
		string(id.RoleAnalista), nullableID(empresaID),
	))
	if err != nil {
		return nil, translate("first active analista", err)
	}
	return u, nil
}

const candidatoColumns = `id, nombre, apellido, cedula, email, celular, ciudad_residencia,
	tipo_documento, fecha_nacimiento, direccion, barrio, departamento, municipio, telefono, eps,
	perfil_aspirante, estudia_actualmente, created_at, updated_at`

func scanCandidato(row rowScanner) (*models.Candidato, error) {
	var (
		c          models.Candidato
		raw        uuid.UUID
		tipoDoc    string
		nacimiento sql.NullTime
	)
	if err := row.Scan(&raw, &c.Nombre, &c.Apellido, &c.Cedula, &c.Email, &c.Celular, &c.CiudadResidencia,
		&tipoDoc, &nacimiento, &c.Direccion, &c.Barrio, &c.Departamento, &c.Municipio, &c.Telefono, &c.EPS,
		&c.PerfilAspirante, &c.EstudiaActualmente, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CandidatoID(raw)
	c.TipoDocumento = models.TipoDocumento(tipoDoc)
	if nacimiento.Valid {
		t := nacimiento.Time
		c.FechaNacimiento = &t
	}
	return &c, nil
}

func (s *PostgresStore) FindCandidato(ctx context.Context, candidatoID id.CandidatoID) (*models.Candidato, error) {
	c, err := scanCandidato(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+candidatoColumns+` FROM candidatos WHERE id = $1`, candidatoID.String()))
	if err != nil {
		return nil, translate("find candidato", err)
	}
	return c, nil
}

func (s *PostgresStore) FindCandidatoByCedula(ctx context.Context, cedula string) (*models.Candidato, error) {
	c, err := scanCandidato(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+candidatoColumns+` FROM candidatos WHERE cedula = $1`, cedula))
	if err != nil {
		return nil, translate("find candidato by cedula", err)
	}
	return c, nil
}

func (s *PostgresStore) FindCandidatoByEmail(ctx context.Context, email string) (*models.Candidato, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("find candidato by email: %w", sentinel.ErrNotFound)
	}
	c, err := scanCandidato(s.q(ctx).QueryRowContext(ctx, `
		SELECT `+candidatoColumns+`
		FROM candidatos
		WHERE lower(email) = lower($1)
		ORDER BY created_at DESC, seq DESC
		LIMIT 1`, email))
	if err != nil {
		return nil, translate("find candidato by email", err)
	}
	return c, nil
}

func (s *PostgresStore) CreateCandidato(ctx context.Context, c *models.Candidato) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO candidatos (`+candidatoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		c.ID.String(), c.Nombre, c.Apellido, c.Cedula, c.Email, c.Celular, c.CiudadResidencia,
		string(c.TipoDocumento), c.FechaNacimiento, c.Direccion, c.Barrio, c.Departamento, c.Municipio,
		c.Telefono, c.EPS, c.PerfilAspirante, c.EstudiaActualmente, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return translate("create candidato", err)
	}
	return nil
}

// UpdateCandidato writes the editable profile. Cedula and email stay fixed.
func (s *PostgresStore) UpdateCandidato(ctx context.Context, c *models.Candidato) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE candidatos
		SET nombre = $2, apellido = $3, celular = $4, ciudad_residencia = $5, tipo_documento = $6,
		    fecha_nacimiento = $7, direccion = $8, barrio = $9, departamento = $10, municipio = $11,
		    telefono = $12, eps = $13, perfil_aspirante = $14, estudia_actualmente = $15, updated_at = $16
		WHERE id = $1`,
		c.ID.String(), c.Nombre, c.Apellido, c.Celular, c.CiudadResidencia, string(c.TipoDocumento),
		c.FechaNacimiento, c.Direccion, c.Barrio, c.Departamento, c.Municipio,
		c.Telefono, c.EPS, c.PerfilAspirante, c.EstudiaActualmente, c.UpdatedAt,
	)
	if err != nil {
		return translate("update candidato", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update candidato: %w", sentinel.ErrNotFound)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Solicitudes
// -----------------------------------------------------------------------------

const solicitudSelect = `
	SELECT s.id, s.empresa_id, s.candidato_id, s.analista_id, s.estado, s.observaciones,
	       s.created_at, s.updated_at, c.email, c.cedula
	FROM solicitudes s
	JOIN candidatos c ON c.id = s.candidato_id`

func scanSolicitud(row rowScanner) (*models.Solicitud, error) {
	var (
		sol                           models.Solicitud
		rawID, rawEmpresa, rawCand    uuid.UUID
		analista                      uuid.NullUUID
		estado, candEmail, candCedula string
	)
	if err := row.Scan(&rawID, &rawEmpresa, &rawCand, &analista, &estado, &sol.Observaciones,
		&sol.CreatedAt, &sol.UpdatedAt, &candEmail, &candCedula); err != nil {
		return nil, err
	}
	sol.ID = id.SolicitudID(rawID)
	sol.EmpresaID = id.EmpresaID(rawEmpresa)
	sol.CandidatoID = id.CandidatoID(rawCand)
	sol.Estado = models.SolicitudEstado(estado)
	if analista.Valid {
		a := id.UserID(analista.UUID)
		sol.AnalistaID = &a
	}
	sol.Ownership = models.Ownership{
		EmpresaID:          sol.EmpresaID,
		AnalistaID:         sol.AnalistaID,
		CandidatoEmail:     candEmail,
		CandidatoCedula:    candCedula,
		SolicitudCreatedAt: sol.CreatedAt,
	}
	return &sol, nil
}

func (s *PostgresStore) CreateSolicitud(ctx context.Context, sol *models.Solicitud) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO solicitudes (id, empresa_id, candidato_id, analista_id, estado, observaciones, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sol.ID.String(), sol.EmpresaID.String(), sol.CandidatoID.String(), nullableID(sol.AnalistaID),
		string(sol.Estado), sol.Observaciones, sol.CreatedAt, sol.UpdatedAt,
	)
	if err != nil {
		return translate("create solicitud", err)
	}
	return nil
}

func (s *PostgresStore) FindSolicitud(ctx context.Context, solicitudID id.SolicitudID) (*models.Solicitud, error) {
	sol, err := scanSolicitud(s.q(ctx).QueryRowContext(ctx, solicitudSelect+` WHERE s.id = $1`, solicitudID.String()))
	if err != nil {
		return nil, translate("find solicitud", err)
	}
	return sol, nil
}

func (s *PostgresStore) ListSolicitudes(ctx context.Context, scope models.RowScope) ([]models.Solicitud, error) {
	where, args, ok := scopeClause(scope, nil)
	if !ok {
		return []models.Solicitud{}, nil
	}
	query := solicitudSelect + where + ` ORDER BY s.created_at DESC, s.seq DESC`
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("list solicitudes", err)
	}
	defer rows.Close()

	out := make([]models.Solicitud, 0)
	for rows.Next() {
		sol, err := scanSolicitud(rows)
		if err != nil {
			return nil, translate("scan solicitud", err)
		}
		out = append(out, *sol)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list solicitudes", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateSolicitud(ctx context.Context, sol *models.Solicitud) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE solicitudes
		SET analista_id = $2, estado = $3, observaciones = $4, updated_at = $5
		WHERE id = $1`,
		sol.ID.String(), nullableID(sol.AnalistaID), string(sol.Estado), sol.Observaciones, sol.UpdatedAt,
	)
	if err != nil {
		return translate("update solicitud", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update solicitud: %w", sentinel.ErrNotFound)
	}
	return nil
}

// scopeClause renders a row scope as a WHERE clause over the s (solicitudes)
// and c (candidatos) aliases. ok is false when the scope admits no rows.
func scopeClause(scope models.RowScope, args []any) (string, []any, bool) {
	switch scope.Kind {
	case models.ScopeAll:
		return ` WHERE TRUE`, args, true
	case models.ScopeEmpresa:
		args = append(args, scope.EmpresaID.String())
		return fmt.Sprintf(` WHERE s.empresa_id = $%d`, len(args)), args, true
	case models.ScopeAnalista:
		args = append(args, scope.AnalistaID.String())
		return fmt.Sprintf(` WHERE s.analista_id = $%d`, len(args)), args, true
	case models.ScopeCandidato:
		if scope.CandidatoEmail == "" {
			return "", nil, false
		}
		args = append(args, scope.CandidatoEmail)
		return fmt.Sprintf(` WHERE c.email <> '' AND lower(c.email) = lower($%d)`, len(args)), args, true
	default:
		return "", nil, false
	}
}
