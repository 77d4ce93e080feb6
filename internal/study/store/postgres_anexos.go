package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	"estudios/pkg/platform/sentinel"
)

const anexoColumns = `id, estudio_id, candidato_id, tipo, titulo, entidad, desde, hasta, detalle, archivo, created_at, updated_at`

func scanAnexo(row rowScanner) (*models.Anexo, error) {
	var (
		a                    models.Anexo
		rawID, rawEst, rawCa uuid.UUID
		tipo                 string
		desde, hasta         sql.NullTime
	)
	if err := row.Scan(&rawID, &rawEst, &rawCa, &tipo, &a.Titulo, &a.Entidad, &desde, &hasta,
		&a.Detalle, &a.Archivo, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ID = id.AnexoID(rawID)
	a.EstudioID = id.EstudioID(rawEst)
	a.CandidatoID = id.CandidatoID(rawCa)
	a.Tipo = models.AnexoTipo(tipo)
	if desde.Valid {
		t := desde.Time
		a.Desde = &t
	}
	if hasta.Valid {
		t := hasta.Time
		a.Hasta = &t
	}
	return &a, nil
}

func (s *PostgresStore) CreateAnexo(ctx context.Context, a *models.Anexo) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO anexos (`+anexoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID.String(), a.EstudioID.String(), a.CandidatoID.String(), string(a.Tipo), a.Titulo, a.Entidad,
		a.Desde, a.Hasta, a.Detalle, a.Archivo, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return translate("create anexo", err)
	}
	return nil
}

func (s *PostgresStore) FindAnexo(ctx context.Context, anexoID id.AnexoID) (*models.Anexo, error) {
	a, err := scanAnexo(s.q(ctx).QueryRowContext(ctx,
		`SELECT `+anexoColumns+` FROM anexos WHERE id = $1`, anexoID.String()))
	if err != nil {
		return nil, translate("find anexo", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAnexos(ctx context.Context, estudioID id.EstudioID, tipo models.AnexoTipo) ([]models.Anexo, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+anexoColumns+`
		FROM anexos
		WHERE estudio_id = $1 AND ($2 = '' OR tipo = $2)
		ORDER BY created_at, seq`, estudioID.String(), string(tipo))
	if err != nil {
		return nil, translate("list anexos", err)
	}
	defer rows.Close()

	out := make([]models.Anexo, 0)
	for rows.Next() {
		a, err := scanAnexo(rows)
		if err != nil {
			return nil, translate("scan anexo", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list anexos", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateAnexo(ctx context.Context, a *models.Anexo) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE anexos
		SET titulo = $2, entidad = $3, desde = $4, hasta = $5, detalle = $6, archivo = $7, updated_at = $8
		WHERE id = $1`,
		a.ID.String(), a.Titulo, a.Entidad, a.Desde, a.Hasta, a.Detalle, a.Archivo, a.UpdatedAt,
	)
	if err != nil {
		return translate("update anexo", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update anexo: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteAnexo(ctx context.Context, anexoID id.AnexoID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM anexos WHERE id = $1`, anexoID.String())
	if err != nil {
		return translate("delete anexo", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete anexo: %w", sentinel.ErrNotFound)
	}
	return nil
}
