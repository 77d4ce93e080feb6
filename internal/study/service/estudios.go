package service

import (
	"context"
	"strings"
	"time"

	"estudios/internal/access"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

// ListFilter holds the caller-supplied estudio filters. Row scope is always
// derived from the caller and cannot be widened here.
type ListFilter struct {
	Estado models.ItemEstado
	// Desde and Hasta are calendar days at midnight UTC, both inclusive.
	Desde  *time.Time
	Hasta  *time.Time
	Cedula string
}

// GetEstudio reads a study with its items, redacted for the caller.
func (s *Service) GetEstudio(ctx context.Context, estudioID id.EstudioID) (*access.EstudioView, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.loadEstudio(ctx, caller, policy, estudioID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListItems(ctx, e.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	v := policy.Estudio(e, items)
	return &v, nil
}

// ListEstudios returns the studies visible to the caller, newest solicitud first.
func (s *Service) ListEstudios(ctx context.Context, f ListFilter) ([]access.EstudioView, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if f.Estado != "" && !f.Estado.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "estado inválido")
	}
	scope := policy.RowScope(caller)
	if scope.Kind == models.ScopeNone {
		return []access.EstudioView{}, nil
	}

	filter := models.EstudioFilter{
		Scope:  scope,
		Estado: f.Estado,
		Desde:  f.Desde,
		Hasta:  f.Hasta,
		Cedula: strings.TrimSpace(f.Cedula),
	}

	estudios, err := s.estudios.ListEstudios(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list estudios")
	}
	out := make([]access.EstudioView, 0, len(estudios))
	for i := range estudios {
		items, err := s.items.ListItems(ctx, estudios[i].ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
		}
		out = append(out, policy.Estudio(&estudios[i], items))
	}
	return out, nil
}

// Summary aggregates a study for reporting, redacted for the caller.
func (s *Service) Summary(ctx context.Context, estudioID id.EstudioID) (*models.Summary, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.loadEstudio(ctx, caller, policy, estudioID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListItems(ctx, e.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	summary := policy.Summary(models.BuildSummary(e, items))
	return &summary, nil
}
