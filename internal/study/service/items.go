package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"estudios/internal/access"
	"estudios/internal/audit"
	"estudios/internal/study/models"
	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/requestcontext"
)

// ItemUpdate is one entry of a bulk update. Estado HALLAZGO flags a finding;
// any other value validates the item.
type ItemUpdate struct {
	ID         id.ItemID
	Estado     models.ItemEstado
	Puntaje    float64
	Comentario string
}

// ValidateItem marks an item VALIDADO and recomputes its study.
func (s *Service) ValidateItem(ctx context.Context, itemID id.ItemID, score float64, comentario string) (*access.ItemView, error) {
	return s.mutateItem(ctx, "study.validate_item", itemID, score, audit.ActionItemValidated,
		func(it *models.Item, now time.Time) error {
			return it.Validate(score, comentario, now)
		})
}

// FlagFinding marks an item HALLAZGO and recomputes its study.
func (s *Service) FlagFinding(ctx context.Context, itemID id.ItemID, score float64, comentario string) (*access.ItemView, error) {
	return s.mutateItem(ctx, "study.flag_finding", itemID, score, audit.ActionItemFinding,
		func(it *models.Item, now time.Time) error {
			return it.FlagFinding(score, comentario, now)
		})
}

func (s *Service) mutateItem(
	ctx context.Context,
	spanName string,
	itemID id.ItemID,
	score float64,
	action audit.Action,
	apply func(it *models.Item, now time.Time) error,
) (view *access.ItemView, err error) {
	ctx, span := startSpan(ctx, spanName, attribute.String("item.id", itemID.String()))
	defer func() { endSpan(span, err) }()

	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(access.ActionMutateItem); err != nil {
		return nil, err
	}
	if err := models.CheckScore(score); err != nil {
		return nil, err
	}

	item, err := s.items.FindItem(ctx, itemID)
	if err != nil {
		return nil, translateStoreError(err, "Item no encontrado.", "failed to load item")
	}
	if _, err := s.loadEstudio(ctx, caller, policy, item.EstudioID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Item no encontrado.")
		}
		return nil, err
	}

	now := requestcontext.Now(ctx)
	start := time.Now()
	var estudio *models.Estudio
	err = s.tx.RunInTx(WithTxKey(ctx, item.EstudioID.String()), func(txCtx context.Context) error {
		e, err := s.lockEstudio(txCtx, item.EstudioID)
		if err != nil {
			return err
		}
		current, err := s.items.FindItem(txCtx, itemID)
		if err != nil {
			return translateStoreError(err, "Item no encontrado.", "failed to load item")
		}
		if err := apply(current, now); err != nil {
			return err
		}
		if err := s.items.UpdateItem(txCtx, current); err != nil {
			return translateStoreError(err, "Item no encontrado.", "failed to update item")
		}
		if err := s.recompute(txCtx, e, now); err != nil {
			return err
		}
		item, estudio = current, e
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}
	s.metrics.ObserveMutation(start)
	s.metrics.IncItemMutated(string(item.Estado))

	s.emitAudit(ctx, caller, action, item.ID.String(), map[string]string{
		"estudio_id": item.EstudioID.String(),
		"estado":     string(item.Estado),
		"puntaje":    strconv.FormatFloat(item.Puntaje, 'f', -1, 64),
		"progreso":   formatProgreso(estudio.Progreso),
	})
	if action == audit.ActionItemValidated {
		s.notifyItemValidated(ctx, estudio, item)
	}

	v := policy.Item(*item)
	return &v, nil
}

// BulkUpdate applies updates to the items of one study and recomputes once.
// Ids that are unknown or belong to another study are skipped.
func (s *Service) BulkUpdate(ctx context.Context, estudioID id.EstudioID, updates []ItemUpdate) (updated int, err error) {
	ctx, span := startSpan(ctx, "study.bulk_update",
		attribute.String("estudio.id", estudioID.String()),
		attribute.Int("items.requested", len(updates)),
	)
	defer func() { endSpan(span, err) }()

	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return 0, err
	}
	if err := policy.Require(access.ActionMutateItem); err != nil {
		return 0, err
	}
	for i, u := range updates {
		if err := models.CheckScore(u.Puntaje); err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("items[%d]: puntaje inválido", i))
		}
	}
	if _, err := s.loadEstudio(ctx, caller, policy, estudioID); err != nil {
		return 0, err
	}

	ids := make([]id.ItemID, 0, len(updates))
	for _, u := range updates {
		if !u.ID.IsNil() {
			ids = append(ids, u.ID)
		}
	}

	now := requestcontext.Now(ctx)
	start := time.Now()
	var estudio *models.Estudio
	var validatedCount int
	err = s.tx.RunInTx(WithTxKey(ctx, estudioID.String()), func(txCtx context.Context) error {
		e, err := s.lockEstudio(txCtx, estudioID)
		if err != nil {
			return err
		}
		found, err := s.items.FindItemsByIDs(txCtx, estudioID, ids)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load items")
		}
		byID := make(map[id.ItemID]*models.Item, len(found))
		for i := range found {
			byID[found[i].ID] = &found[i]
		}

		count, validated := 0, 0
		for _, u := range updates {
			it, ok := byID[u.ID]
			if !ok {
				continue
			}
			if u.Estado == models.EstadoHallazgo {
				err = it.FlagFinding(u.Puntaje, u.Comentario, now)
			} else {
				err = it.Validate(u.Puntaje, u.Comentario, now)
			}
			if err != nil {
				return err
			}
			if err := s.items.UpdateItem(txCtx, it); err != nil {
				return translateStoreError(err, "Item no encontrado.", "failed to update item")
			}
			count++
			if it.Estado == models.EstadoValidado {
				validated++
			}
		}
		if err := s.recompute(txCtx, e, now); err != nil {
			return err
		}
		updated, validatedCount, estudio = count, validated, e
		return nil
	})
	if err != nil {
		return 0, txError(err)
	}
	s.metrics.ObserveMutation(start)

	s.emitAudit(ctx, caller, audit.ActionItemsBulkUpdated, estudioID.String(), map[string]string{
		"requested": strconv.Itoa(len(updates)),
		"updated":   strconv.Itoa(updated),
		"progreso":  formatProgreso(estudio.Progreso),
	})
	if validatedCount > 0 {
		s.notifyBulkValidated(ctx, estudio, validatedCount)
	}
	return updated, nil
}

// AddItem creates a PENDIENTE item on a study and recomputes it. An empty
// tipo defaults to LISTAS_RESTRICTIVAS.
func (s *Service) AddItem(ctx context.Context, estudioID id.EstudioID, tipo string) (view *access.ItemView, err error) {
	ctx, span := startSpan(ctx, "study.add_item", attribute.String("estudio.id", estudioID.String()))
	defer func() { endSpan(span, err) }()

	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(access.ActionMutateItem); err != nil {
		return nil, err
	}
	itemTipo, err := models.ParseItemTipo(tipo)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadEstudio(ctx, caller, policy, estudioID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	start := time.Now()
	var item *models.Item
	err = s.tx.RunInTx(WithTxKey(ctx, estudioID.String()), func(txCtx context.Context) error {
		e, err := s.lockEstudio(txCtx, estudioID)
		if err != nil {
			return err
		}
		it, err := models.NewItem(id.NewItemID(), estudioID, itemTipo, now)
		if err != nil {
			return err
		}
		if err := s.items.CreateItem(txCtx, it); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create item")
		}
		if err := s.recompute(txCtx, e, now); err != nil {
			return err
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}
	s.metrics.ObserveMutation(start)

	s.emitAudit(ctx, caller, audit.ActionItemAdded, item.ID.String(), map[string]string{
		"estudio_id": estudioID.String(),
		"tipo":       string(item.Tipo),
	})
	v := policy.Item(*item)
	return &v, nil
}

// GetItem reads one item under row scope and redaction.
func (s *Service) GetItem(ctx context.Context, itemID id.ItemID) (*access.ItemView, error) {
	caller, policy, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.items.FindItem(ctx, itemID)
	if err != nil {
		return nil, translateStoreError(err, "Item no encontrado.", "failed to load item")
	}
	if _, err := s.loadEstudio(ctx, caller, policy, item.EstudioID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Item no encontrado.")
		}
		return nil, err
	}
	v := policy.Item(*item)
	return &v, nil
}

// recompute derives progress, score and level from the current items and
// persists them on e. It must run inside the transaction holding e's lock.
func (s *Service) recompute(ctx context.Context, e *models.Estudio, now time.Time) error {
	items, err := s.items.ListItems(ctx, e.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	e.ApplyDerived(models.Derive(items), now)
	return s.saveEstudio(ctx, e)
}

func formatProgreso(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
