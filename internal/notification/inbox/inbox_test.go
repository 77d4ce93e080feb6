package inbox

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estudios/internal/notification/models"
	id "estudios/pkg/domain"
)

func entry(user id.UserID, at time.Time, titulo string) models.Notificacion {
	return models.Notificacion{
		ID:        id.NotificacionID(uuid.New()),
		UserID:    user,
		Tipo:      models.TipoNuevaSolicitud,
		Titulo:    titulo,
		CreatedAt: at,
	}
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	user := id.UserID(uuid.New())
	other := id.UserID(uuid.New())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Add(ctx, entry(user, base, "primera")))
	require.NoError(t, store.Add(ctx, entry(user, base.Add(time.Minute), "segunda")))
	require.NoError(t, store.Add(ctx, entry(other, base, "ajena")))

	list, err := store.List(ctx, user, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "segunda", list[0].Titulo, "newest first")

	marked, err := store.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	unread, err := store.List(ctx, user, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	marked, err = store.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, marked)

	otherUnread, err := store.List(ctx, other, true)
	require.NoError(t, err)
	assert.Len(t, otherUnread, 1)
}

func TestInMemory(t *testing.T) {
	exerciseStore(t, NewInMemory())
}
