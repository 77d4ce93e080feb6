package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"estudios/pkg/domain"
)

func TestCaller(t *testing.T) {
	_, ok := Caller(context.Background())
	assert.False(t, ok)

	want := domain.Caller{UserID: domain.UserID(uuid.New()), Role: domain.RoleAnalista, Email: "ana@demo.com"}
	got, ok := Caller(WithCaller(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestNow_FallsBackToWallClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))

	before := time.Now()
	assert.False(t, Now(context.Background()).Before(before))
}

func TestClientMetadata(t *testing.T) {
	ctx := WithClientMetadata(context.Background(), "10.0.0.1", "Mozilla/5.0")
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "Mozilla/5.0", UserAgent(ctx))
	assert.Empty(t, RequestID(ctx))
}
