//go:build integration

package inbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"estudios/pkg/testutil/containers"
)

func TestRedisInbox(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.NewRedisContainer(t)
	t.Cleanup(func() { _ = rc.Client.Close() })
	require.NoError(t, rc.FlushAll(context.Background()))

	exerciseStore(t, NewRedis(rc.Client))
}
