package service

import (
	"context"
	"sync"
	"time"

	dErrors "estudios/pkg/domain-errors"
)

// numStudyShards spreads estudio locks so unrelated studies do not contend.
const numStudyShards = 128

// defaultStudyTxTimeout is the maximum duration for an in-memory transaction.
const defaultStudyTxTimeout = 5 * time.Second

// ShardedTx serializes work on the same estudio with one of a fixed set of
// mutexes. It stands in for row locks when stores are in memory; it does not
// roll back partial writes, so callers validate before writing.
type ShardedTx struct {
	shards  [numStudyShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx(timeout time.Duration) *ShardedTx {
	return &ShardedTx{timeout: timeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultStudyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// selectShard picks a shard from the tx key in context, or shard 0.
func selectShard(ctx context.Context) int {
	if key, ok := ctx.Value(txKeyCtx).(string); ok && key != "" {
		return int(hashString(key) % numStudyShards)
	}
	return 0
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

type txKey struct{}

var txKeyCtx = txKey{}

// WithTxKey tags ctx with the aggregate a transaction will lock.
func WithTxKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, txKeyCtx, key)
}
