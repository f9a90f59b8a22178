package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "naijacare/pkg/domain-errors"
)

// ConsentStoreTx provides a transactional boundary for consent store mutations.
// Implementations may wrap a database transaction or, in-memory, a sharded lock.
type ConsentStoreTx interface {
	RunInTx(ctx context.Context, subjectID string, fn func(ctx context.Context) error) error
}

// Operations are distributed across shards by a hash of the subject ID so
// unrelated subjects rarely contend.
const numConsentShards = 128

// defaultConsentTxTimeout is the maximum duration for a consent transaction.
const defaultConsentTxTimeout = 5 * time.Second

type shardedConsentTx struct {
	shards  [numConsentShards]sync.Mutex
	timeout time.Duration
}

func newShardedConsentTx() *shardedConsentTx {
	return &shardedConsentTx{timeout: defaultConsentTxTimeout}
}

func (t *shardedConsentTx) RunInTx(ctx context.Context, subjectID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultConsentTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := shardFor(subjectID)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

func shardFor(subjectID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectID))
	return h.Sum32() % numConsentShards
}
