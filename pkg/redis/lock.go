package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when another holder owns the machine lock.
var ErrLockHeld = errors.New("machine lock already held")

// Compare-and-delete so a holder can only release its own token, never a
// lock that expired and was re-acquired by someone else.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// MachineLock is a single-holder advisory lock scoped to one machine.
type MachineLock struct {
	client *Client
	key    string
	token  string
}

// AcquireMachineLock takes the per-machine lock, or returns ErrLockHeld when
// an order for the machine is already being admitted.
func (c *Client) AcquireMachineLock(ctx context.Context, machineID string, ttl time.Duration) (*MachineLock, error) {
	key := c.MachineLockKey(machineID)
	token := uuid.NewString()

	ok, err := c.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return &MachineLock{client: c, key: key, token: token}, nil
}

// Release frees the lock if this holder still owns it.
func (l *MachineLock) Release(ctx context.Context) error {
	if l == nil || l.client == nil || l.client.store == nil {
		return nil
	}
	return l.client.store.Eval(ctx, releaseScript, []string{l.key}, l.token).Err()
}
