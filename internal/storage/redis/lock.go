package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/rajamantri/internal/model"
)

// releaseScript deletes the lock only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// LockRoom takes a SET NX PX lock on the room, polling until it is free or ctx is done.
// A holder that dies releases the room after LockTTL.
func (s *Storage) LockRoom(ctx context.Context, id model.RoomID) (func(), error) {
	key := roomLockKey(id)
	token := uuid.NewString()

	retry := s.cfg.LockRetryInterval
	if retry <= 0 {
		retry = 10 * time.Millisecond
	}

	for {
		ok, err := s.client.SetNX(ctx, key, token, s.cfg.LockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled; release regardless
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, s.client, []string{key}, token).Err()
		})
	}, nil
}
