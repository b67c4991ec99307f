package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	mirrorOnlineSetKey = "presence:online"
	mirrorUserPrefix   = "presence:user:"
)

// RedisMirror publishes the registry's online set to Redis so other processes
// can see who is connected to this server. Per-user keys expire after ttl, so
// a crashed server's entries disappear without a clean shutdown.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMirror returns a mirror writing through client with per-user key ttl.
func NewRedisMirror(client *redis.Client, ttl time.Duration) *RedisMirror {
	return &RedisMirror{client: client, ttl: ttl}
}

// Sync replaces the mirrored set with online.
func (m *RedisMirror) Sync(ctx context.Context, online []string) error {
	previous, err := m.client.SMembers(ctx, mirrorOnlineSetKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read mirrored online set: %w", err)
	}

	current := make(map[string]struct{}, len(online))
	for _, id := range online {
		current[id] = struct{}{}
	}

	now := time.Now().Unix()

	_, err = m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, mirrorOnlineSetKey)

		for _, id := range previous {
			if _, ok := current[id]; !ok {
				pipe.Del(ctx, mirrorUserPrefix+id)
			}
		}

		if len(online) == 0 {
			return nil
		}

		members := make([]any, 0, len(online))
		for _, id := range online {
			members = append(members, id)
			pipe.Set(ctx, mirrorUserPrefix+id, now, m.ttl)
		}
		pipe.SAdd(ctx, mirrorOnlineSetKey, members...)
		pipe.Expire(ctx, mirrorOnlineSetKey, m.ttl)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mirror online set: %w", err)
	}

	return nil
}

// Members returns the user IDs in the mirrored online set whose per-user key
// has not expired.
func (m *RedisMirror) Members(ctx context.Context) ([]string, error) {
	ids, err := m.client.SMembers(ctx, mirrorOnlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read mirrored online set: %w", err)
	}

	if len(ids) == 0 {
		return []string{}, nil
	}

	cmds := make([]*redis.IntCmd, len(ids))
	_, err = m.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.Exists(ctx, mirrorUserPrefix+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check mirrored users: %w", err)
	}

	live := make([]string, 0, len(ids))
	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			live = append(live, ids[i])
		}
	}

	return live, nil
}
