package game

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStateTracker persists table snapshots to redis, keyed per
// session, so the latest state survives a game server restart.
type RedisStateTracker struct {
	rdclient *redis.Client
}

func NewRedisStateTracker(redisURL string, redisPW string, redisDB int) *RedisStateTracker {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	return &RedisStateTracker{
		rdclient: rdclient,
	}
}

func (r *RedisStateTracker) Load(sessionID int) (*TableSnapshot, error) {
	stateBytes, err := r.rdclient.Get(context.Background(), tableKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("table state for session %d is not found", sessionID)
	} else if err != nil {
		return nil, err
	}
	var snapshot TableSnapshot
	if err := json.Unmarshal([]byte(stateBytes), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *RedisStateTracker) Save(sessionID int, snapshot *TableSnapshot) error {
	stateBytes, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.rdclient.Set(context.Background(), tableKey(sessionID), stateBytes, 0).Err()
}

func (r *RedisStateTracker) Remove(sessionID int) error {
	return r.rdclient.Del(context.Background(), tableKey(sessionID)).Err()
}

func tableKey(sessionID int) string {
	return fmt.Sprintf("table:%d", sessionID)
}
