package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"assistant-backend/internal/conversation"
	"assistant-backend/internal/models"
)

// RedisStore keeps session metadata in "chat_session:<id>" and turns in the
// list "chat_session:<id>:turns". Both keys share the TTL, refreshed on write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func metaKey(id uuid.UUID) string  { return fmt.Sprintf("chat_session:%s", id) }
func turnsKey(id uuid.UUID) string { return fmt.Sprintf("chat_session:%s:turns", id) }

func (r *RedisStore) Create(ctx context.Context, s *models.ChatSession) error {
	meta := *s
	meta.Turns = nil
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, metaKey(s.ID), data, r.ttl)
	pipe.Del(ctx, turnsKey(s.ID))
	if len(s.Turns) > 0 {
		if err := pushTurns(ctx, pipe, s.ID, s.Turns); err != nil {
			return err
		}
		pipe.Expire(ctx, turnsKey(s.ID), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	data, err := r.client.Get(ctx, metaKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var s models.ChatSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	raw, err := r.client.LRange(ctx, turnsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load turns for session %s: %w", id, err)
	}
	s.Turns = make([]conversation.Turn, 0, len(raw))
	for _, item := range raw {
		var turn conversation.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("failed to decode turn for session %s: %w", id, err)
		}
		s.Turns = append(s.Turns, turn)
	}
	return &s, nil
}

// appendScript pushes turns only while the meta key exists and refreshes the
// TTL of both keys. Returns 0 when the session is gone, leaving no turns list
// behind.
var appendScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
local ttl = tonumber(ARGV[1])
if #ARGV > 1 then
	redis.call("RPUSH", KEYS[2], unpack(ARGV, 2))
end
if ttl > 0 then
	redis.call("PEXPIRE", KEYS[1], ttl)
	redis.call("PEXPIRE", KEYS[2], ttl)
end
return 1
`)

func (r *RedisStore) Append(ctx context.Context, id uuid.UUID, turns ...conversation.Turn) error {
	args := make([]interface{}, 0, len(turns)+1)
	args = append(args, r.ttl.Milliseconds())
	encoded, err := encodeTurns(turns)
	if err != nil {
		return err
	}
	args = append(args, encoded...)

	ok, err := appendScript.Run(ctx, r.client, []string{metaKey(id), turnsKey(id)}, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to append to session %s: %w", id, err)
	}
	if ok == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.client.Del(ctx, metaKey(id), turnsKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeTurns(turns []conversation.Turn) ([]interface{}, error) {
	values := make([]interface{}, len(turns))
	for i, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return nil, fmt.Errorf("failed to encode turn: %w", err)
		}
		values[i] = string(data)
	}
	return values, nil
}

func pushTurns(ctx context.Context, pipe redis.Pipeliner, id uuid.UUID, turns []conversation.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values, err := encodeTurns(turns)
	if err != nil {
		return err
	}
	pipe.RPush(ctx, turnsKey(id), values...)
	return nil
}
