package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type RedisTransport struct {
	rdb *redis.Client
}

func NewRedisTransport(rdb *redis.Client) *RedisTransport {
	return &RedisTransport{
		rdb: rdb,
	}
}

func (t *RedisTransport) GetResultStream(id string) (ResultStream, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("invalid stream ID")
	}
	rs := &RedisStream{
		id:          id,
		lastRedisID: "0",
		rdb:         t.rdb,
	}
	return rs, nil
}

func (t *RedisTransport) SetTrace(ctx context.Context, trace *RequestTrace) error {
	if trace == nil || len(trace.ID) == 0 {
		return fmt.Errorf("invalid trace")
	}
	key := traceKey(trace.ID)

	err := t.rdb.HSet(ctx, key, trace).Err()
	if err != nil {
		return err
	}
	return t.rdb.Expire(ctx, key, TraceExpiry).Err()
}

func (t *RedisTransport) GetTrace(ctx context.Context, traceId string) (*RequestTrace, error) {
	res := t.rdb.HGetAll(ctx, traceKey(traceId))
	if err := res.Err(); err != nil {
		return nil, err
	}
	if len(res.Val()) == 0 {
		return nil, fmt.Errorf("trace not found: %s", traceId)
	}

	var trace RequestTrace
	if err := res.Scan(&trace); err != nil {
		return nil, err
	}
	return &trace, nil
}

func traceKey(id string) string {
	return "doclens:trace:" + id
}

type RedisStream struct {
	id          string
	lastRedisID string

	rdb *redis.Client
}

func (s *RedisStream) Publish(ctx context.Context, payload ResultPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	res, err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.id,
		ID:     "*",
		Values: map[string]any{
			"payload": string(payloadJSON),
		},
	}).Result()

	if err != nil {
		return err
	}

	slog.Debug("published result to redis", "res", res)
	return nil
}

func (s *RedisStream) Recv(ctx context.Context) (*ResultPayload, error) {
	rstreams, err := s.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{s.id, s.lastRedisID},
		Count:   1,
		Block:   0,
	}).Result()
	if err != nil {
		return nil, err
	}

	msg := rstreams[0].Messages[0]
	s.lastRedisID = msg.ID
	payloadJSON, ok := msg.Values["payload"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to read payload from stream message")
	}

	var payload ResultPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("failed to deserialize stream message payload")
	}

	return &payload, nil
}

func (s *RedisStream) GetID() string {
	return s.id
}
