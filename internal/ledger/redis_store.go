package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/2beens/calorietracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

const (
	redisKeyPrefix = "calories::ledger::"
	redisUsersKey  = "calories::ledger-users"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps each history in a redis list. The length RPUSH returns is
// the sequence id, so appends are serialized by redis itself. Ids are not
// stored: a record's id is its 1-based position in the list.
type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

func historyKey(username string) string {
	return redisKeyPrefix + username
}

func (s *RedisStore) Init(ctx context.Context, username string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.redis.init")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.redisClient.SAdd(ctx, redisUsersKey, username).Err(); err != nil {
		return fmt.Errorf("add ledger user: %w", err)
	}
	return nil
}

func (s *RedisStore) Append(ctx context.Context, username string, rec Record) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.redis.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rec.ID = 0
	recJson, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("marshal record: %w", err)
	}

	if err := s.redisClient.SAdd(ctx, redisUsersKey, username).Err(); err != nil {
		return 0, fmt.Errorf("add ledger user: %w", err)
	}

	cmd := s.redisClient.RPush(ctx, historyKey(username), string(recJson))
	if err := cmd.Err(); err != nil {
		return 0, fmt.Errorf("push record: %w", err)
	}

	return int(cmd.Val()), nil
}

func (s *RedisStore) History(ctx context.Context, username string) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.redis.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cmd := s.redisClient.LRange(ctx, historyKey(username), 0, -1)
	if err := cmd.Err(); err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}

	records := make([]Record, 0, len(cmd.Val()))
	for i, recJson := range cmd.Val() {
		var rec Record
		if err := json.Unmarshal([]byte(recJson), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record %d: %w", i+1, err)
		}
		rec.ID = i + 1
		records = append(records, rec)
	}

	return records, nil
}

func (s *RedisStore) Clear(ctx context.Context, username string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.redis.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.redisClient.Del(ctx, historyKey(username)).Err(); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}
