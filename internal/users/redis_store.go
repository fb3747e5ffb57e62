package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/calorietracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

const redisUsersKey = "calories::users"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps all credentials in a single hash.
type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

func (s *RedisStore) Add(ctx context.Context, username, password string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.redis.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cmd := s.redisClient.HSetNX(ctx, redisUsersKey, username, password)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("hsetnx user: %w", err)
	}
	if !cmd.Val() {
		return ErrUserExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, username string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.redis.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cmd := s.redisClient.HGet(ctx, redisUsersKey, username)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("hget user: %w", err)
	}
	return cmd.Val(), nil
}
