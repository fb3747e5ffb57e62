package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/calorietracker/internal/db"
	"github.com/2beens/calorietracker/internal/ledger"
	"github.com/2beens/calorietracker/internal/users"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(duration, calories float64) ledger.Record {
	return ledger.Record{
		Date:          ledger.NewTimestamp(time.Now()),
		Gender:        "male",
		Age:           40,
		Height:        181,
		Weight:        84,
		Duration:      duration,
		HeartRate:     110,
		BodyTemp:      40.4,
		CaloriesBurnt: calories,
	}
}

func (s *IntegrationTestSuite) TestRedisLedger() {
	t := s.T()
	ctx := context.Background()
	store := ledger.NewRedisStore(s.redisClient)
	username := gofakeit.Username()

	require.NoError(t, store.Init(ctx, username))
	history, err := store.History(ctx, username)
	require.NoError(t, err)
	assert.Empty(t, history)

	for i := 1; i <= 3; i++ {
		id, err := store.Append(ctx, username, testRecord(float64(10*i), float64(50*i)))
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}

	history, err = store.History(ctx, username)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 3, history[2].ID)
	assert.Equal(t, 150.0, history[2].CaloriesBurnt)

	require.NoError(t, store.Clear(ctx, username))
	id, err := store.Append(ctx, username, testRecord(5, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func (s *IntegrationTestSuite) TestRedisCredentials() {
	t := s.T()
	ctx := context.Background()
	store := users.NewCachedStore(users.NewRedisStore(s.redisClient), 1024*1024)
	username := gofakeit.Username()

	_, err := store.Get(ctx, username)
	assert.ErrorIs(t, err, users.ErrUserNotFound)

	require.NoError(t, store.Add(ctx, username, "pw"))
	assert.ErrorIs(t, store.Add(ctx, username, "other"), users.ErrUserExists)

	password, err := store.Get(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, "pw", password)
}

func (s *IntegrationTestSuite) TestPsqlLedgerConcurrentAppends() {
	t := s.T()
	ctx := context.Background()

	cfg := getTestConfig("", s.pgPort)
	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: cfg.PostgresHost,
		DBPort: cfg.PostgresPort,
		DBName: cfg.PostgresDBName,
		DBUser: cfg.PostgresUser,
	})
	require.NoError(t, err)
	defer pool.Close()

	store := ledger.NewPsqlStore(pool)
	username := gofakeit.Username()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Append(ctx, username, testRecord(float64(i+1), 10)); err != nil {
				errs <- fmt.Errorf("append %d: %w", i, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	history, err := store.History(ctx, username)
	require.NoError(t, err)
	require.Len(t, history, n)
	for i, rec := range history {
		assert.Equal(t, i+1, rec.ID)
	}
}
