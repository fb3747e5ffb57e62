package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/calorietracker/internal/telemetry/tracing"
	"github.com/2beens/calorietracker/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = (*PsqlStore)(nil)

type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) Add(ctx context.Context, username, password string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.psql.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.db.Exec(
		ctx,
		`INSERT INTO app_user (username, password, created_at) VALUES ($1, $2, now());`,
		username, password,
	); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PsqlStore) Get(ctx context.Context, username string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.psql.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var password string
	if err := s.db.QueryRow(
		ctx,
		`SELECT password FROM app_user WHERE username = $1;`,
		username,
	).Scan(&password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("select user: %w", err)
	}
	return password, nil
}

// Schema creates the table the postgres credential store uses.
const Schema = `
CREATE TABLE IF NOT EXISTS app_user
(
    username   VARCHAR PRIMARY KEY,
    password   VARCHAR   NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
`
