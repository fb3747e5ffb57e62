package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/calorietracker/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var _ Store = (*PsqlStore)(nil)

// PsqlStore keeps records in the prediction table; the ledger_user table holds
// users with a (possibly empty) history.
// Appends for one user are serialized with a transaction scoped advisory lock.
type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) Init(ctx context.Context, username string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.psql.init")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.db.Exec(
		ctx,
		`INSERT INTO ledger_user (username) VALUES ($1) ON CONFLICT DO NOTHING;`,
		username,
	); err != nil {
		return fmt.Errorf("insert ledger user: %w", err)
	}
	return nil
}

func (s *PsqlStore) Append(ctx context.Context, username string, rec Record) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.psql.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback append tx: %s", rbErr)
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, username); err != nil {
		return 0, fmt.Errorf("lock user history: %w", err)
	}

	if _, err := tx.Exec(
		ctx,
		`INSERT INTO ledger_user (username) VALUES ($1) ON CONFLICT DO NOTHING;`,
		username,
	); err != nil {
		return 0, fmt.Errorf("insert ledger user: %w", err)
	}

	var count int
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM prediction WHERE username = $1;`,
		username,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	seqID := count + 1

	if _, err := tx.Exec(
		ctx,
		`INSERT INTO prediction
			(username, seq_id, created_at, gender, age, height, weight, duration, heart_rate, body_temp, calories_burnt)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		username, seqID, rec.Date.Time, rec.Gender,
		rec.Age, rec.Height, rec.Weight, rec.Duration, rec.HeartRate, rec.BodyTemp,
		rec.CaloriesBurnt,
	); err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}

	return seqID, nil
}

func (s *PsqlStore) History(ctx context.Context, username string) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.psql.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := s.db.Query(
		ctx,
		`SELECT seq_id, created_at, gender, age, height, weight, duration, heart_rate, body_temp, calories_burnt
			FROM prediction
			WHERE username = $1
			ORDER BY seq_id;`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.Date.Time, &rec.Gender,
			&rec.Age, &rec.Height, &rec.Weight, &rec.Duration, &rec.HeartRate, &rec.BodyTemp,
			&rec.CaloriesBurnt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Date = NewTimestamp(rec.Date.Time)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

func (s *PsqlStore) Clear(ctx context.Context, username string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.psql.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.db.Exec(ctx, `DELETE FROM prediction WHERE username = $1;`, username); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

// Schema creates the tables the postgres ledger uses.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_user
(
    username VARCHAR PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS prediction
(
    id             SERIAL PRIMARY KEY,
    username       VARCHAR          NOT NULL,
    seq_id         INTEGER          NOT NULL,
    created_at     TIMESTAMPTZ      NOT NULL,
    gender         VARCHAR          NOT NULL,
    age            DOUBLE PRECISION NOT NULL,
    height         DOUBLE PRECISION NOT NULL,
    weight         DOUBLE PRECISION NOT NULL,
    duration       DOUBLE PRECISION NOT NULL,
    heart_rate     DOUBLE PRECISION NOT NULL,
    body_temp      DOUBLE PRECISION NOT NULL,
    calories_burnt DOUBLE PRECISION NOT NULL,
    UNIQUE (username, seq_id)
);
`
