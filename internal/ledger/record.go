package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a local time serialized as "2006-01-02 15:04:05".
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Local().Truncate(time.Second)}
}

func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(TimestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Record is one successful prediction. Gender keeps the label the client sent,
// CaloriesBurnt is already rounded to 2 decimals.
type Record struct {
	ID            int       `json:"id"`
	Date          Timestamp `json:"date"`
	Gender        string    `json:"gender"`
	Age           float64   `json:"age"`
	Height        float64   `json:"height"`
	Weight        float64   `json:"weight"`
	Duration      float64   `json:"duration"`
	HeartRate     float64   `json:"heart_rate"`
	BodyTemp      float64   `json:"body_temp"`
	CaloriesBurnt float64   `json:"calories_burnt"`
}

// Store is a per-user, append-only prediction history.
type Store interface {
	// Init creates an empty history for username, if there is none yet.
	Init(ctx context.Context, username string) error
	// Append adds rec as the last record of the user's history and returns its
	// sequence id (history length after the append). rec.ID is ignored.
	Append(ctx context.Context, username string, rec Record) (int, error)
	// History returns the user's records in append order; an unknown user has
	// an empty history.
	History(ctx context.Context, username string) ([]Record, error)
	// Clear empties the user's history. The user stays known.
	Clear(ctx context.Context, username string) error
}
