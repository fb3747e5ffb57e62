package calories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/calorietracker/internal/features"
	"github.com/2beens/calorietracker/internal/ledger"
	"github.com/2beens/calorietracker/internal/predictor"
	"github.com/2beens/calorietracker/internal/stats"
	"github.com/2beens/calorietracker/internal/telemetry/metrics"
	"github.com/2beens/calorietracker/internal/telemetry/tracing"
	"github.com/2beens/calorietracker/internal/users"
	"github.com/2beens/calorietracker/pkg"

	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=calories_test

type caloriesPredictor interface {
	Predict(ctx context.Context, v features.Vector) (float64, error)
	ModelLoaded() bool
}

type historyStore interface {
	Append(ctx context.Context, username string, rec ledger.Record) (int, error)
	History(ctx context.Context, username string) ([]ledger.Record, error)
	Clear(ctx context.Context, username string) error
}

type userChecker interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// PredictRequest is a single workout. Numeric fields hold whatever the client
// sent: numbers or numeric strings.
type PredictRequest struct {
	Username  string `json:"username"`
	Gender    string `json:"gender"`
	Age       any    `json:"age"`
	Height    any    `json:"height"`
	Weight    any    `json:"weight"`
	Duration  any    `json:"duration"`
	HeartRate any    `json:"heart_rate"`
	BodyTemp  any    `json:"body_temp"`
}

type ServiceParams struct {
	Normalizer     *features.Normalizer
	Predictor      caloriesPredictor
	History        historyStore
	MetricsManager *metrics.Manager
	// Users, when set, restricts predictions to registered users.
	Users userChecker
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	normalizer     *features.Normalizer
	predictor      caloriesPredictor
	history        historyStore
	metricsManager *metrics.Manager
	users          userChecker
	now            func() time.Time
}

func NewService(params ServiceParams) *Service {
	normalizer := params.Normalizer
	if normalizer == nil {
		normalizer = features.NewNormalizer(nil)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		normalizer:     normalizer,
		predictor:      params.Predictor,
		history:        params.History,
		metricsManager: params.MetricsManager,
		users:          params.Users,
		now:            now,
	}
}

func (s *Service) ModelLoaded() bool {
	return s.predictor.ModelLoaded()
}

// Predict estimates calories for one workout and appends the result to the
// user's history. Nothing is appended when the prediction fails. Predict is
// not idempotent: retrying a successful call appends a second record, and
// deduplication is up to the caller.
func (s *Service) Predict(ctx context.Context, req PredictRequest) (_ ledger.Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.calories.predict")
	start := time.Now()
	defer func() {
		s.observePrediction(start, err)
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("username", req.Username))

	if s.users != nil {
		exists, err := s.users.Exists(ctx, req.Username)
		if err != nil {
			return ledger.Record{}, fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return ledger.Record{}, users.ErrUserNotFound
		}
	}

	values, err := features.Parse(features.RawInputs{
		Gender:    req.Gender,
		Age:       req.Age,
		Height:    req.Height,
		Weight:    req.Weight,
		Duration:  req.Duration,
		HeartRate: req.HeartRate,
		BodyTemp:  req.BodyTemp,
	})
	if err != nil {
		return ledger.Record{}, err
	}

	calories, err := s.predictor.Predict(ctx, s.normalizer.Vector(values))
	if err != nil {
		return ledger.Record{}, err
	}

	rec := newRecord(req.Gender, values, pkg.Round(calories, 2), s.now())
	id, err := s.history.Append(ctx, req.Username, rec)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("append record: %w", err)
	}
	rec.ID = id

	return rec, nil
}

func newRecord(gender string, values map[string]float64, calories float64, now time.Time) ledger.Record {
	return ledger.Record{
		Date:          ledger.NewTimestamp(now),
		Gender:        gender,
		Age:           values[features.ColAge],
		Height:        values[features.ColHeight],
		Weight:        values[features.ColWeight],
		Duration:      values[features.ColDuration],
		HeartRate:     values[features.ColHeartRate],
		BodyTemp:      values[features.ColBodyTemp],
		CaloriesBurnt: calories,
	}
}

func (s *Service) observePrediction(start time.Time, err error) {
	if s.metricsManager == nil {
		return
	}

	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
		s.metricsManager.HistogramPredictionDuration.Observe(time.Since(start).Seconds())
	case errors.Is(err, features.ErrInvalidInput):
		outcome = metrics.OutcomeInvalidInput
	case errors.Is(err, predictor.ErrModelUnavailable):
		outcome = metrics.OutcomeModelUnavailable
	case errors.Is(err, users.ErrUserNotFound):
		outcome = metrics.OutcomeUnknownUser
	default:
		outcome = metrics.OutcomeError
	}
	s.metricsManager.CounterPredictions.WithLabelValues(outcome).Inc()
}

func (s *Service) History(ctx context.Context, username string) (_ []ledger.Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.calories.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	history, err := s.history.History(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return history, nil
}

// Statistics summarizes the user's current history, rounded for display.
func (s *Service) Statistics(ctx context.Context, username string) (_ stats.Statistics, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.calories.statistics")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	history, err := s.history.History(ctx, username)
	if err != nil {
		return stats.Statistics{}, fmt.Errorf("get history: %w", err)
	}
	return stats.Summarize(history).Rounded(), nil
}

func (s *Service) ClearHistory(ctx context.Context, username string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.calories.history.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.history.Clear(ctx, username); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
