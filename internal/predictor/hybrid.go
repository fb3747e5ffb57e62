package predictor

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/calorietracker/internal/features"
	"github.com/2beens/calorietracker/internal/model"
	"github.com/2beens/calorietracker/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var ErrModelUnavailable = errors.New("model unavailable")

//go:generate mockgen -source=$GOFILE -destination=predictor_mocks_test.go -package=predictor_test

// Regressor is the trained model the predictor wraps.
type Regressor interface {
	Predict(v features.Vector) (float64, error)
}

// Hybrid uses the regressor up to the duration threshold and continues
// linearly from the regressor's value at the threshold above it:
//
//	d <= T: f(x)
//	d >  T: f(x with d = T) + slope * (d - T)
//
// Both pieces agree at d = T.
type Hybrid struct {
	regressor Regressor
	threshold float64
	slope     float64
}

// NewHybrid creates the predictor. A nil regressor means the model failed to
// load and every Predict call fails with ErrModelUnavailable.
func NewHybrid(regressor Regressor, meta model.Metadata) *Hybrid {
	return &Hybrid{
		regressor: regressor,
		threshold: meta.Threshold,
		slope:     meta.Slope,
	}
}

func (h *Hybrid) ModelLoaded() bool {
	return h.regressor != nil
}

func (h *Hybrid) Threshold() float64 {
	return h.threshold
}

func (h *Hybrid) Slope() float64 {
	return h.slope
}

func (h *Hybrid) Predict(ctx context.Context, v features.Vector) (_ float64, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "predictor.hybrid.predict")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if h.regressor == nil {
		return 0, ErrModelUnavailable
	}

	d, ok := v.Get(features.ColDuration)
	if !ok {
		return 0, fmt.Errorf("%w: feature vector has no %s", features.ErrInvalidInput, features.ColDuration)
	}
	span.SetAttributes(
		attribute.StringSlice("features", v.Columns()),
		attribute.Float64("duration", d),
		attribute.Bool("extrapolated", d > h.threshold),
	)

	if d <= h.threshold {
		prediction, err := h.regressor.Predict(v)
		if err != nil {
			return 0, fmt.Errorf("regressor predict: %w", err)
		}
		return prediction, nil
	}

	clamped, _ := v.WithValue(features.ColDuration, h.threshold)
	base, err := h.regressor.Predict(clamped)
	if err != nil {
		return 0, fmt.Errorf("regressor predict at threshold: %w", err)
	}

	return base + h.slope*(d-h.threshold), nil
}
