package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/2beens/calorietracker/internal/telemetry/metrics"
	"github.com/2beens/calorietracker/internal/telemetry/tracing"
	"github.com/2beens/calorietracker/internal/users"

	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrMissingCredentials = errors.New("username and password required")
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

type credentialsStore interface {
	Add(ctx context.Context, username, password string) error
	Get(ctx context.Context, username string) (string, error)
}

type historyInitializer interface {
	Init(ctx context.Context, username string) error
}

// Service implements the plaintext username/password flow. It is a
// functional stand-in, not an authentication scheme: no hashing, no sessions.
type Service struct {
	credentials    credentialsStore
	history        historyInitializer
	metricsManager *metrics.Manager
}

func NewService(
	credentials credentialsStore,
	history historyInitializer,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		credentials:    credentials,
		history:        history,
		metricsManager: metricsManager,
	}
}

// Register adds a new user and makes sure they have an (empty) history. An
// existing history, e.g. from predictions made before registering, is kept.
func (s *Service) Register(ctx context.Context, username, password string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	if err := s.credentials.Add(ctx, username, password); err != nil {
		return fmt.Errorf("add user: %w", err)
	}

	if err := s.history.Init(ctx, username); err != nil {
		// history of an unknown user reads as empty anyway
		log.Errorf("register [%s], init history: %s", username, err)
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterRegisteredUsers.Inc()
	}

	return nil
}

func (s *Service) Login(ctx context.Context, username, password string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	stored, err := s.credentials.Get(ctx, username)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return ErrInvalidCredential
	}

	return nil
}

// Exists reports whether username is registered.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.credentials.Get(ctx, username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, users.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}
