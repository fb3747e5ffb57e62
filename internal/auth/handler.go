package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/calorietracker/internal/middleware"
	"github.com/2beens/calorietracker/internal/telemetry/metrics"
	"github.com/2beens/calorietracker/internal/telemetry/tracing"
	"github.com/2beens/calorietracker/internal/users"
	"github.com/2beens/calorietracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type Handler struct {
	authService *Service
}

func NewHandler(authService *Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	authSubrouter := mainRouter.PathPrefix("/api").Subrouter()
	authSubrouter.
		HandleFunc("/register", handler.handleRegister).
		Methods("POST", "OPTIONS").Name("register")
	authSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")

	authSubrouter.Use(middleware.RateLimit(rateLimiter, "auth", allowedPerMin, metricsManager))
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.register")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	req, err := readCredentials(r)
	if err != nil {
		log.Debugf("register, read credentials: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	span.SetAttributes(attribute.String("username", req.Username))

	err = handler.authService.Register(ctx, req.Username, req.Password)
	switch {
	case err == nil:
		pkg.WriteJSON(w, http.StatusCreated, pkg.MessageResponse{
			Success: true,
			Message: "Registration successful",
		})
	case errors.Is(err, ErrMissingCredentials):
		pkg.WriteJSONError(w, http.StatusBadRequest, "Username and password are required")
	case errors.Is(err, users.ErrUserExists):
		pkg.WriteJSONError(w, http.StatusBadRequest, "User already exists")
	default:
		log.Errorf("register [%s]: %s", req.Username, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "registration failed")
	}
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	req, err := readCredentials(r)
	if err != nil {
		log.Debugf("login, read credentials: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	span.SetAttributes(attribute.String("username", req.Username))

	err = handler.authService.Login(ctx, req.Username, req.Password)
	switch {
	case err == nil:
		pkg.WriteJSON(w, http.StatusOK, loginResponse{
			Success:  true,
			Message:  "Login successful",
			Username: req.Username,
		})
	case errors.Is(err, ErrMissingCredentials):
		pkg.WriteJSONError(w, http.StatusBadRequest, "Username and password are required")
	case errors.Is(err, users.ErrUserNotFound):
		log.Tracef("failed login attempt for unknown user: %s", req.Username)
		pkg.WriteJSONError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrInvalidCredential):
		log.Tracef("failed login attempt for user: %s", req.Username)
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Invalid password")
	default:
		log.Errorf("login [%s]: %s", req.Username, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "login failed")
	}
}

// readCredentials accepts a JSON body or a form.
func readCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return credentialsRequest{}, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return credentialsRequest{}, err
	}
	return credentialsRequest{
		Username: r.Form.Get("username"),
		Password: r.Form.Get("password"),
	}, nil
}
