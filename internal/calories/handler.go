package calories

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/calorietracker/internal/features"
	"github.com/2beens/calorietracker/internal/ledger"
	"github.com/2beens/calorietracker/internal/predictor"
	"github.com/2beens/calorietracker/internal/stats"
	"github.com/2beens/calorietracker/internal/telemetry/tracing"
	"github.com/2beens/calorietracker/internal/users"
	"github.com/2beens/calorietracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type PredictResponse struct {
	Success       bool          `json:"success"`
	CaloriesBurnt float64       `json:"calories_burnt"`
	Prediction    ledger.Record `json:"prediction"`
}

type HistoryResponse struct {
	Success bool            `json:"success"`
	History []ledger.Record `json:"history"`
}

type StatisticsResponse struct {
	Success    bool             `json:"success"`
	Statistics stats.Statistics `json:"statistics"`
}

type HealthResponse struct {
	Success     bool   `json:"success"`
	ModelLoaded bool   `json:"model_loaded"`
	Version     string `json:"version"`
}

type Handler struct {
	service     *Service
	versionInfo string
}

func NewHandler(service *Service, versionInfo string) *Handler {
	return &Handler{
		service:     service,
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	apiRouter := mainRouter.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/predict", handler.handlePredict).Methods("POST", "OPTIONS").Name("predict")
	apiRouter.HandleFunc("/history/{username}", handler.handleGetHistory).Methods("GET").Name("history")
	apiRouter.HandleFunc("/history/{username}", handler.handleClearHistory).Methods("DELETE", "OPTIONS").Name("history-clear")
	apiRouter.HandleFunc("/statistics/{username}", handler.handleGetStatistics).Methods("GET").Name("statistics")
	apiRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
}

func (handler *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "caloriesHandler.predict")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("predict, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	span.SetAttributes(attribute.String("username", req.Username))

	rec, err := handler.service.Predict(ctx, req)
	switch {
	case err == nil:
		pkg.WriteJSON(w, http.StatusOK, PredictResponse{
			Success:       true,
			CaloriesBurnt: rec.CaloriesBurnt,
			Prediction:    rec,
		})
	case errors.Is(err, features.ErrInvalidInput):
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, predictor.ErrModelUnavailable):
		pkg.WriteJSONError(w, http.StatusServiceUnavailable, "Model not loaded")
	case errors.Is(err, users.ErrUserNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "User not found")
	default:
		log.Errorf("predict [%s]: %s", req.Username, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "prediction failed")
	}
}

func (handler *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "caloriesHandler.history")
	defer span.End()

	username := mux.Vars(r)["username"]
	span.SetAttributes(attribute.String("username", username))

	history, err := handler.service.History(ctx, username)
	if err != nil {
		log.Errorf("get history [%s]: %s", username, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to get history")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, HistoryResponse{
		Success: true,
		History: history,
	})
}

func (handler *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "caloriesHandler.history.clear")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "DELETE, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	username := mux.Vars(r)["username"]
	span.SetAttributes(attribute.String("username", username))

	if err := handler.service.ClearHistory(ctx, username); err != nil {
		log.Errorf("clear history [%s]: %s", username, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, pkg.MessageResponse{
		Success: true,
		Message: "History cleared",
	})
}

func (handler *Handler) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "caloriesHandler.statistics")
	defer span.End()

	username := mux.Vars(r)["username"]
	span.SetAttributes(attribute.String("username", username))

	statistics, err := handler.service.Statistics(ctx, username)
	if err != nil {
		log.Errorf("get statistics [%s]: %s", username, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to get statistics")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, StatisticsResponse{
		Success:    true,
		Statistics: statistics,
	})
}

func (handler *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, HealthResponse{
		Success:     true,
		ModelLoaded: handler.service.ModelLoaded(),
		Version:     handler.versionInfo,
	})
}
