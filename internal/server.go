package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/calorietracker/internal/auth"
	"github.com/2beens/calorietracker/internal/calories"
	"github.com/2beens/calorietracker/internal/config"
	"github.com/2beens/calorietracker/internal/db"
	"github.com/2beens/calorietracker/internal/features"
	"github.com/2beens/calorietracker/internal/ledger"
	"github.com/2beens/calorietracker/internal/middleware"
	"github.com/2beens/calorietracker/internal/model"
	"github.com/2beens/calorietracker/internal/predictor"
	"github.com/2beens/calorietracker/internal/telemetry/metrics"
	"github.com/2beens/calorietracker/internal/telemetry/tracing"
	"github.com/2beens/calorietracker/internal/users"
	"github.com/2beens/calorietracker/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	credentials users.Store
	history     ledger.Store
	meta        model.Metadata
	hybrid      *predictor.Hybrid

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
	}

	var extraCollectors []prometheus.Collector
	switch cfg.Storage {
	case config.StorageRedis:
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}

		s.credentials = users.NewRedisStore(s.redisClient)
		s.history = ledger.NewRedisStore(s.redisClient)
	case config.StoragePostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		s.dbPool = dbPool

		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		if err := s.migrate(ctx); err != nil {
			dbPool.Close()
			return nil, err
		}

		extraCollectors = append(extraCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
		s.credentials = users.NewPsqlStore(dbPool)
		s.history = ledger.NewPsqlStore(dbPool)
	default:
		s.credentials = users.NewMemStore()
		s.history = ledger.NewMemStore()
	}

	remoteStore := s.redisClient != nil || s.dbPool != nil
	if remoteStore && cfg.CredentialsCacheSizeMB > 0 {
		cachedStore := users.NewCachedStore(s.credentials, cfg.CredentialsCacheSizeMB*1024*1024)
		extraCollectors = append(extraCollectors, cachedStore.Collectors("calories", "credentials_cache")...)
		s.credentials = cachedStore
	}

	s.promRegistry = metrics.SetupPrometheus(extraCollectors...)
	s.metricsManager = metrics.NewManager("calories", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	s.loadModel()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "calories-backend", s.redisClient)
	if err != nil {
		return nil, err
	}
	s.otelShutdown = otelShutdown

	return s, nil
}

// loadModel never fails: without a model the server runs in degraded mode,
// where predictions are refused and everything else works.
func (s *Server) loadModel() {
	meta, xgb, err := model.Load(s.config.ModelPath, s.config.ModelMetaPath)
	s.meta = meta
	if err != nil {
		log.Errorf("model not loaded, predictions disabled: %s", err)
		s.hybrid = predictor.NewHybrid(nil, meta)
		s.metricsManager.GaugeModelLoaded.Set(0)
		return
	}

	s.hybrid = predictor.NewHybrid(xgb, meta)
	s.metricsManager.GaugeModelLoaded.Set(1)
	log.Infof(
		"model loaded: xgboost [%s], objective [%s], trees [%d], threshold [%.1f], slope [%.2f]",
		xgb.Version(), xgb.Objective(), xgb.NumTrees(), s.hybrid.Threshold(), s.hybrid.Slope(),
	)
}

func (s *Server) migrate(ctx context.Context) error {
	for _, schema := range []string{users.Schema, ledger.Schema} {
		if _, err := s.dbPool.Exec(ctx, schema); err != nil {
			return fmt.Errorf("apply db schema: %w", err)
		}
	}
	return nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("calories-router"))

	var rateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.redisClient)
	}

	authService := auth.NewService(s.credentials, s.history, s.metricsManager)
	authHandler := auth.NewHandler(authService)
	authHandler.SetupRoutes(r, rateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	serviceParams := calories.ServiceParams{
		Normalizer:     features.NewNormalizer(s.meta.FeatureColumns),
		Predictor:      s.hybrid,
		History:        s.history,
		MetricsManager: s.metricsManager,
	}
	if s.config.RequireRegisteredUser {
		serviceParams.Users = authService
	}
	caloriesHandler := calories.NewHandler(calories.NewService(serviceParams), s.versionInfo)
	caloriesHandler.SetupRoutes(r)

	middlewares := []mux.MiddlewareFunc{
		middleware.RequestID(),
		middleware.PanicRecovery(s.metricsManager),
		middleware.LogRequest(),
		middleware.RequestMetrics(s.metricsManager),
		middleware.Cors(s.config.AllowedOrigins),
		middleware.DrainAndCloseRequest(),
	}
	r.Use(middlewares...)

	// mux does not run router middlewares for requests no route matched
	r.NotFoundHandler = withMiddlewares(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteJSONError(w, http.StatusNotFound, "Not found")
	}), middlewares)
	r.MethodNotAllowedHandler = withMiddlewares(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}), middlewares)

	return r
}

// withMiddlewares wraps h the way mux does, first middleware outermost.
func withMiddlewares(h http.Handler, middlewares []mux.MiddlewareFunc) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i].Middleware(h)
	}
	return h
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      otelhttp.NewHandler(router, "calories-http"),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics http server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
