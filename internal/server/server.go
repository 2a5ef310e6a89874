package server

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/Sentinel/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Sentinel/backend/internal/breaker"
	"github.com/GriffinCanCode/Sentinel/backend/internal/dispatch"
	"github.com/GriffinCanCode/Sentinel/backend/internal/failure"
	httpapi "github.com/GriffinCanCode/Sentinel/backend/internal/http"
	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Sentinel/backend/internal/recovery"
	"github.com/GriffinCanCode/Sentinel/backend/internal/registry"
	"github.com/GriffinCanCode/Sentinel/backend/internal/ws"
)

// Server wraps the HTTP server and the resilience core it exposes
type Server struct {
	cfg    *config.Config
	logger *logging.Logger
	router *gin.Engine

	registry   *breaker.Registry
	dispatcher *dispatch.Dispatcher
	recovery   *recovery.Manager
	hub        *ws.Hub

	hubCancel context.CancelFunc
}

// NewServer builds the full resilience core from configuration. All
// wiring happens here; packages below this one take their dependencies
// as arguments.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	metrics := monitoring.NewMetrics()

	hub := ws.NewHub(logger)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// Events flow to both the structured log and the live stream
	sink := logging.FanoutSink{logging.NewZapSink(logger), hub}

	dispatcher := dispatch.New(logger.Named("dispatch"), sink)
	dispatcher.RegisterGlobalHandler(func(err error, ctx *failure.Context) {
		category, severity := "unclassified", "unclassified"
		var f *failure.Failure
		if errors.As(err, &f) {
			category = string(f.Category)
			severity = f.Severity.String()
		}
		metrics.RecordFailure(category, severity)
	})

	recoveryMgr := recovery.NewManager(recoveryConfig(cfg), logger.Named("recovery"), sink)
	if cfg.Recovery.ProbeURL != "" {
		recoveryMgr.SetProber(recovery.NewHTTPProber(
			cfg.Recovery.ProbeURL,
			time.Duration(cfg.Recovery.ProbeTimeoutMs)*time.Millisecond,
		))
	}
	recoveryMgr.AddListener(func(r recovery.Result) {
		metrics.RecordRecovery(string(r.Strategy), r.Success, r.Duration)
	})

	breakerRegistry := breaker.NewRegistry(logger.Named("breaker"))
	breakerRegistry.AddObserver(metrics.BreakerObserver())
	breakerRegistry.AddObserver(breaker.ObserverFunc(func(name string, from, to breaker.State) {
		level := zapcore.InfoLevel
		if to == breaker.StateOpen {
			level = zapcore.WarnLevel
		}
		sink.Emit(logging.Event{
			Type:      logging.EventBreakerTransition,
			Timestamp: time.Now(),
			Component: "breaker",
			Level:     level,
			Message:   "circuit breaker " + name + " transitioned to " + to.String(),
			Metadata: map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			},
		})
	}))

	if cfg.Seed.Enabled {
		seeder := registry.NewSeeder(breakerRegistry, breakerConfig(cfg), cfg.Seed.Dir, logger)
		if err := seeder.Seed(); err != nil {
			logger.Warn("Breaker seeding failed", zap.Error(err))
		}
	}

	router := buildRouter(cfg, logger, metrics, breakerRegistry, dispatcher, recoveryMgr, hub)

	return &Server{
		cfg:        cfg,
		logger:     logger,
		router:     router,
		registry:   breakerRegistry,
		dispatcher: dispatcher,
		recovery:   recoveryMgr,
		hub:        hub,
		hubCancel:  hubCancel,
	}, nil
}

func buildRouter(
	cfg *config.Config,
	logger *logging.Logger,
	metrics *monitoring.Metrics,
	breakerRegistry *breaker.Registry,
	dispatcher *dispatch.Dispatcher,
	recoveryMgr *recovery.Manager,
	hub *ws.Hub,
) *gin.Engine {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := httpapi.NewHandlers(breakerRegistry, dispatcher, recoveryMgr, hub)
	wsHandler := ws.NewHandler(hub, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Breaker inspection and control
	router.GET("/breakers", handlers.ListBreakers)
	router.POST("/breakers/reset", handlers.ResetAllBreakers)
	router.GET("/breakers/:name", handlers.GetBreaker)
	router.POST("/breakers/:name/reset", handlers.ResetBreaker)
	router.POST("/breakers/:name/open", handlers.ForceBreakerState(breaker.StateOpen))
	router.POST("/breakers/:name/close", handlers.ForceBreakerState(breaker.StateClosed))
	router.POST("/breakers/:name/half-open", handlers.ForceBreakerState(breaker.StateHalfOpen))

	// Failure taxonomy
	router.GET("/failures/statistics", handlers.FailureStatistics)
	router.GET("/failures/suggestions", handlers.FailureSuggestions)

	// Recovery
	router.GET("/recovery/statistics", handlers.RecoveryStatistics)
	router.GET("/recovery/failures", handlers.RecentRecoveryFailures)
	router.POST("/recovery/execute/:name", handlers.ExecuteRecovery)

	// Live event stream
	router.GET("/stream", wsHandler.HandleConnection)

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// Registry exposes the breaker registry for embedding callers
func (s *Server) Registry() *breaker.Registry {
	return s.registry
}

// Dispatcher exposes the failure dispatcher for embedding callers
func (s *Server) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// Recovery exposes the recovery manager for embedding callers
func (s *Server) Recovery() *recovery.Manager {
	return s.recovery
}

// Run starts the server
func (s *Server) Run() error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.logger.Info("Starting resilience service", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close releases server resources
func (s *Server) Close() error {
	s.hubCancel()
	return nil
}

// breakerConfig converts environment configuration to breaker defaults
func breakerConfig(cfg *config.Config) breaker.Config {
	return breaker.Config{
		FailureThreshold:  cfg.Breaker.FailureThreshold,
		SuccessThreshold:  cfg.Breaker.SuccessThreshold,
		OpenTimeout:       time.Duration(cfg.Breaker.OpenTimeoutSecs) * time.Second,
		MonitoringWindow:  time.Duration(cfg.Breaker.WindowSecs) * time.Second,
		HalfOpenMaxProbes: cfg.Breaker.HalfOpenMaxProbes,
	}
}

// recoveryConfig converts environment configuration to recovery defaults
func recoveryConfig(cfg *config.Config) recovery.Config {
	return recovery.Config{
		MaxRetries:        cfg.Recovery.MaxRetries,
		RetryDelay:        time.Duration(cfg.Recovery.RetryDelayMs) * time.Millisecond,
		BackoffMultiplier: cfg.Recovery.BackoffMultiplier,
		MaxDelay:          time.Duration(cfg.Recovery.MaxDelayMs) * time.Millisecond,
		Timeout:           time.Duration(cfg.Recovery.TimeoutMs) * time.Millisecond,
	}
}
