package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/ladyblueumd/url-opener-v2/internal/api/http"
	"github.com/ladyblueumd/url-opener-v2/internal/api/middleware"
	"github.com/ladyblueumd/url-opener-v2/internal/api/ws"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/batch"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/history"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/policy"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/service"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/snapshot"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/view"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/config"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/logging"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/tracing"
	"github.com/ladyblueumd/url-opener-v2/internal/probe"
	"github.com/ladyblueumd/url-opener-v2/internal/providers/batches"
	"github.com/ladyblueumd/url-opener-v2/internal/providers/clipboard"
	historyProvider "github.com/ladyblueumd/url-opener-v2/internal/providers/history"
	policyProvider "github.com/ladyblueumd/url-opener-v2/internal/providers/policy"
	"github.com/ladyblueumd/url-opener-v2/internal/providers/settings"
	systemProvider "github.com/ladyblueumd/url-opener-v2/internal/providers/system"
	"github.com/ladyblueumd/url-opener-v2/internal/providers/views"
	"github.com/ladyblueumd/url-opener-v2/internal/rules"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/paths"
)

// Server wraps the HTTP server and shell components
type Server struct {
	router    *gin.Engine
	httpSrv   *http.Server
	views     *view.Manager
	registry  *service.Registry
	history   *history.Store
	batches   *batch.Manager
	snapshots *snapshot.Manager
	gateway   *ws.Gateway
	watcher   *rules.Watcher
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
	cancel    context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Resolve the data root before the logger so the default log file
	// can live under it
	dataDir := cfg.Storage.DataDir
	if dataDir == "" {
		dir, err := paths.Root()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		dataDir = dir
	}
	tree := paths.NewTree(dataDir)
	if err := tree.Ensure(); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = filepath.Join(tree.Logs(), "shell.log")
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		File:        logFile,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	logger.Info("Initializing URL Opener Shell",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("data_dir", dataDir),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Initialize request tracing
	tracer := tracing.New("shell", logger.Logger)

	ctx, cancel := context.WithCancel(context.Background())

	// Auth classifier and its rules file. With watching enabled the
	// watcher owns loading; otherwise the file is read once.
	classifier := classify.New()
	var watcher *rules.Watcher
	if cfg.Rules.Watch {
		w, err := rules.NewWatcher(tree.Rules(), cfg.Rules.Debounce, classifier, logger.Logger)
		if err != nil {
			logger.Warn("rules watcher unavailable", zap.Error(err))
		} else if err := w.Start(ctx); err != nil {
			logger.Warn("rules watcher failed to start", zap.Error(err))
			w.Stop()
		} else {
			watcher = w
			logger.Info("watching rules file", zap.String("path", w.Path()))
		}
	} else if loaded, err := rules.Load(tree.Rules()); err == nil {
		classifier.SetRules(loaded)
		logger.Info("rules loaded", zap.String("path", tree.Rules()))
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("rules not applied, using defaults", zap.Error(err))
	}

	// Domain managers
	store := history.NewStore(cfg.History.Capacity).WithMetrics(metrics)
	viewManager := view.NewManager(classifier, store, policy.Config{
		PendingTimeout: cfg.Policy.PendingTimeout,
		DenyNotice:     cfg.Policy.DenyNotice,
	}).WithMetrics(metrics)

	// The batch opener and the gateway need each other: batches
	// dispatch through the gateway, finished loads mark batch items.
	// The dispatcher is completed once the gateway exists, before any
	// request is served.
	dispatcher := &viewDispatcher{views: viewManager}
	batchManager := batch.NewManager(dispatcher).WithMetrics(metrics)
	gateway := ws.NewGateway(viewManager, batchManager, logger).WithMetrics(metrics)
	dispatcher.gateway = gateway

	prober := probe.New(cfg.Probe, logger.Logger).WithMetrics(metrics).WithTracer(tracer)

	snapshotManager := snapshot.NewManager(viewManager, tree).WithMetrics(metrics)
	if err := snapshotManager.Hydrate(); err != nil {
		logger.Warn("snapshot index not hydrated", zap.Error(err))
	}

	// Service registry for renderer tool calls
	registry := service.NewRegistry()
	registerProviders(registry, viewManager, store, batchManager, prober, classifier, watcher, tree, logger)
	logger.Info("service providers registered", zap.Int("count", len(registry.List(nil))))

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	var reloader httpapi.Reloader
	if watcher != nil {
		reloader = watcher
	}
	handlerMetrics := httpapi.NewHandlerMetrics(metrics)
	handlers := httpapi.NewHandlers(viewManager, registry, store, batchManager, snapshotManager, prober, classifier, reloader, handlerMetrics, logger)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// View management
	router.GET("/views", handlers.ListViews)
	router.POST("/views", handlers.OpenView)
	router.GET("/views/:id", handlers.GetView)
	router.POST("/views/:id/focus", handlers.FocusView)
	router.POST("/views/:id/window", handlers.UpdateViewWindow)
	router.DELETE("/views/:id", handlers.CloseView)

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/discover", handlers.DiscoverServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// History
	router.GET("/history", handlers.ListHistory)
	router.GET("/history/export", handlers.ExportHistory)

	// Batch opener
	router.POST("/batches", handlers.SubmitBatch)
	router.GET("/batches", handlers.ListBatches)
	router.GET("/batches/:id", handlers.GetBatch)
	router.POST("/batches/:id/open", handlers.OpenBatch)
	router.POST("/batches/:id/probe", handlers.ProbeBatch)
	router.DELETE("/batches/:id", handlers.DeleteBatch)

	// Session snapshots
	router.POST("/snapshots/save", handlers.SaveSnapshot)
	router.GET("/snapshots", handlers.ListSnapshots)
	router.GET("/snapshots/:id", handlers.GetSnapshot)
	router.POST("/snapshots/:id/restore", handlers.RestoreSnapshot)
	router.DELETE("/snapshots/:id", handlers.DeleteSnapshot)

	// Classifier rules
	router.GET("/rules", handlers.GetRules)
	router.POST("/rules/reload", handlers.ReloadRules)

	// Renderer log ingestion
	router.POST("/logs/stream", handlers.StreamLogs)

	// WebSocket event stream
	router.GET("/stream", gateway.HandleConnection)

	// Metrics endpoints
	aggregator := httpapi.NewMetricsAggregator(metrics, viewManager, store, batchManager, snapshotManager)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/metrics/json", aggregator.GetAggregatedMetrics)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpSrv: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		views:     viewManager,
		registry:  registry,
		history:   store,
		batches:   batchManager,
		snapshots: snapshotManager,
		gateway:   gateway,
		watcher:   watcher,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
		cancel:    cancel,
	}, nil
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases server resources
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Warn("http server shutdown incomplete", zap.Error(err))
	}
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn("rules watcher stop failed", zap.Error(err))
		}
	}
	s.cancel()
	s.logger.Sync()
	return nil
}

// viewDispatcher routes batch URLs into webviews. An explicit target
// reuses that view, then the focused view; with nothing focused a
// fresh view opens.
type viewDispatcher struct {
	views   *view.Manager
	gateway *ws.Gateway
}

func (d *viewDispatcher) Dispatch(url string, target *string, batchID string) (string, error) {
	bid := batchID

	if target != nil {
		session, ok := d.views.Session(*target)
		if !ok {
			return "", fmt.Errorf("view not found: %s", *target)
		}
		session.SetBatch(&bid)
		d.gateway.SendLoadURL(session.ID(), url, batchID)
		return session.ID(), nil
	}

	if session, ok := d.views.Focused(); ok {
		session.SetBatch(&bid)
		d.gateway.SendLoadURL(session.ID(), url, batchID)
		return session.ID(), nil
	}

	v := d.views.Open(url, view.OpenOptions{BatchID: &bid})
	d.gateway.SendOpenView(v, batchID)
	return v.ID, nil
}

func registerProviders(
	registry *service.Registry,
	viewManager *view.Manager,
	store *history.Store,
	batchManager *batch.Manager,
	prober *probe.Prober,
	classifier *classify.Classifier,
	watcher *rules.Watcher,
	tree paths.Tree,
	logger *logging.Logger,
) {
	register := func(name string, p service.Provider) {
		if err := registry.Register(p); err != nil {
			logger.Warn("provider not registered",
				zap.String("provider", name),
				zap.Error(err),
			)
		}
	}

	register("views", views.NewProvider(viewManager))
	register("history", historyProvider.NewProvider(store))
	register("batches", batches.NewProvider(batchManager, prober))

	var reloader policyProvider.Reloader
	if watcher != nil {
		reloader = watcher
	}
	register("policy", policyProvider.NewProvider(classifier, reloader))

	settingsProvider := settings.NewProvider(tree.Settings())
	if err := settingsProvider.Hydrate(); err != nil {
		logger.Warn("settings not hydrated, using defaults", zap.Error(err))
	}
	register("settings", settingsProvider)

	register("system", systemProvider.NewProvider(httpapi.Version, tree.Root()))
	register("clipboard", clipboard.NewProvider())
}
