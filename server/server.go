package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/SuyashBhavalkar3/posturecoach/auth"
	"github.com/SuyashBhavalkar3/posturecoach/config"
	pcerrors "github.com/SuyashBhavalkar3/posturecoach/errors"
	"github.com/SuyashBhavalkar3/posturecoach/health"
	"github.com/SuyashBhavalkar3/posturecoach/metric"
	"github.com/SuyashBhavalkar3/posturecoach/pose"
	"github.com/SuyashBhavalkar3/posturecoach/session"
)

// Server accepts WebSocket clients and runs a session loop per
// connection.
type Server struct {
	cfg       config.ServerConfig
	pipeline  config.PipelineConfig
	estimator pose.Estimator
	authSvc   *auth.Service
	metrics   *metric.Metrics
	registry  *metric.MetricsRegistry
	rejected  *prometheus.CounterVec
	logger    *slog.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader
	limiter    *rate.Limiter

	clients   map[string]*websocket.Conn
	clientsMu sync.RWMutex

	shutdown     chan struct{}
	shutdownOnce sync.Once
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	started      atomic.Bool
	startTime    time.Time
	lifecycleMu  sync.Mutex
	errorCount   atomic.Int64
}

// Options carries the server's collaborators. AuthService is nil when
// the identity subsystem is disabled.
type Options struct {
	Config      config.ServerConfig
	Pipeline    config.PipelineConfig
	Estimator   pose.Estimator
	AuthService *auth.Service
	Metrics     *metric.Metrics
	Registry    *metric.MetricsRegistry
	Logger      *slog.Logger
}

// New creates a server. The estimator is required; everything else has a
// usable zero state.
func New(opts Options) (*Server, error) {
	if opts.Estimator == nil {
		return nil, pcerrors.WrapInvalid(
			fmt.Errorf("estimator is required"),
			"server", "New", "validate options",
		)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:       opts.Config,
		pipeline:  opts.Pipeline,
		estimator: opts.Estimator,
		authSvc:   opts.AuthService,
		metrics:   opts.Metrics,
		registry:  opts.Registry,
		logger:    logger,
		clients:   make(map[string]*websocket.Conn),
		shutdown:  make(chan struct{}),
		limiter:   newAcceptLimiter(opts.Config),
	}

	if s.registry != nil {
		rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "server",
			Name:      "connections_rejected_total",
			Help:      "Connections refused before upgrade, by reason",
		}, []string{"reason"})
		if err := s.registry.RegisterCounterVec("server", "connections_rejected", rejected); err != nil {
			return nil, err
		}
		s.rejected = rejected
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.Config.ReadBufferSize,
		WriteBufferSize: opts.Config.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}

	return s, nil
}

// newAcceptLimiter builds the connection accept limiter; a non-positive
// rate disables limiting.
func newAcceptLimiter(cfg config.ServerConfig) *rate.Limiter {
	if cfg.AcceptRate <= 0 {
		return nil
	}
	burst := cfg.AcceptBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.AcceptRate), burst)
}

// Start begins listening. It returns once the listener goroutine is
// running; errors from the listener itself are logged.
func (s *Server) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.started.Load() {
		return pcerrors.ErrAlreadyStarted
	}

	serverCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Handler(serverCtx),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.trackError("listen")
			s.logger.Error("http server failed", "error", err)
		}
	}()

	s.startTime = time.Now()
	s.started.Store(true)
	s.logger.Info("server started", "addr", s.httpServer.Addr, "path", s.cfg.Path)
	return nil
}

// Handler builds the HTTP routing table: the WebSocket endpoint, the
// health check and, when auth is enabled, the identity routes.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, func(w http.ResponseWriter, r *http.Request) {
		s.handleWebSocket(ctx, w, r)
	})
	mux.HandleFunc("GET /healthz", health.Handler(s))
	if s.authSvc != nil {
		s.authSvc.Routes(mux)
	}
	return s.withCORS(mux)
}

// withCORS reflects allowed origins on the REST surface so browser
// frontends on other ports can call the auth endpoints. WebSocket
// upgrades go through checkOrigin instead.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && s.originAllowed(origin)
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if r.Method == http.MethodOptions && origin != "" {
			if !allowed {
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Stop shuts the server down, closing the listener and every live
// connection, then waits up to timeout for session goroutines.
func (s *Server) Stop(timeout time.Duration) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if !s.started.Load() {
		return nil
	}

	s.shutdownOnce.Do(func() { close(s.shutdown) })
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if s.httpServer != nil {
		_ = s.httpServer.Shutdown(ctx)
	}

	s.clientsMu.Lock()
	for _, conn := range s.clients {
		_ = conn.Close()
	}
	s.clients = make(map[string]*websocket.Conn)
	s.clientsMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		s.started.Store(false)
		return pcerrors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"server", "Stop", "wait for sessions",
		)
	}

	if s.registry != nil {
		s.registry.Unregister("server", "connections_rejected")
	}

	s.started.Store(false)
	s.logger.Info("server stopped")
	return nil
}

// Health implements health.Checker.
func (s *Server) Health() health.Status {
	started := s.started.Load()
	uptime := time.Duration(0)
	if started && !s.startTime.IsZero() {
		uptime = time.Since(s.startTime)
	}
	return health.Status{
		Healthy:        started,
		LastCheck:      time.Now(),
		Uptime:         uptime,
		ActiveSessions: s.clientCount(),
		ErrorCount:     int(s.errorCount.Load()),
	}
}

func (s *Server) clientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// checkOrigin allows every origin when no allowlist is configured.
func (s *Server) checkOrigin(r *http.Request) bool {
	return s.originAllowed(r.Header.Get("Origin"))
}

// handleWebSocket authenticates, rate-limits and upgrades a connection,
// then hands it to a session loop goroutine.
func (s *Server) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.shutdown:
		s.trackRejected("shutdown")
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.trackError("rate_limited")
		s.trackRejected("rate_limited")
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	var userID string
	if s.authSvc != nil {
		id, err := s.authSvc.Authenticate(r)
		if err != nil {
			s.trackError("auth_failed")
			s.trackRejected("auth_failed")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		userID = id
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.trackError("upgrade")
		return
	}

	sessionID := uuid.NewString()
	s.clientsMu.Lock()
	s.clients[sessionID] = conn
	s.clientsMu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
		s.metrics.SessionsTotal.Inc()
	}

	logger := s.logger
	if userID != "" {
		logger = logger.With("user_id", userID)
	}
	logger.Info("session opened", "session_id", sessionID, "remote", r.RemoteAddr)

	s.wg.Add(1)
	go s.runSession(ctx, sessionID, conn, logger)
}

func (s *Server) runSession(ctx context.Context, sessionID string, conn *websocket.Conn, logger *slog.Logger) {
	defer s.wg.Done()
	defer func() {
		_ = conn.Close()
		s.clientsMu.Lock()
		delete(s.clients, sessionID)
		s.clientsMu.Unlock()
		if s.metrics != nil {
			s.metrics.SessionsActive.Dec()
		}
	}()

	loop := session.New(sessionID, conn, s.estimator, session.Options{
		TargetFPS:       s.pipeline.TargetFPS,
		MaxFrameWidth:   s.pipeline.MaxFrameWidth,
		SkeletonDefault: s.pipeline.SkeletonDefault,
		VerboseDefault:  s.pipeline.VerboseDefault,
	}, s.metrics, logger)

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		s.trackError("session")
		logger.Log(ctx, sessionEndLevel(err), "session ended with error",
			"session_id", sessionID, "error", err)
		return
	}
	logger.Info("session closed", "session_id", sessionID)
}

// sessionEndLevel maps a session-ending error to a log level. Transient
// transport failures are routine client churn; anything else is notable.
func sessionEndLevel(err error) slog.Level {
	if pcerrors.IsTransient(err) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

func (s *Server) trackError(kind string) {
	s.errorCount.Add(1)
	if s.metrics != nil {
		s.metrics.ErrorsTotal.WithLabelValues("server", kind).Inc()
	}
}

func (s *Server) trackRejected(reason string) {
	if s.rejected != nil {
		s.rejected.WithLabelValues(reason).Inc()
	}
}
