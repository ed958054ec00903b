package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// TransactionService is what the handlers need from the service layer.
type TransactionService interface {
	Record(ctx context.Context, t core.Transaction) error
	Report(ctx context.Context, start, end core.Date) (services.Report, error)
}

// Options tune the server. Zero values take defaults.
type Options struct {
	Logger *applog.Logger
	// CacheTTL is how long a report stays cached; zero disables caching.
	CacheTTL     time.Duration
	CacheSize    int
	RateLimit    int
	ReadyCheck   func(ctx context.Context) error
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	http.Server
	svc       TransactionService
	templates *template.Template
	logger    *applog.Logger
	ready     func(ctx context.Context) error

	reports      *cache.LRUCache[services.Report]
	generation   atomic.Uint64
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and configures routes and
// middleware.
func NewServer(addr string, svc TransactionService, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = applog.Default()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimit > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimit
	}

	s := &Server{
		svc:       svc,
		templates: t,
		logger:    opts.Logger.WithComponent(applog.ComponentHTTP),
		ready:     opts.ReadyCheck,
		limiter:   ratelimit.NewLimiter(limitCfg),
	}
	if opts.CacheTTL > 0 {
		s.reports = cache.NewLRUCache[services.Report](opts.CacheSize, opts.CacheTTL)
		s.cacheManager = cache.NewManager()
		s.cacheManager.Register(s.reports)
		s.cacheManager.StartCleanup(opts.CacheTTL)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	detector := security.NewDetector()

	r := mux.NewRouter()
	r.Use(
		trace.Middleware(detector.ClientIP),
		applog.Middleware(s.logger, applog.ComponentHTTP),
		security.Headers(security.DefaultHeadersConfig()),
		detector.Middleware,
		s.limiter.Middleware(detector.ClientIP, nil),
	)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssets(3600)(static)).Methods(http.MethodGet)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/add", s.handleAddForm).Methods(http.MethodGet)
	r.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	r.HandleFunc("/view", s.handleView).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", s.apiListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.apiCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/summary", s.apiSummary).Methods(http.MethodGet)
	api.HandleFunc("/series", s.apiSeries).Methods(http.MethodGet)

	return r
}

// report serves the range from cache when possible.
func (s *Server) report(ctx context.Context, start, end core.Date) (services.Report, error) {
	key := start.Key() + "|" + end.Key()
	if s.reports != nil {
		if rep, ok := s.reports.Get(key); ok {
			s.logger.DebugContext(ctx, "Report cache hit", applog.FieldRangeStart, start.String(), applog.FieldRangeEnd, end.String())
			return rep, nil
		}
	}
	gen := s.generation.Load()
	rep, err := s.svc.Report(ctx, start, end)
	if err != nil {
		return services.Report{}, err
	}
	// Skip caching when an append raced with the query.
	if s.reports != nil && s.generation.Load() == gen {
		s.reports.Set(key, rep)
	}
	return rep, nil
}

// record appends through the service and drops every cached report.
func (s *Server) record(ctx context.Context, t core.Transaction) error {
	if err := s.svc.Record(ctx, t); err != nil {
		return err
	}
	s.generation.Add(1)
	if s.reports != nil {
		s.reports.Purge()
	}
	return nil
}

// Shutdown stops background goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
