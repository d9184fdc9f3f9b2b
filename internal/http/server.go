package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"finsight/internal/cache"
	"finsight/internal/core"
	applog "finsight/internal/log"
	"finsight/internal/middleware/ratelimit"
	"finsight/internal/middleware/security"
	"finsight/internal/middleware/trace"
	"finsight/internal/services"
)

// Options carries the tunables the server takes from configuration.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	CacheTTL           time.Duration
	CacheSize          int
}

// Server is the JSON API in front of the ledger and the analytics
// engines. Read endpoints are cached; every mutation invalidates the
// derived data wholesale.
type Server struct {
	http.Server

	transactions *services.TransactionService
	insights     *services.InsightService

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	listCache        *cache.LRUCache[[]core.Transaction]
	allocationsCache *cache.LRUCache[[]core.CategoryAllocation]
	insightsCache    *cache.LRUCache[[]string]
	trendsCache      *cache.LRUCache[[]core.CategoryAnalytics]
	goalCache        *cache.LRUCache[core.GoalStatus]
	cacheManager     *cache.Manager

	ready atomic.Bool
	now   func() time.Time
}

func NewServer(opts Options, transactions *services.TransactionService, insights *services.InsightService) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	detector := security.NewDetector()
	s := &Server{
		transactions: transactions,
		insights:     insights,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),

		listCache:        cache.NewLRUCache[[]core.Transaction](opts.CacheSize, opts.CacheTTL),
		allocationsCache: cache.NewLRUCache[[]core.CategoryAllocation](opts.CacheSize, opts.CacheTTL),
		insightsCache:    cache.NewLRUCache[[]string](opts.CacheSize, opts.CacheTTL),
		trendsCache:      cache.NewLRUCache[[]core.CategoryAnalytics](opts.CacheSize, opts.CacheTTL),
		goalCache:        cache.NewLRUCache[core.GoalStatus](opts.CacheSize, opts.CacheTTL),
		cacheManager:     cache.NewManager(),

		now: time.Now,
	}

	s.cacheManager.Register(s.listCache)
	s.cacheManager.Register(s.allocationsCache)
	s.cacheManager.Register(s.insightsCache)
	s.cacheManager.Register(s.trendsCache)
	s.cacheManager.Register(s.goalCache)
	s.cacheManager.StartCleanup(opts.CacheTTL)

	s.Server.Addr = opts.Addr
	s.Server.Handler = s.buildHandler()
	s.Server.ReadHeaderTimeout = 10 * time.Second
	s.Server.ReadTimeout = 30 * time.Second
	s.Server.WriteTimeout = 30 * time.Second
	s.Server.IdleTimeout = 120 * time.Second

	s.ready.Store(true)
	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handleSaveProfile)

	mux.HandleFunc("GET /api/allocations", s.handleAllocations)
	mux.HandleFunc("POST /api/savings-plan", s.handleSavingsPlan)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /api/goal-progress", s.handleGoalProgress)
	mux.HandleFunc("GET /api/projection", s.handleProjection)
	mux.HandleFunc("POST /api/chat", s.handleChat)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	rateLimited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})

	var handler http.Handler = mux
	handler = s.suspiciousRequestLogger(handler)
	handler = rateLimited(handler)
	handler = headers.Middleware(handler)
	handler = applog.ComponentMiddleware(applog.ComponentHTTP)(handler)
	handler = s.tracer.Middleware(handler)
	return handler
}

// suspiciousRequestLogger records scanner-looking traffic. Detection is
// log-only, the request still goes through the normal pipeline.
func (s *Server) suspiciousRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r),
				"user_agent", r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateDerived drops every cached computation. Mutations are rare
// compared to reads, so wholesale invalidation is fine.
func (s *Server) invalidateDerived() {
	s.listCache.Clear()
	s.allocationsCache.Clear()
	s.insightsCache.Clear()
	s.trendsCache.Clear()
	s.goalCache.Clear()
}

func (s *Server) monthKey(prefix string) string {
	return fmt.Sprintf("%s:%s", prefix, s.now().UTC().Format("2006-01"))
}

// Shutdown stops accepting new requests and tears down the background
// helpers after in-flight requests drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	err := s.Server.Shutdown(ctx)
	s.limiter.Stop()
	s.cacheManager.Stop()
	return err
}
