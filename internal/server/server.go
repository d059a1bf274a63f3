package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/CoderSATTY/Jobs-Tinder/internal/config"
	"github.com/CoderSATTY/Jobs-Tinder/internal/db"
	"github.com/CoderSATTY/Jobs-Tinder/internal/feed"
	"github.com/CoderSATTY/Jobs-Tinder/internal/profile"
	"github.com/CoderSATTY/Jobs-Tinder/internal/server/middleware"
	"github.com/CoderSATTY/Jobs-Tinder/internal/server/ratelimit"
)

// DataStore is the persistence surface the feed handlers need.
type DataStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*db.Profile, error)
	SaveMatch(ctx context.Context, userID uuid.UUID, jobID string, score float64) error
	ListMatches(ctx context.Context, userID uuid.UUID) ([]db.Match, error)
	GetJobSummary(ctx context.Context, jobID string) (*db.JobSummary, error)
}

// JobFeed pages through a user's ranked jobs.
type JobFeed interface {
	NextBatch(ctx context.Context, userID uuid.UUID) (*feed.Batch, error)
	PeekBatch(ctx context.Context, userID uuid.UUID) (*feed.Batch, error)
	OpenStream(ctx context.Context, userID uuid.UUID) (*feed.Stream, error)
}

// Ingester runs the resume ingest pipeline.
type Ingester interface {
	Ingest(ctx context.Context, userID uuid.UUID, filename string, data []byte) (*profile.StructuredProfile, error)
	Wait()
}

// Options holds the server's dependencies.
type Options struct {
	Port           int
	Store          DataStore
	Users          UserStore
	Feed           JobFeed
	Ingester       Ingester
	JWTConfig      *config.JWTConfig
	PasswordConfig *config.PasswordConfig
	RateLimit      *ratelimit.Config
	Log            *zap.SugaredLogger
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	store       DataStore
	feed        JobFeed
	ingester    Ingester
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	upgrader    websocket.Upgrader
	log         *zap.SugaredLogger
}

// New creates a new server instance.
func New(opts Options) *Server {
	s := &Server{
		store:       opts.Store,
		feed:        opts.Feed,
		ingester:    opts.Ingester,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		log:         opts.Log,
		upgrader: websocket.Upgrader{
			// Browser clients connect cross-origin from the frontend dev server.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.userService = NewUserService(opts.Users, opts.PasswordConfig)
	s.jwtService = NewJWTService(opts.JWTConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket connections are long-lived
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	auth := middleware.Auth(s.jwtService)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("GET /health", s.handleHealth)

	// The websocket endpoint authenticates via query parameter because
	// browser websocket clients cannot set an Authorization header.
	mux.HandleFunc("GET /ws/jobs", s.handleJobsWS)

	mux.Handle("POST /parse-resume", auth(http.HandlerFunc(s.handleParseResume)))
	mux.Handle("GET /save-profile", auth(http.HandlerFunc(s.handleSaveProfile)))
	mux.Handle("GET /me", auth(http.HandlerFunc(s.handleMe)))
	mux.Handle("POST /match", auth(http.HandlerFunc(s.handleMatch)))
	mux.Handle("GET /matches", auth(http.HandlerFunc(s.handleMatches)))
	mux.Handle("GET /debug/rankings", auth(http.HandlerFunc(s.handleDebugRankings)))

	return mux
}

// Handler returns the fully assembled handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Infow("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Fatalw("server error", "error", err)
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()

	// Let detached ranking recomputes finish before the caller closes the DB.
	s.ingester.Wait()

	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorw("failed to encode response", "error", err)
	}
}

// errorResponse maps an error through the taxonomy and writes it as JSON.
// Quota errors carry a Retry-After hint so clients can back off.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	if status == http.StatusInternalServerError {
		s.log.Errorw("request failed", "error", err)
	}
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}

// extractClientID extracts the client identifier (IP) from the request.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
