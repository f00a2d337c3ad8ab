package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quantumquest/quantum-quest-go/internal/metrics"
	"github.com/quantumquest/quantum-quest-go/internal/rooms"
	"github.com/quantumquest/quantum-quest-go/internal/store"
	"github.com/quantumquest/quantum-quest-go/internal/telemetry"
)

// Server handles HTTP requests
type Server struct {
	manager      *rooms.Manager
	db           store.DB
	sink         telemetry.Sink
	recorder     *metrics.Recorder
	registry     *prometheus.Registry
	errorHandler *ErrorHandler
	logger       *log.Logger
	startTime    time.Time

	// per-room validation counters feeding the accuracy telemetry field
	mu        sync.Mutex
	attempts  map[string]int
	successes map[string]int
}

// NewServer creates a new API server. db and sink may be nil; persistence
// and forwarding are then skipped.
func NewServer(manager *rooms.Manager, db store.DB, sink telemetry.Sink) *Server {
	logger := log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)
	registry := prometheus.NewRegistry()

	if sink == nil {
		sink = telemetry.NopSink{}
	}

	return &Server{
		manager:      manager,
		db:           db,
		sink:         sink,
		recorder:     metrics.NewRecorder(registry),
		registry:     registry,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		startTime:    time.Now(),
		attempts:     make(map[string]int),
		successes:    make(map[string]int),
	}
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.CORSMiddleware)

	// Health and monitoring endpoints
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rooms", s.handleListRooms)
		r.Route("/rooms/{roomID}", func(r chi.Router) {
			r.Post("/init", s.handleInitRoom)
			r.Post("/actions", s.handleRoomAction)
			r.Post("/reset", s.handleResetRoom)
			r.Get("/hint", s.handleRoomHint)
			r.Get("/introduction", s.handleRoomIntroduction)
			r.Get("/instructions", s.handleRoomInstructions)
			r.Get("/progress", s.handleRoomProgress)
			r.Get("/state", s.handleRoomState)
		})
		r.Post("/telemetry/measurements", s.handleSaveMeasurement)
		r.Get("/telemetry/interactions", s.handleListInteractions)
		r.Get("/telemetry/completions", s.handleListCompletions)
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// roomAccuracy updates the per-room counters and returns the running
// success ratio inputs.
func (s *Server) roomAccuracy(room string, success bool) (successes, attempts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[room]++
	if success {
		s.successes[room]++
	}
	return s.successes[room], s.attempts[room]
}
