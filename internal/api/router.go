package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/newsalpha/backend/internal/api/handlers"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Ingest   *handlers.IngestHandler
	Analysis *handlers.AnalysisHandler
	Data     *handlers.DataHandler
	Progress *handlers.ProgressHub
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Data.Health).Methods("GET")

	// Progress stream
	r.HandleFunc("/ws/ingest", h.Progress.ServeWS).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Ingestion
	api.HandleFunc("/ingest", h.Ingest.IngestAll).Methods("POST")
	api.HandleFunc("/ingest/{source}", h.Ingest.Ingest).Methods("POST")

	// Analysis
	api.HandleFunc("/analysis/regression", h.Analysis.Regression).Methods("GET")
	api.HandleFunc("/analysis/correlation", h.Analysis.Correlation).Methods("GET")
	api.HandleFunc("/analysis/timeline", h.Analysis.Timeline).Methods("GET")
	api.HandleFunc("/analysis/stocks", h.Analysis.Stocks).Methods("GET")

	// Data
	api.HandleFunc("/data/quality", h.Data.GetQuality).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "Not found",
	})
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the hijacker for websockets.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			if r.Header.Get("Upgrade") == "websocket" {
				// the upgrader needs the raw writer
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]any{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]any{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
