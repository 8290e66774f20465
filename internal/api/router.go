package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/hegemony/internal/api/handlers"
	"github.com/wonny/hegemony/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	sectorHandler *handlers.SectorHandler,
	companyHandler *handlers.CompanyHandler,
	pipelineHandler *handlers.PipelineHandler,
	hub *Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Run-summary feed
	r.HandleFunc("/ws", hub.ServeWS)

	// API
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sectors", sectorHandler.GetSectors).Methods("GET")
	api.HandleFunc("/sectors/{id}/rankings", sectorHandler.GetRankings).Methods("GET")

	api.HandleFunc("/companies/{ticker}/score", companyHandler.GetScore).Methods("GET")
	api.HandleFunc("/companies/{ticker}/history", companyHandler.GetHistory).Methods("GET")

	api.HandleFunc("/pipeline/run", pipelineHandler.Run).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "hegemony-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
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
					log.WithFields(map[string]interface{}{
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
