package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wonny/newsalpha/backend/internal/apperror"
	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// Pinger checks that the database accepts connections.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DataHandler serves table coverage and health.
type DataHandler struct {
	qualityGate contracts.QualityGate
	db          Pinger
	logger      *logger.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(qualityGate contracts.QualityGate, db Pinger, log *logger.Logger) *DataHandler {
	return &DataHandler{
		qualityGate: qualityGate,
		db:          db,
		logger:      log,
	}
}

// QualityResponse wraps the coverage snapshot with derived flags.
type QualityResponse struct {
	*contracts.DataQualitySnapshot
	CoverageRate       float64 `json:"coverage_rate"`
	ReadyForRegression bool    `json:"ready_for_regression"`
}

// GetQuality returns row counts and date spans of every table
// GET /api/data/quality
func (h *DataHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.qualityGate.Check(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to check data quality")
		respondAppError(w, apperror.From(err))
		return
	}

	respondJSON(w, http.StatusOK, QualityResponse{
		DataQualitySnapshot: snapshot,
		CoverageRate:        snapshot.CoverageRate(),
		ReadyForRegression:  snapshot.ReadyForRegression(),
	})
}

// Health pings the database
// GET /health
func (h *DataHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	body := map[string]any{
		"status":  "ok",
		"service": "newsalpha-api",
	}
	if err := h.db.Ping(ctx); err != nil {
		h.logger.WithError(err).Warn("Health check failed")
		body["status"] = "degraded"
		body["database"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	body["database"] = "ok"
	respondJSON(w, http.StatusOK, body)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func respondAppError(w http.ResponseWriter, err *apperror.AppError) {
	respondJSON(w, err.HTTPStatus(), map[string]string{
		"error": err.Message(),
		"code":  string(err.Code()),
	})
}
