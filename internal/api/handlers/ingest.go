package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/newsalpha/backend/internal/apperror"
	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/s0_data/collector"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// IngestHandler triggers ingestion runs.
type IngestHandler struct {
	collector *collector.Collector
	logger    *logger.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(col *collector.Collector, log *logger.Logger) *IngestHandler {
	return &IngestHandler{
		collector: col,
		logger:    log,
	}
}

// IngestRequest is the date range of a run.
type IngestRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// IngestResponse carries the status line and the report of one run.
type IngestResponse struct {
	Message string                 `json:"message"`
	Report  contracts.IngestReport `json:"report"`
}

// IngestAllResponse carries every report of a full run.
type IngestAllResponse struct {
	Message string                   `json:"message"`
	Reports []contracts.IngestReport `json:"reports"`
}

func (h *IngestHandler) decodeRange(r *http.Request) (contracts.DateRange, *apperror.AppError) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return contracts.DateRange{}, apperror.New(apperror.BadRequest, "Invalid request body")
	}
	dr, err := contracts.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return contracts.DateRange{}, apperror.From(err)
	}
	return dr, nil
}

// Ingest runs one ingestor
// POST /api/ingest/{source}
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["source"]

	dr, appErr := h.decodeRange(r)
	if appErr != nil {
		respondAppError(w, appErr)
		return
	}

	h.logger.WithFields(map[string]any{
		"source": name,
		"range":  dr.String(),
	}).Info("Ingestion triggered")

	// a run is not aborted when the caller goes away
	report, err := h.collector.Run(context.WithoutCancel(r.Context()), name, dr)
	if err != nil {
		respondAppError(w, apperror.From(err))
		return
	}

	respondJSON(w, http.StatusOK, IngestResponse{
		Message: report.Message(),
		Report:  report,
	})
}

// IngestAll runs every ingestor in order
// POST /api/ingest
func (h *IngestHandler) IngestAll(w http.ResponseWriter, r *http.Request) {
	dr, appErr := h.decodeRange(r)
	if appErr != nil {
		respondAppError(w, appErr)
		return
	}

	h.logger.WithField("range", dr.String()).Info("Full ingestion triggered")

	reports, err := h.collector.RunAll(context.WithoutCancel(r.Context()), dr)
	if err != nil {
		respondAppError(w, apperror.From(err))
		return
	}

	inserted := 0
	for _, rep := range reports {
		inserted += rep.Inserted
	}
	respondJSON(w, http.StatusOK, IngestAllResponse{
		Message: contracts.IngestReport{Target: "All", Inserted: inserted}.Message(),
		Reports: reports,
	})
}
