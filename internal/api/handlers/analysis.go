package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/wonny/newsalpha/backend/internal/apperror"
	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/internal/s2_analysis"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// regressionShortfall is the client message when the frame is too small.
const regressionShortfall = "Need more data to predict stock prices."

// AnalysisHandler serves the analysis routines.
type AnalysisHandler struct {
	service *s2_analysis.Service
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *s2_analysis.Service, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  log,
	}
}

// Regression returns the in-sample OLS fit
// GET /api/analysis/regression
func (h *AnalysisHandler) Regression(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Regression(r.Context())
	if err != nil {
		if errors.Is(err, contracts.ErrInsufficientData) {
			h.logger.WithError(err).Info("Regression skipped")
			respondAppError(w, apperror.Wrap(apperror.InsufficientData, regressionShortfall, err))
			return
		}
		h.fail(w, "regression", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"evaluation": "in-sample",
		"result":     result,
	})
}

// Correlation returns the per-source correlation metrics
// GET /api/analysis/correlation
func (h *AnalysisHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Correlation(r.Context())
	if err != nil {
		h.fail(w, "correlation", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Timeline returns the sentiment and close series
// GET /api/analysis/timeline?rescale=true
func (h *AnalysisHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	rescale := false
	if v := r.URL.Query().Get("rescale"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'rescale' value (expected true or false)")
			return
		}
		rescale = parsed
	}

	tl, err := h.service.Timeline(r.Context(), rescale)
	if err != nil {
		h.fail(w, "timeline", err)
		return
	}
	respondJSON(w, http.StatusOK, tl)
}

// Stocks returns the per-symbol comparison bars
// GET /api/analysis/stocks
func (h *AnalysisHandler) Stocks(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.service.StockComparison(r.Context())
	if err != nil {
		h.fail(w, "stocks", err)
		return
	}
	respondJSON(w, http.StatusOK, cmp)
}

func (h *AnalysisHandler) fail(w http.ResponseWriter, routine string, err error) {
	appErr := apperror.From(err)
	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("routine", routine).Error("Analysis failed")
	}
	respondAppError(w, appErr)
}
