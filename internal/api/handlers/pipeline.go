package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/pkg/logger"
)

// PipelineRunner scores and ranks the universe as one unit
type PipelineRunner interface {
	Run(ctx context.Context, asOf *time.Time) (*contracts.RunResult, error)
}

// Broadcaster pushes run summaries to connected feed clients
type Broadcaster interface {
	Broadcast(result *contracts.RunResult)
}

// PipelineHandler triggers scoring and ranking runs over HTTP
type PipelineHandler struct {
	runner      PipelineRunner
	broadcaster Broadcaster
	logger      *logger.Logger
	running     atomic.Bool
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(runner PipelineRunner, broadcaster Broadcaster, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		runner:      runner,
		broadcaster: broadcaster,
		logger:      log,
	}
}

// Run triggers a scoring and ranking run
// POST /api/pipeline/run?date=YYYY-MM-DD
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.running.CompareAndSwap(false, true) {
		respondError(w, http.StatusConflict, "A pipeline run is already in progress")
		return
	}
	defer h.running.Store(false)

	var asOf *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD: "+raw)
			return
		}
		asOf = &parsed
	}

	result, err := h.runner.Run(r.Context(), asOf)
	if err != nil {
		h.logger.WithError(err).Error("Pipeline run failed")
		respondError(w, http.StatusInternalServerError, "Pipeline run failed: "+err.Error())
		return
	}

	if h.broadcaster != nil && !result.Skipped {
		h.broadcaster.Broadcast(result)
	}

	respondJSON(w, http.StatusOK, result)
}
