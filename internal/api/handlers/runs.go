package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"stocklens/internal/contracts"
	"stocklens/pkg/logger"
)

// BatchRunner launches one batch run under a caller-chosen run id.
type BatchRunner interface {
	RunWithID(ctx context.Context, runID string, symbols []string, from, to time.Time) (*contracts.BatchResult, error)
}

// RunsHandler handles batch-run API endpoints
type RunsHandler struct {
	runner   BatchRunner
	registry *RunRegistry
	lookback time.Duration // default fetch window when the request has no from date
	logger   *logger.Logger
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(runner BatchRunner, registry *RunRegistry, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		runner:   runner,
		registry: registry,
		lookback: 547 * 24 * time.Hour, // ~18 months of calendar days
		logger:   log.WithComponent("api.runs"),
	}
}

// RunSummary is the list-view projection of a run.
type RunSummary struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	Symbols   []string   `json:"symbols"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Attempted int        `json:"attempted,omitempty"`
	Succeeded int        `json:"succeeded,omitempty"`
	Failed    int        `json:"failed,omitempty"`
}

// List returns all runs, newest first
// GET /api/v1/runs
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	records := h.registry.List()
	out := make([]RunSummary, len(records))
	for i, rec := range records {
		out[i] = RunSummary{
			ID:        rec.ID,
			Status:    rec.Status,
			Symbols:   rec.Symbols,
			StartedAt: rec.StartedAt,
			EndedAt:   rec.EndedAt,
		}
		if rec.Result != nil {
			out[i].Attempted = rec.Result.Attempted
			out[i].Succeeded = rec.Result.Succeeded
			out[i].Failed = rec.Result.Failed
		}
	}
	respondJSON(w, http.StatusOK, out)
}

// Get returns one run with its full result
// GET /api/v1/runs/{id}
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, ok := h.registry.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// GetSymbol returns one symbol's result within a run
// GET /api/v1/runs/{id}/symbols/{symbol}
func (h *RunsHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	symbol := vars["symbol"]

	rec, ok := h.registry.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}
	if rec.Result == nil {
		respondError(w, http.StatusConflict, "Run still in progress")
		return
	}

	for i := range rec.Result.Results {
		res := &rec.Result.Results[i]
		if res.RawSymbol == symbol || res.Symbol == symbol {
			respondJSON(w, http.StatusOK, res)
			return
		}
	}
	respondError(w, http.StatusNotFound, "Symbol not in run")
}

// CreateRunRequest is the POST /api/v1/runs body.
type CreateRunRequest struct {
	Symbols []string `json:"symbols"`
	From    string   `json:"from,omitempty"` // YYYY-MM-DD
	To      string   `json:"to,omitempty"`   // YYYY-MM-DD
}

// Create launches a batch run in the background
// POST /api/v1/runs
func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Symbols) == 0 {
		respondError(w, http.StatusBadRequest, "At least one symbol is required")
		return
	}

	to := time.Now()
	if req.To != "" {
		parsed, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date format (expected YYYY-MM-DD)")
			return
		}
		to = parsed
	}

	from := to.Add(-h.lookback)
	if req.From != "" {
		parsed, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date format (expected YYYY-MM-DD)")
			return
		}
		from = parsed
	}
	if !from.Before(to) {
		respondError(w, http.StatusBadRequest, "'from' must be before 'to'")
		return
	}

	runID := uuid.NewString()
	h.registry.Start(runID, req.Symbols)

	// The run outlives the HTTP request.
	go func() {
		result, err := h.runner.RunWithID(context.Background(), runID, req.Symbols, from, to)
		if err != nil {
			h.logger.WithError(err).WithField("run_id", runID).Error("Batch run failed")
			h.registry.Fail(runID, err)
			return
		}
		h.registry.Complete(runID, result)
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"run_id": runID,
		"status": string(RunRunning),
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
