package handlers

import (
	"sort"
	"sync"
	"time"

	"stocklens/internal/contracts"
)

// RunStatus is the lifecycle state of a tracked run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one tracked batch run.
type RunRecord struct {
	ID        string                 `json:"id"`
	Status    RunStatus              `json:"status"`
	Symbols   []string               `json:"symbols"`
	StartedAt time.Time              `json:"started_at"`
	EndedAt   *time.Time             `json:"ended_at,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Result    *contracts.BatchResult `json:"result,omitempty"`
}

// RunRegistry is an in-memory index of batch runs, newest first.
type RunRegistry struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

// NewRunRegistry creates an empty registry.
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{runs: make(map[string]*RunRecord)}
}

// Start registers a new running run.
func (r *RunRegistry) Start(id string, symbols []string) {
	rec := &RunRecord{
		ID:        id,
		Status:    RunRunning,
		Symbols:   symbols,
		StartedAt: time.Now(),
	}

	r.mu.Lock()
	r.runs[id] = rec
	r.mu.Unlock()
}

// Complete marks a run finished with its batch result.
func (r *RunRegistry) Complete(id string, result *contracts.BatchResult) {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.runs[id]; ok {
		rec.Status = RunCompleted
		rec.EndedAt = &now
		rec.Result = result
	}
}

// Fail marks a run as failed with a run-level error.
func (r *RunRegistry) Fail(id string, err error) {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.runs[id]; ok {
		rec.Status = RunFailed
		rec.EndedAt = &now
		rec.Error = err.Error()
	}
}

// Get returns a snapshot of one run by id.
func (r *RunRegistry) Get(id string) (RunRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.runs[id]
	if !ok {
		return RunRecord{}, false
	}
	return *rec, true
}

// List returns snapshots of all runs, newest first.
func (r *RunRegistry) List() []RunRecord {
	r.mu.RLock()
	out := make([]RunRecord, 0, len(r.runs))
	for _, rec := range r.runs {
		out = append(out, *rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}
