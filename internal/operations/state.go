package operations

import (
	"sync"
	"time"

	"laptopstats/internal/charts"
	"laptopstats/internal/config"
	"laptopstats/internal/dataprocessing"
	"laptopstats/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState carries one analysis run: its configuration, the data
// each Step hands to the next, and the runtime state of every Step.
type OperationState struct {
	mu sync.RWMutex

	ID        string
	Config    *config.Config
	Status    OperationStatusValue
	StartTime time.Time
	EndTime   *time.Time

	Steps map[string]*StepState

	// Raw is the table as loaded, Clean the typed table after cleaning
	Raw        *dataprocessing.Table
	Clean      *dataprocessing.Table
	CleanStats dataprocessing.CleanStats
	Summary    *domain.Summary
	Groupings  []domain.Grouping
	Charts     []charts.Result

	outputs []string

	Error error
}

// NewOperationState creates a new operation state
func NewOperationState(id string, cfg *config.Config) *OperationState {
	if cfg == nil {
		cfg = config.Default()
	}
	return &OperationState{
		ID:        id,
		Config:    cfg,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the overall status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage updates the state of a specific Step
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stageID] = state
}

// AddOutput records a file written by the run
func (p *OperationState) AddOutput(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outputs = append(p.outputs, path)
}

// Outputs returns the files written so far, in the order they were written
func (p *OperationState) Outputs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.outputs))
	copy(out, p.outputs)
	return out
}

// Duration returns how long the operation ran
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime == nil {
		return time.Since(p.StartTime)
	}
	return p.EndTime.Sub(p.StartTime)
}
