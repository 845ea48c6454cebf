package operations

import (
	"sync"
	"time"

	"shiprisk/internal/dataprocessing"
	"shiprisk/internal/errors"
	"shiprisk/internal/modeling"
	"shiprisk/pkg/contracts/domain"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState carries the artifacts of one run between steps
type RunState struct {
	mu sync.RWMutex

	ID        string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time
	steps     []*StepState

	Dataset    *Dataset
	Partitions *Partitions
	Fitted     *FittedModel
	Report     *domain.Report
}

// NewRunState creates the state for a run
func NewRunState(id string) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusRunning,
		StartTime: time.Now(),
	}
}

// Steps returns the step states in execution order
func (s *RunState) Steps() []*StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*StepState(nil), s.steps...)
}

func (s *RunState) addStep(id, name string) *StepState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss := NewStepState(id, name)
	s.steps = append(s.steps, ss)
	return ss
}

func (s *RunState) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
	if err != nil {
		s.Status = RunStatusFailed
	}
}

// Dataset is the cleaned, engineered dataset persisted by the prepare step
type Dataset struct {
	RunID      string                      `json:"run_id"`
	InputFile  string                      `json:"input_file"`
	CreatedAt  time.Time                   `json:"created_at"`
	Cleaning   domain.CleaningSummary      `json:"cleaning"`
	Statistics []domain.ColumnStatistics   `json:"statistics"`
	Rows       []domain.EngineeredShipment `json:"rows"`
}

// Labels returns the target of every row
func (d *Dataset) Labels() []int {
	labels := make([]int, len(d.Rows))
	for i, r := range d.Rows {
		labels[i] = r.OnTime
	}
	return labels
}

// Partitions is the persisted split of a Dataset
type Partitions struct {
	RunID   string                    `json:"run_id"`
	Seed    int64                     `json:"seed"`
	Sets    dataprocessing.Partition  `json:"sets"`
	Balance []domain.PartitionBalance `json:"balance"`
}

// FittedModel bundles the model with the transforms its inputs need
type FittedModel struct {
	RunID      string                     `json:"run_id"`
	FitScope   string                     `json:"fit_scope"`
	Exclude    []string                   `json:"exclude,omitempty"`
	Encoder    *dataprocessing.Encoder    `json:"encoder"`
	Normalizer *dataprocessing.Normalizer `json:"normalizer"`
	Model      *modeling.Model            `json:"model"`
	Warnings   []domain.WarningSummary    `json:"warnings,omitempty"`
}

// summarizeWarnings tags warnings with the stage that raised them
func summarizeWarnings(stage string, ws []errors.Warning) []domain.WarningSummary {
	out := make([]domain.WarningSummary, len(ws))
	for i, w := range ws {
		out[i] = domain.WarningSummary{Stage: stage, Kind: string(w.Kind), Message: w.Message}
	}
	return out
}
