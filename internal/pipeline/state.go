package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StepState records one phase of a run.
type StepState struct {
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	DurationMs int64      `json:"durationMs,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Summary carries the run-level counters reported on success.
type Summary struct {
	ResearchQueue int `json:"researchQueue"`
	Researched    int `json:"researched"`
	Inserted      int `json:"inserted"`
}

// RunState is the persisted state of one pipeline run. It is rewritten on
// every transition so a crashed run leaves an inspectable trail.
type RunState struct {
	RunID       string      `json:"runId"`
	StartedAt   time.Time   `json:"startedAt"`
	FinishedAt  *time.Time  `json:"finishedAt,omitempty"`
	Status      string      `json:"status"`
	RunDir      string      `json:"runDir"`
	CutoffScore int         `json:"cutoffScore"`
	Steps       []StepState `json:"steps"`
	Error       string      `json:"error,omitempty"`
	Summary     *Summary    `json:"summary,omitempty"`
}

// newRunID derives a filesystem-safe id from the start time.
func newRunID(t time.Time) string {
	id := t.UTC().Format(time.RFC3339)
	id = strings.ReplaceAll(id, ":", "-")
	return strings.ReplaceAll(id, ".", "-")
}

func newRunState(runsDir string, startedAt time.Time, cutoff int) *RunState {
	id := newRunID(startedAt)
	return &RunState{
		RunID:       id,
		StartedAt:   startedAt,
		Status:      StatusRunning,
		RunDir:      filepath.Join(runsDir, id),
		CutoffScore: cutoff,
		Steps:       []StepState{},
	}
}

// save persists the state under <run-dir>/run.json.
func (r *RunState) save() error {
	if err := os.MkdirAll(r.RunDir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.RunDir, "run.json"), data, 0o644); err != nil {
		return fmt.Errorf("write run state: %w", err)
	}
	return nil
}

func (r *RunState) lastStep() string {
	if len(r.Steps) == 0 {
		return "unknown"
	}
	return r.Steps[len(r.Steps)-1].Name
}
