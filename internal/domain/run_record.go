package domain

import (
	"time"
)

// RunStatus represents the overall status of a release run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusAborted   RunStatus = "aborted"
	RunStatusFailed    RunStatus = "failed"
)

// StepStatus represents the status of an individual step
type StepStatus string

const (
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusAborted   StepStatus = "aborted"
	StepStatusFailed    StepStatus = "failed"
)

// StepName identifies a step of the release sequence
type StepName string

const (
	StepCheckAtTag       StepName = "check_at_tag"
	StepResolveTag       StepName = "resolve_tag"
	StepInitHook         StepName = "init_hook"
	StepDirtyCheck       StepName = "dirty_check"
	StepReportLatest     StepName = "report_latest"
	StepUpdateManifests  StepName = "update_manifests"
	StepBeforeCommitHook StepName = "before_commit_hook"
	StepCommit           StepName = "commit"
	StepPromptTag        StepName = "prompt_tag"
	StepCreateTag        StepName = "create_tag"
	StepPush             StepName = "push"
	StepAfterPushHook    StepName = "after_push_hook"
)

// RunRecord is the journal entry of a single release run
type RunRecord struct {
	SessionID string       `json:"session_id"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Tags      TagResult    `json:"tags"`
	Branch    string       `json:"branch,omitempty"`
	Remote    string       `json:"remote,omitempty"`
	Local     bool         `json:"local"`
	Steps     []StepRecord `json:"steps"`
	Status    RunStatus    `json:"status"`
	Error     string       `json:"error,omitempty"`
}

// StepRecord represents a single step in the run
type StepRecord struct {
	Name        StepName   `json:"name"`
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewRunRecord creates a new run record
func NewRunRecord(sessionID string) *RunRecord {
	now := time.Now()
	return &RunRecord{
		SessionID: sessionID,
		StartedAt: now,
		UpdatedAt: now,
		Steps:     []StepRecord{},
		Status:    RunStatusRunning,
	}
}

// MarkStepStarted appends a running step record
func (r *RunRecord) MarkStepStarted(name StepName) {
	now := time.Now()
	r.Steps = append(r.Steps, StepRecord{
		Name:      name,
		Status:    StepStatusRunning,
		StartedAt: now,
	})
	r.UpdatedAt = now
}

// MarkStepCompleted marks the running step as completed
func (r *RunRecord) MarkStepCompleted(name StepName) {
	r.finishStep(name, StepStatusCompleted, nil)
}

// MarkStepFailed marks the running step as failed, or aborted when err is an
// expected abort, and propagates the outcome to the run.
func (r *RunRecord) MarkStepFailed(name StepName, err error) {
	status, runStatus := StepStatusFailed, RunStatusFailed
	if IsAbort(err) {
		status, runStatus = StepStatusAborted, RunStatusAborted
	}
	r.finishStep(name, status, err)
	r.Status = runStatus
	r.Error = err.Error()
}

// MarkCompleted marks the whole run as completed
func (r *RunRecord) MarkCompleted() {
	r.Status = RunStatusCompleted
	r.UpdatedAt = time.Now()
}

// LastStep returns the most recent step
func (r *RunRecord) LastStep() *StepRecord {
	if len(r.Steps) == 0 {
		return nil
	}
	return &r.Steps[len(r.Steps)-1]
}

// CompletedSteps returns the names of completed steps in execution order
func (r *RunRecord) CompletedSteps() []StepName {
	var names []StepName
	for _, step := range r.Steps {
		if step.Status == StepStatusCompleted {
			names = append(names, step.Name)
		}
	}
	return names
}

func (r *RunRecord) finishStep(name StepName, status StepStatus, err error) {
	now := time.Now()
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if r.Steps[i].Name == name && r.Steps[i].Status == StepStatusRunning {
			r.Steps[i].Status = status
			r.Steps[i].CompletedAt = &now
			if err != nil {
				r.Steps[i].Error = err.Error()
			}
			break
		}
	}
	r.UpdatedAt = now
}
