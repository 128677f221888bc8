package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunModeSync  = "sync"
	RunModeClean = "clean"
)

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

type Run struct {
	ID           uuid.UUID  `json:"id"`
	Organization string     `json:"organization"`
	Mode         string     `json:"mode"`
	DryRun       bool       `json:"dry_run"`
	Status       string     `json:"status"`
	Error        *string    `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func (r *Run) IsFinished() bool {
	return r.FinishedAt != nil
}

type RunAction struct {
	ID        uuid.UUID `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
