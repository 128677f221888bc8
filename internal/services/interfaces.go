package services

import (
	"context"

	"github.com/dimitrije/teamsync/internal/models"
	"github.com/google/uuid"
)

// Gateway defines the organization operations used by OrganizationService.
// Invite, Remove and RemoveFromOrganization are idempotent. CreateTeam returns
// an empty slug when nothing was created.
type Gateway interface {
	ListTeams(ctx context.Context, org string) ([]models.RemoteTeam, error)
	CreateTeam(ctx context.Context, org, displayName string) (string, error)
	DeleteTeam(ctx context.Context, org, slug string) error
	ListMembers(ctx context.Context, org, slug string) ([]string, error)
	ListInvitations(ctx context.Context, org, slug string) ([]string, error)
	Invite(ctx context.Context, org, slug, login string) error
	Remove(ctx context.Context, org, slug, login string) error
	RemoveFromOrganization(ctx context.Context, org, login string) error
}

// Observer receives one message per action taken and per failure skipped.
type Observer interface {
	Log(message string)
}

// Journal defines the methods used by JournalObserver and the CLI from JournalService
type Journal interface {
	StartRun(ctx context.Context, org, mode string, dryRun bool) (*models.Run, error)
	RecordAction(ctx context.Context, runID uuid.UUID, message string) error
	FinishRun(ctx context.Context, runID uuid.UUID, status string, runErr error) error
}
