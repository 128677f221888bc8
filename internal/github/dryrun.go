package github

import (
	"context"

	"github.com/dimitrije/teamsync/internal/models"
)

// Gateway is the set of organization operations the client offers.
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

var _ Gateway = (*Client)(nil)
var _ Gateway = (*DryRun)(nil)

// DryRun forwards reads to the wrapped gateway and drops every write, so a
// run reports what it would do without changing the organization.
type DryRun struct {
	delegate Gateway
}

func NewDryRun(delegate Gateway) *DryRun {
	return &DryRun{delegate: delegate}
}

func (d *DryRun) ListTeams(ctx context.Context, org string) ([]models.RemoteTeam, error) {
	return d.delegate.ListTeams(ctx, org)
}

func (d *DryRun) ListMembers(ctx context.Context, org, slug string) ([]string, error) {
	return d.delegate.ListMembers(ctx, org, slug)
}

func (d *DryRun) ListInvitations(ctx context.Context, org, slug string) ([]string, error) {
	return d.delegate.ListInvitations(ctx, org, slug)
}

// CreateTeam returns an empty slug: no team exists remotely afterwards.
func (d *DryRun) CreateTeam(ctx context.Context, org, displayName string) (string, error) {
	return "", nil
}

func (d *DryRun) DeleteTeam(ctx context.Context, org, slug string) error {
	return nil
}

func (d *DryRun) Invite(ctx context.Context, org, slug, login string) error {
	return nil
}

func (d *DryRun) Remove(ctx context.Context, org, slug, login string) error {
	return nil
}

func (d *DryRun) RemoveFromOrganization(ctx context.Context, org, login string) error {
	return nil
}
