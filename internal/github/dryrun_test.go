package github

import (
	"context"
	"testing"

	"github.com/dimitrije/teamsync/internal/models"
	"github.com/dimitrije/teamsync/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDryRun_ForwardsReads(t *testing.T) {
	delegate := new(testutil.MockGateway)
	dry := NewDryRun(delegate)
	ctx := context.Background()
	teams := []models.RemoteTeam{{DisplayName: "group 01", Slug: "group-01"}}

	delegate.On("ListTeams", ctx, "org").Return(teams, nil).Once()
	delegate.On("ListMembers", ctx, "org", "group-01").Return([]string{"ana"}, nil).Once()
	delegate.On("ListInvitations", ctx, "org", "group-01").Return(nil, assert.AnError).Once()

	gotTeams, err := dry.ListTeams(ctx, "org")
	require.NoError(t, err)
	assert.Equal(t, teams, gotTeams)

	members, err := dry.ListMembers(ctx, "org", "group-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, members)

	_, err = dry.ListInvitations(ctx, "org", "group-01")
	assert.ErrorIs(t, err, assert.AnError)

	delegate.AssertExpectations(t)
}

func TestDryRun_DropsWrites(t *testing.T) {
	delegate := new(testutil.MockGateway)
	dry := NewDryRun(delegate)
	ctx := context.Background()

	slug, err := dry.CreateTeam(ctx, "org", "group 01")
	require.NoError(t, err)
	assert.Empty(t, slug)

	assert.NoError(t, dry.DeleteTeam(ctx, "org", "group-01"))
	assert.NoError(t, dry.Invite(ctx, "org", "group-01", "ana"))
	assert.NoError(t, dry.Remove(ctx, "org", "group-01", "ana"))
	assert.NoError(t, dry.RemoveFromOrganization(ctx, "org", "ana"))

	delegate.AssertNotCalled(t, "CreateTeam", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, delegate.Calls)
}
