package services

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/dimitrije/teamsync/internal/github"
	"github.com/dimitrije/teamsync/internal/models"
	"github.com/dimitrije/teamsync/internal/naming"
)

// OrganizationService converges the group teams of an organization and their
// members with a roster. Teams not following the naming convention are never
// touched. Remote calls are issued one at a time.
type OrganizationService struct {
	org      string
	gateway  Gateway
	observer Observer
}

func NewOrganizationService(org string, gateway Gateway, observer Observer) *OrganizationService {
	return &OrganizationService{
		org:      org,
		gateway:  gateway,
		observer: observer,
	}
}

// Report counts the actions of a run.
type Report struct {
	TeamsCreated int
	TeamsDeleted int
	Invited      int
	Removed      int
	// Skipped counts removals GitHub rejected and the run moved past.
	Skipped int
}

func (r *Report) HasSkipped() bool {
	return r.Skipped > 0
}

func (r *Report) Changes() int {
	return r.TeamsCreated + r.TeamsDeleted + r.Invited + r.Removed
}

// Reconcile makes the group teams and their members match students: one team
// per group, holding exactly the students of that group.
//
// Listing, creating or deleting teams and inviting students fail fast. A
// removal rejected by GitHub is reported to the observer and skipped.
func (s *OrganizationService) Reconcile(ctx context.Context, students []models.Student) (*Report, error) {
	report := &Report{}
	groups := requiredGroups(students)

	existing, err := s.groupTeams(ctx)
	if err != nil {
		return report, err
	}

	if err := s.createMissingTeams(ctx, groups, existing, report); err != nil {
		return report, err
	}
	if err := s.deleteStaleTeams(ctx, groups, existing, report); err != nil {
		return report, err
	}

	// Slugs of the teams just created are only known after listing again.
	teams, err := s.groupTeams(ctx)
	if err != nil {
		return report, err
	}

	byGroup := studentsByGroup(students)
	for _, team := range teams {
		members := byGroup[team.Group]
		if len(members) == 0 {
			continue
		}
		if err := s.syncMembers(ctx, team, members, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

// CleanAll removes every member and invitee of the group teams from the
// organization, then deletes the group teams. Removal is best effort per
// login; teams are deleted regardless.
func (s *OrganizationService) CleanAll(ctx context.Context) (*Report, error) {
	report := &Report{}

	teams, err := s.groupTeams(ctx)
	if err != nil {
		return report, err
	}
	if len(teams) == 0 {
		return report, nil
	}

	// Memberships must be read before any team is gone.
	var logins []string
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, team := range teams {
		reached, err := s.reachedLogins(ctx, team)
		if err != nil {
			return report, err
		}
		for _, login := range reached {
			if seen.Add(login) {
				logins = append(logins, login)
			}
		}
	}

	for _, login := range logins {
		err := s.gateway.RemoveFromOrganization(ctx, s.org, login)
		if err != nil {
			if !isRejected(err) {
				return report, fmt.Errorf("failed to remove '%s' from organization: %w", login, err)
			}
			s.observer.Log(fmt.Sprintf("[Warning] Could not remove '%s' from the organization: %v", login, err))
			report.Skipped++
			continue
		}
		s.observer.Log(fmt.Sprintf("[Removed from organization] '%s'", login))
		report.Removed++
	}

	for _, team := range teams {
		if err := s.gateway.DeleteTeam(ctx, s.org, team.Slug); err != nil {
			return report, fmt.Errorf("failed to delete team '%s': %w", team.DisplayName, err)
		}
		s.observer.Log(fmt.Sprintf("[Deleted team] '%s'", team.DisplayName))
		report.TeamsDeleted++
	}

	return report, nil
}

func (s *OrganizationService) createMissingTeams(ctx context.Context, groups []string, existing []models.GroupTeam, report *Report) error {
	names := mapset.NewThreadUnsafeSet[string]()
	for _, team := range existing {
		names.Add(team.DisplayName)
	}

	for _, group := range groups {
		teamName := naming.ToTeamName(group)
		if names.Contains(teamName) {
			continue
		}
		if _, err := s.gateway.CreateTeam(ctx, s.org, teamName); err != nil {
			return fmt.Errorf("failed to create team '%s': %w", teamName, err)
		}
		s.observer.Log(fmt.Sprintf("[Created team] '%s'", teamName))
		report.TeamsCreated++
	}
	return nil
}

func (s *OrganizationService) deleteStaleTeams(ctx context.Context, groups []string, existing []models.GroupTeam, report *Report) error {
	required := mapset.NewThreadUnsafeSet(groups...)

	for _, team := range existing {
		if required.Contains(team.Group) {
			continue
		}
		if err := s.gateway.DeleteTeam(ctx, s.org, team.Slug); err != nil {
			return fmt.Errorf("failed to delete team '%s': %w", team.DisplayName, err)
		}
		s.observer.Log(fmt.Sprintf("[Removed team] '%s'", team.DisplayName))
		report.TeamsDeleted++
	}
	return nil
}

// syncMembers invites the students of team that have not been reached yet
// and removes everyone else. Members and invitees count as reached.
func (s *OrganizationService) syncMembers(ctx context.Context, team models.GroupTeam, students []models.Student, report *Report) error {
	reached, err := s.reachedLogins(ctx, team)
	if err != nil {
		return err
	}

	already := mapset.NewThreadUnsafeSet(reached...)
	desired := mapset.NewThreadUnsafeSet[string]()
	for _, student := range students {
		desired.Add(student.Login)
		if already.Contains(student.Login) {
			continue
		}
		if err := s.gateway.Invite(ctx, s.org, team.Slug, student.Login); err != nil {
			return fmt.Errorf("failed to invite '%s' to team '%s': %w", student.Login, team.DisplayName, err)
		}
		already.Add(student.Login)
		s.observer.Log(fmt.Sprintf("[Invited student] '%s' to team '%s'", student.Name, team.DisplayName))
		report.Invited++
	}

	for _, login := range reached {
		if desired.Contains(login) {
			continue
		}
		err := s.gateway.Remove(ctx, s.org, team.Slug, login)
		if err != nil {
			if !isRejected(err) {
				return fmt.Errorf("failed to remove '%s' from team '%s': %w", login, team.DisplayName, err)
			}
			s.observer.Log(fmt.Sprintf("[Warning] Could not remove '%s' from team '%s': %v", login, team.DisplayName, err))
			report.Skipped++
			continue
		}
		s.observer.Log(fmt.Sprintf("[Removed student] '%s' from team '%s'", login, team.DisplayName))
		report.Removed++
	}

	return nil
}

// reachedLogins returns members and invitees of team, without duplicates.
func (s *OrganizationService) reachedLogins(ctx context.Context, team models.GroupTeam) ([]string, error) {
	members, err := s.gateway.ListMembers(ctx, s.org, team.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team '%s': %w", team.DisplayName, err)
	}
	invitations, err := s.gateway.ListInvitations(ctx, s.org, team.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations of team '%s': %w", team.DisplayName, err)
	}

	var logins []string
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, list := range [][]string{members, invitations} {
		for _, login := range list {
			if seen.Add(login) {
				logins = append(logins, login)
			}
		}
	}
	return logins, nil
}

// groupTeams lists the teams of the organization that belong to a group.
func (s *OrganizationService) groupTeams(ctx context.Context) ([]models.GroupTeam, error) {
	teams, err := s.gateway.ListTeams(ctx, s.org)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	var groupTeams []models.GroupTeam
	for _, team := range teams {
		if !naming.IsGroupTeam(team.DisplayName) {
			continue
		}
		group, err := naming.ToGroup(team.DisplayName)
		if err != nil {
			return nil, err
		}
		groupTeams = append(groupTeams, models.GroupTeam{
			DisplayName: team.DisplayName,
			Slug:        team.Slug,
			Group:       group,
		})
	}
	return groupTeams, nil
}

func requiredGroups(students []models.Student) []string {
	var groups []string
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, student := range students {
		if seen.Add(student.Group) {
			groups = append(groups, student.Group)
		}
	}
	return groups
}

func studentsByGroup(students []models.Student) map[string][]models.Student {
	byGroup := make(map[string][]models.Student)
	for _, student := range students {
		byGroup[student.Group] = append(byGroup[student.Group], student)
	}
	return byGroup
}

func isRejected(err error) bool {
	var rejected *github.RejectedError
	return errors.As(err, &rejected)
}
