package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
)

// FakeOrganization serves an in-memory GitHub organization over HTTP.
// It understands the team, team membership and organization member endpoints
// used by the GitHub client. Logins in Owners cannot be removed.
type FakeOrganization struct {
	mu       sync.Mutex
	name     string
	teams    []*fakeTeam
	members  map[string]bool
	owners   map[string]bool
	requests []string
	server   *httptest.Server
}

type fakeTeam struct {
	name        string
	slug        string
	members     []string
	invitations []string
}

// NewFakeOrganization starts a fake organization named name
func NewFakeOrganization(t *testing.T, name string) *FakeOrganization {
	t.Helper()
	f := &FakeOrganization{
		name:    name,
		members: make(map[string]bool),
		owners:  make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /orgs/{org}/teams", f.listTeams)
	mux.HandleFunc("POST /orgs/{org}/teams", f.createTeam)
	mux.HandleFunc("DELETE /orgs/{org}/teams/{slug}", f.deleteTeam)
	mux.HandleFunc("GET /orgs/{org}/teams/{slug}/members", f.listMembers)
	mux.HandleFunc("GET /orgs/{org}/teams/{slug}/invitations", f.listInvitations)
	mux.HandleFunc("PUT /orgs/{org}/teams/{slug}/memberships/{login}", f.invite)
	mux.HandleFunc("DELETE /orgs/{org}/teams/{slug}/memberships/{login}", f.removeFromTeam)
	mux.HandleFunc("DELETE /orgs/{org}/members/{login}", f.removeFromOrganization)

	f.server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the base URL of the fake API
func (f *FakeOrganization) URL() string {
	return f.server.URL
}

// AddTeam creates a team with accepted members and pending invitations
func (f *FakeOrganization) AddTeam(name string, members, invitations []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		f.members[m] = true
	}
	f.teams = append(f.teams, &fakeTeam{
		name:        name,
		slug:        slugify(name),
		members:     append([]string(nil), members...),
		invitations: append([]string(nil), invitations...),
	})
}

// AddOwner makes login an organization owner that cannot be removed
func (f *FakeOrganization) AddOwner(login string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[login] = true
	f.owners[login] = true
}

// TeamNames returns the display names of every team, sorted
func (f *FakeOrganization) TeamNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.teams))
	for _, team := range f.teams {
		names = append(names, team.name)
	}
	sort.Strings(names)
	return names
}

// TeamLogins returns members and invitees of the named team, sorted
func (f *FakeOrganization) TeamLogins(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, team := range f.teams {
		if team.name == name {
			logins := append(append([]string{}, team.members...), team.invitations...)
			sort.Strings(logins)
			return logins
		}
	}
	return nil
}

// IsMember reports whether login belongs to the organization
func (f *FakeOrganization) IsMember(login string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[login]
}

// Requests returns every request served as "METHOD path"
func (f *FakeOrganization) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// MutatingRequests returns the requests that are not reads
func (f *FakeOrganization) MutatingRequests() []string {
	var mutating []string
	for _, r := range f.Requests() {
		if !strings.HasPrefix(r, http.MethodGet+" ") {
			mutating = append(mutating, r)
		}
	}
	return mutating
}

// ResetRequests forgets the requests served so far
func (f *FakeOrganization) ResetRequests() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *FakeOrganization) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()

		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Requires authentication"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeOrganization) listTeams(w http.ResponseWriter, r *http.Request) {
	if !f.checkOrg(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	teams := make([]map[string]string, 0, len(f.teams))
	for _, team := range f.teams {
		teams = append(teams, map[string]string{"name": team.name, "slug": team.slug})
	}
	writeJSON(w, http.StatusOK, teams)
}

func (f *FakeOrganization) createTeam(w http.ResponseWriter, r *http.Request) {
	if !f.checkOrg(w, r) {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.team(slugify(body.Name)) != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Name must be unique for this org"})
		return
	}
	team := &fakeTeam{name: body.Name, slug: slugify(body.Name)}
	f.teams = append(f.teams, team)
	writeJSON(w, http.StatusCreated, map[string]string{"name": team.name, "slug": team.slug})
}

func (f *FakeOrganization) deleteTeam(w http.ResponseWriter, r *http.Request) {
	if !f.checkOrg(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	slug := r.PathValue("slug")
	idx := slices.IndexFunc(f.teams, func(t *fakeTeam) bool { return t.slug == slug })
	if idx == -1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	f.teams = slices.Delete(f.teams, idx, idx+1)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeOrganization) listMembers(w http.ResponseWriter, r *http.Request) {
	f.listLogins(w, r, func(t *fakeTeam) []string { return t.members })
}

func (f *FakeOrganization) listInvitations(w http.ResponseWriter, r *http.Request) {
	f.listLogins(w, r, func(t *fakeTeam) []string { return t.invitations })
}

func (f *FakeOrganization) listLogins(w http.ResponseWriter, r *http.Request, logins func(*fakeTeam) []string) {
	if !f.checkOrg(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team := f.team(r.PathValue("slug"))
	if team == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	users := make([]map[string]string, 0)
	for _, login := range logins(team) {
		users = append(users, map[string]string{"login": login})
	}
	writeJSON(w, http.StatusOK, users)
}

func (f *FakeOrganization) invite(w http.ResponseWriter, r *http.Request) {
	if !f.checkOrg(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team := f.team(r.PathValue("slug"))
	if team == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	login := r.PathValue("login")
	switch {
	case slices.Contains(team.members, login):
		writeJSON(w, http.StatusOK, map[string]string{"state": "active"})
	case slices.Contains(team.invitations, login):
		writeJSON(w, http.StatusOK, map[string]string{"state": "pending"})
	case f.members[login]:
		team.members = append(team.members, login)
		writeJSON(w, http.StatusOK, map[string]string{"state": "active"})
	default:
		team.invitations = append(team.invitations, login)
		writeJSON(w, http.StatusOK, map[string]string{"state": "pending"})
	}
}

func (f *FakeOrganization) removeFromTeam(w http.ResponseWriter, r *http.Request) {
	if !f.checkOrg(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team := f.team(r.PathValue("slug"))
	login := r.PathValue("login")
	if team == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if f.owners[login] {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Cannot remove an organization owner"})
		return
	}
	before := len(team.members) + len(team.invitations)
	team.members = without(team.members, login)
	team.invitations = without(team.invitations, login)
	if before == len(team.members)+len(team.invitations) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeOrganization) removeFromOrganization(w http.ResponseWriter, r *http.Request) {
	if !f.checkOrg(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	login := r.PathValue("login")
	if f.owners[login] {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Cannot remove the last owner"})
		return
	}
	if !f.members[login] {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	delete(f.members, login)
	for _, team := range f.teams {
		team.members = without(team.members, login)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeOrganization) checkOrg(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("org") != f.name {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return false
	}
	return true
}

func (f *FakeOrganization) team(slug string) *fakeTeam {
	for _, team := range f.teams {
		if team.slug == slug {
			return team
		}
	}
	return nil
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func without(logins []string, login string) []string {
	return slices.DeleteFunc(logins, func(l string) bool { return l == login })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
