// Package github talks to the GitHub REST API on behalf of an organization
// owner: teams, team memberships and organization members.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/teamsync/internal/config"
	"github.com/dimitrije/teamsync/internal/models"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"
	pageSize       = 100
)

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client authenticated with the token in cfg. An
// *http.Client stored in ctx under oauth2.HTTPClient is used as transport.
func NewClient(ctx context.Context, cfg config.GitHubConfig) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(ctx, src)
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) ListTeams(ctx context.Context, org string) ([]models.RemoteTeam, error) {
	op := fmt.Sprintf("list teams of organization '%s'", org)

	var teams []models.RemoteTeam
	err := c.list(ctx, op, c.path("orgs", org, "teams"), func(item json.RawMessage) error {
		var t struct {
			Name *string `json:"name"`
			Slug *string `json:"slug"`
		}
		if err := json.Unmarshal(item, &t); err != nil || t.Name == nil || t.Slug == nil {
			return &FormatError{Op: op, Detail: fmt.Sprintf("expected 'name' and 'slug' strings in team object, got: %s", item)}
		}
		team, err := models.NewRemoteTeam(*t.Name, *t.Slug)
		if err != nil {
			return &FormatError{Op: op, Detail: fmt.Sprintf("%v in team object %s", err, item)}
		}
		teams = append(teams, team)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// CreateTeam creates a closed team and returns its slug. An empty slug means
// the team already existed and nothing was created.
func (c *Client) CreateTeam(ctx context.Context, org, displayName string) (string, error) {
	op := fmt.Sprintf("create team '%s' in organization '%s'", displayName, org)

	payload := map[string]string{"name": displayName, "privacy": "closed"}
	resp, err := c.do(ctx, op, http.MethodPost, c.path("orgs", org, "teams"), payload)
	if err != nil {
		return "", err
	}

	switch resp.status {
	case http.StatusCreated:
		var created struct {
			Slug *string `json:"slug"`
		}
		if err := json.Unmarshal(resp.body, &created); err != nil || created.Slug == nil || *created.Slug == "" {
			return "", &FormatError{Op: op, Detail: fmt.Sprintf("expected 'slug' string in created team object, got: %s", resp.body)}
		}
		return *created.Slug, nil
	case http.StatusUnprocessableEntity:
		return "", nil
	default:
		return "", rejected(op, resp)
	}
}

func (c *Client) DeleteTeam(ctx context.Context, org, slug string) error {
	op := fmt.Sprintf("delete team '%s' from organization '%s'", slug, org)
	return c.expect(ctx, op, http.MethodDelete, c.path("orgs", org, "teams", slug), http.StatusNoContent, http.StatusNotFound)
}

func (c *Client) ListMembers(ctx context.Context, org, slug string) ([]string, error) {
	op := fmt.Sprintf("list members of team '%s' in organization '%s'", slug, org)
	return c.listLogins(ctx, op, c.path("orgs", org, "teams", slug, "members"), false)
}

// ListInvitations returns the logins with a pending invitation to the team.
// Invitations sent to an e-mail address carry no login and are left out.
func (c *Client) ListInvitations(ctx context.Context, org, slug string) ([]string, error) {
	op := fmt.Sprintf("list invitations of team '%s' in organization '%s'", slug, org)
	return c.listLogins(ctx, op, c.path("orgs", org, "teams", slug, "invitations"), true)
}

// Invite adds login to the team. GitHub sends an invitation when login is not
// yet an organization member. Inviting a member or invitee again is a no-op.
func (c *Client) Invite(ctx context.Context, org, slug, login string) error {
	op := fmt.Sprintf("invite '%s' to team '%s' in organization '%s'", login, slug, org)
	return c.expect(ctx, op, http.MethodPut, c.path("orgs", org, "teams", slug, "memberships", login), http.StatusOK, http.StatusCreated)
}

// Remove drops login from the team, whether it is a member or an invitee.
func (c *Client) Remove(ctx context.Context, org, slug, login string) error {
	op := fmt.Sprintf("remove '%s' from team '%s' in organization '%s'", login, slug, org)
	return c.expect(ctx, op, http.MethodDelete, c.path("orgs", org, "teams", slug, "memberships", login), http.StatusNoContent, http.StatusNotFound)
}

func (c *Client) RemoveFromOrganization(ctx context.Context, org, login string) error {
	op := fmt.Sprintf("remove '%s' from organization '%s'", login, org)
	return c.expect(ctx, op, http.MethodDelete, c.path("orgs", org, "members", login), http.StatusNoContent, http.StatusNotFound)
}

func (c *Client) listLogins(ctx context.Context, op, endpoint string, skipMissing bool) ([]string, error) {
	logins := []string{}
	err := c.list(ctx, op, endpoint, func(item json.RawMessage) error {
		var u struct {
			Login *string `json:"login"`
		}
		if err := json.Unmarshal(item, &u); err != nil {
			return &FormatError{Op: op, Detail: fmt.Sprintf("expected an object, got: %s", item)}
		}
		if u.Login == nil || *u.Login == "" {
			if skipMissing {
				return nil
			}
			return &FormatError{Op: op, Detail: fmt.Sprintf("expected 'login' string in each object, got: %s", item)}
		}
		logins = append(logins, *u.Login)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return logins, nil
}

// list walks every page of a list endpoint, following the Link header.
func (c *Client) list(ctx context.Context, op, endpoint string, visit func(json.RawMessage) error) error {
	next := fmt.Sprintf("%s?per_page=%d", endpoint, pageSize)
	for next != "" {
		resp, err := c.do(ctx, op, http.MethodGet, next, nil)
		if err != nil {
			return err
		}
		if resp.status != http.StatusOK {
			return rejected(op, resp)
		}

		var items []json.RawMessage
		if err := json.Unmarshal(resp.body, &items); err != nil {
			return &FormatError{Op: op, Detail: fmt.Sprintf("expected a JSON array, got: %s", truncate(resp.body))}
		}
		for _, item := range items {
			if err := visit(item); err != nil {
				return err
			}
		}

		next = nextPage(resp.header.Get("Link"))
	}
	return nil
}

func (c *Client) expect(ctx context.Context, op, method, target string, statuses ...int) error {
	resp, err := c.do(ctx, op, method, target, nil)
	if err != nil {
		return err
	}
	for _, status := range statuses {
		if resp.status == status {
			return nil
		}
	}
	return rejected(op, resp)
}

func (c *Client) do(ctx context.Context, op, method, target string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	slog.Debug("github request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func (c *Client) path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func rejected(op string, resp *response) error {
	return &RejectedError{Op: op, StatusCode: resp.status, Body: truncate(resp.body)}
}

// nextPage extracts the rel="next" target of a Link header, or "".
func nextPage(link string) string {
	for _, part := range strings.Split(link, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		target := strings.TrimSpace(sections[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range sections[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
