package models

import (
	"fmt"
	"strings"
)

// RemoteTeam is a team as reported by the organization.
// Slug is the identifier used in every mutating call; DisplayName may hold
// characters that are not valid in a URL path.
type RemoteTeam struct {
	DisplayName string `json:"name"`
	Slug        string `json:"slug"`
}

func NewRemoteTeam(displayName, slug string) (RemoteTeam, error) {
	if err := requireNonBlank("display name", displayName); err != nil {
		return RemoteTeam{}, err
	}
	if err := requireNonBlank("slug", slug); err != nil {
		return RemoteTeam{}, err
	}
	return RemoteTeam{DisplayName: displayName, Slug: slug}, nil
}

// GroupTeam is a RemoteTeam recognized as belonging to a roster group.
// It is derived on every pass and never persisted.
type GroupTeam struct {
	DisplayName string `json:"name"`
	Slug        string `json:"slug"`
	Group       string `json:"group"`
}

func requireNonBlank(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", field, ErrBlankField)
	}
	return nil
}
