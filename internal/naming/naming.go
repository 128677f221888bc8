// Package naming maps roster groups to the organization teams built around them.
//
// An organization can hold many teams and only some of them belong to a group
// of students. Those are recognized by a fixed display name prefix:
//
//	"01"  <-> "group 01"
//	"i02" <-> "group i02"
//
// No escaping is performed. A team created by hand whose name happens to start
// with the prefix is treated as a group team.
package naming

import (
	"errors"
	"fmt"
	"strings"
)

// Prefix marks a team as derived from a roster group.
const Prefix = "group "

var ErrInvalidName = errors.New("not a group team name")

// ToTeamName returns the display name of the team for group: "01" -> "group 01".
func ToTeamName(group string) string {
	return Prefix + group
}

func IsGroupTeam(name string) bool {
	return strings.HasPrefix(name, Prefix)
}

// ToGroup extracts the group from a group team name: "group 01" -> "01".
func ToGroup(name string) (string, error) {
	if !IsGroupTeam(name) {
		return "", fmt.Errorf("%w: %q should start with %q", ErrInvalidName, name, Prefix)
	}
	return strings.TrimPrefix(name, Prefix), nil
}
