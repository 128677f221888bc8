package roster

import (
	"fmt"
	"strings"
)

// Roster ids follow the format "student name (group)", for example
// "John Doe (01)" or "Izquierdo Castanedo, Raúl (i02)".
const (
	groupOpen  = " ("
	groupClose = ")"
)

// RosterID builds the roster id for a student name and group.
func RosterID(name, group string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: name must not be blank", ErrInvalidFormat)
	}
	if strings.TrimSpace(group) == "" {
		return "", fmt.Errorf("%w: group must not be blank", ErrInvalidFormat)
	}
	return name + groupOpen + group + groupClose, nil
}

// ParseRosterID splits a roster id into the student name and group.
func ParseRosterID(rosterID string) (name, group string, err error) {
	openIdx := strings.LastIndex(rosterID, groupOpen)
	closeIdx := strings.LastIndex(rosterID, groupClose)

	switch {
	case openIdx <= 0 || closeIdx == -1 || openIdx >= closeIdx:
		return "", "", invalidRosterID(rosterID)
	case openIdx+len(groupOpen) == closeIdx:
		return "", "", invalidRosterID(rosterID)
	case closeIdx+len(groupClose) != len(rosterID):
		return "", "", invalidRosterID(rosterID)
	}

	return rosterID[:openIdx], rosterID[openIdx+len(groupOpen) : closeIdx], nil
}

func invalidRosterID(rosterID string) error {
	return fmt.Errorf("%w: invalid roster id %q, expected 'student name (group)'", ErrInvalidFormat, rosterID)
}
