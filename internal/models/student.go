package models

import "errors"

var ErrBlankField = errors.New("cannot be blank")

// Student is one roster entry. RosterID keeps the original roster identifier
// for diagnostics; Login is the GitHub account handle.
type Student struct {
	Name     string `json:"name"`
	Group    string `json:"group"`
	RosterID string `json:"roster_id"`
	Login    string `json:"login"`
}

func NewStudent(name, group, rosterID, login string) (Student, error) {
	for _, f := range []struct{ field, value string }{
		{"name", name},
		{"group", group},
		{"roster id", rosterID},
		{"login", login},
	} {
		if err := requireNonBlank(f.field, f.value); err != nil {
			return Student{}, err
		}
	}

	return Student{Name: name, Group: group, RosterID: rosterID, Login: login}, nil
}
