// Package roster loads the class roster exported from GitHub Classroom.
//
// The CSV must have exactly these four columns, in any order:
//
//	"identifier","github_username","github_id","name"
//
// identifier holds the roster id ("student name (group)") and github_username
// the account to invite. github_id and name are ignored.
package roster

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dimitrije/teamsync/internal/models"
)

var ErrInvalidFormat = errors.New("invalid roster format")

const (
	columnIdentifier = "identifier"
	columnUsername   = "github_username"
	columnGitHubID   = "github_id"
	columnName       = "name"
)

var requiredColumns = []string{columnIdentifier, columnUsername, columnGitHubID, columnName}

// LoadFile is a shortcut for Load on the file at path.
func LoadFile(path string) ([]models.Student, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	students, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a valid roster file: %w", path, err)
	}
	return students, nil
}

// Load parses a roster. Records with a blank github_username are skipped;
// a roster without any student is rejected. A login listed twice is kept once.
func Load(r io.Reader) ([]models.Student, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	columns, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	var students []models.Student
	seen := make(map[string]bool)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		line, _ := reader.FieldPos(0)

		login := field(record, columns[columnUsername])
		if login == "" {
			continue
		}

		rosterID := field(record, columns[columnIdentifier])
		if rosterID == "" {
			return nil, fmt.Errorf("%w: line %d: '%s' -> column '%s' cannot be blank",
				ErrInvalidFormat, line, strings.Join(record, ", "), columnIdentifier)
		}

		name, group, err := ParseRosterID(rosterID)
		if err != nil {
			return nil, fmt.Errorf("line %d: '%s' -> %w", line, strings.Join(record, ", "), err)
		}

		student, err := models.NewStudent(name, group, rosterID, login)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidFormat, line, err)
		}

		if seen[login] {
			continue
		}
		seen[login] = true
		students = append(students, student)
	}

	if len(students) == 0 {
		return nil, fmt.Errorf("%w: no students found in the roster", ErrInvalidFormat)
	}

	return students, nil
}

func indexHeader(header []string) (map[string]int, error) {
	if len(header) != len(requiredColumns) {
		return nil, fmt.Errorf("%w: header must contain exactly %d columns", ErrInvalidFormat, len(requiredColumns))
	}

	columns := make(map[string]int, len(header))
	for i, column := range header {
		columns[strings.TrimSpace(column)] = i
	}

	for _, column := range requiredColumns {
		if _, ok := columns[column]; !ok {
			return nil, fmt.Errorf("%w: header does not contain '%s' column", ErrInvalidFormat, column)
		}
	}
	return columns, nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Spreadsheet exports often start with a UTF-8 byte order mark.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(3); err == nil && bytes.Equal(prefix, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	return br
}
