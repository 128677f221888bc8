package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dimitrije/teamsync/internal/database"
	"github.com/dimitrije/teamsync/internal/models"
)

// NewStudent builds a student whose roster id follows the "name (group)" form
func NewStudent(name, group, login string) models.Student {
	student, err := models.NewStudent(name, group, fmt.Sprintf("%s (%s)", name, group), login)
	if err != nil {
		panic(err)
	}
	return student
}

// RosterCSV renders students as a GitHub Classroom roster export
func RosterCSV(students ...models.Student) string {
	var b strings.Builder
	b.WriteString("\"identifier\",\"github_username\",\"github_id\",\"name\"\n")
	for i, s := range students {
		fmt.Fprintf(&b, "\"%s\",\"%s\",\"%d\",\"%s\"\n", s.RosterID, s.Login, 1000+i, s.Name)
	}
	return b.String()
}

// Fixtures provides factory methods for creating journal records
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateRun inserts a run with default values
func (f *Fixtures) CreateRun(t *testing.T, opts ...RunOption) *models.Run {
	t.Helper()
	f.counter++

	run := &models.Run{
		Organization: "class-org",
		Mode:         models.RunModeSync,
		Status:       models.RunStatusSucceeded,
		StartedAt:    time.Now().Add(time.Duration(f.counter) * time.Second),
	}

	for _, opt := range opts {
		opt(run)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO runs (organization, mode, dry_run, status, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, run.Organization, run.Mode, run.DryRun, run.Status, run.Error, run.StartedAt, run.FinishedAt).Scan(&run.ID)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	return run
}

// RunOption configures a test run
type RunOption func(*models.Run)

// WithOrganization sets the run's organization
func WithOrganization(org string) RunOption {
	return func(r *models.Run) {
		r.Organization = org
	}
}

// WithStatus sets the run's status
func WithStatus(status string) RunOption {
	return func(r *models.Run) {
		r.Status = status
	}
}

// WithStartedAt sets when the run started
func WithStartedAt(at time.Time) RunOption {
	return func(r *models.Run) {
		r.StartedAt = at
	}
}

// AddAction records message against run
func (f *Fixtures) AddAction(t *testing.T, run *models.Run, message string) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO run_actions (run_id, message) VALUES ($1, $2)
	`, run.ID, message)
	if err != nil {
		t.Fatalf("failed to add action: %v", err)
	}
}
