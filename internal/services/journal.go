package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/teamsync/internal/database"
	"github.com/dimitrije/teamsync/internal/models"
	"github.com/google/uuid"
)

// JournalService records runs and the actions they took.
type JournalService struct {
	db *database.DB
}

func NewJournalService(db *database.DB) *JournalService {
	return &JournalService{db: db}
}

func (s *JournalService) StartRun(ctx context.Context, org, mode string, dryRun bool) (*models.Run, error) {
	run := models.Run{
		Organization: org,
		Mode:         mode,
		DryRun:       dryRun,
		Status:       models.RunStatusRunning,
	}

	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO runs (organization, mode, dry_run, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, started_at
	`, org, mode, dryRun, models.RunStatusRunning).Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	return &run, nil
}

func (s *JournalService) RecordAction(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO run_actions (run_id, message)
		VALUES ($1, $2)
	`, runID, message)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// FinishRun closes a run with status. runErr, if not nil, is stored with it.
func (s *JournalService) FinishRun(ctx context.Context, runID uuid.UUID, status string, runErr error) error {
	var errMsg *string
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}

	result, err := s.db.Pool.Exec(ctx, `
		UPDATE runs SET status = $1, error = $2, finished_at = NOW()
		WHERE id = $3
	`, status, errMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *JournalService) RecentRuns(ctx context.Context, org string, limit int) ([]models.Run, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, organization, mode, dry_run, status, error, started_at, finished_at
		FROM runs
		WHERE organization = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, org, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var run models.Run
		if err := rows.Scan(
			&run.ID, &run.Organization, &run.Mode, &run.DryRun, &run.Status,
			&run.Error, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *JournalService) GetActions(ctx context.Context, runID uuid.UUID) ([]models.RunAction, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, run_id, message, created_at
		FROM run_actions
		WHERE run_id = $1
		ORDER BY created_at
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []models.RunAction
	for rows.Next() {
		var action models.RunAction
		if err := rows.Scan(&action.ID, &action.RunID, &action.Message, &action.CreatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// RunStatus maps the outcome of a run to the status stored in the journal.
func RunStatus(report *Report, err error) string {
	switch {
	case err != nil:
		return models.RunStatusFailed
	case report != nil && report.HasSkipped():
		return models.RunStatusPartial
	default:
		return models.RunStatusSucceeded
	}
}
