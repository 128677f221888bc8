package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dimitrije/teamsync/internal/database"
	"github.com/dimitrije/teamsync/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupJournalService(t *testing.T) (*JournalService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewJournalService(db), mock
}

func TestJournalService_StartRun(t *testing.T) {
	svc, mock := setupJournalService(t)
	ctx := context.Background()
	runID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "started_at"}).AddRow(runID, now)
	mock.ExpectQuery(`INSERT INTO runs`).
		WithArgs("class-org", models.RunModeSync, true, models.RunStatusRunning).
		WillReturnRows(rows)

	run, err := svc.StartRun(ctx, "class-org", models.RunModeSync, true)

	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "class-org", run.Organization)
	assert.Equal(t, models.RunModeSync, run.Mode)
	assert.True(t, run.DryRun)
	assert.Equal(t, models.RunStatusRunning, run.Status)
	assert.Equal(t, now, run.StartedAt)
	assert.False(t, run.IsFinished())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalService_StartRun_Error(t *testing.T) {
	svc, mock := setupJournalService(t)

	mock.ExpectQuery(`INSERT INTO runs`).
		WithArgs("class-org", models.RunModeClean, false, models.RunStatusRunning).
		WillReturnError(assert.AnError)

	run, err := svc.StartRun(context.Background(), "class-org", models.RunModeClean, false)

	assert.Nil(t, run)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to start run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalService_RecordAction(t *testing.T) {
	svc, mock := setupJournalService(t)
	runID := uuid.New()

	mock.ExpectExec(`INSERT INTO run_actions`).
		WithArgs(runID, "[Created team] 'group 01'").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.RecordAction(context.Background(), runID, "[Created team] 'group 01'")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalService_RecordAction_Error(t *testing.T) {
	svc, mock := setupJournalService(t)
	runID := uuid.New()

	mock.ExpectExec(`INSERT INTO run_actions`).
		WithArgs(runID, "message").
		WillReturnError(assert.AnError)

	err := svc.RecordAction(context.Background(), runID, "message")

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalService_FinishRun(t *testing.T) {
	svc, mock := setupJournalService(t)
	runID := uuid.New()

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs(models.RunStatusFailed, pgxmock.AnyArg(), runID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.FinishRun(context.Background(), runID, models.RunStatusFailed, errors.New("failed to list teams"))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalService_FinishRun_NotFound(t *testing.T) {
	svc, mock := setupJournalService(t)
	runID := uuid.New()

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs(models.RunStatusSucceeded, pgxmock.AnyArg(), runID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.FinishRun(context.Background(), runID, models.RunStatusSucceeded, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalService_RecentRuns(t *testing.T) {
	svc, mock := setupJournalService(t)
	now := time.Now()
	errMsg := "failed to list teams"
	firstID, secondID := uuid.New(), uuid.New()

	rows := pgxmock.NewRows([]string{"id", "organization", "mode", "dry_run", "status", "error", "started_at", "finished_at"}).
		AddRow(firstID, "class-org", models.RunModeSync, false, models.RunStatusFailed, &errMsg, now, &now).
		AddRow(secondID, "class-org", models.RunModeClean, true, models.RunStatusRunning, nil, now.Add(-time.Hour), nil)
	mock.ExpectQuery(`SELECT id, organization, mode, dry_run, status, error, started_at, finished_at`).
		WithArgs("class-org", 10).
		WillReturnRows(rows)

	runs, err := svc.RecentRuns(context.Background(), "class-org", 10)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, firstID, runs[0].ID)
	require.NotNil(t, runs[0].Error)
	assert.Equal(t, errMsg, *runs[0].Error)
	assert.True(t, runs[0].IsFinished())
	assert.Equal(t, secondID, runs[1].ID)
	assert.True(t, runs[1].DryRun)
	assert.Nil(t, runs[1].Error)
	assert.False(t, runs[1].IsFinished())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalService_RecentRuns_QueryError(t *testing.T) {
	svc, mock := setupJournalService(t)

	mock.ExpectQuery(`SELECT id, organization`).
		WithArgs("class-org", 5).
		WillReturnError(assert.AnError)

	runs, err := svc.RecentRuns(context.Background(), "class-org", 5)

	assert.Nil(t, runs)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalService_GetActions(t *testing.T) {
	svc, mock := setupJournalService(t)
	runID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "run_id", "message", "created_at"}).
		AddRow(uuid.New(), runID, "[Created team] 'group 01'", now).
		AddRow(uuid.New(), runID, "[Invited student] 'Ana' to team 'group 01'", now.Add(time.Second))
	mock.ExpectQuery(`SELECT id, run_id, message, created_at`).
		WithArgs(runID).
		WillReturnRows(rows)

	actions, err := svc.GetActions(context.Background(), runID)

	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "[Created team] 'group 01'", actions[0].Message)
	assert.Equal(t, runID, actions[1].RunID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
