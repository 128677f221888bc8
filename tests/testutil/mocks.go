package testutil

import (
	"context"
	"sync"

	"github.com/dimitrije/teamsync/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGateway mocks the organization gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListTeams(ctx context.Context, org string) ([]models.RemoteTeam, error) {
	args := m.Called(ctx, org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RemoteTeam), args.Error(1)
}

func (m *MockGateway) CreateTeam(ctx context.Context, org, displayName string) (string, error) {
	args := m.Called(ctx, org, displayName)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) DeleteTeam(ctx context.Context, org, slug string) error {
	args := m.Called(ctx, org, slug)
	return args.Error(0)
}

func (m *MockGateway) ListMembers(ctx context.Context, org, slug string) ([]string, error) {
	args := m.Called(ctx, org, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGateway) ListInvitations(ctx context.Context, org, slug string) ([]string, error) {
	args := m.Called(ctx, org, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGateway) Invite(ctx context.Context, org, slug, login string) error {
	args := m.Called(ctx, org, slug, login)
	return args.Error(0)
}

func (m *MockGateway) Remove(ctx context.Context, org, slug, login string) error {
	args := m.Called(ctx, org, slug, login)
	return args.Error(0)
}

func (m *MockGateway) RemoveFromOrganization(ctx context.Context, org, login string) error {
	args := m.Called(ctx, org, login)
	return args.Error(0)
}

// MockJournal mocks the run journal
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) StartRun(ctx context.Context, org, mode string, dryRun bool) (*models.Run, error) {
	args := m.Called(ctx, org, mode, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Run), args.Error(1)
}

func (m *MockJournal) RecordAction(ctx context.Context, runID uuid.UUID, message string) error {
	args := m.Called(ctx, runID, message)
	return args.Error(0)
}

func (m *MockJournal) FinishRun(ctx context.Context, runID uuid.UUID, status string, runErr error) error {
	args := m.Called(ctx, runID, status, runErr)
	return args.Error(0)
}

// RecordingObserver keeps every message it is given
type RecordingObserver struct {
	mu       sync.Mutex
	messages []string
}

func (o *RecordingObserver) Log(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, message)
}

func (o *RecordingObserver) Messages() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.messages...)
}
