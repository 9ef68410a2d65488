package orchestrator

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/compozy/tagrelease/internal/domain"
)

type mockGitRepository struct{ mock.Mock }

func (m *mockGitRepository) CurrentTag(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) Tags(ctx context.Context) ([]domain.TagInfo, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]domain.TagInfo)
	return tags, args.Error(1)
}

func (m *mockGitRepository) Status(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepository) CommitAll(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockGitRepository) CreateTag(ctx context.Context, name, message string) error {
	args := m.Called(ctx, name, message)
	return args.Error(0)
}

func (m *mockGitRepository) Push(ctx context.Context, remote string, ref domain.Ref) error {
	args := m.Called(ctx, remote, ref)
	return args.Error(0)
}

type mockJournal struct{ mock.Mock }

func (m *mockJournal) Save(ctx context.Context, record *domain.RunRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockJournal) Load(ctx context.Context, sessionID string) (*domain.RunRecord, error) {
	args := m.Called(ctx, sessionID)
	rec, _ := args.Get(0).(*domain.RunRecord)
	return rec, args.Error(1)
}

func (m *mockJournal) LoadLatest(ctx context.Context) (*domain.RunRecord, error) {
	args := m.Called(ctx)
	rec, _ := args.Get(0).(*domain.RunRecord)
	return rec, args.Error(1)
}

// mockUI records printed lines and delegates confirmations to the mock.
type mockUI struct {
	mock.Mock
	mu    sync.Mutex
	lines []string
}

func (m *mockUI) Info(text string)    { m.record(text) }
func (m *mockUI) Success(text string) { m.record(text) }
func (m *mockUI) Warn(text string)    { m.record(text) }

func (m *mockUI) record(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, text)
}

func (m *mockUI) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func (m *mockUI) Confirm(ctx context.Context, message string) (bool, error) {
	args := m.Called(ctx, message)
	return args.Bool(0), args.Error(1)
}

// eventLog collects the order in which collaborators were invoked.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) index(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.events {
		if e == event {
			return i
		}
	}
	return -1
}
