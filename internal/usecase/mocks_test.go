package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/compozy/tagrelease/internal/domain"
)

type mockGitRepository struct {
	mock.Mock
}

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

type mockStrategy struct {
	mock.Mock
}

func (m *mockStrategy) NextTag(
	ctx context.Context,
	project domain.Project,
	tags []string,
	opts domain.Options,
) (string, error) {
	args := m.Called(ctx, project, tags, opts)
	return args.String(0), args.Error(1)
}

type mockLatestStrategy struct {
	mockStrategy
}

func (m *mockLatestStrategy) LatestTag(
	ctx context.Context,
	project domain.Project,
	tags []string,
	opts domain.Options,
) (string, error) {
	args := m.Called(ctx, project, tags, opts)
	return args.String(0), args.Error(1)
}
