package repository

import (
	"context"

	"github.com/compozy/tagrelease/internal/domain"
)

// GitRepository is the version control capability used by a release run.
type GitRepository interface {
	// CurrentTag returns a tag pointing at HEAD, or "" when there is none.
	CurrentTag(ctx context.Context) (string, error)
	Tags(ctx context.Context) ([]domain.TagInfo, error)
	// Status returns the working tree status in porcelain form.
	Status(ctx context.Context) (string, error)
	// CurrentBranch returns the checked out branch, or "" when HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)
	// CommitAll commits every modified tracked file, like `git commit -a`.
	CommitAll(ctx context.Context, message string) error
	// CreateTag tags HEAD. An empty message creates a lightweight tag.
	CreateTag(ctx context.Context, name, message string) error
	Push(ctx context.Context, remote string, ref domain.Ref) error
}
