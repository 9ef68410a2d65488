package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/compozy/tagrelease/internal/domain"
)

// Fallback identity for tags and commits when git config has no user.
const (
	defaultSignatureName  = "tag-release"
	defaultSignatureEmail = "tag-release@localhost"
)

// GoGitRepository implements GitRepository with go-git.
type GoGitRepository struct {
	repo *git.Repository
	// pushMu serializes pushes since go-git storage is not safe for
	// concurrent writes.
	pushMu sync.Mutex
	now    func() time.Time
}

// NewGitRepository opens the repository containing root.
func NewGitRepository(root string) (*GoGitRepository, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &GoGitRepository{repo: repo, now: time.Now}, nil
}

// Root returns the top-level directory of the working tree.
func (r *GoGitRepository) Root() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// GitDir returns the path of the .git directory, or "" for non-filesystem storage.
func (r *GoGitRepository) GitDir() string {
	if fsStorage, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return fsStorage.Filesystem().Root()
	}
	return ""
}

// CurrentTag returns the first tag, in name order, whose commit is HEAD.
func (r *GoGitRepository) CurrentTag(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	tags, err := r.Tags(ctx)
	if err != nil {
		return "", err
	}
	for _, tag := range tags {
		if tag.SHA == head.Hash().String() {
			return tag.Name, nil
		}
	}
	return "", nil
}

// Tags lists every tag with the commit it points to, sorted by name.
func (r *GoGitRepository) Tags(_ context.Context) ([]domain.TagInfo, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	var tags []domain.TagInfo
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		commit, err := r.peel(ref.Hash())
		if err != nil {
			// Tags pointing at trees or blobs cannot be releases.
			return nil
		}
		tags = append(tags, domain.TagInfo{
			Name: ref.Name().Short(),
			SHA:  commit.Hash.String(),
			Date: commit.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// peel resolves a lightweight or annotated tag hash to its commit.
func (r *GoGitRepository) peel(hash plumbing.Hash) (*object.Commit, error) {
	if commit, err := r.repo.CommitObject(hash); err == nil {
		return commit, nil
	}
	tag, err := r.repo.TagObject(hash)
	if err != nil {
		return nil, err
	}
	return tag.Commit()
}

// Status returns the porcelain status of the worktree.
func (r *GoGitRepository) Status(_ context.Context) (string, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	return status.String(), nil
}

// CurrentBranch reads HEAD without resolving it, so unborn branches are reported too.
func (r *GoGitRepository) CurrentBranch(_ context.Context) (string, error) {
	ref, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
		return ref.Target().Short(), nil
	}
	return "", nil
}

// CommitAll commits all tracked changes.
func (r *GoGitRepository) CommitAll(_ context.Context, message string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	sig := r.signature()
	if _, err := w.Commit(message, &git.CommitOptions{All: true, Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("failed to create commit: %w", err)
	}
	return nil
}

// CreateTag tags HEAD, annotated when message is not empty.
func (r *GoGitRepository) CreateTag(_ context.Context, name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}
	var opts *git.CreateTagOptions
	if message != "" {
		opts = &git.CreateTagOptions{Message: message, Tagger: r.signature()}
	}
	if _, err := r.repo.CreateTag(name, head.Hash(), opts); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

// Push pushes ref to the remote under the same name.
func (r *GoGitRepository) Push(ctx context.Context, remote string, ref domain.Ref) error {
	r.pushMu.Lock()
	defer r.pushMu.Unlock()
	var refName plumbing.ReferenceName
	switch ref.Kind {
	case domain.RefKindTag:
		refName = plumbing.NewTagReferenceName(ref.Name)
	default:
		refName = plumbing.NewBranchReferenceName(ref.Name)
	}
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(fmt.Sprintf("%s:%s", refName, refName))},
		Auth:       r.getAuth(remote),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push %s to %s: %w", ref.Name, remote, err)
	}
	return nil
}

// signature uses the configured user, falling back to a fixed identity.
func (r *GoGitRepository) signature() *object.Signature {
	sig := &object.Signature{Name: defaultSignatureName, Email: defaultSignatureEmail, When: r.now()}
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

// getAuth returns token authentication for HTTP remotes when a token is set.
func (r *GoGitRepository) getAuth(remote string) transport.AuthMethod {
	token := os.Getenv("TAG_RELEASE_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil
	}
	rem, err := r.repo.Remote(remote)
	if err != nil || len(rem.Config().URLs) == 0 {
		return nil
	}
	if !strings.HasPrefix(rem.Config().URLs[0], "http") {
		return nil
	}
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}
}
