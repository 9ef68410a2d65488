package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/tagrelease/internal/domain"
)

func setupTestRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@example.com"
	require.NoError(t, repo.Storer.SetConfig(cfg))
	commitFile(t, dir, repo, "test.txt", "test content", "Initial commit")
	return dir, repo
}

func commitFile(t *testing.T, dir string, repo *git.Repository, name, content, msg string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com"},
	})
	require.NoError(t, err)
	return hash
}

func openTestRepo(t *testing.T, dir string) *GoGitRepository {
	t.Helper()
	gitRepo, err := NewGitRepository(dir)
	require.NoError(t, err)
	return gitRepo
}

func TestNewGitRepository(t *testing.T) {
	t.Run("Should open a repository from a subdirectory", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		sub := filepath.Join(dir, "pkg")
		require.NoError(t, os.Mkdir(sub, 0o755))
		gitRepo, err := NewGitRepository(sub)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ".git"), gitRepo.GitDir())
		root, err := gitRepo.Root()
		require.NoError(t, err)
		assert.Equal(t, dir, root)
	})
	t.Run("Should return error for non-git directory", func(t *testing.T) {
		gitRepo, err := NewGitRepository(t.TempDir())
		assert.Error(t, err)
		assert.Nil(t, gitRepo)
	})
}

func TestGitRepository_CurrentTag(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return empty when HEAD is untagged", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		tag, err := openTestRepo(t, dir).CurrentTag(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", tag)
	})
	t.Run("Should find lightweight and annotated tags at HEAD", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		gitRepo := openTestRepo(t, dir)
		require.NoError(t, gitRepo.CreateTag(ctx, "v1.0.0", "Release v1.0.0"))
		tag, err := gitRepo.CurrentTag(ctx)
		require.NoError(t, err)
		assert.Equal(t, "v1.0.0", tag)
		require.NoError(t, gitRepo.CreateTag(ctx, "a-lightweight", ""))
		tag, err = gitRepo.CurrentTag(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a-lightweight", tag)
	})
	t.Run("Should ignore tags on older commits", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		gitRepo := openTestRepo(t, dir)
		require.NoError(t, gitRepo.CreateTag(ctx, "v1.0.0", ""))
		commitFile(t, dir, repo, "next.txt", "more", "Second commit")
		tag, err := gitRepo.CurrentTag(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", tag)
	})
	t.Run("Should return empty in a repository without commits", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		tag, err := openTestRepo(t, dir).CurrentTag(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", tag)
	})
}

func TestGitRepository_Tags(t *testing.T) {
	t.Run("Should list tags with their commits", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		gitRepo := openTestRepo(t, dir)
		ctx := context.Background()
		first, err := repo.Head()
		require.NoError(t, err)
		require.NoError(t, gitRepo.CreateTag(ctx, "v1.0.0", "first"))
		second := commitFile(t, dir, repo, "b.txt", "b", "Second")
		require.NoError(t, gitRepo.CreateTag(ctx, "v1.1.0", ""))
		tags, err := gitRepo.Tags(ctx)
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, []string{"v1.0.0", "v1.1.0"}, domain.TagNames(tags))
		assert.Equal(t, first.Hash().String(), tags[0].SHA)
		assert.Equal(t, second.String(), tags[1].SHA)
	})
}

func TestGitRepository_StatusAndCommit(t *testing.T) {
	ctx := context.Background()
	t.Run("Should report untracked files separately", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		gitRepo := openTestRepo(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644))
		status, err := gitRepo.Status(ctx)
		require.NoError(t, err)
		assert.Contains(t, status, "?? new.txt")
		assert.False(t, domain.HasTrackedChanges(status))
	})
	t.Run("Should commit modified tracked files", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		gitRepo := openTestRepo(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("changed"), 0o644))
		status, err := gitRepo.Status(ctx)
		require.NoError(t, err)
		assert.True(t, domain.HasTrackedChanges(status))
		require.NoError(t, gitRepo.CommitAll(ctx, "Released v1.0.1"))
		status, err = gitRepo.Status(ctx)
		require.NoError(t, err)
		assert.False(t, domain.HasTrackedChanges(status))
		head, err := repo.Head()
		require.NoError(t, err)
		commit, err := repo.CommitObject(head.Hash())
		require.NoError(t, err)
		assert.Equal(t, "Released v1.0.1", commit.Message)
		assert.Equal(t, "Test User", commit.Author.Name)
	})
}

func TestGitRepository_CurrentBranch(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return the checked out branch", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		branch, err := openTestRepo(t, dir).CurrentBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "master", branch)
	})
	t.Run("Should return empty when HEAD is detached", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		head, err := repo.Head()
		require.NoError(t, err)
		wt, err := repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: head.Hash()}))
		branch, err := openTestRepo(t, dir).CurrentBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", branch)
	})
}

func TestGitRepository_CreateTag(t *testing.T) {
	ctx := context.Background()
	t.Run("Should create an annotated tag when a message is given", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		require.NoError(t, openTestRepo(t, dir).CreateTag(ctx, "v1.0.0", "Release v1.0.0"))
		ref, err := repo.Tag("v1.0.0")
		require.NoError(t, err)
		tagObj, err := repo.TagObject(ref.Hash())
		require.NoError(t, err)
		assert.Contains(t, tagObj.Message, "Release v1.0.0")
		assert.Equal(t, "Test User", tagObj.Tagger.Name)
	})
	t.Run("Should create a lightweight tag without a message", func(t *testing.T) {
		dir, repo := setupTestRepo(t)
		require.NoError(t, openTestRepo(t, dir).CreateTag(ctx, "v1.0.0", ""))
		ref, err := repo.Tag("v1.0.0")
		require.NoError(t, err)
		_, err = repo.TagObject(ref.Hash())
		assert.ErrorIs(t, err, plumbing.ErrObjectNotFound)
	})
	t.Run("Should return error for duplicate tag", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		gitRepo := openTestRepo(t, dir)
		require.NoError(t, gitRepo.CreateTag(ctx, "v1.0.0", ""))
		assert.Error(t, gitRepo.CreateTag(ctx, "v1.0.0", ""))
	})
}

func TestGitRepository_Push(t *testing.T) {
	t.Run("Should push branch and tag to the remote", func(t *testing.T) {
		ctx := context.Background()
		dir, repo := setupTestRepo(t)
		remoteDir := t.TempDir()
		remote, err := git.PlainInit(remoteDir, true)
		require.NoError(t, err)
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "upstream", URLs: []string{remoteDir}})
		require.NoError(t, err)
		gitRepo := openTestRepo(t, dir)
		require.NoError(t, gitRepo.CreateTag(ctx, "v1.0.0", "Release"))

		require.NoError(t, gitRepo.Push(ctx, "upstream", domain.BranchRef("master")))
		require.NoError(t, gitRepo.Push(ctx, "upstream", domain.TagRef("v1.0.0")))
		require.NoError(t, gitRepo.Push(ctx, "upstream", domain.TagRef("v1.0.0")))

		_, err = remote.Reference(plumbing.NewBranchReferenceName("master"), false)
		assert.NoError(t, err)
		_, err = remote.Tag("v1.0.0")
		assert.NoError(t, err)
	})
	t.Run("Should fail for an unknown remote", func(t *testing.T) {
		dir, _ := setupTestRepo(t)
		err := openTestRepo(t, dir).Push(context.Background(), "nowhere", domain.BranchRef("master"))
		assert.Error(t, err)
	})
}
