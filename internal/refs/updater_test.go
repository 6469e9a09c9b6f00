package refs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/procreceive/internal/testutil/testlog"
)

const emptyTreeID = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

func requireGit(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not installed")
	}
	return path
}

func gitOutput(t *testing.T, gitDir, stdin string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Env = append(os.Environ(),
		"GIT_DIR="+gitDir,
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	cmd.Stdin = strings.NewReader(stdin)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v (%s)", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func bareRepoWithCommit(t *testing.T) (string, string) {
	t.Helper()
	gitDir := filepath.Join(t.TempDir(), "repo.git")
	if out, err := exec.Command("git", "init", "--bare", "-q", gitDir).CombinedOutput(); err != nil {
		t.Fatalf("git init: %v (%s)", err, out)
	}
	tree := gitOutput(t, gitDir, "", "hash-object", "-t", "tree", "-w", "--stdin")
	if tree != emptyTreeID {
		t.Fatalf("unexpected empty tree id %q", tree)
	}
	commit := gitOutput(t, gitDir, "", "commit-tree", tree, "-m", "initial")
	return gitDir, commit
}

func TestGitUpdaterUpdatesRef(t *testing.T) {
	requireGit(t)
	gitDir, commit := bareRepoWithCommit(t)

	u := NewGitUpdater("git", gitDir, testlog.Start(t))
	if err := u.UpdateRef(context.Background(), "refs/heads/for/master/pr1", commit); err != nil {
		t.Fatalf("update ref: %v", err)
	}
	got := gitOutput(t, gitDir, "", "rev-parse", "refs/heads/for/master/pr1")
	if got != commit {
		t.Fatalf("ref points at %q, want %q", got, commit)
	}
}

func TestGitUpdaterUnknownObject(t *testing.T) {
	requireGit(t)
	gitDir, _ := bareRepoWithCommit(t)

	u := NewGitUpdater("git", gitDir, testlog.Start(t))
	err := u.UpdateRef(context.Background(), "refs/heads/for/master/pr1", strings.Repeat("1", 40))
	if !errors.Is(err, ErrRefUpdateFailed) {
		t.Fatalf("expected ErrRefUpdateFailed, got %v", err)
	}
}

func TestGitUpdaterRejectsRefOutsideNamespace(t *testing.T) {
	u := NewGitUpdater("git", t.TempDir(), testlog.Start(t))
	for _, ref := range []string{"HEAD", "-d", "heads/main"} {
		if err := u.UpdateRef(context.Background(), ref, strings.Repeat("a", 40)); !errors.Is(err, ErrRefUpdateFailed) {
			t.Fatalf("%q: expected ErrRefUpdateFailed, got %v", ref, err)
		}
	}
}

func TestGitUpdaterMissingBinary(t *testing.T) {
	u := NewGitUpdater(filepath.Join(t.TempDir(), "no-such-git"), "", testlog.Start(t))
	err := u.UpdateRef(context.Background(), "refs/heads/x", strings.Repeat("a", 40))
	if !errors.Is(err, ErrRefUpdateFailed) {
		t.Fatalf("expected ErrRefUpdateFailed, got %v", err)
	}
}
