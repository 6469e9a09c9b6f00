// Package refs applies ref updates to the repository the hook runs in.
package refs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

var ErrRefUpdateFailed = errors.New("refs: ref update failed")

// Updater points ref at oid.
type Updater interface {
	UpdateRef(ctx context.Context, ref, oid string) error
}

// GitUpdater shells out to `git update-ref`.
type GitUpdater struct {
	binary string
	gitDir string
	log    zerolog.Logger
}

// NewGitUpdater returns an updater running binary against gitDir. An empty
// gitDir leaves repository discovery to git.
func NewGitUpdater(binary, gitDir string, log zerolog.Logger) *GitUpdater {
	if binary == "" {
		binary = "git"
	}
	return &GitUpdater{
		binary: binary,
		gitDir: gitDir,
		log:    log.With().Str("component", "refs").Logger(),
	}
}

func (u *GitUpdater) UpdateRef(ctx context.Context, ref, oid string) error {
	if !strings.HasPrefix(ref, "refs/") {
		return fmt.Errorf("%w: refusing ref outside refs/: %q", ErrRefUpdateFailed, ref)
	}

	// #nosec G204 - ref is built from a validated template and oid is 40 hex digits
	cmd := exec.CommandContext(ctx, u.binary, "update-ref", ref, oid)
	if u.gitDir != "" {
		cmd.Env = append(os.Environ(), "GIT_DIR="+u.gitDir)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		u.log.Error().Err(err).Str("ref", ref).Str("oid", oid).Str("output", strings.TrimSpace(string(out))).Msg("update-ref failed")
		return fmt.Errorf("%w: %s -> %s: %v (output: %s)", ErrRefUpdateFailed, ref, oid, err, strings.TrimSpace(string(out)))
	}
	u.log.Info().Str("ref", ref).Str("oid", oid).Msg("ref updated")
	return nil
}
