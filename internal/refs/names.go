package refs

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultNamespace  = "refs/heads/for"
	DefaultBaseBranch = "master"
)

var ErrInvalidBranch = errors.New("refs: invalid branch name")

// IntegrationRef names the branch a push is diverted to:
// <namespace>/<base>/pr<id>.
func IntegrationRef(namespace, base string, id uint64) string {
	return fmt.Sprintf("%s/%s/pr%d", strings.TrimSuffix(namespace, "/"), base, id)
}

// ValidateBranch accepts a conservative subset of git branch names:
// [A-Za-z0-9._/-], no "..", "//" or "@{", no leading '-', '.' or '/',
// no trailing '/' or '.', no ".lock" component suffix.
func ValidateBranch(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBranch)
	}
	for i := 0; i < len(name); i++ {
		if !branchByte(name[i]) {
			return fmt.Errorf("%w: %q", ErrInvalidBranch, name)
		}
	}
	switch {
	case strings.Contains(name, ".."), strings.Contains(name, "//"):
		return fmt.Errorf("%w: %q", ErrInvalidBranch, name)
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "/"):
		return fmt.Errorf("%w: %q", ErrInvalidBranch, name)
	case strings.HasSuffix(name, "/"), strings.HasSuffix(name, "."):
		return fmt.Errorf("%w: %q", ErrInvalidBranch, name)
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".lock") {
			return fmt.Errorf("%w: %q", ErrInvalidBranch, name)
		}
	}
	return nil
}

func branchByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '.', c == '_', c == '-', c == '/':
		return true
	}
	return false
}

// ValidateNamespace checks a configured integration namespace.
func ValidateNamespace(ns string) error {
	if !strings.HasPrefix(ns, "refs/") {
		return fmt.Errorf("refs: namespace must start with refs/: %q", ns)
	}
	if err := ValidateBranch(strings.TrimPrefix(ns, "refs/")); err != nil {
		return fmt.Errorf("refs: namespace %q: %w", ns, err)
	}
	return nil
}
