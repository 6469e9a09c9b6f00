package refs

import (
	"errors"
	"testing"
)

func TestIntegrationRef(t *testing.T) {
	if got := IntegrationRef(DefaultNamespace, DefaultBaseBranch, 12); got != "refs/heads/for/master/pr12" {
		t.Fatalf("unexpected ref: %q", got)
	}
	if got := IntegrationRef("refs/heads/review/", "release/1.x", 3); got != "refs/heads/review/release/1.x/pr3" {
		t.Fatalf("unexpected ref: %q", got)
	}
}

func TestValidateBranch(t *testing.T) {
	for _, ok := range []string{"master", "main", "release/1.x", "feature_x-2", "a.b"} {
		if err := ValidateBranch(ok); err != nil {
			t.Fatalf("%q: unexpected error %v", ok, err)
		}
	}
	bad := []string{
		"", "has space", "semi;colon", "$(id)", "back`tick", "a..b", "a//b",
		"-flag", "/abs", "trail/", "dot.", ".hidden", "x/.y", "name.lock",
		"x.lock/y", "at@{1}", "tilde~1", "caret^", "colon:x", "q?", "star*",
		"unié",
	}
	for _, name := range bad {
		if err := ValidateBranch(name); !errors.Is(err, ErrInvalidBranch) {
			t.Fatalf("%q: expected ErrInvalidBranch, got %v", name, err)
		}
	}
}

func TestValidateNamespace(t *testing.T) {
	if err := ValidateNamespace(DefaultNamespace); err != nil {
		t.Fatalf("default namespace: %v", err)
	}
	for _, ns := range []string{"heads/for", "refs/", "refs/heads/for/", "refs/heads/a b"} {
		if err := ValidateNamespace(ns); err == nil {
			t.Fatalf("%q: expected error", ns)
		}
	}
}
