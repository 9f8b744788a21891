package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestValidate(t *testing.T) {
	repo := t.TempDir()
	if err := Validate(repo); err == nil {
		t.Error("directory without conventional subdirs must be invalid")
	}

	if err := os.MkdirAll(filepath.Join(repo, "playbooks"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Validate(repo); err != nil {
		t.Errorf("playbooks/ alone should be enough: %v", err)
	}

	if err := Validate(filepath.Join(repo, "missing")); err == nil {
		t.Error("unreadable path must be invalid")
	}
}

func TestCloneOrUpdateMissingCheckoutWithoutURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkout")
	err := CloneOrUpdate(context.Background(), path, "", zerolog.Nop())
	if err == nil {
		t.Error("missing checkout without URL must fail")
	}
}

func TestCloneOrUpdateNotARepository(t *testing.T) {
	// Existing directory that is not a git checkout: pull must fail cleanly.
	err := CloneOrUpdate(context.Background(), t.TempDir(), "", zerolog.Nop())
	if err == nil {
		t.Error("pull on a non-repository must fail")
	}
}
