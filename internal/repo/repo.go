// Package repo resolves and refreshes the local automation repository
// checkout.
package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	git "gopkg.in/src-d/go-git.v4"
)

// conventional subdirectories that mark a usable automation repository
var markers = []string{"inventories", "playbooks", "roles"}

// Validate checks that path is readable and contains at least one of the
// conventional subdirectories.
func Validate(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("repository path is not readable: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, m := range markers {
			if e.Name() == m {
				return nil
			}
		}
	}
	return fmt.Errorf("no %s directory found under %s", strings.Join(markers, "/"), path)
}

// CloneOrUpdate clones the repository when the checkout is absent (URL
// required) and pulls otherwise. An already-up-to-date checkout is success.
func CloneOrUpdate(ctx context.Context, path, url string, log zerolog.Logger) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if url == "" {
			return fmt.Errorf("checkout %s does not exist and no repository_url is configured", path)
		}
		log.Info().Str("url", url).Str("path", path).Msg("cloning repository")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create checkout parent: %w", err)
		}
		_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
			URL:      url,
			Progress: &progressWriter{log: log.With().Str("component", "git").Logger()},
		})
		if err != nil {
			return fmt.Errorf("failed to clone repository: %w", err)
		}
		return nil
	}

	log.Info().Str("path", path).Msg("pulling latest changes")
	r, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		Progress: &progressWriter{log: log.With().Str("component", "git").Logger()},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		log.Info().Msg("repository already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to pull repository: %w", err)
	}
	return nil
}

// progressWriter turns git progress output into log lines.
type progressWriter struct {
	log zerolog.Logger
}

func (w *progressWriter) Write(p []byte) (int, error) {
	if out := strings.TrimSpace(string(p)); out != "" {
		w.log.Info().Msg(out)
	}
	return len(p), nil
}
