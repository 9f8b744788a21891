// Package executor shells out to ansible-playbook. The subprocess owns all
// execution semantics; this package only assembles arguments, streams output
// and reports the exit status.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"

	"github.com/rs/zerolog"

	"opsrun/internal/run"
)

// Executor launches the configured automation binary.
type Executor struct {
	Bin        string
	RemoteUser string
	SSHKeyPath string
	Log        zerolog.Logger
}

// Command translates a request into the binary and argument vector of the
// invocation. The production confirmation is a pre-flight gate only and never
// changes what is produced here.
func (e *Executor) Command(req *run.Request) (string, []string) {
	args := []string{req.Playbook.Path, "-i", req.Inventory.Path}
	if req.RoleLimit != nil {
		args = append(args, "--limit", req.RoleLimit.Name)
	}

	// deterministic -e ordering for log readability
	keys := make([]string, 0, len(req.ExtraVars))
	for k := range req.ExtraVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+req.ExtraVars[k])
	}

	if e.RemoteUser != "" {
		args = append(args, "-u", e.RemoteUser)
	}
	if e.SSHKeyPath != "" {
		args = append(args, "--private-key", e.SSHKeyPath)
	}
	return e.Bin, args
}

// Run executes name with args, wiring the terminal straight through without
// buffering. It blocks until the process exits and returns its exit code; a
// cancelled context (operator interrupt) kills the process and surfaces the
// resulting status.
func (e *Executor) Run(ctx context.Context, name string, args []string) (int, error) {
	e.Log.Info().Str("bin", name).Strs("args", args).Msg("launching automation run")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by signal (forwarded interrupt)
			code = 130
		}
		return code, nil
	}
	return -1, err
}
