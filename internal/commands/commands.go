// Package commands manages the custom_commands.txt file kept inside the
// repository checkout: operator-curated ad-hoc ansible invocations that run
// against a chosen inventory.
package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileName = "custom_commands.txt"

// File returns the custom commands file path for a repository checkout.
func File(repoPath string) string {
	return filepath.Join(repoPath, fileName)
}

// List returns the saved commands, one per non-empty line. A missing file is
// an empty list.
func List(repoPath string) ([]string, error) {
	f, err := os.Open(File(repoPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open custom commands: %w", err)
	}
	defer f.Close()

	var cmds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			cmds = append(cmds, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read custom commands: %w", err)
	}
	return cmds, nil
}

// Add appends a command line to the file, creating it on first use.
func Add(repoPath, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return fmt.Errorf("command must not be empty")
	}
	f, err := os.OpenFile(File(repoPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open custom commands: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, command); err != nil {
		return fmt.Errorf("failed to save custom command: %w", err)
	}
	return nil
}

// Split resolves a saved command line into binary and arguments with the
// chosen inventory appended (`-i <path>`).
func Split(command, inventoryPath string) (string, []string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("command must not be empty")
	}
	args := append(fields[1:], "-i", inventoryPath)
	return fields[0], args, nil
}
