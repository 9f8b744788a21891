// Package history keeps the append-only run log. Records are human-readable
// lines; the tool never parses them back except to show the recent-runs view.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record describes one completed run.
type Record struct {
	Timestamp time.Time
	Playbook  string
	Inventory string
	ExitCode  int
}

func (r Record) line() string {
	return fmt.Sprintf("%s  exit=%d  playbook=%s  inventory=%s",
		r.Timestamp.UTC().Format(time.RFC3339), r.ExitCode, r.Playbook, r.Inventory)
}

// Log is an append-only history file.
type Log struct {
	Path string
}

// Append writes one record. The log directory is created on first use.
func (l *Log) Append(r Record) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, r.line()); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

// Recent returns up to n most recent log lines, newest last. A missing log is
// an empty history, not an error.
func (l *Log) Recent(n int) ([]string, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history log: %w", err)
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
