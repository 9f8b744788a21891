// Package sshcheck probes SSH connectivity to inventory hosts before a run,
// so unreachable machines surface before ansible-playbook is launched.
package sshcheck

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// HostsFromInventory extracts hostnames from an INI-style inventory file:
// blank lines, comments and [group] headers are skipped, and only the first
// whitespace-separated token of each host line counts. YAML inventories yield
// no hosts here, which simply skips the pre-flight.
func HostsFromInventory(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()

	var hosts []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "[") {
			continue
		}
		host := strings.Fields(line)[0]
		// YAML inventories are not host-per-line; a key like "all:" is not a host
		if strings.HasSuffix(host, ":") {
			continue
		}
		if !seen[host] {
			seen[host] = true
			hosts = append(hosts, host)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	return hosts, nil
}

// Checker probes hosts over SSH in batch mode with a short timeout.
type Checker struct {
	User    string
	KeyPath string

	// probe is swapped out in tests; nil means a real ssh invocation.
	probe func(target string) error
}

// Unreachable returns the subset of hosts that did not answer an SSH probe,
// in input order.
func (c *Checker) Unreachable(hosts []string) []string {
	var failed []string
	for _, host := range hosts {
		target := host
		if c.User != "" {
			target = c.User + "@" + host
		}
		if err := c.run(target); err != nil {
			failed = append(failed, host)
		}
	}
	return failed
}

func (c *Checker) run(target string) error {
	if c.probe != nil {
		return c.probe(target)
	}
	args := []string{"-o", "BatchMode=yes", "-o", "ConnectTimeout=5"}
	if c.KeyPath != "" {
		args = append(args, "-i", c.KeyPath)
	}
	args = append(args, target, "exit")
	cmd := exec.Command("ssh", args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}
