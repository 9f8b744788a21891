// Package run assembles and guards a single playbook invocation: the
// validated request, the production confirmation gate, and the per-run state
// machine.
package run

import (
	"fmt"
	"strings"

	"opsrun/internal/discover"
)

// Request is one validated, executable invocation. It is built once per run
// and never mutated afterwards.
type Request struct {
	Playbook             discover.Ref
	Inventory            discover.Ref
	RoleLimit            *discover.Ref
	ExtraVars            map[string]string
	RequiresConfirmation bool
}

// ValidationError reports the first offending field of an invalid selection.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Builder validates operator selections against one discovery session. A
// request may only reference paths that session actually produced, so stale
// menu state can never reach the executor.
type Builder struct {
	listing  *discover.Listing
	patterns []string
}

// NewBuilder binds a builder to a discovery listing and the configured
// production-indicator patterns.
func NewBuilder(listing *discover.Listing, patterns []string) *Builder {
	return &Builder{listing: listing, patterns: patterns}
}

// Build assembles a Request. extraVars are raw key=value pairs as typed by
// the operator; empty keys, malformed pairs and duplicate keys are rejected.
func (b *Builder) Build(playbook, inventory, roleLimit *discover.Ref, extraVars []string) (*Request, error) {
	if playbook == nil {
		return nil, &ValidationError{Field: "playbook", Reason: "no playbook selected"}
	}
	if !contains(b.listing.Playbooks, *playbook) {
		return nil, &ValidationError{Field: "playbook", Reason: fmt.Sprintf("%q was not discovered in this session", playbook.Name)}
	}
	if inventory == nil {
		return nil, &ValidationError{Field: "inventory", Reason: "no inventory selected"}
	}
	if !contains(b.listing.Inventories, *inventory) {
		return nil, &ValidationError{Field: "inventory", Reason: fmt.Sprintf("%q was not discovered in this session", inventory.Name)}
	}
	if roleLimit != nil && !contains(b.listing.Roles, *roleLimit) {
		return nil, &ValidationError{Field: "role", Reason: fmt.Sprintf("%q was not discovered in this session", roleLimit.Name)}
	}

	vars := make(map[string]string, len(extraVars))
	for _, pair := range extraVars {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, &ValidationError{Field: "extra-var", Reason: fmt.Sprintf("%q is not of the form key=value", pair)}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &ValidationError{Field: "extra-var", Reason: "key must not be empty"}
		}
		if _, dup := vars[key]; dup {
			return nil, &ValidationError{Field: "extra-var", Reason: fmt.Sprintf("duplicate key %q", key)}
		}
		vars[key] = value
	}

	return &Request{
		Playbook:             *playbook,
		Inventory:            *inventory,
		RoleLimit:            roleLimit,
		ExtraVars:            vars,
		RequiresConfirmation: MatchesProduction(*inventory, b.patterns),
	}, nil
}

// MatchesProduction reports whether an inventory looks production-like: a
// case-insensitive substring match of any pattern against the display name or
// the path.
func MatchesProduction(inventory discover.Ref, patterns []string) bool {
	name := strings.ToLower(inventory.Name)
	path := strings.ToLower(inventory.Path)
	for _, p := range patterns {
		p = strings.ToLower(p)
		if p == "" {
			continue
		}
		if strings.Contains(name, p) || strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func contains(refs []discover.Ref, ref discover.Ref) bool {
	for _, r := range refs {
		if r.Path == ref.Path {
			return true
		}
	}
	return false
}
