package run

import (
	"errors"
	"testing"

	"opsrun/internal/discover"
)

func testListing() *discover.Listing {
	return &discover.Listing{
		Inventories: []discover.Ref{
			{Name: "prod.yml", Path: "/repo/inventories/prod.yml"},
			{Name: "staging.yml", Path: "/repo/inventories/staging.yml"},
		},
		Playbooks: []discover.Ref{
			{Name: "deploy.yml", Path: "/repo/playbooks/deploy.yml"},
		},
		Roles: []discover.Ref{
			{Name: "nginx", Path: "/repo/roles/nginx"},
		},
	}
}

func TestBuildValidRequest(t *testing.T) {
	l := testListing()
	b := NewBuilder(l, []string{"prod"})

	req, err := b.Build(&l.Playbooks[0], &l.Inventories[1], &l.Roles[0], []string{"version=1.2.3", "canary=true"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.Playbook.Name != "deploy.yml" || req.Inventory.Name != "staging.yml" {
		t.Errorf("unexpected request refs: %+v", req)
	}
	if req.RoleLimit == nil || req.RoleLimit.Name != "nginx" {
		t.Errorf("role limit not carried: %+v", req.RoleLimit)
	}
	if req.ExtraVars["version"] != "1.2.3" || req.ExtraVars["canary"] != "true" {
		t.Errorf("extra vars not parsed: %v", req.ExtraVars)
	}
	if req.RequiresConfirmation {
		t.Error("staging inventory must not require confirmation")
	}
}

func TestBuildFlagsProduction(t *testing.T) {
	l := testListing()
	b := NewBuilder(l, []string{"prod"})

	req, err := b.Build(&l.Playbooks[0], &l.Inventories[0], nil, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !req.RequiresConfirmation {
		t.Error("prod inventory must require confirmation")
	}
}

func TestBuildValidation(t *testing.T) {
	l := testListing()
	b := NewBuilder(l, []string{"prod"})
	outside := discover.Ref{Name: "other.yml", Path: "/elsewhere/other.yml"}

	tests := []struct {
		name      string
		playbook  *discover.Ref
		inventory *discover.Ref
		role      *discover.Ref
		vars      []string
		wantField string
	}{
		{"nil playbook", nil, &l.Inventories[0], nil, nil, "playbook"},
		{"nil inventory", &l.Playbooks[0], nil, nil, nil, "inventory"},
		{"undiscovered playbook", &outside, &l.Inventories[0], nil, nil, "playbook"},
		{"undiscovered inventory", &l.Playbooks[0], &outside, nil, nil, "inventory"},
		{"undiscovered role", &l.Playbooks[0], &l.Inventories[0], &outside, nil, "role"},
		{"malformed var", &l.Playbooks[0], &l.Inventories[0], nil, []string{"noequals"}, "extra-var"},
		{"empty key", &l.Playbooks[0], &l.Inventories[0], nil, []string{"=value"}, "extra-var"},
		{"duplicate key", &l.Playbooks[0], &l.Inventories[0], nil, []string{"a=1", "a=2"}, "extra-var"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := b.Build(tt.playbook, tt.inventory, tt.role, tt.vars)
			if req != nil {
				t.Error("invalid selection must not produce a request")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("unexpected offending field: got %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestMatchesProduction(t *testing.T) {
	tests := []struct {
		name     string
		ref      discover.Ref
		patterns []string
		want     bool
	}{
		{"substring in name", discover.Ref{Name: "prod.yml", Path: "/x/prod.yml"}, []string{"prod"}, true},
		{"case insensitive", discover.Ref{Name: "PROD-eu.yml", Path: "/x/PROD-eu.yml"}, []string{"prod"}, true},
		{"substring in path only", discover.Ref{Name: "hosts", Path: "/repo/inventories/production/hosts"}, []string{"prod"}, true},
		{"no match", discover.Ref{Name: "staging.yml", Path: "/x/staging.yml"}, []string{"prod"}, false},
		{"custom pattern", discover.Ref{Name: "live-eu.yml", Path: "/x/live-eu.yml"}, []string{"prod", "live"}, true},
		{"empty pattern ignored", discover.Ref{Name: "staging.yml", Path: "/x/staging.yml"}, []string{""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesProduction(tt.ref, tt.patterns); got != tt.want {
				t.Errorf("MatchesProduction(%v, %v) = %v, want %v", tt.ref, tt.patterns, got, tt.want)
			}
		})
	}
}
