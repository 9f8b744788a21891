package commands

import (
	"reflect"
	"testing"
)

func TestAddAndList(t *testing.T) {
	repo := t.TempDir()

	cmds, err := List(repo)
	if err != nil {
		t.Fatalf("List on missing file failed: %v", err)
	}
	if len(cmds) != 0 {
		t.Errorf("expected empty list, got %v", cmds)
	}

	if err := Add(repo, "ansible all -m ping"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := Add(repo, "  ansible-playbook playbooks/restart.yml  "); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := Add(repo, "   "); err == nil {
		t.Error("blank command must be rejected")
	}

	cmds, err = List(repo)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"ansible all -m ping", "ansible-playbook playbooks/restart.yml"}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("unexpected commands:\n got %v\nwant %v", cmds, want)
	}
}

func TestSplit(t *testing.T) {
	bin, args, err := Split("ansible all -m ping", "/repo/inventories/staging.yml")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if bin != "ansible" {
		t.Errorf("unexpected binary: %q", bin)
	}
	want := []string{"all", "-m", "ping", "-i", "/repo/inventories/staging.yml"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("unexpected args: %v", args)
	}

	if _, _, err := Split("   ", "/x"); err == nil {
		t.Error("blank command must be rejected")
	}
}
