package sshcheck

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestHostsFromInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	content := `# staging inventory
[web]
web01.example.com ansible_port=2222
web02.example.com

[db]
db01.example.com

; duplicate on purpose
web01.example.com
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	hosts, err := HostsFromInventory(path)
	if err != nil {
		t.Fatalf("HostsFromInventory failed: %v", err)
	}
	want := []string{"web01.example.com", "web02.example.com", "db01.example.com"}
	if !reflect.DeepEqual(hosts, want) {
		t.Errorf("unexpected hosts:\n got %v\nwant %v", hosts, want)
	}
}

func TestHostsFromYamlInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staging.yml")
	if err := os.WriteFile(path, []byte("all:\n  hosts:\n    web01:\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	hosts, err := HostsFromInventory(path)
	if err != nil {
		t.Fatalf("HostsFromInventory failed: %v", err)
	}
	if len(hosts) != 0 {
		t.Errorf("YAML inventory should yield no hosts, got %v", hosts)
	}
}

func TestUnreachable(t *testing.T) {
	var probed []string
	c := &Checker{
		User: "deployer",
		probe: func(target string) error {
			probed = append(probed, target)
			if strings.Contains(target, "down") {
				return errors.New("connection refused")
			}
			return nil
		},
	}

	failed := c.Unreachable([]string{"up01", "down01", "down02"})
	if !reflect.DeepEqual(failed, []string{"down01", "down02"}) {
		t.Errorf("unexpected failed hosts: %v", failed)
	}
	if !reflect.DeepEqual(probed, []string{"deployer@up01", "deployer@down01", "deployer@down02"}) {
		t.Errorf("user not applied to probe targets: %v", probed)
	}
}
