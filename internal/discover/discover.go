// Package discover enumerates the inventories, playbooks and roles of an
// automation repository checkout.
//
// Directory conventions:
//
//	<repo>/inventories/   inventory files, or directories containing a hosts file
//	<repo>/playbooks/     *.yml / *.yaml playbook files
//	<repo>/roles/         one directory per role
//
// Listings are produced fresh on every call so the menu always reflects the
// current disk contents.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ref is a discovered entry: a filesystem path plus the display name shown in
// the menu.
type Ref struct {
	Name string
	Path string
}

// Listing holds one discovery pass over a repository. Each slice is sorted
// lexicographically by display name; an absent conventional directory yields
// an empty slice.
type Listing struct {
	Inventories []Ref
	Playbooks   []Ref
	Roles       []Ref
}

// DiscoveryError reports an unreadable repository location.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("repository %s is not readable: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Scan walks the conventional subdirectories of root. It fails only when root
// itself is unreadable; missing category directories are a normal, supported
// layout.
func Scan(root string) (*Listing, error) {
	if _, err := os.ReadDir(root); err != nil {
		return nil, &DiscoveryError{Path: root, Err: err}
	}

	inventories, err := scanInventories(filepath.Join(root, "inventories"))
	if err != nil {
		return nil, &DiscoveryError{Path: root, Err: err}
	}
	playbooks, err := scanPlaybooks(filepath.Join(root, "playbooks"))
	if err != nil {
		return nil, &DiscoveryError{Path: root, Err: err}
	}
	roles, err := scanRoles(filepath.Join(root, "roles"))
	if err != nil {
		return nil, &DiscoveryError{Path: root, Err: err}
	}

	return &Listing{Inventories: inventories, Playbooks: playbooks, Roles: roles}, nil
}

// scanInventories accepts both flat inventory files and the directory layout
// where each inventory is a directory containing a hosts file.
func scanInventories(dir string) ([]Ref, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var refs []Ref
	for _, e := range entries {
		if e.IsDir() {
			path := filepath.Join(dir, e.Name())
			if hosts := filepath.Join(path, "hosts"); exists(hosts) {
				path = hosts
			}
			refs = append(refs, Ref{Name: e.Name(), Path: path})
			continue
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		refs = append(refs, Ref{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	sortRefs(refs)
	return refs, nil
}

func scanPlaybooks(dir string) ([]Ref, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var refs []Ref
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		refs = append(refs, Ref{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	sortRefs(refs)
	return refs, nil
}

func scanRoles(dir string) ([]Ref, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var refs []Ref
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		refs = append(refs, Ref{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	sortRefs(refs)
	return refs, nil
}

func sortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// play is the fragment of a playbook document Peek cares about.
type play struct {
	Name  string `yaml:"name"`
	Hosts string `yaml:"hosts"`
}

// Peek reads the first play of a playbook and returns a short annotation for
// menu display, e.g. "Deploy web tier (hosts: webservers)". Parse failures are
// not errors; an unreadable or malformed playbook just has no annotation.
func Peek(playbookPath string) string {
	data, err := os.ReadFile(playbookPath)
	if err != nil {
		return ""
	}
	var plays []play
	if err := yaml.Unmarshal(data, &plays); err != nil || len(plays) == 0 {
		return ""
	}
	first := plays[0]
	switch {
	case first.Name != "" && first.Hosts != "":
		return fmt.Sprintf("%s (hosts: %s)", first.Name, first.Hosts)
	case first.Name != "":
		return first.Name
	case first.Hosts != "":
		return fmt.Sprintf("hosts: %s", first.Hosts)
	}
	return ""
}
