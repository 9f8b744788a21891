package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// AnsibleDefaults holds the subset of ansible.cfg [defaults] the tool cares
// about: the SSH user and private key used for connectivity pre-flight and
// playbook runs.
type AnsibleDefaults struct {
	RemoteUser     string
	PrivateKeyFile string
}

// ReadAnsibleCfg scans <repo>/ansible.cfg for remote_user and
// private_key_file. A missing file yields empty defaults, not an error; the
// repository is not required to pin either value. `~` in the key path is
// expanded against the operator's home directory.
func ReadAnsibleCfg(repoPath string) (AnsibleDefaults, error) {
	var d AnsibleDefaults

	f, err := os.Open(filepath.Join(repoPath, "ansible.cfg"))
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, err
	}
	defer f.Close()

	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.Trim(line, "[]"))
			continue
		}
		if section != "defaults" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "remote_user":
			d.RemoteUser = value
		case "private_key_file":
			d.PrivateKeyFile = expandHome(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return d, err
	}
	return d, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
