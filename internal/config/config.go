package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults applied when the config file leaves a field empty.
const (
	DefaultPlaybookBin        = "ansible-playbook"
	DefaultConfirmationPhrase = "PROD"
)

// VaultSettings mirrors the [vault] section of the config file. When enabled,
// the SSH private key for playbook runs is read from a KV v2 secret instead
// of ansible.cfg.
type VaultSettings struct {
	Enabled       bool   `toml:"enabled"`
	SecretKV2Path string `toml:"secret_kv2_path,omitempty"`
	SecretKV2Name string `toml:"secret_kv2_name,omitempty"`
	SSHKeyField   string `toml:"ssh_key_field,omitempty"`
}

// Config is the persisted operator configuration (~/.opsrun/config.toml).
type Config struct {
	RepositoryPath     string         `toml:"repository_path"`
	RepositoryURL      string         `toml:"repository_url,omitempty"`
	AnsiblePlaybookBin string         `toml:"ansible_playbook_bin,omitempty"`
	ProductionPatterns []string       `toml:"production_patterns,omitempty"`
	ConfirmationPhrase string         `toml:"confirmation_phrase,omitempty"`
	HistoryPath        string         `toml:"history_path,omitempty"`
	Vault              *VaultSettings `toml:"vault,omitempty"`
}

// PlaybookBin returns the configured ansible-playbook executable or the default.
func (c *Config) PlaybookBin() string {
	if c.AnsiblePlaybookBin != "" {
		return c.AnsiblePlaybookBin
	}
	return DefaultPlaybookBin
}

// Patterns returns the production-indicator patterns, defaulting to ["prod"].
func (c *Config) Patterns() []string {
	if len(c.ProductionPatterns) > 0 {
		return c.ProductionPatterns
	}
	return []string{"prod"}
}

// Phrase returns the literal confirmation phrase required for flagged runs.
func (c *Config) Phrase() string {
	if c.ConfirmationPhrase != "" {
		return c.ConfirmationPhrase
	}
	return DefaultConfirmationPhrase
}

// HistoryFile returns the history log path, defaulting next to the config file.
func (c *Config) HistoryFile() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}
	dir, err := configDir()
	if err != nil {
		return "history.log"
	}
	return filepath.Join(dir, "history.log")
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".opsrun"), nil
}

// Path returns the config file location. OPSRUN_CONFIG overrides the default
// ~/.opsrun/config.toml.
func Path() (string, error) {
	if p := os.Getenv("OPSRUN_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadEnv loads a .env file from the working directory when present and
// applies OPSRUN_* overrides. A missing .env file is not an error.
func LoadEnv(cfg *Config) {
	_ = godotenv.Load()
	if p := os.Getenv("OPSRUN_REPO_PATH"); p != "" {
		cfg.RepositoryPath = p
	}
	if u := os.Getenv("OPSRUN_REPO_URL"); u != "" {
		cfg.RepositoryURL = u
	}
	if b := os.Getenv("OPSRUN_PLAYBOOK_BIN"); b != "" {
		cfg.AnsiblePlaybookBin = b
	}
}

// LoadConfig reads the TOML configuration file.
func LoadConfig() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration file, creating its directory if needed.
func SaveConfig(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
