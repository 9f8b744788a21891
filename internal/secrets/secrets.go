// Package secrets reads run credentials from HashiCorp Vault. Address and
// token come from the standard VAULT_* environment variables.
package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	vault "github.com/hashicorp/vault-client-go"

	"opsrun/internal/config"
)

const requestTimeout = 30 * time.Second

// FetchSSHKey reads the SSH private key configured in the [vault] section and
// writes it to a 0600 temp file. The caller removes the file after the run.
func FetchSSHKey(ctx context.Context, vs *config.VaultSettings) (string, error) {
	if vs == nil || !vs.Enabled {
		return "", fmt.Errorf("vault integration is not enabled")
	}

	client, err := vault.New(
		vault.WithEnvironment(),
		vault.WithRequestTimeout(requestTimeout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create vault client: %w", err)
	}

	result, err := client.Secrets.KvV2Read(
		ctx,
		vs.SecretKV2Name,
		vault.WithMountPath(vs.SecretKV2Path),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read vault secret: %w", err)
	}

	field := vs.SSHKeyField
	if field == "" {
		field = "private_key"
	}
	key, ok := result.Data.Data[field].(string)
	if !ok {
		return "", fmt.Errorf("ssh key field %q not found in vault secret", field)
	}

	return writeKeyFile(key)
}

func writeKeyFile(key string) (string, error) {
	tmp, err := os.CreateTemp("", "opsrun-ssh-key-*")
	if err != nil {
		return "", fmt.Errorf("failed to create key file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to set key file permissions: %w", err)
	}
	if _, err := tmp.WriteString(key); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close key file: %w", err)
	}
	return tmp.Name(), nil
}
