//go:build !darwin

package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Keychain falls back to a mode-0600 JSON file on platforms without the
// macOS keychain.
type Keychain struct {
	mu   sync.Mutex
	path string
}

func NewSecretStore(service string) *Keychain {
	if service == "" {
		service = "maestro"
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return &Keychain{path: filepath.Join(base, service, "secrets.json")}
}

func (k *Keychain) Set(account string, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret must not be empty")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	secrets, err := k.read()
	if err != nil {
		return err
	}
	secrets[account] = secret
	return k.write(secrets)
}

func (k *Keychain) Get(account string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	secrets, err := k.read()
	if err != nil {
		return "", err
	}
	return secrets[account], nil
}

func (k *Keychain) Delete(account string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	secrets, err := k.read()
	if err != nil {
		return err
	}
	delete(secrets, account)
	return k.write(secrets)
}

func (k *Keychain) read() (map[string]string, error) {
	secrets := make(map[string]string)
	data, err := os.ReadFile(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return secrets, nil
		}
		return nil, fmt.Errorf("read secrets: %w", err)
	}
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("parse secrets: %w", err)
	}
	return secrets, nil
}

func (k *Keychain) write(secrets map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(k.path), 0o700); err != nil {
		return fmt.Errorf("create secrets dir: %w", err)
	}
	data, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(k.path, data, 0o600)
}
