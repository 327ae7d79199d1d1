//go:build darwin

package settings

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Keychain stores secrets as generic passwords in the macOS keychain via the
// security CLI.
type Keychain struct {
	service string
}

func NewSecretStore(service string) *Keychain {
	if service == "" {
		service = "maestro"
	}
	return &Keychain{service: service}
}

func (k *Keychain) Set(account string, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret must not be empty")
	}
	out, err := exec.Command("security", "add-generic-password",
		"-U", "-s", k.service, "-a", account, "-w", secret).CombinedOutput()
	if err != nil {
		return fmt.Errorf("keychain write failed: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Get returns the stored secret, or "" if the item does not exist.
func (k *Keychain) Get(account string) (string, error) {
	out, err := exec.Command("security", "find-generic-password",
		"-s", k.service, "-a", account, "-w").Output()
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}

func (k *Keychain) Delete(account string) error {
	out, err := exec.Command("security", "delete-generic-password",
		"-s", k.service, "-a", account).CombinedOutput()
	if err != nil {
		return fmt.Errorf("keychain delete failed: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
