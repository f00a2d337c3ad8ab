package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyAnon    = "anon"
	keyService = "service"
)

// Credentials stores Supabase API keys in the OS keychain with an optional
// JSON file fallback for environments without a system keyring.
type Credentials struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewCredentials creates a credentials store.
func NewCredentials(serviceName, fallbackPath string) *Credentials {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "quantum-quest"
	}
	return &Credentials{
		service:      serviceName,
		fallbackPath: fallbackPath,
	}
}

func (c *Credentials) SetAnonKey(value string) error    { return c.setSecret(keyAnon, value) }
func (c *Credentials) GetAnonKey() (string, error)      { return c.getSecret(keyAnon) }
func (c *Credentials) SetServiceKey(value string) error { return c.setSecret(keyService, value) }
func (c *Credentials) GetServiceKey() (string, error)   { return c.getSecret(keyService) }

// DeleteAll removes both stored keys.
func (c *Credentials) DeleteAll() error {
	var firstErr error
	for _, part := range []string{keyAnon, keyService} {
		if err := keyring.Delete(c.service, part); err != nil && !errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if err := c.deleteFallback(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (c *Credentials) setSecret(part, value string) error {
	if err := keyring.Set(c.service, part, value); err == nil {
		return nil
	} else if !isKeyringUnavailable(err) {
		return fmt.Errorf("telemetry: keyring set %s: %w", part, err)
	}
	return c.setFallback(part, value)
}

func (c *Credentials) getSecret(part string) (string, error) {
	val, err := keyring.Get(c.service, part)
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("telemetry: keyring get %s: %w", part, err)
	}

	fallback, ferr := c.getFallback(part)
	if ferr == nil {
		return fallback, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", keyring.ErrNotFound
	}
	return "", ferr
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

func (c *Credentials) setFallback(part, value string) error {
	if strings.TrimSpace(c.fallbackPath) == "" {
		return fmt.Errorf("telemetry: keyring unavailable and no fallback path configured")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.readFallbackUnlocked()
	if err != nil {
		return err
	}
	data[part] = value
	return c.writeFallbackUnlocked(data)
}

func (c *Credentials) getFallback(part string) (string, error) {
	if strings.TrimSpace(c.fallbackPath) == "" {
		return "", fmt.Errorf("telemetry: fallback path not configured")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	val, ok := data[part]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return val, nil
}

func (c *Credentials) deleteFallback() error {
	if strings.TrimSpace(c.fallbackPath) == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.fallbackPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Credentials) readFallbackUnlocked() (map[string]string, error) {
	raw, err := os.ReadFile(c.fallbackPath)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("telemetry: corrupt fallback file: %w", err)
	}
	return data, nil
}

func (c *Credentials) writeFallbackUnlocked(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.fallbackPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.fallbackPath, raw, 0o600)
}
