package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"igclient/pkg/identity"
)

// Profile is one persisted account: the username plus the full device and
// session state needed to resume without logging in again.
type Profile struct {
	Username     string            `json:"username"`
	Settings     identity.Settings `json:"settings"`
	LastModified time.Time         `json:"last_modified"`
}

// SettingsStore persists account profiles between runs.
type SettingsStore interface {
	// Store saves the profile for its username.
	Store(profile *Profile) error

	// Retrieve gets the profile for a specific username.
	Retrieve(username string) (*Profile, error)

	// List returns all stored profiles.
	List() ([]*Profile, error)

	// Delete removes the profile for a specific username.
	Delete(username string) error

	// Exists checks whether a profile exists for a username.
	Exists(username string) bool
}

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidProfile   = errors.New("invalid profile")
	ErrStoreUnavailable = errors.New("settings store unavailable")
)

// Manager layers settings stores with fallback: keychain when available,
// then an encrypted file, then environment variables as a read-only last
// resort.
type Manager struct {
	stores []SettingsStore
}

func NewManager() (*Manager, error) {
	var stores []SettingsStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "profiles.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWith builds a manager over an explicit store chain. Used by
// callers that bring their own persistence.
func NewManagerWith(stores ...SettingsStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the profile using the first store that accepts it.
func (m *Manager) Store(profile *Profile) error {
	if profile == nil || profile.Username == "" {
		return ErrInvalidProfile
	}
	profile.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(profile); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to store profile: %w", lastErr)
	}
	return errors.New("no available settings stores")
}

// Retrieve gets the profile from the first store that has it.
func (m *Manager) Retrieve(username string) (*Profile, error) {
	for _, store := range m.stores {
		if profile, err := store.Retrieve(username); err == nil && profile != nil {
			return profile, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, username)
}

// List returns all stored profiles, newest version per username.
func (m *Manager) List() ([]*Profile, error) {
	byUser := make(map[string]*Profile)
	for _, store := range m.stores {
		profiles, err := store.List()
		if err != nil {
			continue
		}
		for _, profile := range profiles {
			if existing, ok := byUser[profile.Username]; !ok || profile.LastModified.After(existing.LastModified) {
				byUser[profile.Username] = profile
			}
		}
	}
	var result []*Profile
	for _, profile := range byUser {
		result = append(result, profile)
	}
	return result, nil
}

// Delete removes the profile from every store that has it.
func (m *Manager) Delete(username string) error {
	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(username); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}
	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete profile: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, username)
	}
	return nil
}

// getConfigDir returns the configuration directory path, creating it when
// missing.
func getConfigDir() (string, error) {
	var configDir string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "igclient")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "igclient")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "igclient")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "igclient")
		}
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}
