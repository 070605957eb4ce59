package auth

import (
	"os"
	"time"

	"igclient/pkg/identity"
)

// EnvironmentStore implements SettingsStore over environment variables.
// Read-only; useful for CI and containers where a session id is injected.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables.
func (e *EnvironmentStore) Store(profile *Profile) error {
	return ErrStoreUnavailable
}

// Retrieve builds a minimal profile from IGCLIENT_SESSION_ID and friends.
func (e *EnvironmentStore) Retrieve(username string) (*Profile, error) {
	sessionID := os.Getenv("IGCLIENT_SESSION_ID")
	if sessionID == "" {
		return nil, ErrProfileNotFound
	}
	if username == "" {
		username = os.Getenv("IGCLIENT_USERNAME")
	}
	if username == "" {
		username = "default"
	}
	settings := identity.Settings{
		Cookies: map[string]string{"sessionid": sessionID},
	}
	if mid := os.Getenv("IGCLIENT_MID"); mid != "" {
		settings.Mid = mid
	}
	if ua := os.Getenv("IGCLIENT_USER_AGENT"); ua != "" {
		settings.UserAgent = ua
	}
	return &Profile{
		Username:     username,
		Settings:     settings,
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Profile, error) {
	profile, err := e.Retrieve("")
	if err != nil {
		return []*Profile{}, nil
	}
	return []*Profile{profile}, nil
}

// Delete is not supported for environment variables.
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(username string) bool {
	return os.Getenv("IGCLIENT_SESSION_ID") != ""
}
