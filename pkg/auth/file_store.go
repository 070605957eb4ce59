package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore implements SettingsStore over a plaintext YAML file. Meant for
// development and for users who manage secrets elsewhere; production setups
// should prefer the keyring or the encrypted store.
type FileStore struct {
	filepath string
	mu       sync.RWMutex
}

func NewFileStore(filePath string) (*FileStore, error) {
	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return &FileStore{filepath: filePath}, nil
}

func (f *FileStore) Store(profile *Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if profile == nil || profile.Username == "" {
		return ErrInvalidProfile
	}
	profiles, err := f.load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if profiles == nil {
		profiles = make(map[string]Profile)
	}
	profiles[profile.Username] = *profile
	return f.save(profiles)
}

func (f *FileStore) Retrieve(username string) (*Profile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if username == "" {
		return nil, ErrInvalidProfile
	}
	profiles, err := f.load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	profile, ok := profiles[username]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func (f *FileStore) List() ([]*Profile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	profiles, err := f.load()
	if err != nil {
		if os.IsNotExist(err) {
			return []*Profile{}, nil
		}
		return nil, err
	}
	var result []*Profile
	for _, profile := range profiles {
		p := profile
		result = append(result, &p)
	}
	return result, nil
}

func (f *FileStore) Delete(username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if username == "" {
		return ErrInvalidProfile
	}
	profiles, err := f.load()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrProfileNotFound
		}
		return err
	}
	if _, ok := profiles[username]; !ok {
		return ErrProfileNotFound
	}
	delete(profiles, username)
	if len(profiles) == 0 {
		return os.Remove(f.filepath)
	}
	return f.save(profiles)
}

func (f *FileStore) Exists(username string) bool {
	profile, err := f.Retrieve(username)
	return err == nil && profile != nil
}

func (f *FileStore) load() (map[string]Profile, error) {
	content, err := os.ReadFile(f.filepath)
	if err != nil {
		return nil, err
	}
	var profiles map[string]Profile
	if err := yaml.Unmarshal(content, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}
	return profiles, nil
}

func (f *FileStore) save(profiles map[string]Profile) error {
	content, err := yaml.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	tempFile := f.filepath + ".tmp"
	if err := os.WriteFile(tempFile, content, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Rename(tempFile, f.filepath)
}
