// Package settings stores bg3loc user credentials.
//
// Credentials live in the XDG data directory:
//
//	$XDG_DATA_HOME/bg3loc/auth.json  (default: ~/.local/share/bg3loc/auth.json)
//
// The file is a JSON object keyed by profile name ("default" unless
// --profile is given). File permissions are 0600.
//
// Lookup order for the API key:
//  1. --api-key flag (highest priority)
//  2. BG3LOC_API_KEY environment variable
//  3. api_key in bg3loc.yaml / config.ini
//  4. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	dataDirName = "bg3loc"
	fileName    = "auth.json"

	// DefaultProfile is used when no profile is named.
	DefaultProfile = "default"
)

// Info is the credential stored per profile.
type Info struct {
	Key string `json:"key"`
	// BaseURL of the OpenAI-compatible endpoint the key belongs to.
	BaseURL string `json:"baseUrl,omitempty"`
	// Saved is when the entry was written (Unix seconds).
	Saved int64 `json:"saved,omitempty"`
}

// Store holds all credentials, keyed by profile.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for bg3loc.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// DataDir returns the bg3loc data directory.
func DataDir() (string, error) {
	return dataDir()
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store. A missing or unreadable file yields an
// empty store.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the store with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Profile access
// ---------------------------------------------------------------------------

func profileName(p string) string {
	if p == "" {
		return DefaultProfile
	}
	return p
}

// Get returns the entry for a profile, or nil.
func Get(profile string) *Info {
	return Load()[profileName(profile)]
}

// SetAPIKey stores key (and optionally baseURL) for a profile.
func SetAPIKey(profile, key, baseURL string) error {
	store := Load()
	store[profileName(profile)] = &Info{Key: key, BaseURL: baseURL, Saved: time.Now().Unix()}
	return Save(store)
}

// GetAPIKey returns the stored key for a profile, or "".
func GetAPIKey(profile string) string {
	if info := Get(profile); info != nil {
		return info.Key
	}
	return ""
}

// GetBaseURL returns the stored base URL for a profile, or "".
func GetBaseURL(profile string) string {
	if info := Get(profile); info != nil {
		return info.BaseURL
	}
	return ""
}

// Remove deletes a profile. Removing a missing profile is not an error.
func Remove(profile string) error {
	store := Load()
	name := profileName(profile)
	if _, ok := store[name]; !ok {
		return nil
	}
	delete(store, name)
	return Save(store)
}

// RemoveAll deletes the credential file.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Key resolution
// ---------------------------------------------------------------------------

// Key sources reported by ResolveAPIKey.
const (
	SourceFlag   = "flag"
	SourceConfig = "config"
	SourceStore  = "store"
)

// ResolveAPIKey picks the API key by priority: the --api-key flag, then the
// configured value (config file or BG3LOC_API_KEY, already merged by the
// config package), then the credential store. It returns the key and where
// it came from; both are empty when no key is available.
func ResolveAPIKey(profile, flagValue, configured string) (key, source string) {
	if k := strings.TrimSpace(flagValue); k != "" {
		return k, SourceFlag
	}
	if k := strings.TrimSpace(configured); k != "" {
		return k, SourceConfig
	}
	if k := strings.TrimSpace(GetAPIKey(profile)); k != "" {
		return k, SourceStore
	}
	return "", ""
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
