package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rolechat/internal/models"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Preferences are the locally persisted UI choices. They are read at
// startup and written on change; a missing or corrupt file falls back
// to the light theme and the first enumerated role.
type Preferences struct {
	Theme string `json:"theme"`
	Role  string `json:"role"`
}

func defaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, Role: models.DefaultRoles[0]}
}

// LoadPreferences never fails: any problem reading or decoding yields
// the defaults.
func LoadPreferences(path string) Preferences {
	prefs := defaultPreferences()
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	var loaded Preferences
	if err := json.Unmarshal(data, &loaded); err != nil {
		return prefs
	}
	if loaded.Theme == ThemeLight || loaded.Theme == ThemeDark {
		prefs.Theme = loaded.Theme
	}
	if loaded.Role != "" {
		prefs.Role = loaded.Role
	}
	return prefs
}

// SavePreferences writes the preferences file, creating parent
// directories as needed.
func SavePreferences(path string, prefs Preferences) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
