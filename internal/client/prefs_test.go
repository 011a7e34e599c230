package client

import (
	"os"
	"path/filepath"
	"testing"

	"rolechat/internal/models"
)

func TestLoadPreferencesMissingFile(t *testing.T) {
	prefs := LoadPreferences(filepath.Join(t.TempDir(), "nope.json"))
	if prefs.Theme != ThemeLight || prefs.Role != models.DefaultRoles[0] {
		t.Fatalf("missing file must yield defaults, got %+v", prefs)
	}
}

func TestLoadPreferencesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	prefs := LoadPreferences(path)
	if prefs.Theme != ThemeLight || prefs.Role != models.DefaultRoles[0] {
		t.Fatalf("corrupt file must yield defaults, got %+v", prefs)
	}
}

func TestLoadPreferencesRejectsUnknownTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte(`{"theme":"neon","role":"teacher"}`), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	prefs := LoadPreferences(path)
	if prefs.Theme != ThemeLight {
		t.Fatalf("unknown theme accepted: %q", prefs.Theme)
	}
	if prefs.Role != "teacher" {
		t.Fatalf("valid role dropped: %q", prefs.Role)
	}
}

func TestSaveLoadPreferencesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.json")
	want := Preferences{Theme: ThemeDark, Role: "funny friend"}
	if err := SavePreferences(path, want); err != nil {
		t.Fatalf("SavePreferences error: %v", err)
	}
	if got := LoadPreferences(path); got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}
