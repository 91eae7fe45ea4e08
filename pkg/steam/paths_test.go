package steam

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPathsWithBase(t *testing.T) {
	baseDir := filepath.Join("test", "steam")
	paths := NewPathsWithBase(baseDir)

	if paths.BaseDir() != baseDir {
		t.Errorf("BaseDir() = %q, want %q", paths.BaseDir(), baseDir)
	}
}

func TestPaths_Layout(t *testing.T) {
	paths := NewPathsWithBase(filepath.Join("test", "steam"))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"UserDataDir", paths.UserDataDir(), filepath.Join("test", "steam", "userdata")},
		{"UserDir", paths.UserDir("12345"), filepath.Join("test", "steam", "userdata", "12345")},
		{"ConfigDir", paths.ConfigDir("12345"), filepath.Join("test", "steam", "userdata", "12345", "config")},
		{"ShortcutsPath", paths.ShortcutsPath("12345"), filepath.Join("test", "steam", "userdata", "12345", "config", "shortcuts.vdf")},
		{"GridDir", paths.GridDir("12345"), filepath.Join("test", "steam", "userdata", "12345", "config", "grid")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestPaths_HasShortcuts(t *testing.T) {
	tmpDir := t.TempDir()
	paths := NewPathsWithBase(tmpDir)

	userID := "12345"

	if paths.HasShortcuts(userID) {
		t.Error("HasShortcuts() should return false when file doesn't exist")
	}

	writeShortcuts(t, paths, userID)

	if !paths.HasShortcuts(userID) {
		t.Error("HasShortcuts() should return true when file exists")
	}
}

func TestPaths_Users(t *testing.T) {
	tmpDir := t.TempDir()
	paths := NewPathsWithBase(tmpDir)

	for _, name := range []string{"222", "111", "0", "anonymous"} {
		if err := os.MkdirAll(paths.UserDir(name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// stray file, not a user
	if err := os.WriteFile(filepath.Join(paths.UserDataDir(), "333"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	users, err := paths.Users()
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if len(users) != 2 || users[0].ID != "111" || users[1].ID != "222" {
		t.Errorf("Users() = %v, want [111 222]", users)
	}
}

func TestPaths_DiscoverConfigDir(t *testing.T) {
	t.Run("single user with shortcuts", func(t *testing.T) {
		paths := NewPathsWithBase(t.TempDir())
		os.MkdirAll(paths.UserDir("111"), 0755)
		writeShortcuts(t, paths, "222")

		got, err := paths.DiscoverConfigDir()
		if err != nil {
			t.Fatalf("DiscoverConfigDir() error = %v", err)
		}
		if want := paths.ConfigDir("222"); got != want {
			t.Errorf("DiscoverConfigDir() = %q, want %q", got, want)
		}
	})

	t.Run("no user", func(t *testing.T) {
		paths := NewPathsWithBase(t.TempDir())
		os.MkdirAll(paths.UserDir("111"), 0755)

		if _, err := paths.DiscoverConfigDir(); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("DiscoverConfigDir() error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("ambiguous", func(t *testing.T) {
		paths := NewPathsWithBase(t.TempDir())
		writeShortcuts(t, paths, "111")
		writeShortcuts(t, paths, "222")

		if _, err := paths.DiscoverConfigDir(); !errors.Is(err, ErrAmbiguousUser) {
			t.Errorf("DiscoverConfigDir() error = %v, want ErrAmbiguousUser", err)
		}
	})

	t.Run("no userdata", func(t *testing.T) {
		paths := NewPathsWithBase(t.TempDir())
		if _, err := paths.DiscoverConfigDir(); err == nil {
			t.Error("DiscoverConfigDir() should fail without userdata")
		}
	})
}

func TestPortraitGridPath(t *testing.T) {
	configDir := filepath.Join("steam", "userdata", "1", "config")

	tests := []struct {
		ext  string
		want string
	}{
		{"png", filepath.Join(configDir, "grid", "42p.png")},
		{".jpg", filepath.Join(configDir, "grid", "42p.jpg")},
		{"", filepath.Join(configDir, "grid", "42p.png")},
	}

	for _, tt := range tests {
		if got := PortraitGridPath(configDir, 42, tt.ext); got != tt.want {
			t.Errorf("PortraitGridPath(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestFormatFilename(t *testing.T) {
	tests := []struct {
		appID  uint32
		suffix string
		ext    string
		want   string
	}{
		{123, "", "png", "123.png"},
		{123, "_hero", "png", "123_hero.png"},
		{123, "p", "jpg", "123p.jpg"},
		{123, "", "", "123.png"}, // Default extension
		{4294967295, "p", "png", "4294967295p.png"},
	}

	for _, tt := range tests {
		got := formatFilename(tt.appID, tt.suffix, tt.ext)
		if got != tt.want {
			t.Errorf("formatFilename(%d, %q, %q) = %q, want %q",
				tt.appID, tt.suffix, tt.ext, got, tt.want)
		}
	}
}

func TestErrors(t *testing.T) {
	for _, err := range []error{ErrSteamNotFound, ErrUserNotFound, ErrAmbiguousUser} {
		if err == nil || err.Error() == "" {
			t.Errorf("sentinel error %v should have a message", err)
		}
	}
}

func writeShortcuts(t *testing.T, paths *Paths, userID string) {
	t.Helper()
	if err := os.MkdirAll(paths.ConfigDir(userID), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(paths.ShortcutsPath(userID), []byte{}, 0644); err != nil {
		t.Fatal(err)
	}
}
