package steam

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrSteamNotFound = stderrors.New("steam installation not found")
	ErrUserNotFound  = stderrors.New("steam user not found")
	// ErrAmbiguousUser is returned when more than one user could own the manifest.
	ErrAmbiguousUser = stderrors.New("multiple steam users found")
)

// File and directory names inside a Steam user's config directory.
const (
	ShortcutsFile = "shortcuts.vdf"
	GridDirName   = "grid"

	// portraitSuffix marks the 600x900 library capsule in the grid directory.
	portraitSuffix = "p"
)

// Paths resolves locations inside a Steam installation.
type Paths struct {
	baseDir string
}

// NewPaths locates the Steam installation for the current platform.
func NewPaths() (*Paths, error) {
	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}
	return NewPathsWithBase(baseDir), nil
}

// NewPathsWithBase uses baseDir as the Steam installation root.
func NewPathsWithBase(baseDir string) *Paths {
	return &Paths{baseDir: baseDir}
}

func (p *Paths) BaseDir() string { return p.baseDir }

func (p *Paths) UserDataDir() string {
	return filepath.Join(p.baseDir, "userdata")
}

func (p *Paths) UserDir(userID string) string {
	return filepath.Join(p.UserDataDir(), userID)
}

// ConfigDir is the directory holding shortcuts.vdf and grid/ for a user.
func (p *Paths) ConfigDir(userID string) string {
	return filepath.Join(p.UserDir(userID), "config")
}

func (p *Paths) ShortcutsPath(userID string) string {
	return ManifestPath(p.ConfigDir(userID))
}

func (p *Paths) GridDir(userID string) string {
	return filepath.Join(p.ConfigDir(userID), GridDirName)
}

// HasShortcuts reports whether the user has a shortcuts.vdf file.
func (p *Paths) HasShortcuts(userID string) bool {
	_, err := os.Stat(p.ShortcutsPath(userID))
	return err == nil
}

// User is a Steam account with a directory under userdata.
type User struct {
	ID string
}

// Users lists accounts under userdata, sorted by ID. The anonymous "0"
// directory is skipped.
func (p *Paths) Users() ([]User, error) {
	entries, err := os.ReadDir(p.UserDataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to read userdata: %w", err)
	}

	var users []User
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := strconv.ParseUint(e.Name(), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		users = append(users, User{ID: e.Name()})
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// DiscoverConfigDir returns the config directory of the only user that has a
// shortcuts.vdf. It fails when none or several users qualify.
func (p *Paths) DiscoverConfigDir() (string, error) {
	users, err := p.Users()
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, u := range users {
		if p.HasShortcuts(u.ID) {
			candidates = append(candidates, u.ID)
		}
	}

	switch len(candidates) {
	case 0:
		return "", ErrUserNotFound
	case 1:
		return p.ConfigDir(candidates[0]), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousUser, strings.Join(candidates, ", "))
	}
}

// ManifestPath returns the shortcuts.vdf path inside a config directory.
func ManifestPath(configDir string) string {
	return filepath.Join(configDir, ShortcutsFile)
}

// PortraitGridPath returns grid/<appID>p.<ext> inside a config directory.
func PortraitGridPath(configDir string, appID uint32, ext string) string {
	return filepath.Join(configDir, GridDirName, formatFilename(appID, portraitSuffix, ext))
}

// formatFilename builds <appID><suffix>.<ext>, defaulting ext to png.
func formatFilename(appID uint32, suffix, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%d%s.%s", appID, suffix, ext)
}
