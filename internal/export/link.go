package export

import (
	"path/filepath"
	"strings"

	"github.com/lobinuxsoft/gamestream-presets/pkg/shelllink"
	"github.com/lobinuxsoft/gamestream-presets/pkg/steam"
)

// ExtractArguments removes the first double-quoted occurrence of target from
// exe and returns the remainder untrimmed. When the quoted target does not
// occur, exe is returned whole.
func ExtractArguments(exe, target string) string {
	return strings.Replace(exe, `"`+target+`"`, "", 1)
}

// BuildLink describes the shell link for a matched shortcut. The link points
// at target itself, not at the full Exe command line.
func BuildLink(target string, sc steam.Shortcut) *shelllink.Link {
	return &shelllink.Link{
		Target:       target,
		Arguments:    ExtractArguments(sc.Exe, target),
		IconLocation: sc.Icon,
		Name:         sc.AppName,
		WorkingDir:   sc.StartDir,
		ShowCommand:  shelllink.ShowNormal,
	}
}

// LinkPath returns <destDir>/<name>.lnk.
func LinkPath(destDir, name string) string {
	return filepath.Join(destDir, name+shelllink.Ext)
}
