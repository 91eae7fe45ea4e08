package export

import (
	"strings"

	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
	"github.com/lobinuxsoft/gamestream-presets/pkg/steam"
)

// Match returns the shortcuts whose Exe contains target, in manifest order.
// Matching is literal: case-sensitive, no separator normalization. An empty
// result is a NO_MATCH error carrying the target.
func Match(shortcuts []steam.Shortcut, target string) ([]steam.Shortcut, error) {
	var matched []steam.Shortcut
	for _, sc := range shortcuts {
		if strings.Contains(sc.Exe, target) {
			matched = append(matched, sc)
		}
	}
	if len(matched) == 0 {
		return nil, errors.New(errors.ErrNoMatch, "target does not exist in shortcuts").
			WithDetail("target", target)
	}
	return matched, nil
}
