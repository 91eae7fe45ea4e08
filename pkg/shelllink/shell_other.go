//go:build !windows

package shelllink

import "github.com/lobinuxsoft/gamestream-presets/pkg/errors"

func newShellWriter() (Writer, error) {
	return nil, errors.Newf(errors.ErrConfig, "the %q link writer requires Windows", WriterShell)
}
