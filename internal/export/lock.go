package export

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
)

// LockFile is created in the destination folder while a run writes to it.
const LockFile = ".gamestream-presets.lock"

// lockDest takes an exclusive, non-blocking lock on destDir so that two runs
// never interleave writes to the same folder. The lock file is removed on
// release so it does not linger among the exported presets.
func lockDest(destDir string) (func(), error) {
	path := filepath.Join(destDir, LockFile)
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "failed to lock destination folder").
			WithDetail("path", path)
	}
	if !locked {
		return nil, errors.New(errors.ErrLocked, "destination folder is in use by another run").
			WithDetail("path", path)
	}

	return func() {
		_ = fl.Unlock()
		_ = os.Remove(path)
	}, nil
}
