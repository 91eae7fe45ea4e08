//go:build windows

package shelllink

import (
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
)

// ShellWriter creates links through the WScript.Shell COM object, letting
// Windows fill in the target ID list and file metadata.
type ShellWriter struct{}

func newShellWriter() (Writer, error) {
	return ShellWriter{}, nil
}

func (ShellWriter) WriteLink(path string, l *Link) error {
	// Validate with the native encoder so both writers reject the same input.
	if _, err := l.MarshalBinary(); err != nil {
		return err
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED|ole.COINIT_SPEED_OVER_MEMORY); err != nil {
		// S_FALSE: already initialised on this thread
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			return fmt.Errorf("CoInitializeEx: %w", err)
		}
	}
	defer ole.CoUninitialize()

	shell, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return fmt.Errorf("CreateObject: %w", err)
	}
	defer shell.Release()

	wshell, err := shell.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("QueryInterface: %w", err)
	}
	defer wshell.Release()

	cs, err := oleutil.CallMethod(wshell, "CreateShortcut", path)
	if err != nil {
		return errors.Wrap(err, errors.ErrIO, "CreateShortcut failed").WithDetail("path", path)
	}
	sc := cs.ToIDispatch()
	defer sc.Release()

	props := []struct {
		name  string
		value interface{}
	}{
		{"TargetPath", l.Target},
		{"Arguments", l.Arguments},
		{"Description", l.Name},
		{"WorkingDirectory", l.WorkingDir},
	}
	if l.IconLocation != "" {
		props = append(props, struct {
			name  string
			value interface{}
		}{"IconLocation", fmt.Sprintf("%s,%d", l.IconLocation, l.IconIndex)})
	}
	for _, p := range props {
		if _, err := oleutil.PutProperty(sc, p.name, p.value); err != nil {
			return errors.Wrapf(err, errors.ErrEncode, "failed to set %s", p.name).WithDetail("path", path)
		}
	}

	if _, err := oleutil.CallMethod(sc, "Save"); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to save link").WithDetail("path", path)
	}
	return nil
}
