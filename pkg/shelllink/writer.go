package shelllink

import (
	"os"

	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
)

// Writer kinds accepted by NewWriter.
const (
	WriterNative = "native"
	WriterShell  = "shell"
)

// Writer persists a Link at path, replacing any existing file.
type Writer interface {
	WriteLink(path string, l *Link) error
}

// NewWriter returns the writer for kind. An empty kind selects the native writer.
func NewWriter(kind string) (Writer, error) {
	switch kind {
	case "", WriterNative:
		return NativeWriter{}, nil
	case WriterShell:
		return newShellWriter()
	default:
		return nil, errors.Newf(errors.ErrConfig, "unknown link writer %q (want %q or %q)", kind, WriterNative, WriterShell)
	}
}

// NativeWriter encodes links itself and works on every platform.
type NativeWriter struct{}

func (NativeWriter) WriteLink(path string, l *Link) error {
	data, err := l.MarshalBinary()
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithDetail("path", path)
		}
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to write link").WithDetail("path", path)
	}
	return nil
}
