package shelllink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
)

// ReadFile decodes the link stored at path.
func ReadFile(path string) (*Link, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "failed to read link").WithDetail("path", path)
	}
	l, err := Decode(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithDetail("path", path)
		}
		return nil, err
	}
	return l, nil
}

// Decode parses a shell link. Only the fields carried by Link are returned;
// the target ID list and extra data blocks are skipped.
func Decode(data []byte) (*Link, error) {
	r := &reader{data: data}

	size, err := r.u32()
	if err != nil {
		return nil, err
	}
	if size != headerSize {
		return nil, r.fail(0, "unexpected header size 0x%x", size)
	}
	clsid, err := r.bytes(16)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(clsid, linkCLSID[:]) {
		return nil, r.fail(4, "unexpected link CLSID")
	}

	flags, err := r.u32()
	if err != nil {
		return nil, err
	}
	// attributes, times, file size
	if err := r.skip(4 + 24 + 4); err != nil {
		return nil, err
	}

	l := &Link{}
	iconIndex, err := r.u32()
	if err != nil {
		return nil, err
	}
	l.IconIndex = int32(iconIndex)
	if l.ShowCommand, err = r.u32(); err != nil {
		return nil, err
	}
	if err := r.skip(2 + 10); err != nil {
		return nil, err
	}

	if flags&flagHasLinkTargetIDList != 0 {
		n, err := r.u16()
		if err != nil {
			return nil, err
		}
		if err := r.skip(int(n)); err != nil {
			return nil, err
		}
	}

	if flags&flagHasLinkInfo != 0 {
		if l.Target, err = decodeLinkInfo(r); err != nil {
			return nil, err
		}
	}

	unicodeStrings := flags&flagIsUnicode != 0
	for _, f := range []struct {
		flag uint32
		dst  *string
	}{
		{flagHasName, &l.Name},
		{flagHasRelativePath, nil},
		{flagHasWorkingDir, &l.WorkingDir},
		{flagHasArguments, &l.Arguments},
		{flagHasIconLocation, &l.IconLocation},
	} {
		if flags&f.flag == 0 {
			continue
		}
		s, err := r.stringData(unicodeStrings)
		if err != nil {
			return nil, err
		}
		if f.dst != nil {
			*f.dst = s
		}
	}

	return l, nil
}

// decodeLinkInfo returns LocalBasePath + CommonPathSuffix, preferring the
// Unicode variants when present.
func decodeLinkInfo(r *reader) (string, error) {
	start := r.pos
	size, err := r.u32()
	if err != nil {
		return "", err
	}
	if size < linkInfoHeaderSize || int(size) > len(r.data)-start {
		return "", r.fail(start, "invalid LinkInfo size %d", size)
	}
	info := &reader{data: r.data[start : start+int(size)], base: start}
	r.pos = start + int(size)

	info.pos = 4
	hdr, _ := info.u32()
	flags, _ := info.u32()
	_, _ = info.u32() // VolumeIDOffset
	basePathOffset, _ := info.u32()
	_, _ = info.u32() // CommonNetworkRelativeLinkOffset
	suffixOffset, err := info.u32()
	if err != nil {
		return "", err
	}

	if hdr >= linkInfoHeaderSizeUnicode {
		basePathUnicode, err := info.u32()
		if err != nil {
			return "", err
		}
		suffixUnicode, err := info.u32()
		if err != nil {
			return "", err
		}
		if flags&linkInfoVolumeIDLocal != 0 && basePathUnicode != 0 {
			base, err := info.wstringAt(int(basePathUnicode))
			if err != nil {
				return "", err
			}
			suffix, err := info.wstringAt(int(suffixUnicode))
			if err != nil {
				return "", err
			}
			return base + suffix, nil
		}
	}

	if flags&linkInfoVolumeIDLocal == 0 {
		return "", nil
	}
	base, err := info.cstringAt(int(basePathOffset))
	if err != nil {
		return "", err
	}
	suffix, err := info.cstringAt(int(suffixOffset))
	if err != nil {
		return "", err
	}
	return base + suffix, nil
}

// reader is a bounds-checked little-endian reader. base is the absolute
// offset of data[0], used in error details.
type reader struct {
	data []byte
	pos  int
	base int
}

func (r *reader) fail(offset int, format string, args ...interface{}) *errors.Error {
	return errors.New(errors.ErrLinkFormat, fmt.Sprintf(format, args...)).
		WithDetail("offset", r.base+offset)
}

func (r *reader) need(n int) error {
	if n < 0 || len(r.data)-r.pos < n {
		return r.fail(r.pos, "unexpected end of data reading %d bytes", n)
	}
	return nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) skip(n int) error {
	_, err := r.bytes(n)
	return err
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) stringData(unicode bool) (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	if !unicode {
		b, err := r.bytes(int(n))
		if err != nil {
			return "", err
		}
		return decodeANSI(b)
	}
	b, err := r.bytes(int(n) * 2)
	if err != nil {
		return "", err
	}
	return decodeUTF16(b)
}

func (r *reader) cstringAt(off int) (string, error) {
	if off < 0 || off >= len(r.data) {
		return "", r.fail(off, "string offset out of range")
	}
	end := bytes.IndexByte(r.data[off:], 0)
	if end < 0 {
		return "", r.fail(off, "unterminated string")
	}
	return decodeANSI(r.data[off : off+end])
}

func (r *reader) wstringAt(off int) (string, error) {
	if off < 0 || off >= len(r.data) {
		return "", r.fail(off, "string offset out of range")
	}
	for i := off; i+1 < len(r.data); i += 2 {
		if r.data[i] == 0 && r.data[i+1] == 0 {
			return decodeUTF16(r.data[off:i])
		}
	}
	return "", r.fail(off, "unterminated unicode string")
}

func decodeANSI(b []byte) (string, error) {
	out, err := ansi.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrLinkFormat, "invalid ANSI string")
	}
	return string(out), nil
}

func decodeUTF16(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrLinkFormat, "invalid UTF-16 string")
	}
	return string(out), nil
}
