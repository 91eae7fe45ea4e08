// Package shelllink reads and writes Windows shell link (.lnk) files in the
// MS-SHLLINK binary format without relying on the Windows shell.
package shelllink

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
)

// Ext is the file extension of shell links.
const Ext = ".lnk"

const (
	headerSize = 0x4C

	// MaxTargetLength is MAX_PATH minus the terminating null.
	MaxTargetLength = 259
	// maxStringData is the largest CountCharacters a StringData entry can hold.
	maxStringData = 0xFFFF

	linkInfoHeaderSize        = 0x1C
	linkInfoHeaderSizeUnicode = 0x24
	volumeIDSize              = 0x11
)

// LinkFlags bits.
const (
	flagHasLinkTargetIDList uint32 = 1 << iota
	flagHasLinkInfo
	flagHasName
	flagHasRelativePath
	flagHasWorkingDir
	flagHasArguments
	flagHasIconLocation
	flagIsUnicode
)

const (
	fileAttributeNormal   uint32 = 0x80
	linkInfoVolumeIDLocal uint32 = 0x1
	driveFixed            uint32 = 3
)

// Show commands.
const (
	ShowNormal        uint32 = 1
	ShowMaximized     uint32 = 3
	ShowMinNoActivate uint32 = 7
)

// linkCLSID is 00021401-0000-0000-C000-000000000046 in its on-disk byte order.
var linkCLSID = [16]byte{0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}

var (
	utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	ansi    = charmap.Windows1252
)

// Link describes the fields of a shell link.
type Link struct {
	Target       string
	Arguments    string
	IconLocation string
	IconIndex    int32
	// Name is the description shown as the link's comment/tooltip.
	Name        string
	WorkingDir  string
	ShowCommand uint32
}

// MarshalBinary serializes the link. It fails with an ENCODE error when a
// field cannot be represented.
func (l *Link) MarshalBinary() ([]byte, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	flags := flagHasLinkInfo | flagIsUnicode
	strs := []struct {
		flag  uint32
		value string
	}{
		{flagHasName, l.Name},
		{flagHasWorkingDir, l.WorkingDir},
		{flagHasArguments, l.Arguments},
		{flagHasIconLocation, l.IconLocation},
	}
	for _, s := range strs {
		if s.value != "" {
			flags |= s.flag
		}
	}

	showCommand := l.ShowCommand
	if showCommand == 0 {
		showCommand = ShowNormal
	}

	var buf bytes.Buffer
	le := func(v interface{}) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	// ShellLinkHeader
	le(uint32(headerSize))
	buf.Write(linkCLSID[:])
	le(flags)
	le(fileAttributeNormal)
	buf.Write(make([]byte, 24)) // creation, access, write times
	le(uint32(0))               // file size
	le(l.IconIndex)
	le(showCommand)
	le(uint16(0)) // hotkey
	buf.Write(make([]byte, 10))

	info, err := encodeLinkInfo(l.Target)
	if err != nil {
		return nil, err
	}
	buf.Write(info)

	for _, s := range strs {
		if flags&s.flag == 0 {
			continue
		}
		units, err := utf16le.NewEncoder().Bytes([]byte(s.value))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrEncode, "failed to encode string data")
		}
		le(uint16(len(units) / 2))
		buf.Write(units)
	}

	// TerminalBlock
	le(uint32(0))

	return buf.Bytes(), nil
}

func (l *Link) validate() error {
	switch {
	case l.Target == "":
		return errors.New(errors.ErrEncode, "target path is empty")
	case strings.ContainsRune(l.Target, 0):
		return errors.New(errors.ErrEncode, "target path contains a null character").
			WithDetail("target", l.Target)
	case utf16Len(l.Target) > MaxTargetLength:
		return errors.Newf(errors.ErrEncode, "target path exceeds %d characters", MaxTargetLength).
			WithDetail("target", l.Target)
	}

	for name, v := range map[string]string{
		"name":        l.Name,
		"working dir": l.WorkingDir,
		"arguments":   l.Arguments,
		"icon":        l.IconLocation,
	} {
		if utf16Len(v) > maxStringData {
			return errors.Newf(errors.ErrEncode, "%s exceeds %d characters", name, maxStringData).
				WithDetail("field", name)
		}
	}
	return nil
}

// encodeLinkInfo builds a LinkInfo structure with a local VolumeID and base
// path. Non-ASCII paths also get the Unicode base path.
func encodeLinkInfo(target string) ([]byte, error) {
	ansiPath, err := encoding.ReplaceUnsupported(ansi.NewEncoder()).Bytes([]byte(target))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrEncode, "failed to encode target path").
			WithDetail("target", target)
	}

	withUnicode := !isASCII(target)
	hdr := uint32(linkInfoHeaderSize)
	if withUnicode {
		hdr = linkInfoHeaderSizeUnicode
	}

	volumeIDOffset := hdr
	basePathOffset := volumeIDOffset + volumeIDSize
	suffixOffset := basePathOffset + uint32(len(ansiPath)) + 1
	end := suffixOffset + 1

	var unicodePath []byte
	var basePathUnicodeOffset, suffixUnicodeOffset uint32
	if withUnicode {
		unicodePath, err = utf16le.NewEncoder().Bytes([]byte(target))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrEncode, "failed to encode target path").
				WithDetail("target", target)
		}
		basePathUnicodeOffset = end
		suffixUnicodeOffset = basePathUnicodeOffset + uint32(len(unicodePath)) + 2
		end = suffixUnicodeOffset + 2
	}

	var buf bytes.Buffer
	le := func(v interface{}) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	le(end)
	le(hdr)
	le(linkInfoVolumeIDLocal)
	le(volumeIDOffset)
	le(basePathOffset)
	le(uint32(0)) // CommonNetworkRelativeLinkOffset
	le(suffixOffset)
	if withUnicode {
		le(basePathUnicodeOffset)
		le(suffixUnicodeOffset)
	}

	// VolumeID with an empty label
	le(uint32(volumeIDSize))
	le(driveFixed)
	le(uint32(0))    // serial
	le(uint32(0x10)) // label offset
	buf.WriteByte(0)

	buf.Write(ansiPath)
	buf.WriteByte(0)
	buf.WriteByte(0) // empty CommonPathSuffix

	if withUnicode {
		buf.Write(unicodePath)
		buf.Write([]byte{0, 0})
		buf.Write([]byte{0, 0})
	}

	return buf.Bytes(), nil
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
