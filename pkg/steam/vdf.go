package steam

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/lobinuxsoft/gamestream-presets/pkg/errors"
)

// Binary VDF type markers used in shortcuts.vdf.
const (
	vdfTypeObject  byte = 0x00
	vdfTypeString  byte = 0x01
	vdfTypeInt32   byte = 0x02
	vdfTypeFloat32 byte = 0x03
	vdfTypePointer byte = 0x04
	vdfTypeColor   byte = 0x06
	vdfTypeUint64  byte = 0x07
	vdfTypeEnd     byte = 0x08
	vdfTypeInt64   byte = 0x0A
)

const rootKey = "shortcuts"

// LoadShortcutsVDF reads a binary VDF shortcuts file and decodes its records.
func LoadShortcutsVDF(path string) ([]Shortcut, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "failed to stat shortcuts file").
			WithDetail("path", path)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.New(errors.ErrIO, "shortcuts file is not a regular file").
			WithDetail("path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "failed to read shortcuts file").
			WithDetail("path", path)
	}

	shortcuts, err := ParseShortcutsVDF(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithDetail("path", path)
		}
		return nil, err
	}
	return shortcuts, nil
}

// ParseShortcutsVDF decodes binary VDF data into shortcuts, preserving
// storage order. The format uses type markers (\x00=object, \x01=string,
// \x02=int32, \x08=end); fields may appear in any order and unknown fields
// are skipped.
func ParseShortcutsVDF(data []byte) ([]Shortcut, error) {
	c := &cursor{data: data}

	marker, err := c.readByte()
	if err != nil {
		return nil, err
	}
	if marker != vdfTypeObject {
		return nil, c.fail(c.pos-1, "expected object marker at start, got 0x%02x", marker)
	}

	name, err := c.readString()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(name, rootKey) {
		return nil, c.fail(1, "expected root key %q, got %q", rootKey, name)
	}

	var shortcuts []Shortcut
	for {
		start := c.pos
		marker, err := c.readByte()
		if err != nil {
			return nil, err
		}
		if marker == vdfTypeEnd {
			return shortcuts, nil
		}
		if marker != vdfTypeObject {
			return nil, c.fail(start, "expected object marker for shortcut, got 0x%02x", marker)
		}

		index, err := c.readString()
		if err != nil {
			return nil, err
		}

		sc, err := parseShortcutEntry(c, index)
		if err != nil {
			return nil, err
		}
		shortcuts = append(shortcuts, sc)
	}
}

// parseShortcutEntry decodes the fields of one shortcut object up to and
// including its end marker.
func parseShortcutEntry(c *cursor, index string) (Shortcut, error) {
	sc := Shortcut{Index: index}
	start := c.pos
	var seen uint8

	for {
		fieldStart := c.pos
		typeByte, err := c.readByte()
		if err != nil {
			return sc, err
		}
		if typeByte == vdfTypeEnd {
			break
		}

		key, err := c.readString()
		if err != nil {
			return sc, err
		}

		switch typeByte {
		case vdfTypeString:
			val, err := c.readString()
			if err != nil {
				return sc, err
			}

			switch strings.ToLower(key) {
			case "appname":
				sc.AppName = val
				seen |= fieldAppName
			case "exe":
				sc.Exe = val
				seen |= fieldExe
			case "startdir":
				sc.StartDir = val
				seen |= fieldStartDir
			case "icon":
				sc.Icon = val
				seen |= fieldIcon
			case "launchoptions":
				sc.LaunchOptions = val
			}

		case vdfTypeInt32:
			val, err := c.readUint32()
			if err != nil {
				return sc, err
			}

			switch strings.ToLower(key) {
			case "appid":
				sc.AppID = val
				seen |= fieldAppID
			case "ishidden":
				sc.IsHidden = val != 0
			case "lastplaytime":
				sc.LastPlayTime = val
			}

		case vdfTypeObject:
			if strings.EqualFold(key, "tags") {
				tags, err := parseTags(c)
				if err != nil {
					return sc, err
				}
				sc.Tags = tags
			} else if err := skipObject(c); err != nil {
				return sc, err
			}

		default:
			if err := skipScalar(c, typeByte, fieldStart, key); err != nil {
				return sc, err
			}
		}
	}

	if seen&fieldsRequired != fieldsRequired {
		return sc, c.fail(start, "shortcut %q is missing required fields %s",
			index, strings.Join(missingFields(seen), ", ")).
			WithDetail("record", index)
	}
	return sc, nil
}

// parseTags decodes the tags nested object into a string slice.
func parseTags(c *cursor) ([]string, error) {
	var tags []string

	for {
		fieldStart := c.pos
		typeByte, err := c.readByte()
		if err != nil {
			return nil, err
		}
		if typeByte == vdfTypeEnd {
			return tags, nil
		}

		// tag index like "0", "1"
		key, err := c.readString()
		if err != nil {
			return nil, err
		}

		switch typeByte {
		case vdfTypeString:
			val, err := c.readString()
			if err != nil {
				return nil, err
			}
			tags = append(tags, val)
		case vdfTypeObject:
			if err := skipObject(c); err != nil {
				return nil, err
			}
		default:
			if err := skipScalar(c, typeByte, fieldStart, key); err != nil {
				return nil, err
			}
		}
	}
}

// skipObject skips an entire nested object, including its end marker.
func skipObject(c *cursor) error {
	for {
		fieldStart := c.pos
		typeByte, err := c.readByte()
		if err != nil {
			return err
		}
		if typeByte == vdfTypeEnd {
			return nil
		}

		key, err := c.readString()
		if err != nil {
			return err
		}

		switch typeByte {
		case vdfTypeString:
			if _, err := c.readString(); err != nil {
				return err
			}
		case vdfTypeObject:
			if err := skipObject(c); err != nil {
				return err
			}
		default:
			if err := skipScalar(c, typeByte, fieldStart, key); err != nil {
				return err
			}
		}
	}
}

// skipScalar skips the fixed-width value of a non-string, non-object field.
func skipScalar(c *cursor, typeByte byte, fieldStart int, key string) error {
	switch typeByte {
	case vdfTypeInt32, vdfTypeFloat32, vdfTypePointer, vdfTypeColor:
		return c.skip(4)
	case vdfTypeUint64, vdfTypeInt64:
		return c.skip(8)
	default:
		return c.fail(fieldStart, "unknown type marker 0x%02x for key %q", typeByte, key)
	}
}

// cursor is a bounds-checked reader over the manifest bytes.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) fail(offset int, format string, args ...interface{}) *errors.Error {
	return errors.New(errors.ErrManifestFormat, fmt.Sprintf(format, args...)).
		WithDetail("offset", offset)
}

func (c *cursor) readByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, c.fail(c.pos, "unexpected end of data")
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// readString reads a null-terminated string.
func (c *cursor) readString() (string, error) {
	start := c.pos
	for i := start; i < len(c.data); i++ {
		if c.data[i] == 0x00 {
			c.pos = i + 1
			return string(c.data[start:i]), nil
		}
	}
	return "", c.fail(start, "unterminated string")
}

func (c *cursor) readUint32() (uint32, error) {
	if len(c.data)-c.pos < 4 {
		return 0, c.fail(c.pos, "unexpected end of data reading int32")
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

func (c *cursor) skip(n int) error {
	if len(c.data)-c.pos < n {
		return c.fail(c.pos, "unexpected end of data skipping %d bytes", n)
	}
	c.pos += n
	return nil
}
