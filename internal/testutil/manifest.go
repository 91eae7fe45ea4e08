// Package testutil builds shortcuts.vdf manifests and artwork fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// Field is one typed key/value entry of a binary VDF object.
type Field struct {
	Type     byte
	Key      string
	Str      string
	Int      uint32
	Payload  []byte
	Children []Field
}

const (
	typeObject byte = 0x00
	typeString byte = 0x01
	typeInt32  byte = 0x02
	typeEnd    byte = 0x08
)

func String(key, val string) Field { return Field{Type: typeString, Key: key, Str: val} }

func Int32(key string, v uint32) Field { return Field{Type: typeInt32, Key: key, Int: v} }

func Object(key string, children ...Field) Field {
	return Field{Type: typeObject, Key: key, Children: children}
}

// Raw emits a field with an arbitrary type marker and fixed-width payload.
func Raw(typ byte, key string, payload []byte) Field {
	return Field{Type: typ, Key: key, Payload: payload}
}

// Record returns the five required shortcut fields in Steam's usual order.
func Record(appID uint32, name, exe, startDir, icon string) []Field {
	return []Field{
		Int32("appid", appID),
		String("AppName", name),
		String("Exe", exe),
		String("StartDir", startDir),
		String("icon", icon),
	}
}

// BuildManifest encodes records as a shortcuts.vdf byte stream.
func BuildManifest(records ...[]Field) []byte {
	var buf bytes.Buffer
	buf.WriteByte(typeObject)
	writeCString(&buf, "shortcuts")
	for i, fields := range records {
		writeField(&buf, Object(strconv.Itoa(i), fields...))
	}
	buf.WriteByte(typeEnd)
	buf.WriteByte(typeEnd)
	return buf.Bytes()
}

// WriteManifest writes a manifest as <configDir>/shortcuts.vdf and returns its path.
func WriteManifest(t testing.TB, configDir string, records ...[]Field) string {
	t.Helper()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(configDir, "shortcuts.vdf")
	if err := os.WriteFile(path, BuildManifest(records...), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func writeField(buf *bytes.Buffer, f Field) {
	buf.WriteByte(f.Type)
	writeCString(buf, f.Key)
	switch f.Type {
	case typeObject:
		for _, c := range f.Children {
			writeField(buf, c)
		}
		buf.WriteByte(typeEnd)
	case typeString:
		writeCString(buf, f.Str)
	case typeInt32:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], f.Int)
		buf.Write(b[:])
	default:
		buf.Write(f.Payload)
	}
}

func writeCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0x00)
}
