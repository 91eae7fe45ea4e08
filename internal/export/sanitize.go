package export

import "strings"

// illegalNameChars are the characters Windows forbids in file names. All of
// them are ASCII, so names are filtered byte by byte and other bytes pass
// through untouched, valid UTF-8 or not.
const illegalNameChars = `\/:*?"<>|`

// Sanitize deletes every character that is illegal in a Windows file name.
// A name made only of illegal characters becomes empty.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		if strings.IndexByte(illegalNameChars, name[i]) < 0 {
			b.WriteByte(name[i])
		}
	}
	return b.String()
}
