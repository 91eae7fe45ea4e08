package steam

// Shortcut is one non-Steam game entry decoded from shortcuts.vdf.
type Shortcut struct {
	// Index is the record key inside the root object ("0", "1", ...).
	Index string

	AppID    uint32
	AppName  string
	Exe      string // quoted executable path, optionally followed by arguments
	StartDir string
	Icon     string

	LaunchOptions string
	IsHidden      bool
	LastPlayTime  uint32
	Tags          []string
}

// required field bits, set as they are decoded.
const (
	fieldAppID uint8 = 1 << iota
	fieldAppName
	fieldExe
	fieldStartDir
	fieldIcon

	fieldsRequired = fieldAppID | fieldAppName | fieldExe | fieldStartDir | fieldIcon
)

var requiredFieldNames = []struct {
	bit  uint8
	name string
}{
	{fieldAppID, "appid"},
	{fieldAppName, "AppName"},
	{fieldExe, "Exe"},
	{fieldStartDir, "StartDir"},
	{fieldIcon, "icon"},
}

func missingFields(seen uint8) []string {
	var missing []string
	for _, f := range requiredFieldNames {
		if seen&f.bit == 0 {
			missing = append(missing, f.name)
		}
	}
	return missing
}
