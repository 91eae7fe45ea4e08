//go:build windows

package steam

import (
	"golang.org/x/sys/windows/registry"
)

// steamRegistryKeys are tried in order; the Wow6432Node view holds the
// install path for the 32-bit client on 64-bit Windows.
var steamRegistryKeys = []string{
	`SOFTWARE\Wow6432Node\Valve\Steam`,
	`SOFTWARE\Valve\Steam`,
}

// getBaseDir returns the Steam base directory on Windows using the registry.
func getBaseDir() (string, error) {
	for _, path := range steamRegistryKeys {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		steamPath, _, err := key.GetStringValue("InstallPath")
		key.Close()
		if err == nil && steamPath != "" {
			return steamPath, nil
		}
	}

	// Per-user installs only record SteamPath under HKCU.
	key, err := registry.OpenKey(registry.CURRENT_USER, `SOFTWARE\Valve\Steam`, registry.QUERY_VALUE)
	if err != nil {
		return "", ErrSteamNotFound
	}
	defer key.Close()

	steamPath, _, err := key.GetStringValue("SteamPath")
	if err != nil || steamPath == "" {
		return "", ErrSteamNotFound
	}
	return steamPath, nil
}
