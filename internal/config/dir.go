package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user configuration directory.
const appName = "mro"

// Dir returns the global mro configuration directory.
//
// Resolution:
//   - $MRO_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/mro if set (on any platform)
//   - %AppData%/mro on Windows
//   - ~/.config/mro on macOS and Linux
func Dir() string {
	if dir := os.Getenv("MRO_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
