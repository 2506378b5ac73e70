// Package platform is the single source of truth for OS-dependent
// filesystem roots: launcher installation directories, Steam userdata
// roots and the application's own data/backup/config directories.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppNamespace is the directory name the application owns under the
// platform data and config roots.
const AppNamespace = "rogame"

// Candidate root triples are ordered {macOS, Linux, Windows}.

func SteamPaths() []string {
	return []string{
		"~/Library/Application Support/Steam/steamapps/common",
		"~/.steam/steam/steamapps/common",
		`C:\Program Files (x86)\Steam\steamapps\common`,
	}
}

func EpicPaths() []string {
	return []string{
		"~/Library/Application Support/Epic/EpicGamesLauncher/Data/Manifests",
		"~/.config/Epic/EpicGamesLauncher/Data/Manifests",
		`C:\ProgramData\Epic\EpicGamesLauncher\Data\Manifests`,
	}
}

func GOGPaths() []string {
	return []string{
		"~/Library/Application Support/GOG.com/Galaxy/Games",
		"~/.local/share/GOG Galaxy/Games",
		`C:\Program Files (x86)\GOG Galaxy\Games`,
	}
}

// SteamUserdataPaths lists every known userdata root; unlike the triples
// above it may contain more than one candidate per OS.
func SteamUserdataPaths() []string {
	return []string{
		"~/Library/Application Support/Steam/userdata",
		"~/.steam/steam/userdata",
		"~/.local/share/Steam/userdata",
		`C:\Program Files (x86)\Steam\userdata`,
	}
}

// GetPlatformPath selects the entry of a {macOS, Linux, Windows} triple
// matching the running OS. Unknown targets fall back to the first entry.
func GetPlatformPath(paths []string) string {
	switch runtime.GOOS {
	case "darwin":
		return paths[0]
	case "linux":
		return paths[1]
	case "windows":
		return paths[2]
	default:
		return paths[0]
	}
}

// ExpandTilde replaces a leading "~/" with the user's home directory.
// When no home directory can be determined the literal path is returned.
func ExpandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, path[2:])
}

// dataDirOverride redirects AppDataDir for tests and containerized runs.
var dataDirOverride string

// SetDataDir overrides the platform data root. Pass "" to restore the
// default resolution.
func SetDataDir(dir string) {
	dataDirOverride = dir
}

func dataLocalDir() string {
	if dataDirOverride != "" {
		return dataDirOverride
	}
	switch runtime.GOOS {
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "windows":
		if d := os.Getenv("LOCALAPPDATA"); d != "" {
			return d
		}
	default:
		if d := os.Getenv("XDG_DATA_HOME"); d != "" {
			return d
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share")
		}
	}
	return "."
}

func configLocalDir() string {
	if dataDirOverride != "" {
		return dataDirOverride
	}
	if d, err := os.UserConfigDir(); err == nil {
		return d
	}
	return "."
}

// AppDataDir is the application's data root. Callers create it when they
// need it to exist; these accessors never touch the filesystem.
func AppDataDir() string {
	return filepath.Join(dataLocalDir(), AppNamespace)
}

// BackupDir is where per-game archive directories live.
func BackupDir() string {
	return filepath.Join(AppDataDir(), "saves")
}

// ConfigDir holds the settings file.
func ConfigDir() string {
	return filepath.Join(configLocalDir(), AppNamespace)
}
