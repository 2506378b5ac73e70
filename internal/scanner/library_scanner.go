// Package scanner discovers installed games across launcher ecosystems
// and resolves their save-data locations. Discovery is best-effort:
// unreadable directories, broken manifests and missing roots are skipped,
// never fatal.
package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c12h/steam-stuff/sVDF"

	"github.com/rogame/backend/internal/models"
	"github.com/rogame/backend/internal/platform"
	"github.com/rogame/backend/internal/saveconfig"
	"github.com/rogame/backend/pkg/logger"
)

// DiscoveredGame is one (title, platform) pair produced by a library scan.
type DiscoveredGame struct {
	Title    string
	Platform models.GamePlatform
	// AppID is the launcher's own identifier when the manifest exposes
	// one (Steam appid); empty otherwise.
	AppID string
}

// LibraryScanner enumerates installed games per launcher ecosystem.
type LibraryScanner struct{}

func NewLibraryScanner() *LibraryScanner {
	return &LibraryScanner{}
}

// ScanAllLibraries walks every known launcher root and returns whatever
// subset of installed games could be discovered.
func (s *LibraryScanner) ScanAllLibraries() []DiscoveredGame {
	var all []DiscoveredGame
	all = append(all, s.scanSteamLibrary()...)
	all = append(all, s.scanEpicLibrary()...)
	all = append(all, s.scanGOGLibrary()...)
	return all
}

// scanSteamLibrary lists the common-apps directory of the default Steam
// root, then enriches the result with libraryfolders.vdf (extra library
// volumes) and appmanifest_*.acf files (official titles and app ids).
func (s *LibraryScanner) scanSteamLibrary() []DiscoveredGame {
	commonRoot := platform.ExpandTilde(platform.GetPlatformPath(platform.SteamPaths()))

	seen := make(map[string]bool)
	var games []DiscoveredGame

	add := func(g DiscoveredGame) {
		key := strings.ToLower(g.Title)
		if g.Title == "" || seen[key] {
			return
		}
		seen[key] = true
		games = append(games, g)
	}

	// Manifests first: they carry the official title and appid, which
	// beats the underscore-mangled install directory name.
	for _, libDir := range s.steamLibraryDirs(commonRoot) {
		for _, g := range s.scanAppManifests(libDir) {
			add(g)
		}
	}

	entries, err := os.ReadDir(commonRoot)
	if err != nil {
		return games
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		add(DiscoveredGame{
			Title:    strings.ReplaceAll(entry.Name(), "_", " "),
			Platform: models.PlatformSteam,
		})
	}
	return games
}

// steamLibraryDirs returns every steamapps directory Steam knows about:
// the default one plus any extra volume listed in libraryfolders.vdf.
func (s *LibraryScanner) steamLibraryDirs(commonRoot string) []string {
	steamapps := filepath.Dir(commonRoot)
	dirs := []string{steamapps}

	vdfPath := filepath.Join(steamapps, "libraryfolders.vdf")
	f, err := sVDF.FromFile(vdfPath)
	if err != nil || (f.TopName != "libraryfolders" && f.TopName != "LibraryFolders") {
		return dirs
	}

	for i := 0; ; i++ {
		key := fmt.Sprintf("%d", i)
		// Old-format entries map the index straight to a path; the
		// current format nests it under "path".
		p, err := f.Lookup(key)
		if err != nil {
			p, err = f.Lookup(key, "path")
		}
		if err != nil {
			if i == 0 {
				continue
			}
			break
		}
		candidate := filepath.Join(p, "steamapps")
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() && candidate != steamapps {
			dirs = append(dirs, candidate)
		}
	}
	return dirs
}

// scanAppManifests parses every appmanifest_*.acf in a steamapps dir.
func (s *LibraryScanner) scanAppManifests(steamapps string) []DiscoveredGame {
	entries, err := os.ReadDir(steamapps)
	if err != nil {
		return nil
	}

	var games []DiscoveredGame
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "appmanifest_") || !strings.HasSuffix(name, ".acf") {
			continue
		}
		mf, err := sVDF.FromFile(filepath.Join(steamapps, name))
		if err != nil {
			logger.Debug("Skipping unparseable app manifest", map[string]interface{}{
				"path": name, "error": err.Error(),
			})
			continue
		}
		if mf.TopName != "AppState" {
			continue
		}
		title, err := mf.Lookup("name")
		if err != nil || title == "" {
			continue
		}
		appID, _ := mf.Lookup("appid")
		games = append(games, DiscoveredGame{
			Title:    title,
			Platform: models.PlatformSteam,
			AppID:    appID,
		})
	}
	return games
}

// scanEpicLibrary parses the launcher's .item manifests.
func (s *LibraryScanner) scanEpicLibrary() []DiscoveredGame {
	manifestRoot := platform.ExpandTilde(platform.GetPlatformPath(platform.EpicPaths()))
	entries, err := os.ReadDir(manifestRoot)
	if err != nil {
		return nil
	}

	var games []DiscoveredGame
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".item" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(manifestRoot, entry.Name()))
		if err != nil {
			continue
		}
		var manifest struct {
			DisplayName     string `json:"DisplayName"`
			InstallLocation string `json:"InstallLocation"`
		}
		if err := json.Unmarshal(content, &manifest); err != nil {
			logger.Debug("Skipping unparseable Epic manifest", map[string]interface{}{
				"path": entry.Name(), "error": err.Error(),
			})
			continue
		}
		if manifest.DisplayName == "" {
			continue
		}
		games = append(games, DiscoveredGame{
			Title:    manifest.DisplayName,
			Platform: models.PlatformEpic,
		})
	}
	return games
}

// scanGOGLibrary lists the Galaxy games directory.
func (s *LibraryScanner) scanGOGLibrary() []DiscoveredGame {
	gogRoot := platform.ExpandTilde(platform.GetPlatformPath(platform.GOGPaths()))
	entries, err := os.ReadDir(gogRoot)
	if err != nil {
		return nil
	}

	var games []DiscoveredGame
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		games = append(games, DiscoveredGame{
			Title:    strings.ReplaceAll(entry.Name(), "_", " "),
			Platform: models.PlatformGOG,
		})
	}
	return games
}

// SteamUserIDs lists the numeric account directories under every known
// Steam userdata root. Used for {{uid}} placeholder substitution.
func (s *LibraryScanner) SteamUserIDs() []string {
	var ids []string
	for _, root := range platform.SteamUserdataPaths() {
		entries, err := os.ReadDir(platform.ExpandTilde(root))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && isNumeric(entry.Name()) {
				ids = append(ids, entry.Name())
			}
		}
	}
	return ids
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SaveLocationResult aggregates what ScanSaveLocation found.
type SaveLocationResult struct {
	Path      string
	FileCount int
	Size      string
}

// ScanSaveLocation resolves the concrete save path for a configured game
// and aggregates file count and total size across every matching file.
// Returns the zero result when the game is not configured or its save
// directory does not exist.
func (s *LibraryScanner) ScanSaveLocation(title string, cfg *saveconfig.Config) SaveLocationResult {
	game, ok := cfg.Lookup(title)
	if !ok {
		return SaveLocationResult{Size: "0B"}
	}

	location := osSpecificLocation(game.Locations)
	if location == "" {
		return SaveLocationResult{Size: "0B"}
	}

	uids := s.SteamUserIDs()
	var (
		resolvedPath string
		totalSize    uint64
		fileCount    int
	)

	for _, candidate := range saveconfig.ExpandPlaceholders(location, uids) {
		expanded := platform.ExpandTilde(candidate)

		// A wildcard segment in the location itself expands to every
		// matching concrete directory.
		roots := []string{expanded}
		if strings.Contains(expanded, "*") {
			matches, err := doublestar.FilepathGlob(expanded)
			if err != nil {
				continue
			}
			roots = matches
		}

		for _, root := range roots {
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				continue
			}
			if resolvedPath == "" {
				resolvedPath = root
			}
			for _, pattern := range game.Patterns {
				count, size := globStats(root, pattern)
				fileCount += count
				totalSize += size
			}
		}
	}

	if resolvedPath == "" {
		return SaveLocationResult{Size: "0B"}
	}
	return SaveLocationResult{
		Path:      resolvedPath,
		FileCount: fileCount,
		Size:      FormatSize(totalSize),
	}
}

// globStats counts files matching pattern under dir and sums their sizes.
func globStats(dir, pattern string) (int, uint64) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, strings.TrimSpace(pattern)))
	if err != nil {
		return 0, 0
	}
	var count int
	var size uint64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		count++
		size += uint64(info.Size())
	}
	return count, size
}

// osSpecificLocation picks the first candidate matching the running OS's
// substring heuristic, the same tie-break the desktop app uses.
func osSpecificLocation(locations []string) string {
	for _, loc := range locations {
		switch runtime.GOOS {
		case "darwin":
			if strings.Contains(loc, "Library") || strings.Contains(loc, "Documents") {
				return loc
			}
		case "linux":
			if strings.Contains(loc, ".local") || strings.Contains(loc, ".config") {
				return loc
			}
		case "windows":
			if strings.Contains(loc, "AppData") || strings.Contains(loc, "Documents") {
				return loc
			}
		}
	}
	return ""
}

// FormatSize renders a byte count with base-1024 units: one decimal place
// from KB up, integer bytes below.
func FormatSize(size uint64) string {
	const (
		kb = 1 << 10
		mb = kb << 10
		gb = mb << 10
	)
	switch {
	case size >= gb:
		return fmt.Sprintf("%.1fGB", float64(size)/float64(gb))
	case size >= mb:
		return fmt.Sprintf("%.1fMB", float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%.1fKB", float64(size)/float64(kb))
	default:
		return fmt.Sprintf("%dB", size)
	}
}

// DirectorySize sums file sizes under path recursively.
func DirectorySize(path string) uint64 {
	var total uint64
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				total += uint64(info.Size())
			}
		}
		return nil
	})
	return total
}
