// Package saveconfig loads the declarative knowledge base mapping game
// titles to candidate save-data locations and file patterns. The file is
// read once per operation that needs it; it is not a live registry.
package saveconfig

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rogame/backend/internal/apperr"
)

// UIDPlaceholder marks the spot in a path template where a platform
// account id must be substituted.
const UIDPlaceholder = "{{uid}}"

// WholeDirPattern is the sentinel meaning "back up the entire directory".
const WholeDirPattern = "*"

// GameConfig describes where one game keeps its save data.
type GameConfig struct {
	// Candidate save directories; may carry a ~ prefix, an OS-specific
	// branch or a {{uid}} placeholder.
	Locations []string `json:"locations"`
	// Glob patterns selecting save files within a location, or the
	// sentinel "*" for the whole directory.
	Patterns   []string `json:"patterns"`
	CoverImage string   `json:"cover_image"`
	Category   string   `json:"category"`
	SteamID    string   `json:"steam_id,omitempty"`
}

// Config is the full title-indexed knowledge base.
type Config struct {
	Games map[string]GameConfig `json:"games"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfigError, err, "failed to read save game configuration at %q", path)
	}
	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, apperr.Wrap(apperr.KindConfigError, err, "failed to parse save game configuration at %q", path)
	}
	return &cfg, nil
}

// Lookup finds a game's entry by exact title, then by steam id.
func (c *Config) Lookup(key string) (GameConfig, bool) {
	if g, ok := c.Games[key]; ok {
		return g, true
	}
	for _, g := range c.Games {
		if g.SteamID != "" && g.SteamID == key {
			return g, true
		}
	}
	return GameConfig{}, false
}

// ExpandPlaceholders turns a path template into concrete candidates, one
// per user id when the template contains {{uid}}, otherwise exactly one.
func ExpandPlaceholders(template string, userIDs []string) []string {
	if !strings.Contains(template, UIDPlaceholder) {
		return []string{template}
	}
	expanded := make([]string, 0, len(userIDs))
	for _, uid := range userIDs {
		expanded = append(expanded, strings.ReplaceAll(template, UIDPlaceholder, uid))
	}
	return expanded
}

// HasWholeDirPattern reports whether any configured pattern is the
// whole-directory sentinel.
func HasWholeDirPattern(patterns []string) bool {
	for _, p := range patterns {
		if strings.TrimSpace(p) == WholeDirPattern {
			return true
		}
	}
	return false
}
