package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogame/backend/internal/saveconfig"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size uint64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1023, "1023B"},
		{1024, "1.0KB"},
		{1536, "1.5KB"},
		{1024 * 1024, "1.0MB"},
		{5*1024*1024 + 256*1024, "5.3MB"},
		{1024 * 1024 * 1024, "1.0GB"},
		{3 * 1024 * 1024 * 1024, "3.0GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.size), "size %d", tt.size)
	}
}

func TestDirectorySize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("12345"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), []byte("1234567890"), 0o644))

	assert.Equal(t, uint64(15), DirectorySize(dir))
	assert.Zero(t, DirectorySize(filepath.Join(dir, "missing")))
}

// saveDirFor returns a save directory whose path satisfies the location
// heuristic on every OS.
func saveDirFor(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".local", "Documents", "Library", "saves")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func TestScanSaveLocation(t *testing.T) {
	s := NewLibraryScanner()
	dir := saveDirFor(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slot1.sav"), []byte("0123456789"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slot2.sav"), []byte("01234"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignore me"), 0o644))

	cfg := &saveconfig.Config{Games: map[string]saveconfig.GameConfig{
		"Test Game": {
			Locations: []string{dir},
			Patterns:  []string{"*.sav"},
		},
	}}

	result := s.ScanSaveLocation("Test Game", cfg)
	assert.Equal(t, dir, result.Path)
	assert.Equal(t, 2, result.FileCount)
	assert.Equal(t, "15B", result.Size)
}

func TestScanSaveLocationUnknownGame(t *testing.T) {
	s := NewLibraryScanner()
	result := s.ScanSaveLocation("No Such Game", &saveconfig.Config{})
	assert.Empty(t, result.Path)
	assert.Zero(t, result.FileCount)
	assert.Equal(t, "0B", result.Size)
}

func TestScanSaveLocationMissingDir(t *testing.T) {
	s := NewLibraryScanner()
	cfg := &saveconfig.Config{Games: map[string]saveconfig.GameConfig{
		"Test Game": {
			Locations: []string{filepath.Join(t.TempDir(), ".local", "Documents", "gone")},
			Patterns:  []string{"*.sav"},
		},
	}}
	result := s.ScanSaveLocation("Test Game", cfg)
	assert.Empty(t, result.Path)
	assert.Zero(t, result.FileCount)
}

func TestScanSaveLocationWildcardSegment(t *testing.T) {
	s := NewLibraryScanner()
	root := saveDirFor(t)
	for _, profile := range []string{"profile1", "profile2"} {
		dir := filepath.Join(root, profile)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "game.sav"), []byte("12345678"), 0o644))
	}

	cfg := &saveconfig.Config{Games: map[string]saveconfig.GameConfig{
		"Test Game": {
			Locations: []string{filepath.Join(root, "profile*")},
			Patterns:  []string{"*.sav"},
		},
	}}

	result := s.ScanSaveLocation("Test Game", cfg)
	assert.NotEmpty(t, result.Path)
	assert.Equal(t, 2, result.FileCount)
	assert.Equal(t, "16B", result.Size)
}
