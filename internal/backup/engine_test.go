package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogame/backend/internal/apperr"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBackupSingleFile(t *testing.T) {
	engine := NewEngine(t.TempDir())
	source := filepath.Join(t.TempDir(), "profile.sav")
	writeFile(t, source, "0123456789")

	archive, err := engine.Backup("game-1", source, nil)
	require.NoError(t, err)
	assert.False(t, archive.IsDir)
	assert.Equal(t, uint64(10), archive.SizeBytes)
	assert.FileExists(t, archive.Path)

	archives, err := engine.List("game-1")
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, archive.Name, archives[0].Name)
}

func TestBackupPatternFiltering(t *testing.T) {
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "a.sav"), "0123456789")
	writeFile(t, filepath.Join(source, "b.dat"), "01234567890123456789")

	t.Run("single pattern copies only matches", func(t *testing.T) {
		engine := NewEngine(t.TempDir())
		archive, err := engine.Backup("game-1", source, []string{"*.sav"})
		require.NoError(t, err)
		assert.True(t, archive.IsDir)
		assert.Equal(t, uint64(10), archive.SizeBytes)
		assert.FileExists(t, filepath.Join(archive.Path, "a.sav"))
		assert.NoFileExists(t, filepath.Join(archive.Path, "b.dat"))
	})

	t.Run("all patterns are copied, not just the first", func(t *testing.T) {
		engine := NewEngine(t.TempDir())
		archive, err := engine.Backup("game-1", source, []string{"*.sav", "*.dat"})
		require.NoError(t, err)
		assert.Equal(t, uint64(30), archive.SizeBytes)
		assert.FileExists(t, filepath.Join(archive.Path, "a.sav"))
		assert.FileExists(t, filepath.Join(archive.Path, "b.dat"))
	})

	t.Run("overlapping patterns copy each file once", func(t *testing.T) {
		engine := NewEngine(t.TempDir())
		archive, err := engine.Backup("game-1", source, []string{"*.sav", "a.*"})
		require.NoError(t, err)
		assert.Equal(t, uint64(10), archive.SizeBytes)
		assert.FileExists(t, filepath.Join(archive.Path, "a.sav"))
	})

	t.Run("whole directory sentinel copies everything", func(t *testing.T) {
		writeFile(t, filepath.Join(source, "nested", "slot1.bin"), "xyz")
		engine := NewEngine(t.TempDir())
		archive, err := engine.Backup("game-1", source, []string{"*"})
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(archive.Path, "a.sav"))
		assert.FileExists(t, filepath.Join(archive.Path, "b.dat"))
		assert.FileExists(t, filepath.Join(archive.Path, "nested", "slot1.bin"))
	})
}

func TestBackupSameSecondGetsDistinctArchives(t *testing.T) {
	engine := NewEngine(t.TempDir())
	source := filepath.Join(t.TempDir(), "profile.sav")
	writeFile(t, source, "0123456789")

	first, err := engine.Backup("game-1", source, nil)
	require.NoError(t, err)
	second, err := engine.Backup("game-1", source, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Name, second.Name)

	archives, err := engine.List("game-1")
	require.NoError(t, err)
	assert.Len(t, archives, 2)
}

func TestBackupWildcardSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "profile1", "slot.sav"), "12345")
	writeFile(t, filepath.Join(root, "profile2", "slot.sav"), "1234567890")
	writeFile(t, filepath.Join(root, "other", "slot.sav"), "ignored")

	engine := NewEngine(t.TempDir())
	archive, err := engine.Backup("game-1", filepath.Join(root, "profile*"), nil)
	require.NoError(t, err)
	assert.True(t, archive.IsDir)
	assert.Equal(t, uint64(15), archive.SizeBytes)
	assert.FileExists(t, filepath.Join(archive.Path, "profile1", "slot.sav"))
	assert.FileExists(t, filepath.Join(archive.Path, "profile2", "slot.sav"))
	assert.NoDirExists(t, filepath.Join(archive.Path, "other"))
}

func TestBackupWildcardSourceNoMatches(t *testing.T) {
	engine := NewEngine(t.TempDir())
	_, err := engine.Backup("game-1", filepath.Join(t.TempDir(), "profile*"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}

func TestBackupNothingMatched(t *testing.T) {
	engine := NewEngine(t.TempDir())
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "readme.txt"), "not a save")

	_, err := engine.Backup("game-1", source, []string{"*.sav"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))

	// A failed backup leaves no partial archive behind.
	archives, err := engine.List("game-1")
	require.NoError(t, err)
	assert.Empty(t, archives)
}

func TestBackupMissingSource(t *testing.T) {
	engine := NewEngine(t.TempDir())
	_, err := engine.Backup("game-1", filepath.Join(t.TempDir(), "gone"), []string{"*"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}

func TestListMissingDirIsEmpty(t *testing.T) {
	engine := NewEngine(t.TempDir())
	archives, err := engine.List("never-backed-up")
	require.NoError(t, err)
	assert.NotNil(t, archives)
	assert.Empty(t, archives)
}

// plantArchives creates directory archives with fixed timestamped names,
// oldest first.
func plantArchives(t *testing.T, engine *Engine, gameID string, names []string) {
	t.Helper()
	for _, name := range names {
		dir := filepath.Join(engine.GameBackupDir(gameID), name)
		writeFile(t, filepath.Join(dir, "save.dat"), "data")
	}
}

func TestRetention(t *testing.T) {
	engine := NewEngine(t.TempDir())
	names := []string{
		"backup_20240101_120000",
		"backup_20240102_120000",
		"backup_20240103_120000",
		"backup_20240104_120000",
		"backup_20240105_120000",
	}
	plantArchives(t, engine, "game-1", names)

	removed, err := engine.EnforceRetention("game-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	archives, err := engine.List("game-1")
	require.NoError(t, err)
	require.Len(t, archives, 3)
	// Newest three survive, newest first.
	assert.Equal(t, "backup_20240105_120000", archives[0].Name)
	assert.Equal(t, "backup_20240104_120000", archives[1].Name)
	assert.Equal(t, "backup_20240103_120000", archives[2].Name)
}

func TestRetentionUnderLimit(t *testing.T) {
	engine := NewEngine(t.TempDir())
	plantArchives(t, engine, "game-1", []string{"backup_20240101_120000"})

	removed, err := engine.EnforceRetention("game-1", 5)
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = engine.EnforceRetention("game-1", 0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRestoreMerges(t *testing.T) {
	engine := NewEngine(t.TempDir())
	archiveName := "backup_20240101_120000"
	archiveDir := filepath.Join(engine.GameBackupDir("game-1"), archiveName)
	writeFile(t, filepath.Join(archiveDir, "slot1.sav"), "archived")

	target := t.TempDir()
	writeFile(t, filepath.Join(target, "slot1.sav"), "stale")
	writeFile(t, filepath.Join(target, "slot2.sav"), "untouched")

	size, err := engine.Restore("game-1", archiveName, target)
	require.NoError(t, err)
	assert.Equal(t, uint64(len("archived")), size)

	restored, err := os.ReadFile(filepath.Join(target, "slot1.sav"))
	require.NoError(t, err)
	assert.Equal(t, "archived", string(restored))

	// Merge, not replace: files absent from the archive survive.
	survivor, err := os.ReadFile(filepath.Join(target, "slot2.sav"))
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(survivor))

	// Restore is non-destructive to the backup set.
	archives, err := engine.List("game-1")
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, archiveName, archives[0].Name)
}

func TestRestoreFileArchive(t *testing.T) {
	engine := NewEngine(t.TempDir())
	archiveName := "backup_20240101_120000"
	writeFile(t, filepath.Join(engine.GameBackupDir("game-1"), archiveName), "snapshot")

	target := t.TempDir()
	_, err := engine.Restore("game-1", archiveName, target)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(target, archiveName))
}

func TestRestoreRejectsTraversal(t *testing.T) {
	engine := NewEngine(t.TempDir())
	plantArchives(t, engine, "game-1", []string{"backup_20240101_120000"})

	_, err := engine.Restore("game-1", "../game-2", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindPathTraversal))
}

func TestRestoreWithoutBackupDir(t *testing.T) {
	engine := NewEngine(t.TempDir())
	_, err := engine.Restore("never-backed-up", "backup_20240101_120000", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}

func TestRestoreMissingArchive(t *testing.T) {
	engine := NewEngine(t.TempDir())
	plantArchives(t, engine, "game-1", []string{"backup_20240101_120000"})

	_, err := engine.Restore("game-1", "backup_20990101_120000", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}

func TestDeleteSave(t *testing.T) {
	engine := NewEngine(t.TempDir())
	plantArchives(t, engine, "game-1", []string{
		"backup_20240101_120000",
		"backup_20240102_120000",
	})

	require.NoError(t, engine.DeleteSave("game-1", "backup_20240101_120000"))

	archives, err := engine.List("game-1")
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, "backup_20240102_120000", archives[0].Name)

	// Removing the last archive also removes the now-empty game dir.
	require.NoError(t, engine.DeleteSave("game-1", "backup_20240102_120000"))
	assert.NoDirExists(t, engine.GameBackupDir("game-1"))
}

func TestDeleteSaveWithoutBackupDir(t *testing.T) {
	engine := NewEngine(t.TempDir())
	err := engine.DeleteSave("never-backed-up", "backup_20240101_120000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}

func TestDeleteSaveMissing(t *testing.T) {
	engine := NewEngine(t.TempDir())
	plantArchives(t, engine, "game-1", []string{"backup_20240101_120000"})

	err := engine.DeleteSave("game-1", "backup_20990101_120000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}

func TestDeleteGameSavesKeepsLiveData(t *testing.T) {
	engine := NewEngine(t.TempDir())
	plantArchives(t, engine, "game-1", []string{
		"backup_20240101_120000",
		"backup_20240102_120000",
	})

	liveDir := t.TempDir()
	sentinel := filepath.Join(liveDir, "slot1.sav")
	writeFile(t, sentinel, "live data")

	require.NoError(t, engine.DeleteGameSaves("game-1"))
	assert.NoDirExists(t, engine.GameBackupDir("game-1"))
	assert.FileExists(t, sentinel)

	// Deleting again is a no-op.
	require.NoError(t, engine.DeleteGameSaves("game-1"))
}

func TestArchiveTime(t *testing.T) {
	mtime := time.Date(2023, 6, 1, 10, 0, 0, 0, time.Local)

	parsed := archiveTime("backup_20240102_030405", mtime)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local), parsed)

	withExt := archiveTime("backup_20240102_030405.sav", mtime)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local), withExt)

	fallback := archiveTime("backup_garbled", mtime)
	assert.Equal(t, mtime, fallback)
}
