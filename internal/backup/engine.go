// Package backup implements the archive engine: creating timestamped
// backups of save data, restoring them, enumerating them and enforcing
// the retention limit.
package backup

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rogame/backend/internal/apperr"
	"github.com/rogame/backend/internal/saveconfig"
	"github.com/rogame/backend/internal/security"
	"github.com/rogame/backend/pkg/logger"
)

// ArchivePrefix starts every archive name; the rest is the creation
// timestamp in archiveTimeLayout.
const ArchivePrefix = "backup_"

const archiveTimeLayout = "20060102_150405"

// Archive describes one stored backup. Directory archives hold a copied
// tree; file archives are a single copied save file.
type Archive struct {
	Name      string
	Path      string
	IsDir     bool
	SizeBytes uint64
	CreatedAt time.Time
}

// Engine stores archives under root/<game_id>/<archive_name>.
type Engine struct {
	root string
}

func NewEngine(root string) *Engine {
	return &Engine{root: root}
}

// GameBackupDir returns the directory holding a game's archives.
func (e *Engine) GameBackupDir(gameID string) string {
	return filepath.Join(e.root, gameID)
}

// Backup archives the save data at source into a new timestamped archive
// for gameID. When source is a directory, patterns decide what is copied:
// the whole-directory pattern copies the full tree, otherwise every file
// matching any pattern is copied with its relative path preserved. When
// source is a single file it is copied as a file archive. Returns
// apperr.KindNotFound when nothing was copied.
func (e *Engine) Backup(gameID, source string, patterns []string) (*Archive, error) {
	// A wildcard in the save location itself takes priority over the
	// pattern-based selection below.
	hasGlob := strings.Contains(source, "*")

	info, err := os.Stat(source)
	if err != nil && !hasGlob {
		return nil, apperr.Wrap(apperr.KindNotFound, err, "save location does not exist: %s", source)
	}

	// Archive names have second precision; a second backup within the
	// same second gets the next free timestamp instead of merging into
	// the existing archive.
	now := time.Now()
	name := ArchivePrefix + now.Format(archiveTimeLayout)
	dest := filepath.Join(e.GameBackupDir(gameID), name)
	for {
		if _, statErr := os.Lstat(dest); os.IsNotExist(statErr) {
			break
		}
		now = now.Add(time.Second)
		name = ArchivePrefix + now.Format(archiveTimeLayout)
		dest = filepath.Join(e.GameBackupDir(gameID), name)
	}

	if err := os.MkdirAll(e.GameBackupDir(gameID), 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindIo, err, "failed to create backup directory for %s", gameID)
	}

	var (
		size  uint64
		isDir bool
	)
	switch {
	case hasGlob:
		isDir = true
		var copied int
		copied, size, err = e.copyGlobSource(source, dest)
		if err != nil {
			os.RemoveAll(dest)
			return nil, err
		}
		if copied == 0 {
			os.RemoveAll(dest)
			return nil, apperr.New(apperr.KindNotFound, "no save data matched %s", source)
		}

	case !info.IsDir():
		size, err = copyFile(source, dest)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindBackupError, err, "failed to back up %s", source)
		}

	case saveconfig.HasWholeDirPattern(patterns):
		isDir = true
		size, err = copyDirMerge(source, dest)
		if err != nil {
			os.RemoveAll(dest)
			return nil, apperr.Wrap(apperr.KindBackupError, err, "failed to back up directory %s", source)
		}

	default:
		isDir = true
		var copied int
		copied, size, err = e.copyMatches(source, dest, patterns)
		if err != nil {
			os.RemoveAll(dest)
			return nil, err
		}
		if copied == 0 {
			os.RemoveAll(dest)
			return nil, apperr.New(apperr.KindNotFound, "no save files matched in %s", source)
		}
	}

	logger.Info("Backup created", map[string]interface{}{
		"game_id": gameID,
		"archive": name,
		"bytes":   size,
	})

	return &Archive{Name: name, Path: dest, IsDir: isDir, SizeBytes: size, CreatedAt: now}, nil
}

// copyGlobSource expands a wildcard save location and copies every
// matched entry into dest: directories recursively, files by base name.
func (e *Engine) copyGlobSource(source, dest string) (int, uint64, error) {
	matches, err := doublestar.FilepathGlob(source)
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.KindInvalidInput, err, "bad save location %q", source)
	}

	var (
		copied int
		size   uint64
	)
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		target := filepath.Join(dest, filepath.Base(match))
		var n uint64
		if info.IsDir() {
			n, err = copyDirMerge(match, target)
		} else {
			n, err = copyFile(match, target)
		}
		if err != nil {
			return 0, 0, apperr.Wrap(apperr.KindBackupError, err, "failed to copy %s", match)
		}
		copied++
		size += n
	}
	return copied, size, nil
}

// copyMatches copies every file matching any pattern under source into
// dest, preserving paths relative to source.
func (e *Engine) copyMatches(source, dest string, patterns []string) (int, uint64, error) {
	var (
		copied int
		size   uint64
	)
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(source, strings.TrimSpace(pattern)))
		if err != nil {
			return 0, 0, apperr.Wrap(apperr.KindInvalidInput, err, "bad save pattern %q", pattern)
		}
		for _, match := range matches {
			// Overlapping patterns must not copy or count a file twice.
			if seen[match] {
				continue
			}
			seen[match] = true
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(source, match)
			if err != nil {
				rel = filepath.Base(match)
			}
			n, err := copyFile(match, filepath.Join(dest, rel))
			if err != nil {
				return 0, 0, apperr.Wrap(apperr.KindBackupError, err, "failed to copy %s", match)
			}
			copied++
			size += n
		}
	}
	return copied, size, nil
}

// List enumerates a game's archives, newest first. A missing backup
// directory yields an empty slice, not an error.
func (e *Engine) List(gameID string) ([]Archive, error) {
	dir := e.GameBackupDir(gameID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Archive{}, nil
		}
		return nil, apperr.Wrap(apperr.KindIo, err, "failed to read backup directory for %s", gameID)
	}

	archives := make([]Archive, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), ArchivePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		var size uint64
		if entry.IsDir() {
			size = dirSize(path)
		} else {
			size = uint64(info.Size())
		}
		archives = append(archives, Archive{
			Name:      entry.Name(),
			Path:      path,
			IsDir:     entry.IsDir(),
			SizeBytes: size,
			CreatedAt: archiveTime(entry.Name(), info.ModTime()),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].CreatedAt.After(archives[j].CreatedAt)
	})
	return archives, nil
}

// EnforceRetention deletes the oldest archives until at most maxBackups
// remain. A non-positive limit disables retention.
func (e *Engine) EnforceRetention(gameID string, maxBackups int) (int, error) {
	if maxBackups <= 0 {
		return 0, nil
	}
	archives, err := e.List(gameID)
	if err != nil {
		return 0, err
	}
	if len(archives) <= maxBackups {
		return 0, nil
	}

	removed := 0
	for _, excess := range archives[maxBackups:] {
		if err := os.RemoveAll(excess.Path); err != nil {
			return removed, apperr.Wrap(apperr.KindIo, err, "failed to evict archive %s", excess.Name)
		}
		removed++
		logger.Debug("Evicted old backup", map[string]interface{}{
			"game_id": gameID,
			"archive": excess.Name,
		})
	}
	return removed, nil
}

// Restore copies an archive's contents back into target. Directory
// archives are merged: existing files are overwritten, unrelated files
// in target are left alone. The archive name is validated against path
// traversal before it touches the filesystem.
func (e *Engine) Restore(gameID, archiveName, target string) (uint64, error) {
	// A game that was never backed up has no backup directory; the
	// archive is missing, not the filesystem broken.
	if _, statErr := os.Stat(e.GameBackupDir(gameID)); os.IsNotExist(statErr) {
		return 0, apperr.Wrap(apperr.KindNotFound, statErr, "backup not found: %s", archiveName)
	}
	archivePath, err := security.SafeJoin(e.GameBackupDir(gameID), archiveName)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(archivePath)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindNotFound, err, "backup not found: %s", archiveName)
	}

	if info.IsDir() {
		size, err := copyDirMerge(archivePath, target)
		if err != nil {
			return 0, apperr.Wrap(apperr.KindBackupError, err, "failed to restore %s", archiveName)
		}
		return size, nil
	}

	// File archive: when the save location is itself a file, overwrite
	// it in place; otherwise drop the archive into the save directory
	// under its own name.
	dest := filepath.Join(target, archiveName)
	if ti, statErr := os.Stat(target); statErr == nil && !ti.IsDir() {
		dest = target
	} else if statErr != nil {
		if mkErr := os.MkdirAll(target, 0o755); mkErr != nil {
			return 0, apperr.Wrap(apperr.KindIo, mkErr, "failed to create save location %s", target)
		}
	}
	size, err := copyFile(archivePath, dest)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindBackupError, err, "failed to restore %s", archiveName)
	}
	return size, nil
}

// DeleteSave removes one archive entry (file or directory). If removing
// it leaves the archive's parent directory empty, the empty directory is
// removed as well. Live save data is never touched: this deletes from
// the backup tree only.
func (e *Engine) DeleteSave(gameID, archiveName string) error {
	if _, statErr := os.Stat(e.GameBackupDir(gameID)); os.IsNotExist(statErr) {
		return apperr.Wrap(apperr.KindNotFound, statErr, "backup not found: %s", archiveName)
	}
	path, err := security.SafeJoin(e.GameBackupDir(gameID), archiveName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return apperr.Wrap(apperr.KindNotFound, err, "backup not found: %s", archiveName)
	}
	if err := os.RemoveAll(path); err != nil {
		return apperr.Wrap(apperr.KindIo, err, "failed to delete backup %s", archiveName)
	}

	parent := filepath.Dir(path)
	if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
		os.Remove(parent)
	}
	return nil
}

// DeleteGameSaves removes the game's entire backup directory. It must
// never touch the live save location: archived copies and live save
// data are distinct deletion scopes. Per-archive failures are collected
// so one stubborn entry does not abort the rest of the cleanup.
func (e *Engine) DeleteGameSaves(gameID string) error {
	dir := e.GameBackupDir(gameID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Wrap(apperr.KindIo, err, "failed to read backup directory for %s", gameID)
	}

	var problems []string
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			problems = append(problems, entry.Name()+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return apperr.New(apperr.KindIo, "failed to delete saves for %s: %s", gameID, strings.Join(problems, "; "))
	}
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.KindIo, err, "failed to remove backup directory for %s", gameID)
	}
	return nil
}

// archiveTime extracts the creation time embedded in an archive name,
// falling back to the filesystem mtime for names it cannot parse.
func archiveTime(name string, mtime time.Time) time.Time {
	stamp := strings.TrimPrefix(name, ArchivePrefix)
	if ext := filepath.Ext(stamp); ext != "" && !strings.ContainsAny(ext[1:], "0123456789_") {
		stamp = strings.TrimSuffix(stamp, ext)
	}
	t, err := time.ParseInLocation(archiveTimeLayout, stamp, time.Local)
	if err != nil {
		return mtime
	}
	return t
}

func copyFile(src, dst string) (uint64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return 0, err
	}
	return uint64(n), out.Close()
}

// copyDirMerge copies src's tree into dst, creating directories as
// needed and overwriting files that already exist.
func copyDirMerge(src, dst string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		n, err := copyFile(path, target)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	return total, err
}

func dirSize(path string) uint64 {
	var total uint64
	filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
