package service

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rogame/backend/internal/platform"
	"github.com/rogame/backend/internal/repository"
	"github.com/rogame/backend/pkg/logger"
)

// AutoBackupWorker periodically backs up imported games. Save locations
// are watched via fsnotify so only games whose files actually changed
// since the last cycle are backed up; games whose locations cannot be
// watched fall back to being backed up every cycle.
type AutoBackupWorker struct {
	saves *SaveManager
	repo  repository.GameRepository

	stateMu  sync.Mutex // guards running, interval, watcher, ctx/cancel
	running  bool
	interval time.Duration
	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc

	runMutex sync.Mutex // prevents concurrent backup cycles

	dirtyMu sync.Mutex
	dirty   map[string]bool // game ids with observed file changes
	watched map[string]string
}

func NewAutoBackupWorker(saves *SaveManager, repo repository.GameRepository) *AutoBackupWorker {
	return &AutoBackupWorker{
		saves:   saves,
		repo:    repo,
		dirty:   make(map[string]bool),
		watched: make(map[string]string),
	}
}

// Start begins the worker. A disabled auto_backup setting makes this a
// no-op.
func (w *AutoBackupWorker) Start() {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	if w.running {
		logger.Warn("AUTO-BACKUP: Worker already running", nil)
		return
	}

	settings, err := w.saves.LoadBackupSettings()
	if err != nil {
		logger.Warn("AUTO-BACKUP: Using default settings", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if !settings.AutoBackup {
		logger.Info("AUTO-BACKUP: Disabled by settings", nil)
		return
	}

	w.interval = ParseBackupInterval(settings.BackupInterval)
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.running = true

	w.watcher = nil
	if watcher, err := fsnotify.NewWatcher(); err != nil {
		logger.Warn("AUTO-BACKUP: File watching unavailable, backing up every cycle", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		w.watcher = watcher
		w.refreshWatches(watcher)
		go w.consumeEvents(w.ctx, watcher)
	}

	logger.Info("AUTO-BACKUP: Starting worker", map[string]interface{}{
		"interval": w.interval.String(),
	})

	go func(ctx context.Context, interval time.Duration) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.runBackups()
			case <-ctx.Done():
				logger.Info("AUTO-BACKUP: Worker stopped", nil)
				return
			}
		}
	}(w.ctx, w.interval)
}

// Stop halts the worker and forgets its watch state so a later Start
// registers every save location afresh.
func (w *AutoBackupWorker) Stop() {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()

	if !w.running {
		return
	}
	logger.Info("AUTO-BACKUP: Stopping worker", nil)
	w.cancel()
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
	w.running = false

	w.dirtyMu.Lock()
	w.watched = make(map[string]string)
	w.dirty = make(map[string]bool)
	w.dirtyMu.Unlock()
}

// refreshWatches registers every imported game's save location with the
// watcher. Safe to call repeatedly; already-watched paths are skipped.
func (w *AutoBackupWorker) refreshWatches(watcher *fsnotify.Watcher) {
	games, err := w.repo.GetAllGames()
	if err != nil {
		logger.Warn("AUTO-BACKUP: Failed to list games for watching", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.dirtyMu.Lock()
	defer w.dirtyMu.Unlock()
	for _, game := range games {
		if !game.Imported() || game.SaveLocation == "" {
			continue
		}
		path := platform.ExpandTilde(game.SaveLocation)
		if _, ok := w.watched[path]; ok {
			continue
		}
		if err := watcher.Add(path); err != nil {
			logger.Debug("AUTO-BACKUP: Cannot watch save location", map[string]interface{}{
				"game_id": game.ID,
				"path":    path,
				"error":   err.Error(),
			})
			continue
		}
		w.watched[path] = game.ID
	}
}

// consumeEvents marks games dirty as their save files change.
func (w *AutoBackupWorker) consumeEvents(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.markDirty(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Debug("AUTO-BACKUP: Watcher error", map[string]interface{}{
				"error": err.Error(),
			})
		case <-ctx.Done():
			return
		}
	}
}

func (w *AutoBackupWorker) markDirty(changedPath string) {
	w.dirtyMu.Lock()
	defer w.dirtyMu.Unlock()
	for path, gameID := range w.watched {
		if changedPath == path || hasPathPrefix(changedPath, path) {
			w.dirty[gameID] = true
		}
	}
}

// runBackups performs one backup cycle.
func (w *AutoBackupWorker) runBackups() {
	if !w.runMutex.TryLock() {
		logger.Warn("AUTO-BACKUP: Previous cycle still running, skipping", nil)
		return
	}
	defer w.runMutex.Unlock()

	games, err := w.repo.GetAllGames()
	if err != nil {
		logger.Error("AUTO-BACKUP: Failed to list games", err, nil)
		return
	}

	w.stateMu.Lock()
	watcher := w.watcher
	w.stateMu.Unlock()
	if watcher != nil {
		w.refreshWatches(watcher)
	}

	w.dirtyMu.Lock()
	dirty := w.dirty
	w.dirty = make(map[string]bool)
	w.dirtyMu.Unlock()

	startTime := time.Now()
	var backedUp, failed int
	for _, game := range games {
		if !game.Imported() {
			continue
		}
		// With a live watcher only changed games get a new archive.
		if watcher != nil && !dirty[game.ID] {
			continue
		}
		if _, err := w.saves.BackupSave(game.ID, "auto"); err != nil {
			failed++
			logger.Warn("AUTO-BACKUP: Backup failed", map[string]interface{}{
				"game_id": game.ID,
				"title":   game.Title,
				"error":   err.Error(),
			})
			continue
		}
		backedUp++
	}

	if backedUp > 0 || failed > 0 {
		logger.Info("AUTO-BACKUP: Cycle completed", map[string]interface{}{
			"backed_up":  backedUp,
			"failed":     failed,
			"duration_s": time.Since(startTime).Seconds(),
		})
	}
}

// GetStats returns statistics about the worker.
func (w *AutoBackupWorker) GetStats() map[string]interface{} {
	w.stateMu.Lock()
	running := w.running
	interval := w.interval
	w.stateMu.Unlock()

	w.dirtyMu.Lock()
	watched := len(w.watched)
	pending := len(w.dirty)
	w.dirtyMu.Unlock()

	return map[string]interface{}{
		"running":  running,
		"interval": interval.String(),
		"watched":  watched,
		"pending":  pending,
	}
}

// hasPathPrefix reports whether child is inside dir.
func hasPathPrefix(child, dir string) bool {
	if len(child) <= len(dir) {
		return false
	}
	return child[:len(dir)] == dir && (child[len(dir)] == '/' || child[len(dir)] == '\\')
}
