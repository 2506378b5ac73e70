package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rogame/backend/internal/apperr"
	"github.com/rogame/backend/internal/backup"
	"github.com/rogame/backend/internal/models"
	"github.com/rogame/backend/internal/monitoring"
	"github.com/rogame/backend/internal/platform"
	"github.com/rogame/backend/internal/repository"
	"github.com/rogame/backend/internal/saveconfig"
	"github.com/rogame/backend/internal/scanner"
	"github.com/rogame/backend/pkg/logger"
)

// SettingsFileName is the backup settings file inside the config dir.
const SettingsFileName = "backup_settings.json"

// SaveManager orchestrates backup, restore and archive management for
// imported games.
type SaveManager struct {
	repo         repository.GameRepository
	engine       *backup.Engine
	settingsPath string
}

func NewSaveManager(repo repository.GameRepository, engine *backup.Engine, settingsPath string) *SaveManager {
	return &SaveManager{
		repo:         repo,
		engine:       engine,
		settingsPath: settingsPath,
	}
}

// BackupSave snapshots a game's save data into a new archive, enforces
// retention and persists the backup timestamp. The trigger label ends up
// on the metrics only ("manual" or "auto").
func (s *SaveManager) BackupSave(gameID, trigger string) (*models.BackupResponse, error) {
	game, err := s.repo.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if !game.Imported() {
		monitoring.BackupsFailed.WithLabelValues(gameID, trigger).Inc()
		return nil, apperr.New(apperr.KindBackupError, "no backup location configured for %s; import the game first", game.Title)
	}

	source := platform.ExpandTilde(game.SaveLocation)
	if source == "" {
		monitoring.BackupsFailed.WithLabelValues(gameID, trigger).Inc()
		return nil, apperr.New(apperr.KindBackupError, "no save location known for %s", game.Title)
	}

	settings, err := s.LoadBackupSettings()
	if err != nil {
		logger.Warn("Falling back to default backup settings", map[string]interface{}{
			"error": err.Error(),
		})
		settings = models.DefaultBackupSettings()
	}

	archive, err := s.engine.Backup(gameID, source, s.patternsFor(gameID))
	if err != nil {
		monitoring.BackupsFailed.WithLabelValues(gameID, trigger).Inc()
		return nil, err
	}
	monitoring.BackupsTotal.WithLabelValues(gameID, trigger).Inc()
	monitoring.BackupBytes.WithLabelValues(gameID).Add(float64(archive.SizeBytes))

	// Eviction only ever runs after the new archive has landed.
	evicted, err := s.engine.EnforceRetention(gameID, settings.MaxBackups)
	if err != nil {
		logger.Warn("Retention pass failed", map[string]interface{}{
			"game_id": gameID,
			"error":   err.Error(),
		})
	}
	monitoring.BackupsEvicted.Add(float64(evicted))

	remaining, err := s.engine.List(gameID)
	if err != nil {
		return nil, err
	}
	if err := s.updateSaveSummary(game, remaining); err != nil {
		logger.Warn("Failed to update save summary", map[string]interface{}{
			"game_id": gameID,
			"error":   err.Error(),
		})
	}

	backupTime := time.Now().UnixMilli()
	if err := s.repo.UpdateBackupTime(gameID, backupTime); err != nil {
		return nil, err
	}

	saveFile := models.NewSaveFile(gameID, archive.Name, archive.SizeBytes, archive.Path, source)
	return &models.BackupResponse{
		SaveFile:   saveFile,
		BackupTime: backupTime,
		SaveCount:  len(remaining),
	}, nil
}

// RestoreSave merges an archive back into the game's save location and
// refreshes last_played.
func (s *SaveManager) RestoreSave(gameID, saveID string) (*models.SaveFile, error) {
	game, err := s.repo.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if !game.Imported() {
		monitoring.RestoresFailed.WithLabelValues(gameID).Inc()
		return nil, apperr.New(apperr.KindBackupError, "no backup location configured for %s", game.Title)
	}
	target := platform.ExpandTilde(game.SaveLocation)
	if target == "" {
		monitoring.RestoresFailed.WithLabelValues(gameID).Inc()
		return nil, apperr.New(apperr.KindBackupError, "no save location known for %s", game.Title)
	}

	size, err := s.engine.Restore(gameID, saveID, target)
	if err != nil {
		monitoring.RestoresFailed.WithLabelValues(gameID).Inc()
		return nil, err
	}
	monitoring.RestoresTotal.WithLabelValues(gameID).Inc()

	if err := s.repo.UpdateLastPlayed(gameID, time.Now()); err != nil {
		logger.Warn("Failed to update last played", map[string]interface{}{
			"game_id": gameID,
			"error":   err.Error(),
		})
	}

	saveFile := models.NewSaveFile(gameID, saveID, size, s.engine.GameBackupDir(gameID), target)
	return &saveFile, nil
}

// ListSaves enumerates a game's archives, newest first.
func (s *SaveManager) ListSaves(gameID string) ([]models.SaveFile, error) {
	game, err := s.repo.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	archives, err := s.engine.List(gameID)
	if err != nil {
		return nil, err
	}

	saves := make([]models.SaveFile, 0, len(archives))
	for _, a := range archives {
		sf := models.NewSaveFile(gameID, a.Name, a.SizeBytes, a.Path, game.SaveLocation)
		sf.CreatedAt = a.CreatedAt.Format(time.RFC3339)
		sf.ModifiedAt = sf.CreatedAt
		saves = append(saves, sf)
	}
	return saves, nil
}

// DeleteSaveFile removes a single archive entry.
func (s *SaveManager) DeleteSaveFile(gameID, saveID string) error {
	if _, err := s.repo.GetGame(gameID); err != nil {
		return err
	}
	if err := s.engine.DeleteSave(gameID, saveID); err != nil {
		return err
	}
	archives, err := s.engine.List(gameID)
	if err != nil {
		return nil
	}
	game, err := s.repo.GetGame(gameID)
	if err != nil {
		return nil
	}
	return s.updateSaveSummary(game, archives)
}

// DeleteGameSaves removes every archive for a game. Live save data at
// the game's save location is deliberately left untouched.
func (s *SaveManager) DeleteGameSaves(gameID string) error {
	if _, err := s.repo.GetGame(gameID); err != nil {
		return err
	}
	return s.engine.DeleteGameSaves(gameID)
}

// updateSaveSummary writes the archive count/size/status snapshot back
// onto the game record.
func (s *SaveManager) updateSaveSummary(game *models.Game, archives []backup.Archive) error {
	var total uint64
	for _, a := range archives {
		total += a.SizeBytes
	}
	game.SaveCount = len(archives)
	game.Size = scanner.FormatSize(total)
	if len(archives) > 0 {
		game.Status = models.SaveStatusFound
	} else {
		game.Status = models.SaveStatusNone
	}
	return s.repo.UpdateGame(game)
}

// patternsFor collects the glob patterns stored for a game; a game with
// no stored patterns gets the whole-directory snapshot.
func (s *SaveManager) patternsFor(gameID string) []string {
	records, err := s.repo.GetSaveLocations(gameID)
	if err != nil {
		logger.Warn("Failed to load save locations", map[string]interface{}{
			"game_id": gameID,
			"error":   err.Error(),
		})
		return []string{saveconfig.WholeDirPattern}
	}

	var patterns []string
	for _, rec := range records {
		for _, p := range strings.Split(rec.Pattern, ";") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
	}
	if len(patterns) == 0 {
		return []string{saveconfig.WholeDirPattern}
	}
	return patterns
}

// LoadBackupSettings reads the settings file, returning the documented
// defaults when the file does not exist yet.
func (s *SaveManager) LoadBackupSettings() (models.BackupSettings, error) {
	content, err := os.ReadFile(s.settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultBackupSettings(), nil
		}
		return models.DefaultBackupSettings(), apperr.Wrap(apperr.KindIo, err, "failed to read backup settings")
	}

	var settings models.BackupSettings
	if err := json.Unmarshal(content, &settings); err != nil {
		return models.DefaultBackupSettings(), apperr.Wrap(apperr.KindSerialization, err, "malformed backup settings file")
	}
	return settings, nil
}

// SaveBackupSettings persists the settings as pretty-printed JSON.
func (s *SaveManager) SaveBackupSettings(settings models.BackupSettings) error {
	if settings.MaxBackups < 1 {
		return apperr.New(apperr.KindInvalidInput, "max_backups must be at least 1")
	}
	if err := os.MkdirAll(filepath.Dir(s.settingsPath), 0o755); err != nil {
		return apperr.Wrap(apperr.KindIo, err, "failed to create config directory")
	}
	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.KindSerialization, err, "failed to encode backup settings")
	}
	if err := os.WriteFile(s.settingsPath, content, 0o644); err != nil {
		return apperr.Wrap(apperr.KindIo, err, "failed to write backup settings")
	}
	return nil
}

// ParseBackupInterval turns the symbolic interval ("30min", "1h",
// "daily") into a duration, defaulting to 30 minutes for anything it
// does not recognize.
func ParseBackupInterval(interval string) time.Duration {
	const fallback = 30 * time.Minute

	interval = strings.ToLower(strings.TrimSpace(interval))
	switch interval {
	case "hourly":
		return time.Hour
	case "daily":
		return 24 * time.Hour
	}

	for _, suffix := range []struct {
		text string
		unit time.Duration
	}{
		{"min", time.Minute},
		{"m", time.Minute},
		{"h", time.Hour},
	} {
		if strings.HasSuffix(interval, suffix.text) {
			n, err := strconv.Atoi(strings.TrimSuffix(interval, suffix.text))
			if err == nil && n > 0 {
				return time.Duration(n) * suffix.unit
			}
			return fallback
		}
	}
	return fallback
}
