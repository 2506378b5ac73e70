package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rogame/backend/internal/apperr"
	"github.com/rogame/backend/internal/backup"
	"github.com/rogame/backend/internal/models"
	"github.com/rogame/backend/internal/monitoring"
	"github.com/rogame/backend/internal/repository"
	"github.com/rogame/backend/internal/saveconfig"
	"github.com/rogame/backend/internal/scanner"
	"github.com/rogame/backend/internal/security"
	"github.com/rogame/backend/pkg/logger"
)

// GameScanner composes library discovery, the save-location config and
// the repository behind the scan/import operations.
type GameScanner struct {
	repo       repository.GameRepository
	scanner    *scanner.LibraryScanner
	engine     *backup.Engine
	configPath string
}

func NewGameScanner(repo repository.GameRepository, sc *scanner.LibraryScanner, engine *backup.Engine, configPath string) *GameScanner {
	return &GameScanner{
		repo:       repo,
		scanner:    sc,
		engine:     engine,
		configPath: configPath,
	}
}

// GameDetail joins a persisted game with its save-location records.
type GameDetail struct {
	Game      models.Game                 `json:"game"`
	Locations []models.SaveLocationRecord `json:"locations"`
}

// ScanGames discovers installed games across every launcher and resolves
// save locations for the configured ones. Best-effort: a missing config
// file or unreadable launcher root reduces the result, never fails it.
func (s *GameScanner) ScanGames() map[string]models.GameInfo {
	start := time.Now()
	defer func() {
		monitoring.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	cfg, err := saveconfig.Load(s.configPath)
	if err != nil {
		logger.Warn("Save location config unavailable, scanning without save data", map[string]interface{}{
			"path":  s.configPath,
			"error": err.Error(),
		})
		cfg = &saveconfig.Config{}
	}

	discovered := s.scanner.ScanAllLibraries()
	perPlatform := make(map[models.GamePlatform]int)

	result := make(map[string]models.GameInfo, len(discovered))
	for _, game := range discovered {
		perPlatform[game.Platform]++

		info := models.GameInfo{
			ID:         uuid.NewString(),
			Title:      game.Title,
			Platform:   game.Platform,
			LastPlayed: "Never",
			Size:       "0B",
			Status:     models.SaveStatusNone,
			Category:   "Unknown",
		}
		if entry, ok := cfg.Lookup(game.Title); ok {
			info.CoverImage = entry.CoverImage
			if entry.Category != "" {
				info.Category = entry.Category
			}
		}
		if loc := s.scanner.ScanSaveLocation(game.Title, cfg); loc.Path != "" {
			info.SaveLocation = loc.Path
			info.SaveCount = loc.FileCount
			info.Size = loc.Size
			if loc.FileCount > 0 {
				info.Status = models.SaveStatusFound
			}
		}
		result[info.ID] = info
	}

	for platform, count := range perPlatform {
		monitoring.GamesFound.WithLabelValues(string(platform)).Set(float64(count))
	}
	logger.Info("Library scan finished", map[string]interface{}{
		"games":      len(result),
		"duration_s": time.Since(start).Seconds(),
	})
	return result
}

// ScanInstalledGames reports the persisted library.
func (s *GameScanner) ScanInstalledGames() (map[string]models.GameInfo, error) {
	games, err := s.repo.GetAllGames()
	if err != nil {
		return nil, err
	}
	result := make(map[string]models.GameInfo, len(games))
	for _, g := range games {
		result[g.ID] = models.GameInfo{
			ID:           g.ID,
			Title:        g.Title,
			CoverImage:   g.CoverImage,
			Platform:     g.Platform,
			LastPlayed:   g.LastPlayed,
			SaveCount:    g.SaveCount,
			Size:         g.Size,
			Status:       g.Status,
			Category:     g.Category,
			IsFavorite:   g.IsFavorite,
			SaveLocation: g.SaveLocation,
		}
	}
	return result, nil
}

// ImportGame persists a discovered game, assigning it a backup directory
// and its configured (or platform-default) save patterns.
func (s *GameScanner) ImportGame(info models.GameInfo) (*models.Game, error) {
	if info.Title == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "game title is required")
	}
	id := info.ID
	if id == "" {
		id = uuid.NewString()
	}

	game := models.NewGame(id, info.Title, info.Platform)
	game.CoverImage = info.CoverImage
	game.SaveLocation = info.SaveLocation
	game.SaveCount = info.SaveCount
	game.Status = info.Status
	if info.Size != "" {
		game.Size = info.Size
	}
	if info.Category != "" {
		game.Category = info.Category
	}
	if info.LastPlayed != "" {
		game.LastPlayed = info.LastPlayed
	}
	backupDir := s.engine.GameBackupDir(id)
	game.BackupLocation = &backupDir

	if err := s.repo.AddGame(game); err != nil {
		return nil, err
	}

	locations := s.configuredLocations(id, info)
	if err := s.repo.ReplaceSaveLocations(id, locations); err != nil {
		return nil, err
	}

	logger.Info("Game imported", map[string]interface{}{
		"game_id":  id,
		"title":    info.Title,
		"platform": string(info.Platform),
	})
	return game, nil
}

// ImportCustomGame persists a manually described game after validating
// its locations.
func (s *GameScanner) ImportCustomGame(input models.CustomGameInput) (*models.Game, error) {
	platform := models.GamePlatform(input.Platform)
	switch platform {
	case models.PlatformSteam, models.PlatformEpic, models.PlatformGOG, models.PlatformCustom:
	default:
		platform = models.PlatformCustom
	}

	var locations []models.SaveLocationRecord
	pattern := strings.Join(input.Patterns, ";")
	for _, loc := range input.Locations {
		expanded, err := security.SafeExpandTilde(loc)
		if err != nil {
			return nil, err
		}
		locations = append(locations, models.SaveLocationRecord{Path: expanded, Pattern: pattern})
	}

	id := uuid.NewString()
	game := models.NewGame(id, input.Title, platform)
	game.CoverImage = input.CoverImage
	if input.Category != "" {
		game.Category = input.Category
	}
	if input.SaveLocation != "" {
		expanded, err := security.SafeExpandTilde(input.SaveLocation)
		if err != nil {
			return nil, err
		}
		game.SaveLocation = expanded
	} else if len(locations) > 0 {
		game.SaveLocation = locations[0].Path
	}
	backupDir := s.engine.GameBackupDir(id)
	game.BackupLocation = &backupDir

	if err := s.repo.AddGame(game); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceSaveLocations(id, locations); err != nil {
		return nil, err
	}
	return game, nil
}

// GetGameDetail loads one game with its save-location records.
func (s *GameScanner) GetGameDetail(id string) (*GameDetail, error) {
	game, err := s.repo.GetGame(id)
	if err != nil {
		return nil, err
	}
	locations, err := s.repo.GetSaveLocations(id)
	if err != nil {
		return nil, err
	}
	return &GameDetail{Game: *game, Locations: locations}, nil
}

// DeleteGame removes a game's backup directory, its save-location rows
// and its record. Live save data stays on disk.
func (s *GameScanner) DeleteGame(id string) error {
	if _, err := s.repo.GetGame(id); err != nil {
		return err
	}
	if err := s.engine.DeleteGameSaves(id); err != nil {
		logger.Warn("Failed to remove backup directory during game deletion", map[string]interface{}{
			"game_id": id,
			"error":   err.Error(),
		})
	}
	return s.repo.DeleteGame(id)
}

func (s *GameScanner) ToggleFavorite(id string) (*models.Game, error) {
	return s.repo.ToggleFavorite(id)
}

// UpdateSaveLocation corrects the resolved save path for a game.
func (s *GameScanner) UpdateSaveLocation(id, location string) error {
	expanded, err := security.SafeExpandTilde(location)
	if err != nil {
		return err
	}
	return s.repo.UpdateSaveLocation(id, expanded)
}

// configuredLocations builds the save-location rows for a freshly
// imported game from the config file, falling back to the scanned path
// with platform-default patterns.
func (s *GameScanner) configuredLocations(gameID string, info models.GameInfo) []models.SaveLocationRecord {
	if cfg, err := saveconfig.Load(s.configPath); err == nil {
		if entry, ok := cfg.Lookup(info.Title); ok && len(entry.Locations) > 0 {
			pattern := strings.Join(entry.Patterns, ";")
			if pattern == "" {
				pattern = saveconfig.WholeDirPattern
			}
			records := make([]models.SaveLocationRecord, 0, len(entry.Locations))
			for _, loc := range entry.Locations {
				records = append(records, models.SaveLocationRecord{GameID: gameID, Path: loc, Pattern: pattern})
			}
			return records
		}
	}

	if info.SaveLocation == "" {
		return nil
	}
	return []models.SaveLocationRecord{{
		GameID:  gameID,
		Path:    info.SaveLocation,
		Pattern: defaultPatterns(info.Platform),
	}}
}

// defaultPatterns are the save-file globs assumed for a platform when
// the config has no entry for the game.
func defaultPatterns(platform models.GamePlatform) string {
	if platform == models.PlatformEpic {
		return "*.sav;*.dat;*.save;*.json"
	}
	return "*.sav;*.dat;*.save"
}
