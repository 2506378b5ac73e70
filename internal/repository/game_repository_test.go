package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rogame/backend/internal/apperr"
	"github.com/rogame/backend/internal/models"
)

func newTestRepo(t *testing.T) *GormGameRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Game{}, &models.SaveLocationRecord{}))
	return NewGameRepository(db)
}

func addTestGame(t *testing.T, repo *GormGameRepository, id, title string) *models.Game {
	t.Helper()
	game := models.NewGame(id, title, models.PlatformSteam)
	require.NoError(t, repo.AddGame(game))
	return game
}

func TestAddAndGetGame(t *testing.T) {
	repo := newTestRepo(t)
	addTestGame(t, repo, "game-1", "Test Game")

	got, err := repo.GetGame("game-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Game", got.Title)
	assert.Equal(t, models.PlatformSteam, got.Platform)
	assert.Equal(t, "Never", got.LastPlayed)
	assert.Nil(t, got.BackupLocation)
}

func TestGetGameNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetGame("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}

func TestGetAllGamesOrdered(t *testing.T) {
	repo := newTestRepo(t)
	addTestGame(t, repo, "game-1", "Zombie Run")
	addTestGame(t, repo, "game-2", "Asteroid Miner")

	games, err := repo.GetAllGames()
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Asteroid Miner", games[0].Title)
	assert.Equal(t, "Zombie Run", games[1].Title)
}

func TestUpdateColumns(t *testing.T) {
	repo := newTestRepo(t)
	addTestGame(t, repo, "game-1", "Test Game")

	require.NoError(t, repo.UpdateBackupTime("game-1", 1700000000000))
	require.NoError(t, repo.UpdateBackupLocation("game-1", "/backups/game-1"))
	require.NoError(t, repo.UpdateSaveLocation("game-1", "/saves/game-1"))
	playedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastPlayed("game-1", playedAt))

	got, err := repo.GetGame("game-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastBackupTime)
	assert.Equal(t, int64(1700000000000), *got.LastBackupTime)
	require.NotNil(t, got.BackupLocation)
	assert.Equal(t, "/backups/game-1", *got.BackupLocation)
	assert.Equal(t, "/saves/game-1", got.SaveLocation)
	assert.Equal(t, playedAt.Format(time.RFC3339), got.LastPlayed)
	assert.True(t, got.Imported())
}

func TestUpdateColumnsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpdateBackupTime("missing", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}

func TestToggleFavoriteFlips(t *testing.T) {
	repo := newTestRepo(t)
	addTestGame(t, repo, "game-1", "Test Game")

	game, err := repo.ToggleFavorite("game-1")
	require.NoError(t, err)
	assert.True(t, game.IsFavorite)

	game, err = repo.ToggleFavorite("game-1")
	require.NoError(t, err)
	assert.False(t, game.IsFavorite)
}

func TestReplaceSaveLocations(t *testing.T) {
	repo := newTestRepo(t)
	addTestGame(t, repo, "game-1", "Test Game")

	require.NoError(t, repo.ReplaceSaveLocations("game-1", []models.SaveLocationRecord{
		{Path: "/saves/a", Pattern: "*.sav"},
		{Path: "/saves/b", Pattern: "*"},
	}))

	locations, err := repo.GetSaveLocations("game-1")
	require.NoError(t, err)
	require.Len(t, locations, 2)
	for _, loc := range locations {
		assert.Equal(t, "game-1", loc.GameID)
	}

	// Wholesale replacement, not a merge.
	require.NoError(t, repo.ReplaceSaveLocations("game-1", []models.SaveLocationRecord{
		{Path: "/saves/c", Pattern: "*.dat"},
	}))
	locations, err = repo.GetSaveLocations("game-1")
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "/saves/c", locations[0].Path)

	require.NoError(t, repo.ReplaceSaveLocations("game-1", nil))
	locations, err = repo.GetSaveLocations("game-1")
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestDeleteGameCascadesLocations(t *testing.T) {
	repo := newTestRepo(t)
	addTestGame(t, repo, "game-1", "Test Game")
	require.NoError(t, repo.ReplaceSaveLocations("game-1", []models.SaveLocationRecord{
		{Path: "/saves/a", Pattern: "*.sav"},
	}))

	require.NoError(t, repo.DeleteGame("game-1"))

	_, err := repo.GetGame("game-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))

	locations, err := repo.GetSaveLocations("game-1")
	require.NoError(t, err)
	assert.Empty(t, locations)

	err = repo.DeleteGame("game-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.KindNotFound))
}
