package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rogame/backend/internal/apperr"
	"github.com/rogame/backend/internal/models"
)

// GameRepository is the persistence boundary the orchestration layer
// works against. Implementations store games and their save locations.
type GameRepository interface {
	AddGame(game *models.Game) error
	GetGame(id string) (*models.Game, error)
	GetAllGames() ([]models.Game, error)
	UpdateGame(game *models.Game) error
	DeleteGame(id string) error
	ToggleFavorite(id string) (*models.Game, error)
	UpdateLastPlayed(id string, playedAt time.Time) error
	UpdateBackupTime(id string, backupTime int64) error
	UpdateBackupLocation(id string, location string) error
	UpdateSaveLocation(id string, location string) error
	GetSaveLocations(gameID string) ([]models.SaveLocationRecord, error)
	ReplaceSaveLocations(gameID string, locations []models.SaveLocationRecord) error
}

type GormGameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GormGameRepository {
	return &GormGameRepository{db: db}
}

func (r *GormGameRepository) AddGame(game *models.Game) error {
	if err := r.db.Create(game).Error; err != nil {
		return apperr.Wrap(apperr.KindDatabase, err, "failed to add game %s", game.ID)
	}
	return nil
}

func (r *GormGameRepository) GetGame(id string) (*models.Game, error) {
	var game models.Game
	err := r.db.Where("id = ?", id).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "game not found: %s", id)
		}
		return nil, apperr.Wrap(apperr.KindDatabase, err, "failed to load game %s", id)
	}
	return &game, nil
}

func (r *GormGameRepository) GetAllGames() ([]models.Game, error) {
	var games []models.Game
	err := r.db.Order("title ASC").Find(&games).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDatabase, err, "failed to list games")
	}
	return games, nil
}

func (r *GormGameRepository) UpdateGame(game *models.Game) error {
	if err := r.db.Save(game).Error; err != nil {
		return apperr.Wrap(apperr.KindDatabase, err, "failed to update game %s", game.ID)
	}
	return nil
}

func (r *GormGameRepository) DeleteGame(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("game_id = ?", id).Delete(&models.SaveLocationRecord{}).Error; err != nil {
			return apperr.Wrap(apperr.KindDatabase, err, "failed to delete save locations for %s", id)
		}
		result := tx.Unscoped().Where("id = ?", id).Delete(&models.Game{})
		if result.Error != nil {
			return apperr.Wrap(apperr.KindDatabase, result.Error, "failed to delete game %s", id)
		}
		if result.RowsAffected == 0 {
			return apperr.New(apperr.KindNotFound, "game not found: %s", id)
		}
		return nil
	})
}

func (r *GormGameRepository) ToggleFavorite(id string) (*models.Game, error) {
	game, err := r.GetGame(id)
	if err != nil {
		return nil, err
	}
	game.IsFavorite = !game.IsFavorite
	if err := r.db.Model(game).Update("is_favorite", game.IsFavorite).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindDatabase, err, "failed to toggle favorite for %s", id)
	}
	return game, nil
}

func (r *GormGameRepository) UpdateLastPlayed(id string, playedAt time.Time) error {
	return r.updateColumn(id, "last_played", playedAt.Format(time.RFC3339))
}

func (r *GormGameRepository) UpdateBackupTime(id string, backupTime int64) error {
	return r.updateColumn(id, "last_backup_time", backupTime)
}

func (r *GormGameRepository) UpdateBackupLocation(id string, location string) error {
	return r.updateColumn(id, "backup_location", location)
}

func (r *GormGameRepository) UpdateSaveLocation(id string, location string) error {
	return r.updateColumn(id, "save_location", location)
}

func (r *GormGameRepository) updateColumn(id, column string, value interface{}) error {
	result := r.db.Model(&models.Game{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return apperr.Wrap(apperr.KindDatabase, result.Error, "failed to update %s for game %s", column, id)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "game not found: %s", id)
	}
	return nil
}

func (r *GormGameRepository) GetSaveLocations(gameID string) ([]models.SaveLocationRecord, error) {
	var locations []models.SaveLocationRecord
	err := r.db.Where("game_id = ?", gameID).Find(&locations).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDatabase, err, "failed to load save locations for %s", gameID)
	}
	return locations, nil
}

// ReplaceSaveLocations swaps the full location set for a game in one
// transaction so readers never observe a partial update.
func (r *GormGameRepository) ReplaceSaveLocations(gameID string, locations []models.SaveLocationRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("game_id = ?", gameID).Delete(&models.SaveLocationRecord{}).Error; err != nil {
			return apperr.Wrap(apperr.KindDatabase, err, "failed to clear save locations for %s", gameID)
		}
		for i := range locations {
			locations[i].ID = 0
			locations[i].GameID = gameID
		}
		if len(locations) == 0 {
			return nil
		}
		if err := tx.Create(&locations).Error; err != nil {
			return apperr.Wrap(apperr.KindDatabase, err, "failed to store save locations for %s", gameID)
		}
		return nil
	})
}
