package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rogame/backend/internal/middleware"
	"github.com/rogame/backend/internal/models"
	"github.com/rogame/backend/internal/service"
)

type GameHandler struct {
	scannerService *service.GameScanner
}

func NewGameHandler(scannerService *service.GameScanner) *GameHandler {
	return &GameHandler{
		scannerService: scannerService,
	}
}

// ScanGames handles POST /api/scan
func (h *GameHandler) ScanGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.scannerService.ScanGames())
}

// ListGames handles GET /api/games
func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.scannerService.ScanInstalledGames()
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, games)
}

// ImportGame handles POST /api/games
func (h *GameHandler) ImportGame(c *gin.Context) {
	var info models.GameInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.scannerService.ImportGame(info)
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, game)
}

// ImportCustomGame handles POST /api/games/custom
func (h *GameHandler) ImportCustomGame(c *gin.Context) {
	var input models.CustomGameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.scannerService.ImportCustomGame(input)
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, game)
}

// GetGame handles GET /api/games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	detail, err := h.scannerService.GetGameDetail(c.Param("id"))
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteGame handles DELETE /api/games/:id
func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.scannerService.DeleteGame(c.Param("id")); err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game deleted"})
}

// ToggleFavorite handles POST /api/games/:id/favorite
func (h *GameHandler) ToggleFavorite(c *gin.Context) {
	game, err := h.scannerService.ToggleFavorite(c.Param("id"))
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game)
}

// UpdateSaveLocation handles PUT /api/games/:id/save-location
func (h *GameHandler) UpdateSaveLocation(c *gin.Context) {
	var req struct {
		SaveLocation string `json:"save_location" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.scannerService.UpdateSaveLocation(c.Param("id"), req.SaveLocation); err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "save location updated"})
}
