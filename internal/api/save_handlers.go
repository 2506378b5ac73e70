package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rogame/backend/internal/middleware"
	"github.com/rogame/backend/internal/service"
)

type SaveHandler struct {
	saveManager *service.SaveManager
}

func NewSaveHandler(saveManager *service.SaveManager) *SaveHandler {
	return &SaveHandler{
		saveManager: saveManager,
	}
}

// CreateBackup handles POST /api/games/:id/backups
func (h *SaveHandler) CreateBackup(c *gin.Context) {
	response, err := h.saveManager.BackupSave(c.Param("id"), "manual")
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, response)
}

// ListSaves handles GET /api/games/:id/backups
func (h *SaveHandler) ListSaves(c *gin.Context) {
	saves, err := h.saveManager.ListSaves(c.Param("id"))
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saves)
}

// RestoreSave handles POST /api/games/:id/backups/:save_id/restore
func (h *SaveHandler) RestoreSave(c *gin.Context) {
	saveFile, err := h.saveManager.RestoreSave(c.Param("id"), c.Param("save_id"))
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saveFile)
}

// DeleteSave handles DELETE /api/games/:id/backups/:save_id
func (h *SaveHandler) DeleteSave(c *gin.Context) {
	if err := h.saveManager.DeleteSaveFile(c.Param("id"), c.Param("save_id")); err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backup deleted"})
}

// DeleteGameSaves handles DELETE /api/games/:id/backups
func (h *SaveHandler) DeleteGameSaves(c *gin.Context) {
	if err := h.saveManager.DeleteGameSaves(c.Param("id")); err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all backups deleted"})
}
