package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rogame/backend/internal/middleware"
	"github.com/rogame/backend/internal/models"
	"github.com/rogame/backend/internal/service"
)

type SettingsHandler struct {
	saveManager *service.SaveManager
	worker      *service.AutoBackupWorker
}

func NewSettingsHandler(saveManager *service.SaveManager, worker *service.AutoBackupWorker) *SettingsHandler {
	return &SettingsHandler{
		saveManager: saveManager,
		worker:      worker,
	}
}

// GetSettings handles GET /api/settings/backup
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.saveManager.LoadBackupSettings()
	if err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/settings/backup. The auto-backup
// worker is restarted so interval/enable changes take effect.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var settings models.BackupSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.saveManager.SaveBackupSettings(settings); err != nil {
		c.JSON(middleware.StatusFor(err), gin.H{"error": err.Error()})
		return
	}

	if h.worker != nil {
		h.worker.Stop()
		h.worker.Start()
	}
	c.JSON(http.StatusOK, settings)
}

// WorkerStats handles GET /api/settings/backup/worker
func (h *SettingsHandler) WorkerStats(c *gin.Context) {
	if h.worker == nil {
		c.JSON(http.StatusOK, gin.H{"running": false})
		return
	}
	c.JSON(http.StatusOK, h.worker.GetStats())
}
