package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rogame/backend/internal/api"
	"github.com/rogame/backend/internal/backup"
	"github.com/rogame/backend/internal/platform"
	"github.com/rogame/backend/internal/repository"
	"github.com/rogame/backend/internal/scanner"
	"github.com/rogame/backend/internal/service"
	"github.com/rogame/backend/pkg/config"
	"github.com/rogame/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.NewLogger(logger.ParseLevel(cfg.LogLevel), os.Stdout, cfg.LogJSON)
	logger.SetDefault(appLogger)

	logger.Info("Starting application", map[string]interface{}{
		"app":   cfg.AppName,
		"debug": cfg.Debug,
		"port":  cfg.Port,
	})

	// Resolve filesystem roots, honoring overrides from the environment
	if cfg.DataDir != "" {
		platform.SetDataDir(cfg.DataDir)
	}
	backupRoot := cfg.BackupDir
	if backupRoot == "" {
		backupRoot = platform.BackupDir()
	}
	if err := os.MkdirAll(backupRoot, 0o755); err != nil {
		logger.Fatal("Failed to create backup directory", err, map[string]interface{}{
			"path": backupRoot,
		})
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(platform.AppDataDir(), "rogame.db")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		logger.Fatal("Failed to create data directory", err, nil)
	}

	// Initialize database
	if err := repository.InitDB(cfg); err != nil {
		logger.Fatal("Failed to initialize database", err, nil)
	}
	logger.Info("Database initialized", nil)
	db := repository.GetDB()

	// Initialize repositories
	gameRepo := repository.NewGameRepository(db)

	// Initialize the backup engine and library scanner
	engine := backup.NewEngine(backupRoot)
	libScanner := scanner.NewLibraryScanner()

	// Initialize services
	settingsPath := filepath.Join(platform.ConfigDir(), service.SettingsFileName)
	saveManager := service.NewSaveManager(gameRepo, engine, settingsPath)
	gameScanner := service.NewGameScanner(gameRepo, libScanner, engine, cfg.SaveConfigPath)

	// Start the auto-backup worker
	autoBackupWorker := service.NewAutoBackupWorker(saveManager, gameRepo)
	autoBackupWorker.Start()
	defer autoBackupWorker.Stop()

	// Initialize API handlers
	gameHandler := api.NewGameHandler(gameScanner)
	saveHandler := api.NewSaveHandler(saveManager)
	settingsHandler := api.NewSettingsHandler(saveManager, autoBackupWorker)
	healthHandler := api.NewHealthHandler(db)

	// Setup router
	router := api.SetupRouter(gameHandler, saveHandler, settingsHandler, healthHandler, cfg)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...", nil)
		autoBackupWorker.Stop()
		logger.Info("Shutdown complete", nil)
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address":      addr,
		"api_endpoint": fmt.Sprintf("http://localhost%s/api", addr),
		"health_check": fmt.Sprintf("http://localhost%s/health", addr),
	})

	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", err, nil)
	}
}
