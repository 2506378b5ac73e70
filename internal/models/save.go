package models

import "time"

// SaveFile describes one archived snapshot of a game's save data. It is a
// filesystem entity, not a database row; the ID is the archive name.
type SaveFile struct {
	ID             string   `json:"id"`
	GameID         string   `json:"game_id"`
	FileName       string   `json:"file_name"`
	CreatedAt      string   `json:"created_at"`
	ModifiedAt     string   `json:"modified_at"`
	SizeBytes      uint64   `json:"size_bytes"`
	Tags           []string `json:"tags"`
	SaveLocation   string   `json:"save_location"`
	BackupLocation string   `json:"backup_location"`
}

// NewSaveFile builds a SaveFile record for an archive entry.
func NewSaveFile(gameID, fileName string, sizeBytes uint64, backupLocation, saveLocation string) SaveFile {
	now := time.Now().UTC().Format(time.RFC3339)
	return SaveFile{
		ID:             fileName,
		GameID:         gameID,
		FileName:       fileName,
		CreatedAt:      now,
		ModifiedAt:     now,
		SizeBytes:      sizeBytes,
		Tags:           []string{},
		SaveLocation:   saveLocation,
		BackupLocation: backupLocation,
	}
}

// BackupResponse is returned by a successful backup operation.
type BackupResponse struct {
	SaveFile   SaveFile `json:"save_file"`
	BackupTime int64    `json:"backup_time"` // Unix milliseconds
	SaveCount  int      `json:"save_count"`  // live archive count after retention
}

// BackupSettings is the process-wide backup configuration, persisted as
// JSON in the platform config directory.
type BackupSettings struct {
	AutoBackup         bool   `json:"auto_backup"`
	BackupInterval     string `json:"backup_interval"`
	MaxBackups         int    `json:"max_backups"`
	CompressionEnabled bool   `json:"compression_enabled"` // reserved; the engine copies verbatim
}

// DefaultBackupSettings are used when no settings file exists yet.
func DefaultBackupSettings() BackupSettings {
	return BackupSettings{
		AutoBackup:         true,
		BackupInterval:     "30min",
		MaxBackups:         5,
		CompressionEnabled: true,
	}
}
