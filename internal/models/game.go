package models

// GamePlatform identifies the launcher ecosystem a game was discovered in
type GamePlatform string

const (
	PlatformSteam  GamePlatform = "Steam"
	PlatformEpic   GamePlatform = "Epic"
	PlatformGOG    GamePlatform = "GOG"
	PlatformCustom GamePlatform = "Custom"
)

// SaveStatus reflects whether any save data was found for a game
type SaveStatus string

const (
	SaveStatusNone  SaveStatus = "no_saves"
	SaveStatusFound SaveStatus = "has_saves"
)

// Game is the persisted record for a title that was imported into the
// library. Scanned-but-not-imported games exist only as GameInfo values.
type Game struct {
	ID         string       `gorm:"primaryKey;size:64" json:"id"`
	Title      string       `gorm:"size:255;not null" json:"title"`
	CoverImage string       `gorm:"size:512" json:"cover_image"`
	Platform   GamePlatform `gorm:"size:32;not null;index" json:"platform"`
	LastPlayed string       `gorm:"size:64;not null" json:"last_played"`
	SaveCount  int          `gorm:"not null" json:"save_count"`
	Size       string       `gorm:"size:32;not null" json:"size"`
	Status     SaveStatus   `gorm:"size:32;not null" json:"status"`
	Category   string       `gorm:"size:128;not null" json:"category"`
	IsFavorite bool         `gorm:"not null" json:"is_favorite"`

	// Live save data location; may contain a ~ prefix or a wildcard.
	SaveLocation string `gorm:"size:1024;not null" json:"save_location"`

	// Set when the game is imported; nil for records that were never
	// given a backup directory. A game without one cannot be backed up.
	BackupLocation *string `gorm:"size:1024" json:"backup_location,omitempty"`

	// Unix milliseconds of the last successful backup.
	LastBackupTime *int64 `json:"last_backup_time,omitempty"`
}

func (Game) TableName() string {
	return "games"
}

// NewGame returns a Game with the field defaults a freshly discovered
// title carries before any save data is found.
func NewGame(id, title string, platform GamePlatform) *Game {
	return &Game{
		ID:         id,
		Title:      title,
		Platform:   platform,
		LastPlayed: "Never",
		Size:       "0B",
		Status:     SaveStatusNone,
		Category:   "Unknown",
	}
}

// Imported reports whether the game has been formally added to the
// backup system (as opposed to merely discovered by a scan).
func (g *Game) Imported() bool {
	return g.BackupLocation != nil && *g.BackupLocation != ""
}

// SaveLocationRecord is one candidate path+pattern pair for a game. A game
// may own several; they are replaced wholesale on update.
type SaveLocationRecord struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	GameID  string `gorm:"size:64;not null;index" json:"game_id"`
	Path    string `gorm:"size:1024;not null" json:"path"`
	Pattern string `gorm:"size:512;not null" json:"pattern"`
}

func (SaveLocationRecord) TableName() string {
	return "save_locations"
}
