package models

// GameInfo is the discovery-time view of a game: either a fresh scan
// result (ephemeral, not yet persisted) or a persisted game joined with
// its current save-data summary.
type GameInfo struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	CoverImage   string       `json:"cover_image"`
	Platform     GamePlatform `json:"platform"`
	LastPlayed   string       `json:"last_played"`
	SaveCount    int          `json:"save_count"`
	Size         string       `json:"size"`
	Status       SaveStatus   `json:"status"`
	Category     string       `json:"category"`
	IsFavorite   bool         `json:"is_favorite"`
	SaveLocation string       `json:"save_location"`
}

// CustomGameInput carries the fields of a manually added game.
type CustomGameInput struct {
	Title        string   `json:"title" binding:"required"`
	Platform     string   `json:"platform" binding:"required"`
	Locations    []string `json:"locations" binding:"required,min=1"`
	Patterns     []string `json:"patterns" binding:"required,min=1"`
	CoverImage   string   `json:"cover_image"`
	Category     string   `json:"category"`
	SaveLocation string   `json:"save_location"`
}
