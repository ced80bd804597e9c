package model

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Play statuses for a library entry.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// PlayStatuses lists every valid play status.
var PlayStatuses = []string{StatusNotStarted, StatusInProgress, StatusCompleted, StatusAbandoned}

var (
	ErrTitleRequired     = errors.New("game: title is required")
	ErrRatingOutOfRange  = errors.New("game: personal rating must be between 0 and 10")
	ErrInvalidPlayStatus = errors.New("game: invalid play status")
)

// Game is one entry in a user's library. UserID is nil for legacy
// entries that predate accounts; those are globally visible.
type Game struct {
	ID             int64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string                     `gorm:"size:255;not null" json:"title"`
	IgdbID         *int64                     `gorm:"index" json:"igdb_id"`
	Cover          string                     `gorm:"size:255" json:"cover"`
	ReleaseDate    string                     `gorm:"size:32" json:"release_date"`
	Platforms      datatypes.JSONSlice[string] `json:"platforms"`
	Genres         datatypes.JSONSlice[string] `json:"genres"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	Rating         *int                       `json:"rating"`
	PersonalRating *int                       `json:"personal_rating"`
	Summary        string                     `gorm:"type:text" json:"summary"`
	Review         string                     `gorm:"type:text" json:"review"`
	PlayStatus     string                     `gorm:"size:16;default:not_started" json:"play_status"`
	Favorite       bool                       `gorm:"default:false" json:"favorite"`
	LastPlayedAt   *time.Time                 `json:"last_played_at"`
	PlayTimeMin    int                        `json:"play_time_min"`
	Developer      string                     `gorm:"size:128" json:"developer"`
	Publisher      string                     `gorm:"size:128" json:"publisher"`
	InstallSize    string                     `gorm:"size:32" json:"install_size"`
	TimeToComplete string                     `gorm:"size:32" json:"time_to_complete"`
	UserID         *int64                     `gorm:"index" json:"user_id"`
	CreatedAt      time.Time                  `gorm:"autoCreateTime" json:"created_at"`
}

// ApplyDefaults fills in the create-time defaults for an incoming draft.
func (g *Game) ApplyDefaults() {
	if g.PlayStatus == "" {
		g.PlayStatus = StatusNotStarted
	}
	if g.Platforms == nil {
		g.Platforms = datatypes.JSONSlice[string]{}
	}
	if g.Genres == nil {
		g.Genres = datatypes.JSONSlice[string]{}
	}
	if g.Tags == nil {
		g.Tags = datatypes.JSONSlice[string]{}
	}
}

// Validate checks the draft invariants before it reaches storage.
func (g *Game) Validate() error {
	if g.Title == "" {
		return ErrTitleRequired
	}
	if g.PersonalRating != nil && (*g.PersonalRating < 0 || *g.PersonalRating > 10) {
		return ErrRatingOutOfRange
	}
	if g.PlayStatus != "" && !ValidPlayStatus(g.PlayStatus) {
		return fmt.Errorf("%w: %q", ErrInvalidPlayStatus, g.PlayStatus)
	}
	return nil
}

// ValidPlayStatus reports whether s is a known play status.
func ValidPlayStatus(s string) bool {
	for _, v := range PlayStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// GamePatch is a partial update. Nil fields are left untouched; the
// patchable fields are enumerated explicitly rather than merged by
// reflection.
type GamePatch struct {
	Title          *string
	IgdbID         *int64
	Cover          *string
	ReleaseDate    *string
	Platforms      *[]string
	Genres         *[]string
	Tags           *[]string
	Rating         *int
	PersonalRating *int
	Summary        *string
	Review         *string
	PlayStatus     *string
	Favorite       *bool
	LastPlayedAt   *time.Time
	PlayTimeMin    *int
	Developer      *string
	Publisher      *string
	InstallSize    *string
	TimeToComplete *string
}

// Validate checks the patched fields against the same invariants as a draft.
func (p *GamePatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return ErrTitleRequired
	}
	if p.PersonalRating != nil && (*p.PersonalRating < 0 || *p.PersonalRating > 10) {
		return ErrRatingOutOfRange
	}
	if p.PlayStatus != nil && !ValidPlayStatus(*p.PlayStatus) {
		return fmt.Errorf("%w: %q", ErrInvalidPlayStatus, *p.PlayStatus)
	}
	return nil
}

// Apply overwrites the set fields onto g.
func (p *GamePatch) Apply(g *Game) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.IgdbID != nil {
		g.IgdbID = p.IgdbID
	}
	if p.Cover != nil {
		g.Cover = *p.Cover
	}
	if p.ReleaseDate != nil {
		g.ReleaseDate = *p.ReleaseDate
	}
	if p.Platforms != nil {
		g.Platforms = datatypes.NewJSONSlice(*p.Platforms)
	}
	if p.Genres != nil {
		g.Genres = datatypes.NewJSONSlice(*p.Genres)
	}
	if p.Tags != nil {
		g.Tags = datatypes.NewJSONSlice(*p.Tags)
	}
	if p.Rating != nil {
		g.Rating = p.Rating
	}
	if p.PersonalRating != nil {
		g.PersonalRating = p.PersonalRating
	}
	if p.Summary != nil {
		g.Summary = *p.Summary
	}
	if p.Review != nil {
		g.Review = *p.Review
	}
	if p.PlayStatus != nil {
		g.PlayStatus = *p.PlayStatus
	}
	if p.Favorite != nil {
		g.Favorite = *p.Favorite
	}
	if p.LastPlayedAt != nil {
		g.LastPlayedAt = p.LastPlayedAt
	}
	if p.PlayTimeMin != nil {
		g.PlayTimeMin = *p.PlayTimeMin
	}
	if p.Developer != nil {
		g.Developer = *p.Developer
	}
	if p.Publisher != nil {
		g.Publisher = *p.Publisher
	}
	if p.InstallSize != nil {
		g.InstallSize = *p.InstallSize
	}
	if p.TimeToComplete != nil {
		g.TimeToComplete = *p.TimeToComplete
	}
}
