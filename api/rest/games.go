package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gameshelf/server/igdb"
	mw "github.com/gameshelf/server/middleware"
	"github.com/gameshelf/server/model"
	"github.com/gameshelf/server/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// GameHandler handles library CRUD, search and catalog lookups.
type GameHandler struct {
	store   storage.Store
	catalog *igdb.Client
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(store storage.Store, catalog *igdb.Client) *GameHandler {
	return &GameHandler{store: store, catalog: catalog}
}

// List handles GET /api/games: the caller's library.
func (h *GameHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)
	games, err := h.store.GetGames(c.Request.Context(), &userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, games)
}

// Get handles GET /api/games/:id. Entries owned by another user are not
// revealed; legacy entries without an owner are visible to everyone.
func (h *GameHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	game, err := h.store.GetGame(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if game == nil || (game.UserID != nil && *game.UserID != mw.GetUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, game)
}

type gameRequest struct {
	Title          string     `json:"title" binding:"required"`
	IgdbID         *int64     `json:"igdb_id"`
	Cover          string     `json:"cover"`
	ReleaseDate    string     `json:"release_date"`
	Platforms      []string   `json:"platforms"`
	Genres         []string   `json:"genres"`
	Tags           []string   `json:"tags"`
	Rating         *int       `json:"rating"`
	PersonalRating *int       `json:"personal_rating" binding:"omitempty,min=0,max=10"`
	Summary        string     `json:"summary"`
	Review         string     `json:"review"`
	PlayStatus     string     `json:"play_status" binding:"omitempty,oneof=not_started in_progress completed abandoned"`
	Favorite       bool       `json:"favorite"`
	LastPlayedAt   *time.Time `json:"last_played_at"`
	PlayTimeMin    int        `json:"play_time_min" binding:"omitempty,min=0"`
	Developer      string     `json:"developer"`
	Publisher      string     `json:"publisher"`
	InstallSize    string     `json:"install_size"`
	TimeToComplete string     `json:"time_to_complete"`
}

// Create handles POST /api/games.
func (h *GameHandler) Create(c *gin.Context) {
	var req gameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := mw.GetUserID(c)
	draft := &model.Game{
		Title:          req.Title,
		IgdbID:         req.IgdbID,
		Cover:          req.Cover,
		ReleaseDate:    req.ReleaseDate,
		Platforms:      datatypes.NewJSONSlice(req.Platforms),
		Genres:         datatypes.NewJSONSlice(req.Genres),
		Tags:           datatypes.NewJSONSlice(req.Tags),
		Rating:         req.Rating,
		PersonalRating: req.PersonalRating,
		Summary:        req.Summary,
		Review:         req.Review,
		PlayStatus:     req.PlayStatus,
		Favorite:       req.Favorite,
		LastPlayedAt:   req.LastPlayedAt,
		PlayTimeMin:    req.PlayTimeMin,
		Developer:      req.Developer,
		Publisher:      req.Publisher,
		InstallSize:    req.InstallSize,
		TimeToComplete: req.TimeToComplete,
		UserID:         &userID,
	}
	if err := draft.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	game, err := h.store.CreateGame(c.Request.Context(), draft)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create game"})
		return
	}
	c.JSON(http.StatusCreated, game)
}

type gamePatchRequest struct {
	Title          *string    `json:"title"`
	IgdbID         *int64     `json:"igdb_id"`
	Cover          *string    `json:"cover"`
	ReleaseDate    *string    `json:"release_date"`
	Platforms      *[]string  `json:"platforms"`
	Genres         *[]string  `json:"genres"`
	Tags           *[]string  `json:"tags"`
	Rating         *int       `json:"rating"`
	PersonalRating *int       `json:"personal_rating"`
	Summary        *string    `json:"summary"`
	Review         *string    `json:"review"`
	PlayStatus     *string    `json:"play_status"`
	Favorite       *bool      `json:"favorite"`
	LastPlayedAt   *time.Time `json:"last_played_at"`
	PlayTimeMin    *int       `json:"play_time_min"`
	Developer      *string    `json:"developer"`
	Publisher      *string    `json:"publisher"`
	InstallSize    *string    `json:"install_size"`
	TimeToComplete *string    `json:"time_to_complete"`
}

func (r *gamePatchRequest) toPatch() model.GamePatch {
	return model.GamePatch{
		Title:          r.Title,
		IgdbID:         r.IgdbID,
		Cover:          r.Cover,
		ReleaseDate:    r.ReleaseDate,
		Platforms:      r.Platforms,
		Genres:         r.Genres,
		Tags:           r.Tags,
		Rating:         r.Rating,
		PersonalRating: r.PersonalRating,
		Summary:        r.Summary,
		Review:         r.Review,
		PlayStatus:     r.PlayStatus,
		Favorite:       r.Favorite,
		LastPlayedAt:   r.LastPlayedAt,
		PlayTimeMin:    r.PlayTimeMin,
		Developer:      r.Developer,
		Publisher:      r.Publisher,
		InstallSize:    r.InstallSize,
		TimeToComplete: r.TimeToComplete,
	}
}

// Update handles PATCH /api/games/:id.
func (h *GameHandler) Update(c *gin.Context) {
	id, ok := h.ownedGame(c)
	if !ok {
		return
	}

	var req gamePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch := req.toPatch()
	if err := patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.store.UpdateGame(c.Request.Context(), id, patch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/games/:id.
func (h *GameHandler) Delete(c *gin.Context) {
	id, ok := h.ownedGame(c)
	if !ok {
		return
	}
	deleted, err := h.store.DeleteGame(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ownedGame parses :id and verifies the entry belongs to the caller
// (or is a legacy unowned entry). On failure it writes the response
// and returns ok=false.
func (h *GameHandler) ownedGame(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	game, err := h.store.GetGame(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return 0, false
	}
	if game == nil || (game.UserID != nil && *game.UserID != mw.GetUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return 0, false
	}
	return id, true
}

// Search handles GET /api/games/search over the caller's library.
// Filter fields arrive as comma-separated query parameters.
func (h *GameHandler) Search(c *gin.Context) {
	userID := mw.GetUserID(c)
	filter := &storage.GameFilter{
		Platforms:     splitParam(c.Query("platforms")),
		Genres:        splitParam(c.Query("genres")),
		Tags:          splitParam(c.Query("tags")),
		Statuses:      splitParam(c.Query("statuses")),
		Favorite:      c.Query("favorite") == "true",
		Ratings:       splitParam(c.Query("ratings")),
		SortBy:        c.Query("sort_by"),
		SortDirection: c.DefaultQuery("sort_direction", "asc"),
	}
	games, err := h.store.SearchGames(c.Request.Context(), c.Query("q"), &userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, games)
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CatalogSearch handles GET /api/catalog/search: a passthrough to the
// external metadata API. Upstream failures are surfaced opaquely.
func (h *GameHandler) CatalogSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search query is required"})
		return
	}
	results, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, igdb.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog search failed"})
		return
	}
	c.JSON(http.StatusOK, results)
}
