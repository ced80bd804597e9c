package rest

import (
	"net/http"
	"strings"

	"github.com/gameshelf/server/model"
	"github.com/gameshelf/server/storage"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user lookup endpoints.
type UserHandler struct {
	store storage.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store storage.Store) *UserHandler {
	return &UserHandler{store: store}
}

// Search handles GET /api/users/search: case-insensitive substring
// match on username or display name, public fields only.
func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search query must be at least 3 characters"})
		return
	}

	users, err := h.store.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	q := strings.ToLower(query)
	matches := make([]model.PublicUser, 0)
	for i := range users {
		u := &users[i]
		if strings.Contains(strings.ToLower(u.Username), q) ||
			(u.DisplayName != "" && strings.Contains(strings.ToLower(u.DisplayName), q)) {
			matches = append(matches, u.Public())
		}
	}
	c.JSON(http.StatusOK, matches)
}
