package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gameshelf/server/friendship"
	mw "github.com/gameshelf/server/middleware"
	"github.com/gameshelf/server/storage"
	"github.com/gin-gonic/gin"
)

// FriendHandler handles friend-relationship REST endpoints.
type FriendHandler struct {
	store storage.Store
	svc   *friendship.Service
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(store storage.Store, svc *friendship.Service) *FriendHandler {
	return &FriendHandler{store: store, svc: svc}
}

// List handles GET /api/friends.
func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.svc.Friends(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, friends)
}

// Pending handles GET /api/friends/pending.
func (h *FriendHandler) Pending(c *gin.Context) {
	pending, err := h.svc.Pending(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, pending)
}

type friendRequest struct {
	FriendID int64 `json:"friend_id" binding:"required"`
}

// Request handles POST /api/friends: send a friend request, or accept
// the other party's pending one if it exists.
func (h *FriendHandler) Request(c *gin.Context) {
	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, accepted, err := h.svc.Request(c.Request.Context(), mw.GetUserID(c), req.FriendID)
	if err != nil {
		h.writeFriendshipError(c, err)
		return
	}
	if accepted {
		c.JSON(http.StatusOK, gin.H{"message": "friend request accepted", "friendship": f})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "friend request sent", "friendship": f})
}

// Accept handles PATCH /api/friends/:id/accept.
func (h *FriendHandler) Accept(c *gin.Context) {
	friendID, ok := parseFriendID(c)
	if !ok {
		return
	}
	f, err := h.svc.Accept(c.Request.Context(), mw.GetUserID(c), friendID)
	if err != nil {
		h.writeFriendshipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request accepted", "friendship": f})
}

// Reject handles PATCH /api/friends/:id/reject.
func (h *FriendHandler) Reject(c *gin.Context) {
	friendID, ok := parseFriendID(c)
	if !ok {
		return
	}
	f, err := h.svc.Reject(c.Request.Context(), mw.GetUserID(c), friendID)
	if err != nil {
		h.writeFriendshipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request rejected", "friendship": f})
}

// Cancel handles DELETE /api/friends/:id/cancel.
func (h *FriendHandler) Cancel(c *gin.Context) {
	friendID, ok := parseFriendID(c)
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), mw.GetUserID(c), friendID); err != nil {
		h.writeFriendshipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request cancelled"})
}

// Remove handles DELETE /api/friends/:id.
func (h *FriendHandler) Remove(c *gin.Context) {
	friendID, ok := parseFriendID(c)
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), mw.GetUserID(c), friendID); err != nil {
		h.writeFriendshipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
}

// Games handles GET /api/friends/:id/games: an accepted friend's library.
func (h *FriendHandler) Games(c *gin.Context) {
	friendID, ok := parseFriendID(c)
	if !ok {
		return
	}
	areFriends, err := h.svc.AreFriends(c.Request.Context(), mw.GetUserID(c), friendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !areFriends {
		c.JSON(http.StatusForbidden, gin.H{"error": "you must be friends to view this library"})
		return
	}
	games, err := h.store.GetGames(c.Request.Context(), &friendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, games)
}

func parseFriendID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return 0, false
	}
	return id, true
}

// writeFriendshipError maps the state-machine errors onto HTTP codes:
// precondition violations are conflicts, missing users are not-found,
// self-requests are plain bad requests.
func (h *FriendHandler) writeFriendshipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, friendship.ErrSelfFriend):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, friendship.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, friendship.ErrRelationshipExists),
		errors.Is(err, friendship.ErrRequestPending),
		errors.Is(err, friendship.ErrRequestNotFound),
		errors.Is(err, friendship.ErrNotFriends):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
