// Package storage defines the persistence contract shared by the
// relational primary backend and the in-memory fallback, and the
// facade that routes between them.
package storage

import (
	"context"

	"github.com/gameshelf/server/model"
)

// Store is the single contract every backend implements. Reads return
// a nil record (or false) when the addressed entity does not exist;
// errors are reserved for backend failures.
type Store interface {
	// Ping probes the backend. The facade calls it once at
	// construction to decide the initial routing mode.
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)

	// Games
	GetGames(ctx context.Context, ownerID *int64) ([]model.Game, error)
	GetGame(ctx context.Context, id int64) (*model.Game, error)
	CreateGame(ctx context.Context, g *model.Game) (*model.Game, error)
	UpdateGame(ctx context.Context, id int64, patch model.GamePatch) (*model.Game, error)
	DeleteGame(ctx context.Context, id int64) (bool, error)
	SearchGames(ctx context.Context, query string, ownerID *int64, filter *GameFilter) ([]model.Game, error)

	// Friendships
	GetFriendship(ctx context.Context, a, b int64) (*model.Friendship, error)
	GetFriendships(ctx context.Context, userID int64) ([]model.Friendship, error)
	GetPendingFriendships(ctx context.Context, userID int64) ([]model.Friendship, error)
	CreateFriendship(ctx context.Context, f *model.Friendship) (*model.Friendship, error)
	UpdateFriendshipStatus(ctx context.Context, userID, friendID int64, status string) (*model.Friendship, error)
	DeleteFriendship(ctx context.Context, userID, friendID int64) (bool, error)
}
