package storage

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gameshelf/server/model"
	"go.uber.org/zap"
)

// Facade implements Store over a primary backend and an in-process
// fallback. A failed probe at construction, or any primary error later,
// flips a one-way latch: from then on every operation is served by the
// fallback for the remainder of the process lifetime. The failing
// operation itself is retried once against the fallback, so a primary
// outage never surfaces to the caller.
type Facade struct {
	primary  Store
	fallback Store
	degraded atomic.Bool
	logger   *zap.Logger
}

const probeTimeout = 5 * time.Second

// NewFacade builds a facade and probes the primary once. A nil primary
// is treated as an unreachable one.
func NewFacade(primary, fallback Store, logger *zap.Logger) *Facade {
	f := &Facade{primary: primary, fallback: fallback, logger: logger}
	if primary == nil {
		f.degraded.Store(true)
		logger.Warn("storage: no primary backend, starting degraded")
		return f
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := primary.Ping(ctx); err != nil {
		f.degraded.Store(true)
		logger.Warn("storage: primary probe failed, starting degraded", zap.Error(err))
	}
	return f
}

// Degraded reports whether operations are being routed to the fallback.
func (f *Facade) Degraded() bool {
	return f.degraded.Load()
}

// degrade flips the latch. Concurrent failures may race here; the CAS
// keeps the log line to the first observer.
func (f *Facade) degrade(op string, err error) {
	if f.degraded.CompareAndSwap(false, true) {
		f.logger.Error("storage: primary failed, switching to fallback",
			zap.String("op", op), zap.Error(err))
	}
}

// route runs fn against the primary unless the latch is set, degrading
// and retrying once on the fallback if the primary errors. The fallback
// performs no I/O and is defined never to fail for these operations.
func route[T any](f *Facade, op string, fn func(Store) (T, error)) (T, error) {
	if f.degraded.Load() {
		return fn(f.fallback)
	}
	v, err := fn(f.primary)
	if err != nil {
		f.degrade(op, err)
		return fn(f.fallback)
	}
	return v, nil
}

func (f *Facade) Ping(ctx context.Context) error {
	if f.degraded.Load() {
		return f.fallback.Ping(ctx)
	}
	if err := f.primary.Ping(ctx); err != nil {
		f.degrade("Ping", err)
		return f.fallback.Ping(ctx)
	}
	return nil
}

// ---- Users ----

func (f *Facade) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	return route(f, "CreateUser", func(s Store) (*model.User, error) { return s.CreateUser(ctx, u) })
}

func (f *Facade) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return route(f, "GetUser", func(s Store) (*model.User, error) { return s.GetUser(ctx, id) })
}

func (f *Facade) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return route(f, "GetUserByUsername", func(s Store) (*model.User, error) { return s.GetUserByUsername(ctx, username) })
}

func (f *Facade) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return route(f, "GetUserByEmail", func(s Store) (*model.User, error) { return s.GetUserByEmail(ctx, email) })
}

func (f *Facade) GetAllUsers(ctx context.Context) ([]model.User, error) {
	return route(f, "GetAllUsers", func(s Store) ([]model.User, error) { return s.GetAllUsers(ctx) })
}

func (f *Facade) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	return route(f, "UpdateUser", func(s Store) (*model.User, error) { return s.UpdateUser(ctx, id, patch) })
}

func (f *Facade) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return route(f, "DeleteUser", func(s Store) (bool, error) { return s.DeleteUser(ctx, id) })
}

// ---- Games ----

func (f *Facade) GetGames(ctx context.Context, ownerID *int64) ([]model.Game, error) {
	return route(f, "GetGames", func(s Store) ([]model.Game, error) { return s.GetGames(ctx, ownerID) })
}

func (f *Facade) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	return route(f, "GetGame", func(s Store) (*model.Game, error) { return s.GetGame(ctx, id) })
}

func (f *Facade) CreateGame(ctx context.Context, g *model.Game) (*model.Game, error) {
	return route(f, "CreateGame", func(s Store) (*model.Game, error) { return s.CreateGame(ctx, g) })
}

func (f *Facade) UpdateGame(ctx context.Context, id int64, patch model.GamePatch) (*model.Game, error) {
	return route(f, "UpdateGame", func(s Store) (*model.Game, error) { return s.UpdateGame(ctx, id, patch) })
}

func (f *Facade) DeleteGame(ctx context.Context, id int64) (bool, error) {
	return route(f, "DeleteGame", func(s Store) (bool, error) { return s.DeleteGame(ctx, id) })
}

func (f *Facade) SearchGames(ctx context.Context, query string, ownerID *int64, filter *GameFilter) ([]model.Game, error) {
	return route(f, "SearchGames", func(s Store) ([]model.Game, error) { return s.SearchGames(ctx, query, ownerID, filter) })
}

// ---- Friendships ----

func (f *Facade) GetFriendship(ctx context.Context, a, b int64) (*model.Friendship, error) {
	return route(f, "GetFriendship", func(s Store) (*model.Friendship, error) { return s.GetFriendship(ctx, a, b) })
}

func (f *Facade) GetFriendships(ctx context.Context, userID int64) ([]model.Friendship, error) {
	return route(f, "GetFriendships", func(s Store) ([]model.Friendship, error) { return s.GetFriendships(ctx, userID) })
}

func (f *Facade) GetPendingFriendships(ctx context.Context, userID int64) ([]model.Friendship, error) {
	return route(f, "GetPendingFriendships", func(s Store) ([]model.Friendship, error) { return s.GetPendingFriendships(ctx, userID) })
}

func (f *Facade) CreateFriendship(ctx context.Context, fr *model.Friendship) (*model.Friendship, error) {
	return route(f, "CreateFriendship", func(s Store) (*model.Friendship, error) { return s.CreateFriendship(ctx, fr) })
}

func (f *Facade) UpdateFriendshipStatus(ctx context.Context, userID, friendID int64, status string) (*model.Friendship, error) {
	return route(f, "UpdateFriendshipStatus", func(s Store) (*model.Friendship, error) {
		return s.UpdateFriendshipStatus(ctx, userID, friendID, status)
	})
}

func (f *Facade) DeleteFriendship(ctx context.Context, userID, friendID int64) (bool, error) {
	return route(f, "DeleteFriendship", func(s Store) (bool, error) { return s.DeleteFriendship(ctx, userID, friendID) })
}
