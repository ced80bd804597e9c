// Package memstore is the volatile fallback backend: a functionally
// complete in-process implementation of the storage contract. Its
// search behavior is the reference semantics the relational backend
// reproduces.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/gameshelf/server/model"
	"github.com/gameshelf/server/storage"
)

// Store keeps three ordered collections keyed by monotonically
// increasing ids, assigned per entity type starting at 1 and never
// reused after deletion.
type Store struct {
	mu sync.RWMutex

	users     map[int64]*model.User
	userIDs   []int64
	games     map[int64]*model.Game
	gameIDs   []int64
	friends   map[int64]*model.Friendship
	friendIDs []int64

	nextUserID   int64
	nextGameID   int64
	nextFriendID int64
}

var _ storage.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[int64]*model.User),
		games:        make(map[int64]*model.Game),
		friends:      make(map[int64]*model.Friendship),
		nextUserID:   1,
		nextGameID:   1,
		nextFriendID: 1,
	}
}

// Ping never fails: the fallback performs no I/O.
func (s *Store) Ping(context.Context) error { return nil }

// ---- Users ----

func (s *Store) CreateUser(_ context.Context, u *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	cp.ID = s.nextUserID
	s.nextUserID++
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.users[cp.ID] = &cp
	s.userIDs = append(s.userIDs, cp.ID)
	out := cp
	return &out, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.userIDs {
		if u := s.users[id]; u != nil && u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.userIDs {
		if u := s.users[id]; u != nil && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetAllUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.userIDs))
	for _, id := range s.userIDs {
		if u := s.users[id]; u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(u)
	cp := *u
	return &cp, nil
}

// DeleteUser removes the user and cascades to their games and every
// friendship they are a party to.
func (s *Store) DeleteUser(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	s.userIDs = removeID(s.userIDs, id)

	for _, gid := range append([]int64(nil), s.gameIDs...) {
		if g := s.games[gid]; g != nil && g.UserID != nil && *g.UserID == id {
			delete(s.games, gid)
			s.gameIDs = removeID(s.gameIDs, gid)
		}
	}
	for _, fid := range append([]int64(nil), s.friendIDs...) {
		if f := s.friends[fid]; f != nil && f.Involves(id) {
			delete(s.friends, fid)
			s.friendIDs = removeID(s.friendIDs, fid)
		}
	}
	return true, nil
}

// ---- Games ----

func (s *Store) GetGames(_ context.Context, ownerID *int64) ([]model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gamesLocked(ownerID), nil
}

// gamesLocked returns owner-scoped copies in insertion order.
func (s *Store) gamesLocked(ownerID *int64) []model.Game {
	out := make([]model.Game, 0, len(s.gameIDs))
	for _, id := range s.gameIDs {
		g := s.games[id]
		if g == nil {
			continue
		}
		if ownerID != nil && (g.UserID == nil || *g.UserID != *ownerID) {
			continue
		}
		out = append(out, cloneGame(g))
	}
	return out
}

func (s *Store) GetGame(_ context.Context, id int64) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	cp := cloneGame(g)
	return &cp, nil
}

func (s *Store) CreateGame(_ context.Context, g *model.Game) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneGame(g)
	cp.ID = s.nextGameID
	s.nextGameID++
	cp.ApplyDefaults()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.games[cp.ID] = &cp
	s.gameIDs = append(s.gameIDs, cp.ID)
	out := cloneGame(&cp)
	return &out, nil
}

func (s *Store) UpdateGame(_ context.Context, id int64, patch model.GamePatch) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(g)
	cp := cloneGame(g)
	return &cp, nil
}

func (s *Store) DeleteGame(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return false, nil
	}
	delete(s.games, id)
	s.gameIDs = removeID(s.gameIDs, id)
	return true, nil
}

func (s *Store) SearchGames(_ context.Context, query string, ownerID *int64, filter *storage.GameFilter) ([]model.Game, error) {
	s.mu.RLock()
	scoped := s.gamesLocked(ownerID)
	s.mu.RUnlock()
	return storage.FilterGames(scoped, query, filter), nil
}

// ---- Friendships ----

func (s *Store) GetFriendship(_ context.Context, a, b int64) (*model.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.friendIDs {
		f := s.friends[id]
		if f == nil {
			continue
		}
		if (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetFriendships(_ context.Context, userID int64) ([]model.Friendship, error) {
	return s.friendshipsByStatus(userID, model.FriendshipAccepted), nil
}

func (s *Store) GetPendingFriendships(_ context.Context, userID int64) ([]model.Friendship, error) {
	return s.friendshipsByStatus(userID, model.FriendshipPending), nil
}

func (s *Store) friendshipsByStatus(userID int64, status string) []model.Friendship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Friendship
	for _, id := range s.friendIDs {
		if f := s.friends[id]; f != nil && f.Status == status && f.Involves(userID) {
			out = append(out, *f)
		}
	}
	return out
}

func (s *Store) CreateFriendship(_ context.Context, f *model.Friendship) (*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *f
	cp.ID = s.nextFriendID
	s.nextFriendID++
	if cp.Status == "" {
		cp.Status = model.FriendshipPending
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.friends[cp.ID] = &cp
	s.friendIDs = append(s.friendIDs, cp.ID)
	out := cp
	return &out, nil
}

func (s *Store) UpdateFriendshipStatus(_ context.Context, userID, friendID int64, status string) (*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.friendIDs {
		f := s.friends[id]
		if f != nil && f.UserID == userID && f.FriendID == friendID {
			f.Status = status
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) DeleteFriendship(_ context.Context, userID, friendID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.friendIDs {
		f := s.friends[id]
		if f != nil && f.UserID == userID && f.FriendID == friendID {
			delete(s.friends, id)
			s.friendIDs = removeID(s.friendIDs, id)
			return true, nil
		}
	}
	return false, nil
}

// ---- helpers ----

func cloneGame(g *model.Game) model.Game {
	cp := *g
	cp.Platforms = append(cp.Platforms[:0:0], g.Platforms...)
	cp.Genres = append(cp.Genres[:0:0], g.Genres...)
	cp.Tags = append(cp.Tags[:0:0], g.Tags...)
	return cp
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
