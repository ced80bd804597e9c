// Package gormstore is the relational primary backend. Search narrows
// by owner in SQL, then applies the shared in-memory filter engine so
// its semantics stay identical to the fallback's.
package gormstore

import (
	"context"
	"errors"

	"github.com/gameshelf/server/model"
	"github.com/gameshelf/server/storage"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

var _ storage.Store = (*Store)(nil)

// New wraps an opened gorm DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ---- Users ----

func (s *Store) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	cp := *u
	if err := s.db.WithContext(ctx).Create(&cp).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetAllUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	patch.Apply(&u)
	if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes the user, their games and every friendship they
// are a party to, atomically.
func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := tx.Where("user_id = ?", id).Delete(&model.Game{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? OR friend_id = ?", id, id).Delete(&model.Friendship{}).Error
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// ---- Games ----

func (s *Store) GetGames(ctx context.Context, ownerID *int64) ([]model.Game, error) {
	q := s.db.WithContext(ctx).Order("id")
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}
	var games []model.Game
	if err := q.Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (s *Store) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	var g model.Game
	err := s.db.WithContext(ctx).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) CreateGame(ctx context.Context, g *model.Game) (*model.Game, error) {
	cp := *g
	cp.ApplyDefaults()
	if err := s.db.WithContext(ctx).Create(&cp).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *Store) UpdateGame(ctx context.Context, id int64, patch model.GamePatch) (*model.Game, error) {
	var g model.Game
	err := s.db.WithContext(ctx).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	patch.Apply(&g)
	if err := s.db.WithContext(ctx).Save(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) DeleteGame(ctx context.Context, id int64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.Game{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SearchGames scopes by owner in SQL and evaluates the text query,
// structured filter and sort with the shared engine. Set intersection
// over JSON array columns is not expressible portably across the
// supported drivers, so the predicate work happens here.
func (s *Store) SearchGames(ctx context.Context, query string, ownerID *int64, filter *storage.GameFilter) ([]model.Game, error) {
	scoped, err := s.GetGames(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return storage.FilterGames(scoped, query, filter), nil
}

// ---- Friendships ----

func (s *Store) GetFriendship(ctx context.Context, a, b int64) (*model.Friendship, error) {
	var f model.Friendship
	err := s.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) GetFriendships(ctx context.Context, userID int64) ([]model.Friendship, error) {
	return s.friendshipsByStatus(ctx, userID, model.FriendshipAccepted)
}

func (s *Store) GetPendingFriendships(ctx context.Context, userID int64) ([]model.Friendship, error) {
	return s.friendshipsByStatus(ctx, userID, model.FriendshipPending)
}

func (s *Store) friendshipsByStatus(ctx context.Context, userID int64, status string) ([]model.Friendship, error) {
	var out []model.Friendship
	err := s.db.WithContext(ctx).
		Where("status = ? AND (user_id = ? OR friend_id = ?)", status, userID, userID).
		Order("id").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateFriendship(ctx context.Context, f *model.Friendship) (*model.Friendship, error) {
	cp := *f
	if cp.Status == "" {
		cp.Status = model.FriendshipPending
	}
	if err := s.db.WithContext(ctx).Create(&cp).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *Store) UpdateFriendshipStatus(ctx context.Context, userID, friendID int64, status string) (*model.Friendship, error) {
	var f model.Friendship
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Status = status
	if err := s.db.WithContext(ctx).Save(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) DeleteFriendship(ctx context.Context, userID, friendID int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
