// Package friendship implements the relationship state machine:
// pending → accepted | rejected, with cancellation and removal
// expressed as row deletion. The initiator side of a row never changes,
// so the unordered-pair invariant is enforced by symmetric lookups.
package friendship

import (
	"context"
	"errors"

	"github.com/gameshelf/server/model"
	"github.com/gameshelf/server/storage"
	"go.uber.org/zap"
)

// Conflict errors surfaced to the route layer. A rejected relationship
// is terminal: the row stays queryable and blocks a new request in
// either direction.
var (
	ErrSelfFriend         = errors.New("friendship: cannot befriend yourself")
	ErrUserNotFound       = errors.New("friendship: user not found")
	ErrRelationshipExists = errors.New("friendship: relationship already exists")
	ErrRequestPending     = errors.New("friendship: request already sent")
	ErrRequestNotFound    = errors.New("friendship: no pending request")
	ErrNotFriends         = errors.New("friendship: users are not friends")
)

// PendingRequests partitions the pending rows involving a user from
// that user's point of view.
type PendingRequests struct {
	Incoming []model.PublicUser `json:"incoming"`
	Outgoing []model.PublicUser `json:"outgoing"`
}

// Service runs friendship transitions against the storage contract.
type Service struct {
	store  storage.Store
	logger *zap.Logger
}

// NewService creates a friendship Service.
func NewService(store storage.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Request creates a pending request from userID to friendID. If the
// other party already has a pending request towards userID, that
// request is accepted instead of creating a duplicate row; the returned
// bool reports this auto-accept.
func (svc *Service) Request(ctx context.Context, userID, friendID int64) (*model.Friendship, bool, error) {
	if userID == friendID {
		return nil, false, ErrSelfFriend
	}
	friend, err := svc.store.GetUser(ctx, friendID)
	if err != nil {
		return nil, false, err
	}
	if friend == nil {
		return nil, false, ErrUserNotFound
	}

	existing, err := svc.store.GetFriendship(ctx, userID, friendID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.Status == model.FriendshipPending {
			if existing.UserID == friendID {
				// Mutual request: accept the other party's pending row.
				f, err := svc.store.UpdateFriendshipStatus(ctx, friendID, userID, model.FriendshipAccepted)
				if err != nil {
					return nil, false, err
				}
				svc.logger.Info("friendship auto-accepted on mutual request",
					zap.Int64("user_id", userID), zap.Int64("friend_id", friendID))
				return f, true, nil
			}
			return nil, false, ErrRequestPending
		}
		return nil, false, ErrRelationshipExists
	}

	f, err := svc.store.CreateFriendship(ctx, &model.Friendship{
		UserID:   userID,
		FriendID: friendID,
		Status:   model.FriendshipPending,
	})
	if err != nil {
		return nil, false, err
	}
	return f, false, nil
}

// Accept transitions the pending request from friendID to userID. Only
// the recipient may accept.
func (svc *Service) Accept(ctx context.Context, userID, friendID int64) (*model.Friendship, error) {
	return svc.resolve(ctx, userID, friendID, model.FriendshipAccepted)
}

// Reject marks the pending request from friendID to userID as rejected.
// The row is kept; rejection is terminal.
func (svc *Service) Reject(ctx context.Context, userID, friendID int64) (*model.Friendship, error) {
	return svc.resolve(ctx, userID, friendID, model.FriendshipRejected)
}

func (svc *Service) resolve(ctx context.Context, userID, friendID int64, status string) (*model.Friendship, error) {
	f, err := svc.store.GetFriendship(ctx, friendID, userID)
	if err != nil {
		return nil, err
	}
	// The caller must be the recipient of a still-pending row.
	if f == nil || f.Status != model.FriendshipPending || f.UserID != friendID || f.FriendID != userID {
		return nil, ErrRequestNotFound
	}
	return svc.store.UpdateFriendshipStatus(ctx, friendID, userID, status)
}

// Cancel deletes a pending request that userID initiated.
func (svc *Service) Cancel(ctx context.Context, userID, friendID int64) error {
	f, err := svc.store.GetFriendship(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if f == nil || f.Status != model.FriendshipPending || f.UserID != userID {
		return ErrRequestNotFound
	}
	_, err = svc.store.DeleteFriendship(ctx, userID, friendID)
	return err
}

// Remove deletes an accepted friendship; either party may do so.
func (svc *Service) Remove(ctx context.Context, userID, friendID int64) error {
	f, err := svc.store.GetFriendship(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if f == nil || f.Status != model.FriendshipAccepted || !f.Involves(userID) {
		return ErrNotFriends
	}
	_, err = svc.store.DeleteFriendship(ctx, f.UserID, f.FriendID)
	return err
}

// AreFriends reports whether an accepted friendship links a and b.
func (svc *Service) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	f, err := svc.store.GetFriendship(ctx, a, b)
	if err != nil {
		return false, err
	}
	return f != nil && f.Status == model.FriendshipAccepted, nil
}

// Friends lists the accepted friends of userID, normalized to the other
// party regardless of which side initiated. Friends whose accounts have
// since been deleted are skipped.
func (svc *Service) Friends(ctx context.Context, userID int64) ([]model.PublicUser, error) {
	rows, err := svc.store.GetFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicUser, 0, len(rows))
	for i := range rows {
		u, err := svc.store.GetUser(ctx, rows[i].OtherParty(userID))
		if err != nil {
			return nil, err
		}
		if u == nil {
			continue
		}
		out = append(out, u.Public())
	}
	return out, nil
}

// Pending lists the pending requests involving userID, partitioned into
// incoming (userID is the recipient) and outgoing (userID initiated).
func (svc *Service) Pending(ctx context.Context, userID int64) (*PendingRequests, error) {
	rows, err := svc.store.GetPendingFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}
	pr := &PendingRequests{
		Incoming: []model.PublicUser{},
		Outgoing: []model.PublicUser{},
	}
	for i := range rows {
		f := &rows[i]
		u, err := svc.store.GetUser(ctx, f.OtherParty(userID))
		if err != nil {
			return nil, err
		}
		if u == nil {
			continue
		}
		if f.FriendID == userID {
			pr.Incoming = append(pr.Incoming, u.Public())
		} else {
			pr.Outgoing = append(pr.Outgoing, u.Public())
		}
	}
	return pr, nil
}
