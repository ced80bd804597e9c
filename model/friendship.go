package model

import "time"

// Friendship statuses. Cancellation is a row deletion, not a status.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

// Friendship is a directed relationship row. UserID is always the
// initiator and FriendID the recipient, regardless of later status;
// "only one relationship per unordered pair" is enforced by the
// application layer on top of the (user_id, friend_id) key.
type Friendship struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"user_id"`
	FriendID  int64     `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"friend_id"`
	Status    string    `gorm:"size:16;default:pending" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Involves reports whether userID is either party.
func (f *Friendship) Involves(userID int64) bool {
	return f.UserID == userID || f.FriendID == userID
}

// OtherParty returns the id on the opposite side from userID.
func (f *Friendship) OtherParty(userID int64) int64 {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}
