package model

import "time"

// User is a registered library owner.
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string     `gorm:"size:72;not null" json:"-"`
	DisplayName  string     `gorm:"size:64" json:"display_name"`
	AvatarURL    string     `gorm:"size:255" json:"avatar_url"`
	Bio          string     `gorm:"size:512" json:"bio"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastActiveAt *time.Time `json:"last_active_at"`
}

// PublicUser is the subset of User safe to show to other users.
type PublicUser struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Public strips the private fields from a User.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Bio:         u.Bio,
		CreatedAt:   u.CreatedAt,
	}
}

// UserPatch is a partial update. Nil fields are left untouched.
// Username is deliberately absent: it is immutable after registration.
type UserPatch struct {
	Email        *string
	DisplayName  *string
	AvatarURL    *string
	Bio          *string
	PasswordHash *string
	LastActiveAt *time.Time
}

// Apply overwrites the set fields onto u.
func (p *UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.LastActiveAt != nil {
		u.LastActiveAt = p.LastActiveAt
	}
}
