package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestGameValidate(t *testing.T) {
	assert.ErrorIs(t, (&Game{}).Validate(), ErrTitleRequired)
	assert.ErrorIs(t, (&Game{Title: "x", PersonalRating: intPtr(11)}).Validate(), ErrRatingOutOfRange)
	assert.ErrorIs(t, (&Game{Title: "x", PersonalRating: intPtr(-1)}).Validate(), ErrRatingOutOfRange)
	assert.ErrorIs(t, (&Game{Title: "x", PlayStatus: "paused"}).Validate(), ErrInvalidPlayStatus)

	assert.NoError(t, (&Game{Title: "x"}).Validate())
	assert.NoError(t, (&Game{Title: "x", PersonalRating: intPtr(0)}).Validate())
	assert.NoError(t, (&Game{Title: "x", PersonalRating: intPtr(10), PlayStatus: StatusCompleted}).Validate())
}

func TestGameApplyDefaults(t *testing.T) {
	g := &Game{Title: "x"}
	g.ApplyDefaults()
	assert.Equal(t, StatusNotStarted, g.PlayStatus)
	require.NotNil(t, g.Platforms)
	require.NotNil(t, g.Genres)
	require.NotNil(t, g.Tags)

	// Explicit values survive.
	g2 := &Game{Title: "y", PlayStatus: StatusInProgress}
	g2.ApplyDefaults()
	assert.Equal(t, StatusInProgress, g2.PlayStatus)
}

func TestGamePatchValidate(t *testing.T) {
	assert.ErrorIs(t, (&GamePatch{Title: strPtr("")}).Validate(), ErrTitleRequired)
	assert.ErrorIs(t, (&GamePatch{PersonalRating: intPtr(11)}).Validate(), ErrRatingOutOfRange)
	assert.ErrorIs(t, (&GamePatch{PlayStatus: strPtr("paused")}).Validate(), ErrInvalidPlayStatus)
	assert.NoError(t, (&GamePatch{}).Validate())
}

func TestGamePatchApplyLeavesUnsetFields(t *testing.T) {
	g := &Game{
		Title:          "Hades",
		Review:         "great",
		PersonalRating: intPtr(9),
		Favorite:       true,
	}
	p := &GamePatch{Title: strPtr("Hades II"), Favorite: boolPtr(false)}
	p.Apply(g)

	assert.Equal(t, "Hades II", g.Title)
	assert.False(t, g.Favorite)
	assert.Equal(t, "great", g.Review)
	assert.Equal(t, 9, *g.PersonalRating)
}

func boolPtr(v bool) *bool { return &v }

func TestUserPatchCannotTouchUsername(t *testing.T) {
	u := &User{Username: "alice", Email: "a@example.com"}
	p := &UserPatch{Email: strPtr("new@example.com"), Bio: strPtr("hi")}
	p.Apply(u)

	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "hi", u.Bio)
}

func TestFriendshipHelpers(t *testing.T) {
	f := &Friendship{UserID: 1, FriendID: 2}
	assert.True(t, f.Involves(1))
	assert.True(t, f.Involves(2))
	assert.False(t, f.Involves(3))
	assert.Equal(t, int64(2), f.OtherParty(1))
	assert.Equal(t, int64(1), f.OtherParty(2))
}

func TestUserPublicStripsPrivateFields(t *testing.T) {
	u := &User{ID: 1, Username: "alice", Email: "a@example.com", PasswordHash: "h", DisplayName: "A"}
	pub := u.Public()
	assert.Equal(t, "alice", pub.Username)
	assert.Equal(t, "A", pub.DisplayName)
}
