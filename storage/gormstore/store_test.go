package gormstore_test

import (
	"context"
	"testing"

	"github.com/gameshelf/server/model"
	"github.com/gameshelf/server/storage"
	"github.com/gameshelf/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestAbsenceReturnsNilNotError(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	u, err := s.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, u)

	g, err := s.GetGame(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, g)

	f, err := s.GetFriendship(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, f)

	deleted, err := s.DeleteGame(ctx, 42)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUserRoundTrip(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, &model.User{Username: "alice", Email: "a@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	updated, err := s.UpdateUser(ctx, created.ID, model.UserPatch{Bio: strPtr("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hi", updated.Bio)
	assert.Equal(t, "alice", updated.Username)
}

func TestGameJSONColumnsSurviveRoundTrip(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateGame(ctx, &model.Game{
		Title:     "Hades",
		Platforms: []string{"PC", "Switch"},
		Genres:    []string{"Roguelike"},
		Tags:      []string{"indie"},
	})
	require.NoError(t, err)

	got, err := s.GetGame(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"PC", "Switch"}, []string(got.Platforms))
	assert.Equal(t, []string{"Roguelike"}, []string(got.Genres))
	assert.Equal(t, model.StatusNotStarted, got.PlayStatus)
}

func TestSearchGamesMatchesFallbackSemantics(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, &model.User{Username: "alice", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = s.CreateGame(ctx, &model.Game{Title: "Hades", UserID: &owner.ID, PersonalRating: intPtr(9), Platforms: []string{"PC"}})
	require.NoError(t, err)
	_, err = s.CreateGame(ctx, &model.Game{Title: "Hades II", UserID: &owner.ID, Platforms: []string{"PC"}})
	require.NoError(t, err)
	_, err = s.CreateGame(ctx, &model.Game{Title: "Celeste", UserID: &owner.ID, PersonalRating: intPtr(8), Platforms: []string{"Switch"}})
	require.NoError(t, err)

	out, err := s.SearchGames(ctx, "hades", &owner.ID, &storage.GameFilter{
		Platforms: []string{"PC"},
		Ratings:   []string{storage.BucketHigh, storage.BucketUnrated},
		SortBy:    "personalRating",
		SortDirection: "desc",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Hades", out[0].Title)
	assert.Equal(t, "Hades II", out[1].Title, "unrated sorts last")
}

func TestDeleteUserCascadesInTransaction(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, &model.User{Username: "alice", Email: "a@example.com"})
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, &model.User{Username: "bob", Email: "b@example.com"})
	require.NoError(t, err)

	_, err = s.CreateGame(ctx, &model.Game{Title: "hers", UserID: &alice.ID})
	require.NoError(t, err)
	_, err = s.CreateFriendship(ctx, &model.Friendship{UserID: bob.ID, FriendID: alice.ID, Status: model.FriendshipAccepted})
	require.NoError(t, err)

	deleted, err := s.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	games, err := s.GetGames(ctx, &alice.ID)
	require.NoError(t, err)
	assert.Empty(t, games)

	f, err := s.GetFriendship(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, f)

	deleted, err = s.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFriendshipPairUniqueIndex(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	_, err := s.CreateFriendship(ctx, &model.Friendship{UserID: 1, FriendID: 2})
	require.NoError(t, err)
	_, err = s.CreateFriendship(ctx, &model.Friendship{UserID: 1, FriendID: 2})
	assert.Error(t, err, "duplicate (user_id, friend_id) must violate the unique index")
}

func TestFriendshipSymmetricLookupAndStatus(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	_, err := s.CreateFriendship(ctx, &model.Friendship{UserID: 1, FriendID: 2})
	require.NoError(t, err)

	f, err := s.GetFriendship(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, int64(1), f.UserID)
	assert.Equal(t, model.FriendshipPending, f.Status)

	updated, err := s.UpdateFriendshipStatus(ctx, 1, 2, model.FriendshipAccepted)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.FriendshipAccepted, updated.Status)

	accepted, err := s.GetFriendships(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, accepted, 1)

	// Status update requires the exact stored ordering.
	missed, err := s.UpdateFriendshipStatus(ctx, 2, 1, model.FriendshipRejected)
	require.NoError(t, err)
	assert.Nil(t, missed)
}
