package storage

import (
	"testing"
	"time"

	"github.com/gameshelf/server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func intPtr(v int) *int { return &v }

func ratedGame(title string, rating *int) model.Game {
	return model.Game{Title: title, PersonalRating: rating, PlayStatus: model.StatusNotStarted}
}

func TestRatingBuckets(t *testing.T) {
	cases := []struct {
		rating *int
		bucket string
		want   bool
	}{
		{nil, BucketUnrated, true},
		{intPtr(0), BucketUnrated, true},
		{intPtr(1), BucketUnrated, false},
		{intPtr(1), BucketLow, true},
		{intPtr(3), BucketLow, true},
		{intPtr(4), BucketLow, false},
		{intPtr(4), BucketMid, true},
		{intPtr(6), BucketMid, true},
		{intPtr(7), BucketMid, false},
		{intPtr(7), BucketHigh, true},
		{intPtr(10), BucketHigh, true},
		{nil, BucketHigh, false},
		{intPtr(5), "bogus", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ratingInBucket(tc.rating, tc.bucket),
			"rating=%v bucket=%s", tc.rating, tc.bucket)
	}
}

func TestFilterRatingsSelectsUnion(t *testing.T) {
	games := []model.Game{
		ratedGame("a", intPtr(0)),
		ratedGame("b", intPtr(2)),
		ratedGame("c", intPtr(5)),
		ratedGame("d", intPtr(8)),
		ratedGame("e", nil),
	}
	out := FilterGames(games, "", &GameFilter{Ratings: []string{BucketUnrated, BucketHigh}})
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "d", out[1].Title)
	assert.Equal(t, "e", out[2].Title)
}

func TestFilterFieldsCombineWithAnd(t *testing.T) {
	games := []model.Game{
		{
			Title:     "Hades",
			Platforms: datatypes.NewJSONSlice([]string{"PC", "Switch"}),
			Genres:    datatypes.NewJSONSlice([]string{"Roguelike"}),
			PlayStatus: model.StatusCompleted,
			Favorite:   true,
		},
		{
			Title:     "Celeste",
			Platforms: datatypes.NewJSONSlice([]string{"PC"}),
			Genres:    datatypes.NewJSONSlice([]string{"Platformer"}),
			PlayStatus: model.StatusCompleted,
		},
		{
			Title:     "Bastion",
			Platforms: datatypes.NewJSONSlice([]string{"Xbox"}),
			Genres:    datatypes.NewJSONSlice([]string{"Roguelike"}),
			PlayStatus: model.StatusNotStarted,
		},
	}

	// Platform OR within the field.
	out := FilterGames(games, "", &GameFilter{Platforms: []string{"Switch", "Xbox"}})
	require.Len(t, out, 2)
	assert.Equal(t, "Hades", out[0].Title)
	assert.Equal(t, "Bastion", out[1].Title)

	// AND across fields.
	out = FilterGames(games, "", &GameFilter{
		Platforms: []string{"PC"},
		Genres:    []string{"Roguelike"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "Hades", out[0].Title)

	// Favorite false is not a predicate.
	out = FilterGames(games, "", &GameFilter{Favorite: false})
	assert.Len(t, out, 3)

	out = FilterGames(games, "", &GameFilter{Favorite: true})
	require.Len(t, out, 1)
	assert.Equal(t, "Hades", out[0].Title)
}

func TestFilterQueryMatchesTitleOnly(t *testing.T) {
	games := []model.Game{
		{Title: "Hades", Summary: "underworld"},
		{Title: "Underworld Story"},
	}
	out := FilterGames(games, "underworld", nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Underworld Story", out[0].Title)

	// Case-insensitive.
	out = FilterGames(games, "HaD", nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Hades", out[0].Title)
}

func TestSortMissingValuesAlwaysLast(t *testing.T) {
	games := []model.Game{
		ratedGame("a", nil),
		ratedGame("b", intPtr(3)),
		ratedGame("c", intPtr(8)),
		ratedGame("d", nil),
	}

	desc := append([]model.Game(nil), games...)
	SortGames(desc, "personalRating", "desc")
	require.Len(t, desc, 4)
	assert.Equal(t, "c", desc[0].Title)
	assert.Equal(t, "b", desc[1].Title)
	assert.Equal(t, "a", desc[2].Title)
	assert.Equal(t, "d", desc[3].Title)

	asc := append([]model.Game(nil), games...)
	SortGames(asc, "personalRating", "asc")
	assert.Equal(t, "b", asc[0].Title)
	assert.Equal(t, "c", asc[1].Title)
	assert.Equal(t, "a", asc[2].Title)
	assert.Equal(t, "d", asc[3].Title)
}

func TestSortByTitleUsesCollation(t *testing.T) {
	games := []model.Game{
		{Title: "zelda"},
		{Title: "Apex"},
		{Title: "élan"},
	}
	SortGames(games, "title", "asc")
	assert.Equal(t, "Apex", games[0].Title)
	assert.Equal(t, "élan", games[1].Title)
	assert.Equal(t, "zelda", games[2].Title)
}

func TestSortByLastPlayed(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)
	games := []model.Game{
		{Title: "a", LastPlayedAt: &earlier},
		{Title: "never"},
		{Title: "b", LastPlayedAt: &now},
	}
	SortGames(games, "lastPlayed", "desc")
	assert.Equal(t, "b", games[0].Title)
	assert.Equal(t, "a", games[1].Title)
	assert.Equal(t, "never", games[2].Title)
}

func TestSortTiesKeepInputOrder(t *testing.T) {
	games := []model.Game{
		ratedGame("first", intPtr(5)),
		ratedGame("second", intPtr(5)),
		ratedGame("third", intPtr(5)),
	}
	SortGames(games, "personalRating", "asc")
	assert.Equal(t, "first", games[0].Title)
	assert.Equal(t, "second", games[1].Title)
	assert.Equal(t, "third", games[2].Title)
}

func TestFilterSnakeCaseSortFields(t *testing.T) {
	games := []model.Game{
		ratedGame("low", intPtr(1)),
		ratedGame("high", intPtr(9)),
	}
	out := FilterGames(games, "", &GameFilter{SortBy: "personal_rating", SortDirection: "desc"})
	require.Len(t, out, 2)
	assert.Equal(t, "high", out[0].Title)
}
