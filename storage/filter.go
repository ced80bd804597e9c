package storage

import (
	"sort"
	"strings"

	"github.com/gameshelf/server/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Rating bucket names accepted in GameFilter.Ratings.
const (
	BucketUnrated = "unrated"
	BucketLow     = "1-3"
	BucketMid     = "4-6"
	BucketHigh    = "7-10"
)

// GameFilter is a structured set of optional predicates plus a sort
// directive. Fields combine with AND; values within a field with OR.
type GameFilter struct {
	Platforms     []string `json:"platforms"`
	Genres        []string `json:"genres"`
	Tags          []string `json:"tags"`
	Statuses      []string `json:"statuses"`
	Favorite      bool     `json:"favorite"`
	Ratings       []string `json:"ratings"`
	SortBy        string   `json:"sort_by"`
	SortDirection string   `json:"sort_direction"` // asc | desc, default asc
}

// Match reports whether g passes every restrictive field of the filter.
func (f *GameFilter) Match(g *model.Game) bool {
	if f == nil {
		return true
	}
	if len(f.Platforms) > 0 && !intersects(g.Platforms, f.Platforms) {
		return false
	}
	if len(f.Genres) > 0 && !intersects(g.Genres, f.Genres) {
		return false
	}
	if len(f.Tags) > 0 && !intersects(g.Tags, f.Tags) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, g.PlayStatus) {
		return false
	}
	if f.Favorite && !g.Favorite {
		return false
	}
	if len(f.Ratings) > 0 {
		any := false
		for _, b := range f.Ratings {
			if ratingInBucket(g.PersonalRating, b) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

// ratingInBucket reports whether the personal rating falls in the named
// bucket. Buckets are inclusive on both ends; "unrated" matches an
// absent rating or an explicit 0.
func ratingInBucket(r *int, bucket string) bool {
	switch bucket {
	case BucketUnrated:
		return r == nil || *r == 0
	case BucketLow:
		return r != nil && *r >= 1 && *r <= 3
	case BucketMid:
		return r != nil && *r >= 4 && *r <= 6
	case BucketHigh:
		return r != nil && *r >= 7 && *r <= 10
	default:
		return false
	}
}

func intersects(have []string, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// FilterGames applies the reference search semantics: case-insensitive
// substring match of query against the title only, the structured
// filter, then the sort directive. The input slice is not modified;
// ties keep their input order.
func FilterGames(games []model.Game, query string, f *GameFilter) []model.Game {
	q := strings.ToLower(query)
	out := make([]model.Game, 0, len(games))
	for i := range games {
		g := &games[i]
		if q != "" && !strings.Contains(strings.ToLower(g.Title), q) {
			continue
		}
		if !f.Match(g) {
			continue
		}
		out = append(out, *g)
	}
	if f != nil && f.SortBy != "" {
		SortGames(out, f.SortBy, f.SortDirection)
	}
	return out
}

// sortValue extracts the sort key for the given field. ok is false when
// the game lacks the field; such games always sort last, under both
// directions.
type sortValue struct {
	str   string
	num   float64
	unix  int64
	kind  int // 0=string 1=number 2=time
	ok    bool
}

func sortKey(g *model.Game, field string) sortValue {
	switch field {
	case "title":
		return sortValue{str: g.Title, kind: 0, ok: g.Title != ""}
	case "releaseDate", "release_date":
		return sortValue{str: g.ReleaseDate, kind: 0, ok: g.ReleaseDate != ""}
	case "playStatus", "play_status":
		return sortValue{str: g.PlayStatus, kind: 0, ok: g.PlayStatus != ""}
	case "rating":
		if g.Rating == nil {
			return sortValue{kind: 1}
		}
		return sortValue{num: float64(*g.Rating), kind: 1, ok: true}
	case "personalRating", "personal_rating":
		if g.PersonalRating == nil {
			return sortValue{kind: 1}
		}
		return sortValue{num: float64(*g.PersonalRating), kind: 1, ok: true}
	case "playTime", "play_time":
		return sortValue{num: float64(g.PlayTimeMin), kind: 1, ok: true}
	case "lastPlayed", "last_played":
		if g.LastPlayedAt == nil {
			return sortValue{kind: 2}
		}
		return sortValue{unix: g.LastPlayedAt.UnixNano(), kind: 2, ok: true}
	case "createdAt", "created_at":
		return sortValue{unix: g.CreatedAt.UnixNano(), kind: 2, ok: true}
	default:
		return sortValue{}
	}
}

// SortGames orders games in place by a single field. String fields use
// locale-aware collation, numeric fields compare numerically, timestamp
// fields compare by instant. Games missing the field go last regardless
// of direction; ties keep their input order.
func SortGames(games []model.Game, field, direction string) {
	desc := direction == "desc"
	cl := collate.New(language.Und)

	sort.SliceStable(games, func(i, j int) bool {
		a := sortKey(&games[i], field)
		b := sortKey(&games[j], field)
		if !a.ok || !b.ok {
			// Absent values are never promoted by flipping direction.
			return a.ok && !b.ok
		}
		var cmp int
		switch a.kind {
		case 0:
			cmp = cl.CompareString(a.str, b.str)
		case 1:
			switch {
			case a.num < b.num:
				cmp = -1
			case a.num > b.num:
				cmp = 1
			}
		case 2:
			switch {
			case a.unix < b.unix:
				cmp = -1
			case a.unix > b.unix:
				cmp = 1
			}
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
